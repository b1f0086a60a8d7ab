// Package feed holds the domain types for subscribed feeds and their
// entries, plus the HTTP fetcher that turns a feed URL into parsed entries.
package feed

import "time"

// SyncStatusOK is the LastSyncStatus value recorded after a successful
// sync; any other non-empty value is the failure message.
const SyncStatusOK = "ok"

// Feed is a subscribed source, identified by its URL.
type Feed struct {
	ID             int64
	URL            string
	Title          string
	LastSyncAt     *time.Time
	LastSyncStatus string
	Collapsed      bool
}

// Entry is a stored article belonging to one feed. IdentityKey is the
// dedup key: the item GUID when the feed provides one, otherwise the
// canonical link.
type Entry struct {
	ID          int64
	FeedID      int64
	IdentityKey string
	Title       string
	Link        string
	PublishedAt time.Time
	Summary     string
	FullContent *string
	Read        bool
}

// Resolved reports whether the entry has cached full content.
func (e Entry) Resolved() bool {
	return e.FullContent != nil && *e.FullContent != ""
}

// ParsedFeed is the outcome of fetching and parsing one source document.
type ParsedFeed struct {
	Title   string
	Entries []ParsedEntry
}

// ParsedEntry is one item mapped to the storage dedup identity.
// PublishedAt is nil when the document carries no usable timestamp;
// storage falls back to the insert time and never rewrites an existing
// row's timestamp from a nil value.
type ParsedEntry struct {
	IdentityKey string
	Title       string
	Link        string
	PublishedAt *time.Time
	Summary     string
}
