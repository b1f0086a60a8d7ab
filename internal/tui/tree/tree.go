package tree

import (
	"github.com/glabrego/tidings/internal/app"
	"github.com/glabrego/tidings/internal/feed"
)

type RowKind string

const (
	RowFeed  RowKind = "feed"
	RowEntry RowKind = "entry"
)

// Row is one addressable line of the flattened feed/entry projection.
// FeedIndex and EntryIndex point back into the snapshot the tree was
// rebuilt from; EntryIndex is -1 on feed rows.
type Row struct {
	Kind       RowKind
	Depth      int
	FeedID     int64
	EntryID    int64
	FeedIndex  int
	EntryIndex int
}

// Tree projects the loaded snapshot into a collapsible row list. It owns
// the in-session collapsed set: Rebuild seeds it from the persisted flags
// for feeds it has not seen yet and keeps live toggles for the rest, so a
// toggle never flickers back while its write is still in flight.
type Tree struct {
	snapshot  []app.FeedEntries
	rows      []Row
	collapsed map[int64]bool
}

func New() *Tree {
	return &Tree{collapsed: make(map[int64]bool)}
}

// Rebuild replaces the snapshot and recomputes the rows. Stored order is
// kept as is: feeds by title, entries newest first.
func (t *Tree) Rebuild(snapshot []app.FeedEntries) {
	t.snapshot = snapshot
	collapsed := make(map[int64]bool, len(snapshot))
	for _, fe := range snapshot {
		if live, ok := t.collapsed[fe.Feed.ID]; ok {
			collapsed[fe.Feed.ID] = live
			continue
		}
		collapsed[fe.Feed.ID] = fe.Feed.Collapsed
	}
	t.collapsed = collapsed
	t.project()
}

// ToggleCollapse flips one feed's collapsed flag and reprojects, returning
// the new state so the caller can persist it.
func (t *Tree) ToggleCollapse(feedID int64) bool {
	t.collapsed[feedID] = !t.collapsed[feedID]
	t.project()
	return t.collapsed[feedID]
}

func (t *Tree) Collapsed(feedID int64) bool {
	return t.collapsed[feedID]
}

func (t *Tree) RowCount() int {
	return len(t.rows)
}

func (t *Tree) Rows() []Row {
	return t.rows
}

func (t *Tree) RowAt(i int) (Row, bool) {
	if i < 0 || i >= len(t.rows) {
		return Row{}, false
	}
	return t.rows[i], true
}

// IndexOfEntry returns the row index showing the entry, or -1 when the
// entry is absent or hidden under a collapsed feed.
func (t *Tree) IndexOfEntry(entryID int64) int {
	for i, row := range t.rows {
		if row.Kind == RowEntry && row.EntryID == entryID {
			return i
		}
	}
	return -1
}

func (t *Tree) IndexOfFeed(feedID int64) int {
	for i, row := range t.rows {
		if row.Kind == RowFeed && row.FeedID == feedID {
			return i
		}
	}
	return -1
}

// Feed resolves a row to its snapshot feed.
func (t *Tree) Feed(row Row) (feed.Feed, bool) {
	if row.FeedIndex < 0 || row.FeedIndex >= len(t.snapshot) {
		return feed.Feed{}, false
	}
	return t.snapshot[row.FeedIndex].Feed, true
}

// Entry resolves an entry row to its snapshot entry.
func (t *Tree) Entry(row Row) (feed.Entry, bool) {
	if row.Kind != RowEntry || row.FeedIndex < 0 || row.FeedIndex >= len(t.snapshot) {
		return feed.Entry{}, false
	}
	entries := t.snapshot[row.FeedIndex].Entries
	if row.EntryIndex < 0 || row.EntryIndex >= len(entries) {
		return feed.Entry{}, false
	}
	return entries[row.EntryIndex], true
}

// UnreadCount reports the unread entries of the row's feed, counted over
// the full snapshot regardless of collapse state.
func (t *Tree) UnreadCount(row Row) int {
	if row.FeedIndex < 0 || row.FeedIndex >= len(t.snapshot) {
		return 0
	}
	return t.snapshot[row.FeedIndex].UnreadCount()
}

func (t *Tree) project() {
	n := 0
	for _, fe := range t.snapshot {
		n += 1 + len(fe.Entries)
	}
	rows := make([]Row, 0, n)
	for fi, fe := range t.snapshot {
		rows = append(rows, Row{
			Kind:       RowFeed,
			FeedID:     fe.Feed.ID,
			FeedIndex:  fi,
			EntryIndex: -1,
		})
		if t.collapsed[fe.Feed.ID] {
			continue
		}
		for ei, e := range fe.Entries {
			rows = append(rows, Row{
				Kind:       RowEntry,
				Depth:      1,
				FeedID:     fe.Feed.ID,
				EntryID:    e.ID,
				FeedIndex:  fi,
				EntryIndex: ei,
			})
		}
	}
	t.rows = rows
}
