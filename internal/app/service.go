package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/glabrego/tidings/internal/feed"
	"github.com/glabrego/tidings/internal/storage"
)

type Repository interface {
	UpsertFeed(ctx context.Context, url string) (int64, error)
	DeleteFeed(ctx context.Context, id int64) error
	ListFeeds(ctx context.Context) ([]feed.Feed, error)
	SetFeedMeta(ctx context.Context, id int64, title string, syncedAt time.Time, status string) error
	SetCollapsed(ctx context.Context, id int64, collapsed bool) error
	UpsertEntries(ctx context.Context, feedID int64, entries []feed.ParsedEntry) (storage.UpsertStats, error)
	ListEntries(ctx context.Context, feedID int64) ([]feed.Entry, error)
	GetEntry(ctx context.Context, id int64) (feed.Entry, error)
	SetFullContent(ctx context.Context, entryID int64, text string) error
	MarkRead(ctx context.Context, entryID int64) error
	DeleteEntriesOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) (feed.ParsedFeed, error)
}

type Resolver interface {
	Resolve(ctx context.Context, link string) (string, error)
}

// Defaults applied by NewService when the matching Options field is zero.
const (
	DefaultSyncTimeout    = 20 * time.Second
	DefaultResolveTimeout = 15 * time.Second
	DefaultMaxParallel    = 4
)

// Options tune the service. MaxEntryAge has no default: zero (or negative)
// disables startup expiry rather than falling back to one.
type Options struct {
	SyncTimeout    time.Duration
	ResolveTimeout time.Duration
	MaxParallel    int
	MaxEntryAge    time.Duration
	Logger         *slog.Logger
}

type Service struct {
	fetcher  Fetcher
	resolver Resolver
	repo     Repository
	opts     Options
	log      *slog.Logger
}

func NewService(fetcher Fetcher, resolver Resolver, repo Repository, opts Options) *Service {
	if opts.SyncTimeout <= 0 {
		opts.SyncTimeout = DefaultSyncTimeout
	}
	if opts.ResolveTimeout <= 0 {
		opts.ResolveTimeout = DefaultResolveTimeout
	}
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = DefaultMaxParallel
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		fetcher:  fetcher,
		resolver: resolver,
		repo:     repo,
		opts:     opts,
		log:      opts.Logger,
	}
}

// SyncResult is the outcome of syncing one feed. Err carries fetch, parse,
// timeout, or storage failures; it never aborts a multi-feed run.
type SyncResult struct {
	FeedID   int64
	FeedURL  string
	Inserted int
	Updated  int
	Err      error
}

func (r SyncResult) OK() bool { return r.Err == nil }

// FeedEntries pairs a feed with its stored entries, newest first. A slice
// of these is the snapshot the view renders.
type FeedEntries struct {
	Feed    feed.Feed
	Entries []feed.Entry
}

func (fe FeedEntries) UnreadCount() int {
	n := 0
	for _, e := range fe.Entries {
		if !e.Read {
			n++
		}
	}
	return n
}

// SyncFeed fetches one feed under the per-feed timeout and reconciles its
// entries. Every attempt, failed or not, updates the feed row's sync
// metadata so the UI can show when and how the last sync went.
func (s *Service) SyncFeed(ctx context.Context, f feed.Feed) SyncResult {
	result := SyncResult{FeedID: f.ID, FeedURL: f.URL}

	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.SyncTimeout)
	parsed, err := s.fetcher.Fetch(fetchCtx, f.URL)
	cancel()
	if err != nil {
		result.Err = err
		if metaErr := s.repo.SetFeedMeta(ctx, f.ID, "", time.Now(), statusFromError(err)); metaErr != nil {
			s.log.Warn("record sync failure", "url", f.URL, "error", metaErr)
		}
		s.log.Warn("feed sync failed", "url", f.URL, "error", err)
		return result
	}

	stats, err := s.repo.UpsertEntries(ctx, f.ID, parsed.Entries)
	if err != nil {
		result.Err = fmt.Errorf("store entries: %w", err)
		return result
	}
	result.Inserted = stats.Inserted
	result.Updated = stats.Updated

	if err := s.repo.SetFeedMeta(ctx, f.ID, parsed.Title, time.Now(), feed.SyncStatusOK); err != nil {
		result.Err = fmt.Errorf("record sync: %w", err)
		return result
	}
	s.log.Info("feed synced", "url", f.URL, "inserted", stats.Inserted, "updated", stats.Updated)
	return result
}

// SyncAll syncs every subscribed feed with at most MaxParallel fetches in
// flight. Results come back in feed-list order regardless of completion
// order; per-feed failures live in their own result.
func (s *Service) SyncAll(ctx context.Context) ([]SyncResult, error) {
	feeds, err := s.repo.ListFeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	if len(feeds) == 0 {
		return nil, nil
	}

	results := make([]SyncResult, len(feeds))
	sem := make(chan struct{}, s.opts.MaxParallel)
	var wg sync.WaitGroup
	for i, f := range feeds {
		wg.Add(1)
		go func(i int, f feed.Feed) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.SyncFeed(ctx, f)
		}(i, f)
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	s.log.Info("sync finished", "feeds", len(feeds), "failed", failed)
	return results, nil
}

// AddFeed registers the URL and immediately syncs it so a newly added feed
// shows its title and entries right away. The feed row survives a failed
// first sync; the failure is recorded in its status and in the returned
// SyncResult.
func (s *Service) AddFeed(ctx context.Context, url string) (feed.Feed, SyncResult, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return feed.Feed{}, SyncResult{}, errors.New("add feed: empty URL")
	}

	id, err := s.repo.UpsertFeed(ctx, url)
	if err != nil {
		return feed.Feed{}, SyncResult{}, fmt.Errorf("add feed: %w", err)
	}
	result := s.SyncFeed(ctx, feed.Feed{ID: id, URL: url})

	feeds, err := s.repo.ListFeeds(ctx)
	if err != nil {
		return feed.Feed{}, result, fmt.Errorf("add feed: %w", err)
	}
	added := feed.Feed{ID: id, URL: url, Title: url}
	for _, f := range feeds {
		if f.ID == id {
			added = f
			break
		}
	}
	s.log.Info("feed added", "url", url, "id", id)
	return added, result, nil
}

func (s *Service) DeleteFeed(ctx context.Context, id int64) error {
	if err := s.repo.DeleteFeed(ctx, id); err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	s.log.Info("feed deleted", "id", id)
	return nil
}

func (s *Service) SetCollapsed(ctx context.Context, id int64, collapsed bool) error {
	if err := s.repo.SetCollapsed(ctx, id, collapsed); err != nil {
		return fmt.Errorf("set collapsed: %w", err)
	}
	return nil
}

func (s *Service) MarkEntryRead(ctx context.Context, entryID int64) error {
	if err := s.repo.MarkRead(ctx, entryID); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// Load returns every feed with its entries, the feeds ordered by title and
// each feed's entries newest first.
func (s *Service) Load(ctx context.Context) ([]FeedEntries, error) {
	feeds, err := s.repo.ListFeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("load feeds: %w", err)
	}
	out := make([]FeedEntries, 0, len(feeds))
	for _, f := range feeds {
		entries, err := s.repo.ListEntries(ctx, f.ID)
		if err != nil {
			return nil, fmt.Errorf("load entries for %s: %w", f.URL, err)
		}
		out = append(out, FeedEntries{Feed: f, Entries: entries})
	}
	return out, nil
}

// ResolveEntry fetches the entry's web page, extracts its readable text,
// and caches it on the entry. Re-resolving overwrites the cache.
func (s *Service) ResolveEntry(ctx context.Context, entryID int64) (string, error) {
	entry, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return "", fmt.Errorf("resolve entry: %w", err)
	}
	if entry.Link == "" {
		return "", errors.New("entry has no link to fetch")
	}

	resolveCtx, cancel := context.WithTimeout(ctx, s.opts.ResolveTimeout)
	text, err := s.resolver.Resolve(resolveCtx, entry.Link)
	cancel()
	if err != nil {
		s.log.Warn("resolve failed", "link", entry.Link, "error", err)
		return "", err
	}

	if err := s.repo.SetFullContent(ctx, entryID, text); err != nil {
		return "", fmt.Errorf("cache full content: %w", err)
	}
	return text, nil
}

// ExpireOldEntries deletes entries published before now minus MaxEntryAge.
// A non-positive age disables expiry.
func (s *Service) ExpireOldEntries(ctx context.Context) (int64, error) {
	if s.opts.MaxEntryAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-s.opts.MaxEntryAge)
	n, err := s.repo.DeleteEntriesOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire entries: %w", err)
	}
	if n > 0 {
		s.log.Info("expired old entries", "count", n)
	}
	return n, nil
}

// statusFromError compacts an error into a status column value. Long
// messages are cut the way upstream bodies are in fetch errors.
func statusFromError(err error) string {
	msg := err.Error()
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
