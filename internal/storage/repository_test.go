package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glabrego/tidings/internal/feed"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "tidings.db"))
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	return repo
}

func timePtr(t time.Time) *time.Time { return &t }

func TestRepository_UpsertFeed_ReturnsExistingID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.UpsertFeed(ctx, "https://example.com/feed.xml")
	if err != nil {
		t.Fatalf("UpsertFeed returned error: %v", err)
	}
	second, err := repo.UpsertFeed(ctx, "https://example.com/feed.xml")
	if err != nil {
		t.Fatalf("second UpsertFeed returned error: %v", err)
	}
	if first != second {
		t.Fatalf("expected same id for same URL, got %d and %d", first, second)
	}

	feeds, err := repo.ListFeeds(ctx)
	if err != nil {
		t.Fatalf("ListFeeds returned error: %v", err)
	}
	if len(feeds) != 1 {
		t.Fatalf("expected 1 feed, got %d", len(feeds))
	}
	if feeds[0].Title != "https://example.com/feed.xml" {
		t.Fatalf("new feed should use URL as placeholder title, got %q", feeds[0].Title)
	}
}

func TestRepository_ListFeeds_OrdersByTitleCaseInsensitive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	urls := []string{"https://a.example/z", "https://b.example/b", "https://c.example/a"}
	titles := []string{"zebra", "Apple", "banana"}
	for i, url := range urls {
		id, err := repo.UpsertFeed(ctx, url)
		if err != nil {
			t.Fatalf("UpsertFeed returned error: %v", err)
		}
		if err := repo.SetFeedMeta(ctx, id, titles[i], now, "ok"); err != nil {
			t.Fatalf("SetFeedMeta returned error: %v", err)
		}
	}

	feeds, err := repo.ListFeeds(ctx)
	if err != nil {
		t.Fatalf("ListFeeds returned error: %v", err)
	}
	got := make([]string, 0, len(feeds))
	for _, f := range feeds {
		got = append(got, f.Title)
	}
	want := []string{"Apple", "banana", "zebra"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: got=%v want=%v", got, want)
		}
	}
	if feeds[0].LastSyncAt == nil {
		t.Fatal("expected last_sync_at to round-trip")
	}
	if feeds[0].LastSyncStatus != "ok" {
		t.Fatalf("unexpected status: %q", feeds[0].LastSyncStatus)
	}
}

func TestRepository_UpsertEntries_Counts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	feedID, err := repo.UpsertFeed(ctx, "https://example.com/feed.xml")
	if err != nil {
		t.Fatalf("UpsertFeed returned error: %v", err)
	}

	batch := []feed.ParsedEntry{
		{IdentityKey: "a", Title: "First", Link: "https://example.com/a", PublishedAt: timePtr(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)), Summary: "one"},
		{IdentityKey: "b", Title: "Second", Link: "https://example.com/b", PublishedAt: timePtr(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)), Summary: "two"},
	}

	stats, err := repo.UpsertEntries(ctx, feedID, batch)
	if err != nil {
		t.Fatalf("UpsertEntries returned error: %v", err)
	}
	if stats.Inserted != 2 || stats.Updated != 0 {
		t.Fatalf("first batch: got inserted=%d updated=%d, want 2/0", stats.Inserted, stats.Updated)
	}

	stats, err = repo.UpsertEntries(ctx, feedID, batch)
	if err != nil {
		t.Fatalf("identical re-sync returned error: %v", err)
	}
	if stats.Inserted != 0 || stats.Updated != 0 {
		t.Fatalf("identical re-sync: got inserted=%d updated=%d, want 0/0", stats.Inserted, stats.Updated)
	}

	batch[0].Title = "First, revised"
	stats, err = repo.UpsertEntries(ctx, feedID, batch)
	if err != nil {
		t.Fatalf("changed re-sync returned error: %v", err)
	}
	if stats.Inserted != 0 || stats.Updated != 1 {
		t.Fatalf("changed re-sync: got inserted=%d updated=%d, want 0/1", stats.Inserted, stats.Updated)
	}
}

func TestRepository_UpsertEntries_OverlappingBatchesStayDeduplicated(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	feedID, err := repo.UpsertFeed(ctx, "https://example.com/feed.xml")
	if err != nil {
		t.Fatalf("UpsertFeed returned error: %v", err)
	}

	pub := timePtr(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	batchA := []feed.ParsedEntry{
		{IdentityKey: "a", Title: "A", Link: "la", PublishedAt: pub},
		{IdentityKey: "b", Title: "B", Link: "lb", PublishedAt: pub},
	}
	batchB := []feed.ParsedEntry{
		{IdentityKey: "b", Title: "B", Link: "lb", PublishedAt: pub},
		{IdentityKey: "c", Title: "C", Link: "lc", PublishedAt: pub},
	}

	if _, err := repo.UpsertEntries(ctx, feedID, batchA); err != nil {
		t.Fatalf("batch A returned error: %v", err)
	}
	if _, err := repo.UpsertEntries(ctx, feedID, batchB); err != nil {
		t.Fatalf("batch B returned error: %v", err)
	}

	entries, err := repo.ListEntries(ctx, feedID)
	if err != nil {
		t.Fatalf("ListEntries returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 distinct identities, got %d", len(entries))
	}
}

func TestRepository_UpsertEntries_NeverClobbersReadOrFullContent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	feedID, err := repo.UpsertFeed(ctx, "https://example.com/feed.xml")
	if err != nil {
		t.Fatalf("UpsertFeed returned error: %v", err)
	}

	batch := []feed.ParsedEntry{
		{IdentityKey: "a", Title: "Original", Link: "https://example.com/a", PublishedAt: timePtr(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))},
	}
	if _, err := repo.UpsertEntries(ctx, feedID, batch); err != nil {
		t.Fatalf("UpsertEntries returned error: %v", err)
	}

	entries, err := repo.ListEntries(ctx, feedID)
	if err != nil {
		t.Fatalf("ListEntries returned error: %v", err)
	}
	entryID := entries[0].ID

	if err := repo.MarkRead(ctx, entryID); err != nil {
		t.Fatalf("MarkRead returned error: %v", err)
	}
	if err := repo.SetFullContent(ctx, entryID, "resolved article body"); err != nil {
		t.Fatalf("SetFullContent returned error: %v", err)
	}

	batch[0].Title = "Rewritten upstream"
	if _, err := repo.UpsertEntries(ctx, feedID, batch); err != nil {
		t.Fatalf("re-sync returned error: %v", err)
	}

	got, err := repo.GetEntry(ctx, entryID)
	if err != nil {
		t.Fatalf("GetEntry returned error: %v", err)
	}
	if got.Title != "Rewritten upstream" {
		t.Fatalf("expected title update, got %q", got.Title)
	}
	if !got.Read {
		t.Fatal("re-sync must not clear the read flag")
	}
	if got.FullContent == nil || *got.FullContent != "resolved article body" {
		t.Fatalf("re-sync must not clobber full content, got %v", got.FullContent)
	}
}

func TestRepository_UpsertEntries_NilPublishedKeepsStoredTimestamp(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	feedID, err := repo.UpsertFeed(ctx, "https://example.com/feed.xml")
	if err != nil {
		t.Fatalf("UpsertFeed returned error: %v", err)
	}

	original := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)
	batch := []feed.ParsedEntry{
		{IdentityKey: "a", Title: "Dated", Link: "l", PublishedAt: timePtr(original)},
	}
	if _, err := repo.UpsertEntries(ctx, feedID, batch); err != nil {
		t.Fatalf("UpsertEntries returned error: %v", err)
	}

	batch[0].Title = "Dated, edited"
	batch[0].PublishedAt = nil
	if _, err := repo.UpsertEntries(ctx, feedID, batch); err != nil {
		t.Fatalf("re-sync returned error: %v", err)
	}

	entries, err := repo.ListEntries(ctx, feedID)
	if err != nil {
		t.Fatalf("ListEntries returned error: %v", err)
	}
	if !entries[0].PublishedAt.Equal(original) {
		t.Fatalf("timestamp rewritten: got=%v want=%v", entries[0].PublishedAt, original)
	}
	if entries[0].Title != "Dated, edited" {
		t.Fatalf("expected title update, got %q", entries[0].Title)
	}
}

func TestRepository_UpsertEntries_MissingFeedIsReferential(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.UpsertEntries(context.Background(), 12345, []feed.ParsedEntry{
		{IdentityKey: "a", Title: "Orphan", Link: "l"},
	})
	if err == nil {
		t.Fatal("expected error for missing feed")
	}
	var refErr *ReferentialError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected *ReferentialError, got %T: %v", err, err)
	}
}

func TestRepository_DeleteFeed_CascadesToEntries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	feedID, err := repo.UpsertFeed(ctx, "https://example.com/feed.xml")
	if err != nil {
		t.Fatalf("UpsertFeed returned error: %v", err)
	}
	if _, err := repo.UpsertEntries(ctx, feedID, []feed.ParsedEntry{
		{IdentityKey: "a", Title: "A", Link: "la"},
		{IdentityKey: "b", Title: "B", Link: "lb"},
	}); err != nil {
		t.Fatalf("UpsertEntries returned error: %v", err)
	}

	if err := repo.DeleteFeed(ctx, feedID); err != nil {
		t.Fatalf("DeleteFeed returned error: %v", err)
	}

	feeds, err := repo.ListFeeds(ctx)
	if err != nil {
		t.Fatalf("ListFeeds returned error: %v", err)
	}
	if len(feeds) != 0 {
		t.Fatalf("expected no feeds, got %d", len(feeds))
	}
	entries, err := repo.ListEntries(ctx, feedID)
	if err != nil {
		t.Fatalf("ListEntries returned error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected cascade to remove entries, got %d", len(entries))
	}
}

func TestRepository_DeleteFeed_MissingIDIsReferential(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.DeleteFeed(context.Background(), 999)
	if err == nil {
		t.Fatal("expected error for missing feed")
	}
	var refErr *ReferentialError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected *ReferentialError, got %T: %v", err, err)
	}
}

func TestRepository_GetEntry_MissingWrapsNoRows(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetEntry(context.Background(), 424242)
	if err == nil {
		t.Fatal("expected error for missing entry")
	}
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected *StorageError, got %T: %v", err, err)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows in chain, got %v", err)
	}
}

func TestRepository_SetFullContent_MissingEntryIsReferential(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.SetFullContent(context.Background(), 31337, "text")
	if err == nil {
		t.Fatal("expected error for missing entry")
	}
	var refErr *ReferentialError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected *ReferentialError, got %T: %v", err, err)
	}
}

func TestRepository_SetCollapsed_Persists(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	feedID, err := repo.UpsertFeed(ctx, "https://example.com/feed.xml")
	if err != nil {
		t.Fatalf("UpsertFeed returned error: %v", err)
	}
	if err := repo.SetCollapsed(ctx, feedID, true); err != nil {
		t.Fatalf("SetCollapsed returned error: %v", err)
	}

	feeds, err := repo.ListFeeds(ctx)
	if err != nil {
		t.Fatalf("ListFeeds returned error: %v", err)
	}
	if !feeds[0].Collapsed {
		t.Fatal("expected collapsed flag to persist")
	}
}

func TestRepository_DeleteEntriesOlderThan(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	feedID, err := repo.UpsertFeed(ctx, "https://example.com/feed.xml")
	if err != nil {
		t.Fatalf("UpsertFeed returned error: %v", err)
	}
	if _, err := repo.UpsertEntries(ctx, feedID, []feed.ParsedEntry{
		{IdentityKey: "old", Title: "Old", Link: "lo", PublishedAt: timePtr(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))},
		{IdentityKey: "new", Title: "New", Link: "ln", PublishedAt: timePtr(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))},
	}); err != nil {
		t.Fatalf("UpsertEntries returned error: %v", err)
	}

	removed, err := repo.DeleteEntriesOlderThan(ctx, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DeleteEntriesOlderThan returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 expired entry, got %d", removed)
	}

	entries, err := repo.ListEntries(ctx, feedID)
	if err != nil {
		t.Fatalf("ListEntries returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].IdentityKey != "new" {
		t.Fatalf("expected only the newer entry to remain, got %v", entries)
	}
}

func TestRepository_ListEntries_NewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	feedID, err := repo.UpsertFeed(ctx, "https://example.com/feed.xml")
	if err != nil {
		t.Fatalf("UpsertFeed returned error: %v", err)
	}
	if _, err := repo.UpsertEntries(ctx, feedID, []feed.ParsedEntry{
		{IdentityKey: "older", Title: "Older", Link: "lo", PublishedAt: timePtr(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))},
		{IdentityKey: "newer", Title: "Newer", Link: "ln", PublishedAt: timePtr(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))},
	}); err != nil {
		t.Fatalf("UpsertEntries returned error: %v", err)
	}

	entries, err := repo.ListEntries(ctx, feedID)
	if err != nil {
		t.Fatalf("ListEntries returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].IdentityKey != "newer" {
		t.Fatalf("expected newest first, got %q", entries[0].IdentityKey)
	}
}
