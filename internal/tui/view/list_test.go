package view

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tuitheme "github.com/glabrego/tidings/internal/tui/theme"
	tuitree "github.com/glabrego/tidings/internal/tui/tree"

	"github.com/glabrego/tidings/internal/feed"
)

func TestRenderEntryLine_RelativeDateAtRightEdge(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	th := tuitheme.Default()

	line := RenderEntryLine(EntryLineParams{
		Entry: feed.Entry{
			ID:          1,
			Title:       "Entry title",
			PublishedAt: now.Add(-2 * time.Hour),
		},
		Now:   now,
		Width: 60,
	}, th)
	plain := stripANSI(line)
	if !strings.HasSuffix(plain, "[2 hours ago]") {
		t.Fatalf("expected relative date suffix at right edge, got %q", plain)
	}
	if !strings.Contains(plain, "Entry title") {
		t.Fatalf("expected title in line, got %q", plain)
	}
}

func TestRenderEntryLine_CursorMarker(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	th := tuitheme.Default()

	active := stripANSI(RenderEntryLine(EntryLineParams{
		Entry:  feed.Entry{Title: "Entry", PublishedAt: now},
		Now:    now,
		Active: true,
		Width:  40,
	}, th))
	if !strings.HasPrefix(active, "  > ") {
		t.Fatalf("expected cursor marker on active line, got %q", active)
	}

	inactive := stripANSI(RenderEntryLine(EntryLineParams{
		Entry: feed.Entry{Title: "Entry", PublishedAt: now},
		Now:   now,
		Width: 40,
	}, th))
	if !strings.HasPrefix(inactive, "    ") {
		t.Fatalf("expected blank marker on inactive line, got %q", inactive)
	}
}

func TestRenderFeedLine_MarkersAndBadge(t *testing.T) {
	th := tuitheme.Default()

	expanded := stripANSI(RenderFeedLine(FeedLineParams{
		Feed:        feed.Feed{ID: 1, Title: "Feed A"},
		UnreadCount: 3,
		Width:       40,
	}, th))
	if !strings.HasPrefix(expanded, "▾ Feed A") {
		t.Fatalf("expected expanded marker and title, got %q", expanded)
	}
	if !strings.HasSuffix(expanded, "3") {
		t.Fatalf("expected unread badge at right edge, got %q", expanded)
	}

	collapsed := stripANSI(RenderFeedLine(FeedLineParams{
		Feed:      feed.Feed{ID: 1, Title: "Feed A"},
		Collapsed: true,
		Width:     40,
	}, th))
	if !strings.HasPrefix(collapsed, "▸ Feed A") {
		t.Fatalf("expected collapsed marker, got %q", collapsed)
	}
	if strings.HasSuffix(collapsed, "0") {
		t.Fatalf("expected no badge when all read, got %q", collapsed)
	}
}

func TestRenderFeedLine_FallsBackToURL(t *testing.T) {
	th := tuitheme.Default()
	line := stripANSI(RenderFeedLine(FeedLineParams{
		Feed:  feed.Feed{ID: 1, URL: "https://example.com/feed.xml"},
		Width: 60,
	}, th))
	if !strings.Contains(line, "https://example.com/feed.xml") {
		t.Fatalf("expected URL fallback for untitled feed, got %q", line)
	}
}

func TestRenderListBody_WindowAndKinds(t *testing.T) {
	rows := []tuitree.Row{
		{Kind: tuitree.RowFeed, FeedID: 1},
		{Kind: tuitree.RowEntry, FeedID: 1, EntryID: 10},
		{Kind: tuitree.RowEntry, FeedID: 1, EntryID: 11},
	}
	got := RenderListBody(ListRenderInput{
		Rows:   rows,
		Start:  0,
		End:    2,
		Cursor: 1,
		RenderFeedLine: func(row tuitree.Row, active bool) string {
			return fmt.Sprintf("feed:%d active:%t", row.FeedID, active)
		},
		RenderEntryLine: func(row tuitree.Row, active bool) string {
			return fmt.Sprintf("entry:%d active:%t", row.EntryID, active)
		},
	})
	want := "feed:1 active:false\nentry:10 active:true\n"
	if got != want {
		t.Fatalf("unexpected list body:\n got %q\nwant %q", got, want)
	}

	if got := RenderListBody(ListRenderInput{Rows: rows, Start: 3, End: 3}); got != "" {
		t.Fatalf("expected empty body for empty window, got %q", got)
	}
}

func TestRelativeTimeLabel(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		then time.Time
		want string
	}{
		{then: now.Add(-30 * time.Second), want: "just now"},
		{then: now.Add(-1 * time.Minute), want: "1 minute ago"},
		{then: now.Add(-3 * time.Minute), want: "3 minutes ago"},
		{then: now.Add(-1 * time.Hour), want: "1 hour ago"},
		{then: now.Add(-7 * time.Hour), want: "7 hours ago"},
		{then: now.Add(-1 * 24 * time.Hour), want: "1 day ago"},
		{then: now.Add(-7 * 24 * time.Hour), want: "7 days ago"},
	}
	for _, tc := range cases {
		if got := RelativeTimeLabel(now, tc.then); got != tc.want {
			t.Fatalf("RelativeTimeLabel(%s) = %q, want %q", tc.then.UTC().Format(time.RFC3339), got, tc.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("short", 10); got != "short" {
		t.Fatalf("expected unchanged string, got %q", got)
	}
	if got := truncateRunes("a longer title", 8); got != "a lon..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := truncateRunes("abc", 0); got != "" {
		t.Fatalf("expected empty string at width 0, got %q", got)
	}
}
