package tree

import (
	"fmt"
	"testing"
	"time"

	"github.com/glabrego/tidings/internal/app"
	"github.com/glabrego/tidings/internal/feed"
)

func BenchmarkRebuild(b *testing.B) {
	snapshot := benchmarkSnapshot(30, 40)
	tr := New()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tr.Rebuild(snapshot)
	}
}

func BenchmarkIndexOfEntry(b *testing.B) {
	snapshot := benchmarkSnapshot(30, 40)
	tr := New()
	tr.Rebuild(snapshot)
	last := snapshot[len(snapshot)-1].Entries
	target := last[len(last)-1].ID

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = tr.IndexOfEntry(target)
	}
}

func benchmarkSnapshot(feeds, entriesPerFeed int) []app.FeedEntries {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	out := make([]app.FeedEntries, 0, feeds)
	var entryID int64
	for f := 0; f < feeds; f++ {
		fe := app.FeedEntries{
			Feed: feed.Feed{
				ID:    int64(f + 1),
				URL:   fmt.Sprintf("https://example.com/feed-%02d.xml", f),
				Title: fmt.Sprintf("Feed %02d", f),
			},
		}
		for e := 0; e < entriesPerFeed; e++ {
			entryID++
			fe.Entries = append(fe.Entries, feed.Entry{
				ID:          entryID,
				FeedID:      fe.Feed.ID,
				Title:       fmt.Sprintf("Entry %04d", entryID),
				PublishedAt: base.Add(-time.Duration(e) * time.Minute),
			})
		}
		out = append(out, fe)
	}
	return out
}
