package view

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	tuitheme "github.com/glabrego/tidings/internal/tui/theme"
	tuitree "github.com/glabrego/tidings/internal/tui/tree"

	"github.com/glabrego/tidings/internal/feed"
)

var reANSICodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

type EntryLineParams struct {
	Entry  feed.Entry
	Now    time.Time
	Active bool
	Width  int
}

func RenderEntryLine(p EntryLineParams, th tuitheme.Theme) string {
	cursorMarker := " "
	if p.Active {
		cursorMarker = ">"
	}
	prefix := fmt.Sprintf("  %s ", cursorMarker)

	dateLabel := "[" + RelativeTimeLabel(p.Now, p.Entry.PublishedAt) + "]"
	available := p.Width - visibleLen(prefix) - 1 - visibleLen(dateLabel)
	if available < 1 {
		available = 1
	}

	label := strings.TrimSpace(p.Entry.Title)
	if label == "" {
		label = "(untitled)"
	}
	label = truncateRunes(label, available)
	styledTitle := th.StyleEntryTitle(p.Entry, label)
	gap := p.Width - visibleLen(prefix) - visibleLen(label) - visibleLen(dateLabel)
	if gap < 1 {
		gap = 1
	}
	return th.RenderActiveLine(p.Active, prefix+styledTitle+strings.Repeat(" ", gap)+dateLabel)
}

type FeedLineParams struct {
	Feed        feed.Feed
	UnreadCount int
	Collapsed   bool
	Active      bool
	Width       int
}

func RenderFeedLine(p FeedLineParams, th tuitheme.Theme) string {
	marker := "▾ "
	if p.Collapsed {
		marker = "▸ "
	}

	title := strings.TrimSpace(p.Feed.Title)
	if title == "" {
		title = p.Feed.URL
	}

	badge := ""
	if p.UnreadCount > 0 {
		badge = th.UnreadCount.Render(fmt.Sprintf("%d", p.UnreadCount))
	}
	available := p.Width - visibleLen(marker) - 1 - visibleLen(badge)
	if available < 1 {
		available = 1
	}
	title = truncateRunes(title, available)

	left := marker + th.FeedTitle.Render(title)
	if badge == "" {
		return th.RenderActiveLine(p.Active, left)
	}
	gap := p.Width - visibleLen(left) - visibleLen(badge)
	if gap < 1 {
		gap = 1
	}
	return th.RenderActiveLine(p.Active, left+strings.Repeat(" ", gap)+badge)
}

// ListRenderInput drives one pass over the visible row window. The line
// renderers are injected so this loop stays free of theme and snapshot
// lookups.
type ListRenderInput struct {
	Rows   []tuitree.Row
	Start  int
	End    int
	Cursor int

	RenderFeedLine  func(row tuitree.Row, active bool) string
	RenderEntryLine func(row tuitree.Row, active bool) string
}

func RenderListBody(in ListRenderInput) string {
	if len(in.Rows) == 0 || in.Start >= in.End || in.Start < 0 {
		return ""
	}
	var b strings.Builder
	for i := in.Start; i < in.End; i++ {
		row := in.Rows[i]
		switch row.Kind {
		case tuitree.RowFeed:
			b.WriteString(in.RenderFeedLine(row, i == in.Cursor))
		case tuitree.RowEntry:
			b.WriteString(in.RenderEntryLine(row, i == in.Cursor))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func RelativeTimeLabel(now, then time.Time) string {
	if now.IsZero() {
		now = time.Now()
	}
	if then.IsZero() {
		return "unknown"
	}
	if then.After(now) {
		return "just now"
	}
	d := now.Sub(then)
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		n := int(d / time.Minute)
		if n == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", n)
	}
	if d < 24*time.Hour {
		n := int(d / time.Hour)
		if n == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", n)
	}
	n := int(d / (24 * time.Hour))
	if n == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", n)
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return strings.Repeat(".", maxLen)
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}

func visibleLen(s string) int {
	return utf8.RuneCountInString(stripANSIText(s))
}

func stripANSIText(s string) string {
	return reANSICodes.ReplaceAllString(s, "")
}
