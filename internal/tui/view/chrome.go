package view

import (
	"fmt"
	"strings"

	tuitheme "github.com/glabrego/tidings/internal/tui/theme"
)

func Header(mode string, unread, width int, th tuitheme.Theme) string {
	title := th.Title.Render("tidings")
	right := th.ModePill.Render(mode)
	if unread > 0 {
		right = th.UnreadCount.Render(fmt.Sprintf("%d unread", unread)) + " " + right
	}
	gap := width - visibleLen(title) - visibleLen(right)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + right
}

func KeyHints(inEntry bool) string {
	if inEntry {
		return "j/k scroll | f fetch | o open | y copy | h help | q back"
	}
	return "j/k move | enter open | a add | d delete | s sync | h help | q quit"
}

func StatusLine(syncing bool, frame, status string, isErr bool, th tuitheme.Theme) string {
	state := "idle"
	stateLabel := th.StateIdle.Render("state")
	if isErr {
		state = "error"
		stateLabel = th.StateWarn.Render("state")
	}
	if syncing {
		state = "syncing"
		stateLabel = th.StateLoad.Render("state")
	}
	main := "Ready"
	if status != "" {
		main = status
	}
	line := fmt.Sprintf("%s: %s | %s", stateLabel, state, th.MetaValue.Render(main))
	if syncing && frame != "" {
		line = frame + " " + line
	}
	return line
}

func Footer(feeds, entries, unread int, lastSync string, th tuitheme.Theme) string {
	parts := []string{
		th.MetaLabel.Render("feeds") + " " + th.MetaValue.Render(fmt.Sprintf("%d", feeds)),
		th.MetaLabel.Render("entries") + " " + th.MetaValue.Render(fmt.Sprintf("%d", entries)),
		th.MetaLabel.Render("unread") + " " + th.MetaValue.Render(fmt.Sprintf("%d", unread)),
	}
	if lastSync != "" {
		parts = append(parts, th.MetaLabel.Render("synced")+" "+th.MetaValue.Render(lastSync))
	}
	return strings.Join(parts, " • ")
}
