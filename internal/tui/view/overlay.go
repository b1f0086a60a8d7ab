package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	tuiinput "github.com/glabrego/tidings/internal/tui/input"
	tuitheme "github.com/glabrego/tidings/internal/tui/theme"
)

// HelpPopup lists the active view's bindings, keys column-aligned. The
// rows come straight from the binding tables, so help can never drift
// from what the keys actually do.
func HelpPopup(mode tuiinput.Mode, width, height int, th tuitheme.Theme) string {
	entries := tuiinput.HelpEntries(mode)
	keyWidth := 0
	for _, e := range entries {
		if n := visibleLen(e[0]); n > keyWidth {
			keyWidth = n
		}
	}

	lines := make([]string, 0, len(entries)+2)
	lines = append(lines, th.PopupTitle.Render("Keys"), "")
	for _, e := range entries {
		pad := strings.Repeat(" ", keyWidth-visibleLen(e[0]))
		lines = append(lines, th.HelpKey.Render(e[0])+pad+"  "+th.HelpDesc.Render(e[1]))
	}
	return placeOverlay(width, height, th.PopupBorder.Render(strings.Join(lines, "\n")))
}

func ConfirmDeletePopup(feedTitle string, width, height int, th tuitheme.Theme) string {
	maxTitle := width - 12
	if maxTitle < 16 {
		maxTitle = 16
	}
	lines := []string{
		th.PopupTitle.Render("Delete feed?"),
		"",
		truncateRunes(feedTitle, maxTitle),
		"",
		th.HelpKey.Render("y") + " " + th.HelpDesc.Render("delete") +
			"   " + th.HelpKey.Render("n") + " " + th.HelpDesc.Render("cancel"),
	}
	return placeOverlay(width, height, th.PopupBorder.Render(strings.Join(lines, "\n")))
}

func AddFeedPopup(inputView string, width, height int, th tuitheme.Theme) string {
	lines := []string{
		th.PopupTitle.Render("Add feed"),
		"",
		inputView,
		"",
		th.HelpKey.Render("enter") + " " + th.HelpDesc.Render("add") +
			"   " + th.HelpKey.Render("esc") + " " + th.HelpDesc.Render("cancel"),
	}
	return placeOverlay(width, height, th.PopupBorder.Render(strings.Join(lines, "\n")))
}

func placeOverlay(width, height int, box string) string {
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
