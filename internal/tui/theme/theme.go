package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/glabrego/tidings/internal/feed"
)

type Theme struct {
	Title       lipgloss.Style
	ModePill    lipgloss.Style
	FeedTitle   lipgloss.Style
	UnreadCount lipgloss.Style
	ActiveLine  lipgloss.Style
	MetaLabel   lipgloss.Style
	MetaValue   lipgloss.Style
	StateIdle   lipgloss.Style
	StateWarn   lipgloss.Style
	StateLoad   lipgloss.Style

	PopupBorder lipgloss.Style
	PopupTitle  lipgloss.Style
	HelpKey     lipgloss.Style
	HelpDesc    lipgloss.Style

	TitleUnread lipgloss.Style
	TitleRead   lipgloss.Style
}

func Default() Theme {
	cpMauve := lipgloss.Color("#cba6f7")
	cpRed := lipgloss.Color("#f38ba8")
	cpPeach := lipgloss.Color("#fab387")
	cpYellow := lipgloss.Color("#f9e2af")
	cpGreen := lipgloss.Color("#a6e3a1")
	cpTeal := lipgloss.Color("#94e2d5")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpSubtext0 := lipgloss.Color("#a6adc8")
	cpSubtext1 := lipgloss.Color("#bac2de")
	cpOverlay1 := lipgloss.Color("#7f849c")
	cpSurface0 := lipgloss.Color("#313244")

	return Theme{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		ModePill:    lipgloss.NewStyle().Foreground(cpLavender).Background(cpSurface0).Padding(0, 1),
		FeedTitle:   lipgloss.NewStyle().Bold(true).Foreground(cpTeal),
		UnreadCount: lipgloss.NewStyle().Foreground(cpYellow).Bold(true),
		ActiveLine:  lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
		MetaLabel:   lipgloss.NewStyle().Foreground(cpOverlay1),
		MetaValue:   lipgloss.NewStyle().Foreground(cpSubtext1),
		StateIdle:   lipgloss.NewStyle().Foreground(cpGreen),
		StateWarn:   lipgloss.NewStyle().Foreground(cpRed),
		StateLoad:   lipgloss.NewStyle().Foreground(cpPeach),
		PopupBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cpMauve).
			Padding(1, 2),
		PopupTitle:  lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		HelpKey:     lipgloss.NewStyle().Bold(true).Foreground(cpTeal),
		HelpDesc:    lipgloss.NewStyle().Foreground(cpSubtext0),
		TitleUnread: lipgloss.NewStyle().Bold(true).Foreground(cpText),
		TitleRead:   lipgloss.NewStyle().Foreground(cpSubtext0),
	}
}

func (t Theme) StyleEntryTitle(entry feed.Entry, title string) string {
	if title == "" {
		return title
	}
	if entry.Read {
		return t.TitleRead.Render(title)
	}
	return t.TitleUnread.Render(title)
}

func (t Theme) RenderActiveLine(active bool, line string) string {
	if !active {
		return line
	}
	return t.ActiveLine.Render(line)
}
