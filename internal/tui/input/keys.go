package input

import "github.com/charmbracelet/bubbles/key"

// KeyMap is one view's single-key bindings. Fields a view does not bind
// stay zero and never match.
type KeyMap struct {
	Down     key.Binding
	Up       key.Binding
	Bottom   key.Binding
	HalfDown key.Binding
	HalfUp   key.Binding
	Activate key.Binding
	Add      key.Binding
	Delete   key.Binding
	Sync     key.Binding
	Fetch    key.Binding
	Open     key.Binding
	Copy     key.Binding
	Help     key.Binding
	Back     key.Binding
	Quit     key.Binding
}

var FeedsKeys = KeyMap{
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G"),
		key.WithHelp("G", "bottom"),
	),
	HalfDown: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("C-d", "half page down"),
	),
	HalfUp: key.NewBinding(
		key.WithKeys("ctrl+u"),
		key.WithHelp("C-u", "half page up"),
	),
	Activate: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open entry / fold feed"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add feed"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete feed"),
	),
	Sync: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sync all"),
	),
	Help: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
}

var EntryKeys = KeyMap{
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "scroll down"),
	),
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "scroll up"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G"),
		key.WithHelp("G", "bottom"),
	),
	HalfDown: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("C-d", "half page down"),
	),
	HalfUp: key.NewBinding(
		key.WithKeys("ctrl+u"),
		key.WithHelp("C-u", "half page up"),
	),
	Fetch: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "fetch full text"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open in browser"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy link"),
	),
	Help: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "help"),
	),
	Back: key.NewBinding(
		key.WithKeys("q", "esc"),
		key.WithHelp("q/esc", "back"),
	),
}

// ConfirmKeys drive the delete confirmation overlay.
var ConfirmKeys = struct {
	Confirm key.Binding
	Cancel  key.Binding
}{
	Confirm: key.NewBinding(
		key.WithKeys("y", "enter"),
		key.WithHelp("y", "delete"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc", "q"),
		key.WithHelp("n", "cancel"),
	),
}

// PromptKeys drive the add-feed prompt; every other key goes to the text
// field.
var PromptKeys = struct {
	Submit key.Binding
	Cancel key.Binding
}{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "add"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

type boundCommand struct {
	binding key.Binding
	cmd     Command
}

func (k KeyMap) bindings() []boundCommand {
	return []boundCommand{
		{k.Down, MoveDown},
		{k.Up, MoveUp},
		{k.Bottom, JumpBottom},
		{k.HalfDown, HalfPageDown},
		{k.HalfUp, HalfPageUp},
		{k.Activate, Activate},
		{k.Add, AddFeed},
		{k.Delete, DeleteFeed},
		{k.Sync, SyncAll},
		{k.Fetch, FetchContent},
		{k.Open, OpenBrowser},
		{k.Copy, CopyLink},
		{k.Help, ShowHelp},
		{k.Back, Back},
		{k.Quit, Quit},
	}
}

// HelpEntries lists a view's key/description pairs in display order,
// including the gg sequence.
func HelpEntries(mode Mode) [][2]string {
	out := make([][2]string, 0, 16)
	for _, bc := range keysFor(mode).bindings() {
		if len(bc.binding.Keys()) == 0 {
			continue
		}
		if bc.cmd == JumpBottom {
			out = append(out, [2]string{seqComplete.Help().Key, seqComplete.Help().Desc})
		}
		h := bc.binding.Help()
		out = append(out, [2]string{h.Key, h.Desc})
	}
	return out
}

func keysFor(mode Mode) KeyMap {
	if mode == EntryView {
		return EntryKeys
	}
	return FeedsKeys
}
