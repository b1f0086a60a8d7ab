// Package input turns raw key presses into view commands. It owns the
// binding tables and the pending-prefix state for multi-key sequences, so
// the controller only ever sees completed commands.
package input

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type Mode int

const (
	FeedsView Mode = iota
	EntryView
)

type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayHelp
	OverlayConfirmDelete
	OverlayAddFeed
)

type Command int

const (
	Unknown Command = iota
	Pending
	MoveDown
	MoveUp
	JumpTop
	JumpBottom
	HalfPageDown
	HalfPageUp
	Activate
	AddFeed
	DeleteFeed
	SyncAll
	FetchContent
	OpenBrowser
	CopyLink
	ShowHelp
	Back
	Quit
	Dismiss
	Confirm
	Cancel
	Submit
	Passthrough
)

// gg is the only multi-key sequence; both views jump to the top with it.
const seqPrefix = "g"

var seqComplete = key.NewBinding(
	key.WithKeys("g"),
	key.WithHelp("gg", "top"),
)

// Machine holds at most one pending prefix between keystrokes. A prefix
// the next key does not complete is discarded and that key is interpreted
// fresh, so it may itself arm a new sequence.
type Machine struct {
	pending string
}

func (m *Machine) Translate(mode Mode, overlay Overlay, msg tea.KeyMsg) Command {
	if overlay != OverlayNone {
		m.pending = ""
		return overlayCommand(overlay, msg)
	}

	if m.pending != "" {
		m.pending = ""
		if key.Matches(msg, seqComplete) {
			return JumpTop
		}
	}

	if msg.String() == seqPrefix {
		m.pending = seqPrefix
		return Pending
	}

	for _, bc := range keysFor(mode).bindings() {
		if key.Matches(msg, bc.binding) {
			return bc.cmd
		}
	}
	return Unknown
}

// overlayCommand is the exclusive binding table of a non-None overlay; the
// underlying view's bindings never apply while one is up.
func overlayCommand(overlay Overlay, msg tea.KeyMsg) Command {
	switch overlay {
	case OverlayHelp:
		return Dismiss
	case OverlayConfirmDelete:
		switch {
		case key.Matches(msg, ConfirmKeys.Confirm):
			return Confirm
		case key.Matches(msg, ConfirmKeys.Cancel):
			return Cancel
		}
		return Unknown
	case OverlayAddFeed:
		switch {
		case key.Matches(msg, PromptKeys.Submit):
			return Submit
		case key.Matches(msg, PromptKeys.Cancel):
			return Cancel
		}
		return Passthrough
	}
	return Unknown
}
