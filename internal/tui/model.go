package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	tuiactions "github.com/glabrego/tidings/internal/tui/actions"
	tuiinput "github.com/glabrego/tidings/internal/tui/input"
	"github.com/glabrego/tidings/internal/tui/platform"
	tuistate "github.com/glabrego/tidings/internal/tui/state"
	tuitheme "github.com/glabrego/tidings/internal/tui/theme"
	tuitree "github.com/glabrego/tidings/internal/tui/tree"
	tuiview "github.com/glabrego/tidings/internal/tui/view"

	"github.com/glabrego/tidings/internal/app"
	"github.com/glabrego/tidings/internal/feed"
)

type clearStatusMsg struct {
	id int
}

func clearStatusCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

type Model struct {
	service tuiactions.Service
	th      tuitheme.Theme

	mode    tuiinput.Mode
	overlay tuiinput.Overlay
	machine tuiinput.Machine

	tree   *tuitree.Tree
	feeds  []app.FeedEntries
	cursor int

	current          feed.Entry
	currentFeedTitle string
	detailLines      []string
	detailTop        int

	width  int
	height int

	syncing    bool
	spin       spinner.Model
	lastSyncAt time.Time

	addInput textinput.Model

	pendingDeleteFeedID int64
	pendingDeleteTitle  string

	resolvingEntryID int64

	status      string
	statusIsErr bool
	statusID    int
	statusTTL   time.Duration

	openLinkFn func(string) error
	copyLinkFn func(string) error
	nowFn      func() time.Time
}

func NewModel(service tuiactions.Service, feeds []app.FeedEntries) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Line

	ti := textinput.New()
	ti.Placeholder = "https://example.com/feed.xml"
	ti.CharLimit = 512
	ti.Width = 48

	m := Model{
		service:    service,
		th:         tuitheme.Default(),
		tree:       tuitree.New(),
		feeds:      feeds,
		spin:       sp,
		addInput:   ti,
		openLinkFn: platform.OpenInBrowser,
		copyLinkFn: platform.CopyToClipboard,
		nowFn:      time.Now,
	}
	m.tree.Rebuild(feeds)
	return m
}

// Init starts with whatever main loaded from storage; syncing stays a
// user decision.
func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.mode == tuiinput.EntryView {
			m.recomputeDetail()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.syncing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
			m.statusIsErr = false
		}
		return m, nil

	case tuiactions.LoadSuccessMsg:
		anchor := tuistate.AnchorOf(m.tree, m.cursor)
		m.feeds = msg.Feeds
		m.tree.Rebuild(m.feeds)
		m.cursor = tuistate.RestoreCursor(m.tree, anchor)
		return m, nil

	case tuiactions.LoadErrorMsg:
		return m, m.setStatus("Load failed: "+msg.Err.Error(), true)

	case tuiactions.SyncSuccessMsg:
		m.syncing = false
		m.lastSyncAt = m.nowFn()
		if len(msg.Results) == 0 {
			return m, m.setStatus("No feeds to sync", false)
		}
		inserted, updated, failed := syncTotals(msg.Results)
		var statusCmd tea.Cmd
		if failed > 0 {
			statusCmd = m.setStatus(fmt.Sprintf("Synced: %d new, %d updated, %d feeds failed", inserted, updated, failed), true)
		} else {
			statusCmd = m.setStatus(fmt.Sprintf("Synced: %d new, %d updated", inserted, updated), false)
		}
		return m, tea.Batch(statusCmd, tuiactions.LoadCmd(m.service))

	case tuiactions.SyncErrorMsg:
		m.syncing = false
		return m, m.setStatus("Sync failed: "+msg.Err.Error(), true)

	case tuiactions.AddFeedSuccessMsg:
		title := feedDisplayTitle(msg.Feed)
		var statusCmd tea.Cmd
		if msg.Result.OK() {
			statusCmd = m.setStatus(fmt.Sprintf("Added %s: %d entries", title, msg.Result.Inserted), false)
		} else {
			statusCmd = m.setStatus(fmt.Sprintf("Added %s, first sync failed: %v", title, msg.Result.Err), true)
		}
		return m, tea.Batch(statusCmd, tuiactions.LoadCmd(m.service))

	case tuiactions.AddFeedErrorMsg:
		return m, m.setStatus("Add feed failed: "+msg.Err.Error(), true)

	case tuiactions.DeleteFeedSuccessMsg:
		statusCmd := m.setStatus("Deleted "+msg.Title, false)
		return m, tea.Batch(statusCmd, tuiactions.LoadCmd(m.service))

	case tuiactions.DeleteFeedErrorMsg:
		return m, m.setStatus("Delete failed: "+msg.Err.Error(), true)

	case tuiactions.ResolveSuccessMsg:
		if m.resolvingEntryID == msg.EntryID {
			m.resolvingEntryID = 0
		}
		m.applyFullContent(msg.EntryID, msg.Text)
		if m.mode == tuiinput.EntryView && m.current.ID == msg.EntryID {
			text := msg.Text
			m.current.FullContent = &text
			m.detailTop = 0
			m.recomputeDetail()
		}
		return m, m.setStatus("Loaded full text", false)

	case tuiactions.ResolveErrorMsg:
		if m.resolvingEntryID == msg.EntryID {
			m.resolvingEntryID = 0
		}
		return m, m.setStatus(fmt.Sprintf("Could not fetch full text (%v), o opens the browser", msg.Err), true)

	case tuiactions.MarkReadErrorMsg:
		return m, m.setStatus("Could not save read state: "+msg.Err.Error(), true)

	case tuiactions.CollapseSaveErrorMsg:
		return m, m.setStatus("Could not save collapse state: "+msg.Err.Error(), true)

	case tuiactions.OpenLinkSuccessMsg:
		return m, m.setStatus(msg.Status, false)

	case tuiactions.OpenLinkErrorMsg:
		return m, m.setStatus(msg.Err.Error(), true)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	command := m.machine.Translate(m.mode, m.overlay, msg)
	if m.overlay != tuiinput.OverlayNone {
		return m.handleOverlayCommand(command, msg)
	}
	if m.mode == tuiinput.EntryView {
		return m.handleEntryCommand(command)
	}
	return m.handleFeedsCommand(command)
}

func (m Model) handleFeedsCommand(command tuiinput.Command) (tea.Model, tea.Cmd) {
	switch command {
	case tuiinput.MoveDown:
		m.cursor = tuistate.ClampCursor(m.cursor+1, m.tree.RowCount())
	case tuiinput.MoveUp:
		m.cursor = tuistate.ClampCursor(m.cursor-1, m.tree.RowCount())
	case tuiinput.JumpTop:
		m.cursor = 0
	case tuiinput.JumpBottom:
		m.cursor = tuistate.ClampCursor(m.tree.RowCount()-1, m.tree.RowCount())
	case tuiinput.HalfPageDown:
		m.cursor = tuistate.ClampCursor(m.cursor+tuistate.HalfPageStep(m.listHeight()), m.tree.RowCount())
	case tuiinput.HalfPageUp:
		m.cursor = tuistate.ClampCursor(m.cursor-tuistate.HalfPageStep(m.listHeight()), m.tree.RowCount())
	case tuiinput.Activate:
		return m.activateRow()
	case tuiinput.AddFeed:
		m.overlay = tuiinput.OverlayAddFeed
		m.addInput.SetValue("")
		m.addInput.Focus()
		return m, textinput.Blink
	case tuiinput.DeleteFeed:
		row, ok := m.tree.RowAt(m.cursor)
		if !ok {
			return m, nil
		}
		f, ok := m.tree.Feed(row)
		if !ok {
			return m, nil
		}
		m.pendingDeleteFeedID = f.ID
		m.pendingDeleteTitle = feedDisplayTitle(f)
		m.overlay = tuiinput.OverlayConfirmDelete
	case tuiinput.SyncAll:
		return m.startSync()
	case tuiinput.ShowHelp:
		m.overlay = tuiinput.OverlayHelp
	case tuiinput.Quit:
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleEntryCommand(command tuiinput.Command) (tea.Model, tea.Cmd) {
	switch command {
	case tuiinput.MoveDown:
		if m.detailTop < m.detailMaxTop() {
			m.detailTop++
		}
	case tuiinput.MoveUp:
		if m.detailTop > 0 {
			m.detailTop--
		}
	case tuiinput.JumpTop:
		m.detailTop = 0
	case tuiinput.JumpBottom:
		m.detailTop = m.detailMaxTop()
	case tuiinput.HalfPageDown:
		m.detailTop = min(m.detailTop+tuistate.HalfPageStep(m.detailBodyHeight()), m.detailMaxTop())
	case tuiinput.HalfPageUp:
		m.detailTop = max(m.detailTop-tuistate.HalfPageStep(m.detailBodyHeight()), 0)
	case tuiinput.FetchContent:
		return m.startResolve()
	case tuiinput.OpenBrowser:
		link, err := platform.ValidateLink(m.current.Link)
		if err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		return m, tuiactions.OpenLinkCmd(link, m.openLinkFn, m.copyLinkFn)
	case tuiinput.CopyLink:
		link, err := platform.ValidateLink(m.current.Link)
		if err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		return m, tuiactions.CopyLinkCmd(link, m.copyLinkFn)
	case tuiinput.ShowHelp:
		m.overlay = tuiinput.OverlayHelp
	case tuiinput.Back:
		m.mode = tuiinput.FeedsView
		m.detailTop = 0
	}
	return m, nil
}

func (m Model) handleOverlayCommand(command tuiinput.Command, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.overlay {
	case tuiinput.OverlayHelp:
		m.overlay = tuiinput.OverlayNone
		return m, nil

	case tuiinput.OverlayConfirmDelete:
		switch command {
		case tuiinput.Confirm:
			feedID := m.pendingDeleteFeedID
			title := m.pendingDeleteTitle
			m.overlay = tuiinput.OverlayNone
			m.pendingDeleteFeedID = 0
			m.pendingDeleteTitle = ""
			return m, tuiactions.DeleteFeedCmd(m.service, feedID, title)
		case tuiinput.Cancel:
			m.overlay = tuiinput.OverlayNone
			m.pendingDeleteFeedID = 0
			m.pendingDeleteTitle = ""
		}
		return m, nil

	case tuiinput.OverlayAddFeed:
		switch command {
		case tuiinput.Submit:
			url := strings.TrimSpace(m.addInput.Value())
			if url == "" {
				return m, m.setStatus("Feed URL required", true)
			}
			if _, err := platform.ValidateLink(url); err != nil {
				return m, m.setStatus(err.Error(), true)
			}
			m.overlay = tuiinput.OverlayNone
			m.addInput.Blur()
			m.addInput.SetValue("")
			statusCmd := m.setStatus("Adding "+url+"...", false)
			return m, tea.Batch(statusCmd, tuiactions.AddFeedCmd(m.service, url))
		case tuiinput.Cancel:
			m.overlay = tuiinput.OverlayNone
			m.addInput.Blur()
			m.addInput.SetValue("")
			return m, nil
		}
		var inputCmd tea.Cmd
		m.addInput, inputCmd = m.addInput.Update(msg)
		return m, inputCmd
	}
	return m, nil
}

func (m Model) activateRow() (tea.Model, tea.Cmd) {
	row, ok := m.tree.RowAt(m.cursor)
	if !ok {
		return m, nil
	}
	if row.Kind == tuitree.RowFeed {
		collapsed := m.tree.ToggleCollapse(row.FeedID)
		m.cursor = tuistate.ClampCursor(m.cursor, m.tree.RowCount())
		return m, tuiactions.SetCollapsedCmd(m.service, row.FeedID, collapsed)
	}

	entry, ok := m.tree.Entry(row)
	if !ok {
		return m, nil
	}
	f, _ := m.tree.Feed(row)
	m.mode = tuiinput.EntryView
	m.current = entry
	m.currentFeedTitle = feedDisplayTitle(f)
	m.detailTop = 0

	var markCmd tea.Cmd
	if !entry.Read {
		m.current.Read = true
		m.markEntryReadLocal(entry.ID)
		markCmd = tuiactions.MarkReadCmd(m.service, entry.ID)
	}
	m.recomputeDetail()
	return m, markCmd
}

func (m Model) startSync() (tea.Model, tea.Cmd) {
	if m.syncing {
		return m, m.setStatus("Sync already running", false)
	}
	m.syncing = true
	return m, tea.Batch(m.spin.Tick, tuiactions.SyncAllCmd(m.service))
}

func (m Model) startResolve() (tea.Model, tea.Cmd) {
	if m.current.ID == 0 {
		return m, nil
	}
	if m.resolvingEntryID == m.current.ID {
		return m, m.setStatus("Fetch already running", false)
	}
	m.resolvingEntryID = m.current.ID
	statusCmd := m.setStatus("Fetching full text...", false)
	return m, tea.Batch(statusCmd, tuiactions.ResolveEntryCmd(m.service, m.current.ID))
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(tuiview.Header(m.modeLabel(), m.totalUnread(), m.contentWidth(), m.th))
	b.WriteString("\n")
	b.WriteString(tuiview.KeyHints(m.mode == tuiinput.EntryView))
	b.WriteString("\n\n")

	switch {
	case m.overlay != tuiinput.OverlayNone:
		b.WriteString(m.overlayView())
		b.WriteString("\n")
	case m.mode == tuiinput.EntryView:
		b.WriteString(tuiview.RenderDetailLines(m.detailLines, m.detailTop, m.detailBodyHeight()))
	default:
		b.WriteString(m.listView())
	}

	b.WriteString("\n")
	b.WriteString(tuiview.StatusLine(m.syncing, m.spin.View(), m.status, m.statusIsErr, m.th))
	b.WriteString("\n")
	b.WriteString(m.footerView())
	b.WriteString("\n")
	return b.String()
}

func (m Model) listView() string {
	rows := m.tree.Rows()
	if len(rows) == 0 {
		return "No feeds yet. Press a to add one.\n"
	}
	start, end := tuistate.CenteredWindow(len(rows), m.cursor, m.listHeight())
	now := m.nowFn()
	return tuiview.RenderListBody(tuiview.ListRenderInput{
		Rows:   rows,
		Start:  start,
		End:    end,
		Cursor: m.cursor,
		RenderFeedLine: func(row tuitree.Row, active bool) string {
			f, _ := m.tree.Feed(row)
			return tuiview.RenderFeedLine(tuiview.FeedLineParams{
				Feed:        f,
				UnreadCount: m.tree.UnreadCount(row),
				Collapsed:   m.tree.Collapsed(row.FeedID),
				Active:      active,
				Width:       m.contentWidth(),
			}, m.th)
		},
		RenderEntryLine: func(row tuitree.Row, active bool) string {
			e, _ := m.tree.Entry(row)
			return tuiview.RenderEntryLine(tuiview.EntryLineParams{
				Entry:  e,
				Now:    now,
				Active: active,
				Width:  m.contentWidth(),
			}, m.th)
		},
	})
}

func (m Model) overlayView() string {
	w, h := m.contentWidth(), m.listHeight()
	switch m.overlay {
	case tuiinput.OverlayHelp:
		return tuiview.HelpPopup(m.mode, w, h, m.th)
	case tuiinput.OverlayConfirmDelete:
		return tuiview.ConfirmDeletePopup(m.pendingDeleteTitle, w, h, m.th)
	case tuiinput.OverlayAddFeed:
		return tuiview.AddFeedPopup(m.addInput.View(), w, h, m.th)
	}
	return ""
}

func (m Model) footerView() string {
	entries := 0
	for _, fe := range m.feeds {
		entries += len(fe.Entries)
	}
	lastSync := ""
	if !m.lastSyncAt.IsZero() {
		lastSync = tuiview.RelativeTimeLabel(m.nowFn(), m.lastSyncAt)
	}
	return tuiview.Footer(len(m.feeds), entries, m.totalUnread(), lastSync, m.th)
}

// setStatus replaces the status line and arms its expiry; the id guard
// keeps an old timer from wiping a newer message.
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.status = text
	m.statusIsErr = isErr
	m.statusID++
	ttl := m.statusTTL
	if ttl <= 0 {
		ttl = 3 * time.Second
		if isErr {
			ttl = 4 * time.Second
		}
	}
	return clearStatusCmd(m.statusID, ttl)
}

func (m *Model) recomputeDetail() {
	m.detailLines = tuiview.DetailLines(m.current, m.currentFeedTitle, m.contentWidth())
	if maxTop := m.detailMaxTop(); m.detailTop > maxTop {
		m.detailTop = maxTop
	}
}

func (m *Model) markEntryReadLocal(entryID int64) {
	for fi := range m.feeds {
		for ei := range m.feeds[fi].Entries {
			if m.feeds[fi].Entries[ei].ID == entryID {
				m.feeds[fi].Entries[ei].Read = true
				return
			}
		}
	}
}

func (m *Model) applyFullContent(entryID int64, text string) {
	for fi := range m.feeds {
		for ei := range m.feeds[fi].Entries {
			if m.feeds[fi].Entries[ei].ID == entryID {
				t := text
				m.feeds[fi].Entries[ei].FullContent = &t
				return
			}
		}
	}
}

func (m Model) detailMaxTop() int {
	return tuiview.DetailMaxTop(len(m.detailLines), m.detailBodyHeight())
}

func (m Model) totalUnread() int {
	n := 0
	for _, fe := range m.feeds {
		n += fe.UnreadCount()
	}
	return n
}

func (m Model) modeLabel() string {
	if m.mode == tuiinput.EntryView {
		return "ENTRY"
	}
	return "FEEDS"
}

func (m Model) contentWidth() int {
	if m.width > 0 {
		return m.width - 1
	}
	return 100
}

func (m Model) listHeight() int {
	if m.height > 0 {
		if h := m.height - 6; h > 3 {
			return h
		}
	}
	return 20
}

func (m Model) detailBodyHeight() int {
	if m.height > 0 {
		if h := m.height - 6; h > 3 {
			return h
		}
	}
	return 16
}

func syncTotals(results []app.SyncResult) (inserted, updated, failed int) {
	for _, r := range results {
		if !r.OK() {
			failed++
			continue
		}
		inserted += r.Inserted
		updated += r.Updated
	}
	return inserted, updated, failed
}

func feedDisplayTitle(f feed.Feed) string {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return f.URL
	}
	return title
}
