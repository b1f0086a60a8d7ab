package actions

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/tidings/internal/app"
	"github.com/glabrego/tidings/internal/feed"
)

type Service interface {
	Load(ctx context.Context) ([]app.FeedEntries, error)
	SyncAll(ctx context.Context) ([]app.SyncResult, error)
	AddFeed(ctx context.Context, url string) (feed.Feed, app.SyncResult, error)
	DeleteFeed(ctx context.Context, id int64) error
	SetCollapsed(ctx context.Context, id int64, collapsed bool) error
	MarkEntryRead(ctx context.Context, entryID int64) error
	ResolveEntry(ctx context.Context, entryID int64) (string, error)
}

type LoadSuccessMsg struct {
	Feeds []app.FeedEntries
}

type LoadErrorMsg struct {
	Err error
}

type SyncSuccessMsg struct {
	Results  []app.SyncResult
	Duration time.Duration
}

type SyncErrorMsg struct {
	Err      error
	Duration time.Duration
}

type AddFeedSuccessMsg struct {
	Feed   feed.Feed
	Result app.SyncResult
}

type AddFeedErrorMsg struct {
	Err error
}

type DeleteFeedSuccessMsg struct {
	FeedID int64
	Title  string
}

type DeleteFeedErrorMsg struct {
	Err error
}

type ResolveSuccessMsg struct {
	EntryID int64
	Text    string
}

type ResolveErrorMsg struct {
	EntryID int64
	Err     error
}

type MarkReadErrorMsg struct {
	Err error
}

type CollapseSaveErrorMsg struct {
	Err error
}

type OpenLinkSuccessMsg struct {
	Status string
	Opened bool
}

type OpenLinkErrorMsg struct {
	Err error
}

func LoadCmd(service Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		feeds, err := service.Load(ctx)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}
		return LoadSuccessMsg{Feeds: feeds}
	}
}

func SyncAllCmd(service Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		start := time.Now()

		results, err := service.SyncAll(ctx)
		if err != nil {
			return SyncErrorMsg{Err: err, Duration: time.Since(start)}
		}
		return SyncSuccessMsg{Results: results, Duration: time.Since(start)}
	}
}

func AddFeedCmd(service Service, url string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		added, result, err := service.AddFeed(ctx, url)
		if err != nil {
			return AddFeedErrorMsg{Err: err}
		}
		return AddFeedSuccessMsg{Feed: added, Result: result}
	}
}

func DeleteFeedCmd(service Service, feedID int64, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := service.DeleteFeed(ctx, feedID); err != nil {
			return DeleteFeedErrorMsg{Err: err}
		}
		return DeleteFeedSuccessMsg{FeedID: feedID, Title: title}
	}
}

func ResolveEntryCmd(service Service, entryID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		text, err := service.ResolveEntry(ctx, entryID)
		if err != nil {
			return ResolveErrorMsg{EntryID: entryID, Err: err}
		}
		return ResolveSuccessMsg{EntryID: entryID, Text: text}
	}
}

// MarkReadCmd persists the read flag already applied to the snapshot; it
// only ever reports failures.
func MarkReadCmd(service Service, entryID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := service.MarkEntryRead(ctx, entryID); err != nil {
			return MarkReadErrorMsg{Err: err}
		}
		return nil
	}
}

// SetCollapsedCmd persists a collapse toggle the tree already shows; it
// only ever reports failures.
func SetCollapsedCmd(service Service, feedID int64, collapsed bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := service.SetCollapsed(ctx, feedID, collapsed); err != nil {
			return CollapseSaveErrorMsg{Err: err}
		}
		return nil
	}
}

func OpenLinkCmd(link string, openFn, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if openFn != nil {
			if err := openFn(link); err == nil {
				return OpenLinkSuccessMsg{Status: "Opened link in browser", Opened: true}
			}
		}
		if copyFn != nil {
			if err := copyFn(link); err == nil {
				return OpenLinkSuccessMsg{Status: "Could not open browser, link copied to clipboard"}
			}
		}
		return OpenLinkErrorMsg{Err: fmt.Errorf("could not open link or copy to clipboard")}
	}
}

func CopyLinkCmd(link string, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if copyFn != nil {
			if err := copyFn(link); err == nil {
				return OpenLinkSuccessMsg{Status: "Link copied to clipboard"}
			}
		}
		return OpenLinkErrorMsg{Err: fmt.Errorf("could not copy link to clipboard")}
	}
}
