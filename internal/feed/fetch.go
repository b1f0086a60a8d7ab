package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const userAgent = "tidings/1.0 (+https://github.com/glabrego/tidings)"

// maxBodyBytes bounds how much of a feed document is read; anything this
// large is not a feed worth parsing.
const maxBodyBytes = 10 << 20

// Fetcher retrieves and parses RSS/Atom documents. Deadlines come from
// the caller's context, so the embedded client carries no timeout.
type Fetcher struct {
	http   *http.Client
	parser *gofeed.Parser
}

func NewFetcher(httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Fetcher{
		http:   httpClient,
		parser: gofeed.NewParser(),
	}
}

// Fetch downloads feedURL and maps its items to parsed entries. Transport
// failures return a *FetchError, malformed documents a *ParseError, and
// deadline expiry a *TimeoutError.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (ParsedFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return ParsedFeed{}, &FetchError{URL: feedURL, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.1")

	resp, err := f.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ParsedFeed{}, &TimeoutError{Op: "fetch", URL: feedURL}
		}
		return ParsedFeed{}, &FetchError{URL: feedURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return ParsedFeed{}, &FetchError{URL: feedURL, Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)}
	}

	parsed, err := f.parser.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ParsedFeed{}, &TimeoutError{Op: "fetch", URL: feedURL}
		}
		return ParsedFeed{}, &ParseError{URL: feedURL, Err: err}
	}
	return mapParsedFeed(parsed), nil
}

func mapParsedFeed(src *gofeed.Feed) ParsedFeed {
	out := ParsedFeed{
		Title:   strings.TrimSpace(src.Title),
		Entries: make([]ParsedEntry, 0, len(src.Items)),
	}
	for _, item := range src.Items {
		if item == nil {
			continue
		}
		identity := strings.TrimSpace(item.GUID)
		if identity == "" {
			identity = strings.TrimSpace(item.Link)
		}
		if identity == "" {
			continue
		}
		out.Entries = append(out.Entries, ParsedEntry{
			IdentityKey: identity,
			Title:       strings.TrimSpace(item.Title),
			Link:        strings.TrimSpace(item.Link),
			PublishedAt: itemTimestamp(item),
			Summary:     itemSummary(item),
		})
	}
	return out
}

// itemTimestamp prefers the published date and falls back to updated,
// which is all many Atom feeds carry.
func itemTimestamp(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		t := item.PublishedParsed.UTC()
		return &t
	}
	if item.UpdatedParsed != nil {
		t := item.UpdatedParsed.UTC()
		return &t
	}
	return nil
}

func itemSummary(item *gofeed.Item) string {
	if s := strings.TrimSpace(item.Description); s != "" {
		return s
	}
	return strings.TrimSpace(item.Content)
}
