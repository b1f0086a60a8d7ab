// Package content resolves the full text of an entry by fetching its
// canonical link and extracting the readable portion of the page.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	nethtml "golang.org/x/net/html"

	"github.com/glabrego/tidings/internal/feed"
)

// ResolutionError covers everything that keeps an entry from resolving:
// transport failure, a non-HTML response, or an extraction too thin to be
// an article. Callers fall back to the browser instead of retrying.
type ResolutionError struct {
	URL    string
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("resolve %s: %s", e.URL, e.Reason)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

const userAgent = "tidings/1.0 (+https://github.com/glabrego/tidings)"

// minTextRunes rejects extractions that are plainly not an article, such
// as a cookie wall or an empty shell page.
const minTextRunes = 120

const maxBodyBytes = 10 << 20

// Resolver fetches article pages. Deadlines come from the caller's
// context.
type Resolver struct {
	http *http.Client
}

func NewResolver(httpClient *http.Client) *Resolver {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Resolver{http: httpClient}
}

// Resolve fetches link and returns the page's readable text. Re-invoking
// is safe; the caller overwrites any previously cached content.
func (r *Resolver) Resolve(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", &ResolutionError{URL: link, Reason: "build request", Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html, application/xhtml+xml")

	resp, err := r.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &feed.TimeoutError{Op: "resolve", URL: link}
		}
		return "", &ResolutionError{URL: link, Reason: "fetch page", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &ResolutionError{URL: link, Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return "", &ResolutionError{URL: link, Reason: fmt.Sprintf("non-HTML content type %q", ct)}
	}

	doc, err := nethtml.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &feed.TimeoutError{Op: "resolve", URL: link}
		}
		return "", &ResolutionError{URL: link, Reason: "parse page", Err: err}
	}

	text := ExtractReadableText(doc)
	if utf8.RuneCountInString(text) < minTextRunes {
		return "", &ResolutionError{URL: link, Reason: "extracted text too short"}
	}
	return text, nil
}

// ExtractReadableText walks a parsed page and returns its readable text,
// paragraphs separated by blank lines. The best content root wins:
// <article>, then <main>, then <body>.
func ExtractReadableText(doc *nethtml.Node) string {
	root := findElement(doc, "article")
	if root == nil {
		root = findElement(doc, "main")
	}
	if root == nil {
		root = findElement(doc, "body")
	}
	if root == nil {
		root = doc
	}
	paragraphs := make([]string, 0, 16)
	var current strings.Builder
	flush := func() {
		p := strings.Join(strings.Fields(current.String()), " ")
		current.Reset()
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	collectText(root, &current, flush)
	flush()
	return strings.Join(paragraphs, "\n\n")
}

// skippedElements are subtrees that never hold article text.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"iframe":   true,
	"svg":      true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"aside":    true,
	"form":     true,
	"button":   true,
	"figure":   true,
}

func blockElement(tag string) bool {
	switch tag {
	case "p", "div", "section", "article", "main",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "blockquote", "pre", "table", "tr", "br", "hr", "dl", "dt", "dd":
		return true
	default:
		return false
	}
}

func collectText(node *nethtml.Node, current *strings.Builder, flush func()) {
	switch node.Type {
	case nethtml.TextNode:
		current.WriteString(node.Data)
		current.WriteString(" ")
		return
	case nethtml.ElementNode:
		tag := strings.ToLower(node.Data)
		if skippedElements[tag] {
			return
		}
		if blockElement(tag) {
			flush()
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			collectText(child, current, flush)
		}
		if blockElement(tag) {
			flush()
		}
		return
	default:
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			collectText(child, current, flush)
		}
	}
}

func findElement(node *nethtml.Node, tag string) *nethtml.Node {
	if node == nil {
		return nil
	}
	if node.Type == nethtml.ElementNode && strings.EqualFold(node.Data, tag) {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, tag); found != nil {
			return found
		}
	}
	return nil
}
