// Package article turns stored entry content into styled terminal lines.
//
// Two content shapes flow through here. Cached full text is plain text
// with blank lines between paragraphs and only needs wrapping. Feed
// summaries are HTML fragments and go through a small node renderer.
// Either way the caller gets pre-wrapped lines ready for a viewport.
package article

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/glabrego/tidings/internal/feed"
)

var reANSICodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)
var reHTTPURL = regexp.MustCompile(`https?://[^\s)]+`)

// ContentLines renders the entry body wrapped to width. Cached full
// content wins over the summary; an entry with neither yields nil.
func ContentLines(entry feed.Entry, width int) []string {
	if entry.Resolved() {
		if text := strings.TrimSpace(*entry.FullContent); text != "" {
			return WrapText(text, width)
		}
	}
	summary := strings.TrimSpace(entry.Summary)
	if summary == "" {
		return nil
	}
	return summaryLines(summary, width)
}

// styleLinks colors every bare http(s) URL in place. It runs after
// wrapping, so a URL split across lines keeps its second half plain.
func styleLinks(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = reHTTPURL.ReplaceAllStringFunc(line, func(m string) string {
			return linkStyle.Render(m)
		})
	}
	return out
}

func trimBlankLines(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines) - 1
	for end >= start && strings.TrimSpace(lines[end]) == "" {
		end--
	}
	if end < start {
		return nil
	}
	out := make([]string, 0, end-start+1)
	prevBlank := false
	for i := start; i <= end; i++ {
		blank := strings.TrimSpace(lines[i]) == ""
		if blank && prevBlank {
			continue
		}
		out = append(out, lines[i])
		prevBlank = blank
	}
	return out
}

// WrapText greedily wraps text to width. Newlines mark paragraph breaks
// and survive as empty output lines; words longer than width are split.
func WrapText(text string, width int) []string {
	if width < 1 {
		return []string{text}
	}
	paragraphs := strings.Split(text, "\n")
	out := make([]string, 0, len(paragraphs))

	for _, p := range paragraphs {
		words := strings.Fields(p)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, word := range words {
			for len(word) > width {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				out = append(out, word[:width])
				word = word[width:]
			}

			if line == "" {
				line = word
				continue
			}
			if len(line)+1+len(word) <= width {
				line += " " + word
				continue
			}
			out = append(out, line)
			line = word
		}
		if line != "" {
			out = append(out, line)
		}
	}

	return out
}

func visibleLen(s string) int {
	return utf8.RuneCountInString(stripANSI(s))
}

func stripANSI(s string) string {
	return reANSICodes.ReplaceAllString(s, "")
}

func unescapeFallback(raw string, width int) []string {
	return WrapText(strings.TrimSpace(html.UnescapeString(raw)), width)
}
