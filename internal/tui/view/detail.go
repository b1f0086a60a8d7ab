package view

import (
	"strings"
	"time"

	article "github.com/glabrego/tidings/internal/render/article"

	"github.com/glabrego/tidings/internal/feed"
)

func EntryMetaLines(entry feed.Entry, feedTitle string, width int) []string {
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		title = "(untitled)"
	}

	lines := make([]string, 0, 8)
	lines = append(lines, article.WrapText(title, width)...)
	lines = append(lines, strings.Repeat("=", max(1, min(width, len(title)))))
	lines = append(lines, "")

	if feedTitle != "" {
		lines = append(lines, article.WrapText("Feed: "+feedTitle, width)...)
	}
	lines = append(lines, "Date: "+entry.PublishedAt.UTC().Format(time.RFC3339))
	if entry.Resolved() {
		lines = append(lines, "Content: full text")
	} else {
		lines = append(lines, "Content: summary")
	}
	if entry.Link != "" {
		lines = append(lines, article.WrapText("Link: "+entry.Link, width)...)
	}
	return lines
}

func DetailLines(entry feed.Entry, feedTitle string, width int) []string {
	lines := EntryMetaLines(entry, feedTitle, width)
	content := article.ContentLines(entry, width)
	if len(content) > 0 {
		lines = append(lines, "")
		lines = append(lines, content...)
	}
	return lines
}

func DetailMaxTop(linesLen, bodyHeight int) int {
	maxTop := linesLen - bodyHeight
	if maxTop < 0 {
		return 0
	}
	return maxTop
}

func RenderDetailLines(lines []string, top, maxLines int) string {
	if len(lines) == 0 {
		return ""
	}
	if top < 0 {
		top = 0
	}
	if top > len(lines)-1 {
		top = len(lines) - 1
	}
	end := len(lines)
	if maxLines > 0 && top+maxLines < end {
		end = top + maxLines
	}
	return strings.Join(lines[top:end], "\n") + "\n"
}
