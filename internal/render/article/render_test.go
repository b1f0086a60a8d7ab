package article

import (
	"regexp"
	"strings"
	"testing"

	"github.com/glabrego/tidings/internal/feed"
)

var stripANSIForTest = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plainJoin(lines []string) string {
	return stripANSIForTest.ReplaceAllString(strings.Join(lines, "\n"), "")
}

func TestContentLines_PrefersCachedFullContent(t *testing.T) {
	text := "First paragraph of the article.\n\nSecond paragraph of the article."
	entry := feed.Entry{
		Summary:     "<p>Short teaser.</p>",
		FullContent: &text,
	}

	got := plainJoin(ContentLines(entry, 80))
	if !strings.Contains(got, "First paragraph of the article.") {
		t.Fatalf("expected full content in output, got %q", got)
	}
	if !strings.Contains(got, "\n\nSecond paragraph of the article.") {
		t.Fatalf("expected paragraph break preserved, got %q", got)
	}
	if strings.Contains(got, "Short teaser.") {
		t.Fatalf("expected summary ignored when full content is cached, got %q", got)
	}
}

func TestContentLines_WrapsFullContentToWidth(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	entry := feed.Entry{FullContent: &text}

	lines := ContentLines(entry, 12)
	if len(lines) < 2 {
		t.Fatalf("expected wrapped output, got %+v", lines)
	}
	for _, line := range lines {
		if len(line) > 12 {
			t.Fatalf("line %q exceeds width 12", line)
		}
	}
	rejoined := strings.Join(strings.Fields(strings.Join(lines, " ")), " ")
	if rejoined != text {
		t.Fatalf("wrapping lost words: got %q, want %q", rejoined, text)
	}
}

func TestContentLines_BlankFullContentFallsBackToSummary(t *testing.T) {
	blank := "   "
	entry := feed.Entry{
		Summary:     "<p>Teaser text.</p>",
		FullContent: &blank,
	}

	got := plainJoin(ContentLines(entry, 80))
	if got != "Teaser text." {
		t.Fatalf("expected summary fallback, got %q", got)
	}
}

func TestContentLines_EmptyEntry(t *testing.T) {
	if got := ContentLines(feed.Entry{}, 80); got != nil {
		t.Fatalf("expected nil for empty entry, got %+v", got)
	}
}

func TestContentLines_RendersSummaryElements(t *testing.T) {
	entry := feed.Entry{
		Summary: `<h1>Main Title</h1>
			<h2>Subtitle</h2>
			<p>Intro with a <a href="https://example.com/link">reference</a>.</p>
			<ul><li>First point</li><li>Second point</li></ul>
			<ol><li>Step one</li><li>Step two</li></ol>
			<blockquote><p>Quoted claim</p></blockquote>`,
	}

	got := plainJoin(ContentLines(entry, 80))
	for _, want := range []string{
		"▌ Main Title",
		"▌ Subtitle",
		"reference (https://example.com/link)",
		"• First point",
		"1. Step one",
		"│ Quoted claim",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in rendered output, got %q", want, got)
		}
	}
}

func TestContentLines_StylesInlineCode(t *testing.T) {
	entry := feed.Entry{Summary: "<p>Run <code>go vet</code> often.</p>"}

	got := plainJoin(ContentLines(entry, 80))
	if got != "Run `go vet` often." {
		t.Fatalf("expected backtick-quoted code, got %q", got)
	}
}

func TestContentLines_PlainTextSummary(t *testing.T) {
	entry := feed.Entry{Summary: "Fish &amp; chips, nothing fancy."}

	got := plainJoin(ContentLines(entry, 80))
	if got != "Fish & chips, nothing fancy." {
		t.Fatalf("expected unescaped plain text, got %q", got)
	}
}

func TestContentLines_SuppressesImages(t *testing.T) {
	entry := feed.Entry{
		Summary: `<p>Before the picture.</p><img src="https://example.com/a.jpg" alt="A cabin"><p>After the picture.</p>`,
	}

	got := plainJoin(ContentLines(entry, 80))
	before := strings.Index(got, "Before the picture.")
	after := strings.Index(got, "After the picture.")
	if before == -1 || after == -1 || before > after {
		t.Fatalf("expected surrounding text in order, got %q", got)
	}
	if strings.Contains(got, "example.com/a.jpg") || strings.Contains(got, "A cabin") {
		t.Fatalf("expected image markup dropped, got %q", got)
	}
}

func TestContentLines_FlattensTableRows(t *testing.T) {
	entry := feed.Entry{
		Summary: `<table>
			<thead><tr><th>Metric</th><th>Value</th></tr></thead>
			<tbody><tr><td>Speed</td><td>Fast</td></tr></tbody>
		</table>`,
	}

	got := plainJoin(ContentLines(entry, 80))
	for _, want := range []string{"Metric  Value", "Speed  Fast"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected row %q in output, got %q", want, got)
		}
	}
	if strings.Contains(got, "|") {
		t.Fatalf("expected no grid characters, got %q", got)
	}
}

func TestContentLines_DropsScriptsAndStyles(t *testing.T) {
	entry := feed.Entry{
		Summary: `<p>Visible text.</p><script>alert(1)</script><style>p { color: red }</style>`,
	}

	got := plainJoin(ContentLines(entry, 80))
	if got != "Visible text." {
		t.Fatalf("expected scripts and styles dropped, got %q", got)
	}
}

func TestContentLines_NestedListsIndent(t *testing.T) {
	entry := feed.Entry{
		Summary: `<ul><li>Outer<ul><li>Inner</li></ul></li></ul>`,
	}

	got := plainJoin(ContentLines(entry, 80))
	if !strings.Contains(got, "• Outer") {
		t.Fatalf("expected outer bullet, got %q", got)
	}
	if !strings.Contains(got, "  ◦ Inner") {
		t.Fatalf("expected indented inner bullet, got %q", got)
	}
}

func TestContentLines_HardSplitsLongWords(t *testing.T) {
	entry := feed.Entry{Summary: "<p>superkalifragilistik</p>"}

	lines := ContentLines(entry, 8)
	for _, line := range lines {
		if len(line) > 8 {
			t.Fatalf("line %q exceeds width 8", line)
		}
	}
	if strings.Join(lines, "") != "superkalifragilistik" {
		t.Fatalf("hard split lost characters: %+v", lines)
	}
}
