package article

import (
	"testing"

	"github.com/glabrego/tidings/internal/feed"
)

func FuzzContentLines(f *testing.F) {
	seeds := []string{
		"",
		"<p>Hello world</p>",
		"<h1>Title</h1><p>Paragraph</p>",
		"<div><img src='https://example.com/image.jpg' alt='Image'></div>",
		"<table><tr><th>a</th><th>b</th></tr><tr><td>1</td><td>2</td></tr></table>",
		"<blockquote><p>Quote</p></blockquote>",
		"<ul><li>one<ul><li>two</li></ul></li></ul>",
		"<<<<<<<<",
		"\x00\x01\x02<script>alert(1)</script>",
		"plain text\n\nwith paragraphs",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		if len(raw) > 10_000 {
			raw = raw[:10_000]
		}
		for _, width := range []int{1, 20, 72} {
			_ = ContentLines(feed.Entry{Summary: raw}, width)
			_ = ContentLines(feed.Entry{FullContent: &raw}, width)
		}
	})
}
