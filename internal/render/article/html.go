package article

import (
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/lipgloss"
	nethtml "golang.org/x/net/html"
)

// summaryLines parses a summary fragment and renders its block structure.
// Parse failures degrade to entity-unescaped wrapped text.
func summaryLines(raw string, width int) []string {
	doc, err := nethtml.Parse(strings.NewReader("<html><body>" + raw + "</body></html>"))
	if err != nil {
		return unescapeFallback(raw, width)
	}
	body := findBodyNode(doc)
	if body == nil {
		return unescapeFallback(raw, width)
	}
	r := fragmentRenderer{width: max(1, width)}
	return styleLinks(trimBlankLines(r.renderNodes(elementChildren(body), 0)))
}

type fragmentRenderer struct {
	width int
}

func (r fragmentRenderer) renderNodes(nodes []*nethtml.Node, listDepth int) []string {
	lines := make([]string, 0, len(nodes)*2)
	inlineParts := make([]string, 0, 4)
	flushInline := func() {
		text := normalizeInlineText(strings.Join(inlineParts, " "))
		inlineParts = inlineParts[:0]
		if text == "" {
			return
		}
		block := WrapText(text, r.width)
		if len(block) == 0 {
			return
		}
		if len(lines) > 0 && lines[len(lines)-1] != "" {
			lines = append(lines, "")
		}
		lines = append(lines, block...)
	}

	for _, node := range nodes {
		switch node.Type {
		case nethtml.TextNode:
			inlineParts = append(inlineParts, node.Data)
		case nethtml.ElementNode:
			if isBlockElement(node.Data) {
				flushInline()
				block := r.renderBlock(node, listDepth)
				if len(block) == 0 {
					continue
				}
				if len(lines) > 0 && lines[len(lines)-1] != "" {
					lines = append(lines, "")
				}
				lines = append(lines, block...)
				continue
			}
			inlineParts = append(inlineParts, r.renderInlineNode(node))
		}
	}
	flushInline()
	return trimBlankLines(lines)
}

func (r fragmentRenderer) renderBlock(node *nethtml.Node, listDepth int) []string {
	tag := strings.ToLower(node.Data)
	switch tag {
	case "script", "style", "noscript", "img":
		return nil
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(tag[1] - '0')
		prefix := headingPrefix(level)
		text := normalizeInlineText(r.renderInlineChildren(node))
		return styleNonBlankLines(
			wrapPrefixedText(text, r.width, prefix, strings.Repeat(" ", visibleLen(prefix))),
			headingStyle,
		)
	case "p", "div", "section", "article", "main", "header", "footer", "aside", "nav":
		if hasBlockChild(node) {
			return r.renderNodes(elementChildren(node), listDepth)
		}
		text := normalizeInlineText(r.renderInlineChildren(node))
		if text != "" {
			return WrapText(text, r.width)
		}
		return r.renderNodes(elementChildren(node), listDepth)
	case "blockquote":
		inner := r.renderNodes(elementChildren(node), listDepth)
		if len(inner) == 0 {
			text := normalizeInlineText(r.renderInlineChildren(node))
			if text == "" {
				return nil
			}
			inner = WrapText(text, r.width-2)
		}
		out := make([]string, 0, len(inner))
		for _, line := range inner {
			if strings.TrimSpace(line) == "" {
				out = append(out, "")
				continue
			}
			out = append(out, quotePrefix+quoteStyle.Render(line))
		}
		return out
	case "ul":
		return r.renderList(node, false, listDepth+1)
	case "ol":
		return r.renderList(node, true, listDepth+1)
	case "table":
		return r.renderTableText(node)
	case "figcaption", "caption":
		text := normalizeInlineText(r.renderInlineChildren(node))
		return styleNonBlankLines(
			wrapPrefixedText(text, r.width, "— ", "  "),
			captionStyle,
		)
	case "figure":
		return r.renderNodes(elementChildren(node), listDepth)
	case "pre":
		text := strings.ReplaceAll(collectRawText(node), "\r\n", "\n")
		rawLines := strings.Split(text, "\n")
		out := make([]string, 0, len(rawLines))
		for _, line := range rawLines {
			line = strings.TrimRight(line, " \t")
			if line == "" {
				out = append(out, "")
				continue
			}
			out = append(out, "    "+line)
		}
		return trimBlankLines(out)
	case "hr":
		return []string{strings.Repeat("-", min(max(r.width, 3), 24))}
	case "dl":
		return r.renderDefinitionList(node, listDepth)
	case "li":
		return r.renderListItem(node, listDepth, "- ")
	default:
		text := normalizeInlineText(r.renderInlineChildren(node))
		if text != "" {
			return WrapText(text, r.width)
		}
		return r.renderNodes(elementChildren(node), listDepth)
	}
}

// renderTableText flattens a table to one line of cell text per row.
func (r fragmentRenderer) renderTableText(node *nethtml.Node) []string {
	lines := make([]string, 0, 8)
	var walk func(*nethtml.Node)
	walk = func(n *nethtml.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != nethtml.ElementNode {
				continue
			}
			if strings.ToLower(child.Data) != "tr" {
				walk(child)
				continue
			}
			cells := make([]string, 0, 4)
			for cell := child.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type != nethtml.ElementNode {
					continue
				}
				switch strings.ToLower(cell.Data) {
				case "td", "th":
					if text := normalizeInlineText(r.renderInlineChildren(cell)); text != "" {
						cells = append(cells, text)
					}
				}
			}
			if len(cells) > 0 {
				lines = append(lines, WrapText(strings.Join(cells, "  "), r.width)...)
			}
		}
	}
	walk(node)
	return trimBlankLines(lines)
}

func (r fragmentRenderer) renderDefinitionList(node *nethtml.Node, listDepth int) []string {
	lines := make([]string, 0, 8)
	indent := strings.Repeat("  ", max(0, listDepth-1))
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != nethtml.ElementNode {
			continue
		}
		switch strings.ToLower(child.Data) {
		case "dt":
			text := normalizeInlineText(r.renderInlineChildren(child))
			if text == "" {
				continue
			}
			lines = append(lines, wrapPrefixedText(text, r.width, indent+"• ", indent+"  ")...)
		case "dd":
			text := normalizeInlineText(r.renderInlineChildren(child))
			if text == "" {
				continue
			}
			lines = append(lines, wrapPrefixedText(text, r.width, indent+"  ", indent+"  ")...)
		}
	}
	return trimBlankLines(lines)
}

func (r fragmentRenderer) renderList(node *nethtml.Node, ordered bool, listDepth int) []string {
	lines := make([]string, 0, 16)
	itemIndex := 0
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != nethtml.ElementNode || strings.ToLower(child.Data) != "li" {
			continue
		}
		itemIndex++
		marker := unorderedListMarker(listDepth)
		if ordered {
			marker = fmt.Sprintf("%d. ", itemIndex)
		}
		itemLines := r.renderListItem(child, listDepth, marker)
		if len(itemLines) == 0 {
			continue
		}
		if len(lines) > 0 && lines[len(lines)-1] != "" {
			lines = append(lines, "")
		}
		lines = append(lines, itemLines...)
	}
	return trimBlankLines(lines)
}

func (r fragmentRenderer) renderListItem(node *nethtml.Node, listDepth int, marker string) []string {
	indent := strings.Repeat("  ", max(0, listDepth-1))
	firstPrefix := indent + marker
	restPrefix := indent + strings.Repeat(" ", visibleLen(marker))
	lines := make([]string, 0, 8)

	textParts := make([]string, 0, 4)
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == nethtml.ElementNode {
			tag := strings.ToLower(child.Data)
			if tag == "ul" || tag == "ol" {
				continue
			}
		}
		textParts = append(textParts, r.renderInlineNode(child))
	}
	text := normalizeInlineText(strings.Join(textParts, " "))
	if text != "" {
		lines = append(lines, wrapPrefixedText(text, r.width, firstPrefix, restPrefix)...)
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != nethtml.ElementNode {
			continue
		}
		var nested []string
		switch strings.ToLower(child.Data) {
		case "ul":
			nested = r.renderList(child, false, listDepth+1)
		case "ol":
			nested = r.renderList(child, true, listDepth+1)
		}
		if len(nested) == 0 {
			continue
		}
		if len(lines) > 0 && lines[len(lines)-1] != "" {
			lines = append(lines, "")
		}
		lines = append(lines, nested...)
	}
	return trimBlankLines(lines)
}

func (r fragmentRenderer) renderInlineChildren(node *nethtml.Node) string {
	parts := make([]string, 0, 4)
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		parts = append(parts, r.renderInlineNode(child))
	}
	return strings.Join(parts, " ")
}

func (r fragmentRenderer) renderInlineNode(node *nethtml.Node) string {
	if node == nil {
		return ""
	}
	switch node.Type {
	case nethtml.TextNode:
		return node.Data
	case nethtml.ElementNode:
		tag := strings.ToLower(node.Data)
		switch tag {
		case "script", "style", "noscript", "img":
			return ""
		case "br":
			return "\n"
		case "a":
			text := normalizeInlineText(r.renderInlineChildren(node))
			href := strings.TrimSpace(nodeAttr(node, "href"))
			switch {
			case href == "":
				return text
			case text == "":
				return href
			case strings.EqualFold(text, href):
				return href
			default:
				return text + " (" + href + ")"
			}
		case "q":
			text := normalizeInlineText(r.renderInlineChildren(node))
			if text == "" {
				return ""
			}
			return `"` + text + `"`
		case "code", "kbd", "samp":
			text := normalizeInlineText(r.renderInlineChildren(node))
			if text == "" {
				return ""
			}
			return codeStyle.Render("`" + text + "`")
		default:
			return r.renderInlineChildren(node)
		}
	default:
		return ""
	}
}

// normalizeInlineText unescapes entities and collapses runs of whitespace,
// keeping newlines (from <br>) as paragraph breaks and tidying the space
// that joining inline parts leaves before punctuation.
func normalizeInlineText(s string) string {
	s = html.UnescapeString(s)
	parts := strings.Split(s, "\n")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Join(strings.Fields(part), " ")
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	normalized := strings.Join(out, "\n")
	replacer := strings.NewReplacer(
		" .", ".",
		" ,", ",",
		" ;", ";",
		" :", ":",
		" !", "!",
		" ?", "?",
		" )", ")",
		"( ", "(",
	)
	return replacer.Replace(normalized)
}

func wrapPrefixedText(text string, width int, firstPrefix, restPrefix string) []string {
	text = normalizeInlineText(text)
	if text == "" {
		return nil
	}
	if width < 1 {
		return []string{firstPrefix + text}
	}
	firstWidth := max(1, width-visibleLen(firstPrefix))
	restWidth := max(1, width-visibleLen(restPrefix))
	paragraphs := strings.Split(text, "\n")
	out := make([]string, 0, len(paragraphs))
	firstLine := true
	for _, p := range paragraphs {
		p = normalizeInlineText(p)
		if p == "" {
			if len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
			continue
		}
		lineWidth := restWidth
		if firstLine {
			lineWidth = firstWidth
		}
		wrapped := WrapText(p, lineWidth)
		for i, line := range wrapped {
			if firstLine && i == 0 {
				out = append(out, firstPrefix+line)
				continue
			}
			out = append(out, restPrefix+line)
		}
		firstLine = false
	}
	return trimBlankLines(out)
}

func headingPrefix(level int) string {
	if level < 1 {
		level = 1
	}
	if level > len(headingBars) {
		level = len(headingBars)
	}
	style := headingBars[level-1]
	return style.Render("▌") + strings.Repeat(" ", max(1, level-1))
}

func unorderedListMarker(listDepth int) string {
	switch listDepth {
	case 1:
		return "• "
	case 2:
		return "◦ "
	case 3:
		return "▪ "
	default:
		return "▫ "
	}
}

func styleNonBlankLines(lines []string, style lipgloss.Style) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			out[i] = line
			continue
		}
		out[i] = style.Render(line)
	}
	return out
}

func isBlockElement(tag string) bool {
	switch strings.ToLower(tag) {
	case "h1", "h2", "h3", "h4", "h5", "h6",
		"p", "div", "section", "article", "main", "header", "footer", "aside", "nav",
		"blockquote", "ul", "ol", "li", "table", "thead", "tbody", "tfoot", "tr", "td", "th", "img",
		"dl", "dt", "dd", "pre", "figure", "figcaption", "caption", "hr":
		return true
	default:
		return false
	}
}

func hasBlockChild(node *nethtml.Node) bool {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == nethtml.ElementNode && isBlockElement(child.Data) {
			return true
		}
	}
	return false
}

func findBodyNode(node *nethtml.Node) *nethtml.Node {
	if node == nil {
		return nil
	}
	if node.Type == nethtml.ElementNode && strings.EqualFold(node.Data, "body") {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findBodyNode(child); found != nil {
			return found
		}
	}
	return nil
}

func elementChildren(node *nethtml.Node) []*nethtml.Node {
	children := make([]*nethtml.Node, 0, 4)
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == nethtml.TextNode && strings.TrimSpace(child.Data) == "" {
			continue
		}
		children = append(children, child)
	}
	return children
}

func nodeAttr(node *nethtml.Node, name string) string {
	for _, attr := range node.Attr {
		if strings.EqualFold(attr.Key, name) {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}

func collectRawText(node *nethtml.Node) string {
	if node == nil {
		return ""
	}
	if node.Type == nethtml.TextNode {
		return node.Data
	}
	var b strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(collectRawText(child))
	}
	return b.String()
}
