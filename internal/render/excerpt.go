package render

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Excerpt reduces HTML article content to a plain-text preview of at
// most maxLen runes, collapsing whitespace and appending an ellipsis
// when the text is truncated. Script and style contents are dropped.
func Excerpt(content string, maxLen int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return truncate(collapse(content), maxLen)
	}

	var b strings.Builder
	for _, node := range doc.Selection.Nodes {
		collectText(node, &b)
	}

	return truncate(collapse(b.String()), maxLen)
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return strings.TrimSpace(string(runes[:maxLen])) + "..."
}
