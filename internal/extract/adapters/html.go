package adapters

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Elements whose text is never shown
var hiddenElements = map[string]bool{
	"script": true, "style": true, "head": true, "noscript": true, "template": true,
}

// Elements that end a line of visible text
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "table": true,
	"section": true, "article": true, "header": true, "footer": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// HTMLAdapter extracts the visible text of HTML documents
type HTMLAdapter struct {
	BaseAdapter
}

// NewHTMLAdapter creates a new HTML adapter
func NewHTMLAdapter() *HTMLAdapter {
	return &HTMLAdapter{}
}

// Name returns the adapter name
func (a *HTMLAdapter) Name() string {
	return "html"
}

// CanHandle checks for an HTML extension or sniffed type
func (a *HTMLAdapter) CanHandle(path string, contentType string) bool {
	return hasExt(path, ".html", ".htm", ".xhtml") || strings.HasPrefix(contentType, "text/html")
}

// Extract returns the text of the main content, one block per line
func (a *HTMLAdapter) Extract(ctx context.Context, path string, data []byte) (string, error) {
	doc, err := a.parse(data)
	if err != nil {
		return "", err
	}
	if doc == nil {
		return "", nil
	}

	var buf strings.Builder
	a.visibleText(a.mainContent(doc), &buf)

	lines := strings.Split(buf.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (a *HTMLAdapter) parse(data []byte) (*html.Node, error) {
	text, ok := decodeText(data)
	if !ok {
		return nil, nil
	}
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// mainContent prefers <main>, then <article> or role=main, then the body
func (a *HTMLAdapter) mainContent(doc *html.Node) *html.Node {
	if n := a.FindFirst(doc, isElement("main")); n != nil {
		return n
	}
	if n := a.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && (n.Data == "article" || a.GetAttribute(n, "role") == "main")
	}); n != nil {
		return n
	}
	if n := a.FindFirst(doc, isElement("body")); n != nil {
		return n
	}
	return doc
}

func (a *HTMLAdapter) visibleText(n *html.Node, buf *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
		return
	case html.ElementNode:
		if hiddenElements[n.Data] {
			return
		}
		if n.Data == "td" || n.Data == "th" {
			buf.WriteString(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		a.visibleText(c, buf)
	}
	if n.Type == html.ElementNode && blockElements[n.Data] {
		buf.WriteString("\n")
	}
}
