package drivers

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// visibleText returns the text a reader sees in rawHTML: scripts, styles and
// other non-rendered elements are dropped, whitespace is collapsed and block
// elements are separated by newlines.
func visibleText(rawHTML string) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var lines []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
			current = current[:0]
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.CommentNode:
			return
		case html.TextNode:
			if words := strings.Fields(n.Data); len(words) > 0 {
				current = append(current, strings.Join(words, " "))
			}
			return
		case html.ElementNode:
			tag := strings.ToLower(n.Data)
			if isHiddenElement(tag) {
				return
			}
			if isBlockElement(tag) {
				flush()
				defer flush()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	flush()

	return strings.Join(lines, "\n"), nil
}

// isHiddenElement returns true for elements whose content is never rendered
func isHiddenElement(tag string) bool {
	switch tag {
	case "head", "script", "style", "noscript", "template", "iframe", "object", "embed", "svg":
		return true
	}
	return false
}

// isBlockElement returns true for elements starting a new line of text
func isBlockElement(tag string) bool {
	switch tag {
	case "div", "p", "section", "article", "header", "footer", "nav", "main", "aside",
		"h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "table", "tr",
		"form", "fieldset", "blockquote", "pre", "br", "hr":
		return true
	}
	return false
}
