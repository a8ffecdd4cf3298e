package tools

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// skippedElements are removed entirely during text and HTML extraction.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"svg":      true,
	"head":     true,
}

// blockElements get line breaks around them so extracted text keeps
// the page's visual grouping.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"div": true, "fieldset": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true, "br": true,
}

// htmlToText extracts the readable text of an HTML document or
// fragment, collapsing whitespace and keeping block structure as line
// breaks. The boolean reports whether output was truncated at maxLen.
func htmlToText(rawHTML string, maxLen int) (string, bool, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", false, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var b strings.Builder
	collectText(doc, &b)

	text, truncated := truncate(collapseBlankLines(b.String()), maxLen)
	return text, truncated, nil
}

// truncate cuts s to at most maxLen bytes without splitting a rune, so
// truncated output stays valid UTF-8 on the wire.
func truncate(s string, maxLen int) (string, bool) {
	if maxLen <= 0 || len(s) <= maxLen {
		return s, false
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], true
}

func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.CommentNode:
		return
	case html.ElementNode:
		if skippedElements[n.Data] {
			return
		}
		if blockElements[n.Data] {
			b.WriteString("\n")
		}
	case html.TextNode:
		text := strings.Join(strings.Fields(n.Data), " ")
		if text != "" {
			b.WriteString(text)
			b.WriteString(" ")
		}
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}

	if n.Type == html.ElementNode && blockElements[n.Data] {
		b.WriteString("\n")
	}
}

// collapseBlankLines trims trailing spaces and squeezes runs of blank
// lines down to one.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// preservedAttrs are kept when rendering cleaned HTML; everything else
// is stripped. The set is what an agent needs for element targeting.
var preservedAttrs = map[string]bool{
	"id": true, "class": true, "name": true, "type": true, "role": true,
	"href": true, "src": true, "alt": true, "value": true,
	"placeholder": true, "aria-label": true, "action": true, "method": true,
}

// cleanHTML renders a reduced copy of the document: noise elements
// removed, attributes stripped down to the targeting set. The boolean
// reports truncation at maxLen.
func cleanHTML(rawHTML string, maxLen int) (string, bool, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", false, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var b strings.Builder
	renderClean(doc, &b)

	out, truncated := truncate(strings.TrimSpace(b.String()), maxLen)
	return out, truncated, nil
}

func renderClean(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		text := strings.Join(strings.Fields(n.Data), " ")
		if text != "" {
			b.WriteString(html.EscapeString(text))
		}
		return
	case html.ElementNode:
		if skippedElements[n.Data] {
			return
		}
		b.WriteString("<")
		b.WriteString(n.Data)
		for _, attr := range n.Attr {
			key := strings.ToLower(attr.Key)
			if preservedAttrs[key] || strings.HasPrefix(key, "data-") {
				fmt.Fprintf(b, " %s=%q", key, attr.Val)
			}
		}
		b.WriteString(">")
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderClean(c, b)
	}

	if n.Type == html.ElementNode && !voidElements[n.Data] {
		fmt.Fprintf(b, "</%s>", n.Data)
		if blockElements[n.Data] {
			b.WriteString("\n")
		}
	}
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}
