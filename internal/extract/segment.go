package extract

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ErrNoResultBlock is returned when the response has no alert container.
var ErrNoResultBlock = errors.New("no certificate info found in response")

// Lines locates the result container in a response page and segments it.
func Lines(markup string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	box := findResultBlock(doc)
	if box == nil {
		return nil, ErrNoResultBlock
	}
	return Segment(box), nil
}

// Segment turns the children of container into display lines. Consecutive
// text pieces are joined with a space until a <br> ends the line; nested
// elements other than <br> contribute their flattened text. Lines are
// whitespace-normalized and empty ones dropped. Markup without any <br>
// yields a single line.
func Segment(container *html.Node) []string {
	var (
		lines []string
		cur   []string
	)
	flush := func() {
		if line := normalizeSpace(strings.Join(cur, " ")); line != "" {
			lines = append(lines, line)
		}
		cur = cur[:0]
	}

	for c := container.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if txt := strings.TrimSpace(c.Data); txt != "" {
				cur = append(cur, txt)
			}
		case html.ElementNode:
			if c.Data == "br" {
				flush()
				continue
			}
			if txt := flatText(c); txt != "" {
				cur = append(cur, txt)
			}
		}
	}
	flush()

	return lines
}

// flatText joins the trimmed descendant text of n with single spaces.
func flatText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if txt := strings.TrimSpace(n.Data); txt != "" {
				parts = append(parts, txt)
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

// findResultBlock returns the first div, in document order, with a class
// token containing "alert".
func findResultBlock(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "div" && hasAlertClass(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findResultBlock(c); found != nil {
			return found
		}
	}
	return nil
}

func hasAlertClass(n *html.Node) bool {
	for _, cls := range strings.Fields(getAttr(n, "class")) {
		if strings.Contains(cls, "alert") {
			return true
		}
	}
	return false
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
