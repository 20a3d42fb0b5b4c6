package dom

import (
	"errors"
	"strings"

	"golang.org/x/net/html"
)

// ErrTextNotFound is returned by FindText when the needle does not occur
var ErrTextNotFound = errors.New("text not found")

// FindText returns a range selecting the first occurrence of needle in the
// visible text under root. The match may span several text nodes.
func FindText(root *html.Node, needle string) (*Range, error) {
	if needle == "" {
		return nil, ErrTextNotFound
	}

	type span struct {
		node       *html.Node
		start, end int
	}
	var spans []span
	var b strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode && visible(n) {
			start := b.Len()
			b.WriteString(n.Data)
			spans = append(spans, span{node: n, start: start, end: b.Len()})
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	idx := strings.Index(b.String(), needle)
	if idx < 0 {
		return nil, ErrTextNotFound
	}
	end := idx + len(needle)

	var startNode, endNode *html.Node
	var startOff, endOff int
	for _, s := range spans {
		if startNode == nil && idx >= s.start && idx < s.end {
			startNode, startOff = s.node, idx-s.start
		}
		if endNode == nil && end > s.start && end <= s.end {
			endNode, endOff = s.node, end-s.start
		}
	}
	if startNode == nil || endNode == nil {
		return nil, ErrTextNotFound
	}
	return NewRange(startNode, startOff, endNode, endOff)
}
