package dom

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// ErrIndexSize is returned for offsets beyond a node's length
	ErrIndexSize = errors.New("offset out of range")

	// ErrWrongDocument is returned when boundary points live in different trees
	ErrWrongDocument = errors.New("boundary points in different trees")

	// ErrPartialSelection is returned by SurroundContents when the range
	// partially selects a non-text node and therefore cannot be wrapped in place
	ErrPartialSelection = errors.New("range partially selects a non-text node")
)

// Range is a pair of boundary points in a document tree.
// For text nodes the offset counts bytes of Data; for other nodes it counts children.
type Range struct {
	StartContainer *html.Node
	StartOffset    int
	EndContainer   *html.Node
	EndOffset      int
}

// NewRange creates a validated range. The start must not follow the end.
func NewRange(startContainer *html.Node, startOffset int, endContainer *html.Node, endOffset int) (*Range, error) {
	if startContainer == nil || endContainer == nil {
		return nil, fmt.Errorf("nil boundary container")
	}
	if startOffset < 0 || startOffset > nodeLength(startContainer) {
		return nil, fmt.Errorf("start: %w", ErrIndexSize)
	}
	if endOffset < 0 || endOffset > nodeLength(endContainer) {
		return nil, fmt.Errorf("end: %w", ErrIndexSize)
	}
	if rootOf(startContainer) != rootOf(endContainer) {
		return nil, ErrWrongDocument
	}
	if pointIndex(startContainer, startOffset) > pointIndex(endContainer, endOffset) {
		return nil, fmt.Errorf("start follows end")
	}
	return &Range{
		StartContainer: startContainer,
		StartOffset:    startOffset,
		EndContainer:   endContainer,
		EndOffset:      endOffset,
	}, nil
}

// Clone returns an independent copy with the same boundary points
func (r *Range) Clone() *Range {
	c := *r
	return &c
}

// Collapsed reports whether start and end are the same point
func (r *Range) Collapsed() bool {
	return r.StartContainer == r.EndContainer && r.StartOffset == r.EndOffset
}

// Detached reports whether the range no longer sits inside a document,
// for example because its container was removed from the page.
func (r *Range) Detached() bool {
	return rootOf(r.StartContainer).Type != html.DocumentNode ||
		rootOf(r.EndContainer).Type != html.DocumentNode
}

// String returns the visible text selected by the range
func (r *Range) String() string {
	var b strings.Builder
	r.EachText(func(t *html.Node, from, to int) {
		if visible(t) {
			b.WriteString(t.Data[from:to])
		}
	})
	return b.String()
}

// EachText visits every text node intersecting the range, in document order,
// with the selected byte span of its data.
func (r *Range) EachText(fn func(t *html.Node, from, to int)) {
	inside, done := false, false

	mark := func(n *html.Node, i int) {
		if n == r.StartContainer && i == r.StartOffset {
			inside = true
		}
		if n == r.EndContainer && i == r.EndOffset {
			done = true
		}
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if done {
			return
		}
		switch n.Type {
		case html.TextNode:
			from, to := 0, len(n.Data)
			if n == r.StartContainer {
				inside = true
				from = r.StartOffset
			}
			if n == r.EndContainer {
				to = r.EndOffset
				done = true
			}
			if inside && from < to {
				fn(n, from, to)
			}
			return
		case html.CommentNode, html.DoctypeNode:
			if n == r.StartContainer {
				inside = true
			}
			if n == r.EndContainer {
				done = true
			}
			return
		}

		i := 0
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			mark(n, i)
			if done {
				return
			}
			walk(c)
			if done {
				return
			}
			i++
		}
		mark(n, i)
	}
	walk(rootOf(r.StartContainer))
}

// SurroundContents wraps the range contents in wrapper, in place.
// It fails with ErrPartialSelection, without touching the tree, whenever the
// range partially selects a non-text node; no extract-and-reinsert fallback is
// attempted. On success the range is updated to select the wrapper.
func (r *Range) SurroundContents(wrapper *html.Node) error {
	if wrapper == nil || wrapper.Parent != nil || wrapper.Type != html.ElementNode {
		return fmt.Errorf("wrapper must be a detached element")
	}

	sc, so := r.StartContainer, r.StartOffset
	ec, eo := r.EndContainer, r.EndOffset
	ca := commonAncestor(sc, ec)
	if ca == nil {
		return ErrWrongDocument
	}

	// A boundary container other than the common ancestor must be a text
	// child of it; anything deeper is a partially selected element.
	if sc != ca && (sc.Type != html.TextNode || sc.Parent != ca) {
		return ErrPartialSelection
	}
	if ec != ca && (ec.Type != html.TextNode || ec.Parent != ca) {
		return ErrPartialSelection
	}

	if ca.Type == html.TextNode {
		return r.surroundWithinText(ca, wrapper)
	}
	if ca.Type != html.ElementNode && ca.Type != html.DocumentNode {
		return ErrPartialSelection
	}

	// Resolve the end reference before any split shifts child positions.
	var endRef *html.Node
	if ec == ca {
		endRef = childAt(ca, eo)
	} else {
		switch {
		case eo >= len(ec.Data):
			endRef = ec.NextSibling
		case eo <= 0:
			endRef = ec
		default:
			endRef = splitText(ec, eo)
		}
	}

	var startNode *html.Node
	if sc == ca {
		startNode = childAt(ca, so)
	} else {
		switch {
		case so <= 0:
			startNode = sc
		case so >= len(sc.Data):
			startNode = sc.NextSibling
		default:
			startNode = splitText(sc, so)
		}
	}

	var moved []*html.Node
	for n := startNode; n != nil && n != endRef; n = n.NextSibling {
		moved = append(moved, n)
	}
	for _, n := range moved {
		ca.RemoveChild(n)
		wrapper.AppendChild(n)
	}
	ca.InsertBefore(wrapper, endRef)

	r.selectNode(wrapper)
	return nil
}

func (r *Range) surroundWithinText(t *html.Node, wrapper *html.Node) error {
	if t.Parent == nil {
		return ErrPartialSelection
	}
	before := t.Data[:r.StartOffset]
	middle := t.Data[r.StartOffset:r.EndOffset]
	after := t.Data[r.EndOffset:]

	parent := t.Parent
	next := t.NextSibling
	t.Data = before
	wrapper.AppendChild(NewText(middle))
	parent.InsertBefore(wrapper, next)
	if after != "" {
		parent.InsertBefore(NewText(after), next)
	}
	if before == "" {
		parent.RemoveChild(t)
	}

	r.selectNode(wrapper)
	return nil
}

func (r *Range) selectNode(n *html.Node) {
	i := indexOf(n)
	r.StartContainer, r.StartOffset = n.Parent, i
	r.EndContainer, r.EndOffset = n.Parent, i+1
}

// splitText splits t at offset and returns the new node holding the tail
func splitText(t *html.Node, offset int) *html.Node {
	tail := NewText(t.Data[offset:])
	t.Data = t.Data[:offset]
	t.Parent.InsertBefore(tail, t.NextSibling)
	return tail
}

// pointIndex maps a boundary point to a position that increases in document order
func pointIndex(container *html.Node, offset int) int {
	pos, result := 0, -1

	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.TextNode || n.Type == html.CommentNode {
			if n == container {
				result = pos + offset
				return true
			}
			pos += len(n.Data) + 1
			return false
		}
		i := 0
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if n == container && i == offset {
				result = pos
				return true
			}
			pos++
			if walk(c) {
				return true
			}
			i++
		}
		if n == container && i == offset {
			result = pos
			return true
		}
		pos++
		return false
	}
	walk(rootOf(container))
	return result
}

// visible reports whether text node t is selectable page text
func visible(t *html.Node) bool {
	for p := t.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		switch p.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
			return false
		}
	}
	return Rendered(t.Parent)
}
