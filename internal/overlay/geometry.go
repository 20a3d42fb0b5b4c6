package overlay

import (
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/ppiankov/trustlens/internal/dom"
)

// Rect is a viewport-relative bounding box
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Width of the rect
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height of the rect
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Degenerate reports a zero-area rect, as produced by detached ranges
func (r Rect) Degenerate() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Viewport describes the scroll position and visible width of the window
type Viewport struct {
	ScrollX, ScrollY float64
	InnerWidth       float64
}

// Geometry supplies layout information for a document
type Geometry interface {
	BoundingRect(r *dom.Range) Rect
	Viewport() Viewport
}

// FlowGeometry is a fixed-pitch text layout: every block starts a new line,
// lines wrap at the viewport width and each character is one cell.
type FlowGeometry struct {
	CharWidth  float64
	LineHeight float64
	View       Viewport
}

// NewFlowGeometry returns a layout with 8x18 cells in a 1280px viewport
func NewFlowGeometry() *FlowGeometry {
	return &FlowGeometry{
		CharWidth:  8,
		LineHeight: 18,
		View:       Viewport{InnerWidth: 1280},
	}
}

// Viewport returns the configured viewport
func (g *FlowGeometry) Viewport() Viewport {
	return g.View
}

// BoundingRect lays out the range's document and returns the box
// enclosing the selected characters, relative to the viewport.
func (g *FlowGeometry) BoundingRect(r *dom.Range) Rect {
	if r == nil || r.Detached() || r.Collapsed() {
		return Rect{}
	}

	spans := make(map[*html.Node][2]int)
	r.EachText(func(t *html.Node, from, to int) {
		spans[t] = [2]int{from, to}
	})
	if len(spans) == 0 {
		return Rect{}
	}

	var (
		x, y   float64
		rect   Rect
		hit    bool
		cols   = g.View.InnerWidth
		root   = r.StartContainer
		cw, lh = g.CharWidth, g.LineHeight
	)
	for root.Parent != nil {
		root = root.Parent
	}

	newline := func() {
		if x > 0 {
			x = 0
			y += lh
		}
	}
	extend := func() {
		cell := Rect{Left: x, Top: y, Right: x + cw, Bottom: y + lh}
		if !hit {
			rect, hit = cell, true
			return
		}
		rect.Left = min(rect.Left, cell.Left)
		rect.Top = min(rect.Top, cell.Top)
		rect.Right = max(rect.Right, cell.Right)
		rect.Bottom = max(rect.Bottom, cell.Bottom)
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			span, selected := spans[n]
			for i, w := 0, 0; i < len(n.Data); i += w {
				_, w = utf8.DecodeRuneInString(n.Data[i:])
				if x+cw > cols {
					newline()
				}
				if selected && i >= span[0] && i < span[1] {
					extend()
				}
				x += cw
			}
			return
		case html.ElementNode:
			if dom.Display(n) == dom.DisplayNone {
				return
			}
		}

		block := dom.IsBlock(n)
		if block {
			newline()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			newline()
		}
	}
	walk(root)

	if !hit {
		return Rect{}
	}
	rect.Left -= g.View.ScrollX
	rect.Right -= g.View.ScrollX
	rect.Top -= g.View.ScrollY
	rect.Bottom -= g.View.ScrollY
	return rect
}
