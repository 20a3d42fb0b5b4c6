// Package dom models the subset of the browser DOM the page context needs:
// a parsed document, its live selection, ranges over it and block layout roles.
package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML page with a single live selection
type Document struct {
	Root      *html.Node
	selection *Selection
}

// Parse parses an HTML document
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{Root: root, selection: &Selection{}}, nil
}

// ParseString parses an HTML document from a string
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Selection returns the document's live selection
func (d *Document) Selection() *Selection {
	return d.selection
}

// Body returns the body element, or nil if the document has none
func (d *Document) Body() *html.Node {
	return d.find(func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
}

// GetElementByID returns the first element with the given id
func (d *Document) GetElementByID(id string) *html.Node {
	return d.find(func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		v, ok := Attr(n, "id")
		return ok && v == id
	})
}

// Contains reports whether n is attached to this document
func (d *Document) Contains(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == d.Root {
			return true
		}
	}
	return false
}

// Render writes the document as HTML
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.Root)
}

// String renders the document to a string
func (d *Document) String() string {
	var b strings.Builder
	_ = d.Render(&b)
	return b.String()
}

func (d *Document) find(match func(*html.Node) bool) *html.Node {
	var found *html.Node
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if match(n) {
			found = n
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(d.Root)
	return found
}
