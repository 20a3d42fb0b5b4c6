package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attr returns the value of an attribute
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// HasClass reports whether an element carries the class
func HasClass(n *html.Node, class string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass appends a class to an element
func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	v, _ := Attr(n, "class")
	SetAttr(n, "class", strings.TrimSpace(v+" "+class))
}

// NewElement creates a detached element
func NewElement(tag string) *html.Node {
	a := atom.Lookup([]byte(tag))
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: a}
}

// NewText creates a detached text node
func NewText(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

// AppendText appends a text child to an element and returns the element
func AppendText(n *html.Node, data string) *html.Node {
	n.AppendChild(NewText(data))
	return n
}

// Remove detaches n from its parent. It is a no-op for detached nodes.
func Remove(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func childAt(n *html.Node, index int) *html.Node {
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if i == index {
			return c
		}
		i++
	}
	return nil
}

func childCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

func indexOf(n *html.Node) int {
	i := 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c == n {
			return i
		}
		i++
	}
	return -1
}

// nodeLength is the DOM "length" of a node: bytes for text, children for elements
func nodeLength(n *html.Node) int {
	switch n.Type {
	case html.TextNode, html.CommentNode:
		return len(n.Data)
	default:
		return childCount(n)
	}
}

func rootOf(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

func isAncestor(ancestor, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

func commonAncestor(a, b *html.Node) *html.Node {
	seen := make(map[*html.Node]bool)
	for p := a; p != nil; p = p.Parent {
		seen[p] = true
	}
	for p := b; p != nil; p = p.Parent {
		if seen[p] {
			return p
		}
	}
	return nil
}

// OuterHTML renders n and its subtree
func OuterHTML(n *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}
