package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Display values that make an element a block ancestor
const (
	DisplayBlock    = "block"
	DisplayListItem = "list-item"
	DisplayInline   = "inline"
	DisplayNone     = "none"
)

// defaultDisplay is the user-agent stylesheet display for elements that are not inline
var defaultDisplay = map[atom.Atom]string{
	atom.Html:       DisplayBlock,
	atom.Body:       DisplayBlock,
	atom.Address:    DisplayBlock,
	atom.Article:    DisplayBlock,
	atom.Aside:      DisplayBlock,
	atom.Blockquote: DisplayBlock,
	atom.Dd:         DisplayBlock,
	atom.Details:    DisplayBlock,
	atom.Dialog:     DisplayBlock,
	atom.Div:        DisplayBlock,
	atom.Dl:         DisplayBlock,
	atom.Dt:         DisplayBlock,
	atom.Fieldset:   DisplayBlock,
	atom.Figcaption: DisplayBlock,
	atom.Figure:     DisplayBlock,
	atom.Footer:     DisplayBlock,
	atom.Form:       DisplayBlock,
	atom.H1:         DisplayBlock,
	atom.H2:         DisplayBlock,
	atom.H3:         DisplayBlock,
	atom.H4:         DisplayBlock,
	atom.H5:         DisplayBlock,
	atom.H6:         DisplayBlock,
	atom.Header:     DisplayBlock,
	atom.Hr:         DisplayBlock,
	atom.Legend:     DisplayBlock,
	atom.Main:       DisplayBlock,
	atom.Nav:        DisplayBlock,
	atom.Ol:         DisplayBlock,
	atom.P:          DisplayBlock,
	atom.Pre:        DisplayBlock,
	atom.Section:    DisplayBlock,
	atom.Summary:    DisplayBlock,
	atom.Ul:         DisplayBlock,
	atom.Li:         DisplayListItem,
	atom.Table:      "table",
	atom.Tr:         "table-row",
	atom.Td:         "table-cell",
	atom.Th:         "table-cell",
	atom.Head:       DisplayNone,
	atom.Title:      DisplayNone,
	atom.Meta:       DisplayNone,
	atom.Link:       DisplayNone,
	atom.Base:       DisplayNone,
	atom.Script:     DisplayNone,
	atom.Style:      DisplayNone,
	atom.Template:   DisplayNone,
}

// Display returns the element's computed display: the last display
// declaration of its inline style, then the hidden attribute, then the
// user-agent default. Non-element nodes return "".
func Display(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	if style, ok := Attr(n, "style"); ok {
		if d := inlineDisplay(style); d != "" {
			return d
		}
	}
	if _, hidden := Attr(n, "hidden"); hidden {
		return DisplayNone
	}
	if d, ok := defaultDisplay[n.DataAtom]; ok {
		return d
	}
	return DisplayInline
}

// IsBlock reports whether n lays out as block or list-item
func IsBlock(n *html.Node) bool {
	switch Display(n) {
	case DisplayBlock, DisplayListItem:
		return true
	}
	return false
}

// BlockAncestor returns the nearest block-level inclusive ancestor of n,
// climbing out of text nodes first. It returns nil when there is none.
func BlockAncestor(n *html.Node) *html.Node {
	for n != nil && n.Type != html.ElementNode {
		n = n.Parent
	}
	for ; n != nil && n.Type == html.ElementNode; n = n.Parent {
		if IsBlock(n) {
			return n
		}
	}
	return nil
}

// Rendered reports whether n and every element above it lays out at all.
// Anything under head, a hidden attribute or display:none is not rendered.
func Rendered(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && Display(n) == DisplayNone {
			return false
		}
	}
	return true
}

func inlineDisplay(style string) string {
	display := ""
	for _, decl := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(prop), "display") {
			val = strings.TrimSpace(val)
			val = strings.TrimSpace(strings.TrimSuffix(val, "!important"))
			display = strings.ToLower(val)
		}
	}
	return display
}
