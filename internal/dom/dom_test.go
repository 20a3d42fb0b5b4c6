package dom

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseString(s)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	return doc
}

func mustFind(t *testing.T, doc *Document, needle string) *Range {
	t.Helper()
	r, err := FindText(doc.Root, needle)
	if err != nil {
		t.Fatalf("FindText(%q): %v", needle, err)
	}
	return r
}

func TestFindText_SpansNodes(t *testing.T) {
	doc := mustParse(t, `<p id="a">Hello <b>bold</b> world</p>`)

	r := mustFind(t, doc, "lo bold wo")

	if r.String() != "lo bold wo" {
		t.Errorf("Unexpected range text: %q", r.String())
	}
	if r.StartContainer.Data != "Hello " || r.StartOffset != 3 {
		t.Errorf("Unexpected start: %q@%d", r.StartContainer.Data, r.StartOffset)
	}
	if r.EndContainer.Data != " world" || r.EndOffset != 3 {
		t.Errorf("Unexpected end: %q@%d", r.EndContainer.Data, r.EndOffset)
	}
}

func TestFindText_NotFound(t *testing.T) {
	doc := mustParse(t, `<p>Hello</p>`)

	if _, err := FindText(doc.Root, "absent"); !errors.Is(err, ErrTextNotFound) {
		t.Errorf("Expected ErrTextNotFound, got %v", err)
	}
	if _, err := FindText(doc.Root, ""); !errors.Is(err, ErrTextNotFound) {
		t.Errorf("Expected ErrTextNotFound for empty needle, got %v", err)
	}
}

func TestFindText_SkipsNonRenderedText(t *testing.T) {
	doc := mustParse(t, `<html><head><title>Miracle cure goes viral</title></head><body>`+
		`<div hidden>Miracle cure</div><p style="display: none">Miracle cure</p>`+
		`<h1 id="h">Miracle cure goes viral</h1></body></html>`)

	r := mustFind(t, doc, "Miracle cure")

	if r.StartContainer.Parent != doc.GetElementByID("h") {
		t.Errorf("Expected match inside the visible heading, got parent %v", r.StartContainer.Parent.Data)
	}
	if r.String() != "Miracle cure" {
		t.Errorf("Unexpected range text: %q", r.String())
	}
}

func TestFindText_OnlyHiddenText(t *testing.T) {
	doc := mustParse(t, `<html><head><title>Secret title</title></head><body><p hidden>Secret</p></body></html>`)

	if _, err := FindText(doc.Root, "Secret"); !errors.Is(err, ErrTextNotFound) {
		t.Errorf("Expected ErrTextNotFound for non-rendered text, got %v", err)
	}
}

func TestRendered(t *testing.T) {
	doc := mustParse(t, `<html><head><title id="t">T</title></head><body>`+
		`<div id="v"><span id="vs">x</span></div>`+
		`<div hidden><span id="hs">x</span></div>`+
		`<div style="display:none"><p id="ns">x</p></div>`+
		`<div hidden style="display: block"><p id="over">x</p></div></body></html>`)

	tests := []struct {
		id   string
		want bool
	}{
		{"t", false},
		{"v", true},
		{"vs", true},
		{"hs", false},
		{"ns", false},
		{"over", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			n := doc.GetElementByID(tt.id)
			if n == nil {
				t.Fatalf("element %s not found", tt.id)
			}
			if got := Rendered(n); got != tt.want {
				t.Errorf("Rendered(#%s) = %v, want %v", tt.id, got, tt.want)
			}
			if got := Rendered(n.FirstChild); got != tt.want {
				t.Errorf("Rendered(#%s text) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestRange_StringSkipsHiddenText(t *testing.T) {
	doc := mustParse(t, `<div>one<span hidden>secret</span><span style="display:none">x</span>two</div>`)
	div := doc.Body().FirstChild

	r, err := NewRange(div, 0, div, 4)
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	if r.String() != "onetwo" {
		t.Errorf("Expected hidden text skipped, got %q", r.String())
	}
}

func TestRange_StringSkipsScripts(t *testing.T) {
	doc := mustParse(t, `<div>one<script>var x;</script>two</div>`)
	div := doc.Body().FirstChild

	r, err := NewRange(div, 0, div, 3)
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	if r.String() != "onetwo" {
		t.Errorf("Expected script text skipped, got %q", r.String())
	}
}

func TestNewRange_Validation(t *testing.T) {
	doc := mustParse(t, `<p>abc</p><p>def</p>`)
	first := doc.Body().FirstChild.FirstChild
	second := doc.Body().FirstChild.NextSibling.FirstChild

	if _, err := NewRange(first, 4, first, 4); !errors.Is(err, ErrIndexSize) {
		t.Errorf("Expected ErrIndexSize, got %v", err)
	}
	if _, err := NewRange(second, 0, first, 1); err == nil {
		t.Error("Expected error when start follows end")
	}
	detached := NewText("x")
	if _, err := NewRange(first, 0, detached, 1); !errors.Is(err, ErrWrongDocument) {
		t.Errorf("Expected ErrWrongDocument, got %v", err)
	}
}

func TestRange_CloneIsIndependent(t *testing.T) {
	doc := mustParse(t, `<p>abcdef</p>`)
	r := mustFind(t, doc, "bcd")

	c := r.Clone()
	r.StartOffset = 0

	if c.StartOffset != 1 {
		t.Errorf("Clone aliased original: start offset %d", c.StartOffset)
	}
}

func TestSurroundContents_WithinTextNode(t *testing.T) {
	doc := mustParse(t, `<p>The quick brown fox</p>`)
	r := mustFind(t, doc, "quick")

	span := NewElement("span")
	if err := r.SurroundContents(span); err != nil {
		t.Fatalf("SurroundContents: %v", err)
	}

	p := doc.Body().FirstChild
	var b strings.Builder
	_ = html.Render(&b, p)
	if b.String() != "<p>The <span>quick</span> brown fox</p>" {
		t.Errorf("Unexpected markup: %s", b.String())
	}
	if r.StartContainer != p || r.StartOffset != 1 || r.EndOffset != 2 {
		t.Errorf("Expected range to select wrapper, got %d..%d", r.StartOffset, r.EndOffset)
	}
}

func TestSurroundContents_AcrossSiblingNodes(t *testing.T) {
	doc := mustParse(t, `<p>Hello <b>bold</b> world</p>`)
	r := mustFind(t, doc, "lo bold wo")

	span := NewElement("span")
	if err := r.SurroundContents(span); err != nil {
		t.Fatalf("SurroundContents: %v", err)
	}

	var b strings.Builder
	_ = html.Render(&b, doc.Body().FirstChild)
	want := "<p>Hel<span>lo <b>bold</b> wo</span>rld</p>"
	if b.String() != want {
		t.Errorf("Unexpected markup:\n got: %s\nwant: %s", b.String(), want)
	}
}

func TestSurroundContents_PartialElementFails(t *testing.T) {
	doc := mustParse(t, `<p>Hello <b>bold</b> world</p>`)
	before := doc.String()

	// Starts inside <b>, ends in the trailing text: <b> is partially selected
	r := mustFind(t, doc, "ld wor")

	err := r.SurroundContents(NewElement("span"))
	if !errors.Is(err, ErrPartialSelection) {
		t.Fatalf("Expected ErrPartialSelection, got %v", err)
	}
	if doc.String() != before {
		t.Errorf("DOM mutated on failure:\nbefore: %s\n after: %s", before, doc.String())
	}
}

func TestSurroundContents_RejectsAttachedWrapper(t *testing.T) {
	doc := mustParse(t, `<p>abc</p>`)
	r := mustFind(t, doc, "b")

	if err := r.SurroundContents(doc.Body()); err == nil {
		t.Error("Expected error for attached wrapper")
	}
}

func TestDisplay(t *testing.T) {
	doc := mustParse(t, `<div id="d"></div><span id="s"></span><li id="l"></li>` +
		`<span id="sb" style="color: red; display: block"></span>` +
		`<div id="di" style="display:inline !important"></div><p id="h" hidden></p>`)

	tests := []struct {
		id   string
		want string
	}{
		{"d", DisplayBlock},
		{"s", DisplayInline},
		{"l", DisplayListItem},
		{"sb", DisplayBlock},
		{"di", DisplayInline},
		{"h", DisplayNone},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			n := doc.GetElementByID(tt.id)
			if n == nil {
				t.Fatalf("element %s not found", tt.id)
			}
			if got := Display(n); got != tt.want {
				t.Errorf("Display(#%s) = %s, want %s", tt.id, got, tt.want)
			}
		})
	}
}

func TestBlockAncestor(t *testing.T) {
	doc := mustParse(t, `<ul><li id="item">An <em>emphasised <b>word</b></em></li></ul>`)

	r := mustFind(t, doc, "word")
	block := BlockAncestor(r.StartContainer)

	if block == nil || block != doc.GetElementByID("item") {
		t.Errorf("Expected list item as block ancestor, got %v", block)
	}
	if BlockAncestor(NewText("orphan")) != nil {
		t.Error("Expected nil block ancestor for detached text")
	}
}

func TestRange_Detached(t *testing.T) {
	doc := mustParse(t, `<p id="p">abc</p>`)
	r := mustFind(t, doc, "b")

	if r.Detached() {
		t.Fatal("Expected attached range")
	}
	Remove(doc.GetElementByID("p"))
	if !r.Detached() {
		t.Error("Expected range detached after removal")
	}
}

func TestSelection(t *testing.T) {
	doc := mustParse(t, `<p>Select me please</p>`)
	sel := doc.Selection()

	if sel.RangeCount() != 0 || sel.String() != "" {
		t.Fatal("Expected empty selection")
	}

	sel.Select(mustFind(t, doc, "me"))
	if sel.RangeCount() != 1 || sel.String() != "me" {
		t.Errorf("Unexpected selection: %d ranges, %q", sel.RangeCount(), sel.String())
	}

	sel.RemoveAllRanges()
	if _, ok := sel.RangeAt(0); ok {
		t.Error("Expected no range after RemoveAllRanges")
	}
}

func TestClasses(t *testing.T) {
	n := NewElement("span")
	AddClass(n, "trust-true")
	AddClass(n, "extra")
	AddClass(n, "extra")

	if v, _ := Attr(n, "class"); v != "trust-true extra" {
		t.Errorf("Unexpected class attribute: %q", v)
	}
	if !HasClass(n, "extra") || HasClass(n, "trust") {
		t.Error("HasClass must match whole class names")
	}
}
