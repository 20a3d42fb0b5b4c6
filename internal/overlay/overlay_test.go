package overlay

import (
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ppiankov/trustlens/internal/dom"
	"github.com/ppiankov/trustlens/internal/model"
)

type fixedGeometry struct {
	rect Rect
	view Viewport
}

func (g fixedGeometry) BoundingRect(*dom.Range) Rect { return g.rect }
func (g fixedGeometry) Viewport() Viewport           { return g.view }

func fixture(t *testing.T) (*dom.Document, *dom.Range) {
	t.Helper()
	doc, err := dom.ParseString(`<p>Some verified claim</p>`)
	if err != nil {
		t.Fatal(err)
	}
	r, err := dom.FindText(doc.Root, "verified")
	if err != nil {
		t.Fatal(err)
	}
	return doc, r
}

func result(score int) *model.VerificationResult {
	return &model.VerificationResult{
		Score: score,
		Claims: []model.Claim{{
			Claim:   "Some verified claim",
			Verdict: model.VerdictFor(score),
			Reason:  "References a reputed news source",
		}},
		Summary: "summary",
	}
}

// syncPost runs callbacks inline and signals each run on ch
func syncPost(ch chan struct{}) func(func()) {
	return func(fn func()) {
		fn()
		ch <- struct{}{}
	}
}

func TestRender_PositionAndContent(t *testing.T) {
	doc, r := fixture(t)
	geom := fixedGeometry{
		rect: Rect{Left: 100, Top: 40, Right: 180, Bottom: 58},
		view: Viewport{ScrollX: 10, ScrollY: 500, InnerWidth: 1280},
	}
	rend := NewRenderer(doc, geom, WithClock(clockwork.NewFakeClock()))

	card := rend.Render(r, result(90))
	if card == nil {
		t.Fatal("Expected card")
	}

	got := dom.OuterHTML(card.Node())
	want := `<div id="trustlens-float" class="green" style="position: absolute; top: 566px; left: 110px; z-index: 999999">` +
		`<h4>TrustLens</h4><div class="score">Trust Score: 90</div><div><strong>Verified</strong></div>` +
		`<div class="reason">References a reputed news source</div></div>`
	if got != want {
		t.Errorf("Unexpected card:\n got: %s\nwant: %s", got, want)
	}
}

func TestRender_ClampsToViewportRightEdge(t *testing.T) {
	doc, r := fixture(t)
	geom := fixedGeometry{
		rect: Rect{Left: 1200, Top: 0, Right: 1260, Bottom: 18},
		view: Viewport{ScrollX: 0, ScrollY: 0, InnerWidth: 1280},
	}
	card := NewRenderer(doc, geom, WithClock(clockwork.NewFakeClock())).Render(r, result(50))

	style, _ := dom.Attr(card.Node(), "style")
	if !strings.Contains(style, "left: 980px") {
		t.Errorf("Expected left clamped to 980px, got %q", style)
	}
	if !dom.HasClass(card.Node(), "orange") {
		t.Error("Expected orange class for mixed score")
	}
}

func TestRender_NarrowViewportKeepsLeftEdge(t *testing.T) {
	doc, r := fixture(t)
	geom := fixedGeometry{
		rect: Rect{Left: 120, Top: 0, Right: 180, Bottom: 18},
		view: Viewport{ScrollX: 40, ScrollY: 0, InnerWidth: 200},
	}
	card := NewRenderer(doc, geom, WithClock(clockwork.NewFakeClock())).Render(r, result(50))

	style, _ := dom.Attr(card.Node(), "style")
	if !strings.Contains(style, "left: 40px") {
		t.Errorf("Expected left pinned to the scrolled viewport edge, got %q", style)
	}
}

func TestRender_ReplacesPreviousCard(t *testing.T) {
	doc, r := fixture(t)
	geom := fixedGeometry{rect: Rect{Right: 10, Bottom: 10}, view: Viewport{InnerWidth: 800}}
	rend := NewRenderer(doc, geom, WithClock(clockwork.NewFakeClock()))

	first := rend.Render(r, result(10))
	second := rend.Render(r, result(80))

	count := strings.Count(doc.String(), `id="trustlens-float"`)
	if count != 1 {
		t.Fatalf("Expected exactly one card, got %d", count)
	}
	if !first.Removed() {
		t.Error("Expected first card to be marked removed")
	}
	if doc.GetElementByID(CardID) != second.Node() {
		t.Error("Expected the second card to be in the document")
	}
}

func TestRender_DegenerateRectIsNoop(t *testing.T) {
	doc, r := fixture(t)
	rend := NewRenderer(doc, fixedGeometry{view: Viewport{InnerWidth: 800}}, WithClock(clockwork.NewFakeClock()))
	before := doc.String()

	if card := rend.Render(r, result(90)); card != nil {
		t.Error("Expected no card for degenerate rect")
	}
	if doc.String() != before {
		t.Error("DOM mutated for degenerate rect")
	}
}

func TestRender_NoClaimsFallsBackToResult(t *testing.T) {
	doc, r := fixture(t)
	geom := fixedGeometry{rect: Rect{Right: 10, Bottom: 10}, view: Viewport{InnerWidth: 800}}
	card := NewRenderer(doc, geom, WithClock(clockwork.NewFakeClock())).
		Render(r, &model.VerificationResult{Score: 20})

	if !strings.Contains(dom.OuterHTML(card.Node()), "<strong>Result</strong>") {
		t.Error("Expected Result fallback status")
	}
}

func TestCard_AutoDismiss(t *testing.T) {
	doc, r := fixture(t)
	clock := clockwork.NewFakeClock()
	fired := make(chan struct{}, 1)
	geom := fixedGeometry{rect: Rect{Right: 10, Bottom: 10}, view: Viewport{InnerWidth: 800}}
	rend := NewRenderer(doc, geom, WithClock(clock), WithPost(syncPost(fired)))

	card := rend.Render(r, result(90))
	clock.Advance(DefaultDismissAfter - time.Millisecond)
	if card.Removed() {
		t.Fatal("Card dismissed early")
	}

	clock.Advance(time.Millisecond)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("Expected auto-dismiss to fire")
	}
	if !card.Removed() || doc.GetElementByID(CardID) != nil {
		t.Error("Expected card removed after auto-dismiss")
	}
}

func TestCard_DismissCancelsTimer(t *testing.T) {
	doc, r := fixture(t)
	clock := clockwork.NewFakeClock()
	fired := make(chan struct{}, 1)
	geom := fixedGeometry{rect: Rect{Right: 10, Bottom: 10}, view: Viewport{InnerWidth: 800}}
	rend := NewRenderer(doc, geom, WithClock(clock), WithPost(syncPost(fired)))

	card := rend.Render(r, result(90))
	card.Dismiss()
	if doc.GetElementByID(CardID) != nil {
		t.Fatal("Expected card removed on dismiss")
	}

	clock.Advance(DefaultDismissAfter)
	select {
	case <-fired:
		t.Error("Auto-dismiss fired after manual dismiss")
	case <-time.After(50 * time.Millisecond):
	}
	card.Dismiss()
}

func TestFlowGeometry(t *testing.T) {
	doc, err := dom.ParseString(`<p>abcd</p><p>efgh</p>`)
	if err != nil {
		t.Fatal(err)
	}
	r, err := dom.FindText(doc.Root, "fg")
	if err != nil {
		t.Fatal(err)
	}

	g := NewFlowGeometry()
	rect := g.BoundingRect(r)
	want := Rect{Left: 8, Top: 18, Right: 24, Bottom: 36}
	if rect != want {
		t.Errorf("Expected %+v, got %+v", want, rect)
	}

	dom.Remove(r.StartContainer.Parent)
	if !g.BoundingRect(r).Degenerate() {
		t.Error("Expected detached range to have a degenerate rect")
	}
}
