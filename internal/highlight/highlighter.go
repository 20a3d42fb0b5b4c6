// Package highlight wraps a verified selection in an inline trust annotation
// without ever restructuring the surrounding page.
package highlight

import (
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/ppiankov/trustlens/internal/dom"
	"github.com/ppiankov/trustlens/internal/model"
)

// Skip reasons reported in debug logs
const (
	ReasonMultiBlock     = "multi-block"
	ReasonNested         = "nested"
	ReasonSurroundFailed = "surround failed"
	ReasonDetached       = "detached"
	ReasonNotRendered    = "not rendered"
)

// Highlighter applies trust annotations to ranges in one document
type Highlighter struct {
	selection *dom.Selection
	log       *zap.Logger
}

// New creates a highlighter that clears sel after every applied annotation
func New(sel *dom.Selection, log *zap.Logger) *Highlighter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Highlighter{selection: sel, log: log}
}

// Highlight wraps r in a span classed by the score's trust tier.
// It returns false, leaving the document untouched, when the range is not
// rendered, spans more than one block, sits inside or contains an existing
// annotation, or cannot be surrounded in place.
func (h *Highlighter) Highlight(r *dom.Range, score int) bool {
	if r == nil || r.Detached() {
		h.skip(ReasonDetached)
		return false
	}

	// Head text, hidden and display:none subtrees are never annotated
	if !dom.Rendered(r.StartContainer) || !dom.Rendered(r.EndContainer) {
		h.skip(ReasonNotRendered)
		return false
	}

	// 1. Start and end must resolve to the same block container
	startBlock := dom.BlockAncestor(r.StartContainer)
	endBlock := dom.BlockAncestor(r.EndContainer)
	if startBlock == nil || startBlock != endBlock {
		h.skip(ReasonMultiBlock)
		return false
	}

	// 2. No annotation on or around the block, nor inside the range
	if annotated(r, startBlock) {
		h.skip(ReasonNested)
		return false
	}

	// 3. Surround in place; no fallback
	tier := model.TierFor(score)
	span := dom.NewElement("span")
	dom.SetAttr(span, "class", tier.ClassName())
	dom.SetAttr(span, "title", "Trust Score: "+strconv.Itoa(score))

	if err := r.SurroundContents(span); err != nil {
		h.log.Debug("highlight skipped",
			zap.String("reason", ReasonSurroundFailed),
			zap.Error(err))
		return false
	}

	if h.selection != nil {
		h.selection.RemoveAllRanges()
	}
	h.log.Debug("highlight applied", zap.String("class", tier.ClassName()), zap.Int("score", score))
	return true
}

func (h *Highlighter) skip(reason string) {
	h.log.Debug("highlight skipped", zap.String("reason", reason))
}

// IsAnnotation reports whether n carries any trust class
func IsAnnotation(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, class := range model.TrustClasses() {
		if dom.HasClass(n, class) {
			return true
		}
	}
	return false
}

// annotated reports whether block or any of its ancestors is an annotation,
// or any element between block and a text node touched by r is one.
func annotated(r *dom.Range, block *html.Node) bool {
	for n := block; n != nil; n = n.Parent {
		if IsAnnotation(n) {
			return true
		}
	}

	found := false
	check := func(n *html.Node) {
		for ; n != nil && n != block; n = n.Parent {
			if IsAnnotation(n) {
				found = true
				return
			}
		}
	}
	check(r.StartContainer)
	check(r.EndContainer)
	r.EachText(func(t *html.Node, _, _ int) {
		if !found {
			check(t)
		}
	})
	return found
}
