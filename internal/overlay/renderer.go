// Package overlay renders the transient floating result card next to a
// verified selection.
package overlay

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/ppiankov/trustlens/internal/dom"
	"github.com/ppiankov/trustlens/internal/model"
)

// CardID is the element id of the floating card; at most one exists per page
const CardID = "trustlens-float"

const (
	DefaultDismissAfter = 6 * time.Second
	DefaultCardWidth    = 300
	DefaultOffset       = 8
	zIndex              = 999999
)

// Renderer owns the floating card of one document
type Renderer struct {
	doc      *dom.Document
	geometry Geometry
	clock    clockwork.Clock
	post     func(func())
	log      *zap.Logger

	dismissAfter time.Duration
	width        float64
	offset       float64

	mu      sync.Mutex
	current *Card
}

// Option configures a Renderer
type Option func(*Renderer)

// WithClock sets the clock driving auto-dismiss
func WithClock(c clockwork.Clock) Option {
	return func(r *Renderer) { r.clock = c }
}

// WithPost routes timer callbacks through fn, typically the page event loop
func WithPost(fn func(func())) Option {
	return func(r *Renderer) { r.post = fn }
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(r *Renderer) { r.log = log }
}

// WithLayout overrides dismiss delay, card width and vertical offset.
// Zero values keep the defaults.
func WithLayout(dismissAfter time.Duration, width, offset float64) Option {
	return func(r *Renderer) {
		if dismissAfter > 0 {
			r.dismissAfter = dismissAfter
		}
		if width > 0 {
			r.width = width
		}
		if offset > 0 {
			r.offset = offset
		}
	}
}

// NewRenderer creates a renderer for doc
func NewRenderer(doc *dom.Document, geometry Geometry, opts ...Option) *Renderer {
	r := &Renderer{
		doc:          doc,
		geometry:     geometry,
		clock:        clockwork.NewRealClock(),
		log:          zap.NewNop(),
		dismissAfter: DefaultDismissAfter,
		width:        DefaultCardWidth,
		offset:       DefaultOffset,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.post == nil {
		r.post = func(fn func()) { fn() }
	}
	return r
}

// Card is a rendered floating card
type Card struct {
	renderer *Renderer
	node     *html.Node
	timer    clockwork.Timer
	removed  bool
}

// Node returns the card element
func (c *Card) Node() *html.Node {
	return c.node
}

// Render replaces any existing card with one for result, positioned below rng.
// It returns nil without inserting anything when rng has no layout box.
func (r *Renderer) Render(rng *dom.Range, result *model.VerificationResult) *Card {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 1. Remove the previous card, whoever owned it
	if r.current != nil {
		r.current.timer.Stop()
		r.current.removed = true
		r.current = nil
	}
	if old := r.doc.GetElementByID(CardID); old != nil {
		dom.Remove(old)
	}

	// 2. Measure
	rect := r.geometry.BoundingRect(rng)
	if rect.Degenerate() {
		r.log.Debug("floating card skipped", zap.String("reason", "degenerate rect"))
		return nil
	}
	body := r.doc.Body()
	if body == nil {
		return nil
	}

	// 3. Build and position
	vp := r.geometry.Viewport()
	top := vp.ScrollY + rect.Bottom + r.offset
	// Right edge wins over the anchor; the left edge wins over both
	left := max(vp.ScrollX, min(vp.ScrollX+rect.Left, vp.ScrollX+vp.InnerWidth-r.width))

	node := buildCard(result)
	dom.SetAttr(node, "style", fmt.Sprintf("position: absolute; top: %spx; left: %spx; z-index: %d",
		px(top), px(left), zIndex))
	body.AppendChild(node)

	// 4. Auto-dismiss
	card := &Card{renderer: r, node: node}
	card.timer = r.clock.AfterFunc(r.dismissAfter, func() {
		r.post(card.expire)
	})
	r.current = card
	return card
}

// Dismiss removes the card on user interaction and cancels auto-dismiss
func (c *Card) Dismiss() {
	c.timer.Stop()
	c.remove()
}

// Removed reports whether the card has left the document
func (c *Card) Removed() bool {
	c.renderer.mu.Lock()
	defer c.renderer.mu.Unlock()
	return c.removed
}

func (c *Card) expire() {
	c.remove()
}

func (c *Card) remove() {
	c.renderer.mu.Lock()
	defer c.renderer.mu.Unlock()
	if c.removed {
		return
	}
	c.removed = true
	dom.Remove(c.node)
	if c.renderer.current == c {
		c.renderer.current = nil
	}
}

func buildCard(result *model.VerificationResult) *html.Node {
	tier := model.TierFor(result.Score)

	div := dom.NewElement("div")
	dom.SetAttr(div, "id", CardID)
	dom.AddClass(div, tier.Color())

	div.AppendChild(dom.AppendText(dom.NewElement("h4"), "TrustLens"))

	score := dom.AppendText(dom.NewElement("div"), "Trust Score: "+strconv.Itoa(result.Score))
	dom.SetAttr(score, "class", "score")
	div.AppendChild(score)

	verdict := "Result"
	reason := ""
	if claim, ok := result.FirstClaim(); ok {
		verdict = string(claim.Verdict)
		reason = claim.Reason
	}
	status := dom.NewElement("div")
	status.AppendChild(dom.AppendText(dom.NewElement("strong"), verdict))
	div.AppendChild(status)

	if reason != "" {
		why := dom.AppendText(dom.NewElement("div"), reason)
		dom.SetAttr(why, "class", "reason")
		div.AppendChild(why)
	}
	return div
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
