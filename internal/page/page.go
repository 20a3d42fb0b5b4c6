// Package page is the content context injected into a tab: it captures the
// user's selection, reports it to the background context and applies results.
package page

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/trustlens/internal/bus"
	"github.com/ppiankov/trustlens/internal/dom"
	"github.com/ppiankov/trustlens/internal/highlight"
	"github.com/ppiankov/trustlens/internal/overlay"
	"github.com/ppiankov/trustlens/internal/selection"
)

// Outcome describes what happened to one SHOW_TRUST_RESULT message
type Outcome struct {
	SelectionID string
	Applied     bool   // a live selection claimed the result
	Highlighted bool   // the inline annotation was inserted
	Card        *overlay.Card
	Reason      string // why the result was ignored, when !Applied
}

// Ignore reasons
const (
	ReasonNotResult   = "not a result"
	ReasonInvalid     = "invalid result"
	ReasonNoSelection = "no live selection"
)

// Page holds the per-tab state. It must only be used from its endpoint loop.
type Page struct {
	doc         *dom.Document
	selections  *selection.Manager
	highlighter *highlight.Highlighter
	cards       *overlay.Renderer
	log         *zap.Logger
	observe     func(Outcome)

	geometry overlay.Geometry
	cardOpts []overlay.Option
	endpoint *bus.Endpoint
	send     func(context.Context, bus.Envelope) error
}

// Option configures a Page
type Option func(*Page)

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(p *Page) { p.log = log }
}

// WithGeometry sets the layout used to place the floating card
func WithGeometry(g overlay.Geometry) Option {
	return func(p *Page) { p.geometry = g }
}

// WithOverlay passes options to the floating card renderer
func WithOverlay(opts ...overlay.Option) Option {
	return func(p *Page) { p.cardOpts = append(p.cardOpts, opts...) }
}

// WithObserver registers a callback run after every handled result
func WithObserver(fn func(Outcome)) Option {
	return func(p *Page) { p.observe = fn }
}

// New creates the page context for doc
func New(doc *dom.Document, opts ...Option) *Page {
	p := &Page{
		doc:        doc,
		selections: selection.NewManager(),
		log:        zap.NewNop(),
		geometry:   overlay.NewFlowGeometry(),
		observe:    func(Outcome) {},
	}
	for _, opt := range opts {
		opt(p)
	}

	p.highlighter = highlight.New(doc.Selection(), p.log)
	cardOpts := append([]overlay.Option{
		overlay.WithLogger(p.log),
		overlay.WithPost(p.post),
	}, p.cardOpts...)
	p.cards = overlay.NewRenderer(doc, p.geometry, cardOpts...)
	return p
}

// Attach injects the page into tab id of rt
func (p *Page) Attach(rt *bus.Runtime, tabID int) *bus.Endpoint {
	e := rt.AttachTab(tabID, p)
	p.endpoint = e
	p.send = func(ctx context.Context, env bus.Envelope) error {
		return rt.SendMessage(ctx, e, env)
	}
	return e
}

// Document returns the page document
func (p *Page) Document() *dom.Document {
	return p.doc
}

// Selections returns the selection manager
func (p *Page) Selections() *selection.Manager {
	return p.selections
}

// Select replaces the live selection with the first occurrence of text,
// as a user drag would
func (p *Page) Select(text string) error {
	r, err := dom.FindText(p.doc.Root, text)
	if err != nil {
		return fmt.Errorf("select %q: %w", text, err)
	}
	p.doc.Selection().Select(r)
	return nil
}

// OnMouseUp captures the live selection and reports it to the background
// context. It returns false when capture was a no-op.
func (p *Page) OnMouseUp(ctx context.Context) (bool, error) {
	snap, ok := p.selections.Capture(p.doc.Selection())
	if !ok {
		return false, nil
	}
	if p.send == nil {
		return true, nil
	}
	if err := p.send(ctx, bus.TextSelected(snap.Text, snap.ID)); err != nil {
		return true, fmt.Errorf("report selection: %w", err)
	}
	p.log.Debug("selection reported", zap.String("selection_id", snap.ID), zap.Int("length", len(snap.Text)))
	return true, nil
}

// HandleMessage applies SHOW_TRUST_RESULT messages to the live selection
func (p *Page) HandleMessage(_ context.Context, env bus.Envelope, _ bus.Sender) {
	p.observe(p.apply(env))
}

func (p *Page) apply(env bus.Envelope) Outcome {
	out := Outcome{SelectionID: env.SelectionID}

	if env.Type != bus.TypeShowTrustResult {
		out.Reason = ReasonNotResult
		return out
	}
	if env.Result == nil || env.Result.Validate() != nil {
		out.Reason = ReasonInvalid
		p.log.Debug("result ignored", zap.String("reason", out.Reason))
		return out
	}

	snap, ok := p.selections.Claim(env.SelectionID)
	if !ok {
		out.Reason = ReasonNoSelection
		p.log.Debug("result ignored",
			zap.String("reason", out.Reason),
			zap.String("selection_id", env.SelectionID))
		return out
	}

	out.Applied = true
	out.Highlighted = p.highlighter.Highlight(snap.Range, env.Result.Score)
	out.Card = p.cards.Render(snap.Range, env.Result)
	return out
}

func (p *Page) post(fn func()) {
	if p.endpoint == nil {
		fn()
		return
	}
	if err := p.endpoint.Post(context.Background(), func(context.Context) { fn() }); err != nil {
		p.log.Debug("page closed before card dismissal", zap.Error(err))
	}
}
