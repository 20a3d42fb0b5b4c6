// Package dispatcher is the background orchestrator: it turns selection and
// context-menu events into verification calls and fans the results out.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/trustlens/internal/bus"
	"github.com/ppiankov/trustlens/internal/client"
	"github.com/ppiankov/trustlens/internal/history"
	"github.com/ppiankov/trustlens/internal/model"
	"github.com/ppiankov/trustlens/internal/worker"
)

// Messenger delivers envelopes to page and extension contexts
type Messenger interface {
	SendToTab(ctx context.Context, tabID int, env bus.Envelope) error
	SendMessage(ctx context.Context, from *bus.Endpoint, env bus.Envelope) error
}

// Request is one normalised verification trigger
type Request struct {
	Text        string
	Origin      *bus.Tab // nil when no page should receive the result
	SelectionID string   // empty for context-menu requests
}

// Dispatcher orchestrates verification flows
type Dispatcher struct {
	verifier  client.Verifier
	messenger Messenger
	history   *history.Store
	pool      *worker.Pool
	log       *zap.Logger
	now       func() time.Time
	onDone    func(Request, *model.VerificationResult, error)

	endpoint *bus.Endpoint
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithPool runs verifications on pool instead of the caller's goroutine
func WithPool(p *worker.Pool) Option {
	return func(d *Dispatcher) { d.pool = p }
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// WithClock sets the time source for history timestamps
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithCompletion registers a callback run after every verification flow
func WithCompletion(fn func(Request, *model.VerificationResult, error)) Option {
	return func(d *Dispatcher) { d.onDone = fn }
}

// New creates a dispatcher
func New(verifier client.Verifier, messenger Messenger, store *history.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		verifier:  verifier,
		messenger: messenger,
		history:   store,
		log:       zap.NewNop(),
		now:       time.Now,
		onDone:    func(Request, *model.VerificationResult, error) {},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Attach installs the dispatcher as the runtime's background context
func (d *Dispatcher) Attach(rt *bus.Runtime) *bus.Endpoint {
	d.endpoint = rt.AttachBackground(d)
	return d.endpoint
}

// HandleMessage relays TEXT_SELECTED events from pages into Verify
func (d *Dispatcher) HandleMessage(ctx context.Context, env bus.Envelope, from bus.Sender) {
	if env.Type != bus.TypeTextSelected {
		return
	}
	if strings.TrimSpace(env.Text) == "" {
		return
	}
	d.submit(ctx, Request{Text: env.Text, Origin: from.Tab, SelectionID: env.SelectionID})
}

// submit hands req to the pool so the background loop never waits on the network
func (d *Dispatcher) submit(ctx context.Context, req Request) {
	if d.pool == nil {
		_ = d.Verify(ctx, req)
		return
	}
	err := d.pool.Submit(ctx, worker.JobFunc(func(ctx context.Context) {
		_ = d.Verify(ctx, req)
	}))
	if err != nil {
		d.log.Warn("verification dropped", zap.Error(err))
		d.onDone(req, nil, err)
	}
}

// Verify runs one verification flow: exactly one outbound call, then the
// result goes to the origin tab, to open views, and into history.
// A failed call is logged and ends the flow; nothing is retried or surfaced.
func (d *Dispatcher) Verify(ctx context.Context, req Request) error {
	// 1. Verify
	result, err := d.verifier.Verify(ctx, req.Text)
	if err != nil {
		d.log.Error("verification failed", zap.Error(err), zap.Int("length", len(req.Text)))
		d.onDone(req, nil, err)
		return fmt.Errorf("verify: %w", err)
	}

	env := bus.ShowTrustResult(result, req.SelectionID)

	// 2. Originating page
	if req.Origin != nil {
		if err := d.messenger.SendToTab(ctx, req.Origin.ID, env); err != nil {
			d.log.Warn("result not delivered to tab", zap.Int("tab", req.Origin.ID), zap.Error(err))
		}
	}

	// 3. Open views, best effort
	if err := d.messenger.SendMessage(ctx, d.endpoint, env); err != nil && !errors.Is(err, bus.ErrNoReceiver) {
		d.log.Warn("result not delivered to views", zap.Error(err))
	}

	// 4. History
	if d.history != nil {
		if err := d.history.Append(ctx, model.NewHistoryEntry(result, d.now())); err != nil {
			d.log.Error("history append failed", zap.Error(err))
		}
	}

	d.log.Info("verification complete",
		zap.Int("score", result.Score),
		zap.String("summary", result.Summary))
	d.onDone(req, result, nil)
	return nil
}
