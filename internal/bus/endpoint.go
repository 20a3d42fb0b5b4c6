package bus

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when posting to a closed endpoint
var ErrClosed = errors.New("endpoint closed")

// Kind is the runtime role of an endpoint
type Kind int

const (
	KindBackground Kind = iota
	KindView
	KindTab
)

const inboxSize = 64

// Endpoint is one single-threaded execution context. Every task posted to it
// runs on its own goroutine, one at a time, in posting order.
type Endpoint struct {
	kind    Kind
	tab     *Tab
	handler Handler

	inbox chan func(context.Context)
	ctx   context.Context
	stop  context.CancelFunc
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func newEndpoint(kind Kind, tab *Tab, h Handler) *Endpoint {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Endpoint{
		kind:    kind,
		tab:     tab,
		handler: h,
		inbox:   make(chan func(context.Context), inboxSize),
		ctx:     ctx,
		stop:    cancel,
		done:    make(chan struct{}),
	}
	go e.loop()
	return e
}

// Kind returns the endpoint role
func (e *Endpoint) Kind() Kind {
	return e.kind
}

// Tab returns the tab this endpoint runs in, or nil
func (e *Endpoint) Tab() *Tab {
	return e.tab
}

// Post queues fn to run on the endpoint's goroutine
func (e *Endpoint) Post(ctx context.Context, fn func(context.Context)) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrClosed
	}

	select {
	case e.inbox <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks, runs the ones already queued and waits for
// the loop to exit. The context passed to tasks is cancelled afterwards.
func (e *Endpoint) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		<-e.done
		return
	}
	e.closed = true
	close(e.inbox)
	e.mu.Unlock()

	<-e.done
	e.stop()
}

func (e *Endpoint) loop() {
	defer close(e.done)
	for fn := range e.inbox {
		fn(e.ctx)
	}
}

func (e *Endpoint) deliver(ctx context.Context, env Envelope, from Sender) error {
	return e.Post(ctx, func(ctx context.Context) {
		e.handler.HandleMessage(ctx, env, from)
	})
}

func (e *Endpoint) sender() Sender {
	return Sender{Tab: e.tab}
}
