package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNoReceiver is returned when a message has nobody to receive it,
// e.g. a broadcast while no popup is open
var ErrNoReceiver = errors.New("could not establish connection: receiving end does not exist")

// Runtime routes messages between endpoints
type Runtime struct {
	mu         sync.RWMutex
	background *Endpoint
	views      map[*Endpoint]struct{}
	tabs       map[int]*Endpoint
}

// NewRuntime creates an empty runtime
func NewRuntime() *Runtime {
	return &Runtime{
		views: make(map[*Endpoint]struct{}),
		tabs:  make(map[int]*Endpoint),
	}
}

// AttachBackground installs the background context, replacing any previous one
func (r *Runtime) AttachBackground(h Handler) *Endpoint {
	e := newEndpoint(KindBackground, nil, h)

	r.mu.Lock()
	prev := r.background
	r.background = e
	r.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return e
}

// AttachView opens an extension view such as the popup
func (r *Runtime) AttachView(h Handler) *Endpoint {
	e := newEndpoint(KindView, nil, h)

	r.mu.Lock()
	r.views[e] = struct{}{}
	r.mu.Unlock()
	return e
}

// DetachView closes a view
func (r *Runtime) DetachView(e *Endpoint) {
	r.mu.Lock()
	delete(r.views, e)
	r.mu.Unlock()
	e.Close()
}

// AttachTab injects a page context into tab id, replacing any previous one
func (r *Runtime) AttachTab(id int, h Handler) *Endpoint {
	e := newEndpoint(KindTab, &Tab{ID: id}, h)

	r.mu.Lock()
	prev := r.tabs[id]
	r.tabs[id] = e
	r.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return e
}

// DetachTab closes the page context in tab id
func (r *Runtime) DetachTab(id int) {
	r.mu.Lock()
	e := r.tabs[id]
	delete(r.tabs, id)
	r.mu.Unlock()

	if e != nil {
		e.Close()
	}
}

// SendMessage delivers env to every extension endpoint (the background
// context and open views) other than from. from may be nil.
func (r *Runtime) SendMessage(ctx context.Context, from *Endpoint, env Envelope) error {
	r.mu.RLock()
	targets := make([]*Endpoint, 0, len(r.views)+1)
	if r.background != nil && r.background != from {
		targets = append(targets, r.background)
	}
	for v := range r.views {
		if v != from {
			targets = append(targets, v)
		}
	}
	r.mu.RUnlock()

	sender := Sender{}
	if from != nil {
		sender = from.sender()
	}

	delivered := 0
	for _, t := range targets {
		if err := t.deliver(ctx, env, sender); err != nil {
			if errors.Is(err, ErrClosed) {
				continue
			}
			return fmt.Errorf("send %s: %w", env.Type, err)
		}
		delivered++
	}

	if delivered == 0 {
		return ErrNoReceiver
	}
	return nil
}

// SendToTab delivers env to the page context in tab id
func (r *Runtime) SendToTab(ctx context.Context, id int, env Envelope) error {
	r.mu.RLock()
	e := r.tabs[id]
	r.mu.RUnlock()

	if e == nil {
		return fmt.Errorf("tab %d: %w", id, ErrNoReceiver)
	}
	if err := e.deliver(ctx, env, Sender{}); err != nil {
		if errors.Is(err, ErrClosed) {
			return fmt.Errorf("tab %d: %w", id, ErrNoReceiver)
		}
		return fmt.Errorf("send %s to tab %d: %w", env.Type, id, err)
	}
	return nil
}

// Close shuts down every endpoint
func (r *Runtime) Close() {
	r.mu.Lock()
	all := make([]*Endpoint, 0, len(r.views)+len(r.tabs)+1)
	if r.background != nil {
		all = append(all, r.background)
	}
	for v := range r.views {
		all = append(all, v)
	}
	for _, t := range r.tabs {
		all = append(all, t)
	}
	r.background = nil
	r.views = make(map[*Endpoint]struct{})
	r.tabs = make(map[int]*Endpoint)
	r.mu.Unlock()

	for _, e := range all {
		e.Close()
	}
}
