package bus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu   sync.Mutex
	msgs []Envelope
	from []Sender
}

func (r *recorder) HandleMessage(_ context.Context, env Envelope, from Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, env)
	r.from = append(r.from, from)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func TestSendMessage_ReachesBackgroundWithTab(t *testing.T) {
	rt := NewRuntime()
	bg := &recorder{}
	rt.AttachBackground(bg)
	page := rt.AttachTab(7, HandlerFunc(func(context.Context, Envelope, Sender) {}))

	if err := rt.SendMessage(context.Background(), page, TextSelected("hello", "id-1")); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	rt.Close()

	if bg.count() != 1 {
		t.Fatalf("Expected 1 message, got %d", bg.count())
	}
	if bg.msgs[0].Text != "hello" || bg.msgs[0].SelectionID != "id-1" {
		t.Errorf("Unexpected envelope %+v", bg.msgs[0])
	}
	if bg.from[0].Tab == nil || bg.from[0].Tab.ID != 7 {
		t.Errorf("Expected sender tab 7, got %+v", bg.from[0].Tab)
	}
}

func TestSendMessage_NoReceiver(t *testing.T) {
	rt := NewRuntime()
	bg := rt.AttachBackground(&recorder{})
	defer rt.Close()

	err := rt.SendMessage(context.Background(), bg, ShowTrustResult(nil, ""))
	if !errors.Is(err, ErrNoReceiver) {
		t.Errorf("Expected ErrNoReceiver without open views, got %v", err)
	}
}

func TestSendMessage_ExcludesSender(t *testing.T) {
	rt := NewRuntime()
	bg := &recorder{}
	bgEnd := rt.AttachBackground(bg)
	popup := &recorder{}
	rt.AttachView(popup)

	if err := rt.SendMessage(context.Background(), bgEnd, ShowTrustResult(nil, "")); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	rt.Close()

	if bg.count() != 0 {
		t.Error("Sender received its own broadcast")
	}
	if popup.count() != 1 {
		t.Errorf("Expected popup to receive broadcast, got %d", popup.count())
	}
}

func TestDetachView(t *testing.T) {
	rt := NewRuntime()
	bg := rt.AttachBackground(&recorder{})
	view := rt.AttachView(&recorder{})
	rt.DetachView(view)
	defer rt.Close()

	if err := rt.SendMessage(context.Background(), bg, ShowTrustResult(nil, "")); !errors.Is(err, ErrNoReceiver) {
		t.Errorf("Expected ErrNoReceiver after detach, got %v", err)
	}
}

func TestSendToTab(t *testing.T) {
	rt := NewRuntime()
	page := &recorder{}
	rt.AttachTab(3, page)

	if err := rt.SendToTab(context.Background(), 3, ShowTrustResult(nil, "sel")); err != nil {
		t.Fatalf("SendToTab: %v", err)
	}
	if err := rt.SendToTab(context.Background(), 4, ShowTrustResult(nil, "")); !errors.Is(err, ErrNoReceiver) {
		t.Errorf("Expected ErrNoReceiver for unknown tab, got %v", err)
	}
	rt.Close()

	if page.count() != 1 || page.msgs[0].SelectionID != "sel" {
		t.Errorf("Expected one correlated message, got %+v", page.msgs)
	}
}

func TestEndpoint_SerialisesInOrder(t *testing.T) {
	e := newEndpoint(KindView, nil, HandlerFunc(func(context.Context, Envelope, Sender) {}))

	var (
		mu    sync.Mutex
		order []int
	)
	for i := 0; i < 20; i++ {
		i := i
		if err := e.Post(context.Background(), func(context.Context) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}); err != nil {
			t.Fatalf("Post: %v", err)
		}
	}
	e.Close()

	if len(order) != 20 {
		t.Fatalf("Expected queued tasks to drain, got %d", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("Expected FIFO order, got %v", order)
		}
	}
}

func TestEndpoint_PostAfterClose(t *testing.T) {
	e := newEndpoint(KindView, nil, &recorder{})
	e.Close()
	e.Close()

	if err := e.Post(context.Background(), func(context.Context) {}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}
