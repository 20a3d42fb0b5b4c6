// Package bus models the extension runtime's message passing between the
// background context, extension views such as the popup, and content pages.
package bus

import (
	"context"

	"github.com/ppiankov/trustlens/internal/model"
)

// MessageType discriminates envelopes
type MessageType string

const (
	// TypeTextSelected flows from a page to the background context
	TypeTextSelected MessageType = "TEXT_SELECTED"
	// TypeShowTrustResult flows from the background context to pages and views
	TypeShowTrustResult MessageType = "SHOW_TRUST_RESULT"
)

// Envelope is a single runtime message
type Envelope struct {
	Type        MessageType               `json:"type"`
	Text        string                    `json:"text,omitempty"`
	SelectionID string                    `json:"selectionId,omitempty"` // correlates a result with the selection that produced it
	Result      *model.VerificationResult `json:"result,omitempty"`
}

// TextSelected builds a TEXT_SELECTED envelope
func TextSelected(text, selectionID string) Envelope {
	return Envelope{Type: TypeTextSelected, Text: text, SelectionID: selectionID}
}

// ShowTrustResult builds a SHOW_TRUST_RESULT envelope
func ShowTrustResult(result *model.VerificationResult, selectionID string) Envelope {
	return Envelope{Type: TypeShowTrustResult, Result: result, SelectionID: selectionID}
}

// Tab identifies a browser tab
type Tab struct {
	ID int
}

// Sender describes where a message came from. Tab is nil for extension views.
type Sender struct {
	Tab *Tab
}

// Handler receives messages delivered to an endpoint.
// Calls for one endpoint are serialised on that endpoint's goroutine.
type Handler interface {
	HandleMessage(ctx context.Context, env Envelope, from Sender)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, env Envelope, from Sender)

// HandleMessage calls f
func (f HandlerFunc) HandleMessage(ctx context.Context, env Envelope, from Sender) {
	f(ctx, env, from)
}
