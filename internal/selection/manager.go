// Package selection owns the page context's single live selection snapshot.
package selection

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/ppiankov/trustlens/internal/dom"
)

// Snapshot is a captured selection: a cloned range that no longer aliases
// the live browser selection, plus the block container and trimmed text.
type Snapshot struct {
	ID    string
	Range *dom.Range
	Block *html.Node // nil when the start anchor has no block ancestor
	Text  string
}

// Manager holds at most one live snapshot. A newer capture replaces and
// discards the previous one; a consumed snapshot leaves the slot empty.
type Manager struct {
	live     *Snapshot
	lastText string
	newID    func() string
}

// NewManager creates an empty selection manager
func NewManager() *Manager {
	return &Manager{newID: uuid.NewString}
}

// Capture snapshots the live selection. It returns false, leaving state
// untouched, when the selection is empty, whitespace-only, or textually
// identical to the previously captured selection.
func (m *Manager) Capture(live *dom.Selection) (*Snapshot, bool) {
	if live.RangeCount() == 0 {
		return nil, false
	}
	r, ok := live.RangeAt(0)
	if !ok {
		return nil, false
	}

	text := strings.TrimSpace(live.String())
	if text == "" || text == m.lastText {
		return nil, false
	}

	cloned := r.Clone()
	snap := &Snapshot{
		ID:    m.newID(),
		Range: cloned,
		Block: dom.BlockAncestor(cloned.StartContainer),
		Text:  text,
	}
	m.lastText = text
	m.live = snap
	return snap, true
}

// Current returns the live snapshot without consuming it
func (m *Manager) Current() (*Snapshot, bool) {
	return m.live, m.live != nil
}

// Claim consumes the live snapshot for a result tagged with id.
// An empty id (a result with no correlation, such as a context-menu request)
// claims whatever is live. A non-empty id that does not match the live
// snapshot is stale and claims nothing.
func (m *Manager) Claim(id string) (*Snapshot, bool) {
	if m.live == nil {
		return nil, false
	}
	if id != "" && id != m.live.ID {
		return nil, false
	}
	snap := m.live
	m.live = nil
	return snap, true
}

// Discard drops the live snapshot, keeping the deduplication memory
func (m *Manager) Discard() {
	m.live = nil
}
