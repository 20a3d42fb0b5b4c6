package dispatcher

import (
	"context"
	"strings"

	"github.com/ppiankov/trustlens/internal/bus"
)

// MenuItem describes a context-menu entry
type MenuItem struct {
	ID       string
	Title    string
	Contexts []string
}

// VerifyMenuItem is the single entry registered by the extension
var VerifyMenuItem = MenuItem{
	ID:       "trustlens-verify",
	Title:    "Verify with TrustLens",
	Contexts: []string{"selection"},
}

// VisibleFor reports whether the item is shown for the current selection
func (m MenuItem) VisibleFor(selectionText string) bool {
	return strings.TrimSpace(selectionText) != ""
}

// ContextMenuInfo is what the browser reports when a menu item is clicked
type ContextMenuInfo struct {
	MenuItemID    string
	SelectionText string
}

// HandleContextMenu normalises a menu click into the same flow as a page
// selection. It returns false when the click is not ours or has no text.
func (d *Dispatcher) HandleContextMenu(ctx context.Context, info ContextMenuInfo, tab *bus.Tab) bool {
	if info.MenuItemID != VerifyMenuItem.ID {
		return false
	}
	if !VerifyMenuItem.VisibleFor(info.SelectionText) {
		return false
	}
	d.submit(ctx, Request{Text: info.SelectionText, Origin: tab})
	return true
}
