// Package popup is the extension popup: the latest verdict plus recent history.
package popup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/ppiankov/trustlens/internal/bus"
	"github.com/ppiankov/trustlens/internal/history"
	"github.com/ppiankov/trustlens/internal/model"
)

// EmptyHistory is shown when nothing has been checked yet
const EmptyHistory = "No checks yet"

const historyTextLimit = 40

// View is the popup's render state
type View struct {
	HasResult bool
	ScoreText string // "Trust Score: N"
	Score     int
	BarColor  string // hex color by trust tier
	Status    string // first claim verdict, or "Result"
	Details   string // indented JSON of the result
	History   []string
}

// Popup renders results and history. Every result re-reads history from the
// store; nothing is cached between renders.
type Popup struct {
	history *history.Store
	out     io.Writer
	log     *zap.Logger

	mu   sync.Mutex
	view View
}

// New creates a popup reading from store. out may be nil.
func New(store *history.Store, out io.Writer, log *zap.Logger) *Popup {
	if log == nil {
		log = zap.NewNop()
	}
	return &Popup{history: store, out: out, log: log}
}

// Attach opens the popup as an extension view of rt
func (p *Popup) Attach(rt *bus.Runtime) *bus.Endpoint {
	return rt.AttachView(p)
}

// Open loads history and draws the popup
func (p *Popup) Open(ctx context.Context) error {
	if err := p.refreshHistory(ctx); err != nil {
		return err
	}
	return p.draw()
}

// HandleMessage renders SHOW_TRUST_RESULT messages
func (p *Popup) HandleMessage(ctx context.Context, env bus.Envelope, _ bus.Sender) {
	if env.Type != bus.TypeShowTrustResult || env.Result == nil {
		return
	}
	if err := p.RenderResult(ctx, env.Result); err != nil {
		p.log.Warn("popup render failed", zap.Error(err))
	}
}

// RenderResult shows result and refreshes history
func (p *Popup) RenderResult(ctx context.Context, result *model.VerificationResult) error {
	details, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	status := "Result"
	if claim, ok := result.FirstClaim(); ok && claim.Verdict != "" {
		status = string(claim.Verdict)
	}

	p.mu.Lock()
	p.view.HasResult = true
	p.view.Score = result.Score
	p.view.ScoreText = fmt.Sprintf("Trust Score: %d", result.Score)
	p.view.BarColor = model.TierFor(result.Score).Hex()
	p.view.Status = status
	p.view.Details = string(details)
	p.mu.Unlock()

	if err := p.refreshHistory(ctx); err != nil {
		return err
	}
	return p.draw()
}

// View returns a copy of the current render state
func (p *Popup) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.view
	v.History = append([]string(nil), p.view.History...)
	return v
}

// Render draws the current state as terminal text
func (p *Popup) Render() string {
	v := p.View()

	var sections []string
	sections = append(sections, titleStyle.Render("TrustLens"))

	if v.HasResult {
		filled := v.Score * barWidth / model.MaxScore
		bar := lipgloss.NewStyle().Background(lipgloss.Color(v.BarColor)).Render(strings.Repeat(" ", filled)) +
			lipgloss.NewStyle().Background(colorBorder).Render(strings.Repeat(" ", barWidth-filled))
		sections = append(sections,
			scoreStyle.Render(v.ScoreText),
			bar,
			statusStyle.Render(v.Status),
			detailsStyle.Render(v.Details))
	}

	sections = append(sections, sectionStyle.Render("History"))
	for _, line := range v.History {
		if line == EmptyHistory {
			line = emptyStyle.Render(line)
		}
		sections = append(sections, line)
	}

	return frameStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// HistoryLines formats entries as "N% – <first 40 chars>…"
func HistoryLines(entries []model.HistoryEntry) []string {
	if len(entries) == 0 {
		return []string{EmptyHistory}
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		text := []rune(e.Text)
		if len(text) > historyTextLimit {
			text = text[:historyTextLimit]
		}
		lines = append(lines, fmt.Sprintf("%d%% – %s…", e.Score, string(text)))
	}
	return lines
}

func (p *Popup) refreshHistory(ctx context.Context) error {
	if p.history == nil {
		return nil
	}
	entries, err := p.history.All(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	p.mu.Lock()
	p.view.History = HistoryLines(entries)
	p.mu.Unlock()
	return nil
}

func (p *Popup) draw() error {
	if p.out == nil {
		return nil
	}
	if _, err := fmt.Fprintln(p.out, p.Render()); err != nil {
		return fmt.Errorf("draw popup: %w", err)
	}
	return nil
}
