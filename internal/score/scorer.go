package score

import (
	"strings"

	"github.com/ppiankov/trustlens/internal/model"
)

// Scorer maps raw text to a verification result using keyword signals.
// It is a total function: every input, including the empty string, yields a valid result.
type Scorer struct {
	source Source
}

// Option configures a Scorer
type Option func(*Scorer)

// WithSource injects the jitter source
func WithSource(src Source) Option {
	return func(s *Scorer) {
		if src != nil {
			s.source = src
		}
	}
}

// NewScorer creates a new scorer. Without options jitter is drawn from
// the global generator and scores are not reproducible.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{source: globalSource{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Breakdown exposes how the final score was reached
type Breakdown struct {
	Baseline int
	Deltas   []Delta
	Jitter   int
	Raw      int // Before clamping
	Final    int
}

// Delta records one fired signal
type Delta struct {
	Group   SignalGroup
	Keyword string
	Points  int
	Reason  string
}

// Score scores text and returns the structured verdict
func (s *Scorer) Score(text string) *model.VerificationResult {
	result, _ := s.ScoreWithBreakdown(text)
	return result
}

// ScoreWithBreakdown scores text and also returns the scoring breakdown
func (s *Scorer) ScoreWithBreakdown(text string) (*model.VerificationResult, Breakdown) {
	// 1. Normalize for matching only; the claim keeps the original text
	lower := strings.ToLower(text)

	b := Breakdown{Baseline: baseline}
	score := baseline

	// 2. Evaluate groups in fixed order: supernatural, sensational, credible
	groups := []struct {
		group    SignalGroup
		keywords []string
		points   int
		reason   string
	}{
		{GroupSupernatural, supernaturalSignals, -supernaturalPenalty, reasonSupernatural},
		{GroupSensational, sensationalSignals, -sensationalPenalty, reasonSensational},
		{GroupCredible, credibleSources, credibleBonus, reasonCredible},
	}

	var reasons []string
	for _, g := range groups {
		for _, keyword := range g.keywords {
			if !strings.Contains(lower, keyword) {
				continue
			}
			score += g.points
			reasons = append(reasons, g.reason)
			b.Deltas = append(b.Deltas, Delta{Group: g.group, Keyword: keyword, Points: g.points, Reason: g.reason})
		}
	}

	// 3. Bounded jitter, then clamp
	b.Jitter = jitter(s.source)
	score += b.Jitter
	b.Raw = score
	score = clamp(score, model.MinScore, model.MaxScore)
	b.Final = score

	// 4. Verdict and canonical summary
	verdict := model.VerdictFor(score)

	reason := reasonNoSignals
	if len(reasons) > 0 {
		reason = strings.Join(reasons, "; ")
	}

	return &model.VerificationResult{
		Score: score,
		Claims: []model.Claim{
			{
				Claim:   text,
				Verdict: verdict,
				Reason:  reason,
			},
		},
		Sources: append([]string(nil), referenceSources...),
		Summary: SummaryFor(verdict),
	}, b
}

// SummaryFor returns the canonical summary sentence for a verdict
func SummaryFor(v model.Verdict) string {
	switch v {
	case model.VerdictVerified:
		return summaryVerified
	case model.VerdictUnverifiable:
		return summaryUnverifiable
	default:
		return summaryFalse
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
