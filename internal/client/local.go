package client

import (
	"context"

	"github.com/ppiankov/trustlens/internal/model"
	"github.com/ppiankov/trustlens/internal/score"
)

// LocalVerifier scores text in-process, without a service round trip
type LocalVerifier struct {
	scorer *score.Scorer
}

// NewLocalVerifier wraps scorer. A nil scorer uses the default one.
func NewLocalVerifier(scorer *score.Scorer) *LocalVerifier {
	if scorer == nil {
		scorer = score.NewScorer()
	}
	return &LocalVerifier{scorer: scorer}
}

// Verify scores text. It fails only when ctx is already done.
func (v *LocalVerifier) Verify(ctx context.Context, text string) (*model.VerificationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return v.scorer.Score(text), nil
}
