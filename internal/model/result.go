package model

import "fmt"

// Verdict is the three-way classification derived from a clamped score
type Verdict string

const (
	VerdictVerified     Verdict = "Verified"     // score >= 70
	VerdictUnverifiable Verdict = "Unverifiable" // 40 <= score < 70
	VerdictFalse        Verdict = "False"        // score < 40
)

// Score thresholds shared by verdicts and trust tiers
const (
	ThresholdVerified     = 70
	ThresholdUnverifiable = 40

	MinScore = 0
	MaxScore = 100
)

// VerdictFor maps a clamped score to its verdict
func VerdictFor(score int) Verdict {
	switch {
	case score >= ThresholdVerified:
		return VerdictVerified
	case score >= ThresholdUnverifiable:
		return VerdictUnverifiable
	default:
		return VerdictFalse
	}
}

// Valid reports whether v is one of the known verdicts
func (v Verdict) Valid() bool {
	switch v {
	case VerdictVerified, VerdictUnverifiable, VerdictFalse:
		return true
	}
	return false
}

// Claim is a single assessed assertion inside a verification result
type Claim struct {
	Claim   string  `json:"claim"`   // Original (case-preserved) text
	Verdict Verdict `json:"verdict"` // Verified, Unverifiable or False
	Reason  string  `json:"reason"`  // Signal reasons joined with "; "
}

// VerificationResult is the structured verdict returned for one verification request.
// It is produced once and never mutated by its consumers.
type VerificationResult struct {
	Score   int      `json:"score"`
	Claims  []Claim  `json:"claims"`
	Sources []string `json:"sources"`
	Summary string   `json:"summary"`
}

// FirstClaim returns the leading claim, if the result carries one
func (r *VerificationResult) FirstClaim() (Claim, bool) {
	if r == nil || len(r.Claims) == 0 {
		return Claim{}, false
	}
	return r.Claims[0], true
}

// Validate checks the invariants a consumer relies on
func (r *VerificationResult) Validate() error {
	if r == nil {
		return fmt.Errorf("nil result")
	}
	if r.Score < MinScore || r.Score > MaxScore {
		return fmt.Errorf("score out of range: %d", r.Score)
	}
	for i, c := range r.Claims {
		if !c.Verdict.Valid() {
			return fmt.Errorf("claim %d: unknown verdict %q", i, c.Verdict)
		}
	}
	return nil
}
