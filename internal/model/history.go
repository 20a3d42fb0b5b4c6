package model

import "time"

// HistoryEntry is one persisted record of a completed verification
type HistoryEntry struct {
	Text      string `json:"text"`
	Score     int    `json:"score"`
	Summary   string `json:"summary"`
	Timestamp int64  `json:"timestamp"` // Epoch milliseconds
}

// NewHistoryEntry builds the history record for a result.
// The text is the first claim's text, or empty when the result has no claims.
func NewHistoryEntry(result *VerificationResult, at time.Time) HistoryEntry {
	entry := HistoryEntry{Timestamp: at.UnixMilli()}
	if result == nil {
		return entry
	}
	if claim, ok := result.FirstClaim(); ok {
		entry.Text = claim.Claim
	}
	entry.Score = result.Score
	entry.Summary = result.Summary
	return entry
}
