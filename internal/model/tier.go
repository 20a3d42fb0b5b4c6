package model

// Tier is the visual trust classification used by highlights and UI coloring
type Tier int

const (
	TierFalse Tier = iota // score < 40
	TierMixed             // 40 <= score < 70
	TierTrue              // score >= 70
)

// TierFor maps a score to its trust tier
func TierFor(score int) Tier {
	switch {
	case score >= ThresholdVerified:
		return TierTrue
	case score >= ThresholdUnverifiable:
		return TierMixed
	default:
		return TierFalse
	}
}

func (t Tier) String() string {
	switch t {
	case TierTrue:
		return "true"
	case TierMixed:
		return "mixed"
	default:
		return "false"
	}
}

// ClassName returns the CSS class applied to highlight wrappers
func (t Tier) ClassName() string {
	return "trust-" + t.String()
}

// Color returns the card color class for the floating result
func (t Tier) Color() string {
	switch t {
	case TierTrue:
		return "green"
	case TierMixed:
		return "orange"
	default:
		return "red"
	}
}

// Hex returns the score bar color used by the popup
func (t Tier) Hex() string {
	switch t {
	case TierTrue:
		return "#2e7d32"
	case TierMixed:
		return "#ef6c00"
	default:
		return "#c62828"
	}
}

// TrustClasses lists every highlight class, in tier order
func TrustClasses() []string {
	return []string{TierTrue.ClassName(), TierFalse.ClassName(), TierMixed.ClassName()}
}
