package score

// Signal tables. Matching is plain substring search on lowercased text,
// which is intentionally crude: this engine is a documented fallback.
var (
	// supernaturalSignals each subtract 40
	supernaturalSignals = []string{
		"divine",
		"miracle",
		"supernatural",
		"god power",
		"healing energy",
		"magic",
		"instantly cured",
	}

	// sensationalSignals each subtract 15
	sensationalSignals = []string{
		"viral",
		"shocking",
		"unbelievable",
		"mysterious",
		"claims",
		"allegedly",
		"reportedly",
	}

	// credibleSources each add 20
	credibleSources = []string{
		"ndtv",
		"the hindu",
		"bbc",
		"reuters",
		"indiatoday",
		"press trust of india",
		"pti",
	}
)

// Score deltas and reasons per signal group
const (
	baseline = 70

	supernaturalPenalty = 40
	sensationalPenalty  = 15
	credibleBonus       = 20

	reasonSupernatural = "Contains supernatural or non-scientific claim"
	reasonSensational  = "Uses sensational or vague language"
	reasonCredible     = "References a reputed news source"
	reasonNoSignals    = "No strong credibility or misinformation signals detected"
)

// Canonical summaries per verdict
const (
	summaryVerified     = "The claim appears credible and aligns with reporting standards of trusted sources."
	summaryUnverifiable = "The claim lacks sufficient verifiable evidence and should be treated cautiously."
	summaryFalse        = "The claim shows strong indicators of misinformation or lacks any scientific or factual basis."
)

// referenceSources is attached to every result
var referenceSources = []string{
	"https://www.ndtv.com",
	"https://www.thehindu.com",
	"https://www.altnews.in",
	"https://www.factly.in",
}

// SignalGroup names a signal table
type SignalGroup string

const (
	GroupSupernatural SignalGroup = "supernatural"
	GroupSensational  SignalGroup = "sensational"
	GroupCredible     SignalGroup = "credible_source"
)

// Signals returns a copy of the keyword table for a group
func Signals(group SignalGroup) []string {
	var src []string
	switch group {
	case GroupSupernatural:
		src = supernaturalSignals
	case GroupSensational:
		src = sensationalSignals
	case GroupCredible:
		src = credibleSources
	}
	return append([]string(nil), src...)
}
