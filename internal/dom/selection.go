package dom

import "strings"

// Selection is the document's live user selection.
// Ranges returned by RangeAt are live: later edits to the selection may
// invalidate them, so callers that need to keep one must Clone it.
type Selection struct {
	ranges []*Range
}

// RangeCount returns the number of ranges in the selection
func (s *Selection) RangeCount() int {
	if s == nil {
		return 0
	}
	return len(s.ranges)
}

// RangeAt returns the live range at index i
func (s *Selection) RangeAt(i int) (*Range, bool) {
	if s == nil || i < 0 || i >= len(s.ranges) {
		return nil, false
	}
	return s.ranges[i], true
}

// Select replaces the selection with a single range
func (s *Selection) Select(r *Range) {
	s.ranges = []*Range{r}
}

// RemoveAllRanges clears the selection
func (s *Selection) RemoveAllRanges() {
	s.ranges = nil
}

// String returns the selected text
func (s *Selection) String() string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	for _, r := range s.ranges {
		b.WriteString(r.String())
	}
	return b.String()
}
