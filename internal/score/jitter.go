package score

import (
	"math/rand/v2"
	"sync"
)

// JitterBound is the maximum absolute jitter applied to a score
const JitterBound = 3

// Source supplies the random integers used for jitter.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// globalSource draws from the process-wide generator. Results are not reproducible.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// NewSeededSource returns a reproducible source for tests and replays.
// It is safe for concurrent use; draw order across goroutines is not.
func NewSeededSource(seed uint64) Source {
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedSource) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// FixedSource always yields the given jitter, clamped to [-JitterBound, JitterBound]
type FixedSource int

// IntN returns the draw that maps to the fixed jitter
func (f FixedSource) IntN(n int) int {
	j := int(f)
	if j < -JitterBound {
		j = -JitterBound
	}
	if j > JitterBound {
		j = JitterBound
	}
	draw := j + JitterBound
	if draw >= n {
		draw = n - 1
	}
	return draw
}

// jitter draws a uniform integer in [-JitterBound, JitterBound]
func jitter(src Source) int {
	return src.IntN(2*JitterBound+1) - JitterBound
}
