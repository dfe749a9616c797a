// Package steadystate classifies logger samples by how long the system
// has been in steady operation. A single-pass segmenter delimits maximal
// runs where the compressor-frequency signal stays statistically flat,
// and a binner maps each sample's run duration onto labeled intervals
// used to group measurements in reports.
package steadystate

import (
	"fmt"
	"math"
	"time"
)

// DefaultStdThreshold is the frequency standard deviation, in Hz, above
// which the current run is judged over.
const DefaultStdThreshold = 2.0

// RunState is the streaming statistic of the current steady run: an
// incremental mean and variance over a growing window, plus the window
// length. The zero value is not useful; seed with NewRunState.
type RunState struct {
	Mean     float64
	Variance float64
	Length   int
}

// NewRunState starts a run containing a single sample.
func NewRunState(first float64) RunState {
	return RunState{Mean: first, Variance: 0, Length: 1}
}

// Std returns the standard deviation of the current run.
func (s *RunState) Std() float64 {
	return math.Sqrt(s.Variance)
}

// Step feeds the next sample into the run. The candidate statistics
// treat x as the (Length+1)-th member of the window; if their standard
// deviation exceeds sdLimit the run closes and x starts a fresh run of
// length 1. The return value is the length of the run that just closed,
// or 0 when the current run simply grew.
//
// A run of length 1 has variance 0 by construction, so an immediate
// second reset cannot divide by an empty window.
func (s *RunState) Step(x, sdLimit float64) (closedLength int) {
	n := float64(s.Length)
	mean := (n*s.Mean + x) / (n + 1)
	variance := (n*(s.Variance+s.Mean*s.Mean)+x*x)/(n+1) - mean*mean
	if variance < 0 {
		variance = 0 // numeric noise on constant signals
	}

	if math.Sqrt(variance) > sdLimit {
		closedLength = s.Length
		s.Mean = x
		s.Variance = 0
		s.Length = 1
		return closedLength
	}

	s.Mean = mean
	s.Variance = variance
	s.Length++
	return 0
}

// Segment runs the steady-state segmentation over a frequency signal.
// durations[i] is the time span of the contiguous steady run containing
// sample i: the run's sample count times the sampling interval. Every
// sample belongs to exactly one maximal run and the run lengths sum to
// len(frequency).
func Segment(frequency []float64, sdLimit float64, interval time.Duration) ([]time.Duration, error) {
	if len(frequency) == 0 {
		return nil, fmt.Errorf("empty frequency series")
	}
	if sdLimit <= 0 {
		return nil, fmt.Errorf("standard deviation threshold must be positive, got %g", sdLimit)
	}

	durations := make([]time.Duration, len(frequency))
	state := NewRunState(frequency[0])
	runStart := 0

	for i := 1; i < len(frequency); i++ {
		if closed := state.Step(frequency[i], sdLimit); closed > 0 {
			fillRun(durations, runStart, i, closed, interval)
			runStart = i
		}
	}
	fillRun(durations, runStart, len(frequency), state.Length, interval)

	return durations, nil
}

func fillRun(durations []time.Duration, start, end, length int, interval time.Duration) {
	span := time.Duration(length) * interval
	for i := start; i < end; i++ {
		durations[i] = span
	}
}
