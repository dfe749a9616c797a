package steadystate

import (
	"fmt"
	"sort"
	"time"

	apperrors "github.com/gstrugala/hp-tests/internal/errors"
)

// Bins maps steady-run durations onto labeled half-open intervals
// [lo, hi). OpenLow adds a catch-all below the first threshold, OpenHigh
// one at or above the last; samples falling outside without the matching
// flag stay unclassified (empty label) and are excluded from grouping.
type Bins struct {
	thresholds []time.Duration
	openLow    bool
	openHigh   bool
	inMinutes  bool
}

// DefaultBins reproduces the standard reporting intervals: unbounded
// below 1 min, [1, 30) and [30, 60) min, and unbounded at or above 60 min.
func DefaultBins() *Bins {
	b, err := NewBins([]time.Duration{time.Minute, 30 * time.Minute, time.Hour}, true, true)
	if err != nil {
		panic(err) // static thresholds, cannot fail
	}
	return b
}

// NewBins validates the explicit thresholds: at least two, strictly
// ascending. Violations fail with InvalidThreshold before any labeling.
func NewBins(thresholds []time.Duration, openLow, openHigh bool) (*Bins, error) {
	if len(thresholds) < 2 {
		return nil, apperrors.InvalidThreshold(
			fmt.Sprintf("need at least two thresholds, got %d", len(thresholds)))
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return nil, apperrors.InvalidThreshold(
				fmt.Sprintf("thresholds must be strictly ascending, got %v after %v",
					thresholds[i], thresholds[i-1]))
		}
	}
	return &Bins{
		thresholds: thresholds,
		openLow:    openLow,
		openHigh:   openHigh,
		// Label text uses the coarsest convenient unit: minutes once the
		// second threshold reaches a minute, seconds below that.
		inMinutes: thresholds[1] >= time.Minute,
	}, nil
}

// Label renders the bin label for one duration, or "" when the duration
// falls outside the classified range.
func (b *Bins) Label(d time.Duration) string {
	// idx is the first threshold strictly greater than d, so equality
	// lands in the interval whose lower bound it is.
	idx := sort.Search(len(b.thresholds), func(i int) bool { return d < b.thresholds[i] })

	switch {
	case idx == 0:
		if !b.openLow {
			return ""
		}
		return fmt.Sprintf("τ < %s", b.format(b.thresholds[0]))
	case idx == len(b.thresholds):
		if !b.openHigh {
			return ""
		}
		return fmt.Sprintf("τ ≥ %s", b.format(b.thresholds[len(b.thresholds)-1]))
	default:
		return fmt.Sprintf("%s ≤ τ < %s", b.format(b.thresholds[idx-1]), b.format(b.thresholds[idx]))
	}
}

// Apply labels a whole duration series.
func (b *Bins) Apply(durations []time.Duration) []string {
	labels := make([]string, len(durations))
	for i, d := range durations {
		labels[i] = b.Label(d)
	}
	return labels
}

// format renders a threshold in the display unit chosen at construction.
// The display unit affects label text only, never the classification.
func (b *Bins) format(d time.Duration) string {
	if b.inMinutes {
		return fmt.Sprintf("%.0f min", d.Minutes())
	}
	return fmt.Sprintf("%.0f s", d.Seconds())
}
