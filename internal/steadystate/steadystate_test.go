package steadystate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gstrugala/hp-tests/internal/errors"
)

// TestRunStateStep tests the single-step transition function in isolation
func TestRunStateStep(t *testing.T) {
	t.Run("constant signal grows the run", func(t *testing.T) {
		s := NewRunState(50)
		for i := 0; i < 5; i++ {
			closed := s.Step(50, 2)
			assert.Zero(t, closed)
		}
		assert.Equal(t, 6, s.Length)
		assert.Equal(t, 50.0, s.Mean)
		assert.InDelta(t, 0, s.Std(), 1e-9)
	})

	t.Run("jump closes the run and starts a fresh one", func(t *testing.T) {
		s := NewRunState(50)
		require.Zero(t, s.Step(50, 2))
		closed := s.Step(90, 2)
		assert.Equal(t, 2, closed)
		assert.Equal(t, 1, s.Length)
		assert.Equal(t, 90.0, s.Mean)
		assert.Zero(t, s.Variance)
	})

	t.Run("immediate second reset has zero variance", func(t *testing.T) {
		s := NewRunState(10)
		require.NotZero(t, s.Step(100, 2))
		// The run of length 1 seeded by the previous reset must not
		// blow up on the next deviating sample.
		closed := s.Step(10, 2)
		assert.Equal(t, 1, closed)
		assert.Equal(t, 1, s.Length)
	})

	t.Run("small drift within threshold keeps the run", func(t *testing.T) {
		s := NewRunState(50)
		assert.Zero(t, s.Step(51, 2))
		assert.Zero(t, s.Step(49, 2))
		assert.Equal(t, 3, s.Length)
	})
}

// TestSegment tests the full single-pass segmentation
func TestSegment(t *testing.T) {
	interval := 5 * time.Second

	t.Run("reference example", func(t *testing.T) {
		// Two plateaus: four samples at 50 Hz then three at 90 Hz.
		freq := []float64{50, 50, 50, 50, 90, 90, 90}
		durations, err := Segment(freq, 2, interval)
		require.NoError(t, err)

		expected := []time.Duration{
			4 * interval, 4 * interval, 4 * interval, 4 * interval,
			3 * interval, 3 * interval, 3 * interval,
		}
		assert.Equal(t, expected, durations)
	})

	t.Run("single run covers everything", func(t *testing.T) {
		freq := []float64{60, 60, 60, 60}
		durations, err := Segment(freq, 2, interval)
		require.NoError(t, err)
		for _, d := range durations {
			assert.Equal(t, 4*interval, d)
		}
	})

	t.Run("single sample", func(t *testing.T) {
		durations, err := Segment([]float64{42}, 2, interval)
		require.NoError(t, err)
		assert.Equal(t, []time.Duration{interval}, durations)
	})

	t.Run("run lengths sum to N", func(t *testing.T) {
		freq := []float64{50, 50, 90, 90, 90, 20, 50, 50, 50, 120}
		durations, err := Segment(freq, 2, interval)
		require.NoError(t, err)

		// Piecewise-constant coverage: total samples, counted through
		// the per-sample durations, must equal N exactly.
		total := 0
		i := 0
		for i < len(durations) {
			runLen := int(durations[i] / interval)
			require.Greater(t, runLen, 0)
			for j := i; j < i+runLen; j++ {
				require.Equal(t, durations[i], durations[j], "duration constant within a run")
			}
			total += runLen
			i += runLen
		}
		assert.Equal(t, len(freq), total)
	})

	t.Run("empty series fails fast", func(t *testing.T) {
		_, err := Segment(nil, 2, interval)
		assert.Error(t, err)
	})

	t.Run("non-positive threshold fails fast", func(t *testing.T) {
		_, err := Segment([]float64{1, 2}, 0, interval)
		assert.Error(t, err)
	})
}

// TestNewBins tests threshold validation
func TestNewBins(t *testing.T) {
	tests := []struct {
		name       string
		thresholds []time.Duration
		wantErr    bool
	}{
		{"valid ascending", []time.Duration{time.Minute, time.Hour}, false},
		{"single threshold", []time.Duration{time.Minute}, true},
		{"none", nil, true},
		{"not ascending", []time.Duration{time.Hour, time.Minute}, true},
		{"duplicate", []time.Duration{time.Minute, time.Minute}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBins(tt.thresholds, true, true)
			if tt.wantErr {
				assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidThreshold))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestBinLabels tests interval labeling including boundary inclusion
func TestBinLabels(t *testing.T) {
	bins, err := NewBins([]time.Duration{time.Minute, 30 * time.Minute, time.Hour}, true, true)
	require.NoError(t, err)

	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"below first threshold", 20 * time.Second, "τ < 1 min"},
		{"inside middle interval", 10 * time.Minute, "1 min ≤ τ < 30 min"},
		{"exactly on a threshold goes up", 30 * time.Minute, "30 min ≤ τ < 60 min"},
		{"exactly on the last threshold", time.Hour, "τ ≥ 60 min"},
		{"far above", 5 * time.Hour, "τ ≥ 60 min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, bins.Label(tt.duration))
		})
	}

	t.Run("closed bounds leave outliers unclassified", func(t *testing.T) {
		closed, err := NewBins([]time.Duration{time.Minute, time.Hour}, false, false)
		require.NoError(t, err)
		assert.Equal(t, "", closed.Label(10*time.Second))
		assert.Equal(t, "", closed.Label(2*time.Hour))
		assert.Equal(t, "1 min ≤ τ < 60 min", closed.Label(30*time.Minute))
	})

	t.Run("seconds display below one minute", func(t *testing.T) {
		fine, err := NewBins([]time.Duration{5 * time.Second, 30 * time.Second}, true, true)
		require.NoError(t, err)
		assert.Equal(t, "5 s ≤ τ < 30 s", fine.Label(10*time.Second))
	})

	t.Run("apply", func(t *testing.T) {
		labels := bins.Apply([]time.Duration{20 * time.Second, 45 * time.Minute})
		assert.Equal(t, []string{"τ < 1 min", "30 min ≤ τ < 60 min"}, labels)
	})
}

// TestDefaultBins tests the standard reporting configuration
func TestDefaultBins(t *testing.T) {
	b := DefaultBins()
	assert.Equal(t, "τ < 1 min", b.Label(30*time.Second))
	assert.Equal(t, "τ ≥ 60 min", b.Label(90*time.Minute))
}
