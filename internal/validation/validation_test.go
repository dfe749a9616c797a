package validation

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstrugala/hp-tests/internal/units"
)

// fakeSource serves canned quantities by name.
type fakeSource map[string][]float64

func (s fakeSource) Get(_ context.Context, names ...string) ([]*units.Quantity, error) {
	out := make([]*units.Quantity, len(names))
	for i, name := range names {
		values, ok := s[name]
		if !ok {
			return nil, fmt.Errorf("unknown quantity %q", name)
		}
		out[i] = units.New(values, units.Unit{Name: "g/kg"}, name, "")
	}
	return out, nil
}

// TestHumidityCheck tests supply/return humidity ordering
func TestHumidityCheck(t *testing.T) {
	ctx := context.Background()
	check := HumidityCheck()

	t.Run("healthy ordering", func(t *testing.T) {
		src := fakeSource{
			"ws": {8, 8, 8, 8},
			"wr": {6, 6, 6, 6},
		}
		f, err := check.Run(ctx, src)
		require.NoError(t, err)
		assert.Equal(t, SeverityOK, f.Severity)
	})

	t.Run("persistent inversion warns", func(t *testing.T) {
		src := fakeSource{
			"ws": {6, 6, 6, 6},
			"wr": {8, 8, 6.5, 5},
		}
		f, err := check.Run(ctx, src)
		require.NoError(t, err)
		assert.Equal(t, SeverityWarning, f.Severity)
		assert.InDelta(t, 0.75, f.Value, 1e-12)
	})

	t.Run("unreadable samples are skipped", func(t *testing.T) {
		src := fakeSource{
			"ws": {8, math.NaN(), 8},
			"wr": {6, 9, 6},
		}
		f, err := check.Run(ctx, src)
		require.NoError(t, err)
		assert.Equal(t, SeverityOK, f.Severity)
	})

	t.Run("all unreadable warns", func(t *testing.T) {
		nan := math.NaN()
		src := fakeSource{
			"ws": {nan, nan},
			"wr": {nan, nan},
		}
		f, err := check.Run(ctx, src)
		require.NoError(t, err)
		assert.Equal(t, SeverityWarning, f.Severity)
	})
}

// TestCyclingCheck tests the frequency variance bands
func TestCyclingCheck(t *testing.T) {
	ctx := context.Background()
	check := CyclingCheck()

	t.Run("settled speed", func(t *testing.T) {
		src := fakeSource{"f": {50, 51, 50, 49, 50}}
		f, err := check.Run(ctx, src)
		require.NoError(t, err)
		assert.Equal(t, SeverityOK, f.Severity)
	})

	t.Run("short cycling", func(t *testing.T) {
		// On/off swings between 0 and 90 Hz: variance far above 400 Hz².
		src := fakeSource{"f": {0, 90, 0, 90, 0, 90}}
		f, err := check.Run(ctx, src)
		require.NoError(t, err)
		assert.Equal(t, SeverityWarning, f.Severity)
		assert.Contains(t, f.Message, "short cycling")
	})

	t.Run("hunting", func(t *testing.T) {
		// Slow drift between plateaus: variance between the bands.
		src := fakeSource{"f": {40, 40, 40, 60, 60, 60}}
		f, err := check.Run(ctx, src)
		require.NoError(t, err)
		assert.Equal(t, SeverityWarning, f.Severity)
		assert.Contains(t, f.Message, "hunting")
	})

	t.Run("single sample", func(t *testing.T) {
		src := fakeSource{"f": {50}}
		f, err := check.Run(ctx, src)
		require.NoError(t, err)
		assert.Equal(t, SeverityOK, f.Severity)
	})
}

// TestRunner tests check sequencing and failure propagation
func TestRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("all checks report", func(t *testing.T) {
		src := fakeSource{
			"ws": {8, 8},
			"wr": {6, 6},
			"f":  {50, 50},
		}
		findings, err := NewRunner(src, nil).Run(ctx)
		require.NoError(t, err)
		require.Len(t, findings, 2)
		assert.Equal(t, "humidity", findings[0].Check)
		assert.Equal(t, "cycling", findings[1].Check)
	})

	t.Run("missing quantity fails the run", func(t *testing.T) {
		src := fakeSource{"f": {50, 50}}
		_, err := NewRunner(src, nil).Run(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "humidity")
	})
}
