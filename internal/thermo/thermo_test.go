package thermo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSaturationTemperature checks the saturation fit against tabulated
// R410A data points
func TestSaturationTemperature(t *testing.T) {
	r := NewR410A()

	tests := []struct {
		name      string
		pressure  float64 // Pa
		expected  float64 // K
		tolerance float64
	}{
		{"0 degC point", 798e3, 273.15, 1.0},
		{"25 degC point", 1653e3, 298.15, 1.0},
		{"-30 degC point", 271e3, 243.15, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tsat, err := r.SaturationTemperature(tt.pressure)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, tsat, tt.tolerance)
		})
	}

	t.Run("non-positive pressure", func(t *testing.T) {
		_, err := r.SaturationTemperature(0)
		assert.Error(t, err)
	})
}

// TestPhase tests phase classification around the saturation curve
func TestPhase(t *testing.T) {
	r := NewR410A()

	tsat, err := r.SaturationTemperature(1000e3)
	require.NoError(t, err)

	tests := []struct {
		name        string
		pressure    float64
		temperature float64
		expected    Phase
	}{
		{"well superheated", 1000e3, tsat + 20, PhaseGas},
		{"well subcooled", 1000e3, tsat - 20, PhaseLiquid},
		{"on the curve", 1000e3, tsat, PhaseTwoPhase},
		{"just inside band", 1000e3, tsat + 0.05, PhaseTwoPhase},
		{"supercritical", 5.5e6, 350, PhaseSupercritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phase, err := r.Phase(tt.pressure, tt.temperature)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, phase)
		})
	}
}

// TestEnthalpy tests the enthalpy branches and their ordering
func TestEnthalpy(t *testing.T) {
	r := NewR410A()
	const p = 1000e3

	tsat, err := r.SaturationTemperature(p)
	require.NoError(t, err)

	hl, err := r.EnthalpyAtQuality(p, QualityLiquid)
	require.NoError(t, err)
	hg, err := r.EnthalpyAtQuality(p, QualityGas)
	require.NoError(t, err)

	t.Run("saturated gas above saturated liquid", func(t *testing.T) {
		assert.Greater(t, hg, hl)
	})

	t.Run("superheat increases enthalpy", func(t *testing.T) {
		h, err := r.Enthalpy(p, tsat+15)
		require.NoError(t, err)
		assert.Greater(t, h, hg)
	})

	t.Run("subcooling decreases enthalpy", func(t *testing.T) {
		h, err := r.Enthalpy(p, tsat-15)
		require.NoError(t, err)
		assert.Less(t, h, hl)
	})

	t.Run("quality interpolates linearly", func(t *testing.T) {
		hm, err := r.EnthalpyAtQuality(p, 0.5)
		require.NoError(t, err)
		assert.InDelta(t, (hl+hg)/2, hm, 1e-6)
	})

	t.Run("quality out of range", func(t *testing.T) {
		_, err := r.EnthalpyAtQuality(p, 1.5)
		assert.Error(t, err)
	})

	t.Run("reference state", func(t *testing.T) {
		// IIR convention: saturated liquid at 0 degC has h = 200 kJ/kg.
		h, err := r.EnthalpyAtQuality(798e3, QualityLiquid)
		require.NoError(t, err)
		assert.InDelta(t, 200e3, h, 2e3)
	})
}

// TestHumidityRatio tests the psychrometric conversion
func TestHumidityRatio(t *testing.T) {
	t.Run("typical indoor state", func(t *testing.T) {
		// 20 degC, 50% RH at 1 atm is about 7.3 g/kg.
		w, err := HumidityRatio(AtmosphericPressure, 293.15, 0.5)
		require.NoError(t, err)
		assert.InDelta(t, 7.3e-3, w, 0.3e-3)
	})

	t.Run("dry air", func(t *testing.T) {
		w, err := HumidityRatio(AtmosphericPressure, 293.15, 0)
		require.NoError(t, err)
		assert.Zero(t, w)
	})

	t.Run("humidity increases with temperature", func(t *testing.T) {
		w1, err := HumidityRatio(AtmosphericPressure, 283.15, 0.5)
		require.NoError(t, err)
		w2, err := HumidityRatio(AtmosphericPressure, 303.15, 0.5)
		require.NoError(t, err)
		assert.Greater(t, w2, w1)
	})

	t.Run("invalid relative humidity", func(t *testing.T) {
		_, err := HumidityRatio(AtmosphericPressure, 293.15, 1.2)
		assert.Error(t, err)
	})
}

// TestExpectedPhase tests quality sentinel mapping
func TestExpectedPhase(t *testing.T) {
	q, ok := ExpectedPhase(PhaseLiquid)
	assert.True(t, ok)
	assert.Equal(t, QualityLiquid, q)

	q, ok = ExpectedPhase(PhaseGas)
	assert.True(t, ok)
	assert.Equal(t, QualityGas, q)

	_, ok = ExpectedPhase(PhaseTwoPhase)
	assert.False(t, ok)
}
