package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gstrugala/hp-tests/internal/errors"
)

// TestRegistryLookup tests unit and alias resolution
func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name      string
		canonical string
	}{
		{"Hz", "Hz"},
		{"hertz", "Hz"},
		{"°C", "degC"},
		{"%", "percent"},
		{"minutes", "min"},
		{"kJ/kg", "kJ/kg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := r.Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.canonical, u.Name)
		})
	}

	t.Run("unknown unit", func(t *testing.T) {
		_, err := r.Lookup("furlong/fortnight")
		assert.Error(t, err)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		err := r.Register(Unit{Name: "Hz", Dims: dimFreq, Factor: 1})
		assert.Error(t, err)
	})
}

// TestConversion tests lossless affine-aware conversions
func TestConversion(t *testing.T) {
	r := NewRegistry()

	t.Run("pressure bar to kPa", func(t *testing.T) {
		p := New([]float64{1, 2.5}, r.MustLookup("bar"), "p", "pressure")
		got, err := p.To(r.MustLookup("kPa"))
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{100, 250}, got.Values, 1e-9)
		assert.Equal(t, "kPa", got.Unit.Name)
	})

	t.Run("temperature degC to K", func(t *testing.T) {
		temp := New([]float64{0, 25, -40}, r.MustLookup("degC"), "T", "temperature")
		got, err := temp.To(r.MustLookup("K"))
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{273.15, 298.15, 233.15}, got.Values, 1e-9)
	})

	t.Run("round trip is lossless", func(t *testing.T) {
		q := New([]float64{12.34}, r.MustLookup("kW"), "P", "power")
		w, err := q.To(r.MustLookup("W"))
		require.NoError(t, err)
		back, err := w.To(r.MustLookup("kW"))
		require.NoError(t, err)
		assert.InDelta(t, 12.34, back.Values[0], 1e-12)
	})

	t.Run("incompatible dimensions", func(t *testing.T) {
		q := New([]float64{50}, r.MustLookup("Hz"), "f", "frequency")
		_, err := q.To(r.MustLookup("bar"))
		assert.True(t, apperrors.IsCode(err, apperrors.CodeIncompatibleUnits))
	})
}

// TestArithmetic tests addition, subtraction and unit-generating products
func TestArithmetic(t *testing.T) {
	r := NewRegistry()

	t.Run("add converts operand scale", func(t *testing.T) {
		a := New([]float64{1, 2}, r.MustLookup("kW"), "Pa", "power")
		b := New([]float64{500, 1500}, r.MustLookup("W"), "Pb", "power")
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{1.5, 3.5}, sum.Values, 1e-9)
		assert.Equal(t, "kW", sum.Unit.Name)
	})

	t.Run("add rejects different dimensions", func(t *testing.T) {
		a := New([]float64{1}, r.MustLookup("kW"), "", "")
		b := New([]float64{1}, r.MustLookup("bar"), "", "")
		_, err := a.Add(b)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeIncompatibleUnits))
	})

	t.Run("add rejects affine units", func(t *testing.T) {
		a := New([]float64{20}, r.MustLookup("degC"), "", "")
		b := New([]float64{5}, r.MustLookup("degC"), "", "")
		_, err := a.Add(b)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeIncompatibleUnits))
	})

	t.Run("sub", func(t *testing.T) {
		a := New([]float64{430e3}, r.MustLookup("J/kg"), "h2", "enthalpy")
		b := New([]float64{410}, r.MustLookup("kJ/kg"), "h1", "enthalpy")
		diff, err := a.Sub(b)
		require.NoError(t, err)
		assert.InDelta(t, 20e3, diff.Values[0], 1e-6)
	})

	t.Run("mass flow times enthalpy difference gives power dimension", func(t *testing.T) {
		flow := New([]float64{0.05}, r.MustLookup("kg/s"), "flow", "mass flow rate")
		dh := New([]float64{200}, r.MustLookup("kJ/kg"), "dh", "enthalpy")
		prod, err := flow.MulElem(dh)
		require.NoError(t, err)

		// 0.05 kg/s * 200 kJ/kg = 10 kW
		kw, err := prod.To(r.MustLookup("kW"))
		require.NoError(t, err)
		assert.InDelta(t, 10, kw.Values[0], 1e-9)
	})

	t.Run("product unit carries the summed dimensions", func(t *testing.T) {
		flow := New([]float64{1}, r.MustLookup("kg/s"), "", "")
		dh := New([]float64{1}, r.MustLookup("J/kg"), "", "")
		prod, err := flow.MulElem(dh)
		require.NoError(t, err)
		assert.True(t, prod.Unit.Compatible(r.MustLookup("W")))
		assert.False(t, prod.Unit.Compatible(r.MustLookup("Pa")))
	})

	t.Run("length mismatch", func(t *testing.T) {
		a := New([]float64{1, 2}, r.MustLookup("W"), "", "")
		b := New([]float64{1}, r.MustLookup("W"), "", "")
		_, err := a.Add(b)
		assert.Error(t, err)
	})
}

// TestScaleAndSI tests scalar scaling and SI conversion
func TestScaleAndSI(t *testing.T) {
	r := NewRegistry()

	q := New([]float64{30, 60}, r.MustLookup("min"), "t", "time")
	assert.InDeltaSlice(t, []float64{1800, 3600}, q.SI(), 1e-9)

	half := q.Scale(0.5)
	assert.InDeltaSlice(t, []float64{15, 30}, half.Values, 1e-9)
	// original untouched
	assert.InDeltaSlice(t, []float64{30, 60}, q.Values, 1e-9)
}
