// Package units provides the unit-tagged quantity value type used across
// the derivation engine, together with a registry of laboratory units.
//
// A Unit is an affine map onto SI base units: si = value*Factor + Offset.
// Physical-dimension bookkeeping delegates to gonum's unit package, so
// incompatible arithmetic is caught by dimension vectors rather than by
// string comparison of unit names.
package units

import (
	"fmt"

	"gonum.org/v1/gonum/unit"

	apperrors "github.com/gstrugala/hp-tests/internal/errors"
)

// Unit describes a measurement unit as an affine map onto SI base units.
type Unit struct {
	Name   string          // canonical name, e.g. "kJ/kg"
	Dims   unit.Dimensions // SI dimension exponents
	Factor float64         // multiplicative factor to SI
	Offset float64         // additive offset to SI (non-zero for Celsius only)
}

// IsAffine reports whether the unit has a non-zero offset to SI.
// Affine units convert losslessly but cannot take part in
// unit-generating multiplication.
func (u Unit) IsAffine() bool { return u.Offset != 0 }

// Compatible reports whether two units share the same physical dimension.
func (u Unit) Compatible(v Unit) bool {
	return unit.DimensionsMatch(unit.New(0, u.Dims), unit.New(0, v.Dims))
}

// String returns the canonical unit name.
func (u Unit) String() string { return u.Name }

// SI dimension vectors for the laboratory unit set.
var (
	dimless     = unit.Dimensions{}
	dimTime     = unit.Dimensions{unit.TimeDim: 1}
	dimFreq     = unit.Dimensions{unit.TimeDim: -1}
	dimTemp     = unit.Dimensions{unit.TemperatureDim: 1}
	dimPressure = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -1, unit.TimeDim: -2}
	dimSpecEner = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -2}
	dimPower    = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 2, unit.TimeDim: -3}
	dimMassFlow = unit.Dimensions{unit.MassDim: 1, unit.TimeDim: -1}
	dimMass     = unit.Dimensions{unit.MassDim: 1}
	dimEnergy   = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 2, unit.TimeDim: -2}
)

// Registry holds the closed set of units known to one processing session.
// Construct it once with NewRegistry and inject it; the engine never
// consults ambient global state.
type Registry struct {
	units   map[string]Unit
	aliases map[string]string
}

// NewRegistry returns a registry pre-loaded with every unit the data
// logger and the derivation rules use.
func NewRegistry() *Registry {
	r := &Registry{
		units:   make(map[string]Unit),
		aliases: make(map[string]string),
	}

	declare := func(name string, dims unit.Dimensions, factor, offset float64, aliases ...string) {
		r.units[name] = Unit{Name: name, Dims: dims, Factor: factor, Offset: offset}
		for _, a := range aliases {
			r.aliases[a] = name
		}
	}

	// Dimensionless ratios. The logger reports relative humidity in
	// percent and humidity ratios in g/kg.
	declare("fraction", dimless, 1, 0, "ratio", "frac", "-")
	declare("percent", dimless, 1e-2, 0, "%", "pct")
	declare("ppm", dimless, 1e-6, 0)
	declare("g/kg", dimless, 1e-3, 0)
	declare("kg/kg", dimless, 1, 0)

	declare("s", dimTime, 1, 0, "seconds", "second")
	declare("min", dimTime, 60, 0, "minutes", "minute")
	declare("h", dimTime, 3600, 0, "hours", "hour")

	declare("Hz", dimFreq, 1, 0, "hertz")
	declare("rpm", dimFreq, 1.0/60.0, 0)

	declare("K", dimTemp, 1, 0, "kelvin")
	declare("degC", dimTemp, 1, 273.15, "°C", "C")

	declare("Pa", dimPressure, 1, 0, "pascal")
	declare("kPa", dimPressure, 1e3, 0)
	declare("bar", dimPressure, 1e5, 0)
	declare("mbar", dimPressure, 1e2, 0)

	declare("J/kg", dimSpecEner, 1, 0)
	declare("kJ/kg", dimSpecEner, 1e3, 0)

	declare("W", dimPower, 1, 0, "watt")
	declare("kW", dimPower, 1e3, 0)

	declare("kg/s", dimMassFlow, 1, 0)
	declare("g/s", dimMassFlow, 1e-3, 0)
	declare("kg/h", dimMassFlow, 1.0/3600.0, 0)

	declare("kg", dimMass, 1, 0)
	declare("g", dimMass, 1e-3, 0)

	declare("J", dimEnergy, 1, 0, "joule")
	declare("kJ", dimEnergy, 1e3, 0)
	declare("kWh", dimEnergy, 3.6e6, 0)

	return r
}

// Register adds a custom unit. Registering a name that already exists
// (directly or as an alias) is an error.
func (r *Registry) Register(u Unit) error {
	if u.Name == "" {
		return fmt.Errorf("unit name must not be empty")
	}
	if _, ok := r.units[u.Name]; ok {
		return fmt.Errorf("unit %q already registered", u.Name)
	}
	if _, ok := r.aliases[u.Name]; ok {
		return fmt.Errorf("unit name %q already registered as alias", u.Name)
	}
	r.units[u.Name] = u
	return nil
}

// Lookup resolves a unit name or alias.
func (r *Registry) Lookup(name string) (Unit, error) {
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	u, ok := r.units[name]
	if !ok {
		return Unit{}, fmt.Errorf("unit %q not in registry", name)
	}
	return u, nil
}

// MustLookup is like Lookup but panics on unknown names. Use only for
// the fixed unit names baked into the built-in derivation rules.
func (r *Registry) MustLookup(name string) Unit {
	u, err := r.Lookup(name)
	if err != nil {
		panic(err)
	}
	return u
}

// mulUnits returns the unit produced by element-wise multiplication of
// quantities tagged a and b. Affine units are rejected since the offset
// has no meaning under multiplication.
func mulUnits(a, b Unit) (Unit, error) {
	if a.IsAffine() || b.IsAffine() {
		return Unit{}, apperrors.IncompatibleUnits(a.Name, b.Name)
	}
	dims := unit.New(1, a.Dims).Mul(unit.New(1, b.Dims)).Dimensions()
	return Unit{
		Name:   a.Name + "·" + b.Name,
		Dims:   dims,
		Factor: a.Factor * b.Factor,
	}, nil
}
