// Package thermo supplies thermophysical properties of the working fluid
// to the derivation engine: enthalpy at a (pressure, temperature) or
// (pressure, quality) state, and phase classification. The engine only
// depends on the PropertyProvider interface; the shipped implementation
// is a correlation-based R410A model.
package thermo

// Phase classifies the thermodynamic state of the fluid.
type Phase string

const (
	PhaseLiquid        Phase = "liquid"
	PhaseGas           Phase = "gas"
	PhaseTwoPhase      Phase = "twophase"
	PhaseSupercritical Phase = "supercritical"
	PhaseUnknown       Phase = "unknown"
)

// Quality sentinels for saturated-state enthalpy queries.
const (
	QualityLiquid = 0.0
	QualityGas    = 1.0
)

// PropertyProvider returns fluid properties for a fixed working fluid.
// Pressures are in Pa, temperatures in K, enthalpies in J/kg. All methods
// are pure and synchronous; no call may block on I/O.
type PropertyProvider interface {
	// Fluid returns the identifier of the working fluid, e.g. "R410A".
	Fluid() string

	// Enthalpy returns the specific enthalpy at a single-phase
	// (pressure, temperature) state.
	Enthalpy(pressure, temperature float64) (float64, error)

	// EnthalpyAtQuality returns the saturated-state specific enthalpy at
	// the given pressure and vapor quality (0 = liquid, 1 = gas).
	EnthalpyAtQuality(pressure, quality float64) (float64, error)

	// Phase classifies the (pressure, temperature) state.
	Phase(pressure, temperature float64) (Phase, error)
}

// ExpectedPhase returns the quality corresponding to an expected phase
// for saturated-state substitution, and whether a substitution quality
// exists for that phase.
func ExpectedPhase(p Phase) (quality float64, ok bool) {
	switch p {
	case PhaseLiquid:
		return QualityLiquid, true
	case PhaseGas:
		return QualityGas, true
	default:
		return 0, false
	}
}
