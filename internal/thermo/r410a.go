package thermo

import (
	"fmt"
	"math"
)

// R410A property constants. The saturation curve is a Clausius-Clapeyron
// fit ln(p) = satA − satB/T matched to tabulated data at 0 °C and 25 °C
// (within ~1% of published values between −30 °C and +50 °C); enthalpies
// use the IIR reference (h = 200 kJ/kg for saturated liquid at 0 °C),
// constant-cp single-phase branches and a Watson relation for the heat
// of vaporization. Accurate enough for energy-balance screening of
// heat-pump test data; not a substitute for a full equation of state.
const (
	r410aCriticalTemp     = 344.49  // K
	r410aCriticalPressure = 4.901e6 // Pa

	satA = 22.270 // ln(Pa)
	satB = 2371.0 // K

	refTemp     = 273.15 // K, IIR reference state
	refEnthalpy = 200e3  // J/kg, saturated liquid at refTemp

	cpLiquid = 1550.0 // J/(kg·K)
	cpVapor  = 1050.0 // J/(kg·K)

	hfgRef         = 221e3 // J/kg at refTemp
	watsonExponent = 0.38

	// Band around the saturation temperature inside which a measured
	// (p, T) point is classified two-phase.
	twoPhaseBand = 0.1 // K
)

// R410A is a correlation-based property provider for refrigerant R410A.
type R410A struct{}

// NewR410A returns the R410A property provider.
func NewR410A() *R410A { return &R410A{} }

// Fluid returns the fluid identifier.
func (r *R410A) Fluid() string { return "R410A" }

// SaturationTemperature returns the saturation temperature in K at the
// given pressure in Pa.
func (r *R410A) SaturationTemperature(pressure float64) (float64, error) {
	if pressure <= 0 {
		return 0, fmt.Errorf("pressure must be positive, got %g Pa", pressure)
	}
	if pressure >= r410aCriticalPressure {
		return r410aCriticalTemp, nil
	}
	return satB / (satA - math.Log(pressure)), nil
}

// Phase classifies the (pressure, temperature) state.
func (r *R410A) Phase(pressure, temperature float64) (Phase, error) {
	if pressure <= 0 || temperature <= 0 {
		return PhaseUnknown, fmt.Errorf("state out of range: p=%g Pa, T=%g K", pressure, temperature)
	}
	if pressure >= r410aCriticalPressure && temperature >= r410aCriticalTemp {
		return PhaseSupercritical, nil
	}
	if temperature >= r410aCriticalTemp {
		return PhaseGas, nil
	}
	if pressure >= r410aCriticalPressure {
		return PhaseLiquid, nil
	}

	tsat, err := r.SaturationTemperature(pressure)
	if err != nil {
		return PhaseUnknown, err
	}
	switch {
	case temperature > tsat+twoPhaseBand:
		return PhaseGas, nil
	case temperature < tsat-twoPhaseBand:
		return PhaseLiquid, nil
	default:
		return PhaseTwoPhase, nil
	}
}

// Enthalpy returns the single-phase specific enthalpy at (pressure,
// temperature). Points inside the two-phase band are evaluated on the
// branch their temperature is closer to; the engine's phase correction
// replaces them with saturated-state values anyway.
func (r *R410A) Enthalpy(pressure, temperature float64) (float64, error) {
	phase, err := r.Phase(pressure, temperature)
	if err != nil {
		return 0, err
	}

	tsat, err := r.SaturationTemperature(pressure)
	if err != nil {
		return 0, err
	}

	switch phase {
	case PhaseLiquid:
		return liquidEnthalpy(temperature), nil
	case PhaseGas, PhaseSupercritical:
		return saturatedGasEnthalpy(tsat) + cpVapor*(temperature-tsat), nil
	default: // two-phase band
		if temperature >= tsat {
			return saturatedGasEnthalpy(tsat), nil
		}
		return liquidEnthalpy(temperature), nil
	}
}

// EnthalpyAtQuality returns the saturated-state enthalpy at the given
// pressure and vapor quality.
func (r *R410A) EnthalpyAtQuality(pressure, quality float64) (float64, error) {
	if quality < 0 || quality > 1 {
		return 0, fmt.Errorf("quality must be in [0,1], got %g", quality)
	}
	tsat, err := r.SaturationTemperature(pressure)
	if err != nil {
		return 0, err
	}
	return liquidEnthalpy(tsat) + quality*heatOfVaporization(tsat), nil
}

// liquidEnthalpy is the compressed/saturated liquid branch; the pressure
// dependence of liquid enthalpy is neglected.
func liquidEnthalpy(temperature float64) float64 {
	return refEnthalpy + cpLiquid*(temperature-refTemp)
}

func saturatedGasEnthalpy(tsat float64) float64 {
	return liquidEnthalpy(tsat) + heatOfVaporization(tsat)
}

// heatOfVaporization follows the Watson relation, vanishing at the
// critical point.
func heatOfVaporization(temperature float64) float64 {
	if temperature >= r410aCriticalTemp {
		return 0
	}
	ratio := (r410aCriticalTemp - temperature) / (r410aCriticalTemp - refTemp)
	return hfgRef * math.Pow(ratio, watsonExponent)
}
