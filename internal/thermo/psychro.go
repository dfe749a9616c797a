package thermo

import (
	"fmt"
	"math"
)

// Psychrometric constants. Saturation vapor pressure over liquid water
// follows the Magnus form recommended by Alduchov & Eskridge (1996).
const (
	magnusA = 610.94  // Pa
	magnusB = 17.625  // -
	magnusC = 243.04  // °C
	epsilon = 0.62198 // molar mass ratio water/dry air

	// AtmosphericPressure is the fixed pressure assumed for all humid-air
	// states measured by the logger.
	AtmosphericPressure = 101325.0 // Pa
)

// SaturationVaporPressure returns the saturation pressure of water vapor
// in Pa at the given temperature in K.
func SaturationVaporPressure(temperature float64) float64 {
	tc := temperature - 273.15
	return magnusA * math.Exp(magnusB*tc/(tc+magnusC))
}

// HumidityRatio converts a (pressure, temperature, relative humidity)
// humid-air state into a humidity ratio in kg water per kg dry air.
// Relative humidity is a fraction in [0, 1].
func HumidityRatio(pressure, temperature, relativeHumidity float64) (float64, error) {
	if pressure <= 0 {
		return 0, fmt.Errorf("pressure must be positive, got %g Pa", pressure)
	}
	if relativeHumidity < 0 || relativeHumidity > 1 {
		return 0, fmt.Errorf("relative humidity must be in [0,1], got %g", relativeHumidity)
	}
	pw := relativeHumidity * SaturationVaporPressure(temperature)
	if pw >= pressure {
		return 0, fmt.Errorf("vapor pressure %g Pa exceeds total pressure %g Pa", pw, pressure)
	}
	return epsilon * pw / (pressure - pw), nil
}
