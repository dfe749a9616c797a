package quantity

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gstrugala/hp-tests/internal/thermo"
	"github.com/gstrugala/hp-tests/internal/units"
)

// processEndpoints names the pressure and temperature quantities at the
// inlet and outlet of one refrigerant-side process.
type processEndpoints struct {
	pressureIn  string
	tempIn      string
	pressureOut string
	tempOut     string
}

// processStates maps each heat-balance quantity to its process
// endpoints per operating mode. The circuit reverses between modes, so
// the same physical sensor measures different states. Qloss_ev exists
// in cooling mode only; the suction line does not pick up measurable
// heat with the flow reversed.
var processStates = map[Mode]map[string]processEndpoints{
	ModeHeating: {
		"Qcond": {"pout", "T4", "pout", "T6"},
		"Qev":   {"pout", "T6", "pin", "T9"},
		"Pcomp": {"pin", "T1", "pout", "T2"},
	},
	ModeCooling: {
		"Qcond":    {"pout", "T9", "pout", "T7"},
		"Qev":      {"pout", "T7", "pin", "T4"},
		"Pcomp":    {"pin", "T1", "pout", "T2"},
		"Qloss_ev": {"pin", "T4", "pin", "T1"},
	},
}

// expectedPhases gives the physically expected inlet and outlet phase
// of each process. A sensor reading that classifies into another phase
// sits inside (or on the edge of) the two-phase dome, where enthalpy is
// not a function of pressure and temperature alone; such samples are
// substituted with the saturated enthalpy at the expected quality.
var expectedPhases = map[string][2]thermo.Phase{
	"Qcond":    {thermo.PhaseGas, thermo.PhaseLiquid},
	"Qev":      {thermo.PhaseLiquid, thermo.PhaseGas},
	"Pcomp":    {thermo.PhaseGas, thermo.PhaseGas},
	"Qloss_ev": {thermo.PhaseGas, thermo.PhaseGas},
}

// heatRule computes the heat transfer rate of one refrigerant-side
// process as mass flow times the enthalpy difference across it.
func heatRule(name string, sign float64, property string) Rule {
	return Rule{
		Name:     name,
		Category: CategoryDependent,
		Deps:     []string{"refdir", "flowrt_r"},
		Derive: func(dc *deriveContext) (*units.Quantity, error) {
			mode, err := dc.Mode()
			if err != nil {
				return nil, err
			}
			ep, ok := processStates[mode][name]
			if !ok {
				return nil, fmt.Errorf("%s is not defined in %s mode", name, mode)
			}

			flow, err := dc.Get("flowrt_r")
			if err != nil {
				return nil, err
			}
			flowSI := flow.SI()

			expected := expectedPhases[name]
			hin, err := dc.stateEnthalpies(name, ep.pressureIn, ep.tempIn, expected[0])
			if err != nil {
				return nil, err
			}
			hout, err := dc.stateEnthalpies(name, ep.pressureOut, ep.tempOut, expected[1])
			if err != nil {
				return nil, err
			}

			values := make([]float64, len(flowSI))
			for i := range values {
				values[i] = sign * flowSI[i] * (hout[i] - hin[i])
			}

			watt, err := dc.Unit("W")
			if err != nil {
				return nil, err
			}
			kw, err := dc.Unit("kW")
			if err != nil {
				return nil, err
			}
			label, prop := dc.meta(name, name, property)
			return units.New(values, watt, label, prop).To(kw)
		},
	}
}

// enthalpySide selects, per mode, the pressure quantity attached to
// each numbered refrigerant state: states upstream of the compressor
// see suction pressure, states downstream see discharge pressure.
var enthalpySide = map[Mode]map[int]string{
	ModeHeating: {
		7: "pin", 8: "pin", 9: "pin", 1: "pin",
		2: "pout", 3: "pout", 4: "pout", 5: "pout", 6: "pout",
	},
	ModeCooling: {
		6: "pin", 5: "pin", 4: "pin", 3: "pin", 1: "pin",
		2: "pout", 9: "pout", 8: "pout", 7: "pout",
	},
}

// enthalpyRule computes the specific enthalpy at one numbered
// refrigerant state, as reported by the property provider. Unlike the
// heat balances, standalone enthalpies carry no phase substitution;
// they show the state exactly as measured.
func enthalpyRule(state int) Rule {
	name := "h" + strconv.Itoa(state)
	tempName := "T" + strconv.Itoa(state)
	return Rule{
		Name:     name,
		Category: CategoryEnthalpy,
		Deps:     []string{"refdir", tempName},
		Derive: func(dc *deriveContext) (*units.Quantity, error) {
			mode, err := dc.Mode()
			if err != nil {
				return nil, err
			}
			pressure, err := dc.Get(enthalpySide[mode][state])
			if err != nil {
				return nil, err
			}
			temp, err := dc.Get(tempName)
			if err != nil {
				return nil, err
			}
			pSI, tSI, err := siStateArrays(dc, pressure, temp)
			if err != nil {
				return nil, err
			}

			provider := dc.Provider()
			values := make([]float64, len(pSI))
			for i := range values {
				if math.IsNaN(pSI[i]) || math.IsNaN(tSI[i]) {
					values[i] = math.NaN()
					continue
				}
				h, err := provider.Enthalpy(pSI[i], tSI[i])
				if err != nil {
					return nil, fmt.Errorf("sample %d: %w", i, err)
				}
				values[i] = h
			}

			jkg, err := dc.Unit("J/kg")
			if err != nil {
				return nil, err
			}
			kjkg, err := dc.Unit("kJ/kg")
			if err != nil {
				return nil, err
			}
			label, prop := dc.meta(name, name, "enthalpy")
			return units.New(values, jkg, label, prop).To(kjkg)
		},
	}
}

// stateEnthalpies evaluates the specific enthalpy series at one process
// endpoint, substituting saturated values where the measured state
// disagrees with the expected phase. Samples already in the expected
// phase pass through untouched, so a clean recording is unaffected.
func (dc *deriveContext) stateEnthalpies(process, pressureName, tempName string, expected thermo.Phase) ([]float64, error) {
	pressure, err := dc.Get(pressureName)
	if err != nil {
		return nil, err
	}
	temp, err := dc.Get(tempName)
	if err != nil {
		return nil, err
	}
	pSI, tSI, err := siStateArrays(dc, pressure, temp)
	if err != nil {
		return nil, err
	}

	provider := dc.Provider()
	quality, substitutable := thermo.ExpectedPhase(expected)

	values := make([]float64, len(pSI))
	corrected := 0
	for i := range values {
		if math.IsNaN(pSI[i]) || math.IsNaN(tSI[i]) {
			values[i] = math.NaN()
			continue
		}
		phase, err := provider.Phase(pSI[i], tSI[i])
		if err != nil {
			return nil, fmt.Errorf("sample %d at %s: %w", i, tempName, err)
		}
		if phase != expected && substitutable {
			h, err := provider.EnthalpyAtQuality(pSI[i], quality)
			if err != nil {
				return nil, fmt.Errorf("sample %d at %s: %w", i, tempName, err)
			}
			values[i] = h
			corrected++
			continue
		}
		h, err := provider.Enthalpy(pSI[i], tSI[i])
		if err != nil {
			return nil, fmt.Errorf("sample %d at %s: %w", i, tempName, err)
		}
		values[i] = h
	}

	if corrected > 0 {
		dc.store.logger.WarnContext(dc.ctx, "phase-corrected enthalpy samples",
			"process", process,
			"state", tempName,
			"expected_phase", string(expected),
			"corrected", corrected,
			"samples", len(values),
		)
	}
	return values, nil
}

// siStateArrays converts a (pressure, temperature) quantity pair to SI
// arrays, validating dimensions through the registry on the way.
func siStateArrays(dc *deriveContext, pressure, temp *units.Quantity) (pSI, tSI []float64, err error) {
	pascal, err := dc.Unit("Pa")
	if err != nil {
		return nil, nil, err
	}
	kelvin, err := dc.Unit("K")
	if err != nil {
		return nil, nil, err
	}
	p, err := pressure.To(pascal)
	if err != nil {
		return nil, nil, err
	}
	t, err := temp.To(kelvin)
	if err != nil {
		return nil, nil, err
	}
	if p.Len() != t.Len() {
		return nil, nil, fmt.Errorf("pressure and temperature length mismatch: %d vs %d", p.Len(), t.Len())
	}
	return p.Values, t.Values, nil
}
