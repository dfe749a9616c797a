package quantity

import (
	"fmt"
	"math"

	"github.com/gstrugala/hp-tests/internal/thermo"
	"github.com/gstrugala/hp-tests/internal/units"
)

// Category classifies how a quantity is obtained from the recording.
type Category int

const (
	// CategoryAsIs quantities are logger columns read through the name
	// table without transformation.
	CategoryAsIs Category = iota
	// CategoryCleaned quantities are logger columns with sensor
	// artifacts repaired before use.
	CategoryCleaned
	// CategoryHumidity quantities are psychrometric conversions of
	// measured air states.
	CategoryHumidity
	// CategoryDependent quantities are computed from other quantities.
	CategoryDependent
	// CategoryEnthalpy quantities are refrigerant-state enthalpies
	// resolved through the property provider.
	CategoryEnthalpy
)

// Rule declares how one quantity is derived. Deps are resolved before
// Derive runs; mode-dependent prerequisites that cannot be declared
// statically are fetched through the derive context instead, which
// keeps them visible to cycle detection.
type Rule struct {
	Name     string
	Category Category
	Deps     []string
	Derive   func(dc *deriveContext) (*units.Quantity, error)
}

// DefaultRules returns the built-in derivation rule set. Any quantity
// name not present here falls back to an as-is read through the name
// table.
func DefaultRules() map[string]Rule {
	rules := make(map[string]Rule)
	add := func(r Rule) { rules[r.Name] = r }

	add(compressorFrequencyRule())
	add(refrigerantFlowRule())

	add(humidityRatioRule("ws", "Ts", "RHs"))
	add(humidityRatioRule("wr", "Tr", "RHr"))

	add(electricalPowerRule())
	add(elapsedTimeRule())

	// Heat transfer rates across the refrigerant-side processes. The
	// condenser duty is negated so that rejected heat reads positive.
	add(heatRule("Qcond", -1, "heat transfer rate"))
	add(heatRule("Qev", 1, "heat transfer rate"))
	add(heatRule("Pcomp", 1, "mechanical power"))
	add(heatRule("Qloss_ev", 1, "heat transfer rate"))

	for state := 1; state <= 9; state++ {
		add(enthalpyRule(state))
	}
	return rules
}

// asIsRule reads a logger column through the name table, tagging it
// with the table's unit and display metadata.
func asIsRule(name string) Rule {
	return Rule{
		Name:     name,
		Category: CategoryAsIs,
		Derive: func(dc *deriveContext) (*units.Quantity, error) {
			info, err := dc.Lookup(name)
			if err != nil {
				return nil, err
			}
			values, err := dc.Column(info.Column)
			if err != nil {
				return nil, err
			}
			u, err := dc.Unit(info.Unit)
			if err != nil {
				return nil, err
			}
			return units.New(values, u, info.Label, info.Property), nil
		},
	}
}

// compressorFrequencyRule repairs the compressor frequency signal: the
// logger emits an out-of-range sentinel while the compressor is off,
// and reports twice the actual frequency while it runs.
func compressorFrequencyRule() Rule {
	return Rule{
		Name:     "f",
		Category: CategoryCleaned,
		Derive: func(dc *deriveContext) (*units.Quantity, error) {
			info, err := dc.Lookup("f")
			if err != nil {
				return nil, err
			}
			values, err := dc.Column(info.Column)
			if err != nil {
				return nil, err
			}
			for i, v := range values {
				if math.IsNaN(v) {
					values[i] = 0
				} else {
					values[i] = v / 2
				}
			}
			u, err := dc.Unit(info.Unit)
			if err != nil {
				return nil, err
			}
			return units.New(values, u, info.Label, info.Property), nil
		},
	}
}

// refrigerantFlowRule forces the refrigerant mass flow to zero whenever
// the compressor is off. The flow meter keeps reporting sensor noise
// with the compressor stopped, which would poison the heat balances.
func refrigerantFlowRule() Rule {
	return Rule{
		Name:     "flowrt_r",
		Category: CategoryCleaned,
		Deps:     []string{"f"},
		Derive: func(dc *deriveContext) (*units.Quantity, error) {
			info, err := dc.Lookup("flowrt_r")
			if err != nil {
				return nil, err
			}
			values, err := dc.Column(info.Column)
			if err != nil {
				return nil, err
			}
			freq, err := dc.Get("f")
			if err != nil {
				return nil, err
			}
			for i := range values {
				if freq.Values[i] == 0 {
					values[i] = 0
				}
			}
			u, err := dc.Unit(info.Unit)
			if err != nil {
				return nil, err
			}
			return units.New(values, u, info.Label, info.Property), nil
		},
	}
}

// humidityRatioRule converts a measured (dry-bulb temperature, relative
// humidity) air state into a humidity ratio at atmospheric pressure.
func humidityRatioRule(name, tempName, rhName string) Rule {
	return Rule{
		Name:     name,
		Category: CategoryHumidity,
		Deps:     []string{tempName, rhName},
		Derive: func(dc *deriveContext) (*units.Quantity, error) {
			temp, err := dc.Get(tempName)
			if err != nil {
				return nil, err
			}
			rh, err := dc.Get(rhName)
			if err != nil {
				return nil, err
			}

			kelvin, err := dc.Unit("K")
			if err != nil {
				return nil, err
			}
			tempK, err := temp.To(kelvin)
			if err != nil {
				return nil, err
			}
			fraction, err := dc.Unit("fraction")
			if err != nil {
				return nil, err
			}
			rhFrac, err := rh.To(fraction)
			if err != nil {
				return nil, err
			}

			values := make([]float64, temp.Len())
			for i := range values {
				t, r := tempK.Values[i], rhFrac.Values[i]
				if math.IsNaN(t) || math.IsNaN(r) {
					values[i] = math.NaN()
					continue
				}
				w, err := thermo.HumidityRatio(thermo.AtmosphericPressure, t, r)
				if err != nil {
					return nil, fmt.Errorf("sample %d: %w", i, err)
				}
				values[i] = w
			}

			kgkg, err := dc.Unit("kg/kg")
			if err != nil {
				return nil, err
			}
			gkg, err := dc.Unit("g/kg")
			if err != nil {
				return nil, err
			}
			label, property := dc.meta(name, name, "absolute humidity")
			q, err := units.New(values, kgkg, label, property).To(gkg)
			if err != nil {
				return nil, err
			}
			return q, nil
		},
	}
}

// electricalPowerRule sums the two wattmeter channels into the total
// electrical power drawn by the unit.
func electricalPowerRule() Rule {
	return Rule{
		Name:     "Pel",
		Category: CategoryDependent,
		Deps:     []string{"Pa", "Pb"},
		Derive: func(dc *deriveContext) (*units.Quantity, error) {
			pa, err := dc.Get("Pa")
			if err != nil {
				return nil, err
			}
			pb, err := dc.Get("Pb")
			if err != nil {
				return nil, err
			}
			sum, err := pa.Add(pb)
			if err != nil {
				return nil, err
			}
			kw, err := dc.Unit("kW")
			if err != nil {
				return nil, err
			}
			q, err := sum.To(kw)
			if err != nil {
				return nil, err
			}
			label, property := dc.meta("Pel", "Pel", "electrical power")
			return q.WithMeta(label, property), nil
		},
	}
}

// elapsedTimeRule synthesizes the elapsed-time axis from the sample
// position within the active subset and the fixed sampling interval.
func elapsedTimeRule() Rule {
	return Rule{
		Name:     "t",
		Category: CategoryDependent,
		Derive: func(dc *deriveContext) (*units.Quantity, error) {
			dt, err := dc.Interval()
			if err != nil {
				return nil, err
			}
			values := make([]float64, len(dc.Rows()))
			for i := range values {
				values[i] = float64(i) * dt.Seconds()
			}
			second, err := dc.Unit("s")
			if err != nil {
				return nil, err
			}
			label, property := dc.meta("t", "t", "time")
			return units.New(values, second, label, property), nil
		},
	}
}

// meta returns display metadata for a derived quantity, preferring the
// name-table entry over the built-in fallback.
func (dc *deriveContext) meta(name, label, property string) (string, string) {
	if info, ok := dc.store.table.Lookup(name); ok {
		if info.Label != "" {
			label = info.Label
		}
		if info.Property != "" {
			property = info.Property
		}
	}
	return label, property
}
