package quantity

import "math"

// Mode is the operating mode of the heat pump over the active subset.
// Mode-dependent derivations (heat balances, state enthalpies) select
// their refrigerant states per mode.
type Mode string

const (
	ModeHeating Mode = "heating"
	ModeCooling Mode = "cooling"
)

// Mode determines the operating mode from the reversing-valve signal by
// majority vote over the active subset. Cooling requires a strict
// majority of flagged samples; a tie is heating. Unreadable samples do
// not count as flagged.
func (dc *deriveContext) Mode() (Mode, error) {
	refdir, err := dc.Get("refdir")
	if err != nil {
		return "", err
	}
	flagged := 0
	for _, v := range refdir.Values {
		if v != 0 && !math.IsNaN(v) {
			flagged++
		}
	}
	if 2*flagged > refdir.Len() {
		return ModeCooling, nil
	}
	return ModeHeating, nil
}
