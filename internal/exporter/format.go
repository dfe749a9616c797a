package exporter

import (
	"math"
	"strconv"
)

// formatFloat renders a value for report cells: six significant digits,
// empty cell for unreadable samples.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', 6, 64)
}
