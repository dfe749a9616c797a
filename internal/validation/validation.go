// Package validation runs plausibility checks over derived quantities
// after a recording is processed: sensor sanity that simple range checks
// at ingest cannot catch. Checks are declarative and run against the
// quantity store through a narrow read-only interface.
package validation

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/gstrugala/hp-tests/internal/units"
)

// Source provides derived quantities to the checks. *quantity.Store
// satisfies it.
type Source interface {
	Get(ctx context.Context, names ...string) ([]*units.Quantity, error)
}

// Severity grades a finding.
type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityWarning Severity = "warning"
)

// Finding is the outcome of one check over the active subset.
type Finding struct {
	Check    string   `json:"check"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Value    float64  `json:"value,omitempty"`
}

// Check is a named plausibility check.
type Check struct {
	Name string
	Run  func(ctx context.Context, src Source) (Finding, error)
}

// DefaultChecks returns the built-in check set.
func DefaultChecks() []Check {
	return []Check{
		HumidityCheck(),
		CyclingCheck(),
	}
}

// Runner executes checks in order and logs warnings as it goes.
type Runner struct {
	src    Source
	checks []Check
	logger *slog.Logger
}

// NewRunner creates a runner over the given source. A nil checks slice
// means the built-in set.
func NewRunner(src Source, logger *slog.Logger, checks ...Check) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if len(checks) == 0 {
		checks = DefaultChecks()
	}
	return &Runner{src: src, checks: checks, logger: logger}
}

// Run executes every check. A check that cannot obtain its quantities
// fails the whole run; a warning finding does not.
func (r *Runner) Run(ctx context.Context) ([]Finding, error) {
	findings := make([]Finding, 0, len(r.checks))
	for _, check := range r.checks {
		finding, err := check.Run(ctx, r.src)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", check.Name, err)
		}
		if finding.Severity != SeverityOK {
			r.logger.WarnContext(ctx, "plausibility check flagged",
				"check", finding.Check,
				"severity", string(finding.Severity),
				"message", finding.Message,
			)
		}
		findings = append(findings, finding)
	}
	return findings, nil
}

// humidityViolationTolerance is the fraction of samples allowed to show
// a return humidity at or above the supply humidity before the humidity
// sensors are considered suspect.
const humidityViolationTolerance = 0.05

// HumidityCheck verifies that the supply air stays more humid than the
// return air. The humidifier sits on the supply side, so a persistent
// inversion points at a drifting humidity probe.
func HumidityCheck() Check {
	return Check{
		Name: "humidity",
		Run: func(ctx context.Context, src Source) (Finding, error) {
			qs, err := src.Get(ctx, "ws", "wr")
			if err != nil {
				return Finding{}, err
			}
			supply, ret := qs[0], qs[1]
			if supply.Len() != ret.Len() {
				return Finding{}, fmt.Errorf("humidity series length mismatch: %d vs %d", supply.Len(), ret.Len())
			}

			violations, valid := 0, 0
			for i := range supply.Values {
				ws, wr := supply.Values[i], ret.Values[i]
				if math.IsNaN(ws) || math.IsNaN(wr) {
					continue
				}
				valid++
				if wr >= ws {
					violations++
				}
			}
			if valid == 0 {
				return Finding{Check: "humidity", Severity: SeverityWarning,
					Message: "no readable humidity samples"}, nil
			}

			fraction := float64(violations) / float64(valid)
			if fraction > humidityViolationTolerance {
				return Finding{
					Check:    "humidity",
					Severity: SeverityWarning,
					Message: fmt.Sprintf("return humidity at or above supply humidity in %.1f%% of samples",
						100*fraction),
					Value: fraction,
				}, nil
			}
			return Finding{Check: "humidity", Severity: SeverityOK,
				Message: "supply stays more humid than return", Value: fraction}, nil
		},
	}
}

// Compressor frequency variance bands, in Hz². Above the upper band the
// unit is short cycling; above the lower one it hunts over longer
// periods. Below both the speed is considered settled.
const (
	shortCyclingVariance = 400.0
	longCyclingVariance  = 100.0
)

// CyclingCheck flags compressor cycling from the variance of the
// cleaned frequency signal over the active subset.
func CyclingCheck() Check {
	return Check{
		Name: "cycling",
		Run: func(ctx context.Context, src Source) (Finding, error) {
			qs, err := src.Get(ctx, "f")
			if err != nil {
				return Finding{}, err
			}
			freq := qs[0]
			if freq.Len() < 2 {
				return Finding{Check: "cycling", Severity: SeverityOK,
					Message: "too few samples to assess cycling"}, nil
			}

			variance := stat.Variance(freq.Values, nil)
			switch {
			case variance > shortCyclingVariance:
				return Finding{
					Check:    "cycling",
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("compressor short cycling: frequency variance %.0f Hz²", variance),
					Value:    variance,
				}, nil
			case variance > longCyclingVariance:
				return Finding{
					Check:    "cycling",
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("compressor hunting: frequency variance %.0f Hz²", variance),
					Value:    variance,
				}, nil
			default:
				return Finding{Check: "cycling", Severity: SeverityOK,
					Message: "compressor speed settled", Value: variance}, nil
			}
		},
	}
}
