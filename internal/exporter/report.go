package exporter

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/gstrugala/hp-tests/internal/units"
	"github.com/gstrugala/hp-tests/internal/validation"
)

// Table is an ordered report table ready for any of the writers.
type Table struct {
	Headers []string
	Records [][]string
}

// QuantityTable renders derived quantities as a time series: one row
// per sample with the timestamp, each quantity in its display unit and
// an optional label column. Unreadable values render as empty cells.
func QuantityTable(timestamps []time.Time, quantities []*units.Quantity, labelName string, labels []string) (Table, error) {
	n := len(timestamps)
	for _, q := range quantities {
		if q.Len() != n {
			return Table{}, fmt.Errorf("quantity %s has %d samples, expected %d", q.Label, q.Len(), n)
		}
	}
	if labels != nil && len(labels) != n {
		return Table{}, fmt.Errorf("label column has %d samples, expected %d", len(labels), n)
	}

	headers := make([]string, 0, len(quantities)+2)
	headers = append(headers, "Timestamp")
	for _, q := range quantities {
		headers = append(headers, fmt.Sprintf("%s (%s)", q.Label, q.Unit.Name))
	}
	if labels != nil {
		headers = append(headers, labelName)
	}

	records := make([][]string, n)
	for i := 0; i < n; i++ {
		record := make([]string, 0, len(headers))
		record = append(record, timestamps[i].Format("2006-01-02 15:04:05"))
		for _, q := range quantities {
			record = append(record, formatFloat(q.Values[i]))
		}
		if labels != nil {
			record = append(record, labels[i])
		}
		records[i] = record
	}
	return Table{Headers: headers, Records: records}, nil
}

// FindingsTable renders plausibility check findings.
func FindingsTable(findings []validation.Finding) Table {
	records := make([][]string, len(findings))
	for i, f := range findings {
		records[i] = []string{f.Check, string(f.Severity), f.Message, formatFloat(f.Value)}
	}
	return Table{
		Headers: []string{"Check", "Severity", "Message", "Value"},
		Records: records,
	}
}

// SummaryTable groups quantities by a label column and reports the mean
// of each quantity per group, in first-appearance order. Unclassified
// samples (empty label) and unreadable values are left out.
func SummaryTable(labels []string, quantities []*units.Quantity) (Table, error) {
	for _, q := range quantities {
		if q.Len() != len(labels) {
			return Table{}, fmt.Errorf("quantity %s has %d samples, label column has %d",
				q.Label, q.Len(), len(labels))
		}
	}

	var order []string
	groups := make(map[string][]int)
	for i, label := range labels {
		if label == "" {
			continue
		}
		if _, seen := groups[label]; !seen {
			order = append(order, label)
		}
		groups[label] = append(groups[label], i)
	}

	headers := make([]string, 0, len(quantities)+2)
	headers = append(headers, "Group", "Samples")
	for _, q := range quantities {
		headers = append(headers, fmt.Sprintf("mean %s (%s)", q.Label, q.Unit.Name))
	}

	records := make([][]string, 0, len(order))
	for _, label := range order {
		rows := groups[label]
		record := make([]string, 0, len(headers))
		record = append(record, label, fmt.Sprintf("%d", len(rows)))
		for _, q := range quantities {
			values := make([]float64, 0, len(rows))
			for _, r := range rows {
				if !math.IsNaN(q.Values[r]) {
					values = append(values, q.Values[r])
				}
			}
			if len(values) == 0 {
				record = append(record, "")
				continue
			}
			record = append(record, formatFloat(stat.Mean(values, nil)))
		}
		records = append(records, record)
	}
	return Table{Headers: headers, Records: records}, nil
}
