// Package dataset holds the in-memory representation of a logger
// recording: an ordered, immutable table of samples with per-sample
// metadata, named raw columns, and derived label columns. It also
// provides the row filter used to scope analyses to a subset of samples
// and the name-conversion table mapping short quantity names to logger
// column headers.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"time"

	apperrors "github.com/gstrugala/hp-tests/internal/errors"
)

// Metadata column names usable in filters alongside raw columns.
const (
	MetaFileIndex  = "file_index"
	MetaTestPeriod = "test_period"
)

// Dataset is an ordered table of logger samples. Raw columns are fixed
// after construction; the only permitted mutation is the addition of
// derived label columns (e.g. the steady-state time bin).
type Dataset struct {
	timestamps []time.Time
	fileIndex  []int
	testPeriod []string
	columns    map[string][]float64
	labels     map[string][]string
}

// New creates a dataset from per-sample timestamps, source-file indices
// and test-period labels. All three slices must have equal length.
func New(timestamps []time.Time, fileIndex []int, testPeriod []string) (*Dataset, error) {
	n := len(timestamps)
	if n == 0 {
		return nil, fmt.Errorf("dataset must contain at least one sample")
	}
	if len(fileIndex) != n || len(testPeriod) != n {
		return nil, fmt.Errorf("metadata length mismatch: %d timestamps, %d file indices, %d test periods",
			n, len(fileIndex), len(testPeriod))
	}
	return &Dataset{
		timestamps: timestamps,
		fileIndex:  fileIndex,
		testPeriod: testPeriod,
		columns:    make(map[string][]float64),
		labels:     make(map[string][]string),
	}, nil
}

// Len returns the sample count N.
func (d *Dataset) Len() int { return len(d.timestamps) }

// Timestamps returns the per-sample timestamps.
func (d *Dataset) Timestamps() []time.Time { return d.timestamps }

// AddColumn attaches a raw column. The column length must equal the
// sample count; redefining an existing column is an error.
func (d *Dataset) AddColumn(name string, values []float64) error {
	if len(values) != d.Len() {
		return fmt.Errorf("column %q has %d values, dataset has %d samples", name, len(values), d.Len())
	}
	if _, ok := d.columns[name]; ok {
		return fmt.Errorf("column %q already present", name)
	}
	d.columns[name] = values
	return nil
}

// Column returns a raw column by its logger header name.
func (d *Dataset) Column(name string) ([]float64, error) {
	values, ok := d.columns[name]
	if !ok {
		return nil, apperrors.MissingColumn(name)
	}
	return values, nil
}

// HasColumn reports whether a raw column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.columns[name]
	return ok
}

// ColumnNames returns the raw column names in unspecified order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, 0, len(d.columns))
	for name := range d.columns {
		names = append(names, name)
	}
	return names
}

// SetLabel attaches or replaces a derived label column, one string per
// sample with "" meaning unclassified.
func (d *Dataset) SetLabel(name string, values []string) error {
	if len(values) != d.Len() {
		return fmt.Errorf("label column %q has %d values, dataset has %d samples", name, len(values), d.Len())
	}
	d.labels[name] = values
	return nil
}

// Label returns a derived label column.
func (d *Dataset) Label(name string) ([]string, error) {
	values, ok := d.labels[name]
	if !ok {
		return nil, apperrors.MissingColumn(name)
	}
	return values, nil
}

// Interval returns the fixed sampling interval of the recording, taken
// as the delta between the first two samples.
func (d *Dataset) Interval() (time.Duration, error) {
	if d.Len() < 2 {
		return 0, fmt.Errorf("sampling interval needs at least two samples, have %d", d.Len())
	}
	return d.timestamps[1].Sub(d.timestamps[0]), nil
}

// Subset returns the indices of samples matching every equality
// constraint in the filter. An empty filter matches all samples.
// Constraint keys may be raw column names or the metadata columns
// file_index and test_period; unknown keys fail with MissingColumn.
func (d *Dataset) Subset(f Filter) ([]int, error) {
	match := make([]bool, d.Len())
	for i := range match {
		match[i] = true
	}

	for key, want := range f {
		switch key {
		case MetaFileIndex:
			idx, err := strconv.Atoi(want)
			if err != nil {
				return nil, fmt.Errorf("filter %s=%q: %w", key, want, err)
			}
			for i := range match {
				match[i] = match[i] && d.fileIndex[i] == idx
			}
		case MetaTestPeriod:
			for i := range match {
				match[i] = match[i] && d.testPeriod[i] == want
			}
		default:
			col, err := d.Column(key)
			if err != nil {
				return nil, err
			}
			value, err := strconv.ParseFloat(want, 64)
			if err != nil {
				return nil, fmt.Errorf("filter %s=%q: %w", key, want, err)
			}
			for i := range match {
				match[i] = match[i] && !math.IsNaN(col[i]) && col[i] == value
			}
		}
	}

	var rows []int
	for i, ok := range match {
		if ok {
			rows = append(rows, i)
		}
	}
	return rows, nil
}

// Gather extracts the values of a column at the given row indices.
func Gather(values []float64, rows []int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = values[r]
	}
	return out
}

// Scatter writes per-row values back into a full-length label column,
// leaving unselected rows unclassified.
func Scatter(n int, rows []int, values []string) []string {
	out := make([]string, n)
	for i, r := range rows {
		out[r] = values[i]
	}
	return out
}
