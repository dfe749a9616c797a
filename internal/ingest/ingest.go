// Package ingest loads data-logger recordings (CSV or XLSX) into a
// Dataset. It handles the logger's quirks: an optional test-conditions
// banner above the header, Latin-1 encoded exports, non-numeric sentinel
// cells such as "UnderRange", and timestamps that need rounding to the
// second. Multiple files load concurrently and merge in argument order.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gstrugala/hp-tests/internal/dataset"
)

// TimestampColumn is the logger's sample-time column header.
const TimestampColumn = "Timestamp"

// bannerMarkers identify a first line holding test conditions rather
// than column headers; such a line is reported but skipped.
var bannerMarkers = []string{"load", "aux", "setpoint", "|", "PdT"}

// File is one parsed logger recording.
type File struct {
	Path        string
	Conditions  string // test-conditions banner, if the file had one
	Timestamps  []time.Time
	ColumnOrder []string
	Columns     map[string][]float64
}

// Len returns the number of samples in the file.
func (f *File) Len() int { return len(f.Timestamps) }

// Load reads all given logger files concurrently and merges them into a
// single dataset, assigning each sample its source-file index and a
// "start - stop" test-period label. Files merge in argument order
// regardless of load completion order.
func Load(ctx context.Context, paths ...string) (*dataset.Dataset, error) {
	logger := slog.Default()

	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files given")
	}

	logger.InfoContext(ctx, "loading logger files", "count", len(paths))

	files := make([]*File, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			f, err := ParseFile(path)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, f := range files {
		if f.Conditions != "" {
			logger.InfoContext(ctx, "test conditions",
				"file", filepath.Base(f.Path),
				"conditions", f.Conditions,
			)
		}
	}

	ds, err := merge(files)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "logger files loaded",
		"files", len(files),
		"samples", ds.Len(),
		"columns", len(ds.ColumnNames()),
	)
	return ds, nil
}

// ParseFile parses a single logger file, dispatching on extension.
func ParseFile(path string) (*File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parseCSV(path)
	case ".xlsx":
		return parseXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file extension %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// DiscoverFiles lists the loadable logger files in a directory, sorted
// by name so repeated runs see a stable order.
func DiscoverFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".xlsx":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no logger files found in %s", dir)
	}
	return paths, nil
}

// merge concatenates parsed files into one dataset. Columns missing
// from a file are filled with NaN for its samples, mirroring how the
// recordings behave when a sensor was not wired for a given test.
func merge(files []*File) (*dataset.Dataset, error) {
	total := 0
	for _, f := range files {
		if f.Len() == 0 {
			return nil, fmt.Errorf("file %s contains no samples", f.Path)
		}
		total += f.Len()
	}

	timestamps := make([]time.Time, 0, total)
	fileIndex := make([]int, 0, total)
	testPeriod := make([]string, 0, total)

	var order []string
	seen := make(map[string]bool)
	for i, f := range files {
		period := periodLabel(f.Timestamps)
		timestamps = append(timestamps, f.Timestamps...)
		for range f.Timestamps {
			fileIndex = append(fileIndex, i)
			testPeriod = append(testPeriod, period)
		}
		for _, name := range f.ColumnOrder {
			if !seen[name] {
				seen[name] = true
				order = append(order, name)
			}
		}
	}

	ds, err := dataset.New(timestamps, fileIndex, testPeriod)
	if err != nil {
		return nil, err
	}

	for _, name := range order {
		values := make([]float64, 0, total)
		for _, f := range files {
			col, ok := f.Columns[name]
			if !ok {
				col = nanSlice(f.Len())
			}
			values = append(values, col...)
		}
		if err := ds.AddColumn(name, values); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// periodLabel renders the "start - stop" test-period label, carrying
// the stop date only when the test spans more than a day.
func periodLabel(timestamps []time.Time) string {
	start := timestamps[0]
	stop := timestamps[len(timestamps)-1]
	stopFormat := "15:04"
	if stop.Sub(start) > 24*time.Hour {
		stopFormat = "02/01 15:04"
	}
	return start.Format("02/01 15:04") + " - " + stop.Format(stopFormat)
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
