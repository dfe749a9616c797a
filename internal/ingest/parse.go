package ingest

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// timestampFormats are the sample-time layouts seen across logger
// firmware revisions.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
	"2006/01/02 15:04:05",
	"02-01-2006 15:04:05",
	"2006-01-02T15:04:05",
}

// parseCSV reads a CSV logger export. Older exports are Latin-1 encoded;
// the file is transcoded to UTF-8 before parsing when it is not valid
// UTF-8 as-is.
func parseCSV(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if !utf8.Valid(data) {
		data = decodeLatin1(data)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV records: %w", err)
	}
	return buildFile(path, records)
}

// parseXLSX reads an Excel logger export via excelize, using the first
// sheet only.
func parseXLSX(path string) (*File, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return buildFile(path, rows)
}

// buildFile assembles a File from raw rows: optional conditions banner,
// header row, then samples.
func buildFile(path string, rows [][]string) (*File, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	f := &File{Path: path, Columns: make(map[string][]float64)}

	if isBannerRow(rows[0]) {
		f.Conditions = strings.Join(rows[0], " ")
		rows = rows[1:]
		if len(rows) == 0 {
			return nil, fmt.Errorf("file contains only a conditions banner")
		}
	}

	header := rows[0]
	tsIdx := -1
	for i, name := range header {
		name = strings.TrimSpace(name)
		header[i] = name
		if name == TimestampColumn {
			tsIdx = i
		}
	}
	if tsIdx == -1 {
		return nil, fmt.Errorf("no %q column in header", TimestampColumn)
	}

	for _, name := range header {
		if name == TimestampColumn || name == "" {
			continue
		}
		f.ColumnOrder = append(f.ColumnOrder, name)
		f.Columns[name] = nil
	}

	for lineNum, record := range rows[1:] {
		if len(record) == 0 {
			continue
		}
		if tsIdx >= len(record) {
			slog.Warn("skipping short record",
				"file", filepath.Base(path),
				"line", lineNum+2,
			)
			continue
		}
		ts, err := parseTimestamp(record[tsIdx])
		if err != nil {
			slog.Warn("skipping record with bad timestamp",
				"file", filepath.Base(path),
				"line", lineNum+2,
				"error", err,
			)
			continue
		}
		f.Timestamps = append(f.Timestamps, ts)

		for i, name := range header {
			if name == TimestampColumn || name == "" {
				continue
			}
			var cell string
			if i < len(record) {
				cell = strings.TrimSpace(record[i])
			}
			f.Columns[name] = append(f.Columns[name], parseCell(cell))
		}
	}

	if f.Len() == 0 {
		return nil, fmt.Errorf("no valid samples in file")
	}
	return f, nil
}

// parseCell converts a raw cell to a float, mapping sentinel readings
// (UnderRange, OverRange, empty) and anything non-numeric to NaN. The
// cleaning rules of the derivation engine decide what NaN becomes.
func parseCell(cell string) float64 {
	if cell == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parseTimestamp tries the known layouts and rounds to the second, the
// logger's actual resolution.
func parseTimestamp(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	for _, layout := range timestampFormats {
		if ts, err := time.Parse(layout, cell); err == nil {
			return ts.Round(time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp %q", cell)
}

// isBannerRow reports whether the first row carries test conditions
// instead of column headers.
func isBannerRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := row[0]
	for _, marker := range bannerMarkers {
		if strings.Contains(first, marker) {
			return true
		}
	}
	return false
}

// decodeLatin1 transcodes ISO-8859-1 bytes to UTF-8.
func decodeLatin1(data []byte) []byte {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return []byte(string(runes))
}
