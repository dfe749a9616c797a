package exporter

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gstrugala/hp-tests/internal/units"
	"github.com/gstrugala/hp-tests/internal/validation"
)

func hz(values ...float64) *units.Quantity {
	return units.New(values, units.Unit{Name: "Hz", Factor: 1}, "f", "frequency")
}

// TestWriteCSV tests file creation, BOM prefixing and appending
func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)

	require.NoError(t, w.WriteSimpleCSV("report.csv", []string{"a", "b"}, [][]string{{"1", "2"}}))

	data, err := os.ReadFile(filepath.Join(dir, "report.csv"))
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "\xEF\xBB\xBF"), "BOM prefix")
	assert.Contains(t, content, "a,b\n1,2\n")

	t.Run("append keeps existing content", func(t *testing.T) {
		require.NoError(t, w.AppendToCSV("report.csv", [][]string{{"3", "4"}}))
		data, err := os.ReadFile(filepath.Join(dir, "report.csv"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "1,2\n3,4\n")
	})

	t.Run("nested path is created", func(t *testing.T) {
		require.NoError(t, w.WriteSimpleCSV(filepath.Join("sub", "deep.csv"), []string{"x"}, nil))
		_, err := os.Stat(filepath.Join(dir, "sub", "deep.csv"))
		assert.NoError(t, err)
	})
}

// TestStreamWriter tests incremental row writing
func TestStreamWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)

	sw, err := w.CreateStreamWriter("stream.csv", []string{"t", "f"})
	require.NoError(t, err)
	require.NoError(t, sw.WriteRecord([]string{"0", "50"}))
	require.NoError(t, sw.WriteRecord([]string{"5", "51"}))
	require.NoError(t, sw.Close())

	data, err := os.ReadFile(filepath.Join(dir, "stream.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "t,f\n0,50\n5,51\n")
}

// TestQuantityTable tests time-series rendering
func TestQuantityTable(t *testing.T) {
	start := time.Date(2024, 9, 26, 8, 36, 0, 0, time.UTC)
	timestamps := []time.Time{start, start.Add(5 * time.Second)}
	freq := hz(50, math.NaN())
	labels := []string{"τ < 1 min", ""}

	table, err := QuantityTable(timestamps, []*units.Quantity{freq}, "steady_state_time", labels)
	require.NoError(t, err)

	assert.Equal(t, []string{"Timestamp", "f (Hz)", "steady_state_time"}, table.Headers)
	require.Len(t, table.Records, 2)
	assert.Equal(t, []string{"2024-09-26 08:36:00", "50", "τ < 1 min"}, table.Records[0])
	// Unreadable value and unclassified sample render as empty cells.
	assert.Equal(t, []string{"2024-09-26 08:36:05", "", ""}, table.Records[1])

	t.Run("length mismatch", func(t *testing.T) {
		_, err := QuantityTable(timestamps, []*units.Quantity{hz(50)}, "", nil)
		assert.Error(t, err)
	})
}

// TestSummaryTable tests grouping by bin label
func TestSummaryTable(t *testing.T) {
	labels := []string{"short", "short", "long", "", "long"}
	freq := hz(50, 52, 80, 99, math.NaN())

	table, err := SummaryTable(labels, []*units.Quantity{freq})
	require.NoError(t, err)

	assert.Equal(t, []string{"Group", "Samples", "mean f (Hz)"}, table.Headers)
	require.Len(t, table.Records, 2, "unclassified samples form no group")
	assert.Equal(t, []string{"short", "2", "51"}, table.Records[0])
	// The NaN sample counts toward the group but not toward the mean.
	assert.Equal(t, []string{"long", "2", "80"}, table.Records[1])
}

// TestFindingsTable tests findings rendering
func TestFindingsTable(t *testing.T) {
	table := FindingsTable([]validation.Finding{
		{Check: "cycling", Severity: validation.SeverityWarning, Message: "short cycling", Value: 2430},
	})
	require.Len(t, table.Records, 1)
	assert.Equal(t, []string{"cycling", "warning", "short cycling", "2430"}, table.Records[0])
}

// TestWriteWorkbook tests the XLSX writer round trip
func TestWriteWorkbook(t *testing.T) {
	dir := t.TempDir()
	w := NewXLSXWriter(dir, nil)

	sheets := []Sheet{
		{Name: "data", Table: Table{Headers: []string{"t", "f"}, Records: [][]string{{"0", "50"}}}},
		{Name: "findings", Table: Table{Headers: []string{"check"}, Records: [][]string{{"cycling"}}}},
	}
	require.NoError(t, w.WriteWorkbook("report.xlsx", sheets))

	file, err := excelize.OpenFile(filepath.Join(dir, "report.xlsx"))
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, []string{"data", "findings"}, file.GetSheetList())
	rows, err := file.GetRows("data")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"t", "f"}, {"0", "50"}}, rows)

	t.Run("empty workbook", func(t *testing.T) {
		assert.Error(t, w.WriteWorkbook("empty.xlsx", nil))
	})
}
