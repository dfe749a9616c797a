package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ColumnInfo describes how a short quantity name maps onto the logger
// recording: the raw column header plus display metadata.
type ColumnInfo struct {
	Column   string // logger column header
	Unit     string // unit name as known to the unit registry
	Label    string // display label
	Property string // physical-property classification
}

// NameTable maps short quantity names (T1, pout, f, ...) to their
// logger column and metadata. Logger headers are long and awkward to
// type, so every lookup in the engine goes through this table.
type NameTable map[string]ColumnInfo

// Lookup returns the entry for a quantity name.
func (t NameTable) Lookup(name string) (ColumnInfo, bool) {
	info, ok := t[name]
	return info, ok
}

// Fixed-width layout of the conversions file, in runes per field:
// name, column header, unit, label; the property fills the remainder.
// Lines starting with '#' are comments, '-' marks an absent cell.
var nameTableWidths = []int{12, 36, 20, 24}

// ParseNameTable parses the fixed-width name-conversions file content.
func ParseNameTable(lines *bufio.Scanner) (NameTable, error) {
	table := make(NameTable)
	lineNum := 0
	for lines.Scan() {
		lineNum++
		line := lines.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		fields := splitFixedWidth(line, nameTableWidths)
		name := fields[0]
		if name == "" {
			return nil, fmt.Errorf("line %d: empty quantity name", lineNum)
		}
		if _, ok := table[name]; ok {
			return nil, fmt.Errorf("line %d: duplicate quantity name %q", lineNum, name)
		}
		table[name] = ColumnInfo{
			Column:   fields[1],
			Unit:     fields[2],
			Label:    fields[3],
			Property: fields[4],
		}
	}
	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("read name table: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("name table is empty")
	}
	return table, nil
}

// LoadNameTable reads and parses a name-conversions file.
func LoadNameTable(path string) (NameTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open name table: %w", err)
	}
	defer file.Close()

	table, err := ParseNameTable(bufio.NewScanner(file))
	if err != nil {
		return nil, fmt.Errorf("parse name table %s: %w", path, err)
	}
	return table, nil
}

// splitFixedWidth cuts a line at the given rune widths, trimming each
// cell and mapping the '-' placeholder to "". The final field takes the
// remainder of the line.
func splitFixedWidth(line string, widths []int) []string {
	runes := []rune(line)
	fields := make([]string, 0, len(widths)+1)
	pos := 0
	for _, w := range widths {
		end := pos + w
		if end > len(runes) {
			end = len(runes)
		}
		fields = append(fields, cleanCell(string(runes[pos:end])))
		pos = end
	}
	if pos < len(runes) {
		fields = append(fields, cleanCell(string(runes[pos:])))
	}
	for len(fields) < len(widths)+1 {
		fields = append(fields, "")
	}
	return fields
}

func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if s == "-" {
		return ""
	}
	return s
}
