package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Sheet pairs a worksheet name with its table.
type Sheet struct {
	Name  string
	Table Table
}

// XLSXWriter writes multi-sheet report workbooks.
type XLSXWriter struct {
	outDir string
	logger *slog.Logger
}

// NewXLSXWriter creates an XLSX writer rooted at outDir.
func NewXLSXWriter(outDir string, logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{outDir: outDir, logger: logger}
}

// WriteWorkbook writes the sheets, in order, into one workbook file.
func (w *XLSXWriter) WriteWorkbook(name string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook needs at least one sheet")
	}
	fullPath := name
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(w.outDir, name)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	w.logger.Info("writing XLSX report",
		slog.String("path", fullPath),
		slog.Int("sheets", len(sheets)))

	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", sheets[0].Name); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	for _, sheet := range sheets[1:] {
		if _, err := file.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet.Name, err)
		}
	}
	for _, sheet := range sheets {
		if err := writeSheet(file, sheet); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet.Name, err)
		}
	}

	if err := file.SaveAs(fullPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSheet(file *excelize.File, sheet Sheet) error {
	writeRow := func(rowIdx int, cells []string) error {
		for colIdx, value := range cells {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(sheet.Name, cell, value); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeRow(1, sheet.Table.Headers); err != nil {
		return err
	}
	for i, record := range sheet.Table.Records {
		if err := writeRow(i+2, record); err != nil {
			return err
		}
	}
	return nil
}
