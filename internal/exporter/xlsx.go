package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const maxSheetNameLen = 31

// XLSXWriter writes a Sheet as a single-sheet workbook
type XLSXWriter struct{}

// NewXLSXWriter creates a new XLSX writer
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

// Write renders sheet into a workbook written to w
func (x *XLSXWriter) Write(w io.Writer, sheet Sheet) (int64, error) {
	f := excelize.NewFile()
	defer f.Close()

	name := SheetName(sheet.Title)
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return 0, fmt.Errorf("failed to write headers: %w", err)
	}
	if err := f.SetRowStyle(name, 1, 1, headerStyle); err != nil {
		return 0, fmt.Errorf("failed to style headers: %w", err)
	}

	for r, rec := range sheet.Rows {
		row := make([]interface{}, len(rec))
		for c, text := range rec {
			row[c] = sheet.cellValue(c, text)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return 0, fmt.Errorf("failed to write record %d: %w", r, err)
		}
	}

	for c, h := range sheet.Headers {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return 0, err
		}
		if err := f.SetColWidth(name, col, col, columnWidth(h, sheet.Rows, c)); err != nil {
			return 0, fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	if err := f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return 0, fmt.Errorf("failed to freeze header: %w", err)
	}

	return f.WriteTo(w)
}

// SheetName makes title usable as a worksheet name
func SheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "Export"
	}
	if runes := []rune(name); len(runes) > maxSheetNameLen {
		name = string(runes[:maxSheetNameLen])
	}
	return name
}

// columnWidth sizes a column to its longest cell, within readable bounds
func columnWidth(header string, rows [][]string, col int) float64 {
	width := len([]rune(header))
	for _, r := range rows {
		if col < len(r) {
			width = max(width, len([]rune(r[col])))
		}
	}
	return float64(min(max(width+2, 8), 60))
}
