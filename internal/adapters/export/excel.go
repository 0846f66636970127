// Package export renders flattened report tables as downloadable artifacts.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/attendly/core/internal/ports"
)

// ExcelExporter implements the TableExporter interface using xlsx workbooks.
type ExcelExporter struct{}

// NewExcelExporter creates a new spreadsheet exporter
func NewExcelExporter() ports.TableExporter {
	return &ExcelExporter{}
}

// Export writes cells row-major onto a single sheet. The first row is styled
// as a bold header and columns are widened to fit date and name labels.
func (e *ExcelExporter) Export(sheetName string, cells [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet %q: %w", sheetName, err)
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("drop default sheet: %w", err)
		}
	}

	maxCols := 0
	for rowIdx, row := range cells {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, fmt.Errorf("cell coordinates (%d, %d): %w", colIdx+1, rowIdx+1, err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}

	if len(cells) > 0 && maxCols > 0 {
		headerStyle, err := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return nil, fmt.Errorf("create header style: %w", err)
		}
		firstCell, _ := excelize.CoordinatesToCellName(1, 1)
		lastCell, _ := excelize.CoordinatesToCellName(maxCols, 1)
		if err := f.SetCellStyle(sheetName, firstCell, lastCell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header row: %w", err)
		}

		lastCol, _ := excelize.ColumnNumberToName(maxCols)
		if err := f.SetColWidth(sheetName, "A", lastCol, 14); err != nil {
			return nil, fmt.Errorf("set column widths: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
