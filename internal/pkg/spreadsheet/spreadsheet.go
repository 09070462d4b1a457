// Package spreadsheet renders tabular reports as xlsx workbooks.
package spreadsheet

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of xlsx files.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Column describes one exported column.
type Column struct {
	Header string
	Width  float64
	Money  bool
}

// Table is a sheet worth of data. Cells may be string, numbers, decimal.Decimal,
// time.Time, pointers to those, or nil.
type Table struct {
	Sheet   string
	Columns []Column
	Rows    [][]interface{}
}

// Render writes t into a new workbook and returns its bytes.
func Render(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Sheet
	if sheet == "" {
		sheet = "Reporte"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"0F766E"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	moneyFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, fmt.Errorf("money style: %w", err)
	}
	dateFmt := "yyyy-mm-dd hh:mm"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return nil, fmt.Errorf("date style: %w", err)
	}

	for i, col := range t.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
			return nil, err
		}
		if col.Width > 0 {
			name, _ := excelize.ColumnNumberToName(i + 1)
			if err := f.SetColWidth(sheet, name, name, col.Width); err != nil {
				return nil, err
			}
		}
	}
	if len(t.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return nil, err
		}
	}

	for r, row := range t.Rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			v, isTime := cellValue(value)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("set %s: %w", cell, err)
			}
			switch {
			case isTime:
				_ = f.SetCellStyle(sheet, cell, cell, dateStyle)
			case c < len(t.Columns) && t.Columns[c].Money:
				_ = f.SetCellStyle(sheet, cell, cell, moneyStyle)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellValue(v interface{}) (interface{}, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case decimal.Decimal:
		f, _ := x.Float64()
		return f, false
	case *decimal.Decimal:
		if x == nil {
			return "", false
		}
		f, _ := x.Float64()
		return f, false
	case time.Time:
		return x, true
	case *time.Time:
		if x == nil {
			return "", false
		}
		return *x, true
	case *string:
		if x == nil {
			return "", false
		}
		return *x, false
	case *float64:
		if x == nil {
			return "", false
		}
		return *x, false
	}
	return v, false
}

// Filename builds a dated export name such as cobros_2026-03-05.xlsx.
func Filename(prefix string, at time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", prefix, at.Format("2006-01-02"))
}
