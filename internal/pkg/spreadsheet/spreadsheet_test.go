package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestRenderWritesHeadersAndRows(t *testing.T) {
	email := "a@x.com"
	var missing *string
	data, err := Render(Table{
		Sheet: "Clientes",
		Columns: []Column{
			{Header: "Nombre", Width: 30},
			{Header: "Monto total", Money: true},
			{Header: "Cobrador"},
			{Header: "Documento"},
		},
		Rows: [][]interface{}{
			{"Ana", decimal.RequireFromString("150000.50"), &email, missing},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	checks := map[string]string{"A1": "Nombre", "B1": "Monto total", "A2": "Ana", "C2": "a@x.com", "D2": ""}
	for cell, want := range checks {
		got, err := f.GetCellValue("Clientes", cell)
		if err != nil {
			t.Fatalf("%s: %v", cell, err)
		}
		if got != want {
			t.Fatalf("%s: expected %q, got %q", cell, want, got)
		}
	}
	raw, _ := f.GetCellValue("Clientes", "B2", excelize.Options{RawCellValue: true})
	if raw != "150000.5" {
		t.Fatalf("expected numeric amount, got %q", raw)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("cobros", time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)); got != "cobros_2026-03-05.xlsx" {
		t.Fatalf("unexpected filename %s", got)
	}
}
