package report

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX_Sheets(t *testing.T) {
	wb := Workbook{
		Products: []ProductRow{
			{SKU: "PROD-001", Name: "Bolt", Category: "Hardware", Quantity: 5, MinStockLevel: 10,
				Price: decimal.RequireFromString("2.00"), TotalValue: decimal.RequireFromString("10.00"), LowStock: true},
			{SKU: "PROD-002", Name: "Nut", Quantity: 3, MinStockLevel: 1,
				Price: decimal.RequireFromString("3.00"), TotalValue: decimal.RequireFromString("9.00")},
		},
		Categories: []CategoryRow{
			{Name: "Hardware", ProductCount: 1, TotalQuantity: 5, TotalValue: decimal.RequireFromString("10.00")},
		},
		TotalValue: decimal.RequireFromString("19.00"),
	}
	wb.LowStock = wb.Products[:1]

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, wb); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetProducts)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) < 3 || rows[1][0] != "PROD-001" || rows[2][0] != "PROD-002" {
		t.Fatalf("unexpected product rows: %v", rows)
	}
	if rows[1][8] != "yes" || rows[2][8] != "no" {
		t.Fatalf("unexpected low stock flags: %v / %v", rows[1], rows[2])
	}

	low, err := f.GetRows(SheetLowStock)
	if err != nil {
		t.Fatalf("low rows: %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("expected header + 1 low stock row, got %d", len(low))
	}

	total, err := f.GetCellValue(SheetProducts, "H5")
	if err != nil {
		t.Fatalf("total cell: %v", err)
	}
	if total != "19.00" {
		t.Fatalf("expected formatted total 19.00 got %q", total)
	}

	cats, err := f.GetRows(SheetCategories)
	if err != nil {
		t.Fatalf("category rows: %v", err)
	}
	if len(cats) != 2 || cats[1][0] != "Hardware" || cats[1][2] != "5" {
		t.Fatalf("unexpected category rows: %v", cats)
	}
}
