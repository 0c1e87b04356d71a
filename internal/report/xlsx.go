// Package report renders inventory reports as spreadsheets.
package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetProducts   = "Products"
	SheetLowStock   = "Low Stock"
	SheetCategories = "Categories"
)

type ProductRow struct {
	SKU           string
	Name          string
	Category      string
	Warehouse     string
	Quantity      int
	MinStockLevel int
	Price         decimal.Decimal
	TotalValue    decimal.Decimal
	LowStock      bool
}

type CategoryRow struct {
	Name          string
	ProductCount  int
	TotalQuantity int
	TotalValue    decimal.Decimal
}

type Workbook struct {
	Products   []ProductRow
	LowStock   []ProductRow
	Categories []CategoryRow
	TotalValue decimal.Decimal
}

var productHeader = []interface{}{
	"sku", "name", "category", "warehouse", "quantity", "min_stock_level", "price", "total_value", "low_stock",
}

// WriteXLSX writes the three report sheets. Money cells carry a 0.00 format;
// the values are rounded to cents before conversion.
func WriteXLSX(w io.Writer, wb Workbook) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return err
	}

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetProducts); err != nil {
		return err
	}
	if err := writeProducts(f, SheetProducts, wb.Products, money); err != nil {
		return err
	}
	totalRow := len(wb.Products) + 3
	if err := f.SetCellValue(SheetProducts, cell(7, totalRow), "total"); err != nil {
		return err
	}
	if err := setMoney(f, SheetProducts, cell(8, totalRow), wb.TotalValue, money); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetLowStock); err != nil {
		return err
	}
	if err := writeProducts(f, SheetLowStock, wb.LowStock, money); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetCategories); err != nil {
		return err
	}
	header := []interface{}{"category", "products", "total_quantity", "total_value"}
	if err := f.SetSheetRow(SheetCategories, "A1", &header); err != nil {
		return err
	}
	for i, c := range wb.Categories {
		row := i + 2
		values := []interface{}{c.Name, c.ProductCount, c.TotalQuantity}
		if err := f.SetSheetRow(SheetCategories, cell(1, row), &values); err != nil {
			return err
		}
		if err := setMoney(f, SheetCategories, cell(4, row), c.TotalValue, money); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeProducts(f *excelize.File, sheet string, rows []ProductRow, money int) error {
	if err := f.SetSheetRow(sheet, "A1", &productHeader); err != nil {
		return err
	}
	for i, p := range rows {
		row := i + 2
		values := []interface{}{
			p.SKU,
			p.Name,
			p.Category,
			p.Warehouse,
			p.Quantity,
			p.MinStockLevel,
		}
		if err := f.SetSheetRow(sheet, cell(1, row), &values); err != nil {
			return err
		}
		if err := setMoney(f, sheet, cell(7, row), p.Price, money); err != nil {
			return err
		}
		if err := setMoney(f, sheet, cell(8, row), p.TotalValue, money); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell(9, row), map[bool]string{true: "yes", false: "no"}[p.LowStock]); err != nil {
			return err
		}
	}
	return nil
}

func setMoney(f *excelize.File, sheet, axis string, v decimal.Decimal, style int) error {
	if err := f.SetCellFloat(sheet, axis, v.Round(2).InexactFloat64(), 2, 64); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, axis, axis, style)
}

func cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(fmt.Sprintf("report: bad cell %d,%d: %v", col, row, err))
	}
	return name
}
