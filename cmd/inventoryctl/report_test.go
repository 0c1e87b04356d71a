package main

import (
	"bytes"
	"strings"
	"testing"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/service"

	"github.com/shopspring/decimal"
)

func TestRenderLowStock(t *testing.T) {
	var buf bytes.Buffer
	renderLowStock(&buf, []model.Product{
		{SKU: "PROD-001", Name: "Widget", Quantity: 2, MinStockLevel: 10, Category: &model.Category{Name: "Tools"}},
	})
	out := buf.String()
	for _, want := range []string{"PROD-001", "Widget", "Tools"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderValue(t *testing.T) {
	var buf bytes.Buffer
	renderValue(&buf, &service.Report{
		TotalValue: decimal.RequireFromString("19"),
		Categories: []service.CategorySummary{
			{Name: "C", ProductCount: 2, TotalProducts: 8, TotalValue: decimal.RequireFromString("19")},
		},
	})
	if !strings.Contains(buf.String(), "19.00") {
		t.Fatalf("value not rendered with cents:\n%s", buf.String())
	}
}
