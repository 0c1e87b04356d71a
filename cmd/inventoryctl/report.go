package main

import (
	"io"
	"os"
	"strconv"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/service"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print inventory reports",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "low-stock",
			Short: "Products at or below their minimum stock level",
			RunE: func(cmd *cobra.Command, args []string) error {
				products, err := a.reports.LowStockProducts(cmd.Context())
				if err != nil {
					return err
				}
				renderLowStock(cmd.OutOrStdout(), products)
				return nil
			},
		},
		&cobra.Command{
			Use:   "value",
			Short: "Inventory value per category and in total",
			RunE: func(cmd *cobra.Command, args []string) error {
				report, err := a.reports.Build(cmd.Context())
				if err != nil {
					return err
				}
				renderValue(cmd.OutOrStdout(), report)
				return nil
			},
		},
		&cobra.Command{
			Use:   "export <file.xlsx>",
			Short: "Write the full report as an Excel workbook",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				if err := a.reports.ExportXLSX(cmd.Context(), f); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			},
		},
	)
	return cmd
}

func renderLowStock(w io.Writer, products []model.Product) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"SKU", "Name", "Category", "Quantity", "Min"})
	for _, p := range products {
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		t.AppendRow(table.Row{p.SKU, p.Name, category, p.Quantity, p.MinStockLevel})
	}
	t.AppendFooter(table.Row{"", "", "", "Count", strconv.Itoa(len(products))})
	t.Render()
}

func renderValue(w io.Writer, report *service.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Category", "Products", "Units", "Value"})
	for _, c := range report.Categories {
		t.AppendRow(table.Row{c.Name, c.ProductCount, c.TotalProducts, c.TotalValue.StringFixed(2)})
	}
	t.AppendFooter(table.Row{"Total", "", "", report.TotalValue.StringFixed(2)})
	t.Render()
}
