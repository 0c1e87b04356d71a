package service

import (
	"context"
	"io"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/report"
	"go-inventory-tracker/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UncategorizedName labels the summary row for products without a category.
const UncategorizedName = "Uncategorized"

// ReportService is read-only. Monetary sums use decimal arithmetic end to end.
type ReportService interface {
	LowStockProducts(ctx context.Context) ([]model.Product, error)
	TotalInventoryValue(ctx context.Context) (decimal.Decimal, error)
	CategorySummary(ctx context.Context) ([]CategorySummary, error)
	Build(ctx context.Context) (*Report, error)
	ExportXLSX(ctx context.Context, w io.Writer) error
}

type CategorySummary struct {
	CategoryID    *uuid.UUID      `json:"category_id"`
	Name          string          `json:"name"`
	ProductCount  int             `json:"product_count"`
	TotalProducts int             `json:"total_products"` // sum of quantities
	TotalValue    decimal.Decimal `json:"total_value"`
}

type Report struct {
	Products   []model.ProductResponse `json:"products"`
	TotalValue decimal.Decimal         `json:"total_value"`
	LowStock   []model.ProductResponse `json:"low_stock"`
	Categories []CategorySummary       `json:"categories"`
}

type reportService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

func NewReportService(pRepo repository.ProductRepository, cRepo repository.CategoryRepository) ReportService {
	return &reportService{productRepo: pRepo, categoryRepo: cRepo}
}

func (s *reportService) LowStockProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx, repository.ProductFilter{LowStock: true})
}

func (s *reportService) TotalInventoryValue(ctx context.Context) (decimal.Decimal, error) {
	products, err := s.productRepo.FindAll(ctx, repository.ProductFilter{})
	if err != nil {
		return decimal.Zero, err
	}
	return sumValue(products), nil
}

func (s *reportService) CategorySummary(ctx context.Context) ([]CategorySummary, error) {
	products, err := s.productRepo.FindAll(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(categories, products), nil
}

func (s *reportService) Build(ctx context.Context) (*Report, error) {
	products, err := s.productRepo.FindAll(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	low := []model.Product{}
	for _, p := range products {
		if p.IsLowStock() {
			low = append(low, p)
		}
	}

	return &Report{
		Products:   model.ProductResponses(products),
		TotalValue: sumValue(products),
		LowStock:   model.ProductResponses(low),
		Categories: summarize(categories, products),
	}, nil
}

func (s *reportService) ExportXLSX(ctx context.Context, w io.Writer) error {
	r, err := s.Build(ctx)
	if err != nil {
		return err
	}

	wb := report.Workbook{TotalValue: r.TotalValue}
	for _, p := range r.Products {
		wb.Products = append(wb.Products, toReportRow(p))
	}
	for _, p := range r.LowStock {
		wb.LowStock = append(wb.LowStock, toReportRow(p))
	}
	for _, c := range r.Categories {
		wb.Categories = append(wb.Categories, report.CategoryRow{
			Name:          c.Name,
			ProductCount:  c.ProductCount,
			TotalQuantity: c.TotalProducts,
			TotalValue:    c.TotalValue,
		})
	}
	return report.WriteXLSX(w, wb)
}

func toReportRow(p model.ProductResponse) report.ProductRow {
	row := report.ProductRow{
		SKU:           p.SKU,
		Name:          p.Name,
		Quantity:      p.Quantity,
		MinStockLevel: p.MinStockLevel,
		Price:         p.Price,
		TotalValue:    p.TotalValue,
		LowStock:      p.IsLowStock,
	}
	if p.Category != nil {
		row.Category = p.Category.Name
	}
	if p.Warehouse != nil {
		row.Warehouse = p.Warehouse.Name
	}
	return row
}

func sumValue(products []model.Product) decimal.Decimal {
	total := decimal.Zero
	for i := range products {
		total = total.Add(products[i].TotalValue())
	}
	return total
}

// summarize returns one row per category in name order, including empty ones,
// followed by an Uncategorized row when any product has no category.
func summarize(categories []model.Category, products []model.Product) []CategorySummary {
	rows := make([]CategorySummary, len(categories))
	index := make(map[uuid.UUID]int, len(categories))
	for i, c := range categories {
		id := c.ID
		rows[i] = CategorySummary{CategoryID: &id, Name: c.Name, TotalValue: decimal.Zero}
		index[c.ID] = i
	}

	var uncategorized *CategorySummary
	for i := range products {
		p := &products[i]
		var row *CategorySummary
		if p.CategoryID != nil {
			if j, ok := index[*p.CategoryID]; ok {
				row = &rows[j]
			}
		}
		if row == nil {
			if uncategorized == nil {
				uncategorized = &CategorySummary{Name: UncategorizedName, TotalValue: decimal.Zero}
			}
			row = uncategorized
		}
		row.ProductCount++
		row.TotalProducts += p.Quantity
		row.TotalValue = row.TotalValue.Add(p.TotalValue())
	}

	if uncategorized != nil {
		rows = append(rows, *uncategorized)
	}
	return rows
}
