package service

import (
	"context"
	"time"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"

	"github.com/shopspring/decimal"
)

const recentTransactionsLimit = 5

type DashboardService interface {
	GetDashboard(ctx context.Context) (*Dashboard, error)
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
}

type Dashboard struct {
	TotalProducts       int64                   `json:"total_products"`
	LowStockCount       int                     `json:"low_stock_count"`
	LowStockProducts    []model.ProductResponse `json:"low_stock_products"`
	TotalInventoryValue decimal.Decimal         `json:"total_inventory_value"`
	RecentTransactions  []model.Transaction     `json:"recent_transactions"`
}

type dashboardService struct {
	productRepo repository.ProductRepository
	txRepo      repository.TransactionRepository
	reports     ReportService
}

func NewDashboardService(pRepo repository.ProductRepository, txRepo repository.TransactionRepository, reports ReportService) DashboardService {
	return &dashboardService{productRepo: pRepo, txRepo: txRepo, reports: reports}
}

func (s *dashboardService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	total, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	low, err := s.reports.LowStockProducts(ctx)
	if err != nil {
		return nil, err
	}
	value, err := s.reports.TotalInventoryValue(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.txRepo.FindAll(ctx, repository.TransactionFilter{Limit: recentTransactionsLimit})
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TotalProducts:       total,
		LowStockCount:       len(low),
		LowStockProducts:    model.ProductResponses(low),
		TotalInventoryValue: value,
		RecentTransactions:  recent,
	}, nil
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.txRepo.GetStockMovement(ctx, startDate, endDate)
}
