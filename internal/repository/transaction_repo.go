package repository

import (
	"context"
	"strings"
	"time"

	"go-inventory-tracker/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionFilter composes with AND. Zero values are ignored.
type TransactionFilter struct {
	ProductID *uuid.UUID
	Type      model.TransactionType
	Search    string // product SKU or name, case-insensitive substring
	Limit     int
	Page      int // 1-based; takes precedence over Limit
}

type TransactionRepository interface {
	// Create appends a ledger entry on tx.
	Create(tx *gorm.DB, transaction *model.Transaction) error
	FindAll(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	// CountMatching counts the rows FindAll would return without paging.
	CountMatching(ctx context.Context, filter TransactionFilter) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
}

// StockMovementData is one day of chart data.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) Create(tx *gorm.DB, transaction *model.Transaction) error {
	return tx.Omit(clause.Associations).Create(transaction).Error
}

func (r *transactionRepo) FindAll(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error) {
	var transactions []model.Transaction
	query := r.filtered(ctx, filter).Preload("Product").Preload("User")
	switch {
	case filter.Page > 0:
		query = query.Offset(offset(filter.Page)).Limit(PageSize)
	case filter.Limit > 0:
		query = query.Limit(filter.Limit)
	}
	err := query.Order("created_at DESC").Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) CountMatching(ctx context.Context, filter TransactionFilter) (int64, error) {
	var n int64
	err := r.filtered(ctx, filter).Count(&n).Error
	return n, err
}

func (r *transactionRepo) filtered(ctx context.Context, filter TransactionFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.Transaction{})
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("product_id IN (?)",
			r.db.Model(&model.Product{}).Select("id").Where("LOWER(sku) LIKE ? OR LOWER(name) LIKE ?", like, like))
	}
	return query
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.WithContext(ctx).Preload("Product").Preload("User").First(&transaction, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepo) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("product_id = ?", productID).Count(&n).Error
	return n, err
}

// GetStockMovement aggregates IN/OUT quantities per day. Days are grouped in Go
// so the query stays portable across postgres, mysql and sqlite.
func (r *transactionRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	var rows []model.Transaction
	err := r.db.WithContext(ctx).
		Select("type", "quantity", "created_at").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	results := []StockMovementData{}
	index := map[string]int{}
	for _, tx := range rows {
		day := tx.CreatedAt.UTC().Format("2006-01-02")
		i, ok := index[day]
		if !ok {
			results = append(results, StockMovementData{Date: day})
			i = len(results) - 1
			index[day] = i
		}
		if tx.Type == model.TxIn {
			results[i].Inbound += tx.Quantity
		} else {
			results[i].Outbound += tx.Quantity
		}
	}
	return results, nil
}
