package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultMinStockLevel = 10
	// MaxQuantity bounds stock counts so they fit a 32-bit integer column.
	MaxQuantity = 2147483647
)

type Product struct {
	BaseModel
	SKU           string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`
	Name          string          `gorm:"type:varchar(200);not null;index" json:"name"`
	CategoryID    *uuid.UUID      `gorm:"type:varchar(36);index" json:"category_id"`
	Category      *Category       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	WarehouseID   *uuid.UUID      `gorm:"type:varchar(36);index" json:"warehouse_id"`
	Warehouse     *Warehouse      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"warehouse,omitempty"`
	Quantity      int             `gorm:"not null;default:0" json:"quantity"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	MinStockLevel int             `gorm:"not null" json:"min_stock_level"`
}

// IsLowStock reports whether quantity has fallen to or below the threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinStockLevel
}

func (p *Product) TotalValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// ProductResponse adds the derived fields for API output.
type ProductResponse struct {
	Product
	IsLowStock bool            `json:"is_low_stock"`
	TotalValue decimal.Decimal `json:"total_value"`
}

func (p *Product) ToResponse() ProductResponse {
	return ProductResponse{
		Product:    *p,
		IsLowStock: p.IsLowStock(),
		TotalValue: p.TotalValue(),
	}
}

func ProductResponses(products []Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = products[i].ToResponse()
	}
	return out
}
