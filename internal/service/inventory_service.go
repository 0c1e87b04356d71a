package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-inventory-tracker/internal/apperr"
	"go-inventory-tracker/internal/metrics"
	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InventoryService interface {
	CreateProduct(ctx context.Context, in *ProductInput, actor Actor) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in *ProductInput, actor Actor) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, actor Actor) error
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*model.Product, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	CountProducts(ctx context.Context, filter repository.ProductFilter) (int64, error)

	RecordTransaction(ctx context.Context, in *TransactionInput, actor Actor) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]model.Transaction, error)
	CountTransactions(ctx context.Context, filter repository.TransactionFilter) (int64, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
}

// ProductInput is the create/edit form for a product.
type ProductInput struct {
	SKU           string           `json:"sku" form:"sku" validate:"required,max=50"`
	Name          string           `json:"name" form:"name" validate:"required,max=200"`
	CategoryID    string           `json:"category_id" form:"category_id"`
	Quantity      int              `json:"quantity" form:"quantity" validate:"gte=0,lte=2147483647"`
	Price         *decimal.Decimal `json:"price" form:"price" validate:"required"`
	WarehouseID   string           `json:"warehouse_id" form:"warehouse_id"`
	MinStockLevel *int             `json:"min_stock_level" form:"min_stock_level" validate:"omitempty,gte=0,lte=2147483647"`
}

// TransactionInput is the stock-in / stock-out form.
type TransactionInput struct {
	ProductID string                `json:"product_id" form:"product_id" validate:"required"`
	Type      model.TransactionType `json:"type" form:"type" validate:"required,oneof=IN OUT"`
	Quantity  int                   `json:"quantity" form:"quantity" validate:"gte=1,lte=2147483647"`
	Note      string                `json:"note" form:"note"`
}

type inventoryService struct {
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	categoryRepo    repository.CategoryRepository
	warehouseRepo   repository.WarehouseRepository
	db              *gorm.DB
	events          EventPublisher
}

func NewInventoryService(
	pRepo repository.ProductRepository,
	tRepo repository.TransactionRepository,
	cRepo repository.CategoryRepository,
	wRepo repository.WarehouseRepository,
	db *gorm.DB,
	events EventPublisher,
) InventoryService {
	if events == nil {
		events = NopPublisher{}
	}
	return &inventoryService{
		productRepo:     pRepo,
		transactionRepo: tRepo,
		categoryRepo:    cRepo,
		warehouseRepo:   wRepo,
		db:              db,
		events:          events,
	}
}

// firstInvalid turns validator output into the first field error.
func firstInvalid(data interface{}) error {
	if errs := validator.ValidateStruct(data); len(errs) > 0 {
		return &apperr.ValidationError{Field: errs[0].FailedField, Message: errs[0].Message()}
	}
	return nil
}

// parseOptionalID reads an optional reference field. Blank means none.
func parseOptionalID(field, raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Invalid(field, "select a valid choice")
	}
	return &id, nil
}

// buildProduct validates the form in field order and copies it onto p.
// An omitted min_stock_level leaves p's threshold as it is.
func (s *inventoryService) buildProduct(ctx context.Context, in *ProductInput, p *model.Product) error {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if err := firstInvalid(in); err != nil {
		return err
	}
	if in.Price.IsNegative() {
		return apperr.Invalid("price", "must be at least 0")
	}
	if !in.Price.Equal(in.Price.Round(2)) {
		return apperr.Invalid("price", "must have at most 2 decimal places")
	}
	if in.Price.GreaterThanOrEqual(decimal.New(1, 8)) {
		return apperr.Invalid("price", "must have at most 8 digits before the decimal point")
	}

	categoryID, err := parseOptionalID("category_id", in.CategoryID)
	if err != nil {
		return err
	}
	if categoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Invalid("category_id", "select a valid choice")
			}
			return err
		}
	}
	warehouseID, err := parseOptionalID("warehouse_id", in.WarehouseID)
	if err != nil {
		return err
	}
	if warehouseID != nil {
		if _, err := s.warehouseRepo.FindByID(ctx, *warehouseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Invalid("warehouse_id", "select a valid choice")
			}
			return err
		}
	}

	p.SKU = in.SKU
	p.Name = in.Name
	p.CategoryID = categoryID
	p.WarehouseID = warehouseID
	p.Quantity = in.Quantity
	p.Price = *in.Price
	if in.MinStockLevel != nil {
		p.MinStockLevel = *in.MinStockLevel
	}
	return nil
}

func (s *inventoryService) CreateProduct(ctx context.Context, in *ProductInput, actor Actor) (*model.Product, error) {
	product := &model.Product{MinStockLevel: model.DefaultMinStockLevel}
	if err := s.buildProduct(ctx, in, product); err != nil {
		return nil, err
	}

	// SKU must be unique
	if existing, err := s.productRepo.FindBySKU(ctx, product.SKU); err == nil && existing != nil {
		return nil, apperr.Invalid("sku", "product with this SKU already exists")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product.CreatedBy = actor.Ref()
	product.UpdatedBy = actor.Ref()

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Invalid("sku", "product with this SKU already exists")
		}
		return nil, err
	}

	s.events.Publish("product_created", map[string]interface{}{
		"product": productPayload(product),
		"user":    actor.Payload(),
		"message": fmt.Sprintf("%s created product '%s'", actor.DisplayName(), product.Name),
	})

	return s.productRepo.FindByID(ctx, product.ID)
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, in *ProductInput, actor Actor) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "product", id)
	}

	draft := *existing
	if err := s.buildProduct(ctx, in, &draft); err != nil {
		return nil, err
	}
	// SKU is the business key and stays fixed once created.
	if draft.SKU != existing.SKU {
		return nil, apperr.Invalid("sku", "SKU cannot be changed")
	}

	var oldStock int
	var updated *model.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock so a concurrent ledger write is not overwritten.
		p, err := s.productRepo.FindForUpdate(tx, id)
		if err != nil {
			return wrapNotFound(err, "product", id)
		}
		oldStock = p.Quantity

		p.Name = draft.Name
		p.CategoryID = draft.CategoryID
		p.WarehouseID = draft.WarehouseID
		p.Quantity = draft.Quantity
		p.Price = draft.Price
		if in.MinStockLevel != nil {
			p.MinStockLevel = *in.MinStockLevel
		}
		p.UpdatedBy = actor.Ref()
		updated = p
		return s.productRepo.Update(tx, p)
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish("product_updated", map[string]interface{}{
		"product":   productPayload(updated),
		"old_stock": oldStock,
		"user":      actor.Payload(),
		"message":   fmt.Sprintf("%s updated product '%s'", actor.DisplayName(), updated.Name),
	})

	return s.productRepo.FindByID(ctx, id)
}

// DeleteProduct removes the product together with its ledger entries.
func (s *inventoryService) DeleteProduct(ctx context.Context, id uuid.UUID, actor Actor) error {
	var deleted *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.FindForUpdate(tx, id)
		if err != nil {
			return wrapNotFound(err, "product", id)
		}
		deleted = product
		return s.productRepo.Delete(tx, id)
	})
	if err != nil {
		return err
	}

	s.events.Publish("product_deleted", map[string]interface{}{
		"product": productPayload(deleted),
		"user":    actor.Payload(),
		"message": fmt.Sprintf("%s deleted product '%s'", actor.DisplayName(), deleted.Name),
	})
	return nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "product", id)
	}
	return p, nil
}

func (s *inventoryService) GetProductBySKU(ctx context.Context, sku string) (*model.Product, error) {
	p, err := s.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, wrapNotFound(err, "product", sku)
	}
	return p, nil
}

func (s *inventoryService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx, filter)
}

func (s *inventoryService) CountProducts(ctx context.Context, filter repository.ProductFilter) (int64, error) {
	return s.productRepo.CountMatching(ctx, filter)
}

// RecordTransaction applies a stock movement. The product row is locked, the
// new quantity written, and the ledger entry appended in one db transaction;
// a rejected OUT leaves both untouched.
func (s *inventoryService) RecordTransaction(ctx context.Context, in *TransactionInput, actor Actor) (*model.Transaction, error) {
	in.Type = model.TransactionType(strings.ToUpper(strings.TrimSpace(string(in.Type))))
	if err := firstInvalid(in); err != nil {
		metrics.LedgerRejected(string(in.Type), "validation")
		return nil, err
	}
	productID, err := uuid.Parse(strings.TrimSpace(in.ProductID))
	if err != nil {
		metrics.LedgerRejected(string(in.Type), "validation")
		return nil, apperr.Invalid("product_id", "select a valid choice")
	}

	entry := &model.Transaction{
		ProductID: productID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Note:      strings.TrimSpace(in.Note),
	}
	if actor.ID != uuid.Nil {
		uid := actor.ID
		entry.UserID = &uid
	}
	entry.CreatedBy = actor.Ref()
	entry.UpdatedBy = actor.Ref()

	var product *model.Product
	var newStock int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the product row
		p, err := s.productRepo.FindForUpdate(tx, productID)
		if err != nil {
			return wrapNotFound(err, "product", productID)
		}
		product = p

		// 2. Compute the new quantity
		newStock = p.Quantity
		switch entry.Type {
		case model.TxIn:
			if entry.Quantity > model.MaxQuantity-p.Quantity {
				return apperr.Invalid("quantity", "stock of %s cannot exceed %d", p.SKU, model.MaxQuantity)
			}
			newStock += entry.Quantity
		case model.TxOut:
			if p.Quantity < entry.Quantity {
				return &apperr.InsufficientStockError{SKU: p.SKU, Available: p.Quantity, Requested: entry.Quantity}
			}
			newStock -= entry.Quantity
		}

		// 3. Write the quantity, then append the ledger entry
		if err := s.productRepo.UpdateStock(tx, p.ID, newStock, actor.Ref()); err != nil {
			return err
		}
		return s.transactionRepo.Create(tx, entry)
	})
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInsufficientStock):
			metrics.LedgerRejected(string(entry.Type), "insufficient_stock")
		case errors.Is(err, apperr.ErrNotFound):
			metrics.LedgerRejected(string(entry.Type), "not_found")
		case errors.Is(err, apperr.ErrValidation):
			metrics.LedgerRejected(string(entry.Type), "validation")
		default:
			metrics.LedgerRejected(string(entry.Type), "error")
		}
		return nil, err
	}
	metrics.LedgerRecorded(string(entry.Type), entry.Quantity)

	verb := "added"
	if entry.Type == model.TxOut {
		verb = "removed"
	}
	s.events.Publish("transaction_created", map[string]interface{}{
		"transaction": map[string]interface{}{
			"id":         entry.ID,
			"type":       entry.Type,
			"quantity":   entry.Quantity,
			"product_id": product.ID,
			"product": map[string]interface{}{
				"name": product.Name,
				"sku":  product.SKU,
			},
			"new_stock": newStock,
		},
		"user":    actor.Payload(),
		"message": fmt.Sprintf("%s %s %d units of '%s' (%s)", actor.DisplayName(), verb, entry.Quantity, product.Name, entry.Type),
	})

	return s.transactionRepo.FindByID(ctx, entry.ID)
}

func (s *inventoryService) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]model.Transaction, error) {
	return s.transactionRepo.FindAll(ctx, filter)
}

func (s *inventoryService) CountTransactions(ctx context.Context, filter repository.TransactionFilter) (int64, error) {
	return s.transactionRepo.CountMatching(ctx, filter)
}

func (s *inventoryService) GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	tx, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "transaction", id)
	}
	return tx, nil
}

func productPayload(p *model.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":       p.ID,
		"sku":      p.SKU,
		"name":     p.Name,
		"quantity": p.Quantity,
		"price":    p.Price,
	}
}

func wrapNotFound(err error, entity string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity, id)
	}
	return err
}
