package service

import (
	"context"
	"sync"
	"testing"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/testutil"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type recordedEvent struct {
	action  string
	payload map[string]interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakePublisher) Publish(action string, payload map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{action: action, payload: payload})
}

func (f *fakePublisher) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.action
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	events    *fakePublisher
	inventory InventoryService
	catalog   CatalogService
	reports   ReportService
	dashboard DashboardService
	users     UserService
	txRepo    repository.TransactionRepository
	actor     Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	events := &fakePublisher{}

	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	warehouseRepo := repository.NewWarehouseRepo(db)
	userRepo := repository.NewUserRepo(db)

	reports := NewReportService(productRepo, categoryRepo)
	clerk := testutil.NewUser(t, db, "clerk", "secret123")

	return &fixture{
		db:        db,
		events:    events,
		inventory: NewInventoryService(productRepo, txRepo, categoryRepo, warehouseRepo, db, events),
		catalog:   NewCatalogService(categoryRepo, warehouseRepo, db, events),
		reports:   reports,
		dashboard: NewDashboardService(productRepo, txRepo, reports),
		users:     NewUserService(userRepo, db),
		txRepo:    txRepo,
		actor:     Actor{ID: clerk.ID, Username: clerk.Username, Name: clerk.FullName},
	}
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(n int) *int { return &n }

func (f *fixture) product(t *testing.T, sku string, qty int, p string, categoryID string) *model.Product {
	t.Helper()
	product, err := f.inventory.CreateProduct(context.Background(), &ProductInput{
		SKU:        sku,
		Name:       "Product " + sku,
		CategoryID: categoryID,
		Quantity:   qty,
		Price:      price(p),
	}, f.actor)
	if err != nil {
		t.Fatalf("create product %s: %v", sku, err)
	}
	return product
}

func (f *fixture) category(t *testing.T, name string) *model.Category {
	t.Helper()
	c, err := f.catalog.CreateCategory(context.Background(), &CategoryInput{Name: name}, f.actor)
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return c
}

func (f *fixture) record(t *testing.T, productID string, txType model.TransactionType, qty int) *model.Transaction {
	t.Helper()
	tx, err := f.inventory.RecordTransaction(context.Background(), &TransactionInput{
		ProductID: productID,
		Type:      txType,
		Quantity:  qty,
	}, f.actor)
	if err != nil {
		t.Fatalf("record %s %d: %v", txType, qty, err)
	}
	return tx
}
