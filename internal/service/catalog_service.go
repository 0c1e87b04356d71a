package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-inventory-tracker/internal/apperr"
	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogService manages categories and warehouses. Deleting either one
// clears the reference on its products instead of deleting them.
type CatalogService interface {
	CreateCategory(ctx context.Context, in *CategoryInput, actor Actor) (*model.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, in *CategoryInput, actor Actor) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID, actor Actor) error
	GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)

	CreateWarehouse(ctx context.Context, in *WarehouseInput, actor Actor) (*model.Warehouse, error)
	UpdateWarehouse(ctx context.Context, id uuid.UUID, in *WarehouseInput, actor Actor) (*model.Warehouse, error)
	DeleteWarehouse(ctx context.Context, id uuid.UUID, actor Actor) error
	GetWarehouse(ctx context.Context, id uuid.UUID) (*model.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]model.Warehouse, error)
}

type CategoryInput struct {
	Name        string `json:"name" form:"name" validate:"required,max=100"`
	Description string `json:"description" form:"description"`
}

type WarehouseInput struct {
	Name     string `json:"name" form:"name" validate:"required,max=100"`
	Location string `json:"location" form:"location" validate:"max=200"`
}

type catalogService struct {
	categoryRepo  repository.CategoryRepository
	warehouseRepo repository.WarehouseRepository
	db            *gorm.DB
	events        EventPublisher
}

func NewCatalogService(cRepo repository.CategoryRepository, wRepo repository.WarehouseRepository, db *gorm.DB, events EventPublisher) CatalogService {
	if events == nil {
		events = NopPublisher{}
	}
	return &catalogService{categoryRepo: cRepo, warehouseRepo: wRepo, db: db, events: events}
}

func (s *catalogService) checkCategoryName(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.categoryRepo.FindByName(ctx, name)
	if err == nil && existing.ID != self {
		return apperr.Invalid("name", "category with this name already exists")
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *catalogService) CreateCategory(ctx context.Context, in *CategoryInput, actor Actor) (*model.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := firstInvalid(in); err != nil {
		return nil, err
	}
	if err := s.checkCategoryName(ctx, in.Name, uuid.Nil); err != nil {
		return nil, err
	}

	category := &model.Category{Name: in.Name, Description: in.Description}
	category.CreatedBy = actor.Ref()
	category.UpdatedBy = actor.Ref()
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Invalid("name", "category with this name already exists")
		}
		return nil, err
	}

	s.publishCategory("category_created", category, actor)
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, in *CategoryInput, actor Actor) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "category", id)
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := firstInvalid(in); err != nil {
		return nil, err
	}
	if err := s.checkCategoryName(ctx, in.Name, id); err != nil {
		return nil, err
	}

	category.Name = in.Name
	category.Description = in.Description
	category.UpdatedBy = actor.Ref()
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Invalid("name", "category with this name already exists")
		}
		return nil, err
	}

	s.publishCategory("category_updated", category, actor)
	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID, actor Actor) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return wrapNotFound(err, "category", id)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return wrapNotFound(s.categoryRepo.Delete(tx, id), "category", id)
	})
	if err != nil {
		return err
	}

	s.publishCategory("category_deleted", category, actor)
	return nil
}

func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "category", id)
	}
	return c, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.FindAll(ctx)
}

func (s *catalogService) CreateWarehouse(ctx context.Context, in *WarehouseInput, actor Actor) (*model.Warehouse, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := firstInvalid(in); err != nil {
		return nil, err
	}

	warehouse := &model.Warehouse{Name: in.Name, Location: strings.TrimSpace(in.Location)}
	warehouse.CreatedBy = actor.Ref()
	warehouse.UpdatedBy = actor.Ref()
	if err := s.warehouseRepo.Create(ctx, warehouse); err != nil {
		return nil, err
	}

	s.publishWarehouse("warehouse_created", warehouse, actor)
	return warehouse, nil
}

func (s *catalogService) UpdateWarehouse(ctx context.Context, id uuid.UUID, in *WarehouseInput, actor Actor) (*model.Warehouse, error) {
	warehouse, err := s.warehouseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "warehouse", id)
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := firstInvalid(in); err != nil {
		return nil, err
	}

	warehouse.Name = in.Name
	warehouse.Location = strings.TrimSpace(in.Location)
	warehouse.UpdatedBy = actor.Ref()
	if err := s.warehouseRepo.Update(ctx, warehouse); err != nil {
		return nil, err
	}

	s.publishWarehouse("warehouse_updated", warehouse, actor)
	return warehouse, nil
}

func (s *catalogService) DeleteWarehouse(ctx context.Context, id uuid.UUID, actor Actor) error {
	warehouse, err := s.warehouseRepo.FindByID(ctx, id)
	if err != nil {
		return wrapNotFound(err, "warehouse", id)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return wrapNotFound(s.warehouseRepo.Delete(tx, id), "warehouse", id)
	})
	if err != nil {
		return err
	}

	s.publishWarehouse("warehouse_deleted", warehouse, actor)
	return nil
}

func (s *catalogService) GetWarehouse(ctx context.Context, id uuid.UUID) (*model.Warehouse, error) {
	w, err := s.warehouseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "warehouse", id)
	}
	return w, nil
}

func (s *catalogService) ListWarehouses(ctx context.Context) ([]model.Warehouse, error) {
	return s.warehouseRepo.FindAll(ctx)
}

func (s *catalogService) publishCategory(action string, c *model.Category, actor Actor) {
	s.events.Publish(action, map[string]interface{}{
		"category": map[string]interface{}{"id": c.ID, "name": c.Name},
		"user":     actor.Payload(),
		"message":  fmt.Sprintf("%s: %s '%s'", actor.DisplayName(), strings.ReplaceAll(action, "_", " "), c.Name),
	})
}

func (s *catalogService) publishWarehouse(action string, w *model.Warehouse, actor Actor) {
	s.events.Publish(action, map[string]interface{}{
		"warehouse": map[string]interface{}{"id": w.ID, "name": w.Name, "location": w.Location},
		"user":      actor.Payload(),
		"message":   fmt.Sprintf("%s: %s '%s'", actor.DisplayName(), strings.ReplaceAll(action, "_", " "), w.Name),
	})
}
