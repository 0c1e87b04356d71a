package handler

import (
	"go-inventory-tracker/internal/middleware"
	"go-inventory-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

// GET /categories
func (h *CatalogHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(categories)
}

// POST /categories
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var input service.CategoryInput
	if err := bind(c, &input); err != nil {
		return err
	}
	category, err := h.service.CreateCategory(c.UserContext(), &input, middleware.CurrentActor(c))
	if err != nil {
		return withForm(err, input)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Category created", "data": category})
}

// POST /categories/:id
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "category")
	if err != nil {
		return err
	}
	var input service.CategoryInput
	if err := bind(c, &input); err != nil {
		return err
	}
	category, err := h.service.UpdateCategory(c.UserContext(), id, &input, middleware.CurrentActor(c))
	if err != nil {
		return withForm(err, input)
	}
	return c.JSON(fiber.Map{"message": "Category updated", "data": category})
}

// DeleteCategory keeps the category's products, uncategorized.
// POST /categories/:id/delete
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "category")
	if err != nil {
		return err
	}
	if err := h.service.DeleteCategory(c.UserContext(), id, middleware.CurrentActor(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}

// GET /warehouses
func (h *CatalogHandler) GetWarehouses(c *fiber.Ctx) error {
	warehouses, err := h.service.ListWarehouses(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(warehouses)
}

// POST /warehouses
func (h *CatalogHandler) CreateWarehouse(c *fiber.Ctx) error {
	var input service.WarehouseInput
	if err := bind(c, &input); err != nil {
		return err
	}
	warehouse, err := h.service.CreateWarehouse(c.UserContext(), &input, middleware.CurrentActor(c))
	if err != nil {
		return withForm(err, input)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Warehouse created", "data": warehouse})
}

// POST /warehouses/:id
func (h *CatalogHandler) UpdateWarehouse(c *fiber.Ctx) error {
	id, err := parseID(c, "warehouse")
	if err != nil {
		return err
	}
	var input service.WarehouseInput
	if err := bind(c, &input); err != nil {
		return err
	}
	warehouse, err := h.service.UpdateWarehouse(c.UserContext(), id, &input, middleware.CurrentActor(c))
	if err != nil {
		return withForm(err, input)
	}
	return c.JSON(fiber.Map{"message": "Warehouse updated", "data": warehouse})
}

// POST /warehouses/:id/delete
func (h *CatalogHandler) DeleteWarehouse(c *fiber.Ctx) error {
	id, err := parseID(c, "warehouse")
	if err != nil {
		return err
	}
	if err := h.service.DeleteWarehouse(c.UserContext(), id, middleware.CurrentActor(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Warehouse deleted"})
}
