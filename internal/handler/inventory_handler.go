package handler

import (
	"strings"

	"go-inventory-tracker/internal/apperr"
	"go-inventory-tracker/internal/middleware"
	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	service service.InventoryService
	catalog service.CatalogService
}

func NewInventoryHandler(s service.InventoryService, catalog service.CatalogService) *InventoryHandler {
	return &InventoryHandler{service: s, catalog: catalog}
}

// GetProducts lists one page of products.
// GET /products?search=&category=&warehouse=&page=
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	search := strings.TrimSpace(c.Query("search"))
	categoryFilter := strings.TrimSpace(c.Query("category"))
	warehouseFilter := strings.TrimSpace(c.Query("warehouse"))

	filter := repository.ProductFilter{Search: search, Page: pageParam(c)}
	if categoryFilter != "" {
		id, err := uuid.Parse(categoryFilter)
		if err != nil {
			return apperr.Invalid("category", "select a valid choice")
		}
		filter.CategoryID = &id
	}
	if warehouseFilter != "" {
		id, err := uuid.Parse(warehouseFilter)
		if err != nil {
			return apperr.Invalid("warehouse", "select a valid choice")
		}
		filter.WarehouseID = &id
	}

	products, err := h.service.ListProducts(c.UserContext(), filter)
	if err != nil {
		return err
	}
	total, err := h.service.CountProducts(c.UserContext(), filter)
	if err != nil {
		return err
	}
	categories, err := h.catalog.ListCategories(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"products":         model.ProductResponses(products),
		"categories":       categories,
		"search_query":     search,
		"category_filter":  categoryFilter,
		"warehouse_filter": warehouseFilter,
		"page":             filter.Page,
		"page_size":        repository.PageSize,
		"total":            total,
	})
}

// pageParam reads ?page=, treating anything below 1 as the first page.
func pageParam(c *fiber.Ctx) int {
	if page := c.QueryInt("page", 1); page > 1 {
		return page
	}
	return 1
}

// GetProduct returns one product.
// GET /products/:id
func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "product")
	if err != nil {
		return err
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(product.ToResponse())
}

// CreateProduct
// POST /products
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var input service.ProductInput
	if err := bind(c, &input); err != nil {
		return err
	}

	product, err := h.service.CreateProduct(c.UserContext(), &input, middleware.CurrentActor(c))
	if err != nil {
		return withForm(err, input)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created successfully!", "data": product.ToResponse()})
}

// UpdateProduct
// POST /products/:id
func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "product")
	if err != nil {
		return err
	}

	var input service.ProductInput
	if err := bind(c, &input); err != nil {
		return err
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), id, &input, middleware.CurrentActor(c))
	if err != nil {
		return withForm(err, input)
	}

	return c.JSON(fiber.Map{"message": "Product updated successfully!", "data": updated.ToResponse()})
}

// DeleteProduct also removes the product's transactions.
// POST /products/:id/delete
func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "product")
	if err != nil {
		return err
	}
	if err := h.service.DeleteProduct(c.UserContext(), id, middleware.CurrentActor(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully!"})
}

// GetTransactions lists ledger entries, newest first. ?limit= returns that
// many entries without paging.
// GET /transactions?product=&type=&search=&page=&limit=
func (h *InventoryHandler) GetTransactions(c *fiber.Ctx) error {
	search := strings.TrimSpace(c.Query("search"))
	filter := repository.TransactionFilter{Search: search}
	if raw := strings.TrimSpace(c.Query("product")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apperr.Invalid("product", "select a valid choice")
		}
		filter.ProductID = &id
	}
	if raw := strings.ToUpper(strings.TrimSpace(c.Query("type"))); raw != "" {
		filter.Type = model.TransactionType(raw)
		if !filter.Type.Valid() {
			return apperr.Invalid("type", "must be one of: IN OUT")
		}
	}
	if limit := c.QueryInt("limit", 0); limit > 0 {
		filter.Limit = limit
	} else {
		filter.Page = pageParam(c)
	}

	transactions, err := h.service.ListTransactions(c.UserContext(), filter)
	if err != nil {
		return err
	}
	total, err := h.service.CountTransactions(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"transactions": transactions,
		"search_query": search,
		"page":         filter.Page,
		"page_size":    repository.PageSize,
		"total":        total,
	})
}

// GET /transactions/:id
func (h *InventoryHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := parseID(c, "transaction")
	if err != nil {
		return err
	}
	tx, err := h.service.GetTransaction(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(tx)
}

// CreateTransaction records a stock movement as the logged-in user.
// POST /transactions
func (h *InventoryHandler) CreateTransaction(c *fiber.Ctx) error {
	var input service.TransactionInput
	if err := bind(c, &input); err != nil {
		return err
	}

	tx, err := h.service.RecordTransaction(c.UserContext(), &input, middleware.CurrentActor(c))
	if err != nil {
		return withForm(err, input)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Transaction recorded successfully! Product quantity updated.",
		"data":    tx,
	})
}
