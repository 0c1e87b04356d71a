// Package server wires handlers and middleware into the fiber app.
package server

import (
	"go-inventory-tracker/internal/handler"
	"go-inventory-tracker/internal/middleware"
	"go-inventory-tracker/internal/service"
	"go-inventory-tracker/internal/ws"
	"go-inventory-tracker/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Inventory service.InventoryService
	Catalog   service.CatalogService
	Reports   service.ReportService
	Dashboard service.DashboardService
	Auth      service.AuthService
	Users     service.UserService
}

type Options struct {
	AppName      string
	SecureCookie bool
	Metrics      bool
	AccessLog    bool
}

// New builds the app. hub may be nil, in which case /ws is not served.
func New(svc Services, hub *ws.Hub, log *logger.Logger, opts Options) *fiber.App {
	if log == nil {
		log = logger.Nop()
	}
	if opts.AppName == "" {
		opts.AppName = "Inventory Tracker"
	}

	app := fiber.New(fiber.Config{
		AppName:      opts.AppName,
		ErrorHandler: handler.ErrorHandler(log),
	})

	if opts.AccessLog {
		app.Use(fiberlogger.New())
	}
	app.Use(recover.New())
	app.Use(cors.New())

	invHandler := handler.NewInventoryHandler(svc.Inventory, svc.Catalog)
	catHandler := handler.NewCatalogHandler(svc.Catalog)
	dashHandler := handler.NewDashboardHandler(svc.Dashboard)
	reportHandler := handler.NewReportHandler(svc.Reports)
	authHandler := handler.NewAuthHandler(svc.Auth, opts.SecureCookie)
	userHandler := handler.NewUserHandler(svc.Users)

	// ============ PUBLIC ROUTES ============
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if opts.Metrics {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}
	app.Get(middleware.LoginPath, authHandler.LoginPage)
	app.Post(middleware.LoginPath, authHandler.Login)

	// ============ PROTECTED ROUTES ============
	protected := app.Group("", middleware.RequireAuth(svc.Auth))

	protected.Post("/logout", authHandler.Logout)
	protected.Post("/password", authHandler.ChangePassword)
	protected.Post("/heartbeat", authHandler.Heartbeat)

	if hub != nil {
		protected.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		protected.Get("/ws", websocket.New(func(c *websocket.Conn) {
			hub.Register(c)
			defer hub.Unregister(c)

			for {
				// Keep alive loop
				if _, _, err := c.ReadMessage(); err != nil {
					break
				}
			}
		}))
	}

	protected.Get("/", dashHandler.GetDashboard)
	protected.Get("/dashboard/stock-movement", dashHandler.GetStockMovement)

	protected.Get("/products", invHandler.GetProducts)
	protected.Get("/products/:id", invHandler.GetProduct)
	protected.Post("/products", invHandler.CreateProduct)
	protected.Post("/products/:id", invHandler.UpdateProduct)
	protected.Post("/products/:id/delete", invHandler.DeleteProduct)

	protected.Get("/categories", catHandler.GetCategories)
	protected.Post("/categories", catHandler.CreateCategory)
	protected.Post("/categories/:id", catHandler.UpdateCategory)
	protected.Post("/categories/:id/delete", catHandler.DeleteCategory)

	protected.Get("/warehouses", catHandler.GetWarehouses)
	protected.Post("/warehouses", catHandler.CreateWarehouse)
	protected.Post("/warehouses/:id", catHandler.UpdateWarehouse)
	protected.Post("/warehouses/:id/delete", catHandler.DeleteWarehouse)

	protected.Get("/transactions", invHandler.GetTransactions)
	protected.Get("/transactions/:id", invHandler.GetTransaction)
	protected.Post("/transactions", invHandler.CreateTransaction)

	protected.Get("/reports", reportHandler.GetReports)
	protected.Get("/reports/export.xlsx", reportHandler.ExportXLSX)

	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", userHandler.CreateUser)
	protected.Post("/users/:id/delete", userHandler.DeleteUser)

	return app
}
