package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-inventory-tracker/internal/config"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/server"
	"go-inventory-tracker/internal/service"
	"go-inventory-tracker/internal/ws"
	"go-inventory-tracker/pkg/database"
	"go-inventory-tracker/pkg/jwt"
	"go-inventory-tracker/pkg/logger"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// 2. Setup Database
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatal("database connection failed", "driver", cfg.Database.Driver, "error", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migration failed", "error", err)
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub(log.With("component", "ws"))
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	warehouseRepo := repository.NewWarehouseRepo(db)
	userRepo := repository.NewUserRepo(db)

	tokens := jwt.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TTLHours)*time.Hour)

	reportService := service.NewReportService(productRepo, categoryRepo)
	services := server.Services{
		Inventory: service.NewInventoryService(productRepo, txRepo, categoryRepo, warehouseRepo, db, wsHub),
		Catalog:   service.NewCatalogService(categoryRepo, warehouseRepo, db, wsHub),
		Reports:   reportService,
		Dashboard: service.NewDashboardService(productRepo, txRepo, reportService),
		Auth:      service.NewAuthService(userRepo, tokens),
		Users:     service.NewUserService(userRepo, db),
	}

	// 5. Seed admin user
	created, err := services.Users.EnsureAdmin(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
	if err != nil {
		log.Warn("failed to seed admin user", "error", err)
	} else if created {
		log.Info("admin user created", "username", cfg.Auth.AdminUsername)
	}

	// 6. Setup Fiber
	app := server.New(services, wsHub, log, server.Options{
		AppName:      "Inventory Tracker v1.0",
		SecureCookie: cfg.IsProduction(),
		Metrics:      cfg.Metrics.Enabled,
		AccessLog:    true,
	})

	// 7. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			log.Fatal("server stopped", "error", err)
		}
	}()
	log.Info("server started", "port", cfg.App.Port, "env", cfg.App.Env)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	wsHub.Stop()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server exited")
}
