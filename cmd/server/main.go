package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"admin-backend/internal/admin"
	"admin-backend/internal/api"
	"admin-backend/internal/audit"
	"admin-backend/internal/auth"
	"admin-backend/internal/config"
	"admin-backend/internal/store"
)

func main() {
	ctx := context.Background()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded (env: %s, port: %d, driver: %s)", cfg.Env, cfg.Server.Port, cfg.Database.Driver)

	// 2. Connect to database
	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	// 3. Bootstrap system tables
	if err := db.Bootstrap(ctx); err != nil {
		log.Fatalf("Failed to bootstrap system tables: %v", err)
	}
	log.Println("System tables ready")

	// 4. Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: api.ErrorHandler,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	// 5. Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 6. Session plumbing
	secure := cfg.IsProduction()
	tokens := auth.NewTokenManager(cfg.Auth)
	sessions := auth.NewSessionManager(tokens, db)
	guard := auth.NewGuard(sessions, secure)

	// 7. Audit trail for mutating requests
	auditLogger := audit.NewLogger(db, 100, 5*time.Second)
	defer auditLogger.Stop()
	app.Use("/api", auditLogger.Middleware())
	go auditLogger.Cleanup(ctx, 90*24*time.Hour)

	// 8. Auth routes
	authHandler := auth.NewHandler(sessions, db, db, secure)
	auth.RegisterRoutes(app, authHandler, guard)

	// 9. Admin routes (auth + per-verb permission required)
	adminHandler := admin.NewHandler(db)
	admin.RegisterAdminRoutes(app, adminHandler, guard)
	audit.RegisterAuditRoutes(app, audit.NewHandler(db), guard)

	// 10. Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	log.Fatal(app.Listen(addr))
}
