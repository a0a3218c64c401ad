package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/gamezone/internal/config"
	"github.com/example/gamezone/internal/desk"
	"github.com/example/gamezone/internal/handlers"
	"github.com/example/gamezone/internal/identity"
	"github.com/example/gamezone/internal/ledger"
	"github.com/example/gamezone/internal/middleware"
	"github.com/example/gamezone/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)

	ids := identity.NewStore(db)
	orderLedger := ledger.New(db)
	desks := desk.NewMachine(orderLedger, cfg.DeskCount)

	authHandler := handlers.NewAuthHandler(cfg, ids, orderLedger, desks)
	orderHandler := handlers.NewOrderHandler(orderLedger, desks, telegramService)
	adminHandler := handlers.NewAdminHandler(ids, orderLedger, desks, telegramService)
	menuHandler := handlers.NewMenuHandler(db)

	api := app.Group("/api")

	// Customer routes
	api.Post("/login", authHandler.Login)
	api.Get("/menu", menuHandler.ListMenu)
	api.Post("/orders", orderHandler.SubmitOrder)
	api.Post("/checkout", orderHandler.Checkout)
	api.Get("/user-active-order/:mobile", orderHandler.UserActiveOrder)

	// Admin routes
	api.Post("/admin/login", authHandler.AdminLogin)

	admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.RequireAdmin(ids))
	admin.Get("/orders", adminHandler.ListAllOrders)
	admin.Get("/users", adminHandler.ListAllUsers)
	admin.Get("/desks", adminHandler.ListDesks)
	admin.Get("/stats", adminHandler.DashboardStats)
	admin.Post("/free-desk", adminHandler.FreeDesk)
	admin.Post("/create-admin", adminHandler.CreateAdmin)
}
