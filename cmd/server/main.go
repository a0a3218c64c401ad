package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/gamezone/internal/config"
	"github.com/example/gamezone/internal/database"
	"github.com/example/gamezone/internal/identity"
	"github.com/example/gamezone/internal/routes"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	if cfg.AdminMobile != "" && cfg.AdminPassword != "" {
		ids := identity.NewStore(db)
		if err := ids.SeedAdmin(cfg.AdminName, cfg.AdminMobile, cfg.AdminPassword); err != nil {
			log.Fatalf("admin seed failed: %v", err)
		}
	}

	app := fiber.New(fiber.Config{
		AppName: "GameZone Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cfg)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
