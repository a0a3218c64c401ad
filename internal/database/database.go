package database

import (
	"database/sql"
	"log"
	"net/url"
	"strings"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/gamezone/internal/models"
)

var db *gorm.DB

// Connect initializes the database connection, runs migrations, and
// seeds the menu catalog.
func Connect(dsn string) *gorm.DB {
	if db != nil {
		return db
	}

	if err := ensureDatabase(dsn); err != nil {
		log.Fatalf("failed to ensure database: %v", err)
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := conn.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Printf("warning: failed to ensure uuid-ossp extension: %v", err)
	}

	if err := Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	if err := SeedMenu(conn); err != nil {
		log.Fatalf("menu seed failed: %v", err)
	}

	db = conn
	return db
}

// Migrate creates all tables and indexes, including the partial unique
// indexes that back the one-active-order-per-desk and per-customer
// invariants at the storage level.
func Migrate(conn *gorm.DB) error {
	migrations := []interface{}{
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
		&models.MenuItem{},
	}

	for _, migration := range migrations {
		if err := conn.AutoMigrate(migration); err != nil {
			return err
		}
	}

	return nil
}

// SeedMenu inserts the café's fixed catalog on first boot. Existing rows
// keep their prices; orders snapshot prices anyway.
func SeedMenu(conn *gorm.DB) error {
	menu := []models.MenuItem{
		{ProductID: 1, Name: "PS5 - 1 Hour", Price: 250, Category: models.CategoryGaming},
		{ProductID: 2, Name: "PS4 - 1 Hour", Price: 150, Category: models.CategoryGaming},
		{ProductID: 3, Name: "VR Experience - 30 Mins", Price: 400, Category: models.CategoryGaming},
		{ProductID: 4, Name: "Racing Simulator - 15 Mins", Price: 300, Category: models.CategoryGaming},
		{ProductID: 5, Name: "Cola", Price: 60, Category: models.CategoryCafe},
		{ProductID: 6, Name: "Fries", Price: 120, Category: models.CategoryCafe},
		{ProductID: 7, Name: "Pizza Slice", Price: 180, Category: models.CategoryCafe},
		{ProductID: 8, Name: "Coffee", Price: 100, Category: models.CategoryCafe},
	}

	for _, item := range menu {
		var existing models.MenuItem
		err := conn.Where("product_id = ?", item.ProductID).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := conn.Create(&item).Error; err != nil {
			return err
		}
	}

	return nil
}

func ensureDatabase(dsn string) error {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return err
	}

	dbName := strings.TrimPrefix(parsed.Path, "/")
	if dbName == "" {
		return nil
	}

	parsed.Path = "/postgres"
	masterDSN := parsed.String()

	sqlDB, err := sql.Open("postgres", masterDSN)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return err
	}

	var exists bool
	if err := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists); err != nil {
		return err
	}

	if exists {
		return nil
	}

	_, err = sqlDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName))
	return err
}
