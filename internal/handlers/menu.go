package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/gamezone/internal/models"
)

// MenuHandler serves the read-only catalog.
type MenuHandler struct {
	db *gorm.DB
}

// NewMenuHandler constructs MenuHandler.
func NewMenuHandler(db *gorm.DB) *MenuHandler {
	return &MenuHandler{db: db}
}

// ListMenu returns every menu item, gaming first then café.
func (h *MenuHandler) ListMenu(c *fiber.Ctx) error {
	var items []models.MenuItem
	if err := h.db.Order("category, product_id").Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    items,
	})
}
