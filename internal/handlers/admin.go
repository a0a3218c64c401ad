package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/gamezone/internal/desk"
	"github.com/example/gamezone/internal/identity"
	"github.com/example/gamezone/internal/ledger"
	"github.com/example/gamezone/internal/models"
	"github.com/example/gamezone/internal/services"
	"github.com/example/gamezone/internal/utils"
)

// AdminHandler manages admin-only endpoints. All reads are aggregations
// over one ledger snapshot; they may be stale relative to concurrent
// writers, which is acceptable for an advisory dashboard.
type AdminHandler struct {
	ids      *identity.Store
	ledger   *ledger.Ledger
	desks    *desk.Machine
	telegram *services.TelegramService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(ids *identity.Store, l *ledger.Ledger, desks *desk.Machine, telegram *services.TelegramService) *AdminHandler {
	return &AdminHandler{ids: ids, ledger: l, desks: desks, telegram: telegram}
}

// ListAllOrders returns all orders, newest first, with pagination.
func (h *AdminHandler) ListAllOrders(c *fiber.Ctx) error {
	orders, err := h.ledger.ListAll()
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)
	total := len(orders)
	page := paginate(orders, pg)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    page,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// ListAllUsers returns all customers enriched with order counts and
// total spend, computed from the same ledger snapshot.
func (h *AdminHandler) ListAllUsers(c *fiber.Ctx) error {
	customers, err := h.ids.ListAll()
	if err != nil {
		return err
	}

	orders, err := h.ledger.ListAll()
	if err != nil {
		return err
	}

	type customerStats struct {
		OrderCount int64
		TotalSpent float64
	}
	statsMap := make(map[string]customerStats)
	for _, order := range orders {
		s := statsMap[order.CustomerMobile]
		s.OrderCount++
		if order.Status == models.StatusCheckedOut {
			s.TotalSpent += order.TotalAmount
		}
		statsMap[order.CustomerMobile] = s
	}

	type customerResponse struct {
		models.Customer
		OrderCount int64   `json:"order_count"`
		TotalSpent float64 `json:"total_spent"`
	}

	pg := utils.ParsePagination(c)
	total := len(customers)
	page := paginate(customers, pg)

	result := make([]customerResponse, len(page))
	for i, cust := range page {
		result[i] = customerResponse{Customer: cust}
		if s, ok := statsMap[cust.Mobile]; ok {
			result[i].OrderCount = s.OrderCount
			result[i].TotalSpent = s.TotalSpent
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	totalCustomers, err := h.ids.Count()
	if err != nil {
		return err
	}

	orders, err := h.ledger.ListAll()
	if err != nil {
		return err
	}

	var (
		activeSessions int64
		totalRevenue   float64
		todayRevenue   float64
	)
	today := time.Now().Truncate(24 * time.Hour)
	for _, order := range orders {
		switch order.Status {
		case models.StatusActive:
			activeSessions++
		case models.StatusCheckedOut:
			totalRevenue += order.TotalAmount
			if order.CheckoutTime != nil && !order.CheckoutTime.Before(today) {
				todayRevenue += order.TotalAmount
			}
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_customers": totalCustomers,
			"total_orders":    len(orders),
			"active_sessions": activeSessions,
			"total_revenue":   totalRevenue,
			"today_revenue":   todayRevenue,
			"desk_count":      h.desks.Count(),
		},
	})
}

// ListDesks returns the derived occupancy of every desk.
func (h *AdminHandler) ListDesks(c *fiber.Ctx) error {
	statuses, err := h.desks.Statuses()
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    statuses,
	})
}

type freeDeskRequest struct {
	DeskNumber int `json:"desk_number"`
}

// FreeDesk force-frees a desk, closing whatever active order holds it.
// Freeing an already-free desk succeeds with freed=false.
func (h *AdminHandler) FreeDesk(c *fiber.Ctx) error {
	var req freeDeskRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.DeskNumber == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "desk number is required")
	}

	order, err := h.ledger.ForceFree(req.DeskNumber)
	if err != nil {
		return mapLedgerError(err)
	}

	if order == nil {
		return c.JSON(fiber.Map{
			"success": true,
			"freed":   false,
			"message": fmt.Sprintf("Desk %d was already free.", req.DeskNumber),
		})
	}

	go func(o models.Order) {
		if h.telegram == nil {
			return
		}
		if err := h.telegram.NotifyCheckout(o, true); err != nil {
			log.Printf("[Admin] Telegram notification failed: %v", err)
		}
	}(*order)

	return c.JSON(fiber.Map{
		"success": true,
		"freed":   true,
		"message": fmt.Sprintf("Desk %d marked as free and associated order checked out.", req.DeskNumber),
		"order":   order,
	})
}

type createAdminRequest struct {
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

// CreateAdmin provisions another admin account. Only reachable through
// the admin gate.
func (h *AdminHandler) CreateAdmin(c *fiber.Ctx) error {
	var req createAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Mobile == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name, mobile, and password are required")
	}

	admin, err := h.ids.CreateAdmin(req.Name, req.Mobile, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrExists) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return mapLedgerError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    admin,
	})
}

// paginate slices one snapshot page out of the full result set.
func paginate[T any](items []T, pg utils.Pagination) []T {
	if pg.Offset >= len(items) {
		return []T{}
	}
	end := pg.Offset + pg.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[pg.Offset:end]
}
