package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/gamezone/internal/desk"
	"github.com/example/gamezone/internal/identity"
	"github.com/example/gamezone/internal/ledger"
	"github.com/example/gamezone/internal/models"
	"github.com/example/gamezone/internal/services"
)

// OrderHandler manages the session/order endpoints.
type OrderHandler struct {
	ledger   *ledger.Ledger
	desks    *desk.Machine
	telegram *services.TelegramService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(l *ledger.Ledger, desks *desk.Machine, telegram *services.TelegramService) *OrderHandler {
	return &OrderHandler{ledger: l, desks: desks, telegram: telegram}
}

type orderItemRequest struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type submitOrderRequest struct {
	DeskNumber     int                `json:"desk_number"`
	CustomerName   string             `json:"customer_name"`
	CustomerMobile string             `json:"customer_mobile"`
	Items          []orderItemRequest `json:"items"`
	TotalAmount    *float64           `json:"total_amount"`
}

// SubmitOrder takes the customer's full cart and opens a session at the
// desk, or replaces the cart of the session already open there. The
// client-declared total is required but advisory; the stored total is
// always recomputed from the items.
func (h *OrderHandler) SubmitOrder(c *fiber.Ctx) error {
	var req submitOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.DeskNumber == 0 || req.CustomerName == "" || req.CustomerMobile == "" ||
		len(req.Items) == 0 || req.TotalAmount == nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing order details")
	}

	if !h.desks.Valid(req.DeskNumber) {
		return fiber.NewError(fiber.StatusBadRequest, "unknown desk number")
	}

	if err := identity.ValidateMobile(req.CustomerMobile); err != nil {
		return mapLedgerError(err)
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	order, created, err := h.ledger.OpenOrReplace(req.DeskNumber, req.CustomerName, req.CustomerMobile, items)
	if err != nil {
		return mapLedgerError(err)
	}

	go h.notifySession(*order, !created)

	status := fiber.StatusOK
	message := "Order updated successfully!"
	if created {
		status = fiber.StatusCreated
		message = "Order placed successfully!"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"order":   order,
	})
}

type checkoutRequest struct {
	DeskNumber     int    `json:"desk_number"`
	CustomerMobile string `json:"customer_mobile"`
}

// Checkout closes the customer's active order at the desk, freeing it.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.DeskNumber == 0 || req.CustomerMobile == "" {
		return fiber.NewError(fiber.StatusBadRequest, "desk number and customer mobile are required")
	}

	order, err := h.ledger.Checkout(req.DeskNumber, req.CustomerMobile)
	if err != nil {
		return mapLedgerError(err)
	}

	go h.notifyCheckout(*order, false)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Checkout successful!",
		"order":   order,
	})
}

// UserActiveOrder returns the customer's active order regardless of
// desk, or null. Clients call this on reload to restore their cart.
func (h *OrderHandler) UserActiveOrder(c *fiber.Ctx) error {
	mobile := c.Params("mobile")

	order, err := h.ledger.FindActiveByMobile(mobile)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"order":   order,
	})
}

func (h *OrderHandler) notifySession(order models.Order, updated bool) {
	if h.telegram == nil {
		return
	}
	if err := h.telegram.NotifySessionOpened(order, updated); err != nil {
		log.Printf("[Order] Telegram notification failed: %v", err)
	}
}

func (h *OrderHandler) notifyCheckout(order models.Order, forced bool) {
	if h.telegram == nil {
		return
	}
	if err := h.telegram.NotifyCheckout(order, forced); err != nil {
		log.Printf("[Order] Telegram notification failed: %v", err)
	}
}
