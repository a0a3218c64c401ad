package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/gamezone/internal/config"
	"github.com/example/gamezone/internal/desk"
	"github.com/example/gamezone/internal/identity"
	"github.com/example/gamezone/internal/ledger"
	"github.com/example/gamezone/internal/models"
	"github.com/example/gamezone/internal/utils"
)

// AuthHandler bundles dependencies for login endpoints.
type AuthHandler struct {
	cfg    *config.Config
	ids    *identity.Store
	ledger *ledger.Ledger
	desks  *desk.Machine
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(cfg *config.Config, ids *identity.Store, l *ledger.Ledger, desks *desk.Machine) *AuthHandler {
	return &AuthHandler{cfg: cfg, ids: ids, ledger: l, desks: desks}
}

type loginRequest struct {
	Name       string `json:"name"`
	Mobile     string `json:"mobile"`
	DeskNumber int    `json:"desk_number"`
}

// Login identifies a customer at a desk, registering them on first
// sight. A returning customer also gets their active order back so the
// client can restore the session.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Mobile == "" || req.DeskNumber == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "name, mobile, and desk number are required")
	}

	if !h.desks.Valid(req.DeskNumber) {
		return fiber.NewError(fiber.StatusBadRequest, "unknown desk number")
	}

	customer, err := h.ids.Identify(req.Name, req.Mobile)
	if err != nil {
		return mapLedgerError(err)
	}

	activeOrder, err := h.ledger.FindActiveByMobile(customer.Mobile)
	if err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, customer.Mobile, customer.Role, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	resp := fiber.Map{
		"success": true,
		"user":    customer,
		"token":   token,
	}
	if activeOrder != nil {
		resp["active_order"] = activeOrder
	}

	return c.JSON(resp)
}

type adminLoginRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

// AdminLogin authenticates an admin by mobile and password and issues an
// admin token.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req adminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Mobile == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "mobile and password are required")
	}

	admin, err := h.ids.VerifyAdmin(req.Mobile, req.Password)
	if err != nil {
		return err
	}
	if admin == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, admin.Mobile, models.RoleAdmin, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    admin,
		"token":   token,
	})
}
