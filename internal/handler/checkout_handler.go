package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-pos-ws/internal/cart"
	"go-pos-ws/internal/service"
)

// CheckoutHandler commits the session cart as a sale and serves the ledger.
type CheckoutHandler struct {
	carts   *cart.Store
	service service.CheckoutService
}

func NewCheckoutHandler(carts *cart.Store, s service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{carts: carts, service: s}
}

type checkoutRequest struct {
	// Optional client-generated temporary id, echoed back on the created
	// sale so an optimistic client can adopt the server id.
	ClientRef string `json:"client_ref"`
}

// Checkout completes the session cart. On success the cart is cleared and the
// committed sale is returned; on any failure cart, catalog and ledger are all
// left untouched.
// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
		}
	}

	sessionID := getUserID(c)
	snapshot := h.carts.Snapshot(sessionID)

	sale, err := h.service.CompleteSale(&snapshot, req.ClientRef, sessionID, getUserName(c))
	if err != nil {
		return errorJSON(c, err)
	}

	// Only the lines that were actually sold are cleared; anything added to
	// the session while the sale committed stays in the cart.
	h.carts.ClearIfUnchanged(sessionID, snapshot)

	return c.Status(201).JSON(fiber.Map{"message": "Sale completed", "data": sale})
}

// GetSales lists committed sales, most recent first.
// GET /api/v1/sales
func (h *CheckoutHandler) GetSales(c *fiber.Ctx) error {
	sales, err := h.service.GetAllSales()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(sales)
}

// GetSale returns one committed sale with its items; the receipt view renders
// from this.
// GET /api/v1/sales/:id
func (h *CheckoutHandler) GetSale(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	sale, err := h.service.GetSaleByID(id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(sale)
}
