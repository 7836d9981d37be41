package handler

import (
	"math"
	"strings"

	"github.com/gofiber/fiber/v2"

	"go-pos-ws/internal/cart"
	"go-pos-ws/internal/service"
)

// CartHandler exposes the session cart over HTTP. Each authenticated session
// has one cart, held in memory by the cart store.
type CartHandler struct {
	carts   *cart.Store
	catalog service.CatalogService
}

func NewCartHandler(carts *cart.Store, catalog service.CatalogService) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog}
}

type cartView struct {
	Lines  []cart.Line `json:"lines"`
	Totals cart.Totals `json:"totals"`
	// Display values are rounded to two fraction digits; the totals above
	// keep full precision.
	Display struct {
		Subtotal string `json:"subtotal"`
		Tax      string `json:"tax"`
		Total    string `json:"total"`
	} `json:"display"`
}

func viewOf(c cart.Cart) cartView {
	v := cartView{Lines: c.Lines, Totals: c.Totals()}
	if v.Lines == nil {
		v.Lines = []cart.Line{}
	}
	v.Display.Subtotal = v.Totals.Subtotal.StringFixed(2)
	v.Display.Tax = v.Totals.Tax.StringFixed(2)
	v.Display.Total = v.Totals.Total.StringFixed(2)
	return v
}

// Quantities arrive as JSON numbers; anything fractional is rejected before
// the stock check.
func wholeQuantity(q float64) (int, error) {
	if q != math.Trunc(q) {
		return 0, cart.ErrInvalidQuantity
	}
	return int(q), nil
}

// GetCart returns the session's cart with computed totals.
// GET /api/v1/cart
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	return c.JSON(viewOf(h.carts.Snapshot(getUserID(c))))
}

type addLineRequest struct {
	ProductCode string  `json:"product_code"`
	Quantity    float64 `json:"quantity"`
}

// AddLine resolves a scanned or typed code and reserves quantity in the cart.
// POST /api/v1/cart/lines
func (h *CartHandler) AddLine(c *fiber.Ctx) error {
	var req addLineRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	code := strings.TrimSpace(req.ProductCode)
	if code == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Enter or scan a product code to proceed"})
	}

	qty, err := wholeQuantity(req.Quantity)
	if err != nil {
		return errorJSON(c, err)
	}

	product, err := h.catalog.GetProductByCode(code)
	if err != nil {
		return errorJSON(c, err)
	}

	sessionID := getUserID(c)
	if err := h.carts.Update(sessionID, func(ca *cart.Cart) error {
		return ca.AddLine(product, qty)
	}); err != nil {
		return errorJSON(c, err)
	}

	return c.Status(201).JSON(viewOf(h.carts.Snapshot(sessionID)))
}

type setQuantityRequest struct {
	Quantity float64 `json:"quantity"`
}

// SetLineQuantity replaces a line's quantity; zero or less removes the line.
// PUT /api/v1/cart/lines/:productId
func (h *CartHandler) SetLineQuantity(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("productId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req setQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	qty, err := wholeQuantity(req.Quantity)
	if err != nil {
		return errorJSON(c, err)
	}

	sessionID := getUserID(c)

	// Removal needs no stock check, and must stay idempotent even when the
	// product has since been deleted.
	if qty <= 0 {
		h.carts.Update(sessionID, func(ca *cart.Cart) error {
			return ca.SetLineQuantity(productID, 0, 0)
		})
		return c.JSON(viewOf(h.carts.Snapshot(sessionID)))
	}

	product, err := h.catalog.GetProductByID(productID)
	if err != nil {
		return errorJSON(c, err)
	}

	if err := h.carts.Update(sessionID, func(ca *cart.Cart) error {
		return ca.SetLineQuantity(productID, qty, product.StockQuantity)
	}); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(viewOf(h.carts.Snapshot(sessionID)))
}

// RemoveLine drops a line unconditionally.
// DELETE /api/v1/cart/lines/:productId
func (h *CartHandler) RemoveLine(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("productId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	sessionID := getUserID(c)
	h.carts.Update(sessionID, func(ca *cart.Cart) error {
		ca.RemoveLine(productID)
		return nil
	})

	return c.JSON(viewOf(h.carts.Snapshot(sessionID)))
}

// ClearCart empties the session's cart.
// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	h.carts.Clear(getUserID(c))
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}
