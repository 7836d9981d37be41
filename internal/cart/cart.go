// Package cart implements the in-memory cart engine for one checkout session:
// pending line items, stock-vs-reservation checks, and totals. A cart never
// touches persisted stock; committing it is the checkout service's job.
package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-pos-ws/internal/model"
)

// Line binds a product to a reserved quantity. ProductCode, Name and Price
// are value copies taken when the line was added, so a later product edit
// never changes what the customer is being charged.
type Line struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// Totals is the result of summing a cart's lines at full decimal precision.
// Rounding to two fraction digits happens only at display time.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Cart holds the pending lines of one in-progress transaction. It is a plain
// session-scoped value: callers pass it into operations explicitly, there is
// no ambient global cart.
type Cart struct {
	Lines   []Line          `json:"lines"`
	TaxRate decimal.Decimal `json:"tax_rate"`
}

// New returns an empty cart with the given tax rate. Rate zero is the default
// single-jurisdiction configuration.
func New(taxRate decimal.Decimal) *Cart {
	return &Cart{TaxRate: taxRate}
}

// Reserved returns the quantity of a product already held by cart lines.
func (c *Cart) Reserved(productID uuid.UUID) int {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return line.Quantity
		}
	}
	return 0
}

// AddLine reserves requestedQty units of product in the cart. The request is
// checked against stock minus what the cart already holds; on success an
// existing line grows by requestedQty, otherwise a new line snapshots the
// product's current code, name and price. The cart is left unchanged on error.
func (c *Cart) AddLine(product *model.Product, requestedQty int) error {
	if requestedQty <= 0 {
		return ErrInvalidQuantity
	}

	available := product.StockQuantity - c.Reserved(product.ID)
	if requestedQty > available {
		return &InsufficientStockError{ProductName: product.Name, Available: available}
	}

	for i := range c.Lines {
		if c.Lines[i].ProductID == product.ID {
			c.Lines[i].Quantity += requestedQty
			return nil
		}
	}

	c.Lines = append(c.Lines, Line{
		ProductID:   product.ID,
		ProductCode: product.ProductCode,
		Name:        product.Name,
		Price:       product.Price,
		Quantity:    requestedQty,
	})
	return nil
}

// SetLineQuantity replaces a line's quantity exactly (not additive). A
// quantity of zero or less removes the line; removing an absent line is a
// no-op. currentStock is the product's authoritative stock right now, not the
// value seen when the line was added.
func (c *Cart) SetLineQuantity(productID uuid.UUID, quantity, currentStock int) error {
	if quantity <= 0 {
		c.RemoveLine(productID)
		return nil
	}

	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			if quantity > currentStock {
				return &InsufficientStockError{ProductName: c.Lines[i].Name, Available: currentStock}
			}
			c.Lines[i].Quantity = quantity
			return nil
		}
	}
	// No line for this product; nothing to set.
	return nil
}

// RemoveLine drops the line for productID if present.
func (c *Cart) RemoveLine(productID uuid.UUID) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Totals computes subtotal, tax and total from the current lines. It is a
// pure function of the cart; an empty cart yields zeros.
func (c *Cart) Totals() Totals {
	subtotal := decimal.Zero
	for _, line := range c.Lines {
		subtotal = subtotal.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	tax := subtotal.Mul(c.TaxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Clear empties all lines, keeping the tax rate. Used after a committed sale.
func (c *Cart) Clear() {
	c.Lines = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
