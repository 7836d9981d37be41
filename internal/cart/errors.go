package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuantity rejects quantity input before any stock check runs.
	ErrInvalidQuantity = errors.New("quantity must be a whole number greater than 0")
)

// InsufficientStockError is returned when a requested quantity exceeds what is
// still available for a product. Available already accounts for units reserved
// by the cart, so the message tells the operator what they can actually add.
type InsufficientStockError struct {
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (available: %d)", e.ProductName, e.Available)
}

// IsInsufficientStock reports whether err is an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
