package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-ws/internal/model"
)

func sampleProduct(code, name string, price float64, stock int) *model.Product {
	p := &model.Product{
		ProductCode:   code,
		Name:          name,
		Price:         decimal.NewFromFloat(price),
		StockQuantity: stock,
	}
	p.ID = uuid.New()
	return p
}

func TestAddLineReservesQuantity(t *testing.T) {
	espresso := sampleProduct("ESP-1001", "Espresso Shot", 3.00, 30)
	c := New(decimal.Zero)

	require.NoError(t, c.AddLine(espresso, 5))

	assert.Equal(t, 5, c.Reserved(espresso.ID))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "ESP-1001", c.Lines[0].ProductCode)
	assert.Equal(t, "Espresso Shot", c.Lines[0].Name)
	assert.True(t, c.Lines[0].Price.Equal(decimal.NewFromFloat(3.00)))
	assert.LessOrEqual(t, c.Reserved(espresso.ID), espresso.StockQuantity)
}

func TestAddLineMergesExistingLine(t *testing.T) {
	espresso := sampleProduct("ESP-1001", "Espresso Shot", 3.00, 30)
	c := New(decimal.Zero)

	require.NoError(t, c.AddLine(espresso, 5))
	require.NoError(t, c.AddLine(espresso, 3))

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 8, c.Lines[0].Quantity)
}

func TestAddLineRejectsInvalidQuantity(t *testing.T) {
	espresso := sampleProduct("ESP-1001", "Espresso Shot", 3.00, 30)
	c := New(decimal.Zero)

	assert.ErrorIs(t, c.AddLine(espresso, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.AddLine(espresso, -2), ErrInvalidQuantity)
	assert.Empty(t, c.Lines)
}

func TestAddLineInsufficientStockReportsAvailable(t *testing.T) {
	bagel := sampleProduct("BG-3003", "Fresh Bagel", 2.25, 2)
	c := New(decimal.Zero)

	err := c.AddLine(bagel, 3)

	require.Error(t, err)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Fresh Bagel", stockErr.ProductName)
	assert.Equal(t, 2, stockErr.Available)
	assert.Contains(t, err.Error(), "available: 2")
	assert.Empty(t, c.Lines, "failed add must leave the cart unchanged")
}

func TestAddLineAvailabilityAccountsForReservation(t *testing.T) {
	espresso := sampleProduct("ESP-1001", "Espresso Shot", 3.00, 10)
	c := New(decimal.Zero)

	require.NoError(t, c.AddLine(espresso, 7))

	// Only 3 left once the cart's own reservation is counted.
	err := c.AddLine(espresso, 4)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 7, c.Reserved(espresso.ID))

	require.NoError(t, c.AddLine(espresso, 3))
	assert.Equal(t, 10, c.Reserved(espresso.ID))
}

func TestSetLineQuantityReplacesExactly(t *testing.T) {
	espresso := sampleProduct("ESP-1001", "Espresso Shot", 3.00, 30)
	c := New(decimal.Zero)
	require.NoError(t, c.AddLine(espresso, 5))

	require.NoError(t, c.SetLineQuantity(espresso.ID, 2, espresso.StockQuantity))

	assert.Equal(t, 2, c.Lines[0].Quantity)
}

func TestSetLineQuantityZeroRemovesLine(t *testing.T) {
	espresso := sampleProduct("ESP-1001", "Espresso Shot", 3.00, 30)
	c := New(decimal.Zero)
	require.NoError(t, c.AddLine(espresso, 5))

	require.NoError(t, c.SetLineQuantity(espresso.ID, 0, espresso.StockQuantity))
	assert.Empty(t, c.Lines)

	// Removing an absent line is a no-op.
	require.NoError(t, c.SetLineQuantity(espresso.ID, -1, espresso.StockQuantity))
	assert.Empty(t, c.Lines)
}

func TestSetLineQuantityChecksCurrentStock(t *testing.T) {
	espresso := sampleProduct("ESP-1001", "Espresso Shot", 3.00, 30)
	c := New(decimal.Zero)
	require.NoError(t, c.AddLine(espresso, 5))

	// Stock dropped out-of-band since the line was added.
	err := c.SetLineQuantity(espresso.ID, 10, 4)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 4, stockErr.Available)
	assert.Equal(t, 5, c.Lines[0].Quantity, "failed set must leave the line unchanged")
}

func TestRemoveLine(t *testing.T) {
	espresso := sampleProduct("ESP-1001", "Espresso Shot", 3.00, 30)
	cappuccino := sampleProduct("CAP-2002", "Cappuccino", 4.50, 24)
	c := New(decimal.Zero)
	require.NoError(t, c.AddLine(espresso, 2))
	require.NoError(t, c.AddLine(cappuccino, 1))

	c.RemoveLine(espresso.ID)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, cappuccino.ID, c.Lines[0].ProductID)

	// Absent line: no-op.
	c.RemoveLine(espresso.ID)
	assert.Len(t, c.Lines, 1)
}

func TestTotalsEmptyCart(t *testing.T) {
	c := New(decimal.Zero)
	totals := c.Totals()

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestTotalsDefaultTaxRate(t *testing.T) {
	espresso := sampleProduct("ESP-1001", "Espresso Shot", 3.00, 30)
	c := New(decimal.Zero)
	require.NoError(t, c.AddLine(espresso, 5))

	totals := c.Totals()

	assert.True(t, totals.Subtotal.Equal(decimal.NewFromFloat(15.00)), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.Total.Equal(decimal.NewFromFloat(15.00)))
	assert.Equal(t, "15.00", totals.Total.StringFixed(2))
}

func TestTotalsWithConfiguredTaxRate(t *testing.T) {
	bagel := sampleProduct("BG-3003", "Fresh Bagel", 2.25, 50)
	c := New(decimal.NewFromFloat(0.10))
	require.NoError(t, c.AddLine(bagel, 4))

	totals := c.Totals()

	assert.True(t, totals.Subtotal.Equal(decimal.NewFromFloat(9.00)))
	assert.True(t, totals.Tax.Equal(decimal.NewFromFloat(0.90)), "tax = %s", totals.Tax)
	assert.True(t, totals.Total.Equal(decimal.NewFromFloat(9.90)))
}

func TestLineSnapshotSurvivesProductEdit(t *testing.T) {
	espresso := sampleProduct("ESP-1001", "Espresso Shot", 3.00, 30)
	c := New(decimal.Zero)
	require.NoError(t, c.AddLine(espresso, 2))

	// Later catalog edit must not change what the customer is charged.
	espresso.Price = decimal.NewFromFloat(9.99)
	espresso.Name = "Double Espresso"

	assert.True(t, c.Lines[0].Price.Equal(decimal.NewFromFloat(3.00)))
	assert.Equal(t, "Espresso Shot", c.Lines[0].Name)
	assert.True(t, c.Totals().Total.Equal(decimal.NewFromFloat(6.00)))
}

func TestClear(t *testing.T) {
	espresso := sampleProduct("ESP-1001", "Espresso Shot", 3.00, 30)
	c := New(decimal.NewFromFloat(0.05))
	require.NoError(t, c.AddLine(espresso, 2))

	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.True(t, c.TaxRate.Equal(decimal.NewFromFloat(0.05)), "clear keeps the tax rate")
}

func TestStoreSessionIsolation(t *testing.T) {
	espresso := sampleProduct("ESP-1001", "Espresso Shot", 3.00, 30)
	store := NewStore(decimal.Zero)

	require.NoError(t, store.Update("session-a", func(c *Cart) error {
		return c.AddLine(espresso, 3)
	}))

	a := store.Snapshot("session-a")
	b := store.Snapshot("session-b")
	assert.Len(t, a.Lines, 1)
	assert.Empty(t, b.Lines)
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	espresso := sampleProduct("ESP-1001", "Espresso Shot", 3.00, 30)
	store := NewStore(decimal.Zero)
	require.NoError(t, store.Update("s", func(c *Cart) error {
		return c.AddLine(espresso, 3)
	}))

	snap := store.Snapshot("s")
	snap.Lines[0].Quantity = 99

	again := store.Snapshot("s")
	assert.Equal(t, 3, again.Lines[0].Quantity)
}

func TestStoreClearIfUnchanged(t *testing.T) {
	espresso := sampleProduct("ESP-1001", "Espresso Shot", 3.00, 30)
	bagel := sampleProduct("BG-3003", "Fresh Bagel", 2.25, 50)
	store := NewStore(decimal.Zero)
	require.NoError(t, store.Update("s", func(c *Cart) error {
		return c.AddLine(espresso, 3)
	}))

	snap := store.Snapshot("s")

	// A line added after the snapshot must survive the clear.
	require.NoError(t, store.Update("s", func(c *Cart) error {
		return c.AddLine(bagel, 1)
	}))
	store.ClearIfUnchanged("s", snap)

	remaining := store.Snapshot("s")
	require.Len(t, remaining.Lines, 2)

	// With a current snapshot the cart clears as usual.
	store.ClearIfUnchanged("s", store.Snapshot("s"))
	assert.Empty(t, store.Snapshot("s").Lines)
}

func TestStoreClearIfUnchangedQuantityDrift(t *testing.T) {
	espresso := sampleProduct("ESP-1001", "Espresso Shot", 3.00, 30)
	store := NewStore(decimal.Zero)
	require.NoError(t, store.Update("s", func(c *Cart) error {
		return c.AddLine(espresso, 3)
	}))

	snap := store.Snapshot("s")
	require.NoError(t, store.Update("s", func(c *Cart) error {
		return c.AddLine(espresso, 2)
	}))

	store.ClearIfUnchanged("s", snap)

	remaining := store.Snapshot("s")
	require.Len(t, remaining.Lines, 1)
	assert.Equal(t, 5, remaining.Lines[0].Quantity)
}

func TestStoreClear(t *testing.T) {
	espresso := sampleProduct("ESP-1001", "Espresso Shot", 3.00, 30)
	store := NewStore(decimal.Zero)
	require.NoError(t, store.Update("s", func(c *Cart) error {
		return c.AddLine(espresso, 3)
	}))

	store.Clear("s")

	assert.Empty(t, store.Snapshot("s").Lines)
}
