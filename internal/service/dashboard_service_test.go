package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-ws/internal/cart"
	"go-pos-ws/internal/repository"
)

func TestGetDashboardStats(t *testing.T) {
	db := newTestDB(t)
	productRepo := repository.NewProductRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	checkout := NewCheckoutService(productRepo, saleRepo, db, newTestHub())
	svc := NewDashboardService(productRepo, saleRepo)

	espresso := seedProduct(t, db, "ESP-1001", "Espresso Shot", 3.00, 30)
	seedProduct(t, db, "BG-3003", "Fresh Bagel", 2.25, 4)

	c := cart.New(decimal.Zero)
	require.NoError(t, c.AddLine(espresso, 5))
	_, err := checkout.CompleteSale(c, "", "", "Cashier")
	require.NoError(t, err)

	stats, err := svc.GetDashboardStats()
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.TotalProducts)
	assert.EqualValues(t, 1, stats.LowStockCount)
	// 25 * 3.00 + 4 * 2.25 after the sale decremented the espresso stock.
	assert.True(t, stats.InventoryValuation.Equal(decimal.NewFromFloat(84.00)),
		"valuation = %s", stats.InventoryValuation)
	assert.EqualValues(t, 1, stats.SalesCount)
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromFloat(15.00)))
}

func TestGetSalesSummaryGroupsByDay(t *testing.T) {
	db := newTestDB(t)
	productRepo := repository.NewProductRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	checkout := NewCheckoutService(productRepo, saleRepo, db, newTestHub())
	svc := NewDashboardService(productRepo, saleRepo)

	espresso := seedProduct(t, db, "ESP-1001", "Espresso Shot", 3.00, 30)
	for i := 0; i < 2; i++ {
		c := cart.New(decimal.Zero)
		require.NoError(t, c.AddLine(espresso, 1))
		_, err := checkout.CompleteSale(c, "", "", "Cashier")
		require.NoError(t, err)
	}

	rows, err := svc.GetSalesSummary(7)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Sales)
	assert.True(t, rows[0].Revenue.Equal(decimal.NewFromFloat(6.00)), "revenue = %s", rows[0].Revenue)
}
