package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
)

func newCatalogFixture(t *testing.T) (CatalogService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewCatalogService(repository.NewProductRepo(db), db, newTestHub())
	return svc, db
}

func TestCreateProduct(t *testing.T) {
	svc, db := newCatalogFixture(t)

	p := &model.Product{
		ProductCode:   "ESP-1001",
		Name:          "Espresso Shot",
		Price:         decimal.NewFromFloat(3.00),
		StockQuantity: 30,
	}
	require.NoError(t, svc.CreateProduct(p, "", "Admin"))
	assert.NotEqual(t, uuid.Nil, p.ID)

	var count int64
	require.NoError(t, db.Model(&model.Product{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateProductRejectsDuplicateCodeCaseInsensitive(t *testing.T) {
	svc, db := newCatalogFixture(t)
	seedProduct(t, db, "ESP-1001", "Espresso Shot", 3.00, 30)

	dup := &model.Product{
		ProductCode:   "esp-1001",
		Name:          "Also Espresso",
		Price:         decimal.NewFromFloat(2.50),
		StockQuantity: 5,
	}
	assert.ErrorIs(t, svc.CreateProduct(dup, "", "Admin"), ErrDuplicateProductCode)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newCatalogFixture(t)

	missingCode := &model.Product{
		Name:          "No Code",
		Price:         decimal.NewFromFloat(1.00),
		StockQuantity: 1,
	}
	assert.ErrorIs(t, svc.CreateProduct(missingCode, "", "Admin"), ErrValidation)

	freePrice := &model.Product{
		ProductCode:   "FREE-1",
		Name:          "Free Thing",
		Price:         decimal.Zero,
		StockQuantity: 1,
	}
	assert.ErrorIs(t, svc.CreateProduct(freePrice, "", "Admin"), ErrInvalidPrice)

	negStock := &model.Product{
		ProductCode:   "NEG-1",
		Name:          "Negative Stock",
		Price:         decimal.NewFromFloat(1.00),
		StockQuantity: -5,
	}
	assert.ErrorIs(t, svc.CreateProduct(negStock, "", "Admin"), ErrNegativeStock)

	// The stock rule wins even when struct validation would also fail.
	negStockNoCode := &model.Product{
		Name:          "Negative Stock, No Code",
		Price:         decimal.NewFromFloat(1.00),
		StockQuantity: -5,
	}
	assert.ErrorIs(t, svc.CreateProduct(negStockNoCode, "", "Admin"), ErrNegativeStock)
}

func TestGetProductByCodeCaseInsensitive(t *testing.T) {
	svc, db := newCatalogFixture(t)
	espresso := seedProduct(t, db, "ESP-1001", "Espresso Shot", 3.00, 30)

	found, err := svc.GetProductByCode("esp-1001")
	require.NoError(t, err)
	assert.Equal(t, espresso.ID, found.ID)

	_, err = svc.GetProductByCode("NOPE-0000")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpdateProductPartial(t *testing.T) {
	svc, db := newCatalogFixture(t)
	espresso := seedProduct(t, db, "ESP-1001", "Espresso Shot", 3.00, 30)

	newName := "Double Espresso"
	updated, err := svc.UpdateProduct(espresso.ID, &UpdateProductRequest{Name: &newName}, "", "Admin")
	require.NoError(t, err)

	assert.Equal(t, "Double Espresso", updated.Name)
	assert.Equal(t, "ESP-1001", updated.ProductCode)
	assert.True(t, updated.Price.Equal(decimal.NewFromFloat(3.00)))
	assert.Equal(t, 30, updated.StockQuantity)
}

func TestUpdateProductRejectsTakenCode(t *testing.T) {
	svc, db := newCatalogFixture(t)
	espresso := seedProduct(t, db, "ESP-1001", "Espresso Shot", 3.00, 30)
	seedProduct(t, db, "CAP-2002", "Cappuccino", 4.50, 24)

	taken := "CAP-2002"
	_, err := svc.UpdateProduct(espresso.ID, &UpdateProductRequest{ProductCode: &taken}, "", "Admin")
	assert.ErrorIs(t, err, ErrDuplicateProductCode)
}

func TestUpdateProductStockAdjustment(t *testing.T) {
	svc, db := newCatalogFixture(t)
	espresso := seedProduct(t, db, "ESP-1001", "Espresso Shot", 3.00, 30)

	restocked := 100
	updated, err := svc.UpdateProduct(espresso.ID, &UpdateProductRequest{StockQuantity: &restocked}, "", "Admin")
	require.NoError(t, err)
	assert.Equal(t, 100, updated.StockQuantity)

	negative := -1
	_, err = svc.UpdateProduct(espresso.ID, &UpdateProductRequest{StockQuantity: &negative}, "", "Admin")
	assert.ErrorIs(t, err, ErrNegativeStock)
}

func TestUpdateProductNotFound(t *testing.T) {
	svc, _ := newCatalogFixture(t)

	name := "Ghost"
	_, err := svc.UpdateProduct(uuid.New(), &UpdateProductRequest{Name: &name}, "", "Admin")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDeleteProductHidesFromLookups(t *testing.T) {
	svc, db := newCatalogFixture(t)
	espresso := seedProduct(t, db, "ESP-1001", "Espresso Shot", 3.00, 30)

	require.NoError(t, svc.DeleteProduct(espresso.ID, ""))

	_, err := svc.GetProductByID(espresso.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = svc.GetProductByCode("ESP-1001")
	assert.ErrorIs(t, err, ErrProductNotFound)

	products, err := svc.GetAllProducts()
	require.NoError(t, err)
	assert.Empty(t, products)

	assert.ErrorIs(t, svc.DeleteProduct(espresso.ID, ""), ErrProductNotFound)
}

func TestDeleteProductFreesCodeForReuse(t *testing.T) {
	svc, db := newCatalogFixture(t)
	espresso := seedProduct(t, db, "ESP-1001", "Espresso Shot", 3.00, 30)
	require.NoError(t, svc.DeleteProduct(espresso.ID, ""))

	reused := &model.Product{
		ProductCode:   "ESP-1001",
		Name:          "Espresso Shot v2",
		Price:         decimal.NewFromFloat(3.25),
		StockQuantity: 10,
	}
	require.NoError(t, svc.CreateProduct(reused, "", "Admin"))
}
