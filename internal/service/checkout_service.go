package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-pos-ws/internal/cart"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"
)

var (
	ErrEmptyCart    = errors.New("cart is empty: add at least one item before completing the sale")
	ErrSaleNotFound = errors.New("sale not found")
)

// CheckoutService turns a non-empty cart into a committed sale with stock
// decremented consistently.
type CheckoutService interface {
	CompleteSale(c *cart.Cart, clientRef, userID, userName string) (*model.Sale, error)
	GetAllSales() ([]model.Sale, error)
	GetSaleByID(id uuid.UUID) (*model.Sale, error)
}

type checkoutService struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	db          *gorm.DB
	wsHub       *ws.Hub

	// Serializes validate-then-apply across sessions. Two checkouts touching
	// the same product must not both validate against the same stock value
	// and then both decrement.
	mu sync.Mutex
}

func NewCheckoutService(pRepo repository.ProductRepository, sRepo repository.SaleRepository, db *gorm.DB, hub *ws.Hub) CheckoutService {
	return &checkoutService{
		productRepo: pRepo,
		saleRepo:    sRepo,
		db:          db,
		wsHub:       hub,
	}
}

// CompleteSale re-validates every cart line against current stock, then
// decrements stock per line and appends the sale with its items, all inside
// one database transaction. Validation finishes for the whole cart before any
// stock write starts, so a failure leaves catalog and ledger untouched. The
// cart itself is not mutated; the caller clears it after a successful commit.
func (s *checkoutService) CompleteSale(c *cart.Cart, clientRef, userID, userName string) (*model.Sale, error) {
	if c == nil || c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	totals := c.Totals()
	var sale *model.Sale

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Phase 1: validate all lines against authoritative stock, not the
		// snapshot taken when the lines were added.
		products := make(map[uuid.UUID]*model.Product, len(c.Lines))
		for _, line := range c.Lines {
			var product model.Product
			if err := tx.First(&product, "id = ?", line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return fmt.Errorf("load product %s: %w", line.ProductID, err)
			}
			if line.Quantity > product.StockQuantity {
				return &cart.InsufficientStockError{
					ProductName: product.Name,
					Available:   product.StockQuantity,
				}
			}
			products[line.ProductID] = &product
		}

		// Phase 2: apply. Validation already guaranteed sufficiency, so no
		// decrement here can go below zero.
		for _, line := range c.Lines {
			product := products[line.ProductID]
			newStock := product.StockQuantity - line.Quantity
			if err := s.productRepo.UpdateStock(tx, product.ID, newStock, userID); err != nil {
				return fmt.Errorf("decrement stock for %s: %w", product.ProductCode, err)
			}
			product.StockQuantity = newStock
		}

		items := make([]model.SoldItem, len(c.Lines))
		for i, line := range c.Lines {
			items[i] = model.SoldItem{
				ProductID:   line.ProductID,
				ProductCode: line.ProductCode,
				Name:        line.Name,
				Price:       line.Price,
				Quantity:    line.Quantity,
			}
			items[i].CreatedBy = userID
		}

		sale = &model.Sale{
			Subtotal:    totals.Subtotal,
			Tax:         totals.Tax,
			TotalAmount: totals.Total,
			SoldItems:   items,
		}
		sale.CreatedBy = userID
		sale.UpdatedBy = userID
		if userID != "" {
			sale.CreatedByUserID = &userID
		}

		if err := s.saleRepo.Create(tx, sale); err != nil {
			return fmt.Errorf("append sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Echo the client's optimistic id back so it can adopt the server one.
	sale.ClientRef = clientRef

	go s.broadcastSale(sale, userID, userName)

	return sale, nil
}

func (s *checkoutService) broadcastSale(sale *model.Sale, userID, userName string) {
	itemCount := 0
	for _, item := range sale.SoldItems {
		itemCount += item.Quantity
	}
	payload := map[string]interface{}{
		"type":   "sale_completed",
		"action": "sale_created",
		"sale": map[string]interface{}{
			"id":           sale.ID,
			"total_amount": sale.TotalAmount,
			"item_count":   itemCount,
		},
		"user": map[string]interface{}{
			"id":   userID,
			"name": userName,
		},
		"message": fmt.Sprintf("%s completed a sale of %d items (%s)", userName, itemCount, sale.TotalAmount.StringFixed(2)),
	}
	msg, _ := json.Marshal(payload)
	s.wsHub.Broadcast <- msg
}

func (s *checkoutService) GetAllSales() ([]model.Sale, error) {
	return s.saleRepo.FindAll()
}

func (s *checkoutService) GetSaleByID(id uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}
