package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/validator"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrProductNotFound      = errors.New("product not found")
	ErrDuplicateProductCode = errors.New("product code already exists")
	ErrInvalidPrice         = errors.New("price must be greater than 0")
	ErrNegativeStock        = errors.New("stock quantity cannot be negative")
)

// UpdateProductRequest carries a partial product edit; nil fields are left
// untouched. Stock updates here are manual adjustments, distinct from the
// sale-driven decrements the checkout service performs.
type UpdateProductRequest struct {
	ProductCode   *string          `json:"product_code"`
	Name          *string          `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity"`
	ImageURL      *string          `json:"image_url"`
}

type CatalogService interface {
	CreateProduct(req *model.Product, userID, userName string) error
	UpdateProduct(id uuid.UUID, req *UpdateProductRequest, userID, userName string) (*model.Product, error)
	DeleteProduct(id uuid.UUID, userID string) error
	GetAllProducts() ([]model.Product, error)
	GetProductByID(id uuid.UUID) (*model.Product, error)
	GetProductByCode(code string) (*model.Product, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	db          *gorm.DB
	wsHub       *ws.Hub
}

func NewCatalogService(pRepo repository.ProductRepository, db *gorm.DB, hub *ws.Hub) CatalogService {
	return &catalogService{
		productRepo: pRepo,
		db:          db,
		wsHub:       hub,
	}
}

func (s *catalogService) CreateProduct(req *model.Product, userID, userName string) error {
	// Price and stock rules surface their own errors ahead of the struct tags.
	if !req.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if req.StockQuantity < 0 {
		return ErrNegativeStock
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("%w: field '%s' failed on tag '%s'", ErrValidation, firstErr.FailedField, firstErr.Tag)
	}

	// Product codes are unique case-insensitively across live products.
	existing, _ := s.productRepo.FindByCode(req.ProductCode)
	if existing != nil && existing.ID != uuid.Nil {
		return ErrDuplicateProductCode
	}

	req.CreatedBy = userID
	req.UpdatedBy = userID
	if userID != "" {
		req.CreatedByUserID = &userID
		req.UpdatedByUserID = &userID
	}

	if err := s.productRepo.Create(req); err != nil {
		return err
	}

	go s.broadcastStockUpdate("product_created", req, nil, userID, userName,
		fmt.Sprintf("%s created product '%s'", userName, req.Name))

	return nil
}

func (s *catalogService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest, userID, userName string) (*model.Product, error) {
	var updated *model.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Product
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		oldStock := existing.StockQuantity

		if req.ProductCode != nil && *req.ProductCode != existing.ProductCode {
			other, _ := s.productRepo.FindByCode(*req.ProductCode)
			if other != nil && other.ID != existing.ID {
				return ErrDuplicateProductCode
			}
			existing.ProductCode = *req.ProductCode
		}
		if req.Name != nil {
			existing.Name = *req.Name
		}
		if req.Price != nil {
			if !req.Price.IsPositive() {
				return ErrInvalidPrice
			}
			existing.Price = *req.Price
		}
		if req.StockQuantity != nil {
			if *req.StockQuantity < 0 {
				return ErrNegativeStock
			}
			existing.StockQuantity = *req.StockQuantity
		}
		if req.ImageURL != nil {
			existing.ImageURL = *req.ImageURL
		}

		existing.UpdatedBy = userID
		if userID != "" {
			existing.UpdatedByUserID = &userID
		}

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}

		updated = &existing
		go s.broadcastStockUpdate("product_updated", &existing, &oldStock, userID, userName,
			fmt.Sprintf("%s updated product '%s'", userName, existing.Name))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *catalogService) DeleteProduct(id uuid.UUID, userID string) error {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	// Historical sales keep their denormalized copy of the product fields, so
	// no cross-reference cleanup happens here.
	return s.productRepo.Delete(product.ID, userID)
}

func (s *catalogService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *catalogService) GetProductByID(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// GetProductByCode resolves a scanned or typed code, case-insensitively.
func (s *catalogService) GetProductByCode(code string) (*model.Product, error) {
	product, err := s.productRepo.FindByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *catalogService) broadcastStockUpdate(action string, product *model.Product, oldStock *int, userID, userName, message string) {
	productPayload := map[string]interface{}{
		"id":             product.ID,
		"product_code":   product.ProductCode,
		"name":           product.Name,
		"stock_quantity": product.StockQuantity,
		"price":          product.Price,
	}
	if oldStock != nil {
		productPayload["old_stock"] = *oldStock
		productPayload["new_stock"] = product.StockQuantity
	}
	payload := map[string]interface{}{
		"type":    "stock_update",
		"action":  action,
		"product": productPayload,
		"user": map[string]interface{}{
			"id":   userID,
			"name": userName,
		},
		"message": message,
	}
	msg, _ := json.Marshal(payload)
	s.wsHub.Broadcast <- msg
}
