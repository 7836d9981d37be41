package model

import "github.com/shopspring/decimal"

// Product is a catalog entry. ProductCode is what the operator scans or types
// at the register; comparisons against it are case-insensitive.
type Product struct {
	BaseModel
	// Unique among live rows only; a soft-deleted product frees its code.
	ProductCode   string          `gorm:"type:varchar(50);uniqueIndex:idx_products_code_live,where:deleted_at IS NULL;not null" json:"product_code" validate:"required"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Price         decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity" validate:"gte=0"`
	ImageURL      string          `gorm:"type:text" json:"image_url,omitempty"` // Base64 data URI

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty"`
	UpdatedByUser   *User   `gorm:"foreignKey:UpdatedByUserID;references:ID" json:"updated_by_user,omitempty"`
}
