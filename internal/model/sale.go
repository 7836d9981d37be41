package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is the immutable record of a completed checkout. TotalAmount is always
// Subtotal + Tax; the ledger never recomputes it after commit.
type Sale struct {
	BaseModel
	Subtotal    decimal.Decimal `gorm:"type:numeric;not null" json:"subtotal"`
	Tax         decimal.Decimal `gorm:"type:numeric;not null" json:"tax"`
	TotalAmount decimal.Decimal `gorm:"type:numeric;not null" json:"total_amount"`
	SoldItems   []SoldItem      `json:"sold_items"`

	// ClientRef carries a client-generated temporary id through an
	// optimistic create, so the caller can swap it for the server id.
	ClientRef string `gorm:"-" json:"client_ref,omitempty"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty"`
}

// SoldItem snapshots the product fields at the moment of commit. ProductID is
// a plain reference: the product may later be edited or deleted without
// touching the sold record.
type SoldItem struct {
	BaseModel
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	ProductCode string          `gorm:"type:varchar(50);not null" json:"product_code"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
}
