package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem is one line of a cart. PriceAtAdd is captured on first add and kept
// through later quantity merges.
type CartItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID     uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:uq_cart_items_cart_variant"`
	VariantID  uuid.UUID       `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:uq_cart_items_cart_variant"`
	Quantity   int             `gorm:"column:quantity;not null"`
	PriceAtAdd decimal.Decimal `gorm:"column:price_at_add;type:numeric(12,2);not null"`
	Variant    *ProductVariant `gorm:"foreignKey:VariantID" json:"-"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
