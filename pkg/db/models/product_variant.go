package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// ProductVariant is a concrete SKU of a product with its own list price.
type ProductVariant struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	ProductID      uuid.UUID            `gorm:"column:product_id;type:uuid;not null"`
	Code           string               `gorm:"column:code;not null"`
	ListPrice      decimal.Decimal      `gorm:"column:list_price;type:numeric(12,2);not null"`
	SourcingStatus enums.SourcingStatus `gorm:"column:sourcing_status;not null;default:'active'"`
	Stock          int                  `gorm:"column:stock;not null;default:0"`
	Attributes     types.Attributes     `gorm:"column:attributes;type:jsonb;serializer:json"`
	DeletedAt      *time.Time           `gorm:"column:deleted_at"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// State exposes the soft-delete lifecycle of the variant.
func (v ProductVariant) State() types.RecordState {
	return types.StateFromDeletedAt(v.DeletedAt)
}

func (v *ProductVariant) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
