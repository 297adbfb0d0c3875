package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Product is the catalog entry that exclusively owns its variants.
type Product struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Title     string           `gorm:"column:title;not null"`
	Slug      string           `gorm:"column:slug;not null"`
	Variants  []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	DeletedAt *time.Time       `gorm:"column:deleted_at"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// State exposes the soft-delete lifecycle of the product.
func (p Product) State() types.RecordState {
	return types.StateFromDeletedAt(p.DeletedAt)
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
