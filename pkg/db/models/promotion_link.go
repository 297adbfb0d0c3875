package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PromotionLink attaches a promotion to exactly one product or one variant.
type PromotionLink struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	PromotionID uuid.UUID  `gorm:"column:promotion_id;type:uuid;not null"`
	ProductID   *uuid.UUID `gorm:"column:product_id;type:uuid"`
	VariantID   *uuid.UUID `gorm:"column:variant_id;type:uuid"`
	Promotion   *Promotion `gorm:"foreignKey:PromotionID"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// TargetsVariant reports whether the link is a variant-level link for id.
func (l PromotionLink) TargetsVariant(id uuid.UUID) bool {
	return l.VariantID != nil && l.ProductID == nil && *l.VariantID == id
}

// TargetsProduct reports whether the link is a product-level link for id.
func (l PromotionLink) TargetsProduct(id uuid.UUID) bool {
	return l.ProductID != nil && l.VariantID == nil && *l.ProductID == id
}

func (l *PromotionLink) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
