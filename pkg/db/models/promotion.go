package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Promotion is a discount rule. Promotions are hard-deleted; their links cascade.
type Promotion struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name      string                `gorm:"column:name;not null"`
	Kind      enums.PromotionKind   `gorm:"column:kind;not null"`
	Value     decimal.Decimal       `gorm:"column:value;type:numeric(12,2);not null"`
	Status    enums.PromotionStatus `gorm:"column:status;not null;default:'scheduled'"`
	StartsAt  *time.Time            `gorm:"column:starts_at"`
	EndsAt    *time.Time            `gorm:"column:ends_at"`
	Links     []PromotionLink       `gorm:"foreignKey:PromotionID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Promotion) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
