package promotions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// LinkRequest attaches a promotion to exactly one product or one variant.
type LinkRequest struct {
	ProductID *uuid.UUID `json:"product_id" validate:"required_without=VariantID,excluded_with=VariantID"`
	VariantID *uuid.UUID `json:"variant_id" validate:"required_without=ProductID,excluded_with=ProductID"`
}

type Link struct {
	ID          uuid.UUID  `json:"id"`
	PromotionID uuid.UUID  `json:"promotion_id"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	VariantID   *uuid.UUID `json:"variant_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Promotion struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Value     decimal.Decimal `json:"value"`
	Status    string          `json:"status"`
	StartsAt  *time.Time      `json:"starts_at,omitempty"`
	EndsAt    *time.Time      `json:"ends_at,omitempty"`
	Links     []Link          `json:"links"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func newLink(link models.PromotionLink) Link {
	return Link{
		ID:          link.ID,
		PromotionID: link.PromotionID,
		ProductID:   link.ProductID,
		VariantID:   link.VariantID,
		CreatedAt:   link.CreatedAt,
	}
}

func newPromotion(promo *models.Promotion) Promotion {
	out := Promotion{
		ID:        promo.ID,
		Name:      promo.Name,
		Kind:      string(promo.Kind),
		Value:     promo.Value,
		Status:    string(promo.Status),
		StartsAt:  promo.StartsAt,
		EndsAt:    promo.EndsAt,
		Links:     make([]Link, 0, len(promo.Links)),
		CreatedAt: promo.CreatedAt,
		UpdatedAt: promo.UpdatedAt,
	}
	for _, link := range promo.Links {
		out.Links = append(out.Links, newLink(link))
	}
	return out
}
