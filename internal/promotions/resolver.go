package promotions

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Level names where a resolved promotion was attached.
type Level string

const (
	LevelNone    Level = "none"
	LevelVariant Level = "variant"
	LevelProduct Level = "product"
)

// Resolve picks the single promotion that applies to variant at now, or nil.
func Resolve(variant models.ProductVariant, product models.Product, variantLinks, productLinks []models.PromotionLink, now time.Time) *models.Promotion {
	promo, _ := ResolveWithLevel(variant, product, variantLinks, productLinks, now)
	return promo
}

// ResolveWithLevel is Resolve that also reports which link level won.
// Any eligible variant-level promotion beats every product-level one, whatever the
// discount size. Within a level the first eligible link in input order wins.
func ResolveWithLevel(variant models.ProductVariant, product models.Product, variantLinks, productLinks []models.PromotionLink, now time.Time) (*models.Promotion, Level) {
	for i := range variantLinks {
		link := variantLinks[i]
		if !link.TargetsVariant(variant.ID) {
			continue
		}
		if promo := eligible(link, now); promo != nil {
			return promo, LevelVariant
		}
	}
	for i := range productLinks {
		link := productLinks[i]
		if !link.TargetsProduct(product.ID) {
			continue
		}
		if promo := eligible(link, now); promo != nil {
			return promo, LevelProduct
		}
	}
	return nil, LevelNone
}

func eligible(link models.PromotionLink, now time.Time) *models.Promotion {
	if link.Promotion == nil || link.Promotion.ID != link.PromotionID {
		return nil
	}
	if !EligibleAt(*link.Promotion, now) {
		return nil
	}
	return link.Promotion
}
