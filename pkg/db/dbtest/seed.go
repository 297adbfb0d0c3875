package dbtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// MustCreateProduct inserts a live product.
func MustCreateProduct(t testing.TB, tx *gorm.DB) *models.Product {
	t.Helper()
	id := uuid.New()
	product := &models.Product{
		ID:    id,
		Title: "Test Product",
		Slug:  "test-product-" + id.String()[:8],
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

// MustCreateVariant inserts a live variant of productID with the given list price.
func MustCreateVariant(t testing.TB, tx *gorm.DB, productID uuid.UUID, listPrice string) *models.ProductVariant {
	t.Helper()
	id := uuid.New()
	variant := &models.ProductVariant{
		ID:             id,
		ProductID:      productID,
		Code:           "SKU-" + id.String()[:8],
		ListPrice:      decimal.RequireFromString(listPrice),
		SourcingStatus: enums.SourcingStatusActive,
		Stock:          10,
		Attributes:     types.Attributes{"color": "red", "size": "M"},
	}
	if err := tx.Create(variant).Error; err != nil {
		t.Fatalf("create variant: %v", err)
	}
	return variant
}

// MustCreatePromotion inserts a promotion. createdAt controls link ordering.
func MustCreatePromotion(t testing.TB, tx *gorm.DB, kind enums.PromotionKind, value string, status enums.PromotionStatus, createdAt time.Time) *models.Promotion {
	t.Helper()
	promo := &models.Promotion{
		Name:      string(kind) + " " + value,
		Kind:      kind,
		Value:     decimal.RequireFromString(value),
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := tx.Create(promo).Error; err != nil {
		t.Fatalf("create promotion: %v", err)
	}
	return promo
}

// MustLinkVariant attaches promo to a variant.
func MustLinkVariant(t testing.TB, tx *gorm.DB, promoID, variantID uuid.UUID) *models.PromotionLink {
	t.Helper()
	link := &models.PromotionLink{PromotionID: promoID, VariantID: &variantID}
	if err := tx.Create(link).Error; err != nil {
		t.Fatalf("link variant: %v", err)
	}
	return link
}

// MustLinkProduct attaches promo to a product.
func MustLinkProduct(t testing.TB, tx *gorm.DB, promoID, productID uuid.UUID) *models.PromotionLink {
	t.Helper()
	link := &models.PromotionLink{PromotionID: promoID, ProductID: &productID}
	if err := tx.Create(link).Error; err != nil {
		t.Fatalf("link product: %v", err)
	}
	return link
}

// MustSoftDelete stamps deleted_at on a catalog table row.
func MustSoftDelete(t testing.TB, tx *gorm.DB, table string, id uuid.UUID) {
	t.Helper()
	if err := tx.Table(table).Where("id = ?", id).Update("deleted_at", time.Now().UTC()).Error; err != nil {
		t.Fatalf("soft delete %s: %v", table, err)
	}
}
