package promotions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Links are ordered by their promotion's age so "first eligible" is deterministic:
// the oldest promotion wins a tie, then the lowest id.
const linkOrder = "promotions.created_at ASC, promotions.id ASC, promotion_links.id ASC"

// Repository persists promotions and their links.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a promotions repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// LinksForVariant returns the variant-level links of variantID with their promotions loaded.
func (r *Repository) LinksForVariant(ctx context.Context, variantID uuid.UUID) ([]models.PromotionLink, error) {
	return r.links(ctx, "promotion_links.variant_id = ?", variantID)
}

// LinksForProduct returns the product-level links of productID with their promotions loaded.
func (r *Repository) LinksForProduct(ctx context.Context, productID uuid.UUID) ([]models.PromotionLink, error) {
	return r.links(ctx, "promotion_links.product_id = ?", productID)
}

func (r *Repository) links(ctx context.Context, where string, id uuid.UUID) ([]models.PromotionLink, error) {
	var links []models.PromotionLink
	err := r.db.WithContext(ctx).
		Select("promotion_links.*").
		Joins("JOIN promotions ON promotions.id = promotion_links.promotion_id").
		Preload("Promotion").
		Where(where, id).
		Order(linkOrder).
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

// Create inserts a promotion.
func (r *Repository) Create(ctx context.Context, promo *models.Promotion) error {
	return r.db.WithContext(ctx).Omit("Links").Create(promo).Error
}

// Save overwrites every column of an existing promotion.
func (r *Repository) Save(ctx context.Context, promo *models.Promotion) error {
	return r.db.WithContext(ctx).Omit("Links").Save(promo).Error
}

// FindByID loads a promotion with its links.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	var promo models.Promotion
	err := r.db.WithContext(ctx).
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("id = ?", id).
		First(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

// List returns up to limit promotions after the keyset cursor, oldest first.
// A nil status lists every status.
func (r *Repository) List(ctx context.Context, status *enums.PromotionStatus, after *pagination.Cursor, limit int) ([]models.Promotion, error) {
	q := r.db.WithContext(ctx).
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") })
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if after != nil {
		q = q.Where("(created_at > ?) OR (created_at = ? AND id > ?)", after.CreatedAt, after.CreatedAt, after.ID)
	}
	var promos []models.Promotion
	if err := q.Order("created_at ASC, id ASC").Limit(limit).Find(&promos).Error; err != nil {
		return nil, err
	}
	return promos, nil
}

// Delete hard-deletes the promotion and its links. It reports whether a row was removed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("promotion_id = ?", id).Delete(&models.PromotionLink{}).Error; err != nil {
		return false, err
	}
	res := db.Where("id = ?", id).Delete(&models.Promotion{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CreateLink inserts a link row.
func (r *Repository) CreateLink(ctx context.Context, link *models.PromotionLink) error {
	return r.db.WithContext(ctx).Omit("Promotion").Create(link).Error
}

// FindLink looks up an existing link of promoID to the given product or variant.
func (r *Repository) FindLink(ctx context.Context, promoID uuid.UUID, productID, variantID *uuid.UUID) (*models.PromotionLink, error) {
	q := r.db.WithContext(ctx).Where("promotion_id = ?", promoID)
	if productID != nil {
		q = q.Where("product_id = ? AND variant_id IS NULL", *productID)
	} else {
		q = q.Where("variant_id = ? AND product_id IS NULL", *variantID)
	}
	var link models.PromotionLink
	if err := q.First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// DeleteLink removes linkID from promoID. It reports whether a row was removed.
func (r *Repository) DeleteLink(ctx context.Context, promoID, linkID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND promotion_id = ?", linkID, promoID).
		Delete(&models.PromotionLink{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
