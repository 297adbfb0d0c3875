package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

const liveClause = "deleted_at IS NULL"

// Repository reads products and variants, hiding soft-deleted rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetVariant loads a live variant. Missing and deleted rows both yield gorm.ErrRecordNotFound.
func (r *Repository) GetVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where(liveClause).
		First(&variant).Error; err != nil {
		return nil, err
	}
	if types.IsDeleted(variant.State()) {
		return nil, gorm.ErrRecordNotFound
	}
	return &variant, nil
}

// GetProduct loads a live product without its variants.
func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where(liveClause).
		First(&product).Error; err != nil {
		return nil, err
	}
	if types.IsDeleted(product.State()) {
		return nil, gorm.ErrRecordNotFound
	}
	return &product, nil
}

// ListVariantsByProduct returns the live variants of a product ordered by code.
func (r *Repository) ListVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error) {
	var rows []models.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Where(liveClause).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	live := rows[:0]
	for _, row := range rows {
		if !types.IsDeleted(row.State()) {
			live = append(live, row)
		}
	}
	return live, nil
}
