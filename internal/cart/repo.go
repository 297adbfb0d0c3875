package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Both statements rely on unique constraints so concurrent callers converge.
const (
	insertCartSQL = `INSERT INTO carts (id, user_id, created_at, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (user_id) DO NOTHING`

	upsertLineSQL = `INSERT INTO cart_items (id, cart_id, variant_id, quantity, price_at_add, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (cart_id, variant_id) DO UPDATE
SET quantity = cart_items.quantity + excluded.quantity, updated_at = excluded.updated_at
WHERE cart_items.quantity + excluded.quantity <= ?`
)

// Repository persists carts and their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindCartByUser loads the cart owned by userID.
func (r *Repository) FindCartByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// InsertCart creates a cart for userID unless one already exists.
func (r *Repository) InsertCart(ctx context.Context, userID uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Exec(insertCartSQL, uuid.New(), userID, now, now).Error
}

// UpsertLine adds quantity to the (cart, variant) line in a single statement, creating
// it with priceAtAdd when absent. An existing line keeps its price_at_add. The merge is
// skipped, and false returned, when it would push the line above maxQuantity.
func (r *Repository) UpsertLine(ctx context.Context, cartID, variantID uuid.UUID, quantity int, priceAtAdd decimal.Decimal, maxQuantity int) (bool, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Exec(upsertLineSQL,
		uuid.New(), cartID, variantID, quantity, priceAtAdd, now, now,
		maxQuantity,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindLine loads the line for (cartID, variantID).
func (r *Repository) FindLine(ctx context.Context, cartID, variantID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND variant_id = ?", cartID, variantID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindLineByID loads itemID when it belongs to cartID.
func (r *Repository) FindLineByID(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateLineQuantity overwrites the quantity of itemID. It reports whether a row matched.
func (r *Repository) UpdateLineQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Updates(map[string]any{"quantity": quantity, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteLine removes itemID from cartID. It reports whether a row was removed.
func (r *Repository) DeleteLine(ctx context.Context, cartID, itemID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteAll empties the cart and returns the number of removed lines.
func (r *Repository) DeleteAll(ctx context.Context, cartID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

// ListLines returns the lines of cartID, oldest first.
func (r *Repository) ListLines(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
