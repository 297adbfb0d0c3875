package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindCartByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	InsertCart(ctx context.Context, userID uuid.UUID) error
	UpsertLine(ctx context.Context, cartID, variantID uuid.UUID, quantity int, priceAtAdd decimal.Decimal, maxQuantity int) (bool, error)
	FindLine(ctx context.Context, cartID, variantID uuid.UUID) (*models.CartItem, error)
	FindLineByID(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error)
	UpdateLineQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) (bool, error)
	DeleteLine(ctx context.Context, cartID, itemID uuid.UUID) (bool, error)
	DeleteAll(ctx context.Context, cartID uuid.UUID) (int64, error)
	ListLines(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
}

// Quoter prices a variant at an instant.
type Quoter interface {
	QuoteVariant(ctx context.Context, variantID uuid.UUID, now time.Time) (pricing.VariantQuote, error)
}
