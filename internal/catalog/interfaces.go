package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Reader is the read contract over live catalog rows.
type Reader interface {
	GetVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error)
}
