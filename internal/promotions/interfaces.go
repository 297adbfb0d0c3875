package promotions

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// LinkReader fetches promotion links with their promotions attached.
type LinkReader interface {
	LinksForVariant(ctx context.Context, variantID uuid.UUID) ([]models.PromotionLink, error)
	LinksForProduct(ctx context.Context, productID uuid.UUID) ([]models.PromotionLink, error)
}

var _ LinkReader = (*Repository)(nil)
