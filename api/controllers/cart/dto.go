package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// AddItemRequest adds quantity units of a variant to the caller's cart.
type AddItemRequest struct {
	VariantID uuid.UUID `json:"variant_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// UpdateItemRequest sets a line's quantity; zero or less removes the line.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type DisplayPrice struct {
	FinalPrice    decimal.Decimal  `json:"final_price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	DiscountLabel *string          `json:"discount_label,omitempty"`
	Discounted    bool             `json:"discounted"`
}

type CartItem struct {
	ID         uuid.UUID       `json:"id"`
	VariantID  uuid.UUID       `json:"variant_id"`
	Quantity   int             `json:"quantity"`
	PriceAtAdd decimal.Decimal `json:"price_at_add"`
}

type CartLine struct {
	CartItem
	VariantCode string          `json:"variant_code,omitempty"`
	Available   bool            `json:"available"`
	Display     *DisplayPrice   `json:"display,omitempty"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type CartResponse struct {
	CartID           uuid.UUID       `json:"cart_id"`
	Lines            []CartLine      `json:"lines"`
	ItemCount        int             `json:"item_count"`
	SnapshotSubtotal decimal.Decimal `json:"snapshot_subtotal"`
}

func newCartItem(item models.CartItem) CartItem {
	return CartItem{
		ID:         item.ID,
		VariantID:  item.VariantID,
		Quantity:   item.Quantity,
		PriceAtAdd: item.PriceAtAdd,
	}
}

func newCartResponse(view cartsvc.CartView) CartResponse {
	resp := CartResponse{
		CartID:           view.CartID,
		Lines:            make([]CartLine, 0, len(view.Lines)),
		SnapshotSubtotal: view.SnapshotSubtotal,
	}
	for _, line := range view.Lines {
		out := CartLine{
			CartItem:  newCartItem(line.Item),
			Available: line.Variant != nil,
			LineTotal: line.LineTotal,
		}
		if line.Variant != nil {
			out.VariantCode = line.Variant.Code
		}
		if line.Display != nil {
			out.Display = &DisplayPrice{
				FinalPrice:    line.Display.FinalPrice,
				OriginalPrice: line.Display.OriginalPrice,
				DiscountLabel: line.Display.DiscountLabel,
				Discounted:    line.Display.Discounted(),
			}
		}
		resp.ItemCount += line.Item.Quantity
		resp.Lines = append(resp.Lines, out)
	}
	return resp
}
