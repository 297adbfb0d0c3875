package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// minorUnits is the number of decimal places money is rounded to.
const minorUnits = 2

var hundred = decimal.NewFromInt(100)

// Quote is a priced list price. OriginalPrice and DiscountLabel are set only when a
// promotion applied.
type Quote struct {
	FinalPrice    decimal.Decimal  `json:"final_price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	DiscountLabel *string          `json:"discount_label,omitempty"`
}

// Discounted reports whether a promotion changed the presentation of the price.
func (q Quote) Discounted() bool {
	return q.OriginalPrice != nil
}

// Price applies promo to listPrice. The final price is never negative and is
// rounded half-to-even to cents; no other code path rounds money.
func Price(listPrice decimal.Decimal, promo *models.Promotion) Quote {
	if promo == nil {
		return Quote{FinalPrice: listPrice}
	}

	var final decimal.Decimal
	var label string
	switch promo.Kind {
	case enums.PromotionKindPercentage:
		factor := decimal.NewFromInt(1).Sub(promo.Value.Div(hundred))
		final = listPrice.Mul(factor)
		label = "-" + promo.Value.String() + "%"
	case enums.PromotionKindFixedAmount:
		final = listPrice.Sub(promo.Value)
		label = "-" + promo.Value.StringFixed(minorUnits)
	default:
		return Quote{FinalPrice: listPrice}
	}

	if final.IsNegative() {
		final = decimal.Zero
	}
	final = final.RoundBank(minorUnits)

	original := listPrice
	return Quote{
		FinalPrice:    final,
		OriginalPrice: &original,
		DiscountLabel: &label,
	}
}
