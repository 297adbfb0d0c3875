package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// VariantPriceResponse is the storefront presentation of one variant's price.
type VariantPriceResponse struct {
	VariantID     uuid.UUID        `json:"variant_id"`
	ProductID     uuid.UUID        `json:"product_id"`
	ListPrice     decimal.Decimal  `json:"list_price"`
	FinalPrice    decimal.Decimal  `json:"final_price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	DiscountLabel *string          `json:"discount_label,omitempty"`
	Discounted    bool             `json:"discounted"`
	PromotionID   *uuid.UUID       `json:"promotion_id,omitempty"`
	Level         string           `json:"promotion_level"`
}

// ProductPricesResponse lists the price of every live variant of a product.
type ProductPricesResponse struct {
	ProductID uuid.UUID              `json:"product_id"`
	Variants  []VariantPriceResponse `json:"variants"`
}

func newVariantPriceResponse(quote pricing.VariantQuote) VariantPriceResponse {
	return VariantPriceResponse{
		VariantID:     quote.Variant.ID,
		ProductID:     quote.Product.ID,
		ListPrice:     quote.Variant.ListPrice,
		FinalPrice:    quote.Quote.FinalPrice,
		OriginalPrice: quote.Quote.OriginalPrice,
		DiscountLabel: quote.Quote.DiscountLabel,
		Discounted:    quote.Quote.Discounted(),
		PromotionID:   quote.PromotionID,
		Level:         string(quote.Level),
	}
}

// VariantPrice quotes a variant against the promotions live right now.
func VariantPrice(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		variantID, err := validators.ParseUUIDParam(r, "variantID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.QuoteVariant(r.Context(), variantID, time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newVariantPriceResponse(quote))
	}
}

// ProductPrices quotes every live variant of a product in one response.
func ProductPrices(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quotes, err := svc.QuoteProduct(r.Context(), productID, time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := ProductPricesResponse{ProductID: productID, Variants: make([]VariantPriceResponse, 0, len(quotes))}
		for _, quote := range quotes {
			resp.Variants = append(resp.Variants, newVariantPriceResponse(quote))
		}
		responses.WriteSuccess(w, resp)
	}
}
