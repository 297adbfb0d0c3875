package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/promotions"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// VariantQuote is the storefront price of one variant at one instant.
type VariantQuote struct {
	Variant     models.ProductVariant
	Product     models.Product
	Quote       Quote
	PromotionID *uuid.UUID
	Level       promotions.Level
}

// ServiceParams groups dependencies for the pricing service.
type ServiceParams struct {
	Catalog catalog.Reader
	Links   promotions.LinkReader
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
}

// Service quotes variants against the live promotion state.
type Service interface {
	QuoteVariant(ctx context.Context, variantID uuid.UUID, now time.Time) (VariantQuote, error)
	QuoteProduct(ctx context.Context, productID uuid.UUID, now time.Time) ([]VariantQuote, error)
}

type service struct {
	catalog catalog.Reader
	links   promotions.LinkReader
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewService builds a pricing service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog reader is required")
	}
	if params.Links == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promotion link reader is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		catalog: params.Catalog,
		links:   params.Links,
		logg:    logg,
		metrics: params.Metrics,
	}, nil
}

// QuoteVariant loads the variant and its product, resolves the applicable promotion
// and prices it. Catalog failures are returned; promotion lookups that fail fall back
// to the list price.
func (s *service) QuoteVariant(ctx context.Context, variantID uuid.UUID, now time.Time) (VariantQuote, error) {
	variant, err := s.catalog.GetVariant(ctx, variantID)
	if err != nil {
		return VariantQuote{}, catalogError(err, "variant")
	}
	product, err := s.catalog.GetProduct(ctx, variant.ProductID)
	if err != nil {
		return VariantQuote{}, catalogError(err, "product")
	}

	variantLinks, productLinks, err := s.loadLinks(ctx, variant.ID, product.ID)
	return s.price(ctx, *variant, *product, variantLinks, productLinks, err, now), nil
}

// QuoteProduct quotes every live variant of productID, ordered by code. Product
// links are loaded once for all variants. A product without live variants yields
// an empty list.
func (s *service) QuoteProduct(ctx context.Context, productID uuid.UUID, now time.Time) ([]VariantQuote, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, catalogError(err, "product")
	}
	variants, err := s.catalog.ListVariantsByProduct(ctx, product.ID)
	if err != nil {
		return nil, catalogError(err, "variants")
	}

	productLinks, productErr := s.links.LinksForProduct(ctx, product.ID)
	out := make([]VariantQuote, 0, len(variants))
	for _, variant := range variants {
		linkErr := productErr
		var variantLinks []models.PromotionLink
		if linkErr == nil {
			variantLinks, linkErr = s.links.LinksForVariant(ctx, variant.ID)
		}
		out = append(out, s.price(ctx, variant, *product, variantLinks, productLinks, linkErr, now))
	}
	return out, nil
}

// price resolves the winning promotion and applies it. A failed link lookup
// (linkErr) degrades to the list price.
func (s *service) price(ctx context.Context, variant models.ProductVariant, product models.Product, variantLinks, productLinks []models.PromotionLink, linkErr error, now time.Time) VariantQuote {
	out := VariantQuote{Variant: variant, Product: product, Level: promotions.LevelNone}

	if linkErr != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"variant_id": variant.ID, "product_id": product.ID})
		s.logg.Warn(s.logg.WithFields(logCtx, pkgerrors.Dump(linkErr).Fields()), "promotion lookup failed; quoting list price")
		s.metrics.IncResolution(metrics.ResolutionDegraded)
		out.Quote = Price(variant.ListPrice, nil)
		return out
	}

	promo, level := promotions.ResolveWithLevel(variant, product, variantLinks, productLinks, now)
	s.metrics.IncResolution(string(level))
	out.Level = level
	out.Quote = Price(variant.ListPrice, promo)
	if promo != nil {
		id := promo.ID
		out.PromotionID = &id
	}
	return out
}

func (s *service) loadLinks(ctx context.Context, variantID, productID uuid.UUID) ([]models.PromotionLink, []models.PromotionLink, error) {
	variantLinks, err := s.links.LinksForVariant(ctx, variantID)
	if err != nil {
		return nil, nil, err
	}
	productLinks, err := s.links.LinksForProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	return variantLinks, productLinks, nil
}

func catalogError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, what+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load "+what)
}
