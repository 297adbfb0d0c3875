package promotions

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

var hundred = decimal.NewFromInt(100)

// PromotionInput is the writable shape of a promotion.
type PromotionInput struct {
	Name     string                `json:"name" validate:"required,max=200"`
	Kind     enums.PromotionKind   `json:"kind" validate:"required,oneof=percentage fixed_amount"`
	Value    decimal.Decimal       `json:"value"`
	Status   enums.PromotionStatus `json:"status" validate:"omitempty,oneof=scheduled active expired"`
	StartsAt *time.Time            `json:"starts_at"`
	EndsAt   *time.Time            `json:"ends_at"`
}

// TxRunner runs fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ListFilter narrows a promotion listing.
type ListFilter struct {
	Status *enums.PromotionStatus
	pagination.Params
}

// AdminParams groups dependencies for the administration service.
type AdminParams struct {
	Repo    *Repository
	Catalog catalog.Reader
	Tx      TxRunner
	Logger  *logger.Logger
}

// AdminService writes promotions and links on behalf of back-office users.
type AdminService interface {
	Create(ctx context.Context, in PromotionInput) (*models.Promotion, error)
	Update(ctx context.Context, id uuid.UUID, in PromotionInput) (*models.Promotion, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Promotion, error)
	List(ctx context.Context, filter ListFilter) (pagination.Page[models.Promotion], error)
	LinkProduct(ctx context.Context, promoID, productID uuid.UUID) (*models.PromotionLink, error)
	LinkVariant(ctx context.Context, promoID, variantID uuid.UUID) (*models.PromotionLink, error)
	Unlink(ctx context.Context, promoID, linkID uuid.UUID) error
}

type adminService struct {
	repo     *Repository
	catalog  catalog.Reader
	tx       TxRunner
	logg     *logger.Logger
	validate *validator.Validate
}

// NewAdminService builds the administration service with the required dependencies.
func NewAdminService(params AdminParams) (AdminService, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promotions repo is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog reader is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &adminService{
		repo:     params.Repo,
		catalog:  params.Catalog,
		tx:       params.Tx,
		logg:     logg,
		validate: validator.New(),
	}, nil
}

func (s *adminService) Create(ctx context.Context, in PromotionInput) (*models.Promotion, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	promo := &models.Promotion{}
	apply(promo, in)
	if err := s.repo.Create(ctx, promo); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create promotion")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"promotion_id": promo.ID, "kind": promo.Kind}), "promotion created")
	return promo, nil
}

func (s *adminService) Update(ctx context.Context, id uuid.UUID, in PromotionInput) (*models.Promotion, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	var updated *models.Promotion
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		promo, err := repo.FindByID(ctx, id)
		if err != nil {
			return notFoundOrStorage(err, "promotion")
		}
		apply(promo, in)
		if err := repo.Save(ctx, promo); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update promotion")
		}
		updated = promo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the promotion and its links in one transaction, so it stops
// resolving immediately.
func (s *adminService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		removed, err := s.repo.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "delete promotion")
		}
		if !removed {
			return pkgerrors.New(pkgerrors.CodeNotFound, "promotion not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "promotion_id", id), "promotion deleted")
	return nil
}

func (s *adminService) Get(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrStorage(err, "promotion")
	}
	return promo, nil
}

func (s *adminService) List(ctx context.Context, filter ListFilter) (pagination.Page[models.Promotion], error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return pagination.Page[models.Promotion]{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown promotion status").
			WithDetails(map[string]any{"status": string(*filter.Status)})
	}
	after, err := pagination.ParseCursor(filter.Cursor)
	if err != nil {
		return pagination.Page[models.Promotion]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor").
			WithDetails(map[string]any{"cursor": filter.Cursor})
	}
	rows, err := s.repo.List(ctx, filter.Status, after, pagination.LimitWithBuffer(filter.Limit))
	if err != nil {
		return pagination.Page[models.Promotion]{}, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list promotions")
	}
	return pagination.Trim(rows, filter.Limit, func(p models.Promotion) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	}), nil
}

func (s *adminService) LinkProduct(ctx context.Context, promoID, productID uuid.UUID) (*models.PromotionLink, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return nil, notFoundOrStorage(err, "product")
	}
	return s.link(ctx, &models.PromotionLink{PromotionID: promoID, ProductID: &productID})
}

func (s *adminService) LinkVariant(ctx context.Context, promoID, variantID uuid.UUID) (*models.PromotionLink, error) {
	if variantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}
	if _, err := s.catalog.GetVariant(ctx, variantID); err != nil {
		return nil, notFoundOrStorage(err, "variant")
	}
	return s.link(ctx, &models.PromotionLink{PromotionID: promoID, VariantID: &variantID})
}

func (s *adminService) link(ctx context.Context, link *models.PromotionLink) (*models.PromotionLink, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, link.PromotionID); err != nil {
			return notFoundOrStorage(err, "promotion")
		}
		existing, err := repo.FindLink(ctx, link.PromotionID, link.ProductID, link.VariantID)
		switch {
		case err == nil:
			return pkgerrors.New(pkgerrors.CodeConflict, "promotion already linked").
				WithDetails(map[string]any{"link_id": existing.ID})
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "find promotion link")
		}
		if err := repo.CreateLink(ctx, link); err != nil {
			return linkWriteError(err, link)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (s *adminService) Unlink(ctx context.Context, promoID, linkID uuid.UUID) error {
	removed, err := s.repo.DeleteLink(ctx, promoID, linkID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "delete promotion link")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "promotion link not found")
	}
	return nil
}

// check enforces the data-entry rules. Percentages above 100 are rejected here
// even though the calculator would clamp them.
func (s *adminService) check(in PromotionInput) error {
	if err := s.validate.Struct(in); err != nil {
		details := map[string]string{}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				details[fe.Field()] = fe.Tag()
			}
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid promotion").WithDetails(details)
	}
	if in.Value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "value must not be negative").
			WithDetails(map[string]any{"value": in.Value.String()})
	}
	if in.Kind == enums.PromotionKindPercentage && in.Value.GreaterThan(hundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage must be between 0 and 100").
			WithDetails(map[string]any{"value": in.Value.String()})
	}
	if in.StartsAt != nil && in.EndsAt != nil && in.EndsAt.Before(*in.StartsAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "ends_at must not be before starts_at")
	}
	return nil
}

func apply(promo *models.Promotion, in PromotionInput) {
	promo.Name = in.Name
	promo.Kind = in.Kind
	promo.Value = in.Value
	promo.Status = in.Status
	if promo.Status == "" {
		promo.Status = enums.PromotionStatusScheduled
	}
	promo.StartsAt = in.StartsAt
	promo.EndsAt = in.EndsAt
}

// linkWriteError classifies a failed link insert. A concurrent link of the same
// target loses to the unique index; a target deleted meanwhile fails its foreign key.
func linkWriteError(err error, link *models.PromotionLink) error {
	details := map[string]any{"promotion_id": link.PromotionID}
	if link.ProductID != nil {
		details["product_id"] = *link.ProductID
	}
	if link.VariantID != nil {
		details["variant_id"] = *link.VariantID
	}
	switch {
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "promotion already linked").WithDetails(details)
	case db.IsForeignKeyViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "promotion or link target not found").WithDetails(details)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create promotion link")
	}
}

func notFoundOrStorage(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, what+" not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load "+what)
}
