package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// DefaultMaxLineQuantity caps a single line when no limit is configured.
const DefaultMaxLineQuantity = 9999

// LineView is a stored cart line plus its live display price. Variant and Display
// are nil when the variant has since left the catalog.
type LineView struct {
	Item      models.CartItem        `json:"item"`
	Variant   *models.ProductVariant `json:"variant,omitempty"`
	Display   *pricing.Quote         `json:"display,omitempty"`
	LineTotal decimal.Decimal        `json:"line_total"`
}

// CartView lists a cart. SnapshotSubtotal sums price_at_add * quantity, which stays
// the pricing basis regardless of what Display shows.
type CartView struct {
	CartID           uuid.UUID       `json:"cart_id"`
	Lines            []LineView      `json:"lines"`
	SnapshotSubtotal decimal.Decimal `json:"snapshot_subtotal"`
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo            CartRepository
	Pricing         Quoter
	Logger          *logger.Logger
	Metrics         *metrics.StorefrontMetrics
	MaxLineQuantity int
	Now             func() time.Time
}

// Service owns the user to cart to line mapping.
type Service interface {
	EnsureCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, cartID, variantID uuid.UUID, quantity int, priceAtAdd decimal.Decimal) (*models.CartItem, error)
	AddVariant(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
	ListItems(ctx context.Context, cartID uuid.UUID) (CartView, error)
	GetCartForUser(ctx context.Context, userID uuid.UUID) (CartView, error)
}

type service struct {
	repo    CartRepository
	pricing Quoter
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
	maxQty  int
	now     func() time.Time
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repository is required")
	}
	if params.Pricing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pricing service is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	maxQty := params.MaxLineQuantity
	if maxQty <= 0 {
		maxQty = DefaultMaxLineQuantity
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:    params.Repo,
		pricing: params.Pricing,
		logg:    logg,
		metrics: params.Metrics,
		maxQty:  maxQty,
		now:     now,
	}, nil
}

// EnsureCart returns the user's cart, creating it on first use. Concurrent first
// calls race on the insert; the loser's insert is a no-op and both re-read the winner.
func (s *service) EnsureCart(ctx context.Context, userID uuid.UUID) (cart *models.Cart, err error) {
	defer s.observe(ctx, "ensure_cart", time.Now(), &err)

	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	cart, err = s.repo.FindCartByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageError(err, "load cart")
	}
	if err = s.repo.InsertCart(ctx, userID); err != nil {
		return nil, storageError(err, "create cart")
	}
	cart, err = s.repo.FindCartByUser(ctx, userID)
	if err != nil {
		return nil, storageError(err, "reload cart")
	}
	return cart, nil
}

// AddItem merges quantity into the (cart, variant) line. priceAtAdd only takes
// effect when the line is created.
func (s *service) AddItem(ctx context.Context, cartID, variantID uuid.UUID, quantity int, priceAtAdd decimal.Decimal) (item *models.CartItem, err error) {
	defer s.observe(ctx, "add_item", time.Now(), &err)

	if err = s.checkQuantity(quantity); err != nil {
		return nil, err
	}
	if priceAtAdd.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative").
			WithDetails(map[string]any{"price_at_add": priceAtAdd.String()})
	}

	applied, err := s.repo.UpsertLine(ctx, cartID, variantID, quantity, priceAtAdd, s.maxQty)
	if db.IsForeignKeyViolation(err, "") {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart or variant not found").
			WithDetails(map[string]any{"cart_id": cartID, "variant_id": variantID})
	}
	if err != nil {
		return nil, storageError(err, "add cart item")
	}
	if !applied {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidQuantity, "line quantity would exceed the limit").
			WithDetails(map[string]any{"max_quantity": s.maxQty})
	}

	item, err = s.repo.FindLine(ctx, cartID, variantID)
	if err != nil {
		return nil, storageError(err, "reload cart item")
	}
	return item, nil
}

// AddVariant quotes the variant now and adds it to the user's cart at that price.
// Sourcing status is not checked.
func (s *service) AddVariant(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*models.CartItem, error) {
	if err := s.checkQuantity(quantity); err != nil {
		return nil, err
	}
	cart, err := s.EnsureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	quote, err := s.pricing.QuoteVariant(ctx, variantID, s.now())
	if err != nil {
		return nil, err
	}
	return s.AddItem(s.logg.WithCartID(ctx, cart.ID.String()), cart.ID, variantID, quantity, quote.Quote.FinalPrice)
}

// UpdateQuantity sets the line quantity. Zero or less removes the line and returns nil.
func (s *service) UpdateQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) (item *models.CartItem, err error) {
	defer s.observe(ctx, "update_quantity", time.Now(), &err)

	if quantity <= 0 {
		err = s.deleteLine(ctx, cartID, itemID)
		return nil, err
	}
	if quantity > s.maxQty {
		return nil, s.quantityError(quantity)
	}

	found, err := s.repo.UpdateLineQuantity(ctx, cartID, itemID, quantity)
	if err != nil {
		return nil, storageError(err, "update cart item")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	item, err = s.repo.FindLineByID(ctx, cartID, itemID)
	if err != nil {
		return nil, storageError(err, "reload cart item")
	}
	return item, nil
}

func (s *service) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) (err error) {
	defer s.observe(ctx, "remove_item", time.Now(), &err)
	return s.deleteLine(ctx, cartID, itemID)
}

func (s *service) Clear(ctx context.Context, cartID uuid.UUID) (err error) {
	defer s.observe(ctx, "clear", time.Now(), &err)

	removed, err := s.repo.DeleteAll(ctx, cartID)
	if err != nil {
		return storageError(err, "clear cart")
	}
	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{"cart_id": cartID, "removed": removed}), "cart cleared")
	return nil
}

// ListItems returns the stored lines with a display price recomputed against the
// current promotions.
func (s *service) ListItems(ctx context.Context, cartID uuid.UUID) (view CartView, err error) {
	defer s.observe(ctx, "list_items", time.Now(), &err)

	items, err := s.repo.ListLines(ctx, cartID)
	if err != nil {
		return CartView{}, storageError(err, "list cart items")
	}

	now := s.now()
	view = CartView{CartID: cartID, Lines: make([]LineView, 0, len(items)), SnapshotSubtotal: decimal.Zero}
	for _, item := range items {
		line := LineView{
			Item:      item,
			LineTotal: item.PriceAtAdd.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		quoted, qerr := s.pricing.QuoteVariant(ctx, item.VariantID, now)
		switch {
		case qerr == nil:
			variant := quoted.Variant
			display := quoted.Quote
			line.Variant = &variant
			line.Display = &display
		case pkgerrors.HasCode(qerr, pkgerrors.CodeNotFound):
			s.logg.Debug(s.logg.WithField(ctx, "variant_id", item.VariantID), "cart line references a missing variant")
		default:
			return CartView{}, qerr
		}
		view.SnapshotSubtotal = view.SnapshotSubtotal.Add(line.LineTotal)
		view.Lines = append(view.Lines, line)
	}
	return view, nil
}

func (s *service) GetCartForUser(ctx context.Context, userID uuid.UUID) (CartView, error) {
	cart, err := s.EnsureCart(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	return s.ListItems(s.logg.WithCartID(ctx, cart.ID.String()), cart.ID)
}

func (s *service) deleteLine(ctx context.Context, cartID, itemID uuid.UUID) error {
	removed, err := s.repo.DeleteLine(ctx, cartID, itemID)
	if err != nil {
		return storageError(err, "remove cart item")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

func (s *service) checkQuantity(quantity int) error {
	if quantity < 1 || quantity > s.maxQty {
		return s.quantityError(quantity)
	}
	return nil
}

func (s *service) quantityError(quantity int) error {
	return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity must be a positive integer within the line limit").
		WithDetails(map[string]any{"quantity": quantity, "max_quantity": s.maxQty})
}

func (s *service) observe(ctx context.Context, op string, started time.Time, errp *error) {
	result := metrics.ResultOK
	if err := *errp; err != nil {
		result = metrics.ResultRejected
		if pkgerrors.HasCode(err, pkgerrors.CodeStorage) {
			result = metrics.ResultError
			s.logg.Error(s.logg.WithFields(s.logg.WithField(ctx, "op", op), pkgerrors.Dump(err).Fields()), "cart storage failure", err)
		}
	}
	s.metrics.ObserveCartOp(op, result, time.Since(started))
}

func storageError(err error, msg string) error {
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, msg)
}
