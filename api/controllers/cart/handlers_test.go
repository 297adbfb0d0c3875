package cart

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/internal/promotions"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type envelope[T any] struct {
	Data  T `json:"data"`
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

type testServer struct {
	router http.Handler
	conn   *gorm.DB
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	conn := dbtest.Open(t)
	quoter, err := pricing.NewService(pricing.ServiceParams{
		Catalog: catalog.NewRepository(conn),
		Links:   promotions.NewRepository(conn),
	})
	require.NoError(t, err)
	svc, err := cartsvc.NewService(cartsvc.ServiceParams{Repo: cartsvc.NewRepository(conn), Pricing: quoter})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", CartFetch(svc, nil))
		r.Delete("/", CartClear(svc, nil))
		r.Post("/items", CartAddItem(svc, nil))
		r.Patch("/items/{itemID}", CartUpdateItem(svc, nil))
		r.Delete("/items/{itemID}", CartRemoveItem(svc, nil))
	})
	return testServer{router: r, conn: conn}
}

func (s testServer) do(t *testing.T, userID uuid.UUID, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if userID != uuid.Nil {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	}
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return out
}

func TestCartFlow(t *testing.T) {
	s := newTestServer(t)
	product := dbtest.MustCreateProduct(t, s.conn)
	variant := dbtest.MustCreateVariant(t, s.conn, product.ID, "100.00")
	promo := dbtest.MustCreatePromotion(t, s.conn, enums.PromotionKindPercentage, "20", enums.PromotionStatusActive, time.Now().Add(-time.Hour))
	dbtest.MustLinkProduct(t, s.conn, promo.ID, product.ID)
	user := uuid.New()

	add := s.do(t, user, http.MethodPost, "/api/v1/cart/items", `{"variant_id":"`+variant.ID.String()+`","quantity":2}`)
	require.Equal(t, http.StatusCreated, add.Code, add.Body.String())
	added := decode[CartItem](t, add)
	assert.Equal(t, "80", added.Data.PriceAtAdd.String())
	assert.Equal(t, 2, added.Data.Quantity)

	again := s.do(t, user, http.MethodPost, "/api/v1/cart/items", `{"variant_id":"`+variant.ID.String()+`","quantity":1}`)
	require.Equal(t, http.StatusCreated, again.Code)
	assert.Equal(t, added.Data.ID, decode[CartItem](t, again).Data.ID)

	fetch := s.do(t, user, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, fetch.Code)
	view := decode[CartResponse](t, fetch).Data
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 3, view.ItemCount)
	assert.Equal(t, "240", view.SnapshotSubtotal.String())
	require.NotNil(t, view.Lines[0].Display)
	require.NotNil(t, view.Lines[0].Display.DiscountLabel)
	assert.Equal(t, "-20%", *view.Lines[0].Display.DiscountLabel)
	assert.True(t, view.Lines[0].Display.Discounted)
	assert.True(t, view.Lines[0].Available)

	itemPath := "/api/v1/cart/items/" + added.Data.ID.String()
	patch := s.do(t, user, http.MethodPatch, itemPath, `{"quantity":5}`)
	require.Equal(t, http.StatusOK, patch.Code)
	assert.Equal(t, 5, decode[CartItem](t, patch).Data.Quantity)

	zero := s.do(t, user, http.MethodPatch, itemPath, `{"quantity":0}`)
	assert.Equal(t, http.StatusNoContent, zero.Code)

	gone := s.do(t, user, http.MethodDelete, itemPath, "")
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

func TestCartAddRejectsInvalidQuantity(t *testing.T) {
	s := newTestServer(t)
	product := dbtest.MustCreateProduct(t, s.conn)
	variant := dbtest.MustCreateVariant(t, s.conn, product.ID, "10.00")

	resp := s.do(t, uuid.New(), http.MethodPost, "/api/v1/cart/items", `{"variant_id":"`+variant.ID.String()+`","quantity":-1}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCartAddUnknownVariant(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, uuid.New(), http.MethodPost, "/api/v1/cart/items", `{"variant_id":"`+uuid.NewString()+`","quantity":1}`)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeNotFound), decode[struct{}](t, resp).Error.Code)
}

func TestCartRequiresUser(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, uuid.Nil, http.MethodGet, "/api/v1/cart", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCartLinesAreScopedToOwner(t *testing.T) {
	s := newTestServer(t)
	product := dbtest.MustCreateProduct(t, s.conn)
	variant := dbtest.MustCreateVariant(t, s.conn, product.ID, "10.00")
	owner, intruder := uuid.New(), uuid.New()

	add := s.do(t, owner, http.MethodPost, "/api/v1/cart/items", `{"variant_id":"`+variant.ID.String()+`","quantity":1}`)
	require.Equal(t, http.StatusCreated, add.Code)
	itemID := decode[CartItem](t, add).Data.ID

	resp := s.do(t, intruder, http.MethodDelete, "/api/v1/cart/items/"+itemID.String(), "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	view := decode[CartResponse](t, s.do(t, owner, http.MethodGet, "/api/v1/cart", "")).Data
	assert.Len(t, view.Lines, 1)
}

func TestCartClear(t *testing.T) {
	s := newTestServer(t)
	product := dbtest.MustCreateProduct(t, s.conn)
	user := uuid.New()
	for _, price := range []string{"10.00", "20.00"} {
		variant := dbtest.MustCreateVariant(t, s.conn, product.ID, price)
		resp := s.do(t, user, http.MethodPost, "/api/v1/cart/items", `{"variant_id":"`+variant.ID.String()+`","quantity":1}`)
		require.Equal(t, http.StatusCreated, resp.Code)
	}

	assert.Equal(t, http.StatusNoContent, s.do(t, user, http.MethodDelete, "/api/v1/cart", "").Code)

	view := decode[CartResponse](t, s.do(t, user, http.MethodGet, "/api/v1/cart", "")).Data
	assert.Empty(t, view.Lines)
	assert.True(t, view.SnapshotSubtotal.IsZero())
}
