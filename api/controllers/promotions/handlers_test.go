package promotions

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

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	promosvc "github.com/angelmondragon/storefront-backend/internal/promotions"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type envelope[T any] struct {
	Data  T `json:"data"`
	Error struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}

type testServer struct {
	router http.Handler
	conn   *gorm.DB
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	client := dbtest.OpenClient(t)
	svc, err := promosvc.NewAdminService(promosvc.AdminParams{
		Repo:    promosvc.NewRepository(client.DB()),
		Catalog: catalog.NewRepository(client.DB()),
		Tx:      client,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api/v1/admin/promotions", func(r chi.Router) {
		r.Get("/", AdminListPromotions(svc, nil))
		r.Post("/", AdminCreatePromotion(svc, nil))
		r.Route("/{promotionID}", func(r chi.Router) {
			r.Get("/", AdminGetPromotion(svc, nil))
			r.Put("/", AdminUpdatePromotion(svc, nil))
			r.Delete("/", AdminDeletePromotion(svc, nil))
			r.Post("/links", AdminLinkPromotion(svc, nil))
			r.Delete("/links/{linkID}", AdminUnlinkPromotion(svc, nil))
		})
	})
	return testServer{router: r, conn: client.DB()}
}

func (s testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)
	return resp
}

func TestPromotionLifecycle(t *testing.T) {
	s := newTestServer(t)
	product := dbtest.MustCreateProduct(t, s.conn)
	variant := dbtest.MustCreateVariant(t, s.conn, product.ID, "50.00")

	created := s.do(http.MethodPost, "/api/v1/admin/promotions",
		`{"name":"Spring sale","kind":"percentage","value":"15","status":"active","starts_at":"2026-03-01T00:00:00Z","ends_at":"2026-04-01T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	promo := decode[Promotion](t, created).Data
	assert.Equal(t, "percentage", promo.Kind)
	assert.Equal(t, "active", promo.Status)
	assert.Equal(t, "15", promo.Value.String())
	base := "/api/v1/admin/promotions/" + promo.ID.String()

	linked := s.do(http.MethodPost, base+"/links", `{"variant_id":"`+variant.ID.String()+`"}`)
	require.Equal(t, http.StatusCreated, linked.Code, linked.Body.String())
	link := decode[Link](t, linked).Data
	require.NotNil(t, link.VariantID)
	assert.Nil(t, link.ProductID)

	dup := s.do(http.MethodPost, base+"/links", `{"variant_id":"`+variant.ID.String()+`"}`)
	assert.Equal(t, http.StatusConflict, dup.Code)

	productLink := s.do(http.MethodPost, base+"/links", `{"product_id":"`+product.ID.String()+`"}`)
	require.Equal(t, http.StatusCreated, productLink.Code)

	got := decode[Promotion](t, s.do(http.MethodGet, base, "")).Data
	assert.Len(t, got.Links, 2)

	updated := s.do(http.MethodPut, base, `{"name":"Spring sale","kind":"fixed_amount","value":"5.00","status":"expired"}`)
	require.Equal(t, http.StatusOK, updated.Code, updated.Body.String())
	assert.Equal(t, "expired", decode[Promotion](t, updated).Data.Status)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, base+"/links/"+link.ID.String(), "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, base+"/links/"+link.ID.String(), "").Code)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, base, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, base, "").Code)
}

func TestCreatePromotionValidation(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"kind":"percentage","value":"10"}`},
		{"unknown kind", `{"name":"x","kind":"bogo","value":"10"}`},
		{"percentage above 100", `{"name":"x","kind":"percentage","value":"120"}`},
		{"negative value", `{"name":"x","kind":"fixed_amount","value":"-1"}`},
		{"inverted window", `{"name":"x","kind":"fixed_amount","value":"1","starts_at":"2026-05-01T00:00:00Z","ends_at":"2026-04-01T00:00:00Z"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(http.MethodPost, "/api/v1/admin/promotions", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, string(pkgerrors.CodeValidation), decode[struct{}](t, resp).Error.Code)
		})
	}
}

func TestLinkRequestNeedsExactlyOneTarget(t *testing.T) {
	s := newTestServer(t)
	base := "/api/v1/admin/promotions/" + uuid.NewString()

	neither := s.do(http.MethodPost, base+"/links", `{}`)
	assert.Equal(t, http.StatusBadRequest, neither.Code)

	both := s.do(http.MethodPost, base+"/links", `{"product_id":"`+uuid.NewString()+`","variant_id":"`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusBadRequest, both.Code)
}

func TestLinkUnknownTargets(t *testing.T) {
	s := newTestServer(t)
	product := dbtest.MustCreateProduct(t, s.conn)

	missingPromo := s.do(http.MethodPost, "/api/v1/admin/promotions/"+uuid.NewString()+"/links", `{"product_id":"`+product.ID.String()+`"}`)
	assert.Equal(t, http.StatusNotFound, missingPromo.Code)

	created := s.do(http.MethodPost, "/api/v1/admin/promotions", `{"name":"x","kind":"fixed_amount","value":"1"}`)
	require.Equal(t, http.StatusCreated, created.Code)
	promo := decode[Promotion](t, created).Data
	assert.Equal(t, "scheduled", promo.Status)

	missingVariant := s.do(http.MethodPost, "/api/v1/admin/promotions/"+promo.ID.String()+"/links", `{"variant_id":"`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusNotFound, missingVariant.Code)
}

func TestPromotionBadPathParam(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(http.MethodGet, "/api/v1/admin/promotions/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListPromotions(t *testing.T) {
	s := newTestServer(t)
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	first := dbtest.MustCreatePromotion(t, s.conn, enums.PromotionKindPercentage, "10", enums.PromotionStatusActive, base)
	dbtest.MustCreatePromotion(t, s.conn, enums.PromotionKindPercentage, "20", enums.PromotionStatusScheduled, base.Add(time.Hour))
	last := dbtest.MustCreatePromotion(t, s.conn, enums.PromotionKindFixedAmount, "2", enums.PromotionStatusActive, base.Add(2*time.Hour))

	resp := s.do(http.MethodGet, "/api/v1/admin/promotions?status=active&limit=1", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	page := decode[pagination.Page[Promotion]](t, resp).Data
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.ID, page.Items[0].ID)
	require.NotEmpty(t, page.NextCursor)

	resp = s.do(http.MethodGet, "/api/v1/admin/promotions?status=active&limit=1&cursor="+page.NextCursor, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	page = decode[pagination.Page[Promotion]](t, resp).Data
	require.Len(t, page.Items, 1)
	assert.Equal(t, last.ID, page.Items[0].ID)
	assert.Empty(t, page.NextCursor)

	all := decode[pagination.Page[Promotion]](t, s.do(http.MethodGet, "/api/v1/admin/promotions", "")).Data
	assert.Len(t, all.Items, 3)

	for _, query := range []string{"?status=paused", "?limit=0", "?limit=abc", "?cursor=garbage!"} {
		resp := s.do(http.MethodGet, "/api/v1/admin/promotions"+query, "")
		assert.Equal(t, http.StatusBadRequest, resp.Code, query)
	}
}
