package promotions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

func newAdmin(t *testing.T) (AdminService, *Repository, *gorm.DB) {
	t.Helper()
	client := dbtest.OpenClient(t)
	repo := NewRepository(client.DB())
	svc, err := NewAdminService(AdminParams{
		Repo:    repo,
		Catalog: catalog.NewRepository(client.DB()),
		Tx:      client,
	})
	require.NoError(t, err)
	return svc, repo, client.DB()
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code(), "unexpected error: %v", err)
}

func TestNewAdminServiceRequiresDependencies(t *testing.T) {
	_, err := NewAdminService(AdminParams{})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestAdminCreateValidation(t *testing.T) {
	svc, _, _ := newAdmin(t)
	ctx := context.Background()
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)

	tests := []struct {
		name string
		in   PromotionInput
	}{
		{name: "missing name", in: PromotionInput{Kind: enums.PromotionKindPercentage, Value: decimal.NewFromInt(10)}},
		{name: "unknown kind", in: PromotionInput{Name: "x", Kind: "bundle", Value: decimal.NewFromInt(10)}},
		{name: "unknown status", in: PromotionInput{Name: "x", Kind: enums.PromotionKindPercentage, Value: decimal.NewFromInt(10), Status: "paused"}},
		{name: "negative value", in: PromotionInput{Name: "x", Kind: enums.PromotionKindFixedAmount, Value: decimal.NewFromInt(-1)}},
		{name: "percentage above 100", in: PromotionInput{Name: "x", Kind: enums.PromotionKindPercentage, Value: decimal.NewFromInt(101)}},
		{name: "inverted window", in: PromotionInput{Name: "x", Kind: enums.PromotionKindPercentage, Value: decimal.NewFromInt(10), StartsAt: &start, EndsAt: &before}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			requireCode(t, err, pkgerrors.CodeValidation)
		})
	}
}

func TestAdminCreateUpdateGet(t *testing.T) {
	svc, _, _ := newAdmin(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, PromotionInput{Name: "Spring", Kind: enums.PromotionKindPercentage, Value: decimal.NewFromInt(20)})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, enums.PromotionStatusScheduled, created.Status)

	updated, err := svc.Update(ctx, created.ID, PromotionInput{
		Name:   "Spring Sale",
		Kind:   enums.PromotionKindFixedAmount,
		Value:  decimal.RequireFromString("7.50"),
		Status: enums.PromotionStatusActive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Spring Sale", updated.Name)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PromotionKindFixedAmount, got.Kind)
	assert.Equal(t, enums.PromotionStatusActive, got.Status)
	assert.True(t, got.Value.Equal(decimal.RequireFromString("7.5")))

	_, err = svc.Update(ctx, uuid.New(), PromotionInput{Name: "x", Kind: enums.PromotionKindPercentage, Value: decimal.NewFromInt(1)})
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = svc.Get(ctx, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestAdminLinkAndDelete(t *testing.T) {
	svc, repo, conn := newAdmin(t)
	ctx := context.Background()

	product := dbtest.MustCreateProduct(t, conn)
	variant := dbtest.MustCreateVariant(t, conn, product.ID, "50.00")
	promo, err := svc.Create(ctx, PromotionInput{Name: "Tee", Kind: enums.PromotionKindPercentage, Value: decimal.NewFromInt(10), Status: enums.PromotionStatusActive})
	require.NoError(t, err)

	productLink, err := svc.LinkProduct(ctx, promo.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, productLink.TargetsProduct(product.ID))

	_, err = svc.LinkProduct(ctx, promo.ID, product.ID)
	requireCode(t, err, pkgerrors.CodeConflict)

	variantLink, err := svc.LinkVariant(ctx, promo.ID, variant.ID)
	require.NoError(t, err)
	assert.True(t, variantLink.TargetsVariant(variant.ID))

	_, err = svc.LinkVariant(ctx, promo.ID, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = svc.LinkProduct(ctx, uuid.New(), product.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	got, err := svc.Get(ctx, promo.ID)
	require.NoError(t, err)
	assert.Len(t, got.Links, 2)

	require.NoError(t, svc.Unlink(ctx, promo.ID, productLink.ID))
	requireCode(t, svc.Unlink(ctx, promo.ID, productLink.ID), pkgerrors.CodeNotFound)

	require.NoError(t, svc.Delete(ctx, promo.ID))
	links, err := repo.LinksForVariant(ctx, variant.ID)
	require.NoError(t, err)
	assert.Empty(t, links, "deleting a promotion must drop its links")

	requireCode(t, svc.Delete(ctx, promo.ID), pkgerrors.CodeNotFound)
}

func TestLinkWriteErrorClassifiesConstraintFailures(t *testing.T) {
	_, repo, conn := newAdmin(t)
	ctx := context.Background()

	product := dbtest.MustCreateProduct(t, conn)
	promo := dbtest.MustCreatePromotion(t, conn, enums.PromotionKindPercentage, "10", enums.PromotionStatusActive, time.Now().UTC())
	dbtest.MustLinkProduct(t, conn, promo.ID, product.ID)

	// a second insert for the same target is what a concurrent link that passed FindLink runs into
	dup := &models.PromotionLink{PromotionID: promo.ID, ProductID: &product.ID}
	err := repo.CreateLink(ctx, dup)
	require.Error(t, err)
	requireCode(t, linkWriteError(err, dup), pkgerrors.CodeConflict)

	missing := uuid.New()
	gone := &models.PromotionLink{PromotionID: promo.ID, VariantID: &missing}
	err = repo.CreateLink(ctx, gone)
	require.Error(t, err)
	requireCode(t, linkWriteError(err, gone), pkgerrors.CodeNotFound)

	pgDup := &pgconn.PgError{Code: "23505", ConstraintName: "uq_promotion_links_product"}
	requireCode(t, linkWriteError(pgDup, dup), pkgerrors.CodeConflict)
	requireCode(t, linkWriteError(errors.New("connection reset by peer"), dup), pkgerrors.CodeStorage)
}

func TestAdminLinkRejectsSoftDeletedTarget(t *testing.T) {
	svc, _, conn := newAdmin(t)
	ctx := context.Background()

	product := dbtest.MustCreateProduct(t, conn)
	dbtest.MustSoftDelete(t, conn, "products", product.ID)
	promo, err := svc.Create(ctx, PromotionInput{Name: "Gone", Kind: enums.PromotionKindFixedAmount, Value: decimal.NewFromInt(3)})
	require.NoError(t, err)

	_, err = svc.LinkProduct(ctx, promo.ID, product.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestAdminListPaginates(t *testing.T) {
	svc, _, conn := newAdmin(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		promo := dbtest.MustCreatePromotion(t, conn, enums.PromotionKindPercentage, "5", enums.PromotionStatusActive, base.Add(time.Duration(i)*time.Hour))
		ids = append(ids, promo.ID)
	}
	dbtest.MustCreatePromotion(t, conn, enums.PromotionKindPercentage, "5", enums.PromotionStatusExpired, base.Add(5*time.Hour))

	active := enums.PromotionStatusActive
	page, err := svc.List(ctx, ListFilter{Status: &active, Params: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[0], page.Items[0].ID)
	require.NotEmpty(t, page.NextCursor)

	next, err := svc.List(ctx, ListFilter{Status: &active, Params: pagination.Params{Limit: 2, Cursor: page.NextCursor}})
	require.NoError(t, err)
	require.Len(t, next.Items, 1)
	assert.Equal(t, ids[2], next.Items[0].ID)
	assert.Empty(t, next.NextCursor)

	all, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 4)

	_, err = svc.List(ctx, ListFilter{Params: pagination.Params{Cursor: "not-a-cursor"}})
	requireCode(t, err, pkgerrors.CodeValidation)

	paused := enums.PromotionStatus("paused")
	_, err = svc.List(ctx, ListFilter{Status: &paused})
	requireCode(t, err, pkgerrors.CodeValidation)
}
