package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string `gorm:"uniqueIndex"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&testModel{}))
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	client := Wrap(newTestDB(t), DialectSQLite)
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}))

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled-back"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, client.DB().Model(&testModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, DialectSQLite, client.Dialect())
	assert.NoError(t, client.Ping(ctx))
}

func TestIsUniqueViolation(t *testing.T) {
	conn := newTestDB(t)
	require.NoError(t, conn.Create(&testModel{Name: "dup"}).Error)
	err := conn.Create(&testModel{Name: "dup"}).Error
	require.Error(t, err)

	assert.True(t, IsUniqueViolation(err, ""))
	assert.False(t, IsUniqueViolation(err, "uq_other"))
	assert.False(t, IsUniqueViolation(nil, ""))
	assert.False(t, IsUniqueViolation(errors.New("timeout"), ""))

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_carts_user_id"}
	assert.True(t, IsUniqueViolation(pgErr, "uq_carts_user_id"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))

	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505", Constraint: "uq_cart_items_cart_variant"}, "uq_cart_items_cart_variant"))
}

type parentModel struct {
	ID int
}

type childModel struct {
	ID       int
	ParentID int
	Parent   parentModel `gorm:"foreignKey:ParentID"`
}

func TestIsForeignKeyViolation(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared&_foreign_keys=on"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&parentModel{}, &childModel{}))

	err = conn.Omit("Parent").Create(&childModel{ParentID: 42}).Error
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err, ""))
	assert.False(t, IsUniqueViolation(err, ""))
	assert.False(t, IsForeignKeyViolation(nil, ""))
	assert.False(t, IsForeignKeyViolation(errors.New("timeout"), ""))

	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503", ConstraintName: "cart_items_variant_id_fkey"}, "cart_items_variant_id_fkey"))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503", ConstraintName: "cart_items_cart_id_fkey"}, "cart_items_variant_id_fkey"))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}, ""))
	assert.True(t, IsForeignKeyViolation(&pq.Error{Code: "23503"}, ""))
}
