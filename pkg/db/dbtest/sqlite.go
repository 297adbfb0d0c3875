// Package dbtest opens throwaway SQLite databases carrying the storefront schema.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/storefront-backend/pkg/db"
)

// Schema mirrors the goose migrations with SQLite types: the same foreign keys,
// checks and unique indexes. Money is TEXT so decimals round-trip exactly.
var Schema = []string{
	`CREATE TABLE products (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL,
		deleted_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX idx_products_slug_live ON products (slug) WHERE deleted_at IS NULL`,
	`CREATE TABLE product_variants (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		code TEXT NOT NULL,
		list_price TEXT NOT NULL,
		sourcing_status TEXT NOT NULL DEFAULT 'active',
		stock INTEGER NOT NULL DEFAULT 0,
		attributes TEXT NOT NULL DEFAULT '{}',
		deleted_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		CONSTRAINT chk_product_variants_list_price CHECK (CAST(list_price AS REAL) >= 0),
		CONSTRAINT chk_product_variants_sourcing_status CHECK (sourcing_status IN ('active', 'paused', 'discontinued'))
	)`,
	`CREATE INDEX idx_product_variants_product_id ON product_variants (product_id)`,
	`CREATE UNIQUE INDEX idx_product_variants_code_live ON product_variants (code) WHERE deleted_at IS NULL`,
	`CREATE TABLE promotions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		value TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'scheduled',
		starts_at DATETIME,
		ends_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		CONSTRAINT chk_promotions_kind CHECK (kind IN ('percentage', 'fixed_amount')),
		CONSTRAINT chk_promotions_status CHECK (status IN ('scheduled', 'active', 'expired')),
		CONSTRAINT chk_promotions_value CHECK (CAST(value AS REAL) >= 0),
		CONSTRAINT chk_promotions_window CHECK (starts_at IS NULL OR ends_at IS NULL OR starts_at <= ends_at)
	)`,
	`CREATE TABLE promotion_links (
		id TEXT PRIMARY KEY,
		promotion_id TEXT NOT NULL REFERENCES promotions(id) ON DELETE CASCADE,
		product_id TEXT REFERENCES products(id) ON DELETE CASCADE,
		variant_id TEXT REFERENCES product_variants(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL,
		CONSTRAINT chk_promotion_links_target CHECK ((product_id IS NULL) <> (variant_id IS NULL))
	)`,
	`CREATE INDEX idx_promotion_links_product_id ON promotion_links (product_id) WHERE product_id IS NOT NULL`,
	`CREATE INDEX idx_promotion_links_variant_id ON promotion_links (variant_id) WHERE variant_id IS NOT NULL`,
	`CREATE UNIQUE INDEX uq_promotion_links_product ON promotion_links (promotion_id, product_id) WHERE product_id IS NOT NULL`,
	`CREATE UNIQUE INDEX uq_promotion_links_variant ON promotion_links (promotion_id, variant_id) WHERE variant_id IS NOT NULL`,
	`CREATE TABLE carts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		CONSTRAINT uq_carts_user_id UNIQUE (user_id)
	)`,
	`CREATE TABLE cart_items (
		id TEXT PRIMARY KEY,
		cart_id TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
		variant_id TEXT NOT NULL REFERENCES product_variants(id),
		quantity INTEGER NOT NULL,
		price_at_add TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		CONSTRAINT uq_cart_items_cart_variant UNIQUE (cart_id, variant_id),
		CONSTRAINT chk_cart_items_quantity CHECK (quantity >= 1),
		CONSTRAINT chk_cart_items_price_at_add CHECK (CAST(price_at_add AS REAL) >= 0)
	)`,
	`CREATE INDEX idx_cart_items_cart_id ON cart_items (cart_id)`,
}

// Open returns a fresh in-memory database with the storefront schema applied.
// Each call gets its own database; it is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// a single connection keeps the shared-cache database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range Schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}

// OpenClient wraps Open in a db.Client so services that need transactions can be exercised.
func OpenClient(t testing.TB) *db.Client {
	t.Helper()
	return db.Wrap(Open(t), db.DialectSQLite)
}
