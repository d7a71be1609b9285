// Package dbtest opens throwaway SQLite databases carrying the storefront schema
// for repository and service tests.
package dbtest

import (
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  contact_name TEXT,
  company_name TEXT,
  email TEXT,
  address TEXT,
  city TEXT,
  region TEXT,
  postal_code TEXT,
  country TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  unit_price TEXT NOT NULL,
  discontinued INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS shippers (
  id TEXT PRIMARY KEY,
  company_name TEXT NOT NULL,
  phone TEXT,
  carrier_code TEXT NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT,
  payment_session_id TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'paid',
  currency TEXT NOT NULL,
  subtotal_minor INTEGER NOT NULL,
  shipping_minor INTEGER NOT NULL,
  total_minor INTEGER NOT NULL,
  email TEXT NOT NULL DEFAULT '',
  ship_target TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  region TEXT NOT NULL DEFAULT '',
  postal_code TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT '',
  carrier TEXT,
  tracking_number TEXT,
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_amount_minor INTEGER NOT NULL,
  amount_total_minor INTEGER NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS checkout_attempts (
  id TEXT PRIMARY KEY,
  gateway_session_id TEXT NOT NULL DEFAULT '',
  idempotency_key TEXT NOT NULL UNIQUE,
  fingerprint TEXT NOT NULL,
  web_session_id TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  cart_version INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'awaiting_payment',
  order_id TEXT,
  redirect_url TEXT NOT NULL,
  expires_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_checkout_attempts_gateway_session
  ON checkout_attempts (gateway_session_id) WHERE gateway_session_id <> '';`,
	`CREATE TABLE IF NOT EXISTS blog_entries (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  contents TEXT NOT NULL,
  author TEXT NOT NULL,
  posted_at DATETIME NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS blog_responses (
  id TEXT PRIMARY KEY,
  blog_entry_id TEXT NOT NULL,
  author TEXT NOT NULL,
  contents TEXT NOT NULL,
  responded_at DATETIME NOT NULL
);`,
}

// Open returns an in-memory SQLite database private to the calling test with
// every storefront table created. A single connection is used, so callers must
// not issue queries outside an open transaction while it is running.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return conn
}
