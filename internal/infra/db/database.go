package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"booklister/internal/pkg/config"
)

func Connect(cfg config.DBConfig) (*sqlx.DB, func(), error) {
	db, err := sqlx.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// modernc sqlite serializes writes internally; a single connection
	// avoids SQLITE_BUSY under concurrent publishes.
	db.SetMaxOpenConns(1)

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			fmt.Printf("Error closing database: %v\n", err)
		}
	}

	return db, cleanup, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS books(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  ai_title TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  author TEXT NOT NULL DEFAULT '',
  publisher TEXT NOT NULL DEFAULT '',
  year TEXT NOT NULL DEFAULT '',
  language TEXT NOT NULL DEFAULT '',
  edition TEXT NOT NULL DEFAULT '',
  format TEXT NOT NULL DEFAULT '',
  series TEXT NOT NULL DEFAULT '',
  condition_grade TEXT NOT NULL DEFAULT 'good',
  price TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL DEFAULT 1,
  specifics TEXT NOT NULL DEFAULT '{}',
  weight_pounds REAL NOT NULL DEFAULT 0,
  weight_ounces REAL NOT NULL DEFAULT 0,
  ebay_category_id TEXT NOT NULL DEFAULT '',
  sku TEXT NOT NULL DEFAULT '',
  ebay_offer_id TEXT NOT NULL DEFAULT '',
  ebay_listing_id TEXT NOT NULL DEFAULT '',
  publish_status TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL DEFAULT (datetime('now')),
  updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS book_images(
  book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  path TEXT NOT NULL,
  PRIMARY KEY(book_id, position)
);

CREATE TABLE IF NOT EXISTS policy_defaults(
  marketplace_id TEXT PRIMARY KEY,
  payment_policy_id TEXT NOT NULL DEFAULT '',
  return_policy_id TEXT NOT NULL DEFAULT '',
  fulfillment_policy_id TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`
	_, err := db.Exec(schema)
	return err
}
