package database

import (
	"context"
	"fmt"
)

// sqliteSchema mirrors migrations/postgres for local runs and tests.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		full_name     TEXT NOT NULL,
		phone         TEXT,
		password_hash TEXT NOT NULL,
		created_at    DATETIME NOT NULL,
		updated_at    DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id       INTEGER PRIMARY KEY,
		name     TEXT NOT NULL,
		category TEXT NOT NULL,
		price    NUMERIC NOT NULL,
		image    TEXT NOT NULL DEFAULT '',
		active   BOOLEAN NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id           TEXT PRIMARY KEY,
		customer_id  TEXT NOT NULL,
		status       TEXT NOT NULL,
		total        NUMERIC NOT NULL,
		is_gift      BOOLEAN NOT NULL DEFAULT 0,
		created_at   DATETIME NOT NULL,
		completed_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id    TEXT NOT NULL,
		product_id  INTEGER NOT NULL,
		basket_name TEXT NOT NULL,
		quantity    INTEGER NOT NULL,
		unit_price  NUMERIC NOT NULL,
		is_gift     BOOLEAN NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS pending_gifts (
		id                   TEXT PRIMARY KEY,
		order_id             TEXT NOT NULL,
		recipient_email      TEXT,
		recipient_name       TEXT,
		sender_name          TEXT,
		basket_name          TEXT,
		personal_note        TEXT,
		created_at           DATETIME NOT NULL,
		shipping_completed   BOOLEAN NOT NULL DEFAULT 0,
		reminder_sent_at     DATETIME,
		shipping_name        TEXT,
		shipping_address     TEXT,
		shipping_city        TEXT,
		shipping_postal_code TEXT,
		shipping_phone       TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id          TEXT PRIMARY KEY,
		order_id    TEXT NOT NULL UNIQUE,
		customer_id TEXT NOT NULL,
		rating      INTEGER NOT NULL,
		comment     TEXT NOT NULL DEFAULT '',
		created_at  DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS review_reminders (
		order_id       TEXT PRIMARY KEY,
		customer_id    TEXT NOT NULL,
		reminder_count INTEGER NOT NULL,
		last_sent_at   DATETIME NOT NULL,
		next_send_at   DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS login_tokens (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		redirect_to TEXT NOT NULL,
		expires_at  DATETIME NOT NULL,
		used_at     DATETIME,
		created_at  DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cart_storage (
		storage_key TEXT PRIMARY KEY,
		payload     TEXT NOT NULL,
		updated_at  DATETIME NOT NULL
	)`,
}

// Migrate creates the schema for SQLite pools. MySQL and Postgres databases
// are migrated out of band from the files under migrations/.
func Migrate(ctx context.Context, db *DB) error {
	if db.Dialect != SQLite {
		return nil
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
