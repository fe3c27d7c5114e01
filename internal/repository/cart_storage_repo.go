package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/01moynul/selecta-golang/internal/database"
)

// CartStorageRepo is a key/value table backing cart.Storage.
type CartStorageRepo struct {
	db  *database.DB
	now func() time.Time
}

func NewCartStorageRepo(db *database.DB) *CartStorageRepo {
	return &CartStorageRepo{db: db, now: time.Now}
}

func (r *CartStorageRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := r.db.Rebind("SELECT payload FROM cart_storage WHERE storage_key = ?")

	var payload string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cart storage: %w", err)
	}
	return []byte(payload), true, nil
}

func (r *CartStorageRepo) Set(ctx context.Context, key string, value []byte) error {
	var query string
	if r.db.Dialect == database.MySQL {
		query = `
			INSERT INTO cart_storage (storage_key, payload, updated_at) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)`
	} else {
		query = `
			INSERT INTO cart_storage (storage_key, payload, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (storage_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
	}

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), key, string(value), utc(r.now())); err != nil {
		return fmt.Errorf("write cart storage: %w", err)
	}
	return nil
}

func (r *CartStorageRepo) Delete(ctx context.Context, key string) error {
	query := r.db.Rebind("DELETE FROM cart_storage WHERE storage_key = ?")
	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete cart storage: %w", err)
	}
	return nil
}
