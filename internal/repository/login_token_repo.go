package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/01moynul/selecta-golang/internal/database"
	"github.com/01moynul/selecta-golang/internal/models"
)

type LoginTokenRepo struct {
	db *database.DB
}

func NewLoginTokenRepo(db *database.DB) *LoginTokenRepo {
	return &LoginTokenRepo{db: db}
}

func (r *LoginTokenRepo) Create(ctx context.Context, t *models.LoginToken) error {
	query := r.db.Rebind(`
		INSERT INTO login_tokens (id, user_id, redirect_to, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query, t.ID, t.UserID, t.RedirectTo, utc(t.ExpiresAt), utc(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert login token: %w", err)
	}
	return nil
}

func (r *LoginTokenRepo) Get(ctx context.Context, id string) (*models.LoginToken, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, redirect_to, expires_at, used_at, created_at
		FROM login_tokens
		WHERE id = ?`)

	var t models.LoginToken
	var used sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&t.ID, &t.UserID, &t.RedirectTo, &t.ExpiresAt, &used, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan login token: %w", err)
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UsedAt = timePtr(used)
	return &t, nil
}

// MarkUsed consumes a token. A token that was already used returns ErrConflict.
func (r *LoginTokenRepo) MarkUsed(ctx context.Context, id string, at time.Time) error {
	query := r.db.Rebind("UPDATE login_tokens SET used_at = ? WHERE id = ? AND used_at IS NULL")
	res, err := r.db.ExecContext(ctx, query, utc(at), id)
	if err != nil {
		return fmt.Errorf("mark login token: %w", err)
	}
	if err := expectOne(res); err != nil {
		return ErrConflict
	}
	return nil
}
