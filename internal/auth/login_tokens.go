package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/01moynul/selecta-golang/internal/models"
	"github.com/01moynul/selecta-golang/internal/repository"
)

// LoginTokenStore persists issued login tokens so each can be used once.
type LoginTokenStore interface {
	Create(ctx context.Context, t *models.LoginToken) error
	Get(ctx context.Context, id string) (*models.LoginToken, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
}

// LoginTokens mints and consumes single-use, time-boxed login links.
type LoginTokens struct {
	signer *Signer
	store  LoginTokenStore
	ttl    time.Duration
}

func NewLoginTokens(signer *Signer, store LoginTokenStore, ttl time.Duration) *LoginTokens {
	return &LoginTokens{signer: signer, store: store, ttl: ttl}
}

// Mint records a token for userID that will redirect to redirectTo once
// consumed, and returns its signed form.
func (l *LoginTokens) Mint(ctx context.Context, userID, redirectTo string) (string, error) {
	now := l.signer.now()
	rec := &models.LoginToken{
		ID:         uuid.NewString(),
		UserID:     userID,
		RedirectTo: redirectTo,
		ExpiresAt:  now.Add(l.ttl),
		CreatedAt:  now,
	}
	if err := l.store.Create(ctx, rec); err != nil {
		return "", fmt.Errorf("store login token: %w", err)
	}
	return l.signer.sign(purposeLogin, userID, rec.ID, l.ttl)
}

// Consume validates token, marks it used and returns the user id and redirect.
// A token can be consumed once; later attempts return ErrTokenUsed.
func (l *LoginTokens) Consume(ctx context.Context, token string) (userID, redirectTo string, err error) {
	c, err := l.signer.parse(token, purposeLogin)
	if err != nil {
		return "", "", err
	}

	rec, err := l.store.Get(ctx, c.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", "", ErrInvalidToken
	}
	if err != nil {
		return "", "", err
	}
	if rec.UserID != c.Subject {
		return "", "", ErrInvalidToken
	}

	now := l.signer.now()
	if rec.UsedAt != nil {
		return "", "", ErrTokenUsed
	}
	if !now.Before(rec.ExpiresAt) {
		return "", "", ErrTokenExpired
	}

	if err := l.store.MarkUsed(ctx, rec.ID, now); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return "", "", ErrTokenUsed
		}
		return "", "", err
	}
	return rec.UserID, rec.RedirectTo, nil
}
