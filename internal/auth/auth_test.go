package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/selecta-golang/internal/database/dbtest"
	"github.com/01moynul/selecta-golang/internal/repository"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func TestSessionTokenRoundTrip(t *testing.T) {
	clk := &clock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	s := NewSigner("test-secret").WithClock(clk.Now)

	tok, err := s.GenerateToken("user-1")
	require.NoError(t, err)

	sub, err := s.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)

	_, err = NewSigner("other-secret").WithClock(clk.Now).ValidateToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	clk.t = clk.t.Add(SessionTTL + time.Minute)
	_, err = s.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = s.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func newLoginTokens(t *testing.T, clk *clock) *LoginTokens {
	t.Helper()
	db := dbtest.Open(t)
	return NewLoginTokens(NewSigner("test-secret").WithClock(clk.Now), repository.NewLoginTokenRepo(db), 72*time.Hour)
}

func TestLoginTokenIsSingleUse(t *testing.T) {
	clk := &clock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	lt := newLoginTokens(t, clk)
	ctx := context.Background()

	tok, err := lt.Mint(ctx, "user-1", "/valoraciones?pedido=o-1&cesta=cesta-mediterranea")
	require.NoError(t, err)

	uid, redirect, err := lt.Consume(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)
	assert.Equal(t, "/valoraciones?pedido=o-1&cesta=cesta-mediterranea", redirect)

	_, _, err = lt.Consume(ctx, tok)
	assert.ErrorIs(t, err, ErrTokenUsed)
}

func TestLoginTokenExpires(t *testing.T) {
	clk := &clock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	lt := newLoginTokens(t, clk)
	ctx := context.Background()

	tok, err := lt.Mint(ctx, "user-1", "/")
	require.NoError(t, err)

	clk.t = clk.t.Add(73 * time.Hour)
	_, _, err = lt.Consume(ctx, tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSessionAndLoginTokensAreNotInterchangeable(t *testing.T) {
	clk := &clock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	lt := newLoginTokens(t, clk)
	ctx := context.Background()

	session, err := lt.signer.GenerateToken("user-1")
	require.NoError(t, err)
	_, _, err = lt.Consume(ctx, session)
	assert.ErrorIs(t, err, ErrInvalidToken)

	login, err := lt.Mint(ctx, "user-1", "/")
	require.NoError(t, err)
	_, err = lt.signer.ValidateToken(login)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
