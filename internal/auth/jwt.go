package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenUsed    = errors.New("token already used")
)

const (
	purposeSession = "session"
	purposeLogin   = "login"

	// SessionTTL is how long a session token stays valid.
	SessionTTL = 72 * time.Hour
)

type claims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Signer signs and verifies HS256 tokens with a shared secret.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

// WithClock returns a copy of s that reads time from now.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	cp := *s
	cp.now = now
	return &cp
}

// GenerateToken creates a session token whose subject is userID.
func (s *Signer) GenerateToken(userID string) (string, error) {
	return s.sign(purposeSession, userID, "", SessionTTL)
}

// ValidateToken checks a session token and returns its subject.
func (s *Signer) ValidateToken(token string) (string, error) {
	c, err := s.parse(token, purposeSession)
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}

func (s *Signer) sign(purpose, subject, id string, ttl time.Duration) (string, error) {
	now := s.now()
	c := claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Signer) parse(token, purpose string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if c.Purpose != purpose || c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &c, nil
}
