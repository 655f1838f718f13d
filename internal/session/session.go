// Package session holds the authenticated dashboard session: the backend's
// bearer token plus the user it belongs to and when it stops being valid.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
)

// Session is one logged-in user.
type Session struct {
	Token     string
	User      domain.User
	ExpiresAt time.Time
}

// Claims mirrors what the backend signs into its tokens.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// New builds a session from a backend token. When secret is set the HS256
// signature is verified; otherwise the claims are only decoded. A token
// without exp lives for fallbackTTL from now.
func New(token string, user domain.User, secret string, fallbackTTL time.Duration, now time.Time) (*Session, error) {
	claims, err := parseClaims(token, secret, now)
	if err != nil {
		return nil, err
	}

	if user.ID == 0 {
		user.ID = claims.UserID
	}
	if user.Role == "" {
		user.Role = claims.Role
	}

	expiresAt := now.Add(fallbackTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return &Session{Token: token, User: user, ExpiresAt: expiresAt}, nil
}

func parseClaims(token, secret string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	if secret == "" {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, &domain.ErrUnauthorized{Message: "Token inválido"}
		}
		return claims, nil
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, &domain.ErrUnauthorized{Message: "Sessão expirada"}
	case err != nil:
		return nil, &domain.ErrUnauthorized{Message: "Token inválido ou expirado"}
	}
	return claims, nil
}

// Expired reports whether the session is no longer usable at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Key is the cache key of the session: a hash, so raw tokens never sit in memory maps.
func (s *Session) Key() string {
	return Key(s.Token)
}

// Key hashes a bearer token into a cache key.
func Key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Info is the public view handed back to the dashboard.
func (s *Session) Info() domain.SessionInfo {
	return domain.SessionInfo{Token: s.Token, User: s.User, ExpiresAt: s.ExpiresAt}
}

type contextKey struct{}

// WithContext stores the session in ctx.
func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
