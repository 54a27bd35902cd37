// Package session binds signed session tokens to user identities.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"warbler/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// Issuer is the iss claim on every session token.
	Issuer = "warbler-api"
	// Audience is the aud claim on every session token.
	Audience = "warbler-client"

	revokedKeyPrefix = "session:revoked:"
)

// ErrInvalidSession covers every reason a token does not resolve to a user:
// bad signature, wrong issuer or audience, expiry, or revocation.
var ErrInvalidSession = errors.New("invalid session")

// Context is the identity attached to a request. CurrentUserID is nil for
// anonymous requests.
type Context struct {
	CurrentUserID *uint
	TokenID       string
}

// Anonymous is the Context of a request with no session.
func Anonymous() Context {
	return Context{}
}

// UserID returns the signed-in user's id and whether there is one.
func (c Context) UserID() (uint, bool) {
	if c.CurrentUserID == nil {
		return 0, false
	}
	return *c.CurrentUserID, true
}

// Manager issues, resolves and revokes session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	rdb    *redis.Client
	now    func() time.Time
}

// NewManager returns a Manager signing with secret. rdb may be nil, in which
// case tokens cannot be revoked before they expire.
func NewManager(secret string, ttl time.Duration, rdb *redis.Client) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		rdb:    rdb,
		now:    time.Now,
	}
}

// TTL is how long issued tokens stay valid.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a new token for userID.
func (m *Manager) Issue(userID uint) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("session secret not configured")
	}

	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Resolve turns a token into a Context. Any failure is ErrInvalidSession.
func (m *Manager) Resolve(ctx context.Context, tokenString string) (Context, error) {
	if tokenString == "" {
		return Anonymous(), ErrInvalidSession
	}

	claims, err := m.parse(tokenString)
	if err != nil {
		return Anonymous(), err
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return Anonymous(), ErrInvalidSession
	}

	if claims.ID != "" && m.rdb != nil {
		revoked, err := m.rdb.Exists(ctx, revokedKeyPrefix+claims.ID).Result()
		if err != nil {
			middleware.Logger.WarnContext(ctx, "session revocation check failed", slog.String("error", err.Error()))
		} else if revoked > 0 {
			return Anonymous(), ErrInvalidSession
		}
	}

	id := uint(userID)
	return Context{CurrentUserID: &id, TokenID: claims.ID}, nil
}

// Revoke blacklists the token until it would have expired anyway. Invalid
// tokens are ignored.
func (m *Manager) Revoke(ctx context.Context, tokenString string) error {
	claims, err := m.parse(tokenString)
	if err != nil || claims.ID == "" {
		return nil
	}

	if m.rdb == nil {
		middleware.Logger.WarnContext(ctx, "session revocation skipped: redis unavailable",
			slog.String("jti", claims.ID),
		)
		return nil
	}

	remaining := claims.ExpiresAt.Time.Sub(m.now())
	if remaining <= 0 {
		return nil
	}

	if err := m.rdb.Set(ctx, revokedKeyPrefix+claims.ID, "1", remaining).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
