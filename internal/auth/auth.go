// Package auth resolves bearer credentials to a user identity. Tokens are
// HS256 JWTs whose subject is a users-table id; role and display name are
// loaded fresh on every request so a role change takes effect immediately.
// The auth protocol itself stays out of scope — this is credential
// resolution only.
package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ignite/marketing-console/internal/domain"
)

type contextKey struct{}

var actorKey contextKey

// ErrInvalidToken covers every credential failure: missing, malformed,
// expired, or referencing an unknown user.
var ErrInvalidToken = errors.New("invalid bearer token")

// Manager validates tokens and loads user identities.
type Manager struct {
	db     *sqlx.DB
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
}

// NewManager creates an auth manager.
func NewManager(db *sqlx.DB, secret string, ttl time.Duration, log *zap.Logger) *Manager {
	return &Manager{db: db, secret: []byte(secret), ttl: ttl, log: log}
}

// GenerateToken mints a signed token for a user id. Used by the seed command
// and tests.
func (m *Manager) GenerateToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Resolve verifies a raw token and returns the user it identifies.
func (m *Manager) Resolve(ctx context.Context, raw string) (*domain.Actor, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	actor := &domain.Actor{}
	err = m.db.QueryRowContext(ctx,
		`SELECT id, name, role FROM users WHERE id = $1`, claims.Subject,
	).Scan(&actor.ID, &actor.Name, &actor.Role)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return actor, nil
}

// Middleware requires a valid bearer credential and stores the resolved
// actor in the request context. Missing or invalid credentials yield 401.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(w, "missing bearer token")
			return
		}

		actor, err := m.Resolve(r.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if !errors.Is(err, ErrInvalidToken) {
				m.log.Error("credential resolution failed", zap.Error(err))
			}
			unauthorized(w, "invalid bearer token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

// FromContext returns the actor stored by Middleware, or nil.
func FromContext(ctx context.Context) *domain.Actor {
	actor, _ := ctx.Value(actorKey).(*domain.Actor)
	return actor
}

// WithActor injects an actor into a context. Test helper.
func WithActor(ctx context.Context, actor *domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
