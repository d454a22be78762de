// Package auth gates every clinical endpoint behind the hosting platform's
// identity provider. The provider issues HS256 JWTs with the user's stable
// subject id and email; this package verifies them and puts the identity on
// the request context. Identity is never read from the request body.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified caller.
type Identity struct {
	Subject string
	Email   string
}

type contextKey struct{}

// FromContext returns the verified identity, if the request passed the gate.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// WithIdentity is for tests that exercise handlers directly.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Middleware rejects requests without a valid bearer token before any
// handler logic runs. 401 responses use the same JSON error shape as the
// handlers.
func Middleware(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				unauthorized(w)
				return
			}

			var c claims
			token, err := parser.ParseWithClaims(parts[1], &c, func(t *jwt.Token) (any, error) {
				return key, nil
			})
			if err != nil || !token.Valid || c.Subject == "" {
				unauthorized(w)
				return
			}

			id := Identity{Subject: c.Subject, Email: c.Email}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "you must be logged in"})
}
