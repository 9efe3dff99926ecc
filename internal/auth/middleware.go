package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/triptech/fleetd/internal/apperrors"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const claimsContextKey contextKey = "auth_claims"

// RequireAuth returns middleware that guards protected routes. It extracts a
// bearer credential from the Authorization header, verifies it, and injects
// the claims into the request context. Absent, malformed, or unverifiable
// credentials are rejected with 401.
//
// The gate performs no role checks; role gating is each workflow's own
// responsibility.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				apperrors.WriteUnauthorized(w, "No token, authorization denied")
				return
			}

			claims, err := ValidateToken(token, secret)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("Token validation failed")
				apperrors.WriteUnauthorized(w, "Token is not valid")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext retrieves the authenticated claims from the request
// context. Returns nil if the request did not pass through RequireAuth.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}

	return token, true
}
