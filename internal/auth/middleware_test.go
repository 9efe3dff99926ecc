package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/triptech/fleetd/internal/apperrors"
)

const testSecret = "middleware-test-secret"

func protectedHandler(t *testing.T, captured **Claims) http.Handler {
	return RequireAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireAuth_NoHeader(t *testing.T) {
	var claims *Claims
	rec := httptest.NewRecorder()

	protectedHandler(t, &claims).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, claims)

	var env apperrors.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.False(t, env.Success)
	require.Equal(t, http.StatusUnauthorized, env.StatusCode)
}

func TestRequireAuth_WrongScheme(t *testing.T) {
	var claims *Claims
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	protectedHandler(t, &claims).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	var claims *Claims
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bogus.token.value")
	protectedHandler(t, &claims).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, claims)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	userID := uuid.New()
	token, err := CreateToken(userID, "fleet_admin", RoleAdmin, testSecret, 1)
	require.NoError(t, err)

	var claims *Claims
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protectedHandler(t, &claims).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, claims)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "fleet_admin", claims.Username)
	require.Equal(t, RoleAdmin, claims.Role)
}

func TestClaimsFromContext_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Nil(t, ClaimsFromContext(req.Context()))
}
