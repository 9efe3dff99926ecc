package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/triptech/fleetd/internal/app"
	"github.com/triptech/fleetd/internal/auth"
	"github.com/triptech/fleetd/internal/config"
)

type envelope struct {
	Success      bool            `json:"success"`
	Data         json.RawMessage `json:"data"`
	Error        string          `json:"error"`
	StatusCode   int             `json:"statusCode"`
	Message      string          `json:"message"`
	Notification string          `json:"notification"`
	Pagination   *pagination     `json:"pagination"`
}

type pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                "dev",
		HTTPAddr:           ":0",
		BaseURL:            "http://localhost",
		DBDSN:              "unused",
		JWTSecret:          "test-secret",
		LogLevel:           "error",
		TokenTTLHours:      24,
		RateLimitRPM:       120,
		DevCredentials:     true,
		AuditRetentionDays: 180,
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *pgxpool.Pool) {
	t.Helper()

	pool, cleanup := newTestDB(t)
	t.Cleanup(cleanup)

	srv := httptest.NewServer(app.NewRouter(pool, testConfig()))
	t.Cleanup(srv.Close)

	return srv, pool
}

// doJSON issues a request and decodes the response envelope. An empty token
// leaves the Authorization header unset.
func doJSON(t *testing.T, method, url, token string, body any) (int, envelope) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))

	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}

// auditActions returns the set of distinct actions in the audit log.
func auditActions(t *testing.T, pool *pgxpool.Pool) map[string]bool {
	t.Helper()

	rows, err := pool.Query(context.Background(), `SELECT DISTINCT action FROM audit_log`)
	require.NoError(t, err)
	defer rows.Close()

	actions := make(map[string]bool)
	for rows.Next() {
		var action string
		require.NoError(t, rows.Scan(&action))
		actions[action] = true
	}
	require.NoError(t, rows.Err())

	return actions
}

type testUser struct {
	ID       uuid.UUID
	Username string
	Email    string
	FullName string
	Company  string
	Role     auth.Role
	Token    string
}

// registerAndLogin creates an account through the public API and logs in
// with the generated credentials.
func registerAndLogin(t *testing.T, serverURL, email, fullName, company string, role auth.Role) testUser {
	t.Helper()

	status, env := doJSON(t, http.MethodPost, serverURL+"/api/auth/register", "", map[string]any{
		"email":        email,
		"full_name":    fullName,
		"company_name": company,
		"role":         role,
	})
	require.Equal(t, http.StatusCreated, status, "register failed: %s", env.Error)

	var registered struct {
		UserID      uuid.UUID `json:"user_id"`
		Username    string    `json:"username"`
		Credentials *struct {
			Username string `json:"username"`
			Password string `json:"password"`
		} `json:"credentials"`
	}
	decodeData(t, env, &registered)
	require.NotNil(t, registered.Credentials)

	status, env = doJSON(t, http.MethodPost, serverURL+"/api/auth/login", "", map[string]any{
		"username": registered.Credentials.Username,
		"password": registered.Credentials.Password,
		"role":     role,
	})
	require.Equal(t, http.StatusOK, status, "login failed: %s", env.Error)

	var logged struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &logged)
	require.NotEmpty(t, logged.Token)

	return testUser{
		ID:       registered.UserID,
		Username: registered.Username,
		Email:    email,
		FullName: fullName,
		Company:  company,
		Role:     role,
		Token:    logged.Token,
	}
}
