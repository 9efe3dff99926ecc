package integration

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/triptech/fleetd/internal/app"
	"github.com/triptech/fleetd/internal/auth"
)

func TestRegister_UsernameFromEmailAndDuplicate(t *testing.T) {
	srv, _ := newTestServer(t)

	status, env := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]any{
		"email":        "dispatch@acme.example",
		"full_name":    "Dana Dispatch",
		"company_name": "Acme Logistics",
		"role":         auth.RoleLogistics,
	})
	require.Equal(t, http.StatusCreated, status)
	require.True(t, env.Success)
	require.Equal(t, "Verification email sent to dispatch@acme.example", env.Notification)

	var registered struct {
		Username string `json:"username"`
		Status   string `json:"status"`
	}
	decodeData(t, env, &registered)
	require.Equal(t, "dispatch", registered.Username)
	require.Equal(t, "Pending", registered.Status)

	status, env = doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]any{
		"email":        "dispatch@acme.example",
		"full_name":    "Someone Else",
		"company_name": "Other Co",
		"role":         auth.RoleOwner,
	})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "Email already registered", env.Error)
	require.Equal(t, http.StatusConflict, env.StatusCode)
}

func TestRegister_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]any{
		"email": "missing-fields@acme.example",
	})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]any{
		"email":        "bad-role@acme.example",
		"full_name":    "Bad Role",
		"company_name": "Acme",
		"role":         "superuser",
	})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestRegister_CredentialsGatedByConfig(t *testing.T) {
	pool, cleanup := newTestDB(t)
	t.Cleanup(cleanup)

	cfg := testConfig()
	cfg.DevCredentials = false
	srv := httptest.NewServer(app.NewRouter(pool, cfg))
	t.Cleanup(srv.Close)

	status, env := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]any{
		"email":        "no-creds@acme.example",
		"full_name":    "No Creds",
		"company_name": "Acme",
		"role":         auth.RoleVendor,
	})
	require.Equal(t, http.StatusCreated, status)

	var registered struct {
		Username    string `json:"username"`
		Credentials *struct {
			Password string `json:"password"`
		} `json:"credentials"`
	}
	decodeData(t, env, &registered)
	require.Equal(t, "no-creds", registered.Username)
	require.Nil(t, registered.Credentials, "plaintext credentials must not leak when dev credentials are off")
}

func TestLogin_MismatchesAreIndistinguishable(t *testing.T) {
	srv, _ := newTestServer(t)

	user := registerAndLogin(t, srv.URL, "driver@acme.example", "Devin Driver", "Acme", auth.RoleOwner)

	cases := []map[string]any{
		{"username": "no-such-user", "password": "whatever1", "role": auth.RoleOwner},
		{"username": user.Username, "password": "wrong-password", "role": auth.RoleOwner},
		{"username": user.Username, "password": "whatever1", "role": auth.RoleVendor},
	}

	for _, body := range cases {
		status, env := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", body)
		require.Equal(t, http.StatusUnauthorized, status)
		require.Equal(t, "Invalid username or password", env.Error)
	}
}

func TestProfile_GetAndUpdate(t *testing.T) {
	srv, _ := newTestServer(t)

	user := registerAndLogin(t, srv.URL, "profile@acme.example", "Pat Profile", "Acme", auth.RoleLogistics)

	status, env := doJSON(t, http.MethodGet, srv.URL+"/api/auth/profile", user.Token, nil)
	require.Equal(t, http.StatusOK, status)

	var profile struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
		Phone    *string
	}
	decodeData(t, env, &profile)
	require.Equal(t, "profile@acme.example", profile.Email)
	require.Equal(t, "Pat Profile", profile.FullName)
	require.Equal(t, "logistics", profile.Role)

	status, env = doJSON(t, http.MethodPut, srv.URL+"/api/auth/profile", user.Token, map[string]any{
		"full_name": "Pat Updated",
		"phone":     "+1-555-0100",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Profile updated successfully", env.Message)

	status, env = doJSON(t, http.MethodGet, srv.URL+"/api/auth/profile", user.Token, nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &profile)
	require.Equal(t, "Pat Updated", profile.FullName)
}

func TestProfile_RequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	status, env := doJSON(t, http.MethodGet, srv.URL+"/api/auth/profile", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "No token, authorization denied", env.Error)
}

func TestUnfinishedEndpoints_Return501(t *testing.T) {
	srv, _ := newTestServer(t)

	user := registerAndLogin(t, srv.URL, "stub@acme.example", "Stub User", "Acme", auth.RoleOwner)

	status, env := doJSON(t, http.MethodPost, srv.URL+"/api/auth/verify-email", "", map[string]any{})
	require.Equal(t, http.StatusNotImplemented, status)
	require.Equal(t, "Not implemented", env.Error)

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/change-password", user.Token, map[string]any{})
	require.Equal(t, http.StatusNotImplemented, status)
}
