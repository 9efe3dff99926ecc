package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/triptech/fleetd/internal/apperrors"
	"github.com/triptech/fleetd/internal/audit"
)

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Email       string  `json:"email"`
	FullName    string  `json:"full_name"`
	CompanyName string  `json:"company_name"`
	Role        Role    `json:"role"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
}

// RegisterResponse is the signup response body.
type RegisterResponse struct {
	UserID      uuid.UUID    `json:"user_id"`
	Email       string       `json:"email"`
	Username    string       `json:"username"`
	FullName    string       `json:"full_name"`
	Role        Role         `json:"role"`
	CompanyName string       `json:"company_name"`
	Status      UserStatus   `json:"status"`
	Credentials *Credentials `json:"credentials,omitempty"`
}

// Credentials carries the generated login pair. Only populated when the
// dev-credentials flag is on; the production path delivers the password out
// of band.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister processes POST /api/auth/register.
func HandleRegister(pool *pgxpool.Pool, auditor *audit.Writer, devCredentials bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, "Invalid request body")
			return
		}

		req.Email = strings.TrimSpace(req.Email)
		req.FullName = strings.TrimSpace(req.FullName)
		req.CompanyName = strings.TrimSpace(req.CompanyName)

		if req.Email == "" || req.FullName == "" || req.CompanyName == "" || req.Role == "" {
			apperrors.WriteBadRequest(w, "Email, full name, company name, and role are required")
			return
		}
		if _, err := mail.ParseAddress(req.Email); err != nil {
			apperrors.WriteBadRequest(w, "Invalid email address")
			return
		}
		if !req.Role.IsValid() {
			apperrors.WriteBadRequest(w, "Invalid role")
			return
		}

		ctx := r.Context()

		var exists bool
		err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, req.Email).Scan(&exists)
		if err != nil {
			log.Error().Err(err).Str("email", req.Email).Msg("Failed to check existing user")
			apperrors.WriteInternalError(w, "Server error")
			return
		}
		if exists {
			apperrors.WriteConflict(w, "Email already registered")
			return
		}

		username := req.Email[:strings.Index(req.Email, "@")]

		password, err := GeneratePassword()
		if err != nil {
			log.Error().Err(err).Msg("Failed to generate password")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		passwordHash, err := HashPassword(password)
		if err != nil {
			log.Error().Err(err).Msg("Failed to hash password")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		userID := uuid.New()
		_, err = pool.Exec(ctx, `
			INSERT INTO users (id, username, email, password_hash, full_name, company_name, role, phone, address, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, userID, username, req.Email, passwordHash, req.FullName, req.CompanyName, req.Role, req.Phone, req.Address, StatusPending)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				apperrors.WriteConflict(w, "Email already registered")
				return
			}

			log.Error().Err(err).Str("email", req.Email).Msg("Failed to insert user")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		if err := auditor.LogUserRegistered(ctx, userID, req.Email, string(req.Role)); err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to log audit event")
		}

		resp := RegisterResponse{
			UserID:      userID,
			Email:       req.Email,
			Username:    username,
			FullName:    req.FullName,
			Role:        req.Role,
			CompanyName: req.CompanyName,
			Status:      StatusPending,
		}
		if devCredentials {
			resp.Credentials = &Credentials{Username: username, Password: password}
		}

		log.Info().
			Str("user_id", userID.String()).
			Str("email", req.Email).
			Str("role", string(req.Role)).
			Msg("User registered")

		apperrors.WriteEnvelope(w, http.StatusCreated, apperrors.Envelope{
			Success:      true,
			Data:         resp,
			Message:      "Account created successfully",
			Notification: "Verification email sent to " + req.Email,
		})
	}
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// LoginResponse is the login response body.
type LoginResponse struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// HandleLogin processes POST /api/auth/login. A row must match on username
// and role before the password is checked; every mismatch yields the same
// 401 message so callers cannot learn which field failed.
func HandleLogin(pool *pgxpool.Pool, auditor *audit.Writer, jwtSecret string, ttlHours int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, "Invalid request body")
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" || req.Password == "" || req.Role == "" {
			apperrors.WriteBadRequest(w, "Username, password, and role are required")
			return
		}

		ctx := r.Context()

		var user User
		err := pool.QueryRow(ctx, `
			SELECT id, username, email, password_hash, full_name, company_name, role, phone, address, status, password_changed
			FROM users
			WHERE username = $1 AND role = $2
		`, req.Username, req.Role).Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.FullName,
			&user.CompanyName,
			&user.Role,
			&user.Phone,
			&user.Address,
			&user.Status,
			&user.PasswordChanged,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				log.Debug().Str("username", req.Username).Msg("Login failed: no matching user")
				if auditErr := auditor.LogLoginFailed(ctx, req.Username, r.RemoteAddr); auditErr != nil {
					log.Error().Err(auditErr).Msg("Failed to log audit event")
				}
				apperrors.WriteUnauthorized(w, "Invalid username or password")
				return
			}
			log.Error().Err(err).Str("username", req.Username).Msg("Failed to query user")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		if err := VerifyPassword(user.PasswordHash, req.Password); err != nil {
			log.Debug().Str("username", req.Username).Msg("Login failed: wrong password")
			if auditErr := auditor.LogLoginFailed(ctx, req.Username, r.RemoteAddr); auditErr != nil {
				log.Error().Err(auditErr).Msg("Failed to log audit event")
			}
			apperrors.WriteUnauthorized(w, "Invalid username or password")
			return
		}

		token, err := CreateToken(user.ID, user.Username, user.Role, jwtSecret, ttlHours)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create token")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		log.Info().
			Str("user_id", user.ID.String()).
			Str("username", user.Username).
			Msg("User logged in")

		apperrors.WriteEnvelope(w, http.StatusOK, apperrors.Envelope{
			Success: true,
			Data:    LoginResponse{Token: token, User: user.profile()},
			Message: "Login successful",
		})
	}
}

func (u User) profile() Profile {
	return Profile{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		FullName:        u.FullName,
		CompanyName:     u.CompanyName,
		Role:            u.Role,
		Phone:           u.Phone,
		Address:         u.Address,
		Status:          u.Status,
		PasswordChanged: u.PasswordChanged,
	}
}

// HandleGetProfile processes GET /api/auth/profile.
func HandleGetProfile(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())

		var user User
		err := pool.QueryRow(r.Context(), `
			SELECT id, username, email, full_name, company_name, role, phone, address, status, password_changed
			FROM users
			WHERE id = $1
		`, claims.UserID).Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.FullName,
			&user.CompanyName,
			&user.Role,
			&user.Phone,
			&user.Address,
			&user.Status,
			&user.PasswordChanged,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				apperrors.WriteNotFound(w, "User not found")
				return
			}
			log.Error().Err(err).Str("user_id", claims.UserID.String()).Msg("Failed to load profile")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		apperrors.WriteSuccess(w, http.StatusOK, user.profile())
	}
}

// ProfileUpdateRequest is the profile update payload.
type ProfileUpdateRequest struct {
	FullName string  `json:"full_name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

// HandleUpdateProfile processes PUT /api/auth/profile. Only contact fields
// are mutable; role and email never change.
func HandleUpdateProfile(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())

		var req ProfileUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, "Invalid request body")
			return
		}

		req.FullName = strings.TrimSpace(req.FullName)
		if req.FullName == "" {
			apperrors.WriteBadRequest(w, "Full name is required")
			return
		}

		_, err := pool.Exec(r.Context(), `
			UPDATE users
			SET full_name = $1, phone = $2, address = $3, updated_at = NOW()
			WHERE id = $4
		`, req.FullName, req.Phone, req.Address, claims.UserID)
		if err != nil {
			log.Error().Err(err).Str("user_id", claims.UserID.String()).Msg("Failed to update profile")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		apperrors.WriteEnvelope(w, http.StatusOK, apperrors.Envelope{
			Success: true,
			Message: "Profile updated successfully",
		})
	}
}

// HandleLogout processes POST /api/auth/logout. Tokens are never revoked
// server-side; logout is client-side erasure of the token.
func HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteEnvelope(w, http.StatusOK, apperrors.Envelope{
			Success: true,
			Message: "Logged out successfully",
		})
	}
}

// HandleVerifyEmail is a stub for an unfinished endpoint.
func HandleVerifyEmail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteNotImplemented(w)
	}
}

// HandleChangePassword is a stub for an unfinished endpoint.
func HandleChangePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteNotImplemented(w)
	}
}
