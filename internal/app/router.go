package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/triptech/fleetd/internal/apperrors"
	"github.com/triptech/fleetd/internal/audit"
	"github.com/triptech/fleetd/internal/auth"
	"github.com/triptech/fleetd/internal/config"
	"github.com/triptech/fleetd/internal/invites"
	"github.com/triptech/fleetd/internal/vendors"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(pool *pgxpool.Pool, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apperrors.RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	auditor := audit.NewWriter(pool)
	requireAuth := auth.RequireAuth(cfg.JWTSecret)

	// Health check routes (no authentication required)
	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(pool))

	// Authentication and profile
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", auth.HandleRegister(pool, auditor, cfg.DevCredentials))
		r.With(LoginRateLimitMiddleware()).Post("/login", auth.HandleLogin(pool, auditor, cfg.JWTSecret, cfg.TokenTTLHours))
		r.Post("/logout", auth.HandleLogout())
		r.Post("/verify-email", auth.HandleVerifyEmail())

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", auth.HandleGetProfile(pool))
			r.Put("/profile", auth.HandleUpdateProfile(pool))
			r.Post("/change-password", auth.HandleChangePassword())
		})
	})

	// Invitation workflow
	r.Route("/api/invites", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(requireAuth)

		r.Post("/send", invites.HandleSend(pool, auditor))
		r.Post("/send-to-lc", invites.HandleSendToLC(pool, auditor))
		r.Get("/", invites.HandleList(pool))
		r.Get("/{invitation_id}", invites.HandleGet(pool))
		r.Put("/{invitation_id}/accept", invites.HandleAccept(pool, auditor))
		r.Put("/{invitation_id}/reject", invites.HandleReject(pool, auditor))
		r.Delete("/{invitation_id}", invites.HandleDelete(pool, auditor))
	})

	// Vendors
	r.Route("/api/vendors", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(requireAuth)

		r.Post("/", vendors.HandleCreate(pool, auditor))
		r.Get("/", vendors.HandleList(pool))
		r.Get("/{vendor_id}", vendors.HandleGet(pool))
		r.Put("/{vendor_id}", vendors.HandleUpdate(pool))
		r.Put("/{vendor_id}/status", vendors.HandleUpdateStatus(pool))
		r.Delete("/{vendor_id}", vendors.HandleDelete(pool))
	})

	return r
}

// handleHealthz returns a simple liveness check.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteSuccess(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleReadyz returns a readiness check that includes database connectivity.
func handleReadyz(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			apperrors.WriteServiceUnavailable(w, "Database connection failed")
			return
		}

		apperrors.WriteSuccess(w, http.StatusOK, map[string]string{
			"status": "ready",
			"db":     "ok",
		})
	}
}
