package vendors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/triptech/fleetd/internal/apperrors"
	"github.com/triptech/fleetd/internal/audit"
	"github.com/triptech/fleetd/internal/auth"
)

// CreateRequest is the payload for POST /api/vendors.
type CreateRequest struct {
	Company            string          `json:"company"`
	ContactPerson      *string         `json:"contact_person"`
	Email              *string         `json:"email"`
	Phone              *string         `json:"phone"`
	Address            *string         `json:"address"`
	City               *string         `json:"city"`
	Country            *string         `json:"country"`
	RegistrationNumber *string         `json:"registration_number"`
	TaxID              *string         `json:"tax_id"`
	Vehicles           []VehicleParams `json:"vehicles"`
}

// HandleCreate handles POST /api/vendors.
func HandleCreate(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		claims := auth.ClaimsFromContext(ctx)

		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, "Invalid request body")
			return
		}

		req.Company = strings.TrimSpace(req.Company)
		if req.Company == "" {
			apperrors.WriteBadRequest(w, "Company is required")
			return
		}

		service := NewService(pool)
		vendor, err := service.Create(ctx, CreateParams{
			Company:            req.Company,
			ContactPerson:      req.ContactPerson,
			Email:              req.Email,
			Phone:              req.Phone,
			Address:            req.Address,
			City:               req.City,
			Country:            req.Country,
			RegistrationNumber: req.RegistrationNumber,
			TaxID:              req.TaxID,
			Vehicles:           req.Vehicles,
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to create vendor")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		if err := auditor.LogVendorCreated(ctx, claims.UserID, vendor.ID, vendor.Company); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteEnvelope(w, http.StatusCreated, apperrors.Envelope{
			Success: true,
			Data:    vendor,
			Message: "Vendor created successfully",
		})
	}
}

// HandleList handles GET /api/vendors.
func HandleList(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := ListFilter{
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
			Page:   queryInt(r, "page", 1),
			Limit:  queryInt(r, "limit", 20),
		}

		service := NewService(pool)
		vendors, total, err := service.List(r.Context(), filter)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list vendors")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		if vendors == nil {
			vendors = []VendorListItem{}
		}

		apperrors.WriteEnvelope(w, http.StatusOK, apperrors.Envelope{
			Success: true,
			Data:    vendors,
			Pagination: map[string]int{
				"total": total,
				"page":  filter.Page,
				"limit": filter.Limit,
			},
			Message: "Vendors retrieved successfully",
		})
	}
}

// HandleGet handles GET /api/vendors/{vendor_id}.
func HandleGet(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, ok := vendorIDParam(w, r)
		if !ok {
			return
		}

		service := NewService(pool)
		detail, err := service.GetByID(r.Context(), vendorID)
		if err != nil {
			if errors.Is(err, ErrVendorNotFound) {
				apperrors.WriteNotFound(w, "Vendor not found")
				return
			}
			log.Error().Err(err).Msg("Failed to get vendor")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		if detail.Vehicles == nil {
			detail.Vehicles = []Vehicle{}
		}

		apperrors.WriteSuccess(w, http.StatusOK, detail)
	}
}

// UpdateRequest is the payload for PUT /api/vendors/{vendor_id}.
type UpdateRequest struct {
	ContactPerson *string `json:"contact_person"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
}

// HandleUpdate handles PUT /api/vendors/{vendor_id}.
func HandleUpdate(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, ok := vendorIDParam(w, r)
		if !ok {
			return
		}

		var req UpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, "Invalid request body")
			return
		}

		service := NewService(pool)
		vendor, err := service.Update(r.Context(), vendorID, UpdateParams{
			ContactPerson: req.ContactPerson,
			Email:         req.Email,
			Phone:         req.Phone,
		})
		if err != nil {
			if errors.Is(err, ErrVendorNotFound) {
				apperrors.WriteNotFound(w, "Vendor not found")
				return
			}
			log.Error().Err(err).Msg("Failed to update vendor")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		apperrors.WriteEnvelope(w, http.StatusOK, apperrors.Envelope{
			Success: true,
			Data:    vendor,
			Message: "Vendor updated successfully",
		})
	}
}

// StatusRequest is the payload for PUT /api/vendors/{vendor_id}/status.
type StatusRequest struct {
	Status VendorStatus `json:"status"`
}

// HandleUpdateStatus handles PUT /api/vendors/{vendor_id}/status.
func HandleUpdateStatus(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, ok := vendorIDParam(w, r)
		if !ok {
			return
		}

		var req StatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, "Invalid request body")
			return
		}
		if req.Status != VendorActive && req.Status != VendorInactive {
			apperrors.WriteBadRequest(w, "Invalid status")
			return
		}

		service := NewService(pool)
		vendor, err := service.UpdateStatus(r.Context(), vendorID, req.Status)
		if err != nil {
			if errors.Is(err, ErrVendorNotFound) {
				apperrors.WriteNotFound(w, "Vendor not found")
				return
			}
			log.Error().Err(err).Msg("Failed to update vendor status")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		apperrors.WriteEnvelope(w, http.StatusOK, apperrors.Envelope{
			Success: true,
			Data:    vendor,
			Message: "Vendor status updated successfully",
		})
	}
}

// HandleDelete handles DELETE /api/vendors/{vendor_id}.
func HandleDelete(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, ok := vendorIDParam(w, r)
		if !ok {
			return
		}

		service := NewService(pool)
		if err := service.Delete(r.Context(), vendorID); err != nil {
			if errors.Is(err, ErrVendorNotFound) {
				apperrors.WriteNotFound(w, "Vendor not found")
				return
			}
			log.Error().Err(err).Msg("Failed to delete vendor")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		apperrors.WriteEnvelope(w, http.StatusOK, apperrors.Envelope{
			Success: true,
			Message: "Vendor deleted successfully",
		})
	}
}

func vendorIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	vendorID, err := uuid.Parse(chi.URLParam(r, "vendor_id"))
	if err != nil {
		apperrors.WriteBadRequest(w, "Invalid vendor ID")
		return uuid.Nil, false
	}
	return vendorID, true
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return defaultValue
	}
	return parsed
}
