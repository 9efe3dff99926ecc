package invites

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/mail"
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

// SendRequest is the payload for POST /api/invites/send.
type SendRequest struct {
	RecipientEmail string  `json:"recipient_email"`
	SendTo         *string `json:"send_to"`
	ManualEntry    bool    `json:"manual_entry"`
	LCName         *string `json:"lc_name"`
	LCCompany      *string `json:"lc_company"`
}

// SendResponse is the invitation view returned by POST /api/invites/send.
type SendResponse struct {
	InvitationID   string    `json:"invitation_id"`
	RequestID      string    `json:"request_id"`
	FromUserID     uuid.UUID `json:"from_user_id"`
	FromName       string    `json:"from_name"`
	FromEmail      string    `json:"from_email"`
	RecipientEmail string    `json:"recipient_email"`
	LCName         *string   `json:"lc_name"`
	LCCompany      *string   `json:"lc_company"`
	SendTo         *string   `json:"send_to"`
	ManualEntry    bool      `json:"manual_entry"`
	Status         Status    `json:"status"`
}

// HandleSend handles POST /api/invites/send (logistics coordinators only).
func HandleSend(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		claims := auth.ClaimsFromContext(ctx)

		var req SendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, "Invalid request body")
			return
		}

		req.RecipientEmail = strings.TrimSpace(req.RecipientEmail)
		if req.RecipientEmail == "" {
			apperrors.WriteBadRequest(w, "Recipient email is required")
			return
		}
		if _, err := mail.ParseAddress(req.RecipientEmail); err != nil {
			apperrors.WriteBadRequest(w, "Invalid recipient email address")
			return
		}

		service := NewService(pool)
		invitation, sender, err := service.SendToRecipient(ctx, claims.UserID, claims.Role, SendToRecipientParams{
			RecipientEmail: req.RecipientEmail,
			SendTo:         req.SendTo,
			ManualEntry:    req.ManualEntry,
			LCName:         req.LCName,
			LCCompanyName:  req.LCCompany,
		})
		if err != nil {
			if errors.Is(err, ErrRoleNotAllowed) {
				apperrors.WriteForbidden(w, "Only Logistics Coordinators can send invites this way")
				return
			}
			log.Error().Err(err).Msg("Failed to send invite")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		if err := auditor.LogInviteSent(ctx, claims.UserID, invitation.InvitationID, req.RecipientEmail); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteEnvelope(w, http.StatusCreated, apperrors.Envelope{
			Success: true,
			Data: SendResponse{
				InvitationID:   invitation.InvitationID,
				RequestID:      invitation.RequestID,
				FromUserID:     invitation.FromUserID,
				FromName:       sender.FullName,
				FromEmail:      sender.Email,
				RecipientEmail: req.RecipientEmail,
				LCName:         invitation.LCName,
				LCCompany:      invitation.LCCompanyName,
				SendTo:         invitation.SendTo,
				ManualEntry:    invitation.ManualEntry,
				Status:         invitation.Status,
			},
			Message: "Invite sent successfully",
		})
	}
}

// SendToLCRequest is the payload for POST /api/invites/send-to-lc.
type SendToLCRequest struct {
	RecipientEmail string `json:"recipient_email"`
}

// SendToLCResponse is the invitation view returned by POST /api/invites/send-to-lc.
type SendToLCResponse struct {
	InvitationID   string    `json:"invitation_id"`
	RequestID      string    `json:"request_id"`
	FromUserID     uuid.UUID `json:"from_user_id"`
	FromRole       auth.Role `json:"from_role"`
	FromName       string    `json:"from_name"`
	RecipientEmail string    `json:"recipient_email"`
	RecipientRole  string    `json:"recipient_role"`
	Status         Status    `json:"status"`
}

// HandleSendToLC handles POST /api/invites/send-to-lc (owners and vendors only).
func HandleSendToLC(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		claims := auth.ClaimsFromContext(ctx)

		var req SendToLCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, "Invalid request body")
			return
		}

		req.RecipientEmail = strings.TrimSpace(req.RecipientEmail)
		if req.RecipientEmail == "" {
			apperrors.WriteBadRequest(w, "Recipient email is required")
			return
		}

		service := NewService(pool)
		invitation, sender, err := service.SendToLogistics(ctx, claims.UserID, claims.Role, req.RecipientEmail)
		if err != nil {
			if errors.Is(err, ErrRoleNotAllowed) {
				apperrors.WriteForbidden(w, "Only Trip Owners or Vendors can send invites to Logistics Coordinators")
				return
			}
			if errors.Is(err, ErrRecipientNotRegistered) {
				apperrors.WriteNotFound(w, "Logistics Coordinator not registered")
				return
			}
			log.Error().Err(err).Msg("Failed to send invite")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		if err := auditor.LogInviteSentToLC(ctx, claims.UserID, invitation.InvitationID, req.RecipientEmail); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteEnvelope(w, http.StatusCreated, apperrors.Envelope{
			Success: true,
			Data: SendToLCResponse{
				InvitationID:   invitation.InvitationID,
				RequestID:      invitation.RequestID,
				FromUserID:     invitation.FromUserID,
				FromRole:       invitation.FromRole,
				FromName:       sender.FullName,
				RecipientEmail: req.RecipientEmail,
				RecipientRole:  string(auth.RoleLogistics),
				Status:         invitation.Status,
			},
			Message: "Invite sent to Logistics Coordinator",
		})
	}
}

// Pagination echoes the requested page and limit. The total counts every
// match across both partitions without slicing either; clients relying on
// the original accounting get the same numbers here.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ListResponse carries both invitation partitions.
type ListResponse struct {
	Sent     []Invitation `json:"sent"`
	Received []Invitation `json:"received"`
}

// HandleList handles GET /api/invites.
func HandleList(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		claims := auth.ClaimsFromContext(ctx)

		filter := ListFilter{
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Type:   strings.TrimSpace(r.URL.Query().Get("type")),
		}
		page := queryInt(r, "page", 1)
		limit := queryInt(r, "limit", 10)

		service := NewService(pool)
		sent, received, err := service.List(ctx, claims.UserID, filter)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list invites")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		if sent == nil {
			sent = []Invitation{}
		}
		if received == nil {
			received = []Invitation{}
		}

		apperrors.WriteEnvelope(w, http.StatusOK, apperrors.Envelope{
			Success: true,
			Data:    ListResponse{Sent: sent, Received: received},
			Pagination: Pagination{
				Total: len(sent) + len(received),
				Page:  page,
				Limit: limit,
			},
		})
	}
}

// HandleGet handles GET /api/invites/{invitation_id}.
func HandleGet(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invitationID := chi.URLParam(r, "invitation_id")

		service := NewService(pool)
		invitation, err := service.GetByID(r.Context(), invitationID)
		if err != nil {
			if errors.Is(err, ErrInviteNotFound) {
				apperrors.WriteNotFound(w, "Invitation not found")
				return
			}
			log.Error().Err(err).Msg("Failed to get invite")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		apperrors.WriteSuccess(w, http.StatusOK, invitation)
	}
}

// RespondResponse is the body returned by accept/reject.
type RespondResponse struct {
	InvitationID string `json:"invitation_id"`
	Status       Status `json:"status"`
}

// HandleAccept handles PUT /api/invites/{invitation_id}/accept.
func HandleAccept(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, pool, auditor, StatusAccepted, nil, "Invitation accepted successfully")
	}
}

// RejectRequest is the optional payload for PUT /api/invites/{invitation_id}/reject.
type RejectRequest struct {
	RejectionReason *string `json:"rejection_reason"`
}

// HandleReject handles PUT /api/invites/{invitation_id}/reject.
func HandleReject(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RejectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			apperrors.WriteBadRequest(w, "Invalid request body")
			return
		}

		respond(w, r, pool, auditor, StatusRejected, req.RejectionReason, "Invitation rejected")
	}
}

func respond(w http.ResponseWriter, r *http.Request, pool *pgxpool.Pool, auditor *audit.Writer, status Status, reason *string, message string) {
	ctx := r.Context()
	claims := auth.ClaimsFromContext(ctx)
	invitationID := chi.URLParam(r, "invitation_id")

	service := NewService(pool)
	if err := service.Respond(ctx, invitationID, status, reason); err != nil {
		if errors.Is(err, ErrInviteNotFound) {
			apperrors.WriteNotFound(w, "Invitation not found")
			return
		}
		if errors.Is(err, ErrAlreadyResponded) {
			apperrors.WriteConflict(w, "Invitation already responded to")
			return
		}
		log.Error().Err(err).Msg("Failed to respond to invite")
		apperrors.WriteInternalError(w, "Server error")
		return
	}

	if err := auditor.LogInviteResponded(ctx, claims.UserID, invitationID, string(status)); err != nil {
		log.Error().Err(err).Msg("Failed to log audit event")
	}

	apperrors.WriteEnvelope(w, http.StatusOK, apperrors.Envelope{
		Success: true,
		Data:    RespondResponse{InvitationID: invitationID, Status: status},
		Message: message,
	})
}

// HandleDelete handles DELETE /api/invites/{invitation_id}. Deletion is
// sender-only; a missing invitation yields the same 403 as someone else's.
func HandleDelete(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		claims := auth.ClaimsFromContext(ctx)
		invitationID := chi.URLParam(r, "invitation_id")

		service := NewService(pool)
		if err := service.Delete(ctx, invitationID, claims.UserID); err != nil {
			if errors.Is(err, ErrNotSender) {
				apperrors.WriteForbidden(w, "Only the sender can delete this invitation or invitation not found")
				return
			}
			log.Error().Err(err).Msg("Failed to delete invite")
			apperrors.WriteInternalError(w, "Server error")
			return
		}

		if err := auditor.LogInviteDeleted(ctx, claims.UserID, invitationID); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteEnvelope(w, http.StatusOK, apperrors.Envelope{
			Success: true,
			Message: "Invitation deleted successfully",
		})
	}
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
