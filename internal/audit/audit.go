package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	EventUserRegistered = "user.register"
	EventLoginFailed    = "auth.login_failed"
	EventInviteSent     = "invite.sent"
	EventInviteSentToLC = "invite.sent_to_lc"
	EventInviteAccepted = "invite.accepted"
	EventInviteRejected = "invite.rejected"
	EventInviteDeleted  = "invite.deleted"
	EventVendorCreated  = "vendor.created"
)

// Writer provides methods to write audit log entries. Audit failures are
// logged and reported to the caller but must never fail the request that
// produced them.
type Writer struct {
	pool *pgxpool.Pool
}

func NewWriter(pool *pgxpool.Pool) *Writer {
	return &Writer{pool: pool}
}

// LogParams contains parameters for logging an audit event.
type LogParams struct {
	ActorUserID *uuid.UUID
	Action      string
	Meta        map[string]interface{}
}

func (w *Writer) Log(ctx context.Context, params LogParams) error {
	metaJSON := []byte("{}")
	if params.Meta != nil {
		b, err := json.Marshal(params.Meta)
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal audit meta")
			return err
		}
		metaJSON = b
	}

	actorUserID := uuid.NullUUID{}
	if params.ActorUserID != nil {
		actorUserID = uuid.NullUUID{UUID: *params.ActorUserID, Valid: true}
	}

	query := `
		INSERT INTO audit_log (actor_user_id, action, meta)
		VALUES ($1, $2, $3)
	`

	_, err := w.pool.Exec(ctx, query, actorUserID, params.Action, metaJSON)
	if err != nil {
		log.Error().Err(err).Str("action", params.Action).Msg("Failed to write audit log")
		return err
	}

	log.Info().
		Str("action", params.Action).
		Interface("actor_user_id", params.ActorUserID).
		Msg("Audit event logged")

	return nil
}

func (w *Writer) LogUserRegistered(ctx context.Context, userID uuid.UUID, email, role string) error {
	return w.Log(ctx, LogParams{
		ActorUserID: &userID,
		Action:      EventUserRegistered,
		Meta: map[string]interface{}{
			"email": email,
			"role":  role,
		},
	})
}

func (w *Writer) LogLoginFailed(ctx context.Context, username, ip string) error {
	return w.Log(ctx, LogParams{
		Action: EventLoginFailed,
		Meta: map[string]interface{}{
			"username": username,
			"ip":       ip,
		},
	})
}

func (w *Writer) LogInviteSent(ctx context.Context, actorUserID uuid.UUID, invitationID, recipientEmail string) error {
	return w.Log(ctx, LogParams{
		ActorUserID: &actorUserID,
		Action:      EventInviteSent,
		Meta: map[string]interface{}{
			"invitation_id":   invitationID,
			"recipient_email": recipientEmail,
		},
	})
}

func (w *Writer) LogInviteSentToLC(ctx context.Context, actorUserID uuid.UUID, invitationID, recipientEmail string) error {
	return w.Log(ctx, LogParams{
		ActorUserID: &actorUserID,
		Action:      EventInviteSentToLC,
		Meta: map[string]interface{}{
			"invitation_id":   invitationID,
			"recipient_email": recipientEmail,
		},
	})
}

func (w *Writer) LogInviteResponded(ctx context.Context, actorUserID uuid.UUID, invitationID, status string) error {
	action := EventInviteAccepted
	if status == "Rejected" {
		action = EventInviteRejected
	}
	return w.Log(ctx, LogParams{
		ActorUserID: &actorUserID,
		Action:      action,
		Meta: map[string]interface{}{
			"invitation_id": invitationID,
		},
	})
}

func (w *Writer) LogInviteDeleted(ctx context.Context, actorUserID uuid.UUID, invitationID string) error {
	return w.Log(ctx, LogParams{
		ActorUserID: &actorUserID,
		Action:      EventInviteDeleted,
		Meta: map[string]interface{}{
			"invitation_id": invitationID,
		},
	})
}

func (w *Writer) LogVendorCreated(ctx context.Context, actorUserID, vendorID uuid.UUID, company string) error {
	return w.Log(ctx, LogParams{
		ActorUserID: &actorUserID,
		Action:      EventVendorCreated,
		Meta: map[string]interface{}{
			"vendor_id": vendorID.String(),
			"company":   company,
		},
	})
}
