package invites

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/triptech/fleetd/internal/auth"
)

const invitationColumns = `invitation_id, request_id, from_user_id, from_role, to_email, to_role,
	send_to, manual_entry, lc_name, lc_company_name, invitation_type, status,
	response_notes, response_date, created_at`

// Service owns invitation records end-to-end. It reads (never writes) user
// rows to resolve sender identity at creation time.
type Service struct {
	pool *pgxpool.Pool
}

// NewService creates a new invitation service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// SenderInfo is the sender identity resolved from the credential store when
// an invitation is created.
type SenderInfo struct {
	FullName    string
	CompanyName string
	Email       string
}

// SendToRecipientParams are the inputs for a logistics-coordinator invite.
type SendToRecipientParams struct {
	RecipientEmail string
	SendTo         *string
	ManualEntry    bool
	LCName         *string
	LCCompanyName  *string
}

// SendToRecipient creates an invitation from a logistics coordinator to a
// recipient email. When ManualEntry is false the displayed coordinator
// name/company mirror the sender's stored profile; when true they are taken
// verbatim from the supplied overrides, with no validation that the values
// are sane.
func (s *Service) SendToRecipient(ctx context.Context, senderID uuid.UUID, senderRole auth.Role, p SendToRecipientParams) (*Invitation, *SenderInfo, error) {
	if senderRole != auth.RoleLogistics {
		return nil, nil, ErrRoleNotAllowed
	}

	sender, err := s.senderInfo(ctx, senderID)
	if err != nil {
		return nil, nil, err
	}

	lcName := p.LCName
	lcCompany := p.LCCompanyName
	if !p.ManualEntry {
		lcName = &sender.FullName
		lcCompany = &sender.CompanyName
	}

	now := time.Now()
	invitation := &Invitation{
		InvitationID:  NewInvitationID(senderID, now),
		RequestID:     NewRequestID(now),
		FromUserID:    senderID,
		FromRole:      senderRole,
		ToEmail:       &p.RecipientEmail,
		SendTo:        p.SendTo,
		ManualEntry:   p.ManualEntry,
		LCName:        lcName,
		LCCompanyName: lcCompany,
		Type:          TypeVendorInvite,
		Status:        StatusRequestSent,
	}

	if err := s.insert(ctx, invitation); err != nil {
		return nil, nil, err
	}

	return invitation, sender, nil
}

// SendToLogistics creates a role-directed invitation from a trip owner or
// vendor to a registered logistics coordinator. The recipient email must
// resolve to an existing user with the logistics role.
func (s *Service) SendToLogistics(ctx context.Context, senderID uuid.UUID, senderRole auth.Role, recipientEmail string) (*Invitation, *SenderInfo, error) {
	if senderRole != auth.RoleOwner && senderRole != auth.RoleVendor {
		return nil, nil, ErrRoleNotAllowed
	}

	var recipientID uuid.UUID
	err := s.pool.QueryRow(ctx, `
		SELECT id FROM users WHERE email = $1 AND role = $2
	`, recipientEmail, auth.RoleLogistics).Scan(&recipientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrRecipientNotRegistered
		}
		return nil, nil, fmt.Errorf("failed to look up recipient: %w", err)
	}

	sender, err := s.senderInfo(ctx, senderID)
	if err != nil {
		return nil, nil, err
	}

	toRole := string(auth.RoleLogistics)
	now := time.Now()
	invitation := &Invitation{
		InvitationID: NewInvitationID(senderID, now),
		RequestID:    NewRequestID(now),
		FromUserID:   senderID,
		FromRole:     senderRole,
		ToEmail:      &recipientEmail,
		ToRole:       &toRole,
		Type:         TypeLCInvite,
		Status:       StatusRequestSent,
	}

	if err := s.insert(ctx, invitation); err != nil {
		return nil, nil, err
	}

	return invitation, sender, nil
}

// ListFilter narrows List results; zero values mean no filtering.
type ListFilter struct {
	Status string
	Type   string
}

// List returns two partitions: invitations the user sent and invitations
// addressed to the user's email. The partitions are filtered independently
// and are not deduplicated against each other.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) (sent, received []Invitation, err error) {
	var email string
	err = s.pool.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, fmt.Errorf("user not found")
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	sent, err = s.query(ctx, "from_user_id", userID, filter)
	if err != nil {
		return nil, nil, err
	}

	received, err = s.query(ctx, "to_email", email, filter)
	if err != nil {
		return nil, nil, err
	}

	return sent, received, nil
}

// GetByID retrieves a single invitation.
func (s *Service) GetByID(ctx context.Context, invitationID string) (*Invitation, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE invitation_id = $1
	`, invitationID)

	invitation, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return invitation, nil
}

// Respond transitions an invitation to Accepted or Rejected and stamps the
// response timestamp; for rejections the supplied reason (possibly absent)
// is stored. Only invitations still in Request_Sent transition: a second
// response returns ErrAlreadyResponded rather than overwriting the first.
func (s *Service) Respond(ctx context.Context, invitationID string, status Status, reason *string) error {
	if !status.IsTerminal() {
		return fmt.Errorf("invalid response status: %s", status)
	}

	var tag pgconn.CommandTag
	var err error
	if status == StatusRejected {
		tag, err = s.pool.Exec(ctx, `
			UPDATE invitations
			SET status = $1, response_notes = $2, response_date = NOW()
			WHERE invitation_id = $3 AND status = $4
		`, status, reason, invitationID, StatusRequestSent)
	} else {
		tag, err = s.pool.Exec(ctx, `
			UPDATE invitations
			SET status = $1, response_date = NOW()
			WHERE invitation_id = $2 AND status = $3
		`, status, invitationID, StatusRequestSent)
	}
	if err != nil {
		return fmt.Errorf("failed to update invitation: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var current Status
		err := s.pool.QueryRow(ctx, `
			SELECT status FROM invitations WHERE invitation_id = $1
		`, invitationID).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInviteNotFound
			}
			return fmt.Errorf("failed to check invitation: %w", err)
		}
		return ErrAlreadyResponded
	}

	return nil
}

// Delete removes an invitation. The single statement scopes the delete to
// the original sender, so a missing row and a row owned by someone else are
// indistinguishable to the caller.
func (s *Service) Delete(ctx context.Context, invitationID string, senderID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM invitations
		WHERE invitation_id = $1 AND from_user_id = $2
	`, invitationID, senderID)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotSender
	}

	return nil
}

func (s *Service) senderInfo(ctx context.Context, senderID uuid.UUID) (*SenderInfo, error) {
	var info SenderInfo
	err := s.pool.QueryRow(ctx, `
		SELECT full_name, company_name, email FROM users WHERE id = $1
	`, senderID).Scan(&info.FullName, &info.CompanyName, &info.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sender not found")
		}
		return nil, fmt.Errorf("failed to load sender: %w", err)
	}
	return &info, nil
}

func (s *Service) insert(ctx context.Context, inv *Invitation) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO invitations (
		  invitation_id, request_id, from_user_id, from_role, to_email, to_role,
		  send_to, manual_entry, lc_name, lc_company_name, invitation_type, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`, inv.InvitationID, inv.RequestID, inv.FromUserID, inv.FromRole, inv.ToEmail, inv.ToRole,
		inv.SendTo, inv.ManualEntry, inv.LCName, inv.LCCompanyName, inv.Type, inv.Status,
	).Scan(&inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

func (s *Service) query(ctx context.Context, column string, value any, filter ListFilter) ([]Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE ` + column + ` = $1`
	args := []any{value}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += ` AND invitation_type = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []Invitation
	for rows.Next() {
		invitation, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, *invitation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invitations: %w", err)
	}

	return invitations, nil
}

func scanInvitation(row pgx.Row) (*Invitation, error) {
	var inv Invitation
	err := row.Scan(
		&inv.InvitationID,
		&inv.RequestID,
		&inv.FromUserID,
		&inv.FromRole,
		&inv.ToEmail,
		&inv.ToRole,
		&inv.SendTo,
		&inv.ManualEntry,
		&inv.LCName,
		&inv.LCCompanyName,
		&inv.Type,
		&inv.Status,
		&inv.ResponseNotes,
		&inv.ResponseDate,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
