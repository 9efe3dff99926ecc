package invites

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/triptech/fleetd/internal/auth"
)

var (
	// ErrRoleNotAllowed is returned when the caller's role is not eligible
	// for the send operation.
	ErrRoleNotAllowed = errors.New("role not allowed to send this invite")

	// ErrRecipientNotRegistered is returned when a logistics-directed invite
	// names an email with no registered logistics user.
	ErrRecipientNotRegistered = errors.New("logistics coordinator not registered")

	// ErrInviteNotFound is returned when an invitation does not exist.
	ErrInviteNotFound = errors.New("invitation not found")

	// ErrAlreadyResponded is returned when accepting or rejecting an
	// invitation that already reached a terminal status.
	ErrAlreadyResponded = errors.New("invitation already responded to")

	// ErrNotSender is returned on deletion when the invitation is missing or
	// belongs to a different sender. The two causes are deliberately not
	// distinguished.
	ErrNotSender = errors.New("invitation not found or not owned by sender")
)

// Status is the invitation lifecycle state. Request_Sent is initial;
// Accepted and Rejected are terminal with no re-open transition.
type Status string

const (
	StatusRequestSent Status = "Request_Sent"
	StatusAccepted    Status = "Accepted"
	StatusRejected    Status = "Rejected"
)

// IsTerminal reports whether no further transition is expected from s.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Type partitions invitations by which send operation created them.
type Type string

const (
	// TypeVendorInvite is a logistics coordinator inviting a recipient.
	TypeVendorInvite Type = "vendor_invite"

	// TypeLCInvite is an owner or vendor inviting a registered logistics
	// coordinator (role-directed).
	TypeLCInvite Type = "lc_invite"
)

// Invitation is a row in the invitations table. FromRole is a snapshot of
// the sender's role at send time, not a live reference.
type Invitation struct {
	InvitationID  string     `db:"invitation_id" json:"invitation_id"`
	RequestID     string     `db:"request_id" json:"request_id"`
	FromUserID    uuid.UUID  `db:"from_user_id" json:"from_user_id"`
	FromRole      auth.Role  `db:"from_role" json:"from_role"`
	ToEmail       *string    `db:"to_email" json:"to_email"`
	ToRole        *string    `db:"to_role" json:"to_role"`
	SendTo        *string    `db:"send_to" json:"send_to"`
	ManualEntry   bool       `db:"manual_entry" json:"manual_entry"`
	LCName        *string    `db:"lc_name" json:"lc_name"`
	LCCompanyName *string    `db:"lc_company_name" json:"lc_company_name"`
	Type          Type       `db:"invitation_type" json:"invitation_type"`
	Status        Status     `db:"status" json:"status"`
	ResponseNotes *string    `db:"response_notes" json:"response_notes"`
	ResponseDate  *time.Time `db:"response_date" json:"response_date"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// NewInvitationID builds the sender-scoped invitation identifier. Uniqueness
// holds per (sender, millisecond).
func NewInvitationID(senderID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("INV-%s-%d", senderID, now.UnixMilli())
}

// NewRequestID builds the request identifier for an invitation.
func NewRequestID(now time.Time) string {
	return fmt.Sprintf("REQ-%d", now.UnixMilli())
}
