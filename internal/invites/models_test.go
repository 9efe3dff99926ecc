package invites

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewInvitationID_Format(t *testing.T) {
	senderID := uuid.New()
	now := time.UnixMilli(1700000000123)

	id := NewInvitationID(senderID, now)
	require.Equal(t, fmt.Sprintf("INV-%s-1700000000123", senderID), id)
}

func TestNewRequestID_Format(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	require.Equal(t, "REQ-1700000000123", NewRequestID(now))
}

func TestNewInvitationID_DistinctPerSender(t *testing.T) {
	now := time.Now()
	a := NewInvitationID(uuid.New(), now)
	b := NewInvitationID(uuid.New(), now)
	require.NotEqual(t, a, b)
}

func TestStatus_IsTerminal(t *testing.T) {
	require.False(t, StatusRequestSent.IsTerminal())
	require.True(t, StatusAccepted.IsTerminal())
	require.True(t, StatusRejected.IsTerminal())
}
