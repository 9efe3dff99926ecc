package auth

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreateToken_AndValidateToken(t *testing.T) {
	userID := uuid.New()
	secret := "test-secret"

	token, err := CreateToken(userID, "acme_ops", RoleLogistics, secret, 24)
	require.NoError(t, err)

	claims, err := ValidateToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "acme_ops", claims.Username)
	require.Equal(t, RoleLogistics, claims.Role)
	require.Equal(t, userID.String(), claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := CreateToken(uuid.New(), "alice", RoleOwner, "secret-a", 24)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret-b")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := CreateToken(uuid.New(), "alice", RoleOwner, "secret", -1)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_Malformed(t *testing.T) {
	_, err := ValidateToken("not-a-jwt", "secret")
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestValidateToken_TamperedPayload(t *testing.T) {
	token, err := CreateToken(uuid.New(), "alice", RoleVendor, "secret", 24)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Splice the payload of a second token onto the first token's signature.
	other, err := CreateToken(uuid.New(), "mallory", RoleAdmin, "secret", 24)
	require.NoError(t, err)
	otherParts := strings.Split(other, ".")

	tampered := parts[0] + "." + otherParts[1] + "." + parts[2]
	_, err = ValidateToken(tampered, "secret")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
