package auth

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_AndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)

	require.NoError(t, VerifyPassword(hash, "s3cret-pass"))
	require.Error(t, VerifyPassword(hash, "wrong-pass"))
}

func TestGeneratePassword(t *testing.T) {
	hexOnly := regexp.MustCompile(`^[0-9a-f]+$`)

	seen := make(map[string]bool)
	for i := 0; i < 16; i++ {
		password, err := GeneratePassword()
		require.NoError(t, err)
		require.Len(t, password, GeneratedPasswordLength)
		require.Regexp(t, hexOnly, password)
		seen[password] = true
	}

	// 16 draws from a 32-bit space colliding is effectively impossible.
	require.Greater(t, len(seen), 1)
}
