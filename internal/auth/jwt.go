package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired is returned when a token is past its validity window.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenMalformed is returned when the token's structural shape is wrong.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrTokenInvalid is returned for signature mismatches and any other
	// verification failure.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims are the identity attributes embedded in a session token.
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
	jwt.RegisteredClaims
}

// CreateToken creates a new signed session token for the given identity.
// The token is signed with HS256 and expires after ttlHours. Issuance is
// stateless: no record of the token is kept and there is no server-side
// revocation; logout is client-side erasure.
func CreateToken(userID uuid.UUID, username string, role Role, secret string, ttlHours int) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifies a session token and returns the embedded claims.
// Verification fails closed: tampering yields ErrTokenInvalid, a past expiry
// yields ErrTokenExpired, and a structurally broken token yields
// ErrTokenMalformed.
//
// The claims are returned exactly as issued. The credential store is not
// re-read, so role and status are a snapshot taken at login and may go stale
// until the token's natural expiry.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenInvalid
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
