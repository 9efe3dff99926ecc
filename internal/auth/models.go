package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies a user's function in the fleet system.
// Roles are assigned at registration and immutable afterwards; no endpoint
// changes them.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleVendor     Role = "vendor"
	RoleLogistics  Role = "logistics"
	RoleAdmin      Role = "admin"
	RoleOperations Role = "operations"
)

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleVendor, RoleLogistics, RoleAdmin, RoleOperations:
		return true
	}
	return false
}

// UserStatus is the account lifecycle state.
type UserStatus string

const (
	StatusPending  UserStatus = "Pending"
	StatusActive   UserStatus = "Active"
	StatusInactive UserStatus = "Inactive"
)

// User is a row in the users table.
type User struct {
	ID              uuid.UUID  `db:"id"`
	Username        string     `db:"username"`
	Email           string     `db:"email"`
	PasswordHash    string     `db:"password_hash"`
	FullName        string     `db:"full_name"`
	CompanyName     string     `db:"company_name"`
	Role            Role       `db:"role"`
	Phone           *string    `db:"phone"`
	Address         *string    `db:"address"`
	Status          UserStatus `db:"status"`
	PasswordChanged bool       `db:"password_changed"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// Profile is the user view returned by the API (no secret material).
type Profile struct {
	ID              uuid.UUID  `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	FullName        string     `json:"full_name"`
	CompanyName     string     `json:"company_name"`
	Role            Role       `json:"role"`
	Phone           *string    `json:"phone"`
	Address         *string    `json:"address"`
	Status          UserStatus `json:"status"`
	PasswordChanged bool       `json:"password_changed"`
}
