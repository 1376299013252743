package models

import "time"

// Roles a user account can hold. Plan management endpoints require RoleAdmin;
// everything else is available to any authenticated account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account entity used for authentication and authorization.
// It contains identity attributes and credential-related data.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID int64 `json:"id"`

	// Email is the unique sign-in identifier, stored lowercased.
	Email string `json:"email"`

	// Name is the display name of the user.
	// It is non-sensitive and may be shown in UI.
	Name string `json:"name"`

	// PasswordHash is the encoded argon2id digest of the user's password
	// ($argon2id$v=19$m=...,t=...,p=...$salt$hash). Never plaintext, never
	// serialized to JSON.
	PasswordHash string `json:"-"`

	// Role is the authorization role: RoleUser or RoleAdmin.
	Role string `json:"role"`

	// EmailVerified reports whether the account's email address has been
	// confirmed with a verification code.
	EmailVerified bool `json:"email_verified"`

	// TwoFAEnabled reports whether a confirmed TOTP second factor is
	// registered for the account. Kept on the user row so the login path
	// can branch without a second lookup.
	TwoFAEnabled bool `json:"twofa_enabled"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// IsAdmin reports whether the account holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
