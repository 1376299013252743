package models

import "time"

// Purposes a one-time verification code can be issued for.
const (
	PurposeVerifyEmail   = "verify_email"
	PurposeResetPassword = "reset_password"
)

// VerificationCode is a short-lived, single-use numeric code delivered out
// of band (email in production, the server log in development). Only the
// keyed hash is persisted.
type VerificationCode struct {
	ID        int64      `json:"-"`
	UserID    int64      `json:"-"`
	Purpose   string     `json:"purpose"`
	CodeHash  string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// TableName returns the name of the database table
// associated with the VerificationCode model.
func (v VerificationCode) TableName() string {
	return "verification_codes"
}

// Usable reports whether the code can still be redeemed at now.
func (v VerificationCode) Usable(now time.Time) bool {
	return v.UsedAt == nil && now.Before(v.ExpiresAt)
}
