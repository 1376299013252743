package models

import "time"

// TwoFA is a user's TOTP second-factor enrollment.
//
// The TOTP secret is kept AES-256-GCM encrypted at rest; the plaintext
// base32 secret exists only inside the service layer while generating or
// validating codes, and in the single setup response shown to the user.
type TwoFA struct {
	// UserID is the owning account; one enrollment per user.
	UserID int64 `json:"-"`

	// SecretEnc is the encrypted TOTP secret blob (nonce ‖ ciphertext).
	SecretEnc []byte `json:"-"`

	// Confirmed flips to true after the user proves code possession once.
	// Unconfirmed enrollments never gate login.
	Confirmed bool `json:"confirmed"`

	// LastUsedStep is the highest TOTP time step that validated
	// successfully. Codes at or below this step are rejected, so a
	// captured code cannot be replayed inside the drift window.
	LastUsedStep int64 `json:"-"`

	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

// TableName returns the name of the database table
// associated with the TwoFA model.
func (t TwoFA) TableName() string {
	return "twofa"
}

// BackupCode is a single-use recovery code for accounts with 2FA enabled.
// Only the keyed hash is stored; plaintext codes are shown once at
// generation time.
type BackupCode struct {
	ID        int64      `json:"-"`
	UserID    int64      `json:"-"`
	CodeHash  string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// TableName returns the name of the database table
// associated with the BackupCode model.
func (b BackupCode) TableName() string {
	return "backup_codes"
}

// TwoFAStatus is the public view of an account's second-factor state.
type TwoFAStatus struct {
	Enabled              bool       `json:"enabled"`
	ConfirmedAt          *time.Time `json:"confirmed_at,omitempty"`
	BackupCodesRemaining int        `json:"backup_codes_remaining"`
}

// TwoFASetup is returned once from 2FA setup: the freshly generated secret
// in the three forms a client needs to enroll an authenticator app.
type TwoFASetup struct {
	Secret      string `json:"secret"`
	OTPAuthURL  string `json:"otpauth_url"`
	QRPNGBase64 string `json:"qr_png_base64"`
}
