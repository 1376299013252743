package models

// Request bodies accepted by the REST API. Handlers decode these verbatim;
// all validation happens in the service layer so the rules are shared by
// every transport.

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the first factor: email + password.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TwoFALoginRequest is the second factor exchange: the ticket issued by the
// password step plus either a 6-digit TOTP code or a backup code.
type TwoFALoginRequest struct {
	Ticket string `json:"twofa_ticket"`
	Code   string `json:"code"`
}

// RefreshRequest rotates a refresh token into a fresh pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// CodeRequest carries a bare one-time code (2FA activate, backup-code
// regeneration).
type CodeRequest struct {
	Code string `json:"code"`
}

// TwoFADisableRequest proves both knowledge factors before tearing 2FA down.
type TwoFADisableRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}

// VerifyEmailRequest redeems an email verification code.
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// PasswordResetRequest asks for a reset code to be issued.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest redeems a reset code for a new password.
type PasswordResetConfirmRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// QRCreateRequest opens a QR sign-in session from a logged-out device.
type QRCreateRequest struct {
	DeviceName string `json:"device_name"`
}

// QRClaimRequest presents the scan token read from the QR code.
type QRClaimRequest struct {
	ScanToken string `json:"scan_token"`
}

// PlanRequest creates or updates a plan (admin only). Pointer fields on
// update mean "leave unchanged" when nil.
type PlanRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	Interval    string `json:"interval"`
	TrialDays   int    `json:"trial_days"`
	Active      *bool  `json:"active,omitempty"`
}

// SubscribeRequest starts a subscription to the plan with the given code.
type SubscribeRequest struct {
	PlanCode string `json:"plan_code"`
}
