package models

// APIError is the uniform JSON error body. Error is a stable snake_case
// code clients can switch on; Detail is a human-readable explanation.
type APIError struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// LoginResponse is returned by the password step of login. Exactly one of
// the two shapes is populated: a completed token pair, or a 2FA ticket the
// client must exchange together with a code.
type LoginResponse struct {
	*TokenPair
	TwoFARequired bool   `json:"twofa_required,omitempty"`
	TwoFATicket   string `json:"twofa_ticket,omitempty"`
}

// BackupCodesResponse delivers freshly generated backup codes. This is the
// only time the plaintext codes exist outside the client.
type BackupCodesResponse struct {
	BackupCodes []string `json:"backup_codes"`
}

// ActivateResponse confirms 2FA enrollment and hands over the initial
// backup code set.
type ActivateResponse struct {
	Enabled     bool     `json:"enabled"`
	BackupCodes []string `json:"backup_codes"`
}

// MeResponse is the authenticated profile view.
type MeResponse struct {
	User         User              `json:"user"`
	Subscription *SubscriptionView `json:"subscription,omitempty"`
}

// HealthResponse reports liveness of the service and its dependencies.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// VersionResponse reports build metadata for diagnostics.
type VersionResponse struct {
	Version string `json:"version"`
	Date    string `json:"date,omitempty"`
	Commit  string `json:"commit,omitempty"`
}
