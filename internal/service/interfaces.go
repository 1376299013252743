package service

import (
	"context"
	"time"

	"github.com/galionhq/nexus/models"
)

// AuthService owns accounts and sessions: registration, both login factors,
// refresh token rotation and access token parsing.
type AuthService interface {
	// Register creates a new account with an argon2id password hash.
	Register(ctx context.Context, req models.RegisterRequest) (models.User, error)

	// Login performs the password step. For accounts without 2FA it returns
	// a completed token pair; for accounts with 2FA it returns a short-lived
	// ticket the client must exchange via LoginTwoFA.
	Login(ctx context.Context, req models.LoginRequest, device models.DeviceInfo) (models.LoginResponse, error)

	// LoginTwoFA exchanges a ticket plus a TOTP or backup code for tokens.
	LoginTwoFA(ctx context.Context, req models.TwoFALoginRequest, device models.DeviceInfo) (models.TokenPair, error)

	// Refresh rotates a refresh token: the presented token is revoked and a
	// fresh pair is minted. Presenting an already rotated token revokes
	// every session of the user and returns ErrRefreshTokenReused.
	Refresh(ctx context.Context, refreshToken string, device models.DeviceInfo) (models.TokenPair, error)

	// Logout revokes the session behind the refresh token. Revoking an
	// unknown or already revoked token is a no-op.
	Logout(ctx context.Context, refreshToken string) error

	// GetUser returns the account with the given ID.
	GetUser(ctx context.Context, userID int64) (models.User, error)

	// ParseToken validates a raw JWT access token string.
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)

	// MintPair issues a fresh access + refresh pair for the user, recording
	// how and from which device the session was created. The QR sign-in
	// flow mints through here on approval.
	MintPair(ctx context.Context, userID int64, issuedVia string, device models.DeviceInfo) (models.TokenPair, error)
}

// TwoFAService manages TOTP enrollments and backup codes.
type TwoFAService interface {
	// Setup generates a fresh TOTP secret for the user and returns it in
	// the three forms an authenticator app can enroll from. The enrollment
	// stays inactive until Activate proves code possession.
	Setup(ctx context.Context, userID int64) (models.TwoFASetup, error)

	// Activate confirms the pending enrollment with a valid current code,
	// flips 2FA on for the account and returns the initial backup codes.
	Activate(ctx context.Context, userID int64, code string) ([]string, error)

	// Disable turns 2FA off. It requires the account password and a valid
	// code (TOTP or backup), and deletes the enrollment with its codes.
	Disable(ctx context.Context, userID int64, password, code string) error

	// Status reports whether 2FA is on and how many backup codes remain.
	Status(ctx context.Context, userID int64) (models.TwoFAStatus, error)

	// RegenerateBackupCodes replaces the backup code set, invalidating all
	// previous codes. Requires a valid current code.
	RegenerateBackupCodes(ctx context.Context, userID int64, code string) ([]string, error)

	// VerifyLoginCode checks a second-factor code during login: a 6-digit
	// TOTP code within the drift window, or an unused backup code which is
	// consumed on success.
	VerifyLoginCode(ctx context.Context, userID int64, code string) error
}

// QRLoginService runs the cross-device QR sign-in handshake.
type QRLoginService interface {
	// Create opens a pending session for a logged-out device and returns
	// the QR payload plus the poll secret.
	Create(ctx context.Context, device models.DeviceInfo) (models.QRCreated, error)

	// Poll is called by the creating device. It authenticates with the poll
	// secret and observes the session state; the poll that sees "approved"
	// consumes the session and receives the minted tokens.
	Poll(ctx context.Context, sessionID, secret string) (models.QRPollResult, error)

	// Claim binds a scanned session to the logged-in account presenting the
	// scan token, and returns the initiating device's description.
	Claim(ctx context.Context, userID int64, sessionID, scanToken string) (models.QRSessionInfo, error)

	// Approve mints a token pair for the claiming account and parks it on
	// the session for the final poll to collect.
	Approve(ctx context.Context, userID int64, sessionID string) error

	// Deny refuses the sign-in. The polling device observes the denial.
	Deny(ctx context.Context, userID int64, sessionID string) error
}

// BillingService manages plans and subscription lifecycles. There is no
// payment leg: subscribing, renewing and canceling are pure state.
type BillingService interface {
	// ListPlans returns plans cheapest first. Admins may include retired
	// plans; everyone else sees active ones only.
	ListPlans(ctx context.Context, includeInactive bool) ([]models.Plan, error)

	// CreatePlan registers a new plan (admin only).
	CreatePlan(ctx context.Context, req models.PlanRequest) (models.Plan, error)

	// UpdatePlan patches an existing plan (admin only); nil fields are left
	// unchanged. Plan codes are immutable.
	UpdatePlan(ctx context.Context, planID string, patch models.PlanPatch) (models.Plan, error)

	// Subscribe starts a subscription to the active plan with the given
	// code, trialing when the plan carries trial days.
	Subscribe(ctx context.Context, userID int64, planCode string) (models.SubscriptionView, error)

	// MySubscription returns the user's live subscription with its plan.
	MySubscription(ctx context.Context, userID int64) (models.SubscriptionView, error)

	// Cancel marks the live subscription to lapse at period end, or ends it
	// on the spot when immediate is set.
	Cancel(ctx context.Context, userID int64, immediate bool) (models.SubscriptionView, error)

	// Resume clears a pending cancellation before the period ends.
	Resume(ctx context.Context, userID int64) (models.SubscriptionView, error)

	// ChangePlan switches the live subscription to another active plan. The
	// new plan takes effect immediately with a fresh period; a trial ends.
	ChangePlan(ctx context.Context, userID int64, planCode string) (models.SubscriptionView, error)

	// Reconcile advances every subscription whose period has ended: renew,
	// convert an ended trial, cancel at period end, or expire when the plan
	// is gone. The background worker calls this on a fixed interval.
	Reconcile(ctx context.Context, now time.Time) (models.ReconcileStats, error)
}

// VerificationService issues and redeems one-time codes for email
// verification and password reset.
type VerificationService interface {
	// IssueEmailVerification sends a fresh verification code to the
	// account's email address.
	IssueEmailVerification(ctx context.Context, userID int64) error

	// VerifyEmail redeems a verification code and marks the email
	// confirmed.
	VerifyEmail(ctx context.Context, email, code string) error

	// RequestPasswordReset issues a reset code when the email matches an
	// account. Unknown emails succeed silently to prevent enumeration.
	RequestPasswordReset(ctx context.Context, email string) error

	// ConfirmPasswordReset redeems a reset code, replaces the password and
	// revokes every session of the account.
	ConfirmPasswordReset(ctx context.Context, req models.PasswordResetConfirmRequest) error
}

// CodeSender delivers one-time codes out of band. The development
// implementation writes them to the server log.
type CodeSender interface {
	SendCode(ctx context.Context, email, purpose, code string) error
}

// AppInfoService provides application metadata for the version endpoint.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// HealthService reports reachability of the platform's dependencies.
type HealthService interface {
	Check(ctx context.Context) models.HealthResponse
}
