package store

import (
	"context"
	"time"

	"github.com/galionhq/nexus/models"
)

// UserRepository persists user accounts.
type UserRepository interface {
	// CreateUser inserts a new account and returns it with server-assigned
	// fields populated. Returns ErrEmailAlreadyExists on a duplicate email.
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// FindUserByEmail looks an account up by its lowercased email.
	// Returns ErrNoUserWasFound when no row matches.
	FindUserByEmail(ctx context.Context, email string) (models.User, error)

	// GetUserByID looks an account up by primary key.
	// Returns ErrNoUserWasFound when no row matches.
	GetUserByID(ctx context.Context, userID int64) (models.User, error)

	// SetEmailVerified marks the account's email as confirmed.
	SetEmailVerified(ctx context.Context, userID int64) error

	// SetTwoFAEnabled flips the denormalized 2FA flag on the user row.
	SetTwoFAEnabled(ctx context.Context, userID int64, enabled bool) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// RefreshTokenRepository persists the hashed halves of refresh sessions.
type RefreshTokenRepository interface {
	// Save inserts a refresh token row and returns it with the ID set.
	Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)

	// FindByHash returns the row matching a token hash regardless of its
	// revoked or expired state; liveness is the caller's decision because a
	// revoked-but-presented token is a reuse signal, not a miss.
	// Returns ErrRefreshTokenNotFound when no row matches.
	FindByHash(ctx context.Context, tokenHash string) (models.RefreshToken, error)

	// Revoke stamps a single token revoked at the given time.
	Revoke(ctx context.Context, id int64, at time.Time) error

	// RevokeAllForUser revokes every live token of a user and reports how
	// many rows were touched.
	RevokeAllForUser(ctx context.Context, userID int64, at time.Time) (int64, error)

	// DeleteExpired removes rows whose expiry is before the given cutoff and
	// reports how many were deleted.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// TwoFARepository persists TOTP enrollments and their backup codes.
type TwoFARepository interface {
	// UpsertEnrollment inserts a fresh enrollment or replaces an existing
	// unconfirmed one. A confirmed enrollment is never silently replaced.
	UpsertEnrollment(ctx context.Context, enrollment models.TwoFA) error

	// GetByUserID returns the enrollment row.
	// Returns ErrTwoFANotFound when the user has none.
	GetByUserID(ctx context.Context, userID int64) (models.TwoFA, error)

	// Confirm marks the enrollment confirmed at the given time.
	Confirm(ctx context.Context, userID int64, at time.Time) error

	// UpdateLastUsedStep atomically claims a validated TOTP step: the write
	// only lands while the stored step is lower, so concurrent logins with
	// the same code cannot both pass. Returns ErrTOTPStepAlreadyUsed when
	// the claim was lost (or the enrollment is gone).
	UpdateLastUsedStep(ctx context.Context, userID int64, step int64) error

	// Delete removes the enrollment and, via cascade or explicit delete, its
	// backup codes.
	Delete(ctx context.Context, userID int64) error

	// ReplaceBackupCodes atomically swaps the user's backup code set for a
	// new one.
	ReplaceBackupCodes(ctx context.Context, userID int64, codeHashes []string) error

	// ConsumeBackupCode marks the matching unused code as used.
	// Returns ErrBackupCodeNotFound if no unused code matches the hash.
	ConsumeBackupCode(ctx context.Context, userID int64, codeHash string, at time.Time) error

	// CountUnusedBackupCodes reports how many codes remain redeemable.
	CountUnusedBackupCodes(ctx context.Context, userID int64) (int, error)
}

// VerificationCodeRepository persists hashed one-time codes for email
// verification and password reset.
type VerificationCodeRepository interface {
	// Create invalidates any previous unused codes for the same user and
	// purpose, then inserts the new one.
	Create(ctx context.Context, code models.VerificationCode) (models.VerificationCode, error)

	// Consume marks the matching usable code as used.
	// Returns ErrVerificationCodeNotFound if no code matches, the code has
	// been used already, or it is past its expiry.
	Consume(ctx context.Context, userID int64, purpose, codeHash string, now time.Time) error

	// DeleteExpired removes rows whose expiry is before the given cutoff and
	// reports how many were deleted.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// PlanRepository persists subscription plans.
type PlanRepository interface {
	// Create inserts a plan. Returns ErrPlanCodeAlreadyExists on a duplicate
	// plan code.
	Create(ctx context.Context, plan models.Plan) (models.Plan, error)

	// Update applies the non-nil fields of the patch to the plan row.
	// Returns ErrPlanNotFound when the plan does not exist.
	Update(ctx context.Context, planID string, patch models.PlanPatch) (models.Plan, error)

	// GetByID returns the plan with the given ID.
	// Returns ErrPlanNotFound when no row matches.
	GetByID(ctx context.Context, planID string) (models.Plan, error)

	// GetByCode returns the plan with the given code.
	// Returns ErrPlanNotFound when no row matches.
	GetByCode(ctx context.Context, code string) (models.Plan, error)

	// List returns plans ordered by price, optionally filtered to active
	// ones only.
	List(ctx context.Context, onlyActive bool) ([]models.Plan, error)
}

// SubscriptionRepository persists subscriptions.
type SubscriptionRepository interface {
	// Create inserts a subscription. Returns ErrActiveSubscriptionExists if
	// the user already holds a live one.
	Create(ctx context.Context, sub models.Subscription) (models.Subscription, error)

	// GetByID returns the subscription with the given ID.
	// Returns ErrSubscriptionNotFound when no row matches.
	GetByID(ctx context.Context, id string) (models.Subscription, error)

	// GetLiveByUserID returns the user's trialing or active subscription.
	// Returns ErrSubscriptionNotFound when the user has none.
	GetLiveByUserID(ctx context.Context, userID int64) (models.Subscription, error)

	// Update rewrites the mutable subscription fields (status, period
	// bounds, plan, cancel flag) of an existing row.
	Update(ctx context.Context, sub models.Subscription) (models.Subscription, error)

	// ListDue returns live subscriptions whose current period has ended as
	// of the given time, oldest first, capped at limit. The reconciler
	// worker processes these.
	ListDue(ctx context.Context, asOf time.Time, limit uint64) ([]models.Subscription, error)
}

// TwoFATicketStore holds the short-lived tickets minted by the password step
// of login for accounts with 2FA enabled. Tickets live in Redis, keyed by
// their HMAC hash; the value is the user they grant a second-factor attempt
// for.
type TwoFATicketStore interface {
	// Save stores a ticket hash for the given user under a TTL.
	Save(ctx context.Context, ticketHash string, userID int64, ttl time.Duration) error

	// Lookup returns the user a ticket belongs to without consuming it.
	// Returns ErrTwoFATicketNotFound for unknown or expired tickets.
	Lookup(ctx context.Context, ticketHash string) (int64, error)

	// Consume atomically removes the ticket and returns its user. Exactly
	// one concurrent caller wins; the rest get ErrTwoFATicketNotFound.
	Consume(ctx context.Context, ticketHash string) (int64, error)
}

// QRSessionStore persists QR sign-in sessions in Redis under a TTL.
type QRSessionStore interface {
	// Save writes the session, keyed by its ID, expiring at ExpiresAt.
	Save(ctx context.Context, session models.QRSession) error

	// Get returns the session with the given ID.
	// Returns ErrQRSessionNotFound if it does not exist or has expired.
	Get(ctx context.Context, sessionID string) (models.QRSession, error)

	// Transition atomically moves the session from one state to another,
	// applying mutate to the session in between. The write is optimistic:
	// if a concurrent request changes the session first, the transition
	// retries, and returns ErrQRSessionConflict if the session is not in
	// the required from state.
	Transition(ctx context.Context, sessionID, from, to string, mutate func(*models.QRSession)) (models.QRSession, error)

	// Delete removes the session immediately.
	Delete(ctx context.Context, sessionID string) error
}
