package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEmailAlreadyExists is returned when an attempt to register a new
	// account fails because a user with the same email already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrNoUserWasFound is returned when a query expected to match at least one
	// user record produces an empty result set.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrRefreshTokenNotFound is returned when no refresh token row matches
	// the presented token hash.
	ErrRefreshTokenNotFound = errors.New("refresh token was not found")

	// ErrTwoFANotFound is returned when a user has no TOTP enrollment row.
	ErrTwoFANotFound = errors.New("two-factor enrollment was not found")

	// ErrTwoFAAlreadyConfirmed is returned when an upsert would overwrite a
	// confirmed enrollment, which only a race between setup and activation
	// can produce.
	ErrTwoFAAlreadyConfirmed = errors.New("two-factor enrollment already confirmed")

	// ErrTOTPStepAlreadyUsed is returned when claiming a validated TOTP time
	// step finds an equal or later step already recorded, meaning the code
	// was spent by a concurrent login (or the enrollment row is gone).
	ErrTOTPStepAlreadyUsed = errors.New("totp step already used")

	// ErrBackupCodeNotFound is returned when no unused backup code matches
	// the presented code hash.
	ErrBackupCodeNotFound = errors.New("backup code was not found")

	// ErrVerificationCodeNotFound is returned when no usable verification
	// code matches: wrong code, already used, or expired.
	ErrVerificationCodeNotFound = errors.New("verification code was not found")

	// ErrPlanNotFound is returned when a plan lookup by ID or code matches
	// nothing.
	ErrPlanNotFound = errors.New("plan was not found")

	// ErrPlanCodeAlreadyExists is returned when creating a plan with a code
	// that is already taken.
	ErrPlanCodeAlreadyExists = errors.New("plan code already exists")

	// ErrSubscriptionNotFound is returned when a subscription lookup matches
	// nothing, including "user has no live subscription".
	ErrSubscriptionNotFound = errors.New("subscription was not found")

	// ErrActiveSubscriptionExists is returned when creating a subscription
	// for a user who already has a live (trialing or active) one. Enforced
	// by a partial unique index so concurrent subscribes cannot both win.
	ErrActiveSubscriptionExists = errors.New("active subscription already exists")

	// ErrTwoFATicketNotFound is returned when a second-factor login ticket
	// does not exist, has expired, or was already consumed.
	ErrTwoFATicketNotFound = errors.New("twofa ticket was not found")

	// ErrQRSessionNotFound is returned when a QR sign-in session does not
	// exist or its TTL has lapsed. Callers cannot distinguish the two, which
	// is deliberate: expiry must not leak whether an ID ever existed.
	ErrQRSessionNotFound = errors.New("qr session was not found")

	// ErrQRSessionConflict is returned when a QR session state transition
	// finds the session in a different state than required, either because
	// the flow is being replayed or because a concurrent request won.
	ErrQRSessionConflict = errors.New("qr session state conflict")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
