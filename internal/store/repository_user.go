package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/models"
)

// userRepository is the SQL-backed implementation of [UserRepository].
// It handles account creation and lookup against the "users" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new account and returns the fully populated
// [models.User] with server-assigned fields (UserID, CreatedAt).
//
// The INSERT uses the [createUser] query which returns all columns via a
// RETURNING clause, so the caller receives the canonical database
// representation of the newly created account.
//
// Error handling:
//   - unique violation on email → [ErrEmailAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createUser, user.Email, user.Name, user.PasswordHash, user.Role)

	var created models.User
	if err := row.Scan(&created.UserID, &created.Email, &created.Name, &created.PasswordHash,
		&created.Role, &created.EmailVerified, &created.TwoFAEnabled, &created.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrEmailAlreadyExists
		}

		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error inserting user")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return created, nil
}

// FindUserByEmail retrieves the account whose email matches. Emails are
// stored lowercased, so callers normalize before the lookup.
//
// Error handling:
//   - no matching row → [ErrNoUserWasFound].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	log := logger.FromContext(ctx)

	var found models.User
	row := r.db.QueryRowContext(ctx, findUserByEmail, email)

	if err := row.Scan(&found.UserID, &found.Email, &found.Name, &found.PasswordHash,
		&found.Role, &found.EmailVerified, &found.TwoFAEnabled, &found.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserWasFound
		}

		log.Err(err).Str("func", "*userRepository.FindUserByEmail").Msg("error scanning user")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return found, nil
}

// GetUserByID retrieves the account with the given primary key.
//
// Error handling mirrors [userRepository.FindUserByEmail].
func (r *userRepository) GetUserByID(ctx context.Context, userID int64) (models.User, error) {
	log := logger.FromContext(ctx)

	var found models.User
	row := r.db.QueryRowContext(ctx, getUserByID, userID)

	if err := row.Scan(&found.UserID, &found.Email, &found.Name, &found.PasswordHash,
		&found.Role, &found.EmailVerified, &found.TwoFAEnabled, &found.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserWasFound
		}

		log.Err(err).Str("func", "*userRepository.GetUserByID").Msg("error scanning user")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return found, nil
}

// SetEmailVerified marks the account's email as confirmed.
//
// Returns [ErrNoUserWasFound] if the user does not exist.
func (r *userRepository) SetEmailVerified(ctx context.Context, userID int64) error {
	return r.execExpectingOneRow(ctx, "SetEmailVerified", setUserEmailVerified, userID)
}

// SetTwoFAEnabled flips the denormalized 2FA flag on the user row so the
// login path can branch without touching the twofa table.
//
// Returns [ErrNoUserWasFound] if the user does not exist.
func (r *userRepository) SetTwoFAEnabled(ctx context.Context, userID int64, enabled bool) error {
	return r.execExpectingOneRow(ctx, "SetTwoFAEnabled", setUserTwoFAEnabled, enabled, userID)
}

// UpdatePassword replaces the stored password hash.
//
// Returns [ErrNoUserWasFound] if the user does not exist.
func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.execExpectingOneRow(ctx, "UpdatePassword", updateUserPassword, passwordHash, userID)
}

// execExpectingOneRow runs a single-row UPDATE and converts "zero rows
// touched" into [ErrNoUserWasFound].
func (r *userRepository) execExpectingOneRow(ctx context.Context, op, query string, args ...any) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository."+op).Msg("error executing update")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", "*userRepository."+op).Msg("error reading rows affected")
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrNoUserWasFound
	}

	return nil
}
