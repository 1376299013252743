package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/models"
)

// twoFARepository is the SQL-backed implementation of [TwoFARepository]
// against the "twofa" and "backup_codes" tables.
type twoFARepository struct {
	logger *logger.Logger
	db     *DB
}

// NewTwoFARepository constructs a [TwoFARepository] backed by the provided
// database connection and logger.
func NewTwoFARepository(db *DB, logger *logger.Logger) TwoFARepository {
	logger.Debug().Msg("creating twofa repository")
	return &twoFARepository{
		db:     db,
		logger: logger,
	}
}

// UpsertEnrollment inserts a fresh enrollment or replaces an existing
// unconfirmed one. The conditional upsert leaves confirmed rows untouched,
// in which case zero rows are affected and [ErrTwoFAAlreadyConfirmed] is
// returned.
func (r *twoFARepository) UpsertEnrollment(ctx context.Context, enrollment models.TwoFA) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, upsertTwoFAEnrollment,
		enrollment.UserID, enrollment.SecretEnc, enrollment.CreatedAt)
	if err != nil {
		log.Err(err).Str("func", "*twoFARepository.UpsertEnrollment").Msg("error upserting enrollment")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", "*twoFARepository.UpsertEnrollment").Msg("error reading rows affected")
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrTwoFAAlreadyConfirmed
	}

	return nil
}

// GetByUserID returns the enrollment row for a user.
func (r *twoFARepository) GetByUserID(ctx context.Context, userID int64) (models.TwoFA, error) {
	log := logger.FromContext(ctx)

	var found models.TwoFA
	row := r.db.QueryRowContext(ctx, getTwoFAByUserID, userID)

	if err := row.Scan(&found.UserID, &found.SecretEnc, &found.Confirmed,
		&found.LastUsedStep, &found.CreatedAt, &found.ConfirmedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TwoFA{}, ErrTwoFANotFound
		}

		log.Err(err).Str("func", "*twoFARepository.GetByUserID").Msg("error scanning enrollment")
		return models.TwoFA{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return found, nil
}

// Confirm marks the enrollment confirmed at the given time.
//
// Returns [ErrTwoFANotFound] if the user has no enrollment.
func (r *twoFARepository) Confirm(ctx context.Context, userID int64, at time.Time) error {
	return r.execExpectingOneRow(ctx, "Confirm", confirmTwoFA, at, userID)
}

// UpdateLastUsedStep claims a validated TOTP step. The UPDATE only matches
// while the stored step is lower, so of two logins presenting the same code
// exactly one claim succeeds.
//
// Returns [ErrTOTPStepAlreadyUsed] when nothing was claimed: the step was
// spent by a concurrent login, or the enrollment no longer exists.
func (r *twoFARepository) UpdateLastUsedStep(ctx context.Context, userID int64, step int64) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, updateTwoFALastUsedStep, step, userID)
	if err != nil {
		log.Err(err).Str("func", "*twoFARepository.UpdateLastUsedStep").Msg("error claiming totp step")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", "*twoFARepository.UpdateLastUsedStep").Msg("error reading rows affected")
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrTOTPStepAlreadyUsed
	}

	return nil
}

// Delete removes the enrollment and its backup codes in one transaction.
// Deleting a non-existent enrollment is reported as [ErrTwoFANotFound].
func (r *twoFARepository) Delete(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*twoFARepository.Delete").Msg("error beginning transaction")
		return errors.Join(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, deleteTwoFA, userID)
	if err != nil {
		log.Err(err).Str("func", "*twoFARepository.Delete").Msg("error deleting enrollment")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", "*twoFARepository.Delete").Msg("error reading rows affected")
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrTwoFANotFound
	}

	if _, err := tx.ExecContext(ctx, deleteBackupCodesForUser, userID); err != nil {
		log.Err(err).Str("func", "*twoFARepository.Delete").Msg("error deleting backup codes")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).Str("func", "*twoFARepository.Delete").Msg("error committing transaction")
		return errors.Join(ErrCommitingTransaction, err)
	}

	return nil
}

// ReplaceBackupCodes atomically swaps the user's backup code set: the old
// codes are deleted and the new hashes inserted inside one transaction, so a
// failed regeneration can never leave a half-usable mix of old and new codes.
func (r *twoFARepository) ReplaceBackupCodes(ctx context.Context, userID int64, codeHashes []string) error {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*twoFARepository.ReplaceBackupCodes").Msg("error beginning transaction")
		return errors.Join(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteBackupCodesForUser, userID); err != nil {
		log.Err(err).Str("func", "*twoFARepository.ReplaceBackupCodes").Msg("error deleting old backup codes")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	now := time.Now()
	for _, hash := range codeHashes {
		if _, err := tx.ExecContext(ctx, insertBackupCode, userID, hash, now); err != nil {
			log.Err(err).Str("func", "*twoFARepository.ReplaceBackupCodes").Msg("error inserting backup code")
			return fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).Str("func", "*twoFARepository.ReplaceBackupCodes").Msg("error committing transaction")
		return errors.Join(ErrCommitingTransaction, err)
	}

	return nil
}

// ConsumeBackupCode marks the matching unused code as used. The UPDATE's
// used_at IS NULL guard makes consumption single-use even under concurrent
// presentation of the same code.
func (r *twoFARepository) ConsumeBackupCode(ctx context.Context, userID int64, codeHash string, at time.Time) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, consumeBackupCode, at, userID, codeHash)
	if err != nil {
		log.Err(err).Str("func", "*twoFARepository.ConsumeBackupCode").Msg("error consuming backup code")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", "*twoFARepository.ConsumeBackupCode").Msg("error reading rows affected")
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrBackupCodeNotFound
	}

	return nil
}

// CountUnusedBackupCodes reports how many codes remain redeemable.
func (r *twoFARepository) CountUnusedBackupCodes(ctx context.Context, userID int64) (int, error) {
	log := logger.FromContext(ctx)

	var count int
	if err := r.db.QueryRowContext(ctx, countUnusedBackupCodes, userID).Scan(&count); err != nil {
		log.Err(err).Str("func", "*twoFARepository.CountUnusedBackupCodes").Msg("error counting backup codes")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	return count, nil
}

// execExpectingOneRow runs a single-row UPDATE and converts "zero rows
// touched" into [ErrTwoFANotFound].
func (r *twoFARepository) execExpectingOneRow(ctx context.Context, op, query string, args ...any) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*twoFARepository."+op).Msg("error executing update")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", "*twoFARepository."+op).Msg("error reading rows affected")
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrTwoFANotFound
	}

	return nil
}
