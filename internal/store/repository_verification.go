package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/models"
)

// verificationCodeRepository is the SQL-backed implementation of
// [VerificationCodeRepository] against the "verification_codes" table.
type verificationCodeRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewVerificationCodeRepository constructs a [VerificationCodeRepository]
// backed by the provided database connection and logger.
func NewVerificationCodeRepository(db *DB, logger *logger.Logger) VerificationCodeRepository {
	logger.Debug().Msg("creating verification code repository")
	return &verificationCodeRepository{
		db:     db,
		logger: logger,
	}
}

// Create invalidates any previous unused codes for the same user and purpose,
// then inserts the new one, inside a single transaction. At most one code per
// (user, purpose) is ever redeemable.
func (r *verificationCodeRepository) Create(ctx context.Context, code models.VerificationCode) (models.VerificationCode, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*verificationCodeRepository.Create").Msg("error beginning transaction")
		return models.VerificationCode{}, errors.Join(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, invalidateVerificationCodes,
		code.CreatedAt, code.UserID, code.Purpose); err != nil {
		log.Err(err).Str("func", "*verificationCodeRepository.Create").Msg("error invalidating previous codes")
		return models.VerificationCode{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	row := tx.QueryRowContext(ctx, insertVerificationCode,
		code.UserID, code.Purpose, code.CodeHash, code.CreatedAt, code.ExpiresAt)
	if err := row.Scan(&code.ID); err != nil {
		log.Err(err).Str("func", "*verificationCodeRepository.Create").Msg("error inserting verification code")
		return models.VerificationCode{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).Str("func", "*verificationCodeRepository.Create").Msg("error committing transaction")
		return models.VerificationCode{}, errors.Join(ErrCommitingTransaction, err)
	}

	return code, nil
}

// Consume marks the matching usable code as used. The UPDATE carries all the
// usability conditions (matching hash, not used, not expired), so an expired
// or replayed code is indistinguishable from a wrong one.
func (r *verificationCodeRepository) Consume(ctx context.Context, userID int64, purpose, codeHash string, now time.Time) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, consumeVerificationCode, now, userID, purpose, codeHash)
	if err != nil {
		log.Err(err).Str("func", "*verificationCodeRepository.Consume").Msg("error consuming verification code")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", "*verificationCodeRepository.Consume").Msg("error reading rows affected")
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrVerificationCodeNotFound
	}

	return nil
}

// DeleteExpired removes rows whose expiry is before the cutoff and reports
// how many were deleted.
func (r *verificationCodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, deleteExpiredVerificationCodes, before)
	if err != nil {
		log.Err(err).Str("func", "*verificationCodeRepository.DeleteExpired").Msg("error deleting expired codes")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", "*verificationCodeRepository.DeleteExpired").Msg("error reading rows affected")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	return affected, nil
}
