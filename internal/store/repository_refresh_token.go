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

// refreshTokenRepository is the SQL-backed implementation of
// [RefreshTokenRepository] against the "refresh_tokens" table.
type refreshTokenRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewRefreshTokenRepository constructs a [RefreshTokenRepository] backed by
// the provided database connection and logger.
func NewRefreshTokenRepository(db *DB, logger *logger.Logger) RefreshTokenRepository {
	logger.Debug().Msg("creating refresh token repository")
	return &refreshTokenRepository{
		db:     db,
		logger: logger,
	}
}

// Save inserts a refresh token row and returns it with the server-assigned
// ID populated.
func (r *refreshTokenRepository) Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, saveRefreshToken,
		token.UserID, token.TokenHash, token.UserAgent, token.IP, token.IssuedVia,
		token.CreatedAt, token.ExpiresAt)

	if err := row.Scan(&token.ID); err != nil {
		log.Err(err).Str("func", "*refreshTokenRepository.Save").Msg("error inserting refresh token")
		return models.RefreshToken{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return token, nil
}

// FindByHash returns the row for a token hash in any state. The service
// layer inspects RevokedAt itself: a revoked token showing up again means
// the token leaked and every session of that user must be cut.
func (r *refreshTokenRepository) FindByHash(ctx context.Context, tokenHash string) (models.RefreshToken, error) {
	log := logger.FromContext(ctx)

	var found models.RefreshToken
	row := r.db.QueryRowContext(ctx, findRefreshTokenByHash, tokenHash)

	if err := row.Scan(&found.ID, &found.UserID, &found.TokenHash, &found.UserAgent, &found.IP,
		&found.IssuedVia, &found.CreatedAt, &found.ExpiresAt, &found.RevokedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RefreshToken{}, ErrRefreshTokenNotFound
		}

		log.Err(err).Str("func", "*refreshTokenRepository.FindByHash").Msg("error scanning refresh token")
		return models.RefreshToken{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return found, nil
}

// Revoke stamps a single live token revoked. Revoking an already revoked
// token is a no-op, not an error: rotation and logout may race.
func (r *refreshTokenRepository) Revoke(ctx context.Context, id int64, at time.Time) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, revokeRefreshToken, at, id); err != nil {
		log.Err(err).Str("func", "*refreshTokenRepository.Revoke").Msg("error revoking refresh token")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

// RevokeAllForUser revokes every live token of a user and reports how many
// rows were touched. Used on token reuse detection and on password reset.
func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userID int64, at time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, revokeAllRefreshTokensForUser, at, userID)
	if err != nil {
		log.Err(err).Str("func", "*refreshTokenRepository.RevokeAllForUser").Msg("error revoking refresh tokens")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", "*refreshTokenRepository.RevokeAllForUser").Msg("error reading rows affected")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	return affected, nil
}

// DeleteExpired removes rows whose expiry is before the cutoff. Revoked rows
// are kept until they expire so reuse detection still sees them.
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, deleteExpiredRefreshTokens, before)
	if err != nil {
		log.Err(err).Str("func", "*refreshTokenRepository.DeleteExpired").Msg("error deleting expired refresh tokens")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", "*refreshTokenRepository.DeleteExpired").Msg("error reading rows affected")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	return affected, nil
}
