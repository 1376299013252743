package store

// Static SQL. Placeholders use the $N form, which both backends accept; the
// dynamic plan and subscription queries are built with squirrel instead and
// live next to their repositories.
const (
	createUser = `INSERT INTO users (email, name, password_hash, role)
    VALUES ($1, $2, $3, $4)
    RETURNING user_id, email, name, password_hash, role, email_verified, twofa_enabled, created_at;`

	findUserByEmail = `SELECT user_id, email, name, password_hash, role, email_verified, twofa_enabled, created_at
    FROM users
    WHERE email = $1;`

	getUserByID = `SELECT user_id, email, name, password_hash, role, email_verified, twofa_enabled, created_at
    FROM users
    WHERE user_id = $1;`

	setUserEmailVerified = `UPDATE users SET email_verified = TRUE WHERE user_id = $1;`

	setUserTwoFAEnabled = `UPDATE users SET twofa_enabled = $1 WHERE user_id = $2;`

	updateUserPassword = `UPDATE users SET password_hash = $1 WHERE user_id = $2;`

	saveRefreshToken = `INSERT INTO refresh_tokens (user_id, token_hash, user_agent, ip, issued_via, created_at, expires_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id;`

	findRefreshTokenByHash = `SELECT id, user_id, token_hash, user_agent, ip, issued_via, created_at, expires_at, revoked_at
    FROM refresh_tokens
    WHERE token_hash = $1;`

	revokeRefreshToken = `UPDATE refresh_tokens SET revoked_at = $1
    WHERE id = $2 AND revoked_at IS NULL;`

	revokeAllRefreshTokensForUser = `UPDATE refresh_tokens SET revoked_at = $1
    WHERE user_id = $2 AND revoked_at IS NULL;`

	deleteExpiredRefreshTokens = `DELETE FROM refresh_tokens WHERE expires_at < $1;`

	upsertTwoFAEnrollment = `INSERT INTO twofa (user_id, secret_enc, confirmed, last_used_step, created_at)
    VALUES ($1, $2, FALSE, 0, $3)
    ON CONFLICT (user_id)
    DO UPDATE SET secret_enc = EXCLUDED.secret_enc, last_used_step = 0, created_at = EXCLUDED.created_at
    WHERE NOT twofa.confirmed;`

	getTwoFAByUserID = `SELECT user_id, secret_enc, confirmed, last_used_step, created_at, confirmed_at
    FROM twofa
    WHERE user_id = $1;`

	confirmTwoFA = `UPDATE twofa SET confirmed = TRUE, confirmed_at = $1 WHERE user_id = $2;`

	updateTwoFALastUsedStep = `UPDATE twofa SET last_used_step = $1
    WHERE user_id = $2 AND last_used_step < $1;`

	deleteTwoFA = `DELETE FROM twofa WHERE user_id = $1;`

	deleteBackupCodesForUser = `DELETE FROM backup_codes WHERE user_id = $1;`

	insertBackupCode = `INSERT INTO backup_codes (user_id, code_hash, created_at) VALUES ($1, $2, $3);`

	consumeBackupCode = `UPDATE backup_codes SET used_at = $1
    WHERE user_id = $2 AND code_hash = $3 AND used_at IS NULL;`

	countUnusedBackupCodes = `SELECT COUNT(*) FROM backup_codes WHERE user_id = $1 AND used_at IS NULL;`

	invalidateVerificationCodes = `UPDATE verification_codes SET used_at = $1
    WHERE user_id = $2 AND purpose = $3 AND used_at IS NULL;`

	insertVerificationCode = `INSERT INTO verification_codes (user_id, purpose, code_hash, created_at, expires_at)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id;`

	consumeVerificationCode = `UPDATE verification_codes SET used_at = $1
    WHERE user_id = $2 AND purpose = $3 AND code_hash = $4 AND used_at IS NULL AND expires_at > $1;`

	deleteExpiredVerificationCodes = `DELETE FROM verification_codes WHERE expires_at < $1;`
)
