// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package service

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/skip2/go-qrcode"

	"github.com/galionhq/nexus/internal/crypto"
	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/metrics"
	"github.com/galionhq/nexus/internal/store"
	"github.com/galionhq/nexus/internal/utils"
	"github.com/galionhq/nexus/models"
)

// TOTP parameters. These match what every mainstream authenticator app
// defaults to; changing them breaks existing enrollments.
const (
	totpPeriod     = 30
	totpSecretSize = 20

	// totpDriftSteps is how many time steps of clock skew are tolerated on
	// either side of the current step.
	totpDriftSteps = 1

	backupCodeCount = 10

	qrCodePixels = 256
)

var totpValidateOpts = totp.ValidateOpts{
	Period:    totpPeriod,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// twoFAService is the concrete implementation of TwoFAService. TOTP secrets
// are AES-256-GCM encrypted before they reach the database; backup codes are
// stored as keyed hashes only.
type twoFAService struct {
	users  store.UserRepository
	repo   store.TwoFARepository
	cipher crypto.SecretCipher

	// issuer labels enrollments in authenticator apps and is embedded in
	// the otpauth:// URL.
	issuer string

	// hashKey keys the HMAC applied to backup codes before storage.
	hashKey string

	logger *logger.Logger
}

// NewTwoFAService constructs a TwoFAService. The cipher encrypts TOTP
// secrets at rest.
func NewTwoFAService(users store.UserRepository, repo store.TwoFARepository, cipher crypto.SecretCipher, issuer, hashKey string, logger *logger.Logger) TwoFAService {
	return &twoFAService{
		users:   users,
		repo:    repo,
		cipher:  cipher,
		issuer:  issuer,
		hashKey: hashKey,
		logger:  logger,
	}
}

// Setup generates a fresh TOTP secret and stores it as a pending enrollment.
// Calling Setup again before activation replaces the pending secret; a
// confirmed enrollment is never replaced.
func (s *twoFAService) Setup(ctx context.Context, userID int64) (models.TwoFASetup, error) {
	log := logger.FromContext(ctx)

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*twoFAService.Setup").Msg("error loading user")
		return models.TwoFASetup{}, fmt.Errorf("error loading user: %w", err)
	}
	if user.TwoFAEnabled {
		return models.TwoFASetup{}, ErrTwoFAAlreadyOn
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: user.Email,
		Period:      totpPeriod,
		SecretSize:  totpSecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		log.Err(err).Str("func", "*twoFAService.Setup").Msg("error generating totp secret")
		return models.TwoFASetup{}, fmt.Errorf("error generating totp secret: %w", err)
	}

	secretEnc, err := s.cipher.Encrypt([]byte(key.Secret()))
	if err != nil {
		log.Err(err).Str("func", "*twoFAService.Setup").Msg("error encrypting totp secret")
		return models.TwoFASetup{}, fmt.Errorf("error encrypting totp secret: %w", err)
	}

	if err := s.repo.UpsertEnrollment(ctx, models.TwoFA{
		UserID:    userID,
		SecretEnc: secretEnc,
		CreatedAt: time.Now(),
	}); err != nil {
		if errors.Is(err, store.ErrTwoFAAlreadyConfirmed) {
			return models.TwoFASetup{}, ErrTwoFAAlreadyOn
		}

		log.Err(err).Str("func", "*twoFAService.Setup").Msg("error saving enrollment")
		return models.TwoFASetup{}, fmt.Errorf("error saving enrollment: %w", err)
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, qrCodePixels)
	if err != nil {
		log.Err(err).Str("func", "*twoFAService.Setup").Msg("error rendering enrollment qr code")
		return models.TwoFASetup{}, fmt.Errorf("error rendering enrollment qr code: %w", err)
	}

	return models.TwoFASetup{
		Secret:      key.Secret(),
		OTPAuthURL:  key.URL(),
		QRPNGBase64: base64.StdEncoding.EncodeToString(png),
	}, nil
}

// Activate confirms the pending enrollment with a valid current TOTP code,
// flips the account's 2FA flag and returns the initial backup code set. The
// plaintext codes exist only in this response.
func (s *twoFAService) Activate(ctx context.Context, userID int64, code string) ([]string, error) {
	log := logger.FromContext(ctx)

	enrollment, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*twoFAService.Activate").Msg("error loading enrollment")
		return nil, fmt.Errorf("error loading enrollment: %w", err)
	}
	if enrollment.Confirmed {
		return nil, ErrTwoFAAlreadyOn
	}

	step, err := s.checkTOTP(ctx, enrollment, code)
	if err != nil {
		metrics.IncTwoFAVerification("totp", false)
		return nil, err
	}

	// Claim the step before confirming, so the activation code cannot be
	// replayed by a login racing the confirmation.
	if err := s.repo.UpdateLastUsedStep(ctx, userID, step); err != nil {
		if errors.Is(err, store.ErrTOTPStepAlreadyUsed) {
			metrics.IncTwoFAVerification("totp", false)
			return nil, ErrInvalidTwoFACode
		}

		log.Err(err).Str("func", "*twoFAService.Activate").Msg("error recording used step")
		return nil, fmt.Errorf("error recording used step: %w", err)
	}
	if err := s.repo.Confirm(ctx, userID, time.Now()); err != nil {
		log.Err(err).Str("func", "*twoFAService.Activate").Msg("error confirming enrollment")
		return nil, fmt.Errorf("error confirming enrollment: %w", err)
	}
	if err := s.users.SetTwoFAEnabled(ctx, userID, true); err != nil {
		log.Err(err).Str("func", "*twoFAService.Activate").Msg("error enabling twofa on account")
		return nil, fmt.Errorf("error enabling twofa on account: %w", err)
	}

	metrics.IncTwoFAVerification("totp", true)

	return s.replaceBackupCodes(ctx, userID)
}

// Disable tears 2FA down. Both knowledge factors are required: the account
// password and a valid current code (TOTP or backup).
func (s *twoFAService) Disable(ctx context.Context, userID int64, password, code string) error {
	log := logger.FromContext(ctx)

	if password == "" || code == "" {
		return ErrInvalidDataProvided
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*twoFAService.Disable").Msg("error loading user")
		return fmt.Errorf("error loading user: %w", err)
	}
	if !user.TwoFAEnabled {
		return ErrTwoFANotEnabled
	}

	ok, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		log.Err(err).Str("func", "*twoFAService.Disable").Msg("error verifying password")
		return fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	if err := s.VerifyLoginCode(ctx, userID, code); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		log.Err(err).Str("func", "*twoFAService.Disable").Msg("error deleting enrollment")
		return fmt.Errorf("error deleting enrollment: %w", err)
	}
	if err := s.users.SetTwoFAEnabled(ctx, userID, false); err != nil {
		log.Err(err).Str("func", "*twoFAService.Disable").Msg("error disabling twofa on account")
		return fmt.Errorf("error disabling twofa on account: %w", err)
	}

	return nil
}

// Status reports the account's second-factor state. Accounts that never
// enrolled report a plain disabled status.
func (s *twoFAService) Status(ctx context.Context, userID int64) (models.TwoFAStatus, error) {
	log := logger.FromContext(ctx)

	enrollment, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrTwoFANotFound) {
			return models.TwoFAStatus{}, nil
		}

		log.Err(err).Str("func", "*twoFAService.Status").Msg("error loading enrollment")
		return models.TwoFAStatus{}, fmt.Errorf("error loading enrollment: %w", err)
	}

	status := models.TwoFAStatus{
		Enabled:     enrollment.Confirmed,
		ConfirmedAt: enrollment.ConfirmedAt,
	}
	if !enrollment.Confirmed {
		return status, nil
	}

	remaining, err := s.repo.CountUnusedBackupCodes(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*twoFAService.Status").Msg("error counting backup codes")
		return models.TwoFAStatus{}, fmt.Errorf("error counting backup codes: %w", err)
	}
	status.BackupCodesRemaining = remaining

	return status, nil
}

// RegenerateBackupCodes replaces the whole backup code set after a valid
// current code is presented. All previous codes stop working.
func (s *twoFAService) RegenerateBackupCodes(ctx context.Context, userID int64, code string) ([]string, error) {
	if err := s.VerifyLoginCode(ctx, userID, code); err != nil {
		return nil, err
	}

	return s.replaceBackupCodes(ctx, userID)
}

// VerifyLoginCode checks a second-factor code. Six digits are treated as a
// TOTP code; anything else as a backup code, consumed on success.
func (s *twoFAService) VerifyLoginCode(ctx context.Context, userID int64, code string) error {
	log := logger.FromContext(ctx)

	code = strings.TrimSpace(code)
	if code == "" {
		return ErrInvalidDataProvided
	}

	enrollment, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrTwoFANotFound) {
			return ErrTwoFANotEnabled
		}

		log.Err(err).Str("func", "*twoFAService.VerifyLoginCode").Msg("error loading enrollment")
		return fmt.Errorf("error loading enrollment: %w", err)
	}
	if !enrollment.Confirmed {
		return ErrTwoFANotEnabled
	}

	if isTOTPCode(code) {
		step, err := s.checkTOTP(ctx, enrollment, code)
		if err != nil {
			metrics.IncTwoFAVerification("totp", false)
			return err
		}

		if err := s.repo.UpdateLastUsedStep(ctx, userID, step); err != nil {
			if errors.Is(err, store.ErrTOTPStepAlreadyUsed) {
				// A concurrent login already spent this step.
				metrics.IncTwoFAVerification("totp", false)
				return ErrInvalidTwoFACode
			}

			log.Err(err).Str("func", "*twoFAService.VerifyLoginCode").Msg("error recording used step")
			return fmt.Errorf("error recording used step: %w", err)
		}

		metrics.IncTwoFAVerification("totp", true)
		return nil
	}

	codeHash := utils.HashString(normalizeBackupCode(code), s.hashKey)
	if err := s.repo.ConsumeBackupCode(ctx, userID, codeHash, time.Now()); err != nil {
		if errors.Is(err, store.ErrBackupCodeNotFound) {
			metrics.IncTwoFAVerification("backup_code", false)
			return ErrInvalidTwoFACode
		}

		log.Err(err).Str("func", "*twoFAService.VerifyLoginCode").Msg("error consuming backup code")
		return fmt.Errorf("error consuming backup code: %w", err)
	}

	metrics.IncTwoFAVerification("backup_code", true)
	return nil
}

// checkTOTP validates a 6-digit code against the enrollment's secret within
// the drift window and returns the matched time step.
//
// A code whose step was already used (or any earlier step) is rejected, so a
// captured code cannot be replayed inside the drift window. The check works
// off the row as read; the atomic claim happens in UpdateLastUsedStep.
func (s *twoFAService) checkTOTP(ctx context.Context, enrollment models.TwoFA, code string) (int64, error) {
	log := logger.FromContext(ctx)

	secret, err := s.cipher.Decrypt(enrollment.SecretEnc)
	if err != nil {
		log.Err(err).Str("func", "*twoFAService.checkTOTP").Msg("error decrypting totp secret")
		return 0, fmt.Errorf("error decrypting totp secret: %w", err)
	}

	step, ok := matchTOTPStep(string(secret), code, time.Now())
	if !ok {
		return 0, ErrInvalidTwoFACode
	}
	if step <= enrollment.LastUsedStep {
		return 0, ErrInvalidTwoFACode
	}

	return step, nil
}

// matchTOTPStep compares the code against the expected codes of the current
// step and its immediate neighbours. Comparison is constant-time per step.
func matchTOTPStep(secret, code string, now time.Time) (int64, bool) {
	currentStep := now.Unix() / totpPeriod

	for _, offset := range []int64{0, -totpDriftSteps, totpDriftSteps} {
		at := time.Unix((currentStep+offset)*totpPeriod, 0)

		expected, err := totp.GenerateCodeCustom(secret, at, totpValidateOpts)
		if err != nil {
			return 0, false
		}

		if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1 {
			return currentStep + offset, true
		}
	}

	return 0, false
}

// replaceBackupCodes generates a fresh code set, stores the hashes and
// returns the plaintext codes.
func (s *twoFAService) replaceBackupCodes(ctx context.Context, userID int64) ([]string, error) {
	log := logger.FromContext(ctx)

	codes := make([]string, 0, backupCodeCount)
	hashes := make([]string, 0, backupCodeCount)
	for i := 0; i < backupCodeCount; i++ {
		code, err := utils.RandomBackupCode()
		if err != nil {
			log.Err(err).Str("func", "*twoFAService.replaceBackupCodes").Msg("error generating backup code")
			return nil, fmt.Errorf("error generating backup code: %w", err)
		}
		codes = append(codes, code)
		hashes = append(hashes, utils.HashString(code, s.hashKey))
	}

	if err := s.repo.ReplaceBackupCodes(ctx, userID, hashes); err != nil {
		log.Err(err).Str("func", "*twoFAService.replaceBackupCodes").Msg("error storing backup codes")
		return nil, fmt.Errorf("error storing backup codes: %w", err)
	}

	return codes, nil
}

// isTOTPCode reports whether the code has the shape of a 6-digit TOTP code
// rather than a backup code.
func isTOTPCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// normalizeBackupCode uppercases a backup code and strips spaces, tolerating
// how users retype codes from a printout.
func normalizeBackupCode(code string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), " ", ""))
}
