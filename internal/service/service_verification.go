package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/store"
	"github.com/galionhq/nexus/internal/utils"
	"github.com/galionhq/nexus/internal/validators"
	"github.com/galionhq/nexus/models"
)

const (
	verificationCodeTTL    = 15 * time.Minute
	verificationCodeDigits = 6
)

// verificationService implements VerificationService. Codes are 6-digit,
// single-use, and stored hashed; delivery goes through the injected
// CodeSender.
type verificationService struct {
	users     store.UserRepository
	codes     store.VerificationCodeRepository
	tokens    store.RefreshTokenRepository
	sender    CodeSender
	validator validators.Validator

	hashKey string
	logger  *logger.Logger
}

// NewVerificationService constructs a VerificationService. The token
// repository is needed because a completed password reset revokes every
// session of the account.
func NewVerificationService(users store.UserRepository, codes store.VerificationCodeRepository, tokens store.RefreshTokenRepository, sender CodeSender, hashKey string, logger *logger.Logger) VerificationService {
	return &verificationService{
		users:     users,
		codes:     codes,
		tokens:    tokens,
		sender:    sender,
		validator: validators.NewAccountValidator(),
		hashKey:   hashKey,
		logger:    logger,
	}
}

// IssueEmailVerification creates a fresh code for the account and hands it
// to the sender. Any previous unused verification code stops working.
func (v *verificationService) IssueEmailVerification(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	user, err := v.users.GetUserByID(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*verificationService.IssueEmailVerification").Msg("error loading user")
		return fmt.Errorf("error loading user: %w", err)
	}
	if user.EmailVerified {
		return ErrEmailAlreadyVerified
	}

	return v.issue(ctx, user, models.PurposeVerifyEmail)
}

// VerifyEmail redeems a verification code and marks the address confirmed.
// Unknown emails and wrong codes fail identically.
func (v *verificationService) VerifyEmail(ctx context.Context, email, code string) error {
	log := logger.FromContext(ctx)

	if err := v.validator.Validate(ctx, models.VerifyEmailRequest{Email: email, Code: code}); err != nil {
		return fmt.Errorf("error during email verification data validation: %w", err)
	}

	user, err := v.users.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return ErrVerificationCodeInvalid
		}

		log.Err(err).Str("func", "*verificationService.VerifyEmail").Msg("error loading user")
		return fmt.Errorf("error loading user: %w", err)
	}

	if err := v.consume(ctx, user.UserID, models.PurposeVerifyEmail, code); err != nil {
		return err
	}

	if user.EmailVerified {
		// Redeeming a leftover code on an already verified address is
		// harmless.
		return nil
	}

	if err := v.users.SetEmailVerified(ctx, user.UserID); err != nil {
		log.Err(err).Str("func", "*verificationService.VerifyEmail").Msg("error marking email verified")
		return fmt.Errorf("error marking email verified: %w", err)
	}

	return nil
}

// RequestPasswordReset issues a reset code when the email matches an
// account. Unknown emails succeed silently so the endpoint cannot be used
// to probe for accounts.
func (v *verificationService) RequestPasswordReset(ctx context.Context, email string) error {
	log := logger.FromContext(ctx)

	if err := v.validator.Validate(ctx, models.PasswordResetRequest{Email: email}); err != nil {
		return fmt.Errorf("error during password reset data validation: %w", err)
	}

	user, err := v.users.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return nil
		}

		log.Err(err).Str("func", "*verificationService.RequestPasswordReset").Msg("error loading user")
		return fmt.Errorf("error loading user: %w", err)
	}

	return v.issue(ctx, user, models.PurposeResetPassword)
}

// ConfirmPasswordReset redeems a reset code, installs the new password and
// revokes every refresh session the account holds.
func (v *verificationService) ConfirmPasswordReset(ctx context.Context, req models.PasswordResetConfirmRequest) error {
	log := logger.FromContext(ctx)

	if err := v.validator.Validate(ctx, req); err != nil {
		return fmt.Errorf("error during password reset confirmation data validation: %w", err)
	}

	user, err := v.users.FindUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return ErrVerificationCodeInvalid
		}

		log.Err(err).Str("func", "*verificationService.ConfirmPasswordReset").Msg("error loading user")
		return fmt.Errorf("error loading user: %w", err)
	}

	if err := v.consume(ctx, user.UserID, models.PurposeResetPassword, req.Code); err != nil {
		return err
	}

	passwordHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		log.Err(err).Str("func", "*verificationService.ConfirmPasswordReset").Msg("error hashing password")
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := v.users.UpdatePassword(ctx, user.UserID, passwordHash); err != nil {
		log.Err(err).Str("func", "*verificationService.ConfirmPasswordReset").Msg("error updating password")
		return fmt.Errorf("error updating password: %w", err)
	}

	revoked, err := v.tokens.RevokeAllForUser(ctx, user.UserID, time.Now())
	if err != nil {
		log.Err(err).Str("func", "*verificationService.ConfirmPasswordReset").Msg("error revoking sessions")
		return fmt.Errorf("error revoking sessions: %w", err)
	}

	log.Info().Int64("user_id", user.UserID).Int64("revoked_sessions", revoked).
		Msg("password reset completed, all sessions revoked")

	return nil
}

// issue mints a code for the user and purpose, persists its hash and hands
// the plaintext to the sender.
func (v *verificationService) issue(ctx context.Context, user models.User, purpose string) error {
	log := logger.FromContext(ctx)

	code, err := utils.RandomDigits(verificationCodeDigits)
	if err != nil {
		log.Err(err).Str("func", "*verificationService.issue").Msg("error generating code")
		return fmt.Errorf("error generating code: %w", err)
	}

	now := time.Now()
	if _, err := v.codes.Create(ctx, models.VerificationCode{
		UserID:    user.UserID,
		Purpose:   purpose,
		CodeHash:  utils.HashString(code, v.hashKey),
		CreatedAt: now,
		ExpiresAt: now.Add(verificationCodeTTL),
	}); err != nil {
		log.Err(err).Str("func", "*verificationService.issue").Msg("error saving code")
		return fmt.Errorf("error saving code: %w", err)
	}

	if err := v.sender.SendCode(ctx, user.Email, purpose, code); err != nil {
		log.Err(err).Str("func", "*verificationService.issue").Msg("error sending code")
		return fmt.Errorf("error sending code: %w", err)
	}

	return nil
}

// consume redeems a code for the user and purpose, mapping a miss to the
// shared invalid-code error.
func (v *verificationService) consume(ctx context.Context, userID int64, purpose, code string) error {
	log := logger.FromContext(ctx)

	codeHash := utils.HashString(code, v.hashKey)
	if err := v.codes.Consume(ctx, userID, purpose, codeHash, time.Now()); err != nil {
		if errors.Is(err, store.ErrVerificationCodeNotFound) {
			return ErrVerificationCodeInvalid
		}

		log.Err(err).Str("func", "*verificationService.consume").Msg("error consuming code")
		return fmt.Errorf("error consuming code: %w", err)
	}

	return nil
}

// logCodeSender is the development CodeSender: codes land in the server log
// instead of an inbox. Production deployments swap in a real mail sender.
type logCodeSender struct {
	logger *logger.Logger
}

// NewLogCodeSender returns a CodeSender that writes codes to the log.
func NewLogCodeSender(logger *logger.Logger) CodeSender {
	return &logCodeSender{logger: logger}
}

func (s *logCodeSender) SendCode(_ context.Context, email, purpose, code string) error {
	s.logger.Info().
		Str("email", email).
		Str("purpose", purpose).
		Str("code", code).
		Msg("verification code issued")

	return nil
}
