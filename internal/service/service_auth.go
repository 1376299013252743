// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/galionhq/nexus/internal/config"
	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/metrics"
	"github.com/galionhq/nexus/internal/store"
	"github.com/galionhq/nexus/internal/utils"
	"github.com/galionhq/nexus/internal/validators"
	"github.com/galionhq/nexus/models"
)

// twoFATicketTTL bounds how long the window between the password step and
// the code step of a 2FA login stays open.
const twoFATicketTTL = 5 * time.Minute

// refreshTokenBytes is the entropy of the opaque refresh token and of the
// 2FA login ticket.
const refreshTokenBytes = 32

// authService is the concrete implementation of AuthService. It owns the
// credential checks and the token lifecycle; second-factor code checks are
// delegated to the TwoFAService.
type authService struct {
	users     store.UserRepository
	tokens    store.RefreshTokenRepository
	tickets   store.TwoFATicketStore
	twoFA     TwoFAService
	validator validators.Validator

	// hashKey keys the HMAC applied to refresh tokens and 2FA tickets
	// before they touch storage.
	hashKey string

	// tokenSignKey signs and verifies JWT access tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT. Tokens
	// with a different issuer are rejected during parsing.
	tokenIssuer string

	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration

	// dummyPasswordHash is verified against when the email is unknown, so
	// the response time does not reveal whether an account exists.
	dummyPasswordHash string

	logger *logger.Logger
}

// NewAuthService constructs an AuthService wired to the account and session
// stores. The returned service is safe for concurrent use; all state is
// read-only after construction.
func NewAuthService(storages *store.Storages, twoFA TwoFAService, cfg config.App, logger *logger.Logger) (AuthService, error) {
	dummyHash, err := utils.HashPassword("nexus.dummy.password.for.timing")
	if err != nil {
		return nil, fmt.Errorf("error preparing dummy password hash: %w", err)
	}

	return &authService{
		users:             storages.Users,
		tokens:            storages.RefreshTokens,
		tickets:           storages.TwoFATickets,
		twoFA:             twoFA,
		validator:         validators.NewAccountValidator(),
		hashKey:           cfg.HashKey,
		tokenSignKey:      cfg.TokenSignKey,
		tokenIssuer:       cfg.TokenIssuer,
		accessTokenTTL:    cfg.AccessTokenTTL,
		refreshTokenTTL:   cfg.RefreshTokenTTL,
		dummyPasswordHash: dummyHash,
		logger:            logger,
	}, nil
}

// Register creates a new account.
//
// The email is lowercased before storage so lookups are case-insensitive,
// and the password is hashed with argon2id.
//
// Returns the persisted user (with a server-assigned UserID) or:
//   - a validation error if the email shape or password length is off.
//   - A wrapped storage error if persistence fails (e.g. email already
//     taken — see store.ErrEmailAlreadyExists).
func (a *authService) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, req); err != nil {
		return models.User{}, fmt.Errorf("error during registration data validation: %w", err)
	}
	email := normalizeEmail(req.Email)

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Err(err).Str("func", "*authService.Register").Msg("error hashing password")
		return models.User{}, fmt.Errorf("error hashing password: %w", err)
	}

	registered, err := a.users.CreateUser(ctx, models.User{
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
	})
	if err != nil {
		log.Err(err).Str("func", "*authService.Register").Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	return registered, nil
}

// Login performs the password step of authentication.
//
// For accounts with 2FA enabled no tokens are minted yet: the caller gets a
// short-lived ticket to exchange, together with a code, via LoginTwoFA.
//
// Returns ErrInvalidCredentials for unknown emails and wrong passwords
// alike; the two cases are indistinguishable by design, including timing.
func (a *authService) Login(ctx context.Context, req models.LoginRequest, device models.DeviceInfo) (models.LoginResponse, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, req); err != nil {
		return models.LoginResponse{}, fmt.Errorf("error during login data validation: %w", err)
	}

	user, err := a.users.FindUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			// Burn the same argon2id work as a real account would.
			_, _ = utils.VerifyPassword(req.Password, a.dummyPasswordHash)
			metrics.IncLogin("password", false)
			return models.LoginResponse{}, ErrInvalidCredentials
		}

		log.Err(err).Str("func", "*authService.Login").Msg("user search by email failed")
		return models.LoginResponse{}, fmt.Errorf("user search by email failed: %w", err)
	}

	ok, err := utils.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		log.Err(err).Str("func", "*authService.Login").Int64("userID", user.UserID).Msg("error verifying password")
		return models.LoginResponse{}, fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		metrics.IncLogin("password", false)
		return models.LoginResponse{}, ErrInvalidCredentials
	}

	if user.TwoFAEnabled {
		ticket, err := a.issueTwoFATicket(ctx, user.UserID)
		if err != nil {
			return models.LoginResponse{}, err
		}

		return models.LoginResponse{TwoFARequired: true, TwoFATicket: ticket}, nil
	}

	pair, err := a.MintPair(ctx, user.UserID, models.IssuedViaPassword, device)
	if err != nil {
		return models.LoginResponse{}, err
	}

	metrics.IncLogin("password", true)
	return models.LoginResponse{TokenPair: &pair}, nil
}

// LoginTwoFA completes a 2FA login: it consumes the ticket issued by the
// password step, verifies the presented code and mints tokens. A mistyped
// code puts the ticket back with a fresh TTL, so it stays redeemable without
// repeating the password step.
func (a *authService) LoginTwoFA(ctx context.Context, req models.TwoFALoginRequest, device models.DeviceInfo) (models.TokenPair, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, req); err != nil {
		return models.TokenPair{}, fmt.Errorf("error during twofa login data validation: %w", err)
	}

	ticketHash := utils.HashString(req.Ticket, a.hashKey)

	// Exactly one concurrent exchange of the same ticket may win, and it
	// must win before the code is verified: losing the race after a backup
	// code was consumed would burn the code with nothing to show for it.
	userID, err := a.tickets.Consume(ctx, ticketHash)
	if err != nil {
		if errors.Is(err, store.ErrTwoFATicketNotFound) {
			metrics.IncLogin("twofa", false)
			return models.TokenPair{}, ErrTwoFATicketInvalid
		}

		log.Err(err).Str("func", "*authService.LoginTwoFA").Msg("error consuming twofa ticket")
		return models.TokenPair{}, fmt.Errorf("error consuming twofa ticket: %w", err)
	}

	if err := a.twoFA.VerifyLoginCode(ctx, userID, req.Code); err != nil {
		// Put the ticket back so a mistyped code does not force the
		// password step again.
		if saveErr := a.tickets.Save(ctx, ticketHash, userID, twoFATicketTTL); saveErr != nil {
			log.Err(saveErr).Str("func", "*authService.LoginTwoFA").Msg("error restoring twofa ticket")
		}

		metrics.IncLogin("twofa", false)
		return models.TokenPair{}, err
	}

	pair, err := a.MintPair(ctx, userID, models.IssuedViaTwoFA, device)
	if err != nil {
		return models.TokenPair{}, err
	}

	metrics.IncLogin("twofa", true)
	return pair, nil
}

// Refresh rotates a refresh token. The presented token is revoked and a new
// pair is minted in its place.
//
// A token that was already rotated or revoked coming back is treated as
// stolen: every live session of the user is revoked and the caller gets
// ErrRefreshTokenReused.
func (a *authService) Refresh(ctx context.Context, refreshToken string, device models.DeviceInfo) (models.TokenPair, error) {
	log := logger.FromContext(ctx)

	if refreshToken == "" {
		return models.TokenPair{}, ErrInvalidDataProvided
	}

	now := time.Now()

	row, err := a.tokens.FindByHash(ctx, utils.HashString(refreshToken, a.hashKey))
	if err != nil {
		if errors.Is(err, store.ErrRefreshTokenNotFound) {
			metrics.IncLogin("refresh", false)
			return models.TokenPair{}, ErrRefreshTokenInvalid
		}

		log.Err(err).Str("func", "*authService.Refresh").Msg("error looking up refresh token")
		return models.TokenPair{}, fmt.Errorf("error looking up refresh token: %w", err)
	}

	if row.RevokedAt != nil {
		revoked, err := a.tokens.RevokeAllForUser(ctx, row.UserID, now)
		if err != nil {
			log.Err(err).Str("func", "*authService.Refresh").Int64("userID", row.UserID).
				Msg("error revoking sessions after token reuse")
			return models.TokenPair{}, fmt.Errorf("error revoking sessions after token reuse: %w", err)
		}

		log.Warn().Str("func", "*authService.Refresh").Int64("userID", row.UserID).
			Int64("sessionsRevoked", revoked).Msg("refresh token reuse detected, all sessions revoked")
		metrics.IncLogin("refresh", false)
		return models.TokenPair{}, ErrRefreshTokenReused
	}

	if !now.Before(row.ExpiresAt) {
		metrics.IncLogin("refresh", false)
		return models.TokenPair{}, ErrRefreshTokenInvalid
	}

	if err := a.tokens.Revoke(ctx, row.ID, now); err != nil {
		log.Err(err).Str("func", "*authService.Refresh").Msg("error revoking rotated refresh token")
		return models.TokenPair{}, fmt.Errorf("error revoking rotated refresh token: %w", err)
	}

	pair, err := a.MintPair(ctx, row.UserID, models.IssuedViaRefresh, device)
	if err != nil {
		return models.TokenPair{}, err
	}

	metrics.IncLogin("refresh", true)
	return pair, nil
}

// Logout revokes the session behind the refresh token. Unknown and already
// revoked tokens are a no-op so the operation is safe to repeat.
func (a *authService) Logout(ctx context.Context, refreshToken string) error {
	log := logger.FromContext(ctx)

	if refreshToken == "" {
		return ErrInvalidDataProvided
	}

	row, err := a.tokens.FindByHash(ctx, utils.HashString(refreshToken, a.hashKey))
	if err != nil {
		if errors.Is(err, store.ErrRefreshTokenNotFound) {
			return nil
		}

		log.Err(err).Str("func", "*authService.Logout").Msg("error looking up refresh token")
		return fmt.Errorf("error looking up refresh token: %w", err)
	}

	if row.RevokedAt != nil {
		return nil
	}

	if err := a.tokens.Revoke(ctx, row.ID, time.Now()); err != nil {
		log.Err(err).Str("func", "*authService.Logout").Msg("error revoking refresh token")
		return fmt.Errorf("error revoking refresh token: %w", err)
	}

	return nil
}

// GetUser returns the account with the given ID.
func (a *authService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	return a.users.GetUserByID(ctx, userID)
}

// ParseToken validates and parses a raw JWT access token string.
//
// Any validation failure (expired, wrong issuer, malformed) is normalised to
// ErrTokenIsExpiredOrInvalid so that callers do not need to inspect
// low-level JWT errors.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}

// MintPair issues a fresh access + refresh pair. Only the HMAC of the opaque
// refresh token is persisted.
func (a *authService) MintPair(ctx context.Context, userID int64, issuedVia string, device models.DeviceInfo) (models.TokenPair, error) {
	log := logger.FromContext(ctx)

	access, err := utils.GenerateJWTToken(a.tokenIssuer, userID, a.accessTokenTTL, a.tokenSignKey)
	if err != nil {
		log.Err(err).Str("func", "*authService.MintPair").Msg("error generating access token")
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	accessExpiry, err := access.Claims.GetExpirationTime()
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	refreshToken, err := utils.RandomToken(refreshTokenBytes)
	if err != nil {
		log.Err(err).Str("func", "*authService.MintPair").Msg("error generating refresh token")
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	now := time.Now()
	refreshExpiry := now.Add(a.refreshTokenTTL)

	if _, err := a.tokens.Save(ctx, models.RefreshToken{
		UserID:    userID,
		TokenHash: utils.HashString(refreshToken, a.hashKey),
		UserAgent: device.UserAgent,
		IP:        device.IP,
		IssuedVia: issuedVia,
		CreatedAt: now,
		ExpiresAt: refreshExpiry,
	}); err != nil {
		log.Err(err).Str("func", "*authService.MintPair").Msg("error saving refresh token")
		return models.TokenPair{}, fmt.Errorf("error saving refresh token: %w", err)
	}

	return models.TokenPair{
		AccessToken:      access.SignedString,
		AccessExpiresAt:  accessExpiry.Time,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

// issueTwoFATicket mints the opaque ticket bridging the password step and
// the code step of a 2FA login.
func (a *authService) issueTwoFATicket(ctx context.Context, userID int64) (string, error) {
	log := logger.FromContext(ctx)

	ticket, err := utils.RandomToken(refreshTokenBytes)
	if err != nil {
		log.Err(err).Str("func", "*authService.issueTwoFATicket").Msg("error generating twofa ticket")
		return "", fmt.Errorf("error generating twofa ticket: %w", err)
	}

	if err := a.tickets.Save(ctx, utils.HashString(ticket, a.hashKey), userID, twoFATicketTTL); err != nil {
		log.Err(err).Str("func", "*authService.issueTwoFATicket").Msg("error saving twofa ticket")
		return "", fmt.Errorf("error saving twofa ticket: %w", err)
	}

	return ticket, nil
}

// normalizeEmail lowercases and trims an email address. Emails are stored
// and looked up in this form only.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
