// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

// Package adapter is the transport layer of the terminal client: a typed
// REST client for the account server.
//
// The primary abstraction is [ServerAdapter], which decouples the TUI from
// the wire protocol. The package ships an HTTP implementation
// ([NewHTTPServerAdapter]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrConflict] for 409, [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/galionhq/nexus/models"
)

// ServerAdapter defines transport-agnostic communication with the account
// server. Implementations are responsible for serialisation, bearer token
// management, and mapping transport-level errors to the sentinel values
// defined in this package.
type ServerAdapter interface {
	// SetToken stores the access token attached to all subsequent
	// authenticated requests. Sign-in methods call it automatically; an
	// empty string clears the session.
	SetToken(token string)

	// Token returns the access token currently held by the adapter, or an
	// empty string if no sign-in has completed yet.
	Token() string

	// Register creates a new account and returns the created profile. It
	// does not sign the user in; accounts start unverified.
	Register(ctx context.Context, req models.RegisterRequest) (models.User, error)

	// Login performs the password step of sign-in. When the account has no
	// second factor the response carries a completed token pair and the
	// access token is stored via SetToken; otherwise TwoFARequired is set
	// and the ticket must be exchanged through LoginTwoFA.
	Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error)

	// LoginTwoFA exchanges a 2FA ticket plus a TOTP or backup code for a
	// token pair and stores the access token via SetToken.
	LoginTwoFA(ctx context.Context, ticket, code string) (models.TokenPair, error)

	// Refresh rotates a refresh token into a fresh pair and stores the new
	// access token via SetToken.
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)

	// Logout revokes the session behind refreshToken and clears the stored
	// access token.
	Logout(ctx context.Context, refreshToken string) error

	// Me returns the authenticated profile together with the live
	// subscription, if any.
	Me(ctx context.Context) (models.MeResponse, error)

	// TwoFAStatus reports the account's second-factor state.
	TwoFAStatus(ctx context.Context) (models.TwoFAStatus, error)

	// TwoFASetup starts TOTP enrollment and returns the secret in the three
	// forms an authenticator app can consume. Enrollment stays pending until
	// TwoFAActivate proves code possession.
	TwoFASetup(ctx context.Context) (models.TwoFASetup, error)

	// TwoFAActivate confirms enrollment with a code from the authenticator
	// app and returns the one-time backup code set.
	TwoFAActivate(ctx context.Context, code string) (models.ActivateResponse, error)

	// QRCreate opens a QR sign-in session from this (logged-out) device.
	QRCreate(ctx context.Context, deviceName string) (models.QRCreated, error)

	// QRPoll reports the session state to the device that created it. On
	// the poll that observes approval the minted access token is stored via
	// SetToken and the pair is returned in the result.
	QRPoll(ctx context.Context, sessionID, secret string) (models.QRPollResult, error)

	// QRClaim presents the scan token read from a QR code and returns a
	// description of the device asking to be signed in.
	QRClaim(ctx context.Context, sessionID, scanToken string) (models.QRSessionInfo, error)

	// QRApprove grants the claimed session a token pair for this account.
	QRApprove(ctx context.Context, sessionID string) error

	// QRDeny rejects the claimed session.
	QRDeny(ctx context.Context, sessionID string) error

	// ListPlans returns the subscription plans open for sign-up.
	ListPlans(ctx context.Context) ([]models.Plan, error)

	// Subscribe starts a subscription to the plan with the given code.
	Subscribe(ctx context.Context, planCode string) (models.SubscriptionView, error)

	// MySubscription returns the account's live subscription. Returns
	// [ErrNotFound] (wrapped) when there is none.
	MySubscription(ctx context.Context) (models.SubscriptionView, error)

	// CancelSubscription cancels the live subscription: immediately, or at
	// the period end when immediate is false.
	CancelSubscription(ctx context.Context, immediate bool) (models.SubscriptionView, error)

	// ResumeSubscription clears a pending cancellation.
	ResumeSubscription(ctx context.Context) (models.SubscriptionView, error)

	// ChangePlan moves the live subscription onto another plan.
	ChangePlan(ctx context.Context, planCode string) (models.SubscriptionView, error)
}
