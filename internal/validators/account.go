// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package validators

import (
	"context"
	"net/mail"
	"strings"

	"github.com/galionhq/nexus/models"
)

// Field name constants used to specify which fields should be validated.
// These constants are passed to Validate or internal validation methods
// to restrict validation to a subset of fields (field-level scoping).
const (
	// FieldEmail targets the email address of an account request.
	FieldEmail = "email"

	// FieldPassword targets the password of a registration or login request.
	FieldPassword = "password"

	// FieldNewPassword targets the replacement password of a reset request.
	FieldNewPassword = "new_password"

	// FieldCode targets a one-time code (verification, reset, second factor).
	FieldCode = "code"

	// FieldTicket targets the short-lived ticket issued by the password step
	// of a two-factor login.
	FieldTicket = "twofa_ticket"
)

// Password length bounds. The lower bound is a usability floor, not a
// strength estimator; the upper bound caps argon2id hashing cost.
const (
	passwordMinLength = 8
	passwordMaxLength = 512
)

// AccountValidator implements the Validator interface for the account and
// authentication request models: RegisterRequest, LoginRequest,
// TwoFALoginRequest, VerifyEmailRequest, PasswordResetRequest and
// PasswordResetConfirmRequest.
//
// It supports both value and pointer receivers for every model type
// and allows optional field-level scoping via variadic field name arguments.
type AccountValidator struct {
}

// NewAccountValidator constructs a new AccountValidator
// and returns it as the Validator interface.
func NewAccountValidator() Validator {
	return &AccountValidator{}
}

// Validate dispatches validation to the appropriate type-specific method
// based on the dynamic type of obj. Both value and pointer forms of each
// supported model are accepted.
//
// Returns ErrUnsupportedType if obj does not match any known model.
// Optional fields restrict validation to the named subset; when omitted,
// a sensible default set of fields is validated.
func (v *AccountValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.RegisterRequest:
		return v.validateRegisterRequest(ctx, value, fields...)
	case *models.RegisterRequest:
		return v.validateRegisterRequest(ctx, *value, fields...)

	case models.LoginRequest:
		return v.validateLoginRequest(ctx, value, fields...)
	case *models.LoginRequest:
		return v.validateLoginRequest(ctx, *value, fields...)

	case models.TwoFALoginRequest:
		return v.validateTwoFALoginRequest(ctx, value, fields...)
	case *models.TwoFALoginRequest:
		return v.validateTwoFALoginRequest(ctx, *value, fields...)

	case models.VerifyEmailRequest:
		return v.validateVerifyEmailRequest(ctx, value, fields...)
	case *models.VerifyEmailRequest:
		return v.validateVerifyEmailRequest(ctx, *value, fields...)

	case models.PasswordResetRequest:
		return v.validatePasswordResetRequest(ctx, value, fields...)
	case *models.PasswordResetRequest:
		return v.validatePasswordResetRequest(ctx, *value, fields...)

	case models.PasswordResetConfirmRequest:
		return v.validatePasswordResetConfirmRequest(ctx, value, fields...)
	case *models.PasswordResetConfirmRequest:
		return v.validatePasswordResetConfirmRequest(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

// validateRegisterRequest validates a RegisterRequest.
//
// Default validated fields (when none specified): Email, Password.
// The name is free-form and never validated.
func (v *AccountValidator) validateRegisterRequest(_ context.Context, req models.RegisterRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEmail, FieldPassword}
	}

	for _, f := range fields {
		switch f {
		case FieldEmail:
			if err := checkEmail(req.Email); err != nil {
				return err
			}
		case FieldPassword:
			if err := checkPassword(req.Password); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateLoginRequest validates a LoginRequest. Only presence is checked:
// the shape of a wrong email is indistinguishable from a wrong password once
// credentials are compared.
func (v *AccountValidator) validateLoginRequest(_ context.Context, req models.LoginRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEmail, FieldPassword}
	}

	for _, f := range fields {
		switch f {
		case FieldEmail:
			if strings.TrimSpace(req.Email) == "" {
				return ErrEmailRequired
			}
		case FieldPassword:
			if req.Password == "" {
				return ErrPasswordRequired
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateTwoFALoginRequest validates a TwoFALoginRequest.
//
// Default validated fields (when none specified): Ticket, Code.
func (v *AccountValidator) validateTwoFALoginRequest(_ context.Context, req models.TwoFALoginRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldTicket, FieldCode}
	}

	for _, f := range fields {
		switch f {
		case FieldTicket:
			if strings.TrimSpace(req.Ticket) == "" {
				return ErrTicketRequired
			}
		case FieldCode:
			if strings.TrimSpace(req.Code) == "" {
				return ErrCodeRequired
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateVerifyEmailRequest validates a VerifyEmailRequest.
func (v *AccountValidator) validateVerifyEmailRequest(_ context.Context, req models.VerifyEmailRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEmail, FieldCode}
	}

	for _, f := range fields {
		switch f {
		case FieldEmail:
			if strings.TrimSpace(req.Email) == "" {
				return ErrEmailRequired
			}
		case FieldCode:
			if strings.TrimSpace(req.Code) == "" {
				return ErrCodeRequired
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validatePasswordResetRequest validates a PasswordResetRequest. The email
// must parse: a reset code is actually delivered to it.
func (v *AccountValidator) validatePasswordResetRequest(_ context.Context, req models.PasswordResetRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEmail}
	}

	for _, f := range fields {
		switch f {
		case FieldEmail:
			if err := checkEmail(req.Email); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validatePasswordResetConfirmRequest validates a PasswordResetConfirmRequest.
//
// Default validated fields (when none specified): Email, Code, NewPassword.
func (v *AccountValidator) validatePasswordResetConfirmRequest(_ context.Context, req models.PasswordResetConfirmRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEmail, FieldCode, FieldNewPassword}
	}

	for _, f := range fields {
		switch f {
		case FieldEmail:
			if strings.TrimSpace(req.Email) == "" {
				return ErrEmailRequired
			}
		case FieldCode:
			if strings.TrimSpace(req.Code) == "" {
				return ErrCodeRequired
			}
		case FieldNewPassword:
			if err := checkPassword(req.NewPassword); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// checkEmail enforces presence and RFC 5322 shape. Display names
// ("A <a@b.c>") are rejected: the field must be a bare address.
func checkEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}

	return nil
}

// checkPassword enforces the password length bounds.
func checkPassword(password string) error {
	switch {
	case password == "":
		return ErrPasswordRequired
	case len(password) < passwordMinLength:
		return ErrWeakPassword
	case len(password) > passwordMaxLength:
		return ErrPasswordTooLong
	default:
		return nil
	}
}
