package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used to probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	ErrRefreshTokenInvalid = errors.New("refresh token is expired or invalid")

	// ErrRefreshTokenReused marks presentation of an already rotated token,
	// which is treated as theft: every session of the user gets revoked.
	ErrRefreshTokenReused = errors.New("refresh token reuse detected")

	ErrTwoFATicketInvalid = errors.New("twofa ticket is expired or invalid")
	ErrInvalidTwoFACode   = errors.New("invalid twofa code")
	ErrTwoFAAlreadyOn     = errors.New("twofa is already enabled")
	ErrTwoFANotEnabled    = errors.New("twofa is not enabled")

	// ErrNotSessionOwner rejects QR approve/deny calls from any account
	// other than the one that claimed the session.
	ErrNotSessionOwner = errors.New("qr session belongs to another account")

	ErrQRScanTokenInvalid = errors.New("qr scan token is invalid")

	ErrVerificationCodeInvalid = errors.New("verification code is expired or invalid")
	ErrEmailAlreadyVerified    = errors.New("email is already verified")

	ErrVersionIsNotSpecified = errors.New("application version is not specified")
)
