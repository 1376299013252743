package config

import "errors"

// Validation errors returned by config validation when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAppConfigs indicates missing application security settings
	// (token sign key or HMAC hash key).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidSecretsKey indicates the TOTP secrets key is not a
	// hex-encoded 32-byte value.
	ErrInvalidSecretsKey = errors.New("secrets key must be 32 bytes hex-encoded")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, empty DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidServerConfigs indicates invalid HTTP server settings
	// (missing listen address or non-positive request timeout).
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidQRConfigs indicates invalid QR sign-in settings
	// (non-positive session TTL).
	ErrInvalidQRConfigs = errors.New("invalid qr configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings
	// (non-positive reconcile interval).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
	// ErrInvalidAdapterConfigs indicates invalid client adapter settings
	// (missing server address or request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
)
