// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the nexus
// platform. It aggregates all sub-configurations and is populated by merging
// values from environment variables, command-line flags, an optional JSON
// file, and built-in defaults.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as token keys and
	// lifetimes, hashing keys, and the application version.
	App App `envPrefix:"APP_"`

	// Storage holds configuration for all persistence backends: the
	// relational database and the Redis instance backing QR sessions.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network address and timeout settings for the HTTP
	// server.
	Server Server `envPrefix:"SERVER_"`

	// QR holds QR sign-in session settings.
	QR QR `envPrefix:"QR_"`

	// Adapter holds outbound transport settings used by the terminal
	// client (server address, request timeout).
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds configuration for background worker processes.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged after env and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values that control security,
// token lifecycle, and versioning.
type App struct {
	// TokenSignKey is the secret key used to sign and verify JWT access
	// tokens. Must be kept confidential.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued JWT and the
	// issuer label in TOTP provisioning URIs.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// AccessTokenTTL is how long a JWT access token remains valid
	// (e.g. "15m").
	// Env: APP_ACCESS_TOKEN_TTL
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL"`

	// RefreshTokenTTL is how long an opaque refresh token remains valid
	// (e.g. "720h").
	// Env: APP_REFRESH_TOKEN_TTL
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL"`

	// HashKey is the HMAC-SHA256 key used to hash every secret the server
	// stores but must never be able to read back: refresh tokens, backup
	// codes, verification codes, and QR session credentials.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// SecretsKey is the hex-encoded 32-byte AES-256 key used to encrypt
	// TOTP secrets at rest. Unlike HashKey material, TOTP secrets must be
	// recoverable to validate codes.
	// Env: APP_SECRETS_KEY
	SecretsKey string `env:"SECRETS_KEY"`

	// Version is the semantic version string of the running application.
	// Exposed via the /api/v1/version endpoint.
	// Env: APP_VERSION
	Version string `env:"VERSION"`

	// LogFile is where the terminal client writes its log output so it
	// does not interleave with the rendered UI. Unused by the server.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`
}

// Storage groups the configuration for all storage backends used by the
// platform.
type Storage struct {
	// DB holds the relational database connection settings.
	DB DB `envPrefix:"DB_"`

	// Redis holds the Redis connection settings for the QR session store.
	Redis Redis `envPrefix:"REDIS_"`
}

// DB holds connection settings for the relational database backend.
type DB struct {
	// DSN is the database connection string. A postgres:// URI selects the
	// PostgreSQL backend; anything else is treated as a SQLite path
	// (development mode).
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Redis holds connection settings for the QR session store.
type Redis struct {
	// Addr is the Redis server address in "host:port" format.
	// Env: STORAGE_REDIS_ADDR
	Addr string `env:"ADDR"`

	// Password is the optional Redis AUTH password.
	// Env: STORAGE_REDIS_PASSWORD
	Password string `env:"PASSWORD"`

	// DB is the Redis logical database number.
	// Env: STORAGE_REDIS_DB
	DB int `env:"DB"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the TCP address on which the HTTP server listens,
	// in "host:port" format (e.g. "0.0.0.0:8080").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request before the server cancels it (e.g. "30s", "1m").
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// QR holds QR sign-in session settings.
type QR struct {
	// SessionTTL is how long an unconsumed QR sign-in session survives,
	// across all of its states (e.g. "5m").
	// Env: QR_SESSION_TTL
	SessionTTL time.Duration `env:"SESSION_TTL"`
}

// Adapter holds outbound transport settings for the terminal client.
type Adapter struct {
	// HTTPAddress is the base address of the nexus server the client
	// talks to, in "host:port" or URL form.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the timeout applied to outbound client requests.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// ReconcileInterval is how often the subscription reconciler rolls
	// periods and purges expired codes and tokens (e.g. "1m").
	// Env: WORKERS_RECONCILE_INTERVAL
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (first source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults (fill whatever is still unset)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}
