package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token wraps a JWT access token with convenience accessors for
// authentication flows.
//
// It embeds [jwt.Token] for low-level token operations (signing, parsing)
// and [jwt.RegisteredClaims] for standard claim access (subject, expiry, etc.).
//
// SignedString holds the compact serialized form of the token
// (header.payload.signature) ready to be transmitted in HTTP headers.
//
// UserID is a cached, parsed copy of the "sub" (subject) claim converted to
// int64, populated during parsing so handlers do not re-parse the claim.
type Token struct {
	// Token is the underlying JWT token used for signing and claim inspection.
	*jwt.Token `json:"-"`

	// RegisteredClaims provides access to the standard JWT claim set
	// (sub, exp, iat, nbf, iss, aud, jti) as defined by RFC 7519.
	jwt.RegisteredClaims

	// SignedString is the compact JWS representation of the token.
	SignedString string `json:"-"`

	// UserID is the owner identifier extracted from the "sub" claim.
	UserID int64 `json:"-"`
}

// GetUserID extracts the user identifier from the token's "sub" (subject)
// claim, parses it as a base-10 int64, and returns the result.
//
// Returns an error if the subject claim is missing, empty, or cannot be
// converted to int64.
func (t *Token) GetUserID() (int64, error) {
	userIDString, err := t.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("error extracting UserID from token: %w", err)
	}

	userID, err := strconv.ParseInt(userIDString, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error converting UserID from token to int64: %w", err)
	}

	return userID, nil
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *Token) String() string {
	return t.SignedString
}

// Ways a token pair can be minted. Stored on the refresh token row for
// session auditing.
const (
	IssuedViaPassword = "password"
	IssuedViaTwoFA    = "twofa"
	IssuedViaQR       = "qr"
	IssuedViaRefresh  = "refresh"
)

// RefreshToken is the persisted half of a session. The opaque token string
// handed to the client is never stored; only its keyed hash is.
type RefreshToken struct {
	// ID is the internal unique identifier of the token row.
	ID int64 `json:"-"`

	// UserID is the owner of the session.
	UserID int64 `json:"-"`

	// TokenHash is the HMAC-SHA256 hex digest of the opaque token string.
	TokenHash string `json:"-"`

	// UserAgent and IP describe the device the session was minted for.
	UserAgent string `json:"user_agent"`
	IP        string `json:"ip"`

	// IssuedVia records which flow minted the session: IssuedViaPassword,
	// IssuedViaTwoFA, IssuedViaQR or IssuedViaRefresh.
	IssuedVia string `json:"issued_via"`

	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// TableName returns the name of the database table
// associated with the RefreshToken model.
func (t RefreshToken) TableName() string {
	return "refresh_tokens"
}

// Live reports whether the token is neither revoked nor expired at now.
func (t RefreshToken) Live(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// TokenPair is the credential set returned by every successful sign-in:
// a short-lived JWT access token plus a long-lived opaque refresh token.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// DeviceInfo describes the device a session is minted for. It is recorded on
// the refresh token row for session auditing and shown to the user in the
// QR sign-in approval screen.
type DeviceInfo struct {
	UserAgent string `json:"user_agent"`
	IP        string `json:"ip"`
}
