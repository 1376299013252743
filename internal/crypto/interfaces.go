// Package crypto holds the server-side encryption used for secrets the
// server must be able to read back. Everything the server only compares
// (refresh tokens, verification codes, backup codes) is HMAC-hashed in
// internal/utils instead and never encrypted.
package crypto

// SecretCipher encrypts and decrypts small secrets at rest.
//
// The one consumer today is the two-factor service: TOTP secrets have to be
// recoverable to validate codes, so unlike passwords they cannot be stored
// as one-way hashes.
type SecretCipher interface {
	// Encrypt seals plaintext and returns a self-contained blob
	// (nonce ‖ ciphertext) safe to store in the database.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt opens a blob produced by Encrypt. Returns an error if the
	// blob is truncated, the key is wrong, or the ciphertext was altered
	// (authentication-tag mismatch).
	Decrypt(blob []byte) ([]byte, error)
}
