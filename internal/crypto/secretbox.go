// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// secretBox is the private implementation of [SecretCipher] backed by
// AES-256-GCM with a single long-lived key from configuration.
type secretBox struct {
	aead cipher.AEAD
}

// NewSecretBox constructs a [SecretCipher] from a 32-byte AES-256 key.
// The key comes from the APP_SECRETS_KEY configuration value and must stay
// stable across restarts, or every stored TOTP secret becomes unreadable.
func NewSecretBox(key []byte) (SecretCipher, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("secrets key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return &secretBox{aead: aead}, nil
}

// Encrypt implements [SecretCipher]. A random 12-byte nonce is prepended to
// the ciphertext so Decrypt can locate it: blob = nonce ‖ ciphertext.
// Returns an error if the random nonce read fails.
func (s *secretBox) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := s.aead.Seal(nil, nonce, plaintext, nil)
	return append(nonce, ciphertext...), nil
}

// Decrypt implements [SecretCipher]. It splits the blob produced by
// [secretBox.Encrypt] into nonce and ciphertext and opens it. An
// authentication error here almost always means the configured secrets key
// changed since the blob was written.
func (s *secretBox) Decrypt(blob []byte) ([]byte, error) {
	nonceSize := s.aead.NonceSize()
	if len(blob) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}

	return plaintext, nil
}
