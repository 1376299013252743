package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
)

// backupCodeAlphabet excludes characters that read ambiguously when printed
// (0/O, 1/I/L), since backup codes are meant to be written down on paper.
const backupCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// RandomToken returns a URL-safe random string built from byteLen bytes of
// entropy. Used for opaque refresh tokens, QR poll secrets and scan tokens.
func RandomToken(byteLen int) (string, error) {
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error generating random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// RandomDigits returns a string of n decimal digits with leading zeros
// preserved. Used for email verification and password reset codes.
func RandomDigits(n int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)

	value, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("error generating random code: %w", err)
	}

	return fmt.Sprintf("%0*d", n, value), nil
}

// RandomBackupCode returns a single two-factor backup code in the form
// XXXXX-XXXXX, drawn from backupCodeAlphabet.
func RandomBackupCode() (string, error) {
	alphabetLen := big.NewInt(int64(len(backupCodeAlphabet)))

	var b strings.Builder
	b.Grow(11)

	for i := 0; i < 10; i++ {
		if i == 5 {
			b.WriteByte('-')
		}

		idx, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("error generating backup code: %w", err)
		}
		b.WriteByte(backupCodeAlphabet[idx.Int64()])
	}

	return b.String(), nil
}
