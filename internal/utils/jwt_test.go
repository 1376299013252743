package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateJWTToken_Success(t *testing.T) {
	issuer := "nexus-test"
	userID := int64(123)
	duration := time.Hour
	key := "secret-key"

	token, err := GenerateJWTToken(issuer, userID, duration, key)

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if token.SignedString == "" {
		t.Error("expected non-empty SignedString")
	}
	if token.Token == nil {
		t.Error("expected non-nil jwt.Token object")
	}
	if token.UserID != userID {
		t.Errorf("expected UserID %d, got %d", userID, token.UserID)
	}

	// Verify claims
	claims, ok := token.Token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		t.Fatal("could not cast claims to RegisteredClaims")
	}
	if claims.Issuer != issuer {
		t.Errorf("expected issuer %s, got %s", issuer, claims.Issuer)
	}
	if claims.Subject != "123" {
		t.Errorf("expected subject '123', got %s", claims.Subject)
	}
}

func TestGenerateJWTToken_InvalidParams(t *testing.T) {
	tests := []struct {
		name     string
		issuer   string
		duration time.Duration
		key      string
	}{
		{"empty issuer", "", time.Hour, "key"},
		{"zero duration", "iss", 0, "key"},
		{"empty key", "iss", time.Hour, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateJWTToken(tt.issuer, 1, tt.duration, tt.key)
			if err == nil {
				t.Error("expected error for invalid parameters, got nil")
			}
		})
	}
}

func TestValidateAndParseJWTToken_Success(t *testing.T) {
	issuer := "nexus-test"
	userID := int64(456)
	key := "secret-key"
	duration := time.Minute * 5

	genToken, _ := GenerateJWTToken(issuer, userID, duration, key)

	parsedToken, err := ValidateAndParseJWTToken(genToken.SignedString, key, issuer)

	if err != nil {
		t.Fatalf("expected token to be valid, got error: %v", err)
	}
	if parsedToken.UserID != userID {
		t.Errorf("expected userID %d, got %d", userID, parsedToken.UserID)
	}
}

func TestValidateAndParseJWTToken_InvalidKey(t *testing.T) {
	issuer := "nexus-test"
	key := "correct-key"
	wrongKey := "wrong-key"

	genToken, _ := GenerateJWTToken(issuer, 1, time.Hour, key)

	_, err := ValidateAndParseJWTToken(genToken.SignedString, wrongKey, issuer)
	if err == nil {
		t.Error("expected error due to signature mismatch, got nil")
	}
}

func TestValidateAndParseJWTToken_WrongIssuer(t *testing.T) {
	key := "secret-key"

	genToken, _ := GenerateJWTToken("issuer-a", 1, time.Hour, key)

	_, err := ValidateAndParseJWTToken(genToken.SignedString, key, "issuer-b")
	if err == nil {
		t.Error("expected error due to issuer mismatch, got nil")
	}
}

func TestValidateAndParseJWTToken_Expired(t *testing.T) {
	key := "secret-key"
	issuer := "nexus-test"

	// token that expired one second ago
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Second)),
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	_, err = ValidateAndParseJWTToken(signed, key, issuer)
	if err == nil {
		t.Error("expected error for expired token, got nil")
	}
}

func TestValidateAndParseJWTToken_RejectsNoneAlgorithm(t *testing.T) {
	key := "secret-key"
	issuer := "nexus-test"

	claims := &jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	_, err = ValidateAndParseJWTToken(signed, key, issuer)
	if err == nil {
		t.Error("expected error for alg=none token, got nil")
	}
}

func TestParseUserIDFromJWT(t *testing.T) {
	genToken, err := GenerateJWTToken("nexus-test", 789, time.Hour, "any-key")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	userID, err := ParseUserIDFromJWT(genToken.SignedString)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if userID != 789 {
		t.Errorf("expected userID 789, got %d", userID)
	}
}

func TestParseUserIDFromJWT_Garbage(t *testing.T) {
	_, err := ParseUserIDFromJWT("not-a-jwt")
	if err == nil {
		t.Error("expected error for malformed token, got nil")
	}
}
