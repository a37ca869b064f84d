package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSecret returns n random bytes, hex encoded
func GenerateSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// JWTSecrets is a freshly generated pair of signing secrets
type JWTSecrets struct {
	Access  string
	Refresh string
}

// GenerateJWTSecrets generates distinct 256-bit access and refresh secrets
func GenerateJWTSecrets() (JWTSecrets, error) {
	access, err := GenerateSecret(32)
	if err != nil {
		return JWTSecrets{}, fmt.Errorf("failed to generate access secret: %w", err)
	}
	refresh, err := GenerateSecret(32)
	if err != nil {
		return JWTSecrets{}, fmt.Errorf("failed to generate refresh secret: %w", err)
	}
	return JWTSecrets{Access: access, Refresh: refresh}, nil
}

// EnvLines renders the secrets as .env assignments
func (s JWTSecrets) EnvLines() string {
	return fmt.Sprintf("JWT_SECRET=%s\nJWT_REFRESH_SECRET=%s\n", s.Access, s.Refresh)
}
