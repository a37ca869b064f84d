package services

import (
	"fmt"
	"strings"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
)

// GoogleIdentity is the verified subject of a Google ID token
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

// GoogleVerifier checks Google sign-in credentials
type GoogleVerifier interface {
	Verify(credential string) (*GoogleIdentity, error)
}

// GoogleIDTokenVerifier verifies ID tokens against Google's published keys
type GoogleIDTokenVerifier struct {
	clientID string
}

// NewGoogleIDTokenVerifier creates a verifier accepting tokens issued for clientID
func NewGoogleIDTokenVerifier(clientID string) *GoogleIDTokenVerifier {
	return &GoogleIDTokenVerifier{clientID: clientID}
}

// Verify validates signature, audience and expiry, then decodes the claims
func (v *GoogleIDTokenVerifier) Verify(credential string) (*GoogleIdentity, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("google sign-in is not configured")
	}

	verifier := googleAuthIDTokenVerifier.Verifier{}
	if err := verifier.VerifyIDToken(credential, []string{v.clientID}); err != nil {
		return nil, fmt.Errorf("invalid google id token: %w", err)
	}

	claimSet, err := googleAuthIDTokenVerifier.Decode(credential)
	if err != nil {
		return nil, fmt.Errorf("failed to decode google id token: %w", err)
	}
	if claimSet.Sub == "" || claimSet.Email == "" {
		return nil, fmt.Errorf("google id token is missing subject or email")
	}

	return &GoogleIdentity{
		Subject: claimSet.Sub,
		Email:   strings.ToLower(claimSet.Email),
		Name:    claimSet.Name,
	}, nil
}
