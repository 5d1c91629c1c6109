package utils

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// IDTokenClaims represents the subset of Cognito ID token claims the gateway reads
type IDTokenClaims struct {
	jwt.RegisteredClaims
	Username string `json:"cognito:username"`
	Email    string `json:"email"`
	TokenUse string `json:"token_use"`
}

// SubjectFromIDToken extracts the sub claim of a freshly issued ID token.
// The signature is NOT verified: the token came straight from Cognito over
// TLS and is only used to label audit records, never to authorize.
func SubjectFromIDToken(idToken string) (string, error) {
	if idToken == "" {
		return "", errors.New("id token is empty")
	}

	claims := &IDTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return "", fmt.Errorf("failed to parse id token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("id token has no sub claim")
	}

	return claims.Subject, nil
}
