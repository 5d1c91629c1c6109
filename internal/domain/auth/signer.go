package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SecretHash computes the Cognito SECRET_HASH: base64(HMAC-SHA256(secret, username+clientID))
func SecretHash(username, clientID, clientSecret string) (string, error) {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	if _, err := mac.Write([]byte(username + clientID)); err != nil {
		return "", SigningError(err)
	}
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
