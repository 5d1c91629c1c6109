package utils

import (
	"strings"
)

// NormalizeUsername trims surrounding whitespace. Phone numbers are expected
// in E.164 already; nothing else is rewritten.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// LooksLikeEmail reports whether a username should be treated as an email
// address for challenge delivery
func LooksLikeEmail(username string) bool {
	return strings.Contains(username, "@")
}

// AllPresent reports whether every value is non-empty
func AllPresent(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return false
		}
	}
	return true
}
