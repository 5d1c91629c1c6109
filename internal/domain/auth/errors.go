package auth

import (
	"github.com/oraxus/sports-gateway/internal/domain/errors"
)

// Messages returned to callers. Provider detail is logged, never returned,
// for start and verify.
const (
	msgUsernameRequired    = "Username is required"
	msgSessionCodeRequired = "Session and code are required"
	msgCredentialsRequired = "Username and password are required"
	msgClientNotConfigured = "No Cognito clientId configured for platform"
	msgSecretHashFailed    = "Failed to compute secret hash"
	msgStartFailed         = "Failed to start authentication"
	msgVerifyFailed        = "Failed to verify authentication"
	msgInternal            = "Internal error"
)

// UsernameRequiredError returns an error for a missing username
func UsernameRequiredError() error {
	return errors.NewInvalidRequestError(msgUsernameRequired)
}

// SessionCodeRequiredError returns an error for a verify call without session or code
func SessionCodeRequiredError() error {
	return errors.NewInvalidRequestError(msgSessionCodeRequired)
}

// CredentialsRequiredError returns an error for a missing username or password
func CredentialsRequiredError() error {
	return errors.NewInvalidRequestError(msgCredentialsRequired)
}

// ClientNotConfiguredError returns an error for an unresolvable app client
func ClientNotConfiguredError(p Platform) error {
	return errors.NewClientNotConfiguredError(msgClientNotConfigured).WithDetail("platform", string(p))
}

// SigningError wraps a SECRET_HASH failure
func SigningError(err error) error {
	return errors.NewSigningError(msgSecretHashFailed, err)
}

// StartFailedError wraps a provider rejection of a challenge start
func StartFailedError(err error) error {
	return errors.NewProviderStartError(msgStartFailed, err)
}

// VerifyFailedError wraps a provider rejection of a challenge answer
func VerifyFailedError(err error) error {
	return errors.NewProviderVerifyError(msgVerifyFailed, err)
}

// InternalError wraps an unexpected failure
func InternalError(err error) error {
	return errors.NewInternalError(msgInternal, err)
}
