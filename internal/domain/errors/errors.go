package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to gateway callers. The set is closed: every failure
// leaving the gateway carries exactly one of these.
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeClientNotConfigured  = "CLIENT_NOT_CONFIGURED"
	CodeSigningError         = "SIGNING_ERROR"
	CodeProviderStartFailed  = "PROVIDER_START_FAILED"
	CodeProviderVerifyFailed = "PROVIDER_VERIFY_FAILED"
	CodeInternalError        = "INTERNAL_ERROR"
)

// AppError is a custom error type for application errors
type AppError struct {
	Code       string
	Message    string
	StatusCode int // Same rule as HTTP status codes
	Err        error
	Details    map[string]interface{}
}

// Error returns a string representation of the error
func (e AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is implements the errors.Is interface
func (e AppError) Is(target error) bool {
	if target, ok := target.(AppError); ok {
		return target.Code == e.Code
	}
	return false
}

// Unwrap returns the underlying error
func (e AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a single detail to the error
func (e AppError) WithDetail(key string, value interface{}) AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Sentinels usable with errors.Is; only the code is compared.
var (
	ErrInvalidRequest       = AppError{Code: CodeInvalidRequest}
	ErrClientNotConfigured  = AppError{Code: CodeClientNotConfigured}
	ErrSigningError         = AppError{Code: CodeSigningError}
	ErrProviderStartFailed  = AppError{Code: CodeProviderStartFailed}
	ErrProviderVerifyFailed = AppError{Code: CodeProviderVerifyFailed}
	ErrInternal             = AppError{Code: CodeInternalError}
)

// NewInvalidRequestError creates a new invalid request error
func NewInvalidRequestError(message string) AppError {
	return AppError{
		Code:       CodeInvalidRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewClientNotConfiguredError creates an error for a missing Cognito app client
func NewClientNotConfiguredError(message string) AppError {
	return AppError{
		Code:       CodeClientNotConfigured,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewSigningError creates an error for a failed SECRET_HASH computation
func NewSigningError(message string, err error) AppError {
	return AppError{
		Code:       CodeSigningError,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewProviderStartError creates an error for a rejected challenge start
func NewProviderStartError(message string, err error) AppError {
	return AppError{
		Code:       CodeProviderStartFailed,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

// NewProviderVerifyError creates an error for a rejected challenge answer
func NewProviderVerifyError(message string, err error) AppError {
	return AppError{
		Code:       CodeProviderVerifyFailed,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) AppError {
	return AppError{
		Code:       CodeInternalError,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// Translate maps any error onto the closed code set. Errors that are not
// already an AppError become a generic internal error; the original error is
// kept in Err for server-side logging only.
func Translate(err error) AppError {
	if err == nil {
		return AppError{}
	}
	var appErr AppError
	if stderrors.As(err, &appErr) {
		if appErr.StatusCode == 0 {
			appErr.StatusCode = statusFor(appErr.Code)
		}
		return appErr
	}
	return NewInternalError("Internal server error", err)
}

func statusFor(code string) int {
	switch code {
	case CodeInvalidRequest, CodeProviderStartFailed, CodeProviderVerifyFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
