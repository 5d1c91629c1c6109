package auth

import (
	"context"
)

// Service defines the interface for the authentication gateway.
// This is a technology-agnostic interface; the Cognito implementation lives
// in internal/platform/cognito.
type Service interface {
	// Challenge-response flow
	Start(ctx context.Context, input StartInput) (StartResult, error)
	Verify(ctx context.Context, input VerifyInput) (VerifyResult, error)

	// Password flow
	Register(ctx context.Context, input RegisterInput) (RegisterResult, error)
	Login(ctx context.Context, input LoginInput) (LoginResult, error)
}

// Notifier is told, best-effort, that a user should exist in the downstream
// profile service. Implementations must not block on the outcome and must
// never surface failures to the caller.
type Notifier interface {
	EnsureUserExists(ctx context.Context, username string)
}

// AttemptRecorder persists audit records for gateway operations
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, attempt AuthAttempt) error
}

// NopNotifier discards notifications
type NopNotifier struct{}

// EnsureUserExists implements Notifier
func (NopNotifier) EnsureUserExists(context.Context, string) {}
