package userservice

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oraxus/sports-gateway/internal/domain/auth"
)

// AsyncNotifier calls the user service in a background goroutine so the
// caller's response never waits on it. Failures are logged and dropped.
type AsyncNotifier struct {
	inner   Ensurer
	timeout time.Duration
	log     *slog.Logger
	wg      sync.WaitGroup
}

var _ auth.Notifier = (*AsyncNotifier)(nil)

// NewAsyncNotifier wraps inner. Each call gets its own timeout detached from
// the caller's cancellation.
func NewAsyncNotifier(inner Ensurer, timeout time.Duration, log *slog.Logger) *AsyncNotifier {
	return &AsyncNotifier{inner: inner, timeout: timeout, log: log}
}

// EnsureUserExists implements auth.Notifier
func (n *AsyncNotifier) EnsureUserExists(ctx context.Context, username string) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				n.log.Error("Panic while notifying user service", "username", username, "panic", r)
			}
		}()

		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()

		if err := n.inner.EnsureUserExists(callCtx, username); err != nil {
			n.log.Warn("Failed to ensure user exists in user service", "username", username, "error", err)
			return
		}
		n.log.Debug("User ensured in user service", "username", username)
	}()
}

// Wait blocks until all in-flight notifications finish. The Lambda handler
// calls it before returning since the runtime freezes between invocations.
func (n *AsyncNotifier) Wait() {
	n.wg.Wait()
}
