// pkg/session/errors.go
package session

import (
	"context"
	"fmt"
	"time"
)

// LaunchError reports that the browser process failed to start. It is fatal
// to the session and surfaced directly from the construction call.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("browser failed to launch: %v", e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// TimeoutError reports that a bounded wait did not complete in time. It
// carries the operation name, the selector or event waited on, and the bound
// so a CI log line is enough to triage the failure.
type TimeoutError struct {
	Op       string
	Selector string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("%s: timed out after %s waiting for %q", e.Op, e.Timeout, e.Selector)
	}
	return fmt.Sprintf("%s: timed out after %s", e.Op, e.Timeout)
}

// ClosedSessionError reports an operation invoked after Close. This is a
// programmer error in the calling test; it is never retried internally.
type ClosedSessionError struct {
	Op string
}

func (e *ClosedSessionError) Error() string {
	return fmt.Sprintf("%s: session is closed", e.Op)
}

// awaitEvent races a channel against a timer and the supplied contexts. The
// lifetime context is the session's; the caller context allows per-call
// cancellation. On timeout the caller is expected to cancel whatever
// registered the channel so the listener is deregistered on both paths.
func awaitEvent[T any](ctx, lifetime context.Context, op, subject string, timeout time.Duration, ch <-chan T) (T, error) {
	var zero T
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case v := <-ch:
		return v, nil
	case <-timer.C:
		return zero, &TimeoutError{Op: op, Selector: subject, Timeout: timeout}
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-lifetime.Done():
		return zero, lifetime.Err()
	}
}
