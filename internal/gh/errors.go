package gh

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned for 404 responses. Callers treat missing files and
// endpoints as an absence of evidence, not a failure.
var ErrNotFound = errors.New("resource not found")

// ErrBudgetExhausted is returned when every credential in the pool is out of
// budget or invalid.
var ErrBudgetExhausted = errors.New("all credentials exhausted")

// RateLimitError is returned when the server reports rate limiting and the
// caller's deadline cannot absorb the wait until reset. The scanner degrades
// the session to truncated on this error instead of aborting.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// TransientError wraps a network or 5xx failure that persisted through the
// client's bounded retries. Anything above the client treats it as a skipped
// unit of work, never as grounds for another retry loop.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient request failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }
