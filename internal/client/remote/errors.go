package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the structured failure produced by the adapter. Status is the
// HTTP status of the failed attempt, or 0 when the request never produced a
// response (transport-level failure).
type Error struct {
	Action    string
	Resource  string
	RequestID string
	Status    int
	Err       error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: network failure: %v", e.Action, e.Resource, e.Err)
	}
	return fmt.Sprintf("%s %s: status %d: %v", e.Action, e.Resource, e.Status, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// RequestIDOf extracts the correlation id carried by an adapter error, or
// "" when err did not come from the adapter.
func RequestIDOf(err error) string {
	var re *Error
	if errors.As(err, &re) {
		return re.RequestID
	}
	return ""
}

// IsNetwork reports a transport-level failure: the write may not have
// reached the store at all, so the edit is safe to queue and replay.
func IsNetwork(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Status == 0
	}
	return false
}

// IsRetryable reports a transient remote failure (rate limiting, 5xx) worth
// another bounded attempt.
func IsRetryable(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Status == http.StatusTooManyRequests || re.Status >= 500
	}
	return false
}

// IsRejection reports a definitive remote rejection (validation, conflict,
// permission). Retrying or queuing such a request would only fail again.
func IsRejection(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Status >= 400 && re.Status < 500 && re.Status != http.StatusTooManyRequests
	}
	return false
}
