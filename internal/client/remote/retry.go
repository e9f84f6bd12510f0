package remote

import (
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds the adapter's attempts against the remote store.
type RetryPolicy struct {
	// MaxAttempts is the total attempt ceiling, first try included.
	MaxAttempts uint64
	// BaseDelay seeds the exponential backoff between attempts.
	BaseDelay time.Duration
	// JitterPercent randomizes each delay by ±percent to avoid thundering
	// herds of reconnecting editors.
	JitterPercent uint64
}

// DefaultRetryPolicy matches the store's documented rate limits.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 4, BaseDelay: 250 * time.Millisecond, JitterPercent: 20}
}

// Backoff builds the go-retry backoff chain for one operation.
func (p RetryPolicy) Backoff() retry.Backoff {
	base := p.BaseDelay
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	b := retry.NewExponential(base)
	if p.JitterPercent > 0 {
		b = retry.WithJitterPercent(p.JitterPercent, b)
	}
	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}
	return retry.WithMaxRetries(attempts-1, b)
}
