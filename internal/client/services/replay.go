// Package services contains the application services of the screenpad
// client: the outbox replay engine, the sync orchestrator and the screen
// service built on top of them.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avdeevsv/screenpad/internal/client/models"
	"github.com/avdeevsv/screenpad/internal/client/remote"
	"github.com/avdeevsv/screenpad/internal/client/repositories/outbox"
	"github.com/avdeevsv/screenpad/internal/common"
	"github.com/avdeevsv/screenpad/internal/logging"
	"github.com/sethvargo/go-retry"
)

// ExecuteFunc performs one queued operation against the remote store.
type ExecuteFunc func(ctx context.Context, op models.PendingOperation) error

// ReplayCallbacks observe a replay pass. All callbacks are optional.
type ReplayCallbacks struct {
	// OnSuccess fires once when the whole queue drained, with the number of
	// operations acknowledged.
	OnSuccess func(replayed int)
	// OnRetry fires before a failed attempt is retried, with the attempt
	// number and the nominal next delay.
	OnRetry func(op models.PendingOperation, attempt int, next time.Duration)
	// OnItemFailure fires on every failed attempt.
	OnItemFailure func(op models.PendingOperation, attempt int, err error)
	// OnPermanentFailure fires when one operation exhausts its retries and
	// the pass stops.
	OnPermanentFailure func(op models.PendingOperation, err error)
}

// Replayer drains the per-identity outbox in strict submission order.
// Ordering is a correctness requirement: a queued update may target a
// screen that only exists remotely once the save queued before it has been
// acknowledged. On a permanent failure the failing item and everything
// after it stay queued, untouched.
type Replayer struct {
	outbox        outbox.Repository
	execute       ExecuteFunc
	maxAttempts   uint64
	baseDelay     time.Duration
	jitterPercent uint64
	log           logging.Logger

	mu       sync.Mutex
	inflight map[string]bool
}

func NewReplayer(out outbox.Repository, execute ExecuteFunc, maxAttempts uint64, baseDelay time.Duration, jitterPercent uint64, log logging.Logger) *Replayer {
	if maxAttempts == 0 {
		maxAttempts = 1
	}
	// retry.NewExponential panics on a non-positive base
	if baseDelay <= 0 {
		baseDelay = 250 * time.Millisecond
	}
	return &Replayer{
		outbox:        out,
		execute:       execute,
		maxAttempts:   maxAttempts,
		baseDelay:     baseDelay,
		jitterPercent: jitterPercent,
		log:           log,
		inflight:      map[string]bool{},
	}
}

// tryAcquire takes the per-identity replay slot. At most one pass runs per
// identity at a time; a pass replays each operation exactly once, so two
// overlapping passes would double-submit.
func (r *Replayer) tryAcquire(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inflight[userID] {
		return false
	}
	r.inflight[userID] = true
	return true
}

func (r *Replayer) release(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, userID)
}

// Replay runs one pass over userID's queue. It returns
// common.ErrReplayInProgress when a pass is already active for that
// identity; callers treat that as a no-op.
func (r *Replayer) Replay(ctx context.Context, userID string, cb ReplayCallbacks) error {
	if !r.tryAcquire(userID) {
		return common.ErrReplayInProgress
	}
	defer r.release(userID)

	ops, err := r.outbox.Pending(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read pending operations: %w", err)
	}

	replayed := 0
	for _, op := range ops {
		if err := r.replayOne(ctx, op, cb); err != nil {
			if cb.OnPermanentFailure != nil {
				cb.OnPermanentFailure(op, err)
			}
			r.log.Error(ctx, "replay stopped, queue tail preserved",
				"user_id", userID, "seq", op.Seq, "kind", op.Kind, "error", err)
			return fmt.Errorf("replay stopped at seq %d: %w", op.Seq, err)
		}
		if err := r.outbox.Remove(ctx, userID, op.Seq); err != nil {
			return fmt.Errorf("failed to remove acknowledged operation: %w", err)
		}
		replayed++
	}

	r.log.Info(ctx, "replay pass complete", "user_id", userID, "ops", replayed)
	if cb.OnSuccess != nil {
		cb.OnSuccess(replayed)
	}
	return nil
}

func (r *Replayer) replayOne(ctx context.Context, op models.PendingOperation, cb ReplayCallbacks) error {
	b := retry.NewExponential(r.baseDelay)
	if r.jitterPercent > 0 {
		b = retry.WithJitterPercent(r.jitterPercent, b)
	}
	b = retry.WithMaxRetries(r.maxAttempts-1, b)

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		execErr := r.execute(ctx, op)
		if execErr == nil {
			return nil
		}
		if cb.OnItemFailure != nil {
			cb.OnItemFailure(op, attempt, execErr)
		}
		// a definitive rejection will not change on retry
		if remote.IsRejection(execErr) {
			return execErr
		}
		if uint64(attempt) < r.maxAttempts && cb.OnRetry != nil {
			cb.OnRetry(op, attempt, r.baseDelay<<(attempt-1))
		}
		return retry.RetryableError(execErr)
	})
}
