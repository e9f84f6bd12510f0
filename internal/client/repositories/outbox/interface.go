package outbox

import (
	"context"

	"github.com/avdeevsv/screenpad/internal/client/models"
)

// Repository is the durable per-identity queue of not-yet-acknowledged
// writes. Entries are appended in submission order and must be replayed in
// that same order: a later update may target a screen id that only becomes
// real once an earlier queued save succeeds.
type Repository interface {
	// Enqueue appends an operation to userID's queue and fills op.Seq.
	// It never touches the network.
	Enqueue(ctx context.Context, userID string, op *models.PendingOperation) error

	// Pending returns the queue contents in FIFO order without mutating it.
	Pending(ctx context.Context, userID string) ([]models.PendingOperation, error)

	// Remove deletes a single acknowledged operation by its seq.
	Remove(ctx context.Context, userID string, seq int64) error

	// Clear empties the queue unconditionally (user-initiated escape hatch).
	Clear(ctx context.Context, userID string) error
}
