package outbox

import (
	"context"
	"fmt"

	"github.com/avdeevsv/screenpad/internal/client/models"
	"github.com/avdeevsv/screenpad/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, userID string, op *models.PendingOperation) error {
	query := `INSERT INTO pending_ops (user_id, kind, screen_id, payload)
			values (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, userID, string(op.Kind), op.ScreenID, []byte(op.Payload))
	if err != nil {
		return fmt.Errorf("failed to enqueue operation: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get assigned seq: %w", err)
	}
	op.Seq = seq
	return nil
}

func (r *SQLiteRepository) Pending(ctx context.Context, userID string) ([]models.PendingOperation, error) {
	query := `select seq, kind, screen_id, payload, enqueued_at from pending_ops
			where user_id=? order by seq`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending operations: %w", err)
	}
	defer rows.Close()

	var result []models.PendingOperation
	for rows.Next() {
		var item models.PendingOperation
		var kind string
		var payload []byte
		if err := rows.Scan(&item.Seq, &kind, &item.ScreenID, &payload, &item.EnqueuedAt); err != nil {
			return nil, err
		}
		item.Kind = models.OpKind(kind)
		item.Payload = payload
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Remove expects exactly one row to be affected; removing an already-gone
// seq is a bug in the replay loop, not a recoverable condition.
func (r *SQLiteRepository) Remove(ctx context.Context, userID string, seq int64) error {
	query := `delete from pending_ops where user_id=? and seq=?`
	res, err := r.db.ExecContext(ctx, query, userID, seq)
	if err != nil {
		return fmt.Errorf("failed to remove operation: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `delete from pending_ops where user_id=?`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	return nil
}
