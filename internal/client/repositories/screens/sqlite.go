package screens

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/avdeevsv/screenpad/internal/client/models"
	"github.com/avdeevsv/screenpad/internal/common"
	"github.com/avdeevsv/screenpad/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
// The keyboard is stored as a JSON column; everything else maps to plain
// columns.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, s *models.Screen) error {
	kb, err := json.Marshal(s.Keyboard)
	if err != nil {
		return fmt.Errorf("failed to encode keyboard: %w", err)
	}

	query := `INSERT INTO screens (id, user_id, name, message_content, keyboard, parse_mode,
				message_type, media_url, share_token, is_public, created_at, updated_at)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				message_content = excluded.message_content,
				keyboard = excluded.keyboard,
				parse_mode = excluded.parse_mode,
				message_type = excluded.message_type,
				media_url = excluded.media_url,
				share_token = excluded.share_token,
				is_public = excluded.is_public,
				updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		s.Id, s.UserID, s.Name, s.MessageContent, string(kb), s.ParseMode,
		s.MessageType, s.MediaURL, s.ShareToken, s.IsPublic, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert screen: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Screen, error) {
	query := `select id, user_id, name, message_content, keyboard, parse_mode,
				message_type, media_url, share_token, is_public, created_at, updated_at
			from screens where id=?`
	row := r.db.QueryRowContext(ctx, query, id)

	s, err := scanScreen(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context, userID string) ([]models.Screen, error) {
	query := `select id, user_id, name, message_content, keyboard, parse_mode,
				message_type, media_url, share_token, is_public, created_at, updated_at
			from screens where user_id=? order by created_at, id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select screens: %w", err)
	}
	defer rows.Close()

	var result []models.Screen
	for rows.Next() {
		s, err := scanScreen(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `delete from screens where id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete screen: %w", err)
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

func scanScreen(scan func(dest ...any) error) (*models.Screen, error) {
	s := &models.Screen{}
	var kb string
	var createdAt, updatedAt sql.NullTime
	if err := scan(&s.Id, &s.UserID, &s.Name, &s.MessageContent, &kb, &s.ParseMode,
		&s.MessageType, &s.MediaURL, &s.ShareToken, &s.IsPublic, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(kb), &s.Keyboard); err != nil {
		return nil, fmt.Errorf("failed to decode keyboard: %w", err)
	}
	if createdAt.Valid {
		s.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		s.UpdatedAt = updatedAt.Time
	}
	return s, nil
}
