package screens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/avdeevsv/screenpad/internal/client/models"
	"github.com/avdeevsv/screenpad/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE screens (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL DEFAULT '',
  message_content TEXT NOT NULL DEFAULT '',
  keyboard TEXT NOT NULL DEFAULT '[]',
  parse_mode TEXT NOT NULL DEFAULT '',
  message_type TEXT NOT NULL DEFAULT '',
  media_url TEXT NOT NULL DEFAULT '',
  share_token TEXT NOT NULL DEFAULT '',
  is_public INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMP,
  updated_at TIMESTAMP
);
`)
	require.NoError(t, err)

	return db
}

func sampleScreen(id, userID string) *models.Screen {
	return &models.Screen{
		Id:             id,
		UserID:         userID,
		Name:           "start",
		MessageContent: "hello",
		Keyboard:       []models.KeyboardRow{{{Text: "next", LinkedScreenID: "s2"}}},
		ParseMode:      models.ParseModeHTML,
		CreatedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestUpsert_InsertAndUpdate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	s := sampleScreen("s1", "u1")
	require.NoError(t, r.Upsert(ctx, s))

	got, err := r.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.MessageContent)
	assert.Equal(t, s.Keyboard, got.Keyboard)

	s.MessageContent = "changed"
	s.Keyboard = nil
	require.NoError(t, r.Upsert(ctx, s))

	got, err = r.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "changed", got.MessageContent)
	assert.Empty(t, got.Keyboard)
}

func TestGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.GetByID(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestGetAll_ScopedToIdentity(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sampleScreen("s1", "u1")))
	require.NoError(t, r.Upsert(ctx, sampleScreen("s2", "u1")))
	require.NoError(t, r.Upsert(ctx, sampleScreen("sx", "u2")))

	got, err := r.GetAll(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s1", got[0].Id)
	assert.Equal(t, "s2", got[1].Id)
}

func TestDeleteByID_SuccessAndMissing(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sampleScreen("s1", "u1")))
	require.NoError(t, r.DeleteByID(ctx, "s1"))

	err := r.DeleteByID(ctx, "s1")
	assert.Error(t, err)
}
