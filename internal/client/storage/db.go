// Package storage opens the client's local SQLite database, applies the
// embedded migrations and hands out the repositories built on it.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avdeevsv/screenpad/internal/client/migrations"
	"github.com/avdeevsv/screenpad/internal/client/repositories/outbox"
	"github.com/avdeevsv/screenpad/internal/client/repositories/screens"
	"github.com/avdeevsv/screenpad/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Screens screens.Repository
	Outbox  outbox.Repository
	DB      *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	return &Repositories{
		Screens: screens.NewSQLiteRepository(db),
		Outbox:  outbox.NewSQLiteRepository(db),
		DB:      db,
	}, nil
}

// PurgeIdentity removes all identity-scoped local state, the screen cache
// and the pending queue, in one transaction. Either both survive a crash or
// neither does.
func (r *Repositories) PurgeIdentity(ctx context.Context, userID string) error {
	return dbx.WithTx(ctx, r.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `delete from pending_ops where user_id=?`, userID); err != nil {
			return fmt.Errorf("failed to purge pending operations: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `delete from screens where user_id=?`, userID); err != nil {
			return fmt.Errorf("failed to purge cached screens: %w", err)
		}
		return nil
	})
}
