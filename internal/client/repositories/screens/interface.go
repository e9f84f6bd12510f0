package screens

import (
	"context"

	"github.com/avdeevsv/screenpad/internal/client/models"
)

// Repository is the local screen cache backing the editor. The editor
// reads and writes here first; the remote store is reconciled by the sync
// orchestrator.
type Repository interface {
	// Upsert inserts a new screen or updates an existing one by Id.
	Upsert(ctx context.Context, s *models.Screen) error

	// GetByID returns a cached screen by its identifier.
	GetByID(ctx context.Context, id string) (*models.Screen, error)

	// GetAll lists the identity's cached screens, oldest first.
	GetAll(ctx context.Context, userID string) ([]models.Screen, error)

	// DeleteByID removes a cached screen.
	DeleteByID(ctx context.Context, id string) error
}
