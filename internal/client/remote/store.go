// Package remote wraps the narrow data-access contract against the
// relational backend: identity-scoped screen writes, pin and layout
// persistence, share-token operations and the anonymous public read. Every
// mutating call carries a correlation id and a bounded retry policy.
package remote

import (
	"context"

	"github.com/avdeevsv/screenpad/internal/client/models"
)

// ScreenUpdate is a partial update; nil fields are left untouched.
type ScreenUpdate struct {
	Name           *string               `json:"name,omitempty"`
	MessageContent *string               `json:"message_content,omitempty"`
	Keyboard       []models.KeyboardRow  `json:"keyboard,omitempty"`
	ParseMode      *string               `json:"parse_mode,omitempty"`
	MessageType    *string               `json:"message_type,omitempty"`
	MediaURL       *string               `json:"media_url,omitempty"`
	IsPublic       *bool                 `json:"is_public,omitempty"`
}

// Pins is the identity's set of pinned screens.
type Pins struct {
	ScreenIDs []string `json:"screen_ids"`
}

// Layout is the persisted diagram position of one screen node.
type Layout struct {
	ScreenID string  `json:"screen_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Store is the abstract remote contract. The concrete implementation is
// the HTTP adapter; tests substitute fakes.
type Store interface {
	// Ping probes store reachability.
	Ping(ctx context.Context) error

	// SaveScreen creates a screen. Requires a bound identity.
	SaveScreen(ctx context.Context, s *models.Screen) (*models.Screen, error)

	// UpdateScreen applies a partial update. Requires a bound identity.
	UpdateScreen(ctx context.Context, screenID string, update ScreenUpdate) (*models.Screen, error)

	// DeleteScreens removes screens and returns the deleted ids.
	DeleteScreens(ctx context.Context, ids []string) ([]string, error)

	// InsertScreens bulk-creates rows. Empty input returns an empty result
	// without a network call.
	InsertScreens(ctx context.Context, rows []models.Screen) ([]models.Screen, error)

	FetchPins(ctx context.Context) (*Pins, error)
	UpsertPins(ctx context.Context, p Pins) error

	// FetchLayouts returns layouts for the given screen ids; empty ids
	// short-circuit to an empty result.
	FetchLayouts(ctx context.Context, ids []string) ([]Layout, error)
	UpsertLayouts(ctx context.Context, rows []Layout) ([]Layout, error)
	DeleteLayouts(ctx context.Context, ids []string) error

	// Share-token operations all require a bound identity.
	PublishShareToken(ctx context.Context, screenID, token string) error
	RotateShareToken(ctx context.Context, screenID, token string) error
	RevokeShareToken(ctx context.Context, screenID string) error

	// GetPublicScreenByToken is the only anonymous read. A missing token
	// yields (nil, nil).
	GetPublicScreenByToken(ctx context.Context, token string) (*models.Screen, error)
}
