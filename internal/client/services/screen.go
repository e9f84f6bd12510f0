package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avdeevsv/screenpad/internal/client/graph"
	"github.com/avdeevsv/screenpad/internal/client/models"
	"github.com/avdeevsv/screenpad/internal/client/remote"
	"github.com/avdeevsv/screenpad/internal/client/repositories/outbox"
	"github.com/avdeevsv/screenpad/internal/client/repositories/screens"
	"github.com/avdeevsv/screenpad/internal/client/session"
	"github.com/avdeevsv/screenpad/internal/common"
	"github.com/avdeevsv/screenpad/internal/logging"
	"github.com/avdeevsv/screenpad/internal/telemetry"
)

// ValidationReport is the outcome of checking the identity's screen graph:
// navigation cycles, dangling links, entry-point resolution and oversized
// callback payloads. All findings are advisory; none block editing.
type ValidationReport struct {
	Cycles        [][]string
	BrokenLinks   []graph.BrokenLink
	EntryScreenID string
	Oversized     []graph.CallbackDefect
}

// ScreenService exposes the screen catalog operations built on the local
// cache and, where an operation is inherently remote (delete, share), the
// store. Writes that tolerate offline go through the orchestrator instead.
type ScreenService struct {
	store    remote.Store
	screens  screens.Repository
	outbox   outbox.Repository
	identity *session.Identity
	orch     *Orchestrator
	sinks    *telemetry.Sinks
	log      logging.Logger
}

func NewScreenService(store remote.Store, sr screens.Repository, or outbox.Repository,
	identity *session.Identity, orch *Orchestrator, sinks *telemetry.Sinks, log logging.Logger) *ScreenService {
	return &ScreenService{
		store:    store,
		screens:  sr,
		outbox:   or,
		identity: identity,
		orch:     orch,
		sinks:    sinks,
		log:      log,
	}
}

func (s *ScreenService) requireIdentity() (*session.Identity, error) {
	if s.identity == nil {
		return nil, common.ErrNoIdentity
	}
	return s.identity, nil
}

// List returns the identity's cached screens, oldest first.
func (s *ScreenService) List(ctx context.Context) ([]models.Screen, error) {
	id, err := s.requireIdentity()
	if err != nil {
		return nil, err
	}
	return s.screens.GetAll(ctx, id.UserID)
}

// Get returns one cached screen.
func (s *ScreenService) Get(ctx context.Context, screenID string) (*models.Screen, error) {
	return s.screens.GetByID(ctx, screenID)
}

// Delete removes a screen remotely and from the cache. Deletion is an
// online-only operation; it is never queued, because screens referenced by
// queued updates must not silently vanish underneath them. Buttons on other
// screens that pointed here become dangling links, which the validator
// reports.
func (s *ScreenService) Delete(ctx context.Context, screenID string) error {
	id, err := s.requireIdentity()
	if err != nil {
		return err
	}
	if !s.orch.Online() {
		return fmt.Errorf("delete requires connectivity")
	}

	all, err := s.screens.GetAll(ctx, id.UserID)
	if err != nil {
		return fmt.Errorf("failed to list screens: %w", err)
	}
	if refs := graph.FindReferences(screenID, all); len(refs) > 0 {
		s.log.Warn(ctx, "deleting a referenced screen",
			"screen_id", screenID, "inbound_links", len(refs))
	}

	if _, err := s.store.DeleteScreens(ctx, []string{screenID}); err != nil {
		return err
	}
	if err := s.screens.DeleteByID(ctx, screenID); err != nil {
		return fmt.Errorf("failed to evict deleted screen: %w", err)
	}
	return nil
}

// Validate runs the structural checks over the identity's whole graph.
func (s *ScreenService) Validate(ctx context.Context, entryID string) (*ValidationReport, error) {
	id, err := s.requireIdentity()
	if err != nil {
		return nil, err
	}
	all, err := s.screens.GetAll(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list screens: %w", err)
	}
	return &ValidationReport{
		Cycles:        graph.FindAllCycles(all),
		BrokenLinks:   graph.FindBrokenLinks(all),
		EntryScreenID: graph.ResolveEntry(entryID, all),
		Oversized:     graph.FindOversizedCallbacks(all),
	}, nil
}

// Import merges an external payload into the screen. The payload may carry
// either the bot-wire reply_markup shape or the internal keyboard shape;
// when both are present the internal shape wins. The merged screen goes
// through the orchestrator so the edit syncs like any other.
func (s *ScreenService) Import(ctx context.Context, screenID string, data []byte) (*models.Screen, error) {
	p, err := models.ParseImport(data)
	if err != nil {
		return nil, err
	}
	sc, err := s.screens.GetByID(ctx, screenID)
	if err != nil {
		return nil, err
	}
	p.ApplyTo(sc)
	if err := s.orch.NoteEdit(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

// Export serializes the screen's content and keyboard to the interchange
// payload, carrying both keyboard shapes so the result round-trips through
// Import and pastes into bot configs unchanged.
func (s *ScreenService) Export(ctx context.Context, screenID string) ([]byte, error) {
	sc, err := s.screens.GetByID(ctx, screenID)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(models.ExportScreen(sc), "", "  ")
}

// ExportQueue serializes the identity's pending operations in submission
// order, for inspection or support escalation.
func (s *ScreenService) ExportQueue(ctx context.Context) ([]byte, error) {
	id, err := s.requireIdentity()
	if err != nil {
		return nil, err
	}
	ops, err := s.outbox.Pending(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue: %w", err)
	}
	return json.MarshalIndent(ops, "", "  ")
}

// Share makes the screen publicly reachable by token. A screen with
// dangling links is not shareable; a first share publishes a fresh token,
// a repeated share rotates it, invalidating old links.
func (s *ScreenService) Share(ctx context.Context, screenID string) (string, error) {
	id, err := s.requireIdentity()
	if err != nil {
		return "", err
	}

	sc, err := s.screens.GetByID(ctx, screenID)
	if err != nil {
		return "", err
	}

	all, err := s.screens.GetAll(ctx, id.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to list screens: %w", err)
	}
	if broken := graph.FindBrokenLinks(all); len(broken) > 0 {
		return "", fmt.Errorf("cannot share: %d dangling navigation links", len(broken))
	}

	token, err := remote.NewShareToken()
	if err != nil {
		return "", err
	}

	if sc.IsPublic && sc.ShareToken != "" {
		err = s.store.RotateShareToken(ctx, screenID, token)
	} else {
		err = s.store.PublishShareToken(ctx, screenID, token)
	}
	if err != nil {
		s.publishShareStatus(ctx, models.SyncError, err.Error())
		return "", err
	}

	sc.ShareToken = token
	sc.IsPublic = true
	if err := s.screens.Upsert(ctx, sc); err != nil {
		s.log.Error(ctx, "failed to cache share token", "screen_id", screenID, "error", err)
	}
	s.publishShareStatus(ctx, models.SyncSuccess, "share token published")
	return token, nil
}

// Revoke withdraws the screen's public access.
func (s *ScreenService) Revoke(ctx context.Context, screenID string) error {
	if _, err := s.requireIdentity(); err != nil {
		return err
	}
	sc, err := s.screens.GetByID(ctx, screenID)
	if err != nil {
		return err
	}
	if err := s.store.RevokeShareToken(ctx, screenID); err != nil {
		s.publishShareStatus(ctx, models.SyncError, err.Error())
		return err
	}
	sc.ShareToken = ""
	sc.IsPublic = false
	if err := s.screens.Upsert(ctx, sc); err != nil {
		s.log.Error(ctx, "failed to cache revocation", "screen_id", screenID, "error", err)
	}
	s.publishShareStatus(ctx, models.SyncSuccess, "share token revoked")
	return nil
}

// PublicLookup resolves a share token anonymously. A revoked or unknown
// token yields (nil, nil).
func (s *ScreenService) PublicLookup(ctx context.Context, token string) (*models.Screen, error) {
	return s.store.GetPublicScreenByToken(ctx, token)
}

func (s *ScreenService) publishShareStatus(ctx context.Context, state models.SyncState, msg string) {
	if s.sinks == nil {
		return
	}
	s.sinks.PublishStatus(ctx, models.SyncStatus{
		State:   state,
		Class:   "share",
		Message: msg,
		At:      time.Now(),
	})
}
