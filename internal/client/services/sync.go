package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/avdeevsv/screenpad/internal/client/models"
	"github.com/avdeevsv/screenpad/internal/client/remote"
	"github.com/avdeevsv/screenpad/internal/client/repositories/outbox"
	"github.com/avdeevsv/screenpad/internal/client/repositories/screens"
	"github.com/avdeevsv/screenpad/internal/client/session"
	"github.com/avdeevsv/screenpad/internal/common"
	"github.com/avdeevsv/screenpad/internal/logging"
	"github.com/avdeevsv/screenpad/internal/telemetry"
	"github.com/google/uuid"
)

// ScreenState is the per-screen position in the sync state machine.
type ScreenState int

const (
	StateClean ScreenState = iota
	StateDirty
	StateSaving
	StateQueuedOffline
	StateFailed
)

func (s ScreenState) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateSaving:
		return "saving"
	case StateQueuedOffline:
		return "queued_offline"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// OrchestratorOptions wires the orchestrator's collaborators. Sinks and
// Metrics are optional.
type OrchestratorOptions struct {
	Store    remote.Store
	Screens  screens.Repository
	Outbox   outbox.Repository
	Identity *session.Identity
	Sinks    *telemetry.Sinks
	Metrics  *telemetry.Metrics
	Log      logging.Logger

	// Debounce is the quiet period after the last edit before autosave.
	Debounce time.Duration

	// Replay retry policy for queued operations.
	ReplayMaxAttempts   uint64
	ReplayBaseDelay     time.Duration
	ReplayJitterPercent uint64
}

// Orchestrator ties the editor state, the outbox, the connectivity signal
// and the remote adapter together. It decides whether a write goes straight
// to the store or into the queue, runs the debounced autosave and replays
// the outbox when connectivity returns.
//
// All mutable state is guarded by one mutex; the design assumes no
// concurrent mutation beyond timer and watcher callbacks.
type Orchestrator struct {
	store    remote.Store
	screens  screens.Repository
	outbox   outbox.Repository
	identity *session.Identity
	sinks    *telemetry.Sinks
	metrics  *telemetry.Metrics
	log      logging.Logger
	debounce time.Duration
	replayer *Replayer

	mu         sync.Mutex
	online     bool
	preview    bool
	openScreen string
	states     map[string]ScreenState
	latest     map[string]*models.Screen
	timer      *time.Timer
}

func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	o := &Orchestrator{
		store:    opts.Store,
		screens:  opts.Screens,
		outbox:   opts.Outbox,
		identity: opts.Identity,
		sinks:    opts.Sinks,
		metrics:  opts.Metrics,
		log:      opts.Log,
		debounce: opts.Debounce,
		states:   map[string]ScreenState{},
		latest:   map[string]*models.Screen{},
	}
	o.replayer = NewReplayer(opts.Outbox, o.executeOp,
		opts.ReplayMaxAttempts, opts.ReplayBaseDelay, opts.ReplayJitterPercent, opts.Log)
	return o
}

func (o *Orchestrator) requireIdentity() (*session.Identity, error) {
	if o.identity == nil {
		return nil, common.ErrNoIdentity
	}
	return o.identity, nil
}

// Online reports the last connectivity signal received.
func (o *Orchestrator) Online() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.online
}

// State returns the screen's position in the sync state machine.
func (o *Orchestrator) State(screenID string) ScreenState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.states[screenID]
}

// OpenScreen marks the screen the editor currently shows; only the open
// screen autosaves.
func (o *Orchestrator) OpenScreen(screenID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.openScreen = screenID
}

// CloseScreen cancels any armed debounce so a write cannot fire against a
// screen no longer in focus. A write already in flight runs to completion.
func (o *Orchestrator) CloseScreen() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.openScreen = ""
	o.stopTimerLocked()
}

// SetPreview toggles preview mode. Editing the live preview must not
// trigger background writes, so entering preview cancels the timer.
func (o *Orchestrator) SetPreview(on bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.preview = on
	if on {
		o.stopTimerLocked()
	}
}

func (o *Orchestrator) stopTimerLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

// CreateScreen creates a screen with a client-generated id. The id is
// assigned immediately so the UI and later queued updates can reference the
// screen before remote confirmation; the backend accepts client ids.
func (o *Orchestrator) CreateScreen(ctx context.Context, name string) (*models.Screen, error) {
	id, err := o.requireIdentity()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	s := &models.Screen{
		Id:        uuid.NewString(),
		Name:      name,
		UserID:    id.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := o.screens.Upsert(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to cache screen: %w", err)
	}

	o.mu.Lock()
	o.latest[s.Id] = s.Clone()
	o.mu.Unlock()

	if !o.Online() {
		if err := o.enqueue(ctx, models.OpSave, s); err != nil {
			return nil, err
		}
		return s, nil
	}

	saved, err := o.store.SaveScreen(ctx, s)
	if err != nil {
		if remote.IsNetwork(err) {
			if qerr := o.enqueue(ctx, models.OpSave, s); qerr != nil {
				return nil, qerr
			}
			return s, nil
		}
		o.setState(s.Id, StateFailed)
		return nil, err
	}

	if err := o.screens.Upsert(ctx, saved); err != nil {
		return nil, fmt.Errorf("failed to cache saved screen: %w", err)
	}
	o.setState(s.Id, StateClean)
	o.publishStatus(ctx, "save", models.SyncSuccess, "", "screen created")
	return saved, nil
}

// NoteEdit accepts a mutated screen from the editor: the local cache is
// updated, the screen turns Dirty and the debounce timer restarts so the
// write that eventually fires reflects the latest state, not the state
// when the timer was first armed.
func (o *Orchestrator) NoteEdit(ctx context.Context, s *models.Screen) error {
	s.UpdatedAt = time.Now().UTC()
	if err := o.screens.Upsert(ctx, s); err != nil {
		return fmt.Errorf("failed to cache edit: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.latest[s.Id] = s.Clone()
	o.states[s.Id] = StateDirty

	if o.openScreen != s.Id || o.preview || o.debounce <= 0 {
		return nil
	}

	o.stopTimerLocked()
	screenID := s.Id
	o.timer = time.AfterFunc(o.debounce, func() {
		o.autosave(context.Background(), screenID)
	})
	return nil
}

// autosave is the debounce timer's target. Conditions are rechecked at
// fire time; a screen closed or switched to preview in the meantime is
// skipped.
func (o *Orchestrator) autosave(ctx context.Context, screenID string) {
	o.mu.Lock()
	if o.states[screenID] != StateDirty || o.openScreen != screenID || o.preview {
		o.mu.Unlock()
		return
	}
	s := o.latest[screenID]
	if s == nil {
		o.mu.Unlock()
		return
	}
	s = s.Clone()

	if !o.online {
		o.mu.Unlock()
		if err := o.enqueue(ctx, models.OpUpdate, s); err != nil {
			o.log.Error(ctx, "failed to queue offline edit", "screen_id", screenID, "error", err)
		}
		return
	}

	o.states[screenID] = StateSaving
	o.mu.Unlock()

	if o.metrics != nil {
		o.metrics.Autosaves.Inc()
	}
	o.flush(ctx, s)
}

// flush pushes one screen's latest state to the store, classifying the
// outcome: success, queue (network), or failure (rejection).
func (o *Orchestrator) flush(ctx context.Context, s *models.Screen) {
	updated, err := o.store.UpdateScreen(ctx, s.Id, updateFromScreen(s))
	if err != nil {
		if remote.IsNetwork(err) {
			// transient connectivity loss must not lose the edit
			if qerr := o.enqueue(ctx, models.OpUpdate, s); qerr != nil {
				o.log.Error(ctx, "failed to queue after network failure", "screen_id", s.Id, "error", qerr)
			}
			return
		}
		o.setState(s.Id, StateFailed)
		o.publishStatus(ctx, "save", models.SyncError, remote.RequestIDOf(err), err.Error())
		return
	}

	o.mu.Lock()
	// only settle to Clean if no new edit arrived while in flight
	if o.states[s.Id] == StateSaving {
		o.states[s.Id] = StateClean
	}
	o.mu.Unlock()

	if err := o.screens.Upsert(ctx, updated); err != nil {
		o.log.Error(ctx, "failed to cache confirmed screen", "screen_id", s.Id, "error", err)
	}
	o.publishStatus(ctx, "save", models.SyncSuccess, "", "autosaved")
}

// SaveNow bypasses the debounce and pushes the screen's latest state
// immediately (explicit save action).
func (o *Orchestrator) SaveNow(ctx context.Context, screenID string) error {
	if _, err := o.requireIdentity(); err != nil {
		return err
	}

	o.mu.Lock()
	s := o.latest[screenID]
	if s == nil {
		o.mu.Unlock()
		return fmt.Errorf("screen %s: %w", screenID, common.ErrorNotFound)
	}
	s = s.Clone()
	online := o.online
	o.stopTimerLocked()
	if !online {
		o.mu.Unlock()
		return o.enqueue(ctx, models.OpUpdate, s)
	}
	o.states[screenID] = StateSaving
	o.mu.Unlock()

	o.flush(ctx, s)
	return nil
}

// enqueue appends a write intent to the identity's outbox.
func (o *Orchestrator) enqueue(ctx context.Context, kind models.OpKind, s *models.Screen) error {
	id, err := o.requireIdentity()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode pending operation: %w", err)
	}
	op := &models.PendingOperation{Kind: kind, ScreenID: s.Id, Payload: payload}
	if err := o.outbox.Enqueue(ctx, id.UserID, op); err != nil {
		return fmt.Errorf("failed to enqueue operation: %w", err)
	}

	o.setState(s.Id, StateQueuedOffline)
	if o.metrics != nil {
		o.metrics.OpsEnqueued.Inc()
	}
	o.publishStatus(ctx, "queue", models.SyncPending, "", fmt.Sprintf("%s queued offline", kind))
	o.log.Info(ctx, "operation queued", "kind", kind, "screen_id", s.Id, "seq", op.Seq)
	return nil
}

// SetNetStatus feeds a connectivity signal. On the offline-to-online edge
// the queue is replayed before new debounced writes are accepted for the
// identity: the online flag flips only once the pass completes, so a
// debounce firing mid-replay still routes its edit into the queue behind
// the operations being drained.
func (o *Orchestrator) SetNetStatus(ctx context.Context, st models.NetStatus) {
	o.mu.Lock()
	was := o.online
	if !st.Online {
		o.online = false
	}
	o.mu.Unlock()

	if was && !st.Online {
		o.log.Info(ctx, "connectivity lost")
	}
	if was || !st.Online {
		return
	}

	o.log.Info(ctx, "connectivity regained")

	if o.identity == nil {
		o.mu.Lock()
		o.online = true
		o.mu.Unlock()
		return
	}

	err := o.ReplayPending(ctx)

	o.mu.Lock()
	o.online = true
	o.mu.Unlock()

	if err != nil {
		o.log.Error(ctx, "replay on reconnect failed", "error", err)
		return
	}

	// edits accepted while the pass ran were queued behind its snapshot;
	// drain them now that direct writes are allowed again
	ops, err := o.outbox.Pending(ctx, o.identity.UserID)
	if err != nil || len(ops) == 0 {
		return
	}
	if err := o.ReplayPending(ctx); err != nil {
		o.log.Error(ctx, "follow-up replay failed", "error", err)
	}
}

// ReplayPending drains the identity's outbox in submission order. A pass
// already in flight makes this a no-op.
func (o *Orchestrator) ReplayPending(ctx context.Context) error {
	id, err := o.requireIdentity()
	if err != nil {
		return err
	}

	o.publishStatus(ctx, "queue", models.SyncPending, "", "replaying pending operations")

	cb := ReplayCallbacks{
		OnSuccess: func(replayed int) {
			if o.metrics != nil {
				o.metrics.OpsReplayed.Add(float64(replayed))
			}
			o.publishStatus(ctx, "queue", models.SyncSuccess, "", fmt.Sprintf("replayed %d operations", replayed))
		},
		OnRetry: func(op models.PendingOperation, attempt int, next time.Duration) {
			if o.metrics != nil {
				o.metrics.ReplayRetries.Inc()
			}
			o.log.Warn(ctx, "retrying queued operation",
				"seq", op.Seq, "kind", op.Kind, "attempt", attempt, "next_delay", next)
		},
		OnPermanentFailure: func(op models.PendingOperation, err error) {
			if o.metrics != nil {
				o.metrics.ReplayFailures.Inc()
			}
			o.publishStatus(ctx, "queue", models.SyncError, remote.RequestIDOf(err),
				fmt.Sprintf("operation %d failed permanently: %v", op.Seq, err))
		},
	}

	err = o.replayer.Replay(ctx, id.UserID, cb)
	if err == common.ErrReplayInProgress {
		return nil
	}
	return err
}

// ClearPending empties the identity's queue (user-initiated escape hatch).
func (o *Orchestrator) ClearPending(ctx context.Context) error {
	id, err := o.requireIdentity()
	if err != nil {
		return err
	}
	return o.outbox.Clear(ctx, id.UserID)
}

// executeOp performs one queued operation during replay.
func (o *Orchestrator) executeOp(ctx context.Context, op models.PendingOperation) error {
	var s models.Screen
	if err := json.Unmarshal(op.Payload, &s); err != nil {
		return fmt.Errorf("corrupt pending payload: %w", err)
	}

	switch op.Kind {
	case models.OpSave:
		saved, err := o.store.SaveScreen(ctx, &s)
		if err != nil {
			return err
		}
		if err := o.screens.Upsert(ctx, saved); err != nil {
			o.log.Error(ctx, "failed to cache replayed screen", "screen_id", s.Id, "error", err)
		}
		o.setState(s.Id, StateClean)
		return nil
	case models.OpUpdate:
		updated, err := o.store.UpdateScreen(ctx, op.ScreenID, updateFromScreen(&s))
		if err != nil {
			return err
		}
		if err := o.screens.Upsert(ctx, updated); err != nil {
			o.log.Error(ctx, "failed to cache replayed screen", "screen_id", s.Id, "error", err)
		}
		o.setState(op.ScreenID, StateClean)
		return nil
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

func (o *Orchestrator) setState(screenID string, st ScreenState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states[screenID] = st
}

func (o *Orchestrator) publishStatus(ctx context.Context, class string, state models.SyncState, requestID, msg string) {
	if o.sinks == nil {
		return
	}
	o.sinks.PublishStatus(ctx, models.SyncStatus{
		State:     state,
		Class:     class,
		RequestID: requestID,
		Message:   msg,
		At:        time.Now(),
	})
}

func updateFromScreen(s *models.Screen) remote.ScreenUpdate {
	name := s.Name
	content := s.MessageContent
	parseMode := s.ParseMode
	messageType := s.MessageType
	mediaURL := s.MediaURL
	return remote.ScreenUpdate{
		Name:           &name,
		MessageContent: &content,
		Keyboard:       models.CloneKeyboard(s.Keyboard),
		ParseMode:      &parseMode,
		MessageType:    &messageType,
		MediaURL:       &mediaURL,
	}
}
