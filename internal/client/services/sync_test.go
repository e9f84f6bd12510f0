package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/avdeevsv/screenpad/internal/client/models"
	"github.com/avdeevsv/screenpad/internal/client/remote"
	"github.com/avdeevsv/screenpad/internal/client/session"
	"github.com/avdeevsv/screenpad/internal/common"
	"github.com/avdeevsv/screenpad/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSync(debounce time.Duration) (*Orchestrator, *fakeStore, *memOutbox, *memScreens) {
	store := newFakeStore()
	out := newMemOutbox()
	scr := newMemScreens()
	o := NewOrchestrator(OrchestratorOptions{
		Store:             store,
		Screens:           scr,
		Outbox:            out,
		Identity:          &session.Identity{UserID: "u1", Token: "tok"},
		Log:               testLogger(),
		Debounce:          debounce,
		ReplayMaxAttempts: 3,
		ReplayBaseDelay:   time.Millisecond,
	})
	return o, store, out, scr
}

func goOnline(o *Orchestrator) {
	o.SetNetStatus(context.Background(), models.NetStatus{Online: true})
}

func TestCreateScreenOnline(t *testing.T) {
	ctx := context.Background()
	o, store, out, scr := newTestSync(0)
	goOnline(o)

	s, err := o.CreateScreen(ctx, "welcome")
	require.NoError(t, err)
	require.NotEmpty(t, s.Id)
	assert.Equal(t, "u1", s.UserID)

	assert.Equal(t, 1, store.saveCount())
	assert.Equal(t, 0, out.len("u1"))
	assert.Equal(t, StateClean, o.State(s.Id))

	cached, err := scr.GetByID(ctx, s.Id)
	require.NoError(t, err)
	assert.Equal(t, "welcome", cached.Name)
}

func TestCreateScreenOfflineQueuesSave(t *testing.T) {
	ctx := context.Background()
	o, store, out, _ := newTestSync(0)

	s, err := o.CreateScreen(ctx, "offline one")
	require.NoError(t, err)
	require.NotEmpty(t, s.Id, "id is assigned locally before any remote call")

	assert.Equal(t, 0, store.saveCount())
	assert.Equal(t, StateQueuedOffline, o.State(s.Id))

	ops, err := out.Pending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, models.OpSave, ops[0].Kind)
	assert.Equal(t, s.Id, ops[0].ScreenID)

	var queued models.Screen
	require.NoError(t, json.Unmarshal(ops[0].Payload, &queued))
	assert.Equal(t, s.Id, queued.Id)
	assert.Equal(t, "offline one", queued.Name)
}

func TestCreateScreenNetworkFailureFallsBackToQueue(t *testing.T) {
	ctx := context.Background()
	o, store, out, _ := newTestSync(0)
	goOnline(o)
	store.saveFn = func(*models.Screen) (*models.Screen, error) {
		return nil, netErr("save")
	}

	s, err := o.CreateScreen(ctx, "flaky")
	require.NoError(t, err, "a network failure is queued, not surfaced")
	assert.Equal(t, 1, store.saveCount())
	assert.Equal(t, 1, out.len("u1"))
	assert.Equal(t, StateQueuedOffline, o.State(s.Id))
}

func TestCreateScreenRejectionIsNotQueued(t *testing.T) {
	ctx := context.Background()
	o, store, out, _ := newTestSync(0)
	goOnline(o)
	store.saveFn = func(*models.Screen) (*models.Screen, error) {
		return nil, rejectionErr("save")
	}

	_, err := o.CreateScreen(ctx, "bad")
	require.Error(t, err)
	assert.Equal(t, 0, out.len("u1"), "a definitive rejection must not enter the queue")
}

func TestCreateScreenWithoutIdentity(t *testing.T) {
	o := NewOrchestrator(OrchestratorOptions{
		Store: newFakeStore(), Screens: newMemScreens(), Outbox: newMemOutbox(),
		Log: testLogger(),
	})
	_, err := o.CreateScreen(context.Background(), "anon")
	assert.True(t, errors.Is(err, common.ErrNoIdentity))
}

func TestAutosaveFiresWithLatestState(t *testing.T) {
	ctx := context.Background()
	o, store, _, _ := newTestSync(20 * time.Millisecond)
	goOnline(o)

	s := &models.Screen{Id: "s1", Name: "menu", UserID: "u1", MessageContent: "v1"}
	o.OpenScreen(s.Id)
	require.NoError(t, o.NoteEdit(ctx, s))

	s2 := s.Clone()
	s2.MessageContent = "v2"
	require.NoError(t, o.NoteEdit(ctx, s2))

	require.Eventually(t, func() bool { return store.updateCount() == 1 },
		time.Second, 5*time.Millisecond)

	u, ok := store.lastUpdate()
	require.True(t, ok)
	require.NotNil(t, u.MessageContent)
	assert.Equal(t, "v2", *u.MessageContent, "the write reflects the state at fire time")
	assert.Equal(t, StateClean, o.State(s.Id))

	// no second write without a new edit
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, store.updateCount())
}

func TestAutosaveSkipsPreviewMode(t *testing.T) {
	ctx := context.Background()
	o, store, _, _ := newTestSync(15 * time.Millisecond)
	goOnline(o)

	s := &models.Screen{Id: "s1", UserID: "u1", MessageContent: "draft"}
	o.OpenScreen(s.Id)
	o.SetPreview(true)
	require.NoError(t, o.NoteEdit(ctx, s))

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 0, store.updateCount())
	assert.Equal(t, StateDirty, o.State(s.Id))
}

func TestAutosaveSkipsUnfocusedScreen(t *testing.T) {
	ctx := context.Background()
	o, store, _, _ := newTestSync(15 * time.Millisecond)
	goOnline(o)

	s := &models.Screen{Id: "s1", UserID: "u1", MessageContent: "draft"}
	o.OpenScreen("other")
	require.NoError(t, o.NoteEdit(ctx, s))

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 0, store.updateCount())
}

func TestCloseScreenCancelsArmedTimer(t *testing.T) {
	ctx := context.Background()
	o, store, _, _ := newTestSync(30 * time.Millisecond)
	goOnline(o)

	s := &models.Screen{Id: "s1", UserID: "u1", MessageContent: "draft"}
	o.OpenScreen(s.Id)
	require.NoError(t, o.NoteEdit(ctx, s))
	o.CloseScreen()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, store.updateCount())
}

func TestAutosaveOfflineQueuesUpdate(t *testing.T) {
	ctx := context.Background()
	o, store, out, _ := newTestSync(15 * time.Millisecond)

	s := &models.Screen{Id: "s1", UserID: "u1", MessageContent: "offline edit"}
	o.OpenScreen(s.Id)
	require.NoError(t, o.NoteEdit(ctx, s))

	require.Eventually(t, func() bool { return out.len("u1") == 1 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, store.updateCount())
	assert.Equal(t, StateQueuedOffline, o.State(s.Id))

	ops, err := out.Pending(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.OpUpdate, ops[0].Kind)
}

func TestAutosaveRejectionMarksFailed(t *testing.T) {
	ctx := context.Background()
	o, store, out, _ := newTestSync(15 * time.Millisecond)
	goOnline(o)
	store.updateFn = func(string, remote.ScreenUpdate) (*models.Screen, error) {
		return nil, rejectionErr("update")
	}

	s := &models.Screen{Id: "s1", UserID: "u1", MessageContent: "invalid"}
	o.OpenScreen(s.Id)
	require.NoError(t, o.NoteEdit(ctx, s))

	require.Eventually(t, func() bool { return o.State(s.Id) == StateFailed },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, out.len("u1"))
}

func TestSaveNowBypassesDebounce(t *testing.T) {
	ctx := context.Background()
	o, store, _, _ := newTestSync(time.Hour)
	goOnline(o)

	s := &models.Screen{Id: "s1", UserID: "u1", MessageContent: "now"}
	o.OpenScreen(s.Id)
	require.NoError(t, o.NoteEdit(ctx, s))
	require.NoError(t, o.SaveNow(ctx, s.Id))

	assert.Equal(t, 1, store.updateCount())
	assert.Equal(t, StateClean, o.State(s.Id))
}

func TestReconnectReplaysQueueInOrder(t *testing.T) {
	ctx := context.Background()
	o, store, out, _ := newTestSync(0)

	// offline: a create followed by an edit of the same screen
	s, err := o.CreateScreen(ctx, "queued")
	require.NoError(t, err)
	s.MessageContent = "edited while offline"
	require.NoError(t, o.enqueue(ctx, models.OpUpdate, s))
	require.Equal(t, 2, out.len("u1"))

	goOnline(o)

	assert.Equal(t, 1, store.saveCount())
	assert.Equal(t, 1, store.updateCount())
	assert.Equal(t, 0, out.len("u1"))
	assert.Equal(t, StateClean, o.State(s.Id))
}

func TestReconnectBlocksDirectWritesUntilReplayDrains(t *testing.T) {
	ctx := context.Background()
	o, store, out, _ := newTestSync(10 * time.Millisecond)

	// offline: the create goes into the queue
	s, err := o.CreateScreen(ctx, "held back")
	require.NoError(t, err)

	saveStarted := make(chan struct{})
	releaseSave := make(chan struct{})
	store.saveFn = func(sc *models.Screen) (*models.Screen, error) {
		close(saveStarted)
		<-releaseSave
		return sc.Clone(), nil
	}

	// an edit whose debounce fires while the replayed save is in flight
	o.OpenScreen(s.Id)
	s.MessageContent = "edited while reconnecting"
	require.NoError(t, o.NoteEdit(ctx, s))

	done := make(chan struct{})
	go func() {
		o.SetNetStatus(ctx, models.NetStatus{Online: true})
		close(done)
	}()

	<-saveStarted
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, store.updateCount(), "no direct write while the queue is draining")
	assert.False(t, o.Online(), "direct writes stay gated until the pass completes")

	close(releaseSave)
	<-done

	require.Equal(t, []string{"save", "update"}, store.calls(), "the queued save lands before the edit")
	assert.Equal(t, 0, out.len("u1"))
	assert.True(t, o.Online())
	assert.Equal(t, StateClean, o.State(s.Id))
}

func TestRejectionStatusCarriesRequestID(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	sink := &captureSink{}
	sinks := telemetry.NewSinks(testLogger())
	sinks.AttachStatus(sink)
	o := NewOrchestrator(OrchestratorOptions{
		Store:             store,
		Screens:           newMemScreens(),
		Outbox:            newMemOutbox(),
		Identity:          &session.Identity{UserID: "u1", Token: "tok"},
		Sinks:             sinks,
		Log:               testLogger(),
		ReplayMaxAttempts: 3,
		ReplayBaseDelay:   time.Millisecond,
	})
	goOnline(o)
	store.updateFn = func(string, remote.ScreenUpdate) (*models.Screen, error) {
		return nil, &remote.Error{
			Action: "update_screen", Resource: "screens", RequestID: "req-42",
			Status: 422, Err: errors.New("validation failed"),
		}
	}

	s := &models.Screen{Id: "s1", UserID: "u1", MessageContent: "bad"}
	o.OpenScreen(s.Id)
	require.NoError(t, o.NoteEdit(ctx, s))
	require.NoError(t, o.SaveNow(ctx, s.Id))

	found := false
	for _, st := range sink.all() {
		if st.State == models.SyncError && st.Class == "save" {
			assert.Equal(t, "req-42", st.RequestID)
			found = true
		}
	}
	assert.True(t, found, "a save error status must be published with its correlation id")
}

func TestSaveNowRightAfterCreate(t *testing.T) {
	ctx := context.Background()
	o, store, _, _ := newTestSync(time.Hour)
	goOnline(o)

	s, err := o.CreateScreen(ctx, "fresh")
	require.NoError(t, err)

	require.NoError(t, o.SaveNow(ctx, s.Id))
	assert.Equal(t, 1, store.updateCount())
}

func TestReplayPendingConcurrentPassIsNoop(t *testing.T) {
	ctx := context.Background()
	o, _, out, _ := newTestSync(0)
	require.NoError(t, out.Enqueue(ctx, "u1", &models.PendingOperation{
		Kind: models.OpSave, ScreenID: "s1", Payload: json.RawMessage(`{"id":"s1"}`),
	}))

	// hold the replay slot, then ask for another pass
	require.True(t, o.replayer.tryAcquire("u1"))
	defer o.replayer.release("u1")

	assert.NoError(t, o.ReplayPending(ctx), "an in-flight pass makes replay a silent no-op")
	assert.Equal(t, 1, out.len("u1"))
}

func TestReplayCorruptPayloadFailsPermanently(t *testing.T) {
	ctx := context.Background()
	o, _, out, _ := newTestSync(0)
	require.NoError(t, out.Enqueue(ctx, "u1", &models.PendingOperation{
		Kind: models.OpSave, ScreenID: "s1", Payload: json.RawMessage(`{broken`),
	}))

	goOnline(o)
	assert.Equal(t, 1, out.len("u1"), "a corrupt item stays queued for inspection")
}

func TestClearPendingEmptiesQueue(t *testing.T) {
	ctx := context.Background()
	o, _, out, _ := newTestSync(0)

	_, err := o.CreateScreen(ctx, "doomed")
	require.NoError(t, err)
	require.Equal(t, 1, out.len("u1"))

	require.NoError(t, o.ClearPending(ctx))
	assert.Equal(t, 0, out.len("u1"))
}
