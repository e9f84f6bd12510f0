package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/avdeevsv/screenpad/internal/client/models"
	"github.com/avdeevsv/screenpad/internal/client/remote"
	"github.com/avdeevsv/screenpad/internal/common"
	"github.com/avdeevsv/screenpad/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

// memOutbox is an in-memory outbox with the same FIFO contract as the
// sqlite implementation.
type memOutbox struct {
	mu      sync.Mutex
	nextSeq int64
	queues  map[string][]models.PendingOperation
}

func newMemOutbox() *memOutbox {
	return &memOutbox{nextSeq: 1, queues: map[string][]models.PendingOperation{}}
}

func (m *memOutbox) Enqueue(_ context.Context, userID string, op *models.PendingOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	op.Seq = m.nextSeq
	m.nextSeq++
	m.queues[userID] = append(m.queues[userID], *op)
	return nil
}

func (m *memOutbox) Pending(_ context.Context, userID string) ([]models.PendingOperation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.PendingOperation, len(m.queues[userID]))
	copy(out, m.queues[userID])
	return out, nil
}

func (m *memOutbox) Remove(_ context.Context, userID string, seq int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.queues[userID]
	for i, op := range q {
		if op.Seq == seq {
			m.queues[userID] = append(q[:i:i], q[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("seq %d: %w", seq, common.ErrorNotFound)
}

func (m *memOutbox) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.queues, userID)
	return nil
}

func (m *memOutbox) len(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues[userID])
}

// memScreens is an in-memory screen cache preserving insertion order.
type memScreens struct {
	mu    sync.Mutex
	order []string
	items map[string]*models.Screen
}

func newMemScreens() *memScreens {
	return &memScreens{items: map[string]*models.Screen{}}
}

func (m *memScreens) Upsert(_ context.Context, s *models.Screen) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[s.Id]; !ok {
		m.order = append(m.order, s.Id)
	}
	m.items[s.Id] = s.Clone()
	return nil
}

func (m *memScreens) GetByID(_ context.Context, id string) (*models.Screen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s.Clone(), nil
}

func (m *memScreens) GetAll(_ context.Context, userID string) ([]models.Screen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Screen
	for _, id := range m.order {
		s := m.items[id]
		if s.UserID == userID {
			out = append(out, *s.Clone())
		}
	}
	return out, nil
}

func (m *memScreens) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.items, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// fakeStore records calls and delegates to per-method hooks. Unhooked
// methods succeed by echoing input.
type fakeStore struct {
	mu          sync.Mutex
	callOrder   []string
	saveCalls   []models.Screen
	updateCalls []remote.ScreenUpdate
	updateIDs   []string
	deleted     [][]string
	published   map[string]string
	rotated     map[string]string
	revoked     []string

	saveFn   func(s *models.Screen) (*models.Screen, error)
	updateFn func(id string, u remote.ScreenUpdate) (*models.Screen, error)
	publicFn func(token string) (*models.Screen, error)
}

func newFakeStore() *fakeStore {
	return &fakeStore{published: map[string]string{}, rotated: map[string]string{}}
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) SaveScreen(_ context.Context, s *models.Screen) (*models.Screen, error) {
	f.mu.Lock()
	f.callOrder = append(f.callOrder, "save")
	f.saveCalls = append(f.saveCalls, *s.Clone())
	f.mu.Unlock()
	if f.saveFn != nil {
		return f.saveFn(s)
	}
	return s.Clone(), nil
}

func (f *fakeStore) UpdateScreen(_ context.Context, screenID string, u remote.ScreenUpdate) (*models.Screen, error) {
	f.mu.Lock()
	f.callOrder = append(f.callOrder, "update")
	f.updateIDs = append(f.updateIDs, screenID)
	f.updateCalls = append(f.updateCalls, u)
	f.mu.Unlock()
	if f.updateFn != nil {
		return f.updateFn(screenID, u)
	}
	s := &models.Screen{Id: screenID}
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.MessageContent != nil {
		s.MessageContent = *u.MessageContent
	}
	s.Keyboard = models.CloneKeyboard(u.Keyboard)
	return s, nil
}

func (f *fakeStore) DeleteScreens(_ context.Context, ids []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ids)
	return ids, nil
}

func (f *fakeStore) InsertScreens(_ context.Context, rows []models.Screen) ([]models.Screen, error) {
	return rows, nil
}

func (f *fakeStore) FetchPins(context.Context) (*remote.Pins, error)      { return &remote.Pins{}, nil }
func (f *fakeStore) UpsertPins(context.Context, remote.Pins) error        { return nil }
func (f *fakeStore) FetchLayouts(context.Context, []string) ([]remote.Layout, error) {
	return nil, nil
}
func (f *fakeStore) UpsertLayouts(_ context.Context, rows []remote.Layout) ([]remote.Layout, error) {
	return rows, nil
}
func (f *fakeStore) DeleteLayouts(context.Context, []string) error { return nil }

func (f *fakeStore) PublishShareToken(_ context.Context, screenID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published[screenID] = token
	return nil
}

func (f *fakeStore) RotateShareToken(_ context.Context, screenID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rotated[screenID] = token
	return nil
}

func (f *fakeStore) RevokeShareToken(_ context.Context, screenID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, screenID)
	return nil
}

func (f *fakeStore) GetPublicScreenByToken(_ context.Context, token string) (*models.Screen, error) {
	if f.publicFn != nil {
		return f.publicFn(token)
	}
	return nil, nil
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saveCalls)
}

func (f *fakeStore) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updateCalls)
}

func (f *fakeStore) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.callOrder))
	copy(out, f.callOrder)
	return out
}

func (f *fakeStore) lastUpdate() (remote.ScreenUpdate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updateCalls) == 0 {
		return remote.ScreenUpdate{}, false
	}
	return f.updateCalls[len(f.updateCalls)-1], true
}

// captureSink records every published status for assertions.
type captureSink struct {
	mu       sync.Mutex
	statuses []models.SyncStatus
}

func (c *captureSink) OnSyncStatus(st models.SyncStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = append(c.statuses, st)
}

func (c *captureSink) all() []models.SyncStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.SyncStatus, len(c.statuses))
	copy(out, c.statuses)
	return out
}

func netErr(action string) error {
	return &remote.Error{Action: action, Resource: "screens", Status: 0, Err: errors.New("connection refused")}
}

func transientErr(action string) error {
	return &remote.Error{Action: action, Resource: "screens", Status: 503, Err: errors.New("service unavailable")}
}

func rejectionErr(action string) error {
	return &remote.Error{Action: action, Resource: "screens", Status: 422, Err: errors.New("validation failed")}
}
