// Package telemetry carries the process-wide observability side channels:
// late-bound status/error sinks and prometheus counters. Sinks are
// best-effort; a failing or panicking sink is logged and never allowed to
// disturb the write path that published the event.
package telemetry

import (
	"context"
	"sync"

	"github.com/avdeevsv/screenpad/internal/client/models"
	"github.com/avdeevsv/screenpad/internal/logging"
)

// StatusSink observes sync status transitions.
type StatusSink interface {
	OnSyncStatus(st models.SyncStatus)
}

// ErrorSink observes sync errors.
type ErrorSink interface {
	OnSyncError(action string, err error)
}

// Sinks is the injection point for status and error observers. At most one
// sink of each kind is active; attaching over an existing one replaces it
// with a warning rather than silently.
type Sinks struct {
	mu     sync.Mutex
	log    logging.Logger
	status StatusSink
	errs   ErrorSink
}

func NewSinks(log logging.Logger) *Sinks {
	return &Sinks{log: log}
}

func (s *Sinks) AttachStatus(sink StatusSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != nil {
		s.log.Warn(context.Background(), "replacing active status sink")
	}
	s.status = sink
}

func (s *Sinks) AttachError(sink ErrorSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errs != nil {
		s.log.Warn(context.Background(), "replacing active error sink")
	}
	s.errs = sink
}

// PublishStatus delivers a status transition to the active sink, if any.
func (s *Sinks) PublishStatus(ctx context.Context, st models.SyncStatus) {
	s.mu.Lock()
	sink := s.status
	s.mu.Unlock()
	if sink == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			s.log.Error(ctx, "status sink panicked", "panic", p)
		}
	}()
	sink.OnSyncStatus(st)
}

// PublishError delivers an error event to the active sink, if any.
func (s *Sinks) PublishError(ctx context.Context, action string, err error) {
	s.mu.Lock()
	sink := s.errs
	s.mu.Unlock()
	if sink == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			s.log.Error(ctx, "error sink panicked", "panic", p)
		}
	}()
	sink.OnSyncError(action, err)
}
