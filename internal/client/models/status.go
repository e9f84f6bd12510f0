package models

import "time"

// SyncState is the lifecycle of one observable sync operation class.
type SyncState string

const (
	SyncIdle    SyncState = "idle"
	SyncPending SyncState = "pending"
	SyncSuccess SyncState = "success"
	SyncError   SyncState = "error"
)

// SyncStatus is a short-lived, per-operation-class status value used for
// observability. It is overwritten on each transition and never persisted.
type SyncStatus struct {
	State     SyncState
	Class     string // "save" | "share" | "layout" | "queue"
	RequestID string
	Message   string
	At        time.Time
}

// NetStatus is the connectivity signal fed to the sync orchestrator. A
// tagged value rather than a bare bool so callers cannot smuggle extra
// meaning onto a primitive.
type NetStatus struct {
	Online bool
}
