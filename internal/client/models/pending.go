package models

import (
	"encoding/json"
	"time"
)

// OpKind classifies a queued write intent.
type OpKind string

const (
	OpSave   OpKind = "save"
	OpUpdate OpKind = "update"
)

// PendingOperation is one not-yet-acknowledged write sitting in the
// per-identity outbox. A queued save always carries a client-generated
// ScreenID so later updates against the same unconfirmed screen queue under
// a stable id. Seq is assigned by the queue and orders replay.
type PendingOperation struct {
	Seq        int64           `json:"-"`
	Kind       OpKind          `json:"kind"`
	ScreenID   string          `json:"id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at,omitempty"`
}
