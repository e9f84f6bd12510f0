// Package history implements the editor's bounded linear undo/redo stack
// over (content, keyboard) snapshots.
package history

import "github.com/avdeevsv/screenpad/internal/client/models"

// MaxEntries bounds the stack; the oldest snapshot is evicted first.
const MaxEntries = 50

// Snapshot is an immutable deep copy of the editable state at a point in
// time. Snapshots are deep-copied on both push and restore, so a caller
// mutating the live editor state can never corrupt a stored entry.
type Snapshot struct {
	MessageContent string
	Keyboard       []models.KeyboardRow
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		MessageContent: s.MessageContent,
		Keyboard:       models.CloneKeyboard(s.Keyboard),
	}
}

// History holds the snapshot sequence and a cursor. The cursor is -1 while
// no snapshot exists, otherwise a valid index into the sequence.
type History struct {
	entries []Snapshot
	cursor  int
}

func New() *History {
	return &History{cursor: -1}
}

// Push truncates any redo future beyond the cursor, appends a deep-copied
// snapshot and advances the cursor. Once the sequence exceeds MaxEntries
// the oldest entry is evicted. Pushing a snapshot identical to the current
// head is permitted; de-duplication is the caller's concern.
func (h *History) Push(content string, keyboard []models.KeyboardRow) {
	h.entries = append(h.entries[:h.cursor+1], Snapshot{
		MessageContent: content,
		Keyboard:       models.CloneKeyboard(keyboard),
	})
	h.cursor++

	if len(h.entries) > MaxEntries {
		over := len(h.entries) - MaxEntries
		h.entries = append([]Snapshot(nil), h.entries[over:]...)
		h.cursor -= over
	}
}

// Undo moves the cursor back one position and returns that snapshot for the
// caller to apply. It reports false (a no-op) at the earliest entry or on an
// empty history.
func (h *History) Undo() (Snapshot, bool) {
	if h.cursor <= 0 {
		return Snapshot{}, false
	}
	h.cursor--
	return h.entries[h.cursor].clone(), true
}

// Redo is symmetric to Undo.
func (h *History) Redo() (Snapshot, bool) {
	if h.cursor < 0 || h.cursor >= len(h.entries)-1 {
		return Snapshot{}, false
	}
	h.cursor++
	return h.entries[h.cursor].clone(), true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }

func (h *History) CanRedo() bool { return h.cursor >= 0 && h.cursor < len(h.entries)-1 }

// Len returns the number of stored snapshots.
func (h *History) Len() int { return len(h.entries) }
