// Package models defines client-side data models used by the screenpad
// sync core: screens, keyboards, pending operations and sync status values.
package models

import "time"

// ParseMode values accepted by the bot wire format.
const (
	ParseModeHTML       = "HTML"
	ParseModeMarkdownV2 = "MarkdownV2"
)

// MaxCallbackDataBytes is the bot-platform limit on a button's opaque
// callback payload.
const MaxCallbackDataBytes = 64

// KeyboardButton is one inline-keyboard button. At most one of URL,
// CallbackData and LinkedScreenID is meaningful. LinkedScreenID is a
// navigation edge to another screen; dangling edges are permitted
// transiently and reported by the graph validator.
type KeyboardButton struct {
	Text           string `json:"text"`
	URL            string `json:"url,omitempty"`
	CallbackData   string `json:"callback_data,omitempty"`
	LinkedScreenID string `json:"linked_screen_id,omitempty"`
}

// KeyboardRow is an ordered row of buttons, rendered left to right.
type KeyboardRow []KeyboardButton

// Screen is one editable bot message plus its inline keyboard, a node in
// the navigation graph. Identity is Id. ShareToken is non-empty only while
// IsPublic is true.
type Screen struct {
	Id             string        `json:"id"`
	Name           string        `json:"name"`
	MessageContent string        `json:"message_content"`
	Keyboard       []KeyboardRow `json:"keyboard"`
	ParseMode      string        `json:"parse_mode,omitempty"`
	MessageType    string        `json:"message_type,omitempty"`
	MediaURL       string        `json:"media_url,omitempty"`
	ShareToken     string        `json:"share_token,omitempty"`
	IsPublic       bool          `json:"is_public,omitempty"`
	CreatedAt      time.Time     `json:"created_at,omitempty"`
	UpdatedAt      time.Time     `json:"updated_at,omitempty"`
	UserID         string        `json:"user_id,omitempty"`
}

// CloneKeyboard returns a structural deep copy of kb. History snapshots and
// restores go through here so later edits of the live keyboard can never
// reach a stored snapshot.
func CloneKeyboard(kb []KeyboardRow) []KeyboardRow {
	if kb == nil {
		return nil
	}
	out := make([]KeyboardRow, len(kb))
	for i, row := range kb {
		r := make(KeyboardRow, len(row))
		copy(r, row)
		out[i] = r
	}
	return out
}

// Clone returns a deep copy of the screen.
func (s *Screen) Clone() *Screen {
	c := *s
	c.Keyboard = CloneKeyboard(s.Keyboard)
	return &c
}
