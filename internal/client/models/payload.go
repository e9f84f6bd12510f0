package models

import (
	"encoding/json"
	"fmt"

	"github.com/avdeevsv/screenpad/internal/common"
)

// MaxImportBytes caps the size of an import payload. Oversized input is
// rejected before parsing.
const MaxImportBytes = 512 * 1024

// WireButton is the bot-wire button shape inside reply_markup.
type WireButton struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

// WireMarkup mirrors the bot-wire reply_markup object.
type WireMarkup struct {
	InlineKeyboard [][]WireButton `json:"inline_keyboard,omitempty"`
}

// Payload is the import/export JSON consumed and produced at the editor
// boundary. Import accepts either the bot-wire reply_markup shape or the
// internal keyboard shape; when both are absent the existing keyboard is
// left untouched.
type Payload struct {
	Text           string        `json:"text,omitempty"`
	MessageContent string        `json:"message_content,omitempty"`
	ParseMode      string        `json:"parse_mode,omitempty"`
	ReplyMarkup    *WireMarkup   `json:"reply_markup,omitempty"`
	Keyboard       []KeyboardRow `json:"keyboard,omitempty"`
	Photo          string        `json:"photo,omitempty"`
	Video          string        `json:"video,omitempty"`
}

// ParseImport validates the size cap and unmarshals an import payload.
func ParseImport(data []byte) (*Payload, error) {
	if len(data) > MaxImportBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", common.ErrPayloadTooLarge, len(data), MaxImportBytes)
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse import payload: %w", err)
	}
	return &p, nil
}

// ApplyTo copies the payload onto a screen. The internal keyboard shape
// wins over reply_markup when both are present; absence of both leaves the
// screen's keyboard as is.
func (p *Payload) ApplyTo(s *Screen) {
	switch {
	case p.MessageContent != "":
		s.MessageContent = p.MessageContent
	case p.Text != "":
		s.MessageContent = p.Text
	}
	if p.ParseMode != "" {
		s.ParseMode = p.ParseMode
	}

	switch {
	case p.Keyboard != nil:
		s.Keyboard = CloneKeyboard(p.Keyboard)
	case p.ReplyMarkup != nil && p.ReplyMarkup.InlineKeyboard != nil:
		kb := make([]KeyboardRow, 0, len(p.ReplyMarkup.InlineKeyboard))
		for _, row := range p.ReplyMarkup.InlineKeyboard {
			r := make(KeyboardRow, 0, len(row))
			for _, b := range row {
				r = append(r, KeyboardButton{Text: b.Text, URL: b.URL, CallbackData: b.CallbackData})
			}
			kb = append(kb, r)
		}
		s.Keyboard = kb
	}

	if p.Photo != "" {
		s.MediaURL = p.Photo
		s.MessageType = "photo"
	} else if p.Video != "" {
		s.MediaURL = p.Video
		s.MessageType = "video"
	}
}

// ExportScreen produces the payload for a screen, carrying both the
// internal keyboard shape and the bot-wire reply_markup so either consumer
// can round-trip it.
func ExportScreen(s *Screen) *Payload {
	p := &Payload{
		MessageContent: s.MessageContent,
		ParseMode:      s.ParseMode,
		Keyboard:       CloneKeyboard(s.Keyboard),
	}
	if len(s.Keyboard) > 0 {
		markup := &WireMarkup{InlineKeyboard: make([][]WireButton, 0, len(s.Keyboard))}
		for _, row := range s.Keyboard {
			r := make([]WireButton, 0, len(row))
			for _, b := range row {
				r = append(r, WireButton{Text: b.Text, URL: b.URL, CallbackData: b.CallbackData})
			}
			markup.InlineKeyboard = append(markup.InlineKeyboard, r)
		}
		p.ReplyMarkup = markup
	}
	switch s.MessageType {
	case "photo":
		p.Photo = s.MediaURL
	case "video":
		p.Video = s.MediaURL
	}
	return p
}
