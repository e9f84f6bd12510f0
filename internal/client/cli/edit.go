package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/avdeevsv/screenpad/internal/client/history"
	"github.com/avdeevsv/screenpad/internal/client/models"
)

// edit runs an interactive editing session for one screen. Every applied
// change lands in the undo history and is handed to the orchestrator, which
// autosaves after the configured debounce.
func (a *App) edit(ctx context.Context, scanner *bufio.Scanner, id string) {
	s, err := a.screens.Get(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return
	}

	a.orch.OpenScreen(s.Id)
	defer a.orch.CloseScreen()

	h := history.New()
	h.Push(s.MessageContent, s.Keyboard)

	fmt.Printf("Editing %s (%s). Commands: text, link, url, clearkb, undo, redo, preview, save, done\n", s.Name, s.Id)

	for {
		fmt.Printf("edit %s> ", s.Id)
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "text":
			content, err := GetMultiline(a.reader, "Enter message content", os.Stdout)
			if err != nil {
				log.Println(err.Error())
				continue
			}
			s.MessageContent = content
			a.applyEdit(ctx, s, h)

		case "link":
			if len(parts) < 3 {
				fmt.Println("Usage: link <button-text> <screen-id>")
				continue
			}
			btn := models.KeyboardButton{Text: parts[1], LinkedScreenID: parts[2]}
			s.Keyboard = append(s.Keyboard, models.KeyboardRow{btn})
			a.applyEdit(ctx, s, h)

		case "url":
			if len(parts) < 3 {
				fmt.Println("Usage: url <button-text> <url>")
				continue
			}
			btn := models.KeyboardButton{Text: parts[1], URL: parts[2]}
			s.Keyboard = append(s.Keyboard, models.KeyboardRow{btn})
			a.applyEdit(ctx, s, h)

		case "clearkb":
			s.Keyboard = nil
			a.applyEdit(ctx, s, h)

		case "undo":
			snap, ok := h.Undo()
			if !ok {
				fmt.Println("Nothing to undo.")
				continue
			}
			a.restore(ctx, s, snap)

		case "redo":
			snap, ok := h.Redo()
			if !ok {
				fmt.Println("Nothing to redo.")
				continue
			}
			a.restore(ctx, s, snap)

		case "preview":
			on := len(parts) > 1 && parts[1] == "on"
			a.orch.SetPreview(on)
			fmt.Printf("Preview: %v\n", on)

		case "save":
			if err := a.orch.SaveNow(ctx, s.Id); err != nil {
				log.Println(err.Error())
			}

		case "done", "back":
			return

		default:
			fmt.Println("Unknown command:", parts[0])
		}
	}
}

func (a *App) applyEdit(ctx context.Context, s *models.Screen, h *history.History) {
	h.Push(s.MessageContent, s.Keyboard)
	if err := a.orch.NoteEdit(ctx, s.Clone()); err != nil {
		log.Println(err.Error())
	}
}

// restore applies a history snapshot without pushing it back, so the
// undo/redo cursor keeps its position.
func (a *App) restore(ctx context.Context, s *models.Screen, snap history.Snapshot) {
	s.MessageContent = snap.MessageContent
	s.Keyboard = models.CloneKeyboard(snap.Keyboard)
	if err := a.orch.NoteEdit(ctx, s.Clone()); err != nil {
		log.Println(err.Error())
	}
}
