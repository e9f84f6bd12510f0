package cli

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/avdeevsv/screenpad/internal/client/remote"
)

func (a *App) showPins(ctx context.Context) {
	pins, err := a.store.FetchPins(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}
	if len(pins.ScreenIDs) == 0 {
		fmt.Println("No pinned screens.")
		return
	}
	for _, id := range pins.ScreenIDs {
		fmt.Println(id)
	}
}

// togglePin adds the screen to the pin set, or removes it when already
// present.
func (a *App) togglePin(ctx context.Context, id string) {
	pins, err := a.store.FetchPins(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}

	next := make([]string, 0, len(pins.ScreenIDs)+1)
	removed := false
	for _, v := range pins.ScreenIDs {
		if v == id {
			removed = true
			continue
		}
		next = append(next, v)
	}
	if !removed {
		next = append(next, id)
	}

	if err := a.store.UpsertPins(ctx, remote.Pins{ScreenIDs: next}); err != nil {
		log.Println(err.Error())
		return
	}
	if removed {
		fmt.Println("Unpinned", id)
	} else {
		fmt.Println("Pinned", id)
	}
}

func (a *App) setLayout(ctx context.Context, id, xs, ys string) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		fmt.Println("Bad x coordinate:", xs)
		return
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		fmt.Println("Bad y coordinate:", ys)
		return
	}

	rows := []remote.Layout{{ScreenID: id, X: x, Y: y}}
	if _, err := a.store.UpsertLayouts(ctx, rows); err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Printf("Layout saved: %s at (%.0f, %.0f)\n", id, x, y)
}

func (a *App) showLayouts(ctx context.Context, ids []string) {
	rows, err := a.store.FetchLayouts(ctx, ids)
	if err != nil {
		log.Println(err.Error())
		return
	}
	if len(rows) == 0 {
		fmt.Println("No stored layouts.")
		return
	}
	for _, r := range rows {
		fmt.Printf("%s  (%.0f, %.0f)\n", r.ScreenID, r.X, r.Y)
	}
}
