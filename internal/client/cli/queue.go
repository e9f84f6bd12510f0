package cli

import (
	"context"
	"fmt"
	"log"
	"os"
)

func (a *App) showQueue(ctx context.Context) {
	data, err := a.screens.ExportQueue(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Println(string(data))
}

func (a *App) replay(ctx context.Context) {
	if a.Mode != ModeOnline {
		fmt.Println("Cannot replay while offline.")
		return
	}
	if err := a.orch.ReplayPending(ctx); err != nil {
		log.Println(err.Error())
	}
}

func (a *App) clearQueue(ctx context.Context) {
	answer, err := GetSimpleText(a.reader, "Discard all pending operations? (yes/no)", os.Stdout)
	if err != nil {
		log.Println(err.Error())
		return
	}
	if answer != "yes" {
		fmt.Println("Aborted.")
		return
	}
	if err := a.orch.ClearPending(ctx); err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Println("Queue cleared.")
}

// purge wipes the identity's local state: the screen cache and the pending
// queue go together, so a half-purged database cannot survive.
func (a *App) purge(ctx context.Context) {
	if a.identity == nil {
		fmt.Println("No identity bound, nothing to purge.")
		return
	}
	answer, err := GetSimpleText(a.reader, "Wipe all local data for this identity? (yes/no)", os.Stdout)
	if err != nil {
		log.Println(err.Error())
		return
	}
	if answer != "yes" {
		fmt.Println("Aborted.")
		return
	}
	if err := a.repos.PurgeIdentity(ctx, a.identity.UserID); err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Println("Local data wiped.")
}

func (a *App) importPayload(ctx context.Context, id, file string) {
	data, err := os.ReadFile(file)
	if err != nil {
		log.Println(err.Error())
		return
	}
	s, err := a.screens.Import(ctx, id, data)
	if err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Printf("Imported into %s (%d keyboard rows)\n", s.Id, len(s.Keyboard))
}

func (a *App) exportPayload(ctx context.Context, id, file string) {
	data, err := a.screens.Export(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return
	}
	if file == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(file, data, 0o600); err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Println("Exported to", file)
}
