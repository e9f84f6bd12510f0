package cli

import (
	"context"
	"fmt"
	"log"
)

func (a *App) list(ctx context.Context) {
	all, err := a.screens.List(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}
	if len(all) == 0 {
		fmt.Println("No screens yet. Create one with: new <name>")
		return
	}
	for _, s := range all {
		marker := ""
		if s.IsPublic {
			marker = " [public]"
		}
		fmt.Printf("%s  %s (%s)%s\n", s.Id, s.Name, a.orch.State(s.Id), marker)
	}
}

func (a *App) show(ctx context.Context, id string) {
	s, err := a.screens.Get(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Printf("Name: %s\n", s.Name)
	fmt.Printf("State: %s\n", a.orch.State(s.Id))
	if s.ParseMode != "" {
		fmt.Printf("Parse mode: %s\n", s.ParseMode)
	}
	fmt.Printf("Content:\n%s\n", s.MessageContent)
	for i, row := range s.Keyboard {
		for _, b := range row {
			target := b.URL
			if b.LinkedScreenID != "" {
				target = "-> " + b.LinkedScreenID
			}
			fmt.Printf("  row %d: [%s] %s\n", i+1, b.Text, target)
		}
	}
	if s.IsPublic {
		fmt.Printf("Share token: %s\n", s.ShareToken)
	}
}

func (a *App) create(ctx context.Context, name string) {
	s, err := a.orch.CreateScreen(ctx, name)
	if err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Printf("Created screen %s\n", s.Id)
}

func (a *App) delete(ctx context.Context, id string) {
	if err := a.screens.Delete(ctx, id); err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Println("Deleted", id)
}

func (a *App) validate(ctx context.Context) {
	report, err := a.screens.Validate(ctx, "")
	if err != nil {
		log.Println(err.Error())
		return
	}
	if len(report.Cycles) == 0 && len(report.BrokenLinks) == 0 && len(report.Oversized) == 0 {
		fmt.Println("No structural defects found.")
	}
	for _, cycle := range report.Cycles {
		fmt.Printf("cycle: %v\n", cycle)
	}
	for _, b := range report.BrokenLinks {
		fmt.Printf("dangling link: screen %s button %q points to missing %s\n", b.ScreenID, b.ButtonText, b.TargetID)
	}
	for _, d := range report.Oversized {
		fmt.Printf("oversized callback: screen %s button %q is %d bytes\n", d.ScreenID, d.ButtonText, d.Size)
	}
	if report.EntryScreenID != "" {
		fmt.Printf("entry screen: %s\n", report.EntryScreenID)
	} else {
		fmt.Println("entry screen: not set (ambiguous or no screens)")
	}
}
