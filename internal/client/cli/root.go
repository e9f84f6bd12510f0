package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if a.identity != nil {
		s = a.identity.UserID + " "
	}
	s = s + string(a.Mode)
	return fmt.Sprintf("(%s)", s)
}

func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to screenpad CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	for {
		fmt.Printf("screenpad %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Println("Available commands: list, show <id>, new <name>, edit <id>, del <id>,")
			fmt.Println("  validate, import <id> <file>, export <id> [file], queue, replay,")
			fmt.Println("  clearqueue, share <id>, revoke <id>, public <token>,")
			fmt.Println("  pin <id>, pins, layout <id> <x> <y>, layouts <id...>, purge, exit")

		case "list":
			a.list(ctx)
		case "show":
			if len(args) == 0 {
				fmt.Println("Usage: show <id>")
				continue
			}
			a.show(ctx, args[0])
		case "new":
			if len(args) == 0 {
				fmt.Println("Usage: new <name>")
				continue
			}
			a.create(ctx, strings.Join(args, " "))
		case "edit":
			if len(args) == 0 {
				fmt.Println("Usage: edit <id>")
				continue
			}
			a.edit(ctx, scanner, args[0])
		case "del":
			if len(args) == 0 {
				fmt.Println("Usage: del <id>")
				continue
			}
			a.delete(ctx, args[0])
		case "validate":
			a.validate(ctx)
		case "import":
			if len(args) < 2 {
				fmt.Println("Usage: import <id> <file>")
				continue
			}
			a.importPayload(ctx, args[0], args[1])
		case "export":
			if len(args) == 0 {
				fmt.Println("Usage: export <id> [file]")
				continue
			}
			file := ""
			if len(args) > 1 {
				file = args[1]
			}
			a.exportPayload(ctx, args[0], file)
		case "queue":
			a.showQueue(ctx)
		case "replay":
			a.replay(ctx)
		case "clearqueue":
			a.clearQueue(ctx)
		case "purge":
			a.purge(ctx)
		case "share":
			if len(args) == 0 {
				fmt.Println("Usage: share <id>")
				continue
			}
			a.share(ctx, args[0])
		case "revoke":
			if len(args) == 0 {
				fmt.Println("Usage: revoke <id>")
				continue
			}
			a.revoke(ctx, args[0])
		case "pin":
			if len(args) == 0 {
				fmt.Println("Usage: pin <id>")
				continue
			}
			a.togglePin(ctx, args[0])
		case "pins":
			a.showPins(ctx)
		case "layout":
			if len(args) < 3 {
				fmt.Println("Usage: layout <id> <x> <y>")
				continue
			}
			a.setLayout(ctx, args[0], args[1], args[2])
		case "layouts":
			a.showLayouts(ctx, args)
		case "public":
			if len(args) == 0 {
				fmt.Println("Usage: public <token>")
				continue
			}
			a.publicLookup(ctx, args[0])
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
