package cli

import (
	"context"
	"fmt"
	"log"
)

func (a *App) share(ctx context.Context, id string) {
	token, err := a.screens.Share(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Println("Share token:", token)
}

func (a *App) revoke(ctx context.Context, id string) {
	if err := a.screens.Revoke(ctx, id); err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Println("Public access revoked.")
}

func (a *App) publicLookup(ctx context.Context, token string) {
	s, err := a.screens.PublicLookup(ctx, token)
	if err != nil {
		log.Println(err.Error())
		return
	}
	if s == nil {
		fmt.Println("Token is unknown or revoked.")
		return
	}
	fmt.Printf("%s\n%s\n", s.Name, s.MessageContent)
}
