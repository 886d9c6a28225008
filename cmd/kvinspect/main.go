// Package main dumps the persisted session slots of a CineWave store.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/cinewave/cinewave/internal/config"
	"github.com/cinewave/cinewave/internal/di/providers"
	"github.com/cinewave/cinewave/internal/domain"
	"github.com/cinewave/cinewave/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	kv, err := providers.OpenBackend(ctx, cfg.Storage, slog.New(slog.DiscardHandler), true)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Storage.Backend, err)
	}
	defer kv.Close()

	fmt.Println("=== Store Inspection ===")
	fmt.Printf("Backend: %s\n", cfg.Storage.Backend)
	fmt.Printf("Data path: %s\n", cfg.Storage.DataPath)
	fmt.Println()

	theme, ok, err := store.GetJSON[string](ctx, kv, store.KeyTheme)
	switch {
	case err != nil:
		fmt.Printf("Theme: unreadable (%v)\n", err)
	case !ok:
		fmt.Println("Theme: (unset)")
	default:
		fmt.Printf("Theme: %s\n", theme)
	}

	user, ok, err := store.GetJSON[*domain.User](ctx, kv, store.KeySessionUser)
	switch {
	case err != nil:
		fmt.Printf("Session: unreadable (%v)\n", err)
	case !ok || user == nil:
		fmt.Println("Session: anonymous")
	default:
		fmt.Printf("Session: %s <%s> (id %d)\n", user.Name, user.Email, user.ID)
	}
	fmt.Println()

	roster, _, err := store.GetJSON[[]domain.User](ctx, kv, store.KeyAllUsers)
	if err != nil {
		fmt.Printf("Roster: unreadable (%v)\n", err)
	}
	fmt.Printf("Roster: %d users\n", len(roster))
	for _, u := range roster {
		fmt.Printf("  [%d] %s <%s> since %s\n", u.ID, u.Name, u.Email, u.CreatedAt.Format("2006-01-02"))
	}
	fmt.Println()

	keys, err := kv.Keys(ctx, store.FavoritesPrefix)
	if err != nil {
		log.Fatalf("Error listing favorites slots: %v", err)
	}

	fmt.Println("=== Favorites ===")
	total := 0
	for _, key := range keys {
		userID, ok := store.ParseFavoritesKey(key)
		if !ok {
			fmt.Printf("Skipping unrecognized key %q\n", key)
			continue
		}
		items, _, err := store.GetJSON[[]domain.MediaItem](ctx, kv, key)
		if err != nil {
			fmt.Printf("User %d: unreadable (%v)\n", userID, err)
			continue
		}
		total += len(items)
		fmt.Printf("User %d: %d favorites\n", userID, len(items))
		for i, item := range items {
			if i == 5 {
				fmt.Printf("    ... and %d more\n", len(items)-5)
				break
			}
			fmt.Printf("    %s %d %s\n", item.MediaType, item.ID, item.DisplayTitle())
		}
	}

	fmt.Println()
	fmt.Println("=== Summary ===")
	fmt.Printf("Favorites slots: %d\n", len(keys))
	fmt.Printf("Total favorites: %d\n", total)
}
