package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/divvy/internal/config"
	"github.com/MrJamesThe3rd/divvy/internal/database"
	"github.com/MrJamesThe3rd/divvy/internal/group"
	groupStore "github.com/MrJamesThe3rd/divvy/internal/group/store"
	"github.com/MrJamesThe3rd/divvy/internal/seed"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	ctx := context.Background()

	db, err := database.New(ctx, cfg.ConnectionString(), cfg.Pool())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	n, err := seed.Run(ctx, group.NewService(groupStore.New(db)))
	if err != nil {
		slog.Error("failed to seed members", "error", err, "created", n)
		os.Exit(1)
	}

	if n == 0 {
		slog.Info("members already present, skipping seed")
		return
	}

	slog.Info("seeded members", "count", n)
}
