package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/kofiasare/sewshop-backend/pkg/config"
	"github.com/kofiasare/sewshop-backend/pkg/db"
	"github.com/kofiasare/sewshop-backend/pkg/logger"
	"github.com/kofiasare/sewshop-backend/pkg/migrate"
)

// Usage: migrate <up|down|status|version> [goose args]
func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "sewshop-migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command, expected up, down, status or version")
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "sewshop-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	command := args[0]
	ctx = logg.WithFields(ctx, map[string]any{"command": command, "dir": migrate.DefaultDir})
	logg.Info(ctx, "running Goose migrations")

	if err := migrate.Run(ctx, sqlDB, migrate.DefaultDir, command, args[1:]...); err != nil {
		return fmt.Errorf("running goose %s: %w", command, err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}
