package main

import (
	"context"
	"fmt"
	"os"

	"github.com/safar/marketplace/internal/config"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/logger"
	"github.com/safar/marketplace/migrations"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: go run scripts/run_migrations.go [up|down]")
		os.Exit(2)
	}

	direction := migrations.Direction(os.Args[1])
	if direction != migrations.Up && direction != migrations.Down {
		fmt.Fprintln(os.Stderr, "Direction must be 'up' or 'down'")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("connect to database", zap.Error(err))
	}
	defer db.Close()

	applied, err := migrations.Apply(context.Background(), db, direction)
	if err != nil {
		log.Fatal("run migrations", zap.Error(err))
	}
	for _, name := range applied {
		log.Info("migration applied", zap.String("file", name))
	}

	log.Info("migrations complete", zap.Int("count", len(applied)), zap.String("direction", string(direction)))
}
