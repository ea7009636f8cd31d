package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"stockcollector/internal/config"
	"stockcollector/internal/database"
	"stockcollector/internal/logger"

	"github.com/golang-migrate/migrate/v4"
)

func main() {
	logger.Init(logger.Config{Env: os.Getenv("ENV"), Level: os.Getenv("LOG_LEVEL")})
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: migrate <up|down|version> [N]")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	dbConfig, err := database.NewConfig(cfg.DBURL, cfg.DBPassword, cfg.DBSSLMode)
	if err != nil {
		return err
	}

	m, err := database.NewMigrator(dbConfig, database.DefaultMigrationsSource)
	if err != nil {
		return err
	}
	defer database.CloseMigrator(m)

	command := os.Args[1]
	logger.Get().Infof("Running %s against %s", command, dbConfig.Redacted())

	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration up failed: %w", err)
		}
		logger.Get().Info("Migrations applied successfully")

	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil || steps < 1 {
				return fmt.Errorf("invalid step count %q", os.Args[2])
			}
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration down failed: %w", err)
		}
		logger.Get().Infof("Rolled back %d migration(s)", steps)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		logger.Get().Infof("Version: %d, Dirty: %v", version, dirty)

	default:
		return fmt.Errorf("unknown command: %s (use up, down, or version)", command)
	}

	return nil
}
