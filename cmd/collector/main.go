package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"stockcollector/internal/collector"
	"stockcollector/internal/config"
	"stockcollector/internal/database"
	"stockcollector/internal/logger"
	"stockcollector/internal/provider"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{Env: cfg.Env, Level: cfg.LogLevel, File: cfg.LogFile})
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	log := logger.Get()

	if err := collector.ValidateFieldMap(); err != nil {
		return err
	}
	rounding, err := collector.ParseRoundingPolicy(cfg.Rounding)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	targets, err := config.LoadTargets(cfg.TargetsFile)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	dbConfig, err := database.NewConfig(cfg.DBURL, cfg.DBPassword, cfg.DBSSLMode)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("store close error: %v", err)
		}
	}()
	log.Infof("Connected to %s", dbConfig.Redacted())

	if cfg.AutoMigrate {
		if err := dbManager.RunMigrations(database.DefaultMigrationsSource); err != nil {
			return err
		}
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	limiter := provider.NewLimiter(cfg.RequestsPerSecond)
	source := provider.Source{
		Bars:       provider.NewYahooProvider(httpClient, limiter),
		Statements: provider.NewNaverStatementProvider(httpClient, limiter),
	}

	db := dbManager.DB()
	c := collector.New(
		collector.NewResolver(db),
		source,
		collector.NewWriter(db, log),
		collector.Options{Rounding: rounding, Logger: log},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.Run(ctx, targets)
	return nil
}
