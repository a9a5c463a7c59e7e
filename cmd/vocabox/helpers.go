package main

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/vocabox/internal/config"
	"github.com/at-ishikawa/vocabox/internal/database"
	"github.com/at-ishikawa/vocabox/internal/progress"
	"github.com/at-ishikawa/vocabox/internal/scheduling"
	"github.com/at-ishikawa/vocabox/internal/session"
	"github.com/at-ishikawa/vocabox/internal/study"
	"github.com/at-ishikawa/vocabox/internal/vocabulary"
)

// loadConfig loads the config file. flags maps config keys to command line flags overriding them.
func loadConfig(flags map[string]*pflag.Flag) (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	for key, flag := range flags {
		if err := loader.BindFlag(key, flag); err != nil {
			return nil, err
		}
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// dependencies are the repositories shared by the commands.
type dependencies struct {
	db           *sqlx.DB
	vocabularies *vocabulary.DBStore
	// store serves vocabulary items from the configured source.
	store      vocabulary.Store
	studies    *study.DBRepository
	snapshots  *progress.DBRepository
	aggregator *progress.Aggregator
}

func newDependencies(cfg *config.Config) (*dependencies, error) {
	engine, err := scheduling.NewEngine(cfg.Scheduling.Intervals)
	if err != nil {
		return nil, fmt.Errorf("scheduling.NewEngine() > %w", err)
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database.Open() > %w", err)
	}

	deps := &dependencies{
		db:           db,
		vocabularies: vocabulary.NewDBStore(db),
		studies:      study.NewDBRepository(db, engine),
		snapshots:    progress.NewDBRepository(db),
	}
	deps.store = deps.vocabularies
	if cfg.Vocabulary.Source == "http" {
		if cfg.Vocabulary.HTTP.BaseURL == "" {
			_ = db.Close()
			return nil, errors.New("vocabulary.http.base_url is required for the http vocabulary source")
		}
		deps.store = vocabulary.NewHTTPStore(cfg.Vocabulary.HTTP.BaseURL, cfg.Vocabulary.HTTP.APIKey, cfg.Vocabulary.HTTP.Timeout)
	}
	deps.aggregator = progress.NewAggregator(deps.studies, deps.vocabularies, deps.snapshots, cfg.Progress.Concurrency)
	return deps, nil
}

func (d *dependencies) Close() error {
	return d.db.Close()
}

func (d *dependencies) sessionService(cfg *config.Config) *session.Service {
	return session.NewService(d.studies, d.store, d.aggregator, session.Config{
		BatchSize: cfg.Review.BatchSize,
		Outbox: session.OutboxConfig{
			MaxAttempts:  cfg.Review.Outbox.MaxAttempts,
			InitialDelay: cfg.Review.Outbox.InitialDelay,
			MaxDelay:     cfg.Review.Outbox.MaxDelay,
		},
	})
}

func parseTrainingType(name string) (scheduling.TrainingType, error) {
	trainingType, err := scheduling.ParseTrainingType(name)
	if err != nil {
		return 0, fmt.Errorf("--training-type: %w", err)
	}
	return trainingType, nil
}
