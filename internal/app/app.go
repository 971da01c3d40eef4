// Package app assembles the prefill components from configuration for the commands under cmd/.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"intake/internal/classifier"
	"intake/internal/config"
	"intake/internal/entity"
	"intake/internal/extractor"
	"intake/internal/generator"
	"intake/internal/pipeline"
	"intake/internal/port"
	"intake/internal/repository/sqlrepo"
	"intake/internal/service"
	"intake/internal/storage/local"
	s3storage "intake/internal/storage/s3"

	// Provider packages register themselves with the generator factory.
	_ "intake/internal/generator/claude"
	_ "intake/internal/generator/gemini"
	_ "intake/internal/generator/openai"
)

// App holds the wired components and the resources that must be released on Close.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *sqlx.DB
	Store    port.FileStore
	Pipeline *pipeline.Pipeline
	Prefill  service.PrefillService

	closers []func() error
}

// Options selects the optional parts of the wiring.
type Options struct {
	// Questions replaces the database question source when non-nil.
	Questions port.QuestionSource
	// SkipDB leaves DB nil and disables run recording.
	SkipDB bool
}

// New wires storage, persistence, the pipeline and the prefill service from cfg.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	store, closeStore, err := NewFileStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, closeStore)

	questions := opts.Questions
	var sink port.ProfileSink
	if !opts.SkipDB {
		db, err := sqlrepo.NewDB(&cfg.DB)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		a.DB = db
		a.closers = append(a.closers, db.Close)
		sink = sqlrepo.NewPrefillRepo(db)
		if questions == nil {
			questions = sqlrepo.NewQuestionRepo(db)
		}
	}
	if questions == nil {
		_ = a.Close()
		return nil, errors.New("no question source: configure a database or pass questions")
	}

	p, err := NewPipeline(cfg, store, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Pipeline = p

	a.Prefill = service.NewPrefillService(store, questions, sink, p,
		service.PrefillConfig{MaxFileSizeMB: cfg.Extractor.MaxFileSizeMB},
		logger,
	)
	return a, nil
}

// Close releases every resource opened by New, in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewFileStore builds the configured FileStore and a function that releases it.
func NewFileStore(ctx context.Context, cfg *config.Config) (port.FileStore, func() error, error) {
	switch cfg.Storage.Backend {
	case "", "local":
		fs, err := local.NewFileStore(cfg.Storage.TempDir)
		if err != nil {
			return nil, nil, fmt.Errorf("creating local file store: %w", err)
		}
		return fs, fs.Close, nil
	case "s3":
		fs, err := s3storage.NewFileStore(ctx, &cfg.S3, cfg.Storage.KeyPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("creating s3 file store: %w", err)
		}
		return fs, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

// NewPipeline wires extraction, classification and answer generation into a Pipeline.
func NewPipeline(cfg *config.Config, store port.FileStore, logger *zap.Logger) (*pipeline.Pipeline, error) {
	entities, err := entity.NewDefault()
	if err != nil {
		return nil, fmt.Errorf("loading entity rules: %w", err)
	}

	ai, err := generator.NewFromConfig(&cfg.Generator, logger)
	if err != nil {
		return nil, fmt.Errorf("creating answer generator: %w", err)
	}
	answers := generator.NewService(generator.Config{
		AIConfidence:       cfg.Pipeline.AIConfidence,
		FallbackConfidence: cfg.Pipeline.FallbackConfidence,
		DefaultAnswer:      cfg.Pipeline.DefaultAnswer,
		CategoryDefaults:   cfg.Pipeline.CategoryDefaults,
		CallTimeout:        cfg.Generator.CallTimeout(),
	}, ai, logger)

	return pipeline.New(
		pipeline.Config{
			Workers:      cfg.Pipeline.Workers,
			SampleLength: cfg.Extractor.SampleLength,
		},
		extractor.NewDefault(cfg.Extractor, nil, logger),
		entities,
		classifier.New(classifier.Config{ConfidenceCap: cfg.Pipeline.ConfidenceCap}, logger),
		answers,
		store,
		logger,
	), nil
}
