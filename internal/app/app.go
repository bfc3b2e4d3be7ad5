// Package app assembles the extraction stack from configuration for the
// command-line tools.
package app

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/llm"
	"github.com/joseph-ayodele/docfields/internal/llm/openai"
	"github.com/joseph-ayodele/docfields/internal/ocr"
	"github.com/joseph-ayodele/docfields/internal/parse"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
	"github.com/joseph-ayodele/docfields/internal/repository"
)

type App struct {
	Processor *pipeline.Processor
	// Repo is nil when no store is configured.
	Repo    repository.ExtractionRepository
	closers []func()
}

// NewExtractor builds the field extractor for the configured scheme.
func NewExtractor(cfg common.ExtractionConfig) (*parse.Extractor, error) {
	scheme, err := parse.ParseScheme(cfg.Scheme)
	if err != nil {
		return nil, common.NewAppError("CONFIG_ERROR", "classifier scheme", err)
	}
	return parse.NewExtractor(
		parse.NewClassifier(parse.ClassifierConfig{Scheme: scheme}),
		parse.Options{StopOnBareTaxLines: cfg.StopOnBareTaxLines},
	), nil
}

// NewFieldExtractor returns the LLM filler, or nil when it is disabled.
func NewFieldExtractor(cfg common.LLMConfig, logger *slog.Logger) llm.FieldExtractor {
	if !cfg.Enabled {
		return nil
	}
	return openai.NewClient(openai.ConfigFrom(cfg), logger)
}

// Build wires the store, OCR, parsing and the optional LLM filler. With
// withStore false no database is opened even if one is configured.
func Build(ctx context.Context, cfg *common.Config, withStore bool, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{}

	extractor, err := NewExtractor(cfg.Extraction)
	if err != nil {
		return nil, err
	}

	var store pipeline.Store
	if withStore {
		if err := a.openStore(ctx, cfg, logger); err != nil {
			a.Close()
			return nil, err
		}
		if a.Repo != nil {
			store = a.Repo
		}
	}

	ocrStage := pipeline.NewOCRStage(ocr.NewExtractor(ocr.ConfigFrom(cfg.OCR), logger), logger)
	ocrStage.Timeout = cfg.OCR.Timeout
	parseStage := pipeline.NewParseStage(logger, extractor, NewFieldExtractor(cfg.LLM, logger))

	a.Processor = pipeline.NewProcessor(logger, pipeline.Config{PageWorkers: cfg.Extraction.PageWorkers}, ocrStage, parseStage, store)
	logger.Info("app.ready",
		"scheme", extractor.Classifier().Scheme(),
		"llm", cfg.LLM.Enabled,
		"store", a.Repo != nil,
		"page_workers", a.Processor.Cfg.PageWorkers,
	)
	return a, nil
}

// openStore prefers Postgres when a DSN is set, then SQLite.
func (a *App) openStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	switch {
	case cfg.Database.DSN != "":
		pool, err := repository.Open(ctx, repository.ConfigFrom(cfg.Database), logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { repository.Close(pool, logger) })
		if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, logger); err != nil {
			return err
		}
		pg := repository.NewPostgresStore(pool, logger)
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		a.Repo = pg
	case cfg.SQLite.Path != "":
		s, err := repository.OpenSQLite(ctx, cfg.SQLite.Path, logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() {
			if err := s.Close(); err != nil {
				logger.Error("failed to close sqlite store", "error", err)
			}
		})
		a.Repo = s
	}
	return nil
}

// Close releases the store in reverse open order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
