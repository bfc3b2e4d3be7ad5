package app

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/ingest"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
)

// Watch feeds every supported file that appears under cfg.WatchDir through a
// worker queue until ctx is done. Each finished job is passed to onResult
// when it is non-nil. Results are persisted by the processor's store.
func Watch(ctx context.Context, cfg common.IngestConfig, proc pipeline.FileProcessor, onResult func(pipeline.JobResult), logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.WatchDir},
		InitialScan: cfg.InitialScan,
		Debounce:    cfg.Debounce,
	}, logger)
	if err != nil {
		return common.WrapError(err, "watch "+cfg.WatchDir)
	}

	q := pipeline.NewQueue(proc, logger, pipeline.WithWorkers(cfg.Workers), pipeline.WithQueueSize(cfg.QueueSize))
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for r := range q.Results() {
			if onResult != nil {
				onResult(r)
			}
		}
	}()

	for paths != nil || errs != nil {
		select {
		case p, ok := <-paths:
			if !ok {
				paths = nil
				continue
			}
			if _, err := q.Enqueue(ctx, p); err != nil {
				logger.Warn("app.watch.enqueue_failed", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("app.watch.watcher_error", "error", err)
		}
	}

	q.Shutdown(context.Background())
	<-drained
	logger.Info("app.watch.stopped", "dir", cfg.WatchDir)
	return nil
}
