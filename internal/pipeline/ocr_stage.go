package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/metrics"
	"github.com/joseph-ayodele/docfields/internal/ocr"
)

// TextExtractor yields per-page text for a file.
type TextExtractor interface {
	ExtractPages(ctx context.Context, path string) (ocr.Document, error)
}

type OCRStage struct {
	TextExtractor TextExtractor
	Logger        *slog.Logger
	// Timeout bounds one file's extraction; zero means no limit.
	Timeout time.Duration
}

func NewOCRStage(tx TextExtractor, logger *slog.Logger) *OCRStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRStage{TextExtractor: tx, Logger: logger}
}

// Run extracts the text of every page of path. A document whose pages are all
// blank is reported as ErrEmptyDocument by the caller, not here.
func (s *OCRStage) Run(ctx context.Context, path string) (ocr.Document, error) {
	start := time.Now()
	ctx, cancel := common.WithTimeout(ctx, s.Timeout)
	defer cancel()
	doc, err := s.TextExtractor.ExtractPages(ctx, path)
	metrics.StageDuration.WithLabelValues("ocr").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProcessingErrors.WithLabelValues("ocr", metrics.ErrorType(err)).Inc()
		return doc, fmt.Errorf("extract text: %w", err)
	}
	for _, w := range doc.Warnings {
		s.Logger.Warn("pipeline.ocr.warning", "path", path, "warning", w)
	}
	return doc, nil
}
