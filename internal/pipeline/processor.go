package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/metrics"
	"github.com/joseph-ayodele/docfields/internal/ocr"
)

// Store persists finished results.
type Store interface {
	Save(ctx context.Context, res DocumentResult) error
}

type Config struct {
	// PageWorkers bounds how many pages of one document are parsed at once.
	PageWorkers int
	// KeepText copies each page's text into its PageResult.
	KeepText bool
}

// Processor coordinates text extraction then field extraction.
type Processor struct {
	Logger *slog.Logger
	Cfg    Config
	OCR    *OCRStage
	Parse  *ParseStage
	// Store is optional.
	Store Store
}

func NewProcessor(logger *slog.Logger, cfg Config, ocrStage *OCRStage, parseStage *ParseStage, store Store) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PageWorkers <= 0 {
		cfg.PageWorkers = 4
	}
	return &Processor{Logger: logger, Cfg: cfg, OCR: ocrStage, Parse: parseStage, Store: store}
}

// ProcessFile extracts every page of path and the fields of each page.
// Pages keep their source order whatever order they finish in.
func (p *Processor) ProcessFile(ctx context.Context, path string) (DocumentResult, error) {
	return p.ProcessNamedFile(ctx, path, filepath.Base(path))
}

// ProcessNamedFile is ProcessFile for a file stored under a different name
// than the one to report, such as an upload in a temp file.
func (p *Processor) ProcessNamedFile(ctx context.Context, path, name string) (DocumentResult, error) {
	start := time.Now()
	logger := common.LoggerFromContext(ctx, p.Logger)
	res := DocumentResult{
		ID:         uuid.New(),
		FileName:   name,
		SourceType: constants.MapExtToFormat(filepath.Ext(path)),
		CreatedAt:  start.UTC(),
	}

	doc, err := p.OCR.Run(ctx, path)
	if err != nil {
		logger.Error("processor.ocr.failed", "path", path, "err", err)
		return p.fail(res, start, err)
	}
	logger.Info("processor.ocr.ok",
		"path", path,
		"source", doc.SourceType,
		"pages", len(doc.Pages),
		"confidence", doc.AverageConfidence(),
	)
	res.SourceType = doc.SourceType
	res.Warnings = doc.Warnings
	res.TotalPages = len(doc.Pages)
	res.Confidence = doc.AverageConfidence()

	if doc.Empty() {
		err := fmt.Errorf("%s: %w", res.FileName, common.ErrEmptyDocument)
		logger.Warn("processor.empty", "path", path)
		return p.fail(res, start, err)
	}

	pages, err := p.parsePages(ctx, res.FileName, doc.Pages, "")
	if err != nil {
		logger.Error("processor.parse.failed", "path", path, "err", err)
		return p.fail(res, start, err)
	}
	res.Pages = pages
	res.Status = constants.JobStatusOK
	if len(doc.Warnings) > 0 {
		res.Status = constants.JobStatusPartial
	}
	return p.finish(ctx, res, start)
}

// ProcessText extracts fields from raw text as a single page. An empty
// docType means classify. Blank text still yields a complete record with
// null fields.
func (p *Processor) ProcessText(ctx context.Context, text string, docType constants.DocumentType) (DocumentResult, error) {
	start := time.Now()
	res := DocumentResult{
		ID:         uuid.New(),
		SourceType: constants.TXT,
		TotalPages: 1,
		Confidence: 1,
		CreatedAt:  start.UTC(),
	}
	page := ocr.Page{Number: 1, Text: text, Method: ocr.MethodText, Confidence: 1}
	pages, err := p.parsePages(ctx, "", []ocr.Page{page}, docType)
	if err != nil {
		return p.fail(res, start, err)
	}
	res.Pages = pages
	res.Status = constants.JobStatusOK
	return p.finish(ctx, res, start)
}

func (p *Processor) parsePages(ctx context.Context, fileName string, pages []ocr.Page, docType constants.DocumentType) ([]PageResult, error) {
	out := make([]PageResult, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Cfg.PageWorkers)
	for i, page := range pages {
		g.Go(func() error {
			r, err := p.Parse.Run(gctx, fileName, page, docType)
			if err != nil {
				return fmt.Errorf("page %d: %w", page.Number, err)
			}
			if !p.Cfg.KeepText {
				r.Text = ""
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Processor) finish(ctx context.Context, res DocumentResult, start time.Time) (DocumentResult, error) {
	res.ElapsedMS = time.Since(start).Milliseconds()
	metrics.DocumentsProcessed.WithLabelValues(res.SourceType, string(res.Status)).Inc()
	if p.Store != nil {
		if err := p.Store.Save(ctx, res); err != nil {
			metrics.ProcessingErrors.WithLabelValues("store", metrics.ErrorType(err)).Inc()
			return res, fmt.Errorf("save result: %w", err)
		}
	}
	p.Logger.Info("processor.done",
		"id", res.ID,
		"file", res.FileName,
		"pages", len(res.Pages),
		"status", res.Status,
		"elapsed_ms", res.ElapsedMS,
	)
	return res, nil
}

func (p *Processor) fail(res DocumentResult, start time.Time, err error) (DocumentResult, error) {
	res.Status = constants.JobStatusFailed
	res.ElapsedMS = time.Since(start).Milliseconds()
	source := res.SourceType
	if source == "" {
		source = "UNKNOWN"
	}
	metrics.DocumentsProcessed.WithLabelValues(source, string(res.Status)).Inc()
	return res, err
}
