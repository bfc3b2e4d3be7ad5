package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/llm"
	"github.com/joseph-ayodele/docfields/internal/metrics"
	"github.com/joseph-ayodele/docfields/internal/ocr"
	"github.com/joseph-ayodele/docfields/internal/parse"
)

// ParseStage turns one page of text into a Record. For invoices it may ask
// the alternate filler for the fields the rules could not resolve.
type ParseStage struct {
	Logger    *slog.Logger
	Extractor *parse.Extractor
	// Alt is optional; nil disables LLM merging.
	Alt llm.FieldExtractor
}

func NewParseStage(logger *slog.Logger, extractor *parse.Extractor, alt llm.FieldExtractor) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	if extractor == nil {
		extractor = parse.NewExtractor(nil, parse.Options{})
	}
	return &ParseStage{Logger: logger, Extractor: extractor, Alt: alt}
}

// Run classifies the page unless docType is set, extracts it and records
// metrics. It only fails when ctx is done.
func (s *ParseStage) Run(ctx context.Context, fileName string, page ocr.Page, docType constants.DocumentType) (PageResult, error) {
	if err := ctx.Err(); err != nil {
		return PageResult{}, err
	}
	start := time.Now()
	if docType == "" {
		docType = s.Extractor.Classify(page.Text)
	}
	rec := s.Extractor.Extract(docType, page.Text, page.LineItems)
	metrics.StageDuration.WithLabelValues("parse").Observe(time.Since(start).Seconds())

	res := PageResult{
		Number:     page.Number,
		Method:     page.Method,
		Confidence: page.Confidence,
		Record:     rec,
		Text:       page.Text,
	}

	if inv, ok := rec.Fields.(parse.InvoiceFields); ok && s.Alt != nil && incomplete(inv) {
		merged, ok := s.mergeAlternate(ctx, fileName, page, inv)
		if ok {
			res.Record.Fields = merged
			if len(page.LineItems) > 0 {
				res.Record.Boxes = parse.FieldBoxes(merged, page.LineItems)
			}
			res.LLMMerged = true
		}
	}

	observeRecord(res.Record, page.Method)
	s.Logger.Debug("pipeline.page.extracted",
		"file", fileName,
		"page", page.Number,
		"doc_type", res.Record.Type,
		"method", page.Method,
		"llm_merged", res.LLMMerged,
	)
	return res, nil
}

func (s *ParseStage) mergeAlternate(ctx context.Context, fileName string, page ocr.Page, rules parse.InvoiceFields) (parse.InvoiceFields, bool) {
	start := time.Now()
	alt, _, err := s.Alt.ExtractInvoice(ctx, llm.ExtractRequest{Text: page.Text, FileName: fileName, Page: page.Number})
	metrics.StageDuration.WithLabelValues("llm").Observe(time.Since(start).Seconds())
	switch {
	case errors.Is(err, common.ErrLLMDisabled):
		metrics.LLMRequests.WithLabelValues("disabled").Inc()
		return rules, false
	case err != nil:
		metrics.LLMRequests.WithLabelValues("error").Inc()
		metrics.ProcessingErrors.WithLabelValues("llm", metrics.ErrorType(err)).Inc()
		s.Logger.Warn("pipeline.llm.failed", "file", fileName, "page", page.Number, "err", err)
		return rules, false
	}
	metrics.LLMRequests.WithLabelValues("ok").Inc()
	return parse.MergeInvoice(rules, alt.ToParse()), true
}

// incomplete reports whether the rules left a scalar null or found no rows.
func incomplete(f parse.InvoiceFields) bool {
	if len(f.Items) == 0 {
		return true
	}
	for _, v := range f.Scalars() {
		if v == nil {
			return true
		}
	}
	return false
}

func observeRecord(rec parse.Record, method string) {
	dt := string(rec.Type)
	metrics.PagesExtracted.WithLabelValues(dt, method).Inc()
	for name, v := range rec.Fields.Scalars() {
		if v == nil {
			metrics.UnresolvedFields.WithLabelValues(dt, name).Inc()
		}
	}
	switch f := rec.Fields.(type) {
	case parse.InvoiceFields:
		metrics.TableRows.WithLabelValues(dt).Observe(float64(len(f.Items)))
	case parse.PurchaseOrderFields:
		metrics.TableRows.WithLabelValues(dt).Observe(float64(len(f.Items)))
	}
}
