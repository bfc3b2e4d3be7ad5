package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docfields/internal/parse"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
	"github.com/joseph-ayodele/docfields/internal/repository"
)

const (
	documentsSheet = "Documents"
	itemsSheet     = "Items"
)

// Service produces XLSX workbooks from extraction results.
type Service struct {
	repo   repository.ExtractionRepository
	logger *slog.Logger
}

// NewService returns a Service. repo may be nil when only ExportXLSX is used.
func NewService(repo repository.ExtractionRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportStored loads results matching filter from the repository and exports them.
func (s *Service) ExportStored(ctx context.Context, filter repository.ListFilter) ([]byte, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("export: no repository configured")
	}
	results, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}
	return s.ExportXLSX(results)
}

// ExportXLSX writes one Documents row per page and one Items row per table row.
func (s *Service) ExportXLSX(results []pipeline.DocumentResult) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", documentsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	docHeaders := []string{"ID", "File", "Page", "Doc Type", "Method", "Confidence", "Number", "Date", "Party", "Total", "GST", "Unresolved"}
	itemHeaders := []string{"ID", "File", "Page", "Name", "HSN", "Quantity", "Unit", "Unit Price", "Total"}
	if err := writeRow(f, documentsSheet, 1, toAny(docHeaders)); err != nil {
		return nil, err
	}
	if err := writeRow(f, itemsSheet, 1, toAny(itemHeaders)); err != nil {
		return nil, err
	}

	docRow, itemRow := 2, 2
	for _, res := range results {
		for _, p := range res.Pages {
			sum := summarize(p.Record.Fields)
			vals := []any{
				res.ID.String(), res.FileName, p.Number, string(p.Record.Type), p.Method, p.Confidence,
				sum.number, sum.date, sum.party, sum.total, sum.gst, unresolved(p.Record.Fields),
			}
			if err := writeRow(f, documentsSheet, docRow, vals); err != nil {
				return nil, err
			}
			docRow++

			for _, it := range items(p.Record.Fields) {
				unit := ""
				if it.Unit != nil {
					unit = *it.Unit
				}
				vals := []any{res.ID.String(), res.FileName, p.Number, it.Name, it.HSN, it.Quantity, unit, it.UnitPrice, it.Total}
				if err := writeRow(f, itemsSheet, itemRow, vals); err != nil {
					return nil, err
				}
				itemRow++
			}
		}
	}

	_ = f.SetColWidth(documentsSheet, "A", "A", 38)
	_ = f.SetColWidth(documentsSheet, "B", "B", 28)
	_ = f.SetColWidth(documentsSheet, "G", "I", 24)
	_ = f.SetColWidth(itemsSheet, "A", "A", 38)
	_ = f.SetColWidth(itemsSheet, "D", "D", 36)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"documents", len(results),
		"rows", docRow-2,
		"items", itemRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, vals []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &vals)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

type summary struct {
	number, date, party, total, gst string
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// summarize picks the columns shared across document types.
func summarize(fields parse.Fields) summary {
	switch f := fields.(type) {
	case parse.InvoiceFields:
		return summary{deref(f.InvoiceNumber), deref(f.Date), deref(f.Vendor), deref(f.TotalAmount), deref(f.GST)}
	case parse.PurchaseOrderFields:
		return summary{deref(f.PONumber), deref(f.Date), deref(f.Vendor), deref(f.TotalAmount), deref(f.GST)}
	case parse.ResumeFields:
		return summary{number: deref(f.Phone), party: deref(f.Name)}
	case parse.IDCardFields:
		return summary{number: deref(f.EmployeeID), date: deref(f.DateOfJoining), party: deref(f.Name)}
	case parse.GeneralFields:
		s := summary{party: deref(f.PossibleName)}
		if len(f.Amounts) > 0 {
			s.total = f.Amounts[0]
		}
		return s
	default:
		return summary{}
	}
}

func items(fields parse.Fields) []parse.TableRow {
	switch f := fields.(type) {
	case parse.InvoiceFields:
		return f.Items
	case parse.PurchaseOrderFields:
		return f.Items
	default:
		return nil
	}
}

func unresolved(fields parse.Fields) int {
	if fields == nil {
		return 0
	}
	n := 0
	for _, v := range fields.Scalars() {
		if v == nil {
			n++
		}
	}
	return n
}
