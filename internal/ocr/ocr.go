package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/parse"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDF pages, default 300
	MaxPages      int // 0 = no limit

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default

	// ScannedThreshold is the minimum count of non-space characters of native
	// text for a PDF page to skip OCR. Default 50.
	ScannedThreshold int
	// MinLineConfidence drops OCR lines below this mean word confidence (0..1).
	MinLineConfidence float64
}

// ConfigFrom maps the application OCR settings onto Config.
func ConfigFrom(c common.OCRConfig) Config {
	return Config{
		Pdftoppm:          c.PdftoppmBin,
		Tesseract:         c.TesseractBin,
		TesseractLang:     c.Language,
		TessdataDir:       c.TessdataDir,
		DPI:               c.DPI,
		ScannedThreshold:  c.ScannedThreshold,
		MinLineConfidence: c.MinLineConfidence,
	}
}

// How a page's text was obtained.
const (
	MethodNative = "native"
	MethodOCR    = "ocr"
	MethodText   = "text"
)

// Page is the text of one source page. LineItems are only present for OCR'd
// pages.
type Page struct {
	Number     int              `json:"page"`
	Text       string           `json:"text"`
	Method     string           `json:"method"`
	Confidence float64          `json:"confidence"`
	LineItems  []parse.LineItem `json:"line_items,omitempty"`
}

type Document struct {
	Path       string
	SourceType string // constants.PDF | constants.IMAGE | constants.TXT
	Pages      []Page
	Language   string
	Duration   time.Duration
	Warnings   []string
}

// AverageConfidence is the mean page confidence, 0 for a document without pages.
func (d Document) AverageConfidence() float64 {
	if len(d.Pages) == 0 {
		return 0
	}
	var sum float64
	for _, p := range d.Pages {
		sum += p.Confidence
	}
	return sum / float64(len(d.Pages))
}

// Empty reports whether no page produced any text.
func (d Document) Empty() bool {
	for _, p := range d.Pages {
		if strings.TrimSpace(p.Text) != "" {
			return false
		}
	}
	return true
}

// PageTextReader returns the native text of every page of a PDF, in order.
type PageTextReader func(path string) ([]string, error)

type Extractor struct {
	cfg     Config
	runner  Runner
	pdfText PageTextReader
	logger  *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.ScannedThreshold <= 0 {
		cfg.ScannedThreshold = 50
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, pdfText: nativePageTexts, logger: logger}
}

// WithRunner swaps the external command runner, e.g. for tests.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// WithPageTextReader swaps the native PDF text reader.
func (e *Extractor) WithPageTextReader(fn PageTextReader) *Extractor {
	e.pdfText = fn
	return e
}

// ExtractPages picks a strategy based on file extension and returns the text
// of every page.
func (e *Extractor) ExtractPages(ctx context.Context, path string) (Document, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting text extraction", "path", path, "ext", ext)

	var (
		doc Document
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		doc, err = e.extractPDF(ctx, path)
	case constants.IMAGE:
		doc, err = e.extractImage(ctx, path)
	case constants.TXT:
		doc, err = extractTextFile(path)
	default:
		e.logger.Error("unsupported extension", "extension", ext)
		return Document{}, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}
	doc.Path = path
	doc.Language = e.cfg.TesseractLang
	doc.Duration = time.Since(start)
	if err != nil {
		return doc, err
	}
	e.logger.Info("text extracted",
		"path", path,
		"source", doc.SourceType,
		"pages", len(doc.Pages),
		"confidence", doc.AverageConfidence(),
		"duration_ms", doc.Duration.Milliseconds(),
	)
	return doc, nil
}

func extractTextFile(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{SourceType: constants.TXT}, fmt.Errorf("read text: %w", err)
	}
	return Document{
		SourceType: constants.TXT,
		Pages:      []Page{{Number: 1, Text: Normalize(string(b)), Method: MethodText, Confidence: 1}},
	}, nil
}
