package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/docfields/constants"
)

// nativePageTexts reads the embedded text layer of every page. Pages the
// reader cannot decode come back empty so that they fall through to OCR.
func nativePageTexts(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	texts := make([]string, reader.NumPage())
	for i := range texts {
		page := reader.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		texts[i] = text
	}
	return texts, nil
}

// extractPDF keeps the native text of digital pages and OCRs the pages whose
// text layer is shorter than ScannedThreshold.
func (e *Extractor) extractPDF(ctx context.Context, path string) (Document, error) {
	doc := Document{SourceType: constants.PDF}
	texts, err := e.pdfText(path)
	if err != nil {
		return doc, err
	}
	if e.cfg.MaxPages > 0 && len(texts) > e.cfg.MaxPages {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("truncated to %d of %d pages", e.cfg.MaxPages, len(texts)))
		texts = texts[:e.cfg.MaxPages]
	}

	for i, native := range texts {
		if err := ctx.Err(); err != nil {
			return doc, err
		}
		number := i + 1
		if nonSpaceLen(native) >= e.cfg.ScannedThreshold {
			doc.Pages = append(doc.Pages, Page{Number: number, Text: Normalize(native), Method: MethodNative, Confidence: 1})
			continue
		}

		e.logger.Debug("page looks scanned, running ocr", "path", path, "page", number, "native_chars", nonSpaceLen(native))
		page, warn, err := e.rasterizeAndOCR(ctx, path, number)
		doc.Warnings = append(doc.Warnings, warn...)
		if err != nil {
			e.logger.Warn("page ocr failed", "path", path, "page", number, "error", err)
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("page %d: %v", number, err))
			page = Page{Number: number, Method: MethodOCR}
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

func (e *Extractor) rasterizeAndOCR(ctx context.Context, path string, number int) (Page, []string, error) {
	tmpDir, err := os.MkdirTemp("", "docfields-pp-*")
	if err != nil {
		return Page{}, nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	n := strconv.Itoa(number)
	// pdftoppm -f N -l N -r 300 -png -singlefile <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-f", n, "-l", n, "-r", strconv.Itoa(e.cfg.DPI), "-png", "-singlefile", path, prefix)
	if err != nil {
		return Page{}, []string{string(errb)}, fmt.Errorf("pdftoppm: %w", err)
	}
	return e.ocrPage(ctx, prefix+".png", number)
}
