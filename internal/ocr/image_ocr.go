package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/parse"
)

func (e *Extractor) extractImage(ctx context.Context, path string) (Document, error) {
	page, warn, err := e.ocrPage(ctx, path, 1)
	if err != nil {
		return Document{SourceType: constants.IMAGE, Warnings: warn}, err
	}
	return Document{
		SourceType: constants.IMAGE,
		Pages:      []Page{page},
		Warnings:   warn,
	}, nil
}

// ocrPage runs tesseract in TSV mode over one image and keeps the lines whose
// confidence reaches MinLineConfidence.
func (e *Extractor) ocrPage(ctx context.Context, path string, number int) (Page, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return Page{Number: number, Method: MethodOCR}, []string{string(errb)}, fmt.Errorf("tesseract TSV: %w", err)
	}

	items := filterLines(parseTSV(string(out)), e.cfg.MinLineConfidence)
	texts := make([]string, len(items))
	var sum float64
	for i, it := range items {
		texts[i] = it.Text
		sum += it.Confidence
	}
	page := Page{Number: number, Method: MethodOCR, LineItems: items, Text: Normalize(strings.Join(texts, "\n"))}
	if len(items) > 0 {
		page.Confidence = sum / float64(len(items))
	}
	return page, nil, nil
}

// TSV columns: level page_num block_num par_num line_num word_num left top
// width height conf text.
const tsvColumns = 12

type lineKey struct{ page, block, par, line int }

type lineAcc struct {
	words                    []string
	confSum                  float64
	confN                    int
	left, top, right, bottom float64
}

// parseTSV groups tesseract TSV words into lines, in reading order. A line's
// confidence is its mean word confidence scaled to 0..1 and its polygon is the
// box around all of its words, clockwise from the top-left corner.
func parseTSV(tsv string) []parse.LineItem {
	var order []lineKey
	acc := make(map[lineKey]*lineAcc)
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || ln == "" {
			continue
		}
		cols := strings.Split(strings.TrimRight(ln, "\r"), "\t")
		if len(cols) < tsvColumns {
			continue
		}
		ints := make([]int, 10)
		ok := true
		for c := 0; c < 10; c++ {
			v, err := strconv.Atoi(cols[c])
			if err != nil {
				ok = false
				break
			}
			ints[c] = v
		}
		text := strings.TrimSpace(strings.Join(cols[11:], "\t"))
		if !ok || ints[0] != 5 || text == "" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}

		k := lineKey{ints[1], ints[2], ints[3], ints[4]}
		left, top := float64(ints[6]), float64(ints[7])
		right, bottom := left+float64(ints[8]), top+float64(ints[9])
		a, seen := acc[k]
		if !seen {
			a = &lineAcc{left: left, top: top, right: right, bottom: bottom}
			acc[k] = a
			order = append(order, k)
		}
		a.words = append(a.words, text)
		a.confSum += conf
		a.confN++
		a.left, a.top = min(a.left, left), min(a.top, top)
		a.right, a.bottom = max(a.right, right), max(a.bottom, bottom)
	}

	items := make([]parse.LineItem, 0, len(order))
	for _, k := range order {
		a := acc[k]
		items = append(items, parse.LineItem{
			Text:       strings.Join(a.words, " "),
			Confidence: a.confSum / float64(a.confN) / 100,
			Polygon: parse.Polygon{
				{X: a.left, Y: a.top},
				{X: a.right, Y: a.top},
				{X: a.right, Y: a.bottom},
				{X: a.left, Y: a.bottom},
			},
		})
	}
	return items
}

func filterLines(items []parse.LineItem, minConf float64) []parse.LineItem {
	out := items[:0]
	for _, it := range items {
		if it.Confidence >= minConf {
			out = append(out, it)
		}
	}
	return out
}
