package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joseph-ayodele/docfields/internal/common"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t1200\t1600\t-1\t\n" +
	"4\t1\t1\t1\t1\t0\t10\t20\t300\t30\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t10\t20\t100\t30\t96.5\tInvoice\n" +
	"5\t1\t1\t1\t1\t2\t120\t22\t50\t28\t91.5\tNo:\n" +
	"5\t1\t1\t1\t1\t3\t180\t20\t130\t32\t90\tINV/2025/0118\n" +
	"5\t1\t1\t1\t2\t1\t10\t60\t80\t30\t20\tsmudge\n" +
	"5\t1\t2\t1\t1\t1\t10\t100\t200\t30\t88\tGrand\n" +
	"5\t1\t2\t1\t1\t2\t220\t100\t90\t30\t86\tTotal:\n"

type call struct {
	name string
	args []string
}

type stubRunner struct {
	calls  []call
	stdout map[string][]byte
	err    error
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, call{name: name, args: args})
	if s.err != nil {
		return nil, []byte("boom"), s.err
	}
	return s.stdout[name], nil, nil
}

func TestParseTSV(t *testing.T) {
	items := parseTSV(sampleTSV)
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	if items[0].Text != "Invoice No: INV/2025/0118" {
		t.Errorf("items[0].Text = %q", items[0].Text)
	}
	if got, want := items[0].Confidence, (96.5+91.5+90)/3/100; got != want {
		t.Errorf("items[0].Confidence = %v, want %v", got, want)
	}
	poly := items[0].Polygon
	if len(poly) != 4 || poly[0].X != 10 || poly[0].Y != 20 || poly[2].X != 310 || poly[2].Y != 52 {
		t.Errorf("items[0].Polygon = %v", poly)
	}
	if items[2].Text != "Grand Total:" {
		t.Errorf("items[2].Text = %q", items[2].Text)
	}
}

func TestFilterLines(t *testing.T) {
	items := filterLines(parseTSV(sampleTSV), 0.5)
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	for _, it := range items {
		if it.Text == "smudge" {
			t.Errorf("low confidence line kept")
		}
	}
}

func TestExtractPagesImage(t *testing.T) {
	r := &stubRunner{stdout: map[string][]byte{"tesseract": []byte(sampleTSV)}}
	e := NewExtractor(Config{MinLineConfidence: 0.5}, nil).WithRunner(r)

	doc, err := e.ExtractPages(context.Background(), "scan.PNG")
	if err != nil {
		t.Fatalf("ExtractPages() = %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("len(Pages) = %d, want 1", len(doc.Pages))
	}
	p := doc.Pages[0]
	if p.Method != MethodOCR || p.Number != 1 {
		t.Errorf("page = %+v", p)
	}
	if p.Text != "Invoice No: INV/2025/0118\nGrand Total:" {
		t.Errorf("Text = %q", p.Text)
	}
	if len(p.LineItems) != 2 {
		t.Errorf("len(LineItems) = %d, want 2", len(p.LineItems))
	}
	args := strings.Join(r.calls[0].args, " ")
	if !strings.HasPrefix(args, "scan.PNG stdout -l eng") || !strings.HasSuffix(args, "tsv") {
		t.Errorf("tesseract args = %q", args)
	}
}

func TestExtractPagesPDF(t *testing.T) {
	native := strings.Repeat("Invoice No: INV-1 Grand Total: Rs. 100.00 ", 3)
	r := &stubRunner{stdout: map[string][]byte{"tesseract": []byte(sampleTSV)}}
	e := NewExtractor(Config{}, nil).
		WithRunner(r).
		WithPageTextReader(func(string) ([]string, error) {
			return []string{native, "  short  "}, nil
		})

	doc, err := e.ExtractPages(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("ExtractPages() = %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("len(Pages) = %d, want 2", len(doc.Pages))
	}
	if doc.Pages[0].Method != MethodNative || doc.Pages[0].Confidence != 1 {
		t.Errorf("page 1 = %+v, want native", doc.Pages[0])
	}
	if doc.Pages[1].Method != MethodOCR || doc.Pages[1].Number != 2 {
		t.Errorf("page 2 = %+v, want ocr", doc.Pages[1])
	}
	if len(r.calls) != 2 || r.calls[0].name != "pdftoppm" || r.calls[1].name != "tesseract" {
		t.Fatalf("calls = %+v, want pdftoppm then tesseract", r.calls)
	}
	if got := strings.Join(r.calls[0].args[:4], " "); got != "-f 2 -l 2" {
		t.Errorf("pdftoppm page args = %q, want -f 2 -l 2", got)
	}
}

func TestExtractPagesPDFOCRFailureKeepsPage(t *testing.T) {
	r := &stubRunner{err: errors.New("exit status 1")}
	e := NewExtractor(Config{}, nil).
		WithRunner(r).
		WithPageTextReader(func(string) ([]string, error) { return []string{""}, nil })

	doc, err := e.ExtractPages(context.Background(), "scan.pdf")
	if err != nil {
		t.Fatalf("ExtractPages() = %v", err)
	}
	if len(doc.Pages) != 1 || !doc.Empty() {
		t.Errorf("Pages = %+v, want one empty page", doc.Pages)
	}
	if len(doc.Warnings) == 0 {
		t.Errorf("Warnings empty, want the ocr failure")
	}
}

func TestExtractPagesText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	if err := os.WriteFile(path, []byte("Invoice No: 7\r\n\r\n  Total: Rs. 10  \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	doc, err := NewExtractor(Config{}, nil).ExtractPages(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractPages() = %v", err)
	}
	if got := doc.Pages[0].Text; got != "Invoice No: 7\nTotal: Rs. 10" {
		t.Errorf("Text = %q", got)
	}
	if doc.AverageConfidence() != 1 {
		t.Errorf("AverageConfidence() = %v, want 1", doc.AverageConfidence())
	}
}

func TestExtractPagesUnsupported(t *testing.T) {
	_, err := NewExtractor(Config{}, nil).ExtractPages(context.Background(), "photo.heic")
	if !errors.Is(err, common.ErrUnsupportedFormat) {
		t.Errorf("ExtractPages() = %v, want ErrUnsupportedFormat", err)
	}
}

func TestNormalize(t *testing.T) {
	in := "Description\t\tQty\n-----\n\n  Cotton Fabric      520811  \f Page 2"
	want := "Description  Qty\nCotton Fabric  520811\nPage 2"
	if got := Normalize(in); got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestExecRunnerCommandError(t *testing.T) {
	tests := []struct {
		name     string
		cmd      string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"non-zero exit", "sh", []string{"-c", "echo bad page >&2; exit 3"}, 3, "bad page"},
		{"missing binary", "docfields-no-such-binary", nil, -1, "docfields-no-such-binary"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := execRunner{}.Run(context.Background(), tc.cmd, tc.args...)
			var cerr *CommandError
			if !errors.As(err, &cerr) {
				t.Fatalf("Run() error = %v, want *CommandError", err)
			}
			if cerr.ExitCode != tc.wantCode {
				t.Errorf("ExitCode = %d, want %d", cerr.ExitCode, tc.wantCode)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Error() = %q, want it to mention %q", err.Error(), tc.wantErr)
			}
		})
	}
}

func TestExecRunnerOK(t *testing.T) {
	out, _, err := execRunner{}.Run(context.Background(), "sh", "-c", "printf ok")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if string(out) != "ok" {
		t.Errorf("stdout = %q, want ok", out)
	}
}

func TestExecRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := execRunner{}.Run(ctx, "sh", "-c", "sleep 5")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
