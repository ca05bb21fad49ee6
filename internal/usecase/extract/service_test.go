package extract

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pagerag/internal/domain/page"
	"github.com/kailas-cloud/pagerag/internal/pdf"
)

// --- Mocks ---

type fakeSource struct {
	texts  []string
	images map[int][]pdf.Image
	closed bool
	err    error
}

func (f *fakeSource) NumPages() int { return len(f.texts) }

func (f *fakeSource) PageText(n int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.texts[n-1], nil
}

func (f *fakeSource) PageImages(n int) ([]pdf.Image, error) { return f.images[n], nil }

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

// fakeOCR returns the image bytes as text.
type fakeOCR struct {
	calls int
	err   error
}

func (f *fakeOCR) Recognize(_ context.Context, image []byte) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return string(image), nil
}

func writeDummyPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Hyponatremia Synthetic.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestService(src *fakeSource, ocr OCR) *Service {
	open := func(string) (PageSource, error) { return src, nil }
	return New(open, ocr, zap.NewNop())
}

// --- Tests ---

func TestExtract_ImageOnlyPageIsOCRed(t *testing.T) {
	src := &fakeSource{
		texts: []string{
			"Patient denies\nrash.\n\nNo itching.",
			"   ",
			"Sodium 118.",
		},
		images: map[int][]pdf.Image{
			2: {{Format: "png", ObjNr: 7, Data: []byte("Admitted for\nhyponatremia.")}},
		},
	}
	ocr := &fakeOCR{}
	svc := newTestService(src, ocr)
	pdfPath := writeDummyPDF(t)

	res, err := svc.Extract(context.Background(), pdfPath, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOut := strings.TrimSuffix(pdfPath, ".pdf") + ".txt"
	if res.OutputPath != wantOut {
		t.Errorf("output path: got %s, want %s", res.OutputPath, wantOut)
	}
	if len(res.Pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(res.Pages))
	}
	if res.Pages[0].Text != "Patient denies rash.\n\nNo itching." {
		t.Errorf("page 1 text %q", res.Pages[0].Text)
	}
	if res.Pages[1].Text != "Admitted for hyponatremia." {
		t.Errorf("page 2 text %q", res.Pages[1].Text)
	}
	if len(res.OCRPages) != 1 || res.OCRPages[0] != 2 {
		t.Errorf("expected OCR on page 2 only, got %v", res.OCRPages)
	}
	if ocr.calls != 1 {
		t.Errorf("expected 1 OCR call, got %d", ocr.calls)
	}
	if !src.closed {
		t.Error("source must be closed")
	}

	loaded, err := page.Load(wantOut)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 pages in file, got %d", len(loaded))
	}
	for i, p := range loaded {
		if p.Number != i+1 {
			t.Errorf("page %d numbered %d", i+1, p.Number)
		}
	}
	if loaded[2].Text != "Sodium 118." {
		t.Errorf("page 3 text %q", loaded[2].Text)
	}
}

func TestExtract_RoundTrip(t *testing.T) {
	src := &fakeSource{
		texts: []string{
			"Patient denies rash.",
			"",
		},
		images: map[int][]pdf.Image{
			2: {
				{Format: "png", ObjNr: 4, Data: []byte("  \n\n ")},
				{Format: "png", ObjNr: 9, Data: []byte("Admitted for\nhyponatremia.\n\n")},
			},
		},
	}
	svc := newTestService(src, &fakeOCR{})

	res, err := svc.Extract(context.Background(), writeDummyPDF(t), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Pages[1].Text != "Admitted for hyponatremia." {
		t.Errorf("page 2 text %q", res.Pages[1].Text)
	}

	loaded, err := page.Load(res.OutputPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != len(res.Pages) {
		t.Fatalf("expected %d pages in file, got %d", len(res.Pages), len(loaded))
	}
	for i := range loaded {
		if loaded[i] != res.Pages[i] {
			t.Errorf("page %d: extracted %+v, loaded %+v", i+1, res.Pages[i], loaded[i])
		}
	}
}

func TestExtract_UnsupportedImagesSkipped(t *testing.T) {
	src := &fakeSource{
		texts: []string{""},
		images: map[int][]pdf.Image{
			1: {
				{Format: "jp2", Data: []byte("ignored")},
				{Format: "JPG", Data: []byte("first ")},
				{Format: "ccitt", Data: []byte("ignored")},
				{Format: "tif", Data: []byte("second")},
			},
		},
	}
	ocr := &fakeOCR{}
	svc := newTestService(src, ocr)
	out := filepath.Join(t.TempDir(), "out.txt")

	res, err := svc.Extract(context.Background(), writeDummyPDF(t), out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SkippedImages != 2 {
		t.Errorf("expected 2 skipped, got %d", res.SkippedImages)
	}
	if ocr.calls != 2 {
		t.Errorf("expected 2 OCR calls, got %d", ocr.calls)
	}
	if res.Pages[0].Text != "firstsecond" {
		t.Errorf("expected concatenated OCR text, got %q", res.Pages[0].Text)
	}
	if res.OutputPath != out {
		t.Errorf("expected explicit output path, got %s", res.OutputPath)
	}
}

func TestExtract_PageWithoutImagesIsEmpty(t *testing.T) {
	src := &fakeSource{texts: []string{"", "text"}}
	svc := newTestService(src, &fakeOCR{})

	res, err := svc.Extract(context.Background(), writeDummyPDF(t), filepath.Join(t.TempDir(), "o.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Pages[0].Text != "" || res.Pages[0].Number != 1 {
		t.Errorf("unexpected page 1: %+v", res.Pages[0])
	}
}

func TestExtract_PDFNotFound(t *testing.T) {
	opened := false
	svc := New(func(string) (PageSource, error) {
		opened = true
		return &fakeSource{}, nil
	}, &fakeOCR{}, zap.NewNop())

	_, err := svc.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), "")
	if !errors.Is(err, ErrPDFNotFound) {
		t.Fatalf("expected ErrPDFNotFound, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist in chain")
	}
	if opened {
		t.Error("PDF must not be opened")
	}
}

func TestExtract_FailureWritesNothing(t *testing.T) {
	src := &fakeSource{texts: []string{"a", ""}, images: map[int][]pdf.Image{2: {{Format: "png", Data: []byte("x")}}}}
	svc := newTestService(src, &fakeOCR{err: errors.New("tesseract crashed")})
	out := filepath.Join(t.TempDir(), "out.txt")

	if _, err := svc.Extract(context.Background(), writeDummyPDF(t), out); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(out); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("output must not exist, stat err: %v", err)
	}
}

func TestExtract_CorruptPDF(t *testing.T) {
	svc := New(func(string) (PageSource, error) {
		return nil, errors.New("malformed PDF")
	}, &fakeOCR{}, zap.NewNop())
	out := filepath.Join(t.TempDir(), "out.txt")

	if _, err := svc.Extract(context.Background(), writeDummyPDF(t), out); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(out); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("output must not exist")
	}
}
