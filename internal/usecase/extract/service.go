package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pagerag/internal/domain/page"
	"github.com/kailas-cloud/pagerag/internal/pdf"
)

// ErrPDFNotFound is returned when the input PDF does not exist.
var ErrPDFNotFound = fmt.Errorf("pdf not found: %w", fs.ErrNotExist)

var supportedImageFormats = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "bmp": true, "tiff": true, "tif": true,
	"pbm": true, "pgm": true, "ppm": true, "webp": true, "gif": true,
}

// Result describes a finished extraction.
type Result struct {
	OutputPath    string
	Pages         []page.Page
	OCRPages      []int
	SkippedImages int
}

// Service turns a PDF into a delimited page file, OCRing pages that carry no text layer.
type Service struct {
	open   Opener
	ocr    OCR
	logger *zap.Logger
}

// New creates an extraction service.
func New(open Opener, ocr OCR, logger *zap.Logger) *Service {
	return &Service{open: open, ocr: ocr, logger: logger}
}

// OpenPDF is the default Opener backed by internal/pdf.
func OpenPDF(path string) (PageSource, error) {
	doc, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Extract reads pdfPath and writes the delimited document to outPath.
// An empty outPath writes next to the PDF with a .txt extension.
// Nothing is written unless every page succeeded.
func (s *Service) Extract(ctx context.Context, pdfPath, outPath string) (Result, error) {
	absPDF, err := filepath.Abs(pdfPath)
	if err != nil {
		return Result{}, fmt.Errorf("resolve %s: %w", pdfPath, err)
	}
	if _, err := os.Stat(absPDF); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%s: %w", absPDF, ErrPDFNotFound)
		}
		return Result{}, fmt.Errorf("stat %s: %w", absPDF, err)
	}

	if outPath == "" {
		outPath = strings.TrimSuffix(absPDF, filepath.Ext(absPDF)) + ".txt"
	}
	absOut, err := filepath.Abs(outPath)
	if err != nil {
		return Result{}, fmt.Errorf("resolve %s: %w", outPath, err)
	}

	src, err := s.open(absPDF)
	if err != nil {
		return Result{}, err
	}
	defer src.Close()

	res := Result{OutputPath: absOut}
	total := src.NumPages()
	res.Pages = make([]page.Page, 0, total)

	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		text, err := src.PageText(n)
		if err != nil {
			return Result{}, err
		}

		content := strings.TrimSpace(text)
		if content != "" {
			content = page.CleanParagraphs(content)
		} else {
			ocrText, skipped, err := s.ocrPage(ctx, src, n)
			if err != nil {
				return Result{}, err
			}
			content = ocrText
			res.SkippedImages += skipped
			res.OCRPages = append(res.OCRPages, n)
		}

		res.Pages = append(res.Pages, page.Page{Number: n, Text: content})
	}

	if err := page.Write(absOut, res.Pages); err != nil {
		return Result{}, err
	}

	s.logger.Info("Extracted text saved",
		zap.String("path", absOut),
		zap.Int("pages", len(res.Pages)),
		zap.Int("ocr_pages", len(res.OCRPages)),
	)

	return res, nil
}

// ocrPage recognizes every supported image on page n and concatenates the cleaned text.
func (s *Service) ocrPage(ctx context.Context, src PageSource, n int) (string, int, error) {
	images, err := src.PageImages(n)
	if err != nil {
		return "", 0, err
	}

	var (
		b       strings.Builder
		skipped int
	)
	for _, img := range images {
		format := strings.ToLower(img.Format)
		if !supportedImageFormats[format] {
			s.logger.Warn("Skipping unsupported image format",
				zap.String("format", format),
				zap.Int("page", n),
			)
			skipped++
			continue
		}

		text, err := s.ocr.Recognize(ctx, img.Data)
		if err != nil {
			return "", 0, fmt.Errorf("ocr page %d: %w", n, err)
		}
		b.WriteString(page.CleanParagraphs(text))
	}

	s.logger.Debug("OCR page", zap.Int("page", n), zap.Int("images", len(images)), zap.Int("skipped", skipped))
	return strings.TrimSpace(b.String()), skipped, nil
}
