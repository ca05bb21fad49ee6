package extract

import (
	"context"

	"github.com/kailas-cloud/pagerag/internal/pdf"
)

// PageSource reads one open PDF page by page.
type PageSource interface {
	NumPages() int
	PageText(n int) (string, error)
	PageImages(n int) ([]pdf.Image, error)
	Close() error
}

// Opener opens a PDF file as a PageSource.
type Opener func(path string) (PageSource, error)

// OCR recognizes text in an encoded raster image.
type OCR interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}
