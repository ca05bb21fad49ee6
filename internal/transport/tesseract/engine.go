// Package tesseract runs OCR through libtesseract via gosseract.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// Engine recognizes text in raster images. Each call uses its own tesseract
// client, so an Engine is safe for concurrent use.
type Engine struct {
	languages []string
	logger    *zap.Logger
}

// New creates an OCR engine for the given tesseract language codes (empty means "eng").
func New(languages []string, logger *zap.Logger) *Engine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{languages: languages, logger: logger}
}

// Recognize returns the text found in an encoded image.
func (e *Engine) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("ocr set language: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("ocr load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}

	e.logger.Debug("OCR done", zap.Int("image_bytes", len(image)), zap.Int("chars", len(text)))
	return text, nil
}

// Version returns the linked tesseract version.
func (e *Engine) Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
