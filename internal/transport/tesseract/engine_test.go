package tesseract

import (
	"context"
	"testing"
)

func TestNew_DefaultsToEnglish(t *testing.T) {
	e := New(nil, nil)
	if len(e.languages) != 1 || e.languages[0] != "eng" {
		t.Errorf("expected [eng], got %v", e.languages)
	}
}

func TestRecognize_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(nil, nil).Recognize(ctx, []byte{0x89, 'P', 'N', 'G'}); err == nil {
		t.Error("expected context error")
	}
}
