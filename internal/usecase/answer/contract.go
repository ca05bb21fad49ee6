package answer

import (
	"context"

	"github.com/kailas-cloud/pagerag/internal/transport/ollama"
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts ollama.Options) (string, error)
}
