package index

import (
	"context"

	"github.com/kailas-cloud/pagerag/internal/domain"
	"github.com/kailas-cloud/pagerag/internal/domain/page"
)

// Repository defines the storage contract for the page index.
type Repository interface {
	Recreate(ctx context.Context) error
	PutAll(ctx context.Context, records []domain.IndexedPage) error
	Status(ctx context.Context) (domain.IndexStatus, error)
	Search(ctx context.Context, vec []float32, k int) ([]domain.Hit, error)
	Get(ctx context.Context, number int) (page.Page, error)
}

// Embedder vectorizes text for a role.
type Embedder interface {
	Embed(ctx context.Context, text string, role domain.Role) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string, role domain.Role) ([][]float32, error)
}
