package chi

import (
	"context"

	"github.com/kailas-cloud/pagerag/internal/domain"
	"github.com/kailas-cloud/pagerag/internal/domain/page"
	healthuc "github.com/kailas-cloud/pagerag/internal/usecase/health"
)

// Indexer manages and queries the page index.
type Indexer interface {
	CreateIndex(ctx context.Context) error
	IndexPages(ctx context.Context, pages []page.Page) (int, error)
	Retrieve(ctx context.Context, question string, k int) ([]domain.Hit, error)
	Page(ctx context.Context, number int) (page.Page, error)
}

// Answerer produces grounded answers from retrieved hits.
type Answerer interface {
	Answer(ctx context.Context, question string, hits []domain.Hit) (domain.Answer, error)
}

// HealthChecker reports dependency health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
