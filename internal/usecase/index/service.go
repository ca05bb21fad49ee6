package index

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pagerag/internal/domain"
	"github.com/kailas-cloud/pagerag/internal/domain/page"
	"github.com/kailas-cloud/pagerag/internal/metrics"
)

// Config holds retrieval defaults and the refresh polling budget.
type Config struct {
	DefaultTopK     int
	RefreshAttempts int
	RefreshDelay    time.Duration
}

// Service owns the page index lifecycle: rebuild, bulk load, refresh and k-NN retrieval.
type Service struct {
	repo   Repository
	embed  Embedder
	cfg    Config
	logger *zap.Logger
}

// New creates an index service.
func New(repo Repository, embed Embedder, cfg Config, logger *zap.Logger) *Service {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 1
	}
	if cfg.RefreshAttempts <= 0 {
		cfg.RefreshAttempts = 1
	}
	return &Service{repo: repo, embed: embed, cfg: cfg, logger: logger}
}

// CreateIndex drops the index with all indexed pages and creates an empty one.
func (s *Service) CreateIndex(ctx context.Context) error {
	if err := s.repo.Recreate(ctx); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.logger.Info("Index created")
	return nil
}

// IndexPages embeds every page as a document, writes them in one batch and waits until they are searchable.
func (s *Service) IndexPages(ctx context.Context, pages []page.Page) (int, error) {
	if len(pages) == 0 {
		s.logger.Warn("No pages to index")
		return 0, nil
	}

	seen := make(map[int]struct{}, len(pages))
	texts := make([]string, len(pages))
	for i, p := range pages {
		if _, dup := seen[p.Number]; dup {
			return 0, fmt.Errorf("page %d: %w", p.Number, domain.ErrDuplicatePage)
		}
		seen[p.Number] = struct{}{}
		texts[i] = p.Text
	}

	vectors, err := s.embed.EmbedBatch(ctx, texts, domain.RoleDocument)
	if err != nil {
		return 0, fmt.Errorf("embed pages: %w", err)
	}

	records := make([]domain.IndexedPage, len(pages))
	for i, p := range pages {
		records[i] = domain.IndexedPage{Page: p.Number, Text: p.Text, Vector: vectors[i]}
	}

	if err := s.repo.PutAll(ctx, records); err != nil {
		return 0, fmt.Errorf("index pages: %w", err)
	}

	if err := s.refresh(ctx, len(records)); err != nil {
		return 0, err
	}

	metrics.PagesIndexedTotal.Add(float64(len(records)))
	s.logger.Info("Indexed pages", zap.Int("count", len(records)))

	return len(records), nil
}

// refresh polls index status until want documents are searchable or the attempt budget runs out.
func (s *Service) refresh(ctx context.Context, want int) error {
	var last domain.IndexStatus
	for attempt := 1; attempt <= s.cfg.RefreshAttempts; attempt++ {
		st, err := s.repo.Status(ctx)
		if err != nil {
			return fmt.Errorf("refresh: %w", err)
		}
		if st.Searchable(want) {
			s.logger.Debug("Index refreshed",
				zap.Int("docs", st.Docs),
				zap.Int("attempts", attempt),
			)
			return nil
		}
		last = st

		if attempt == s.cfg.RefreshAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("refresh: %w", ctx.Err())
		case <-time.After(s.cfg.RefreshDelay):
		}
	}
	return fmt.Errorf("refresh: %d of %d pages searchable after %d attempts: %w",
		last.Docs, want, s.cfg.RefreshAttempts, domain.ErrIndexNotReady)
}

// Retrieve returns the k pages most similar to question, best first.
// k <= 0 uses the configured default. An unreachable store or missing index yields no hits and no error.
func (s *Service) Retrieve(ctx context.Context, question string, k int) ([]domain.Hit, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuestion
	}
	if k <= 0 {
		k = s.cfg.DefaultTopK
	}

	start := time.Now()
	defer func() { metrics.RetrievalDuration.Observe(time.Since(start).Seconds()) }()

	vec, err := s.embed.Embed(ctx, question, domain.RoleQuery)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits, err := s.repo.Search(ctx, vec, k)
	if err != nil {
		metrics.RetrievalsTotal.WithLabelValues("store_error").Inc()
		s.logger.Warn("Retrieval failed, continuing without context",
			zap.Int("k", k),
			zap.Error(err),
		)
		return []domain.Hit{}, nil
	}

	if len(hits) == 0 {
		metrics.RetrievalsTotal.WithLabelValues("empty").Inc()
	} else {
		metrics.RetrievalsTotal.WithLabelValues("hit").Inc()
	}
	if len(hits) > k {
		hits = hits[:k]
	}

	s.logger.Debug("Retrieved pages",
		zap.Int("k", k),
		zap.Int("hits", len(hits)),
	)

	return hits, nil
}

// Page returns one indexed page by number.
func (s *Service) Page(ctx context.Context, number int) (page.Page, error) {
	p, err := s.repo.Get(ctx, number)
	if err != nil {
		return page.Page{}, fmt.Errorf("get page: %w", err)
	}
	return p, nil
}
