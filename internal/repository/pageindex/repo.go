package pageindex

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/kailas-cloud/pagerag/internal/db"
	"github.com/kailas-cloud/pagerag/internal/domain"
	"github.com/kailas-cloud/pagerag/internal/domain/page"
)

// store is the consumer interface for the page index (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// HNSWConfig holds HNSW tuning for the embedding field.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Config describes the page index schema.
type Config struct {
	Name       string
	KeyPrefix  string
	Dimensions int
	HNSW       HNSWConfig
}

// Repo stores pages as hashes covered by one FT index.
type Repo struct {
	store store
	cfg   Config
}

// New creates a page index repository.
func New(s store, cfg Config) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// IndexName returns the FT index name.
func (r *Repo) IndexName() string {
	return r.cfg.KeyPrefix + r.cfg.Name + ":idx"
}

// Recreate drops the index together with its pages and creates it empty.
func (r *Repo) Recreate(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.IndexName(), true); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", r.IndexName(), err)
	}

	def, err := buildIndex(r.IndexName(), r.keyPrefix(), r.cfg.Dimensions, r.cfg.HNSW)
	if err != nil {
		return fmt.Errorf("build index %s: %w", r.IndexName(), err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", r.IndexName(), err)
	}
	return nil
}

// PutAll writes every record in one pipelined batch.
// Any vector whose length differs from the schema fails the call before anything is written.
func (r *Repo) PutAll(ctx context.Context, records []domain.IndexedPage) error {
	items := make([]db.HashSetItem, 0, len(records))
	for _, rec := range records {
		if len(rec.Vector) != r.cfg.Dimensions {
			return fmt.Errorf("page %d: got %d dimensions, index expects %d: %w",
				rec.Page, len(rec.Vector), r.cfg.Dimensions, domain.ErrVectorDimMismatch)
		}
		items = append(items, db.HashSetItem{
			Key:    r.pageKey(rec.Page),
			Fields: buildHashFields(rec),
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("write %d pages: %w", len(items), err)
	}
	return nil
}

// Status reports document count and indexing progress.
func (r *Repo) Status(ctx context.Context) (domain.IndexStatus, error) {
	info, err := r.store.IndexInfo(ctx, r.IndexName())
	if err != nil {
		return domain.IndexStatus{}, fmt.Errorf("index info %s: %w", r.IndexName(), err)
	}
	return domain.IndexStatus{Docs: info.NumDocs, Indexing: info.Indexing}, nil
}

// Search returns the k nearest pages to vec by cosine similarity, best first.
func (r *Repo) Search(ctx context.Context, vec []float32, k int) ([]domain.Hit, error) {
	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.IndexName(),
		VectorField:  fieldEmbedding,
		Vector:       vec,
		K:            k,
		ReturnFields: []string{fieldPage, fieldText},
	})
	if err != nil {
		return nil, fmt.Errorf("knn search %s: %w", r.IndexName(), err)
	}

	hits := make([]domain.Hit, 0, len(result.Entries))
	for _, entry := range result.Entries {
		hit, ok := parseHit(entry)
		if !ok {
			continue
		}
		hits = append(hits, hit)
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Page < hits[j].Page
	})

	return hits, nil
}

// Get returns a stored page by number.
func (r *Repo) Get(ctx context.Context, number int) (page.Page, error) {
	m, err := r.store.HGetAll(ctx, r.pageKey(number))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return page.Page{}, fmt.Errorf("page %d: %w", number, domain.ErrPageNotFound)
		}
		return page.Page{}, fmt.Errorf("get page %d: %w", number, err)
	}
	return page.Page{Number: number, Text: m[fieldText]}, nil
}

func (r *Repo) keyPrefix() string {
	return r.cfg.KeyPrefix + r.cfg.Name + ":page:"
}

func (r *Repo) pageKey(number int) string {
	return r.keyPrefix() + strconv.Itoa(number)
}
