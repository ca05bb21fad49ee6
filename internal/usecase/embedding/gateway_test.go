package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/pagerag/internal/domain"
)

// recordingEmbedder remembers every text it was asked to embed.
type recordingEmbedder struct {
	texts     []string
	vec       []float32
	err       error
	healthErr error
}

func (r *recordingEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	r.texts = append(r.texts, text)
	if r.err != nil {
		return domain.EmbeddingResult{}, r.err
	}
	return domain.EmbeddingResult{Embedding: r.vec}, nil
}

func (r *recordingEmbedder) HealthCheck(_ context.Context) error {
	return r.healthErr
}

func TestGateway_DocumentRole(t *testing.T) {
	inner := &recordingEmbedder{vec: []float32{1, 2, 3}}
	g := NewGateway(inner, "passage: ", "query: ")

	vec, err := g.Embed(context.Background(), "Rash on the forearm.", domain.RoleDocument)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("expected 3 dims, got %d", len(vec))
	}
	if inner.texts[0] != "passage: Rash on the forearm." {
		t.Errorf("unexpected embedded text %q", inner.texts[0])
	}
}

func TestGateway_QueryRole(t *testing.T) {
	inner := &recordingEmbedder{vec: []float32{1}}
	g := NewGateway(inner, "passage: ", "query: ")

	if _, err := g.Embed(context.Background(), "What is hyponatremia?", domain.RoleQuery); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.texts[0] != "query: What is hyponatremia?" {
		t.Errorf("unexpected embedded text %q", inner.texts[0])
	}
}

func TestGateway_SameTextDifferentRoles(t *testing.T) {
	inner := &recordingEmbedder{vec: []float32{1}}
	g := NewGateway(inner, "passage: ", "query: ")

	_, _ = g.Embed(context.Background(), "x", domain.RoleDocument)
	_, _ = g.Embed(context.Background(), "x", domain.RoleQuery)

	if inner.texts[0] == inner.texts[1] {
		t.Errorf("document and query inputs should differ, both %q", inner.texts[0])
	}
}

func TestGateway_EmptyText(t *testing.T) {
	inner := &recordingEmbedder{vec: []float32{1}}
	g := NewGateway(inner, "passage: ", "query: ")

	if _, err := g.Embed(context.Background(), "", domain.RoleQuery); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.texts[0] != "query: " {
		t.Errorf("expected bare prefix, got %q", inner.texts[0])
	}
}

func TestGateway_UnknownRole(t *testing.T) {
	g := NewGateway(&recordingEmbedder{}, "passage: ", "query: ")

	_, err := g.Embed(context.Background(), "x", domain.Role(0))
	if !errors.Is(err, domain.ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestGateway_ProviderError(t *testing.T) {
	inner := &recordingEmbedder{err: domain.ErrEmbeddingProviderError}
	g := NewGateway(inner, "passage: ", "query: ")

	_, err := g.Embed(context.Background(), "x", domain.RoleQuery)
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestGateway_EmbedBatch(t *testing.T) {
	inner := &recordingEmbedder{vec: []float32{0.5, 0.5}}
	g := NewGateway(inner, "passage: ", "query: ")

	vecs, err := g.EmbedBatch(context.Background(), []string{"a", "b"}, domain.RoleDocument)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vecs))
	}
	if inner.texts[0] != "passage: a" || inner.texts[1] != "passage: b" {
		t.Errorf("unexpected texts %v", inner.texts)
	}
}

func TestGateway_HealthCheck(t *testing.T) {
	inner := &recordingEmbedder{healthErr: errors.New("down")}
	g := NewGateway(inner, "passage: ", "query: ")

	if err := g.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health error")
	}

	plain := NewGateway(&plainMockEmbedder{}, "", "")
	if err := plain.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error for provider without health check")
	}
}
