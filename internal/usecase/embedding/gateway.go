package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/pagerag/internal/domain"
)

// Gateway embeds text for a role: pages go through the document chain, questions through the query chain.
// Nothing is cached; every call reaches the provider.
type Gateway struct {
	document *domain.InstructionEmbedder
	query    *domain.InstructionEmbedder
	health   domain.HealthChecker
}

// NewGateway wraps inner with the document and query prefixes.
func NewGateway(inner domain.Embedder, documentPrefix, queryPrefix string) *Gateway {
	g := &Gateway{
		document: domain.NewInstructionEmbedder(inner, documentPrefix),
		query:    domain.NewInstructionEmbedder(inner, queryPrefix),
	}
	if hc, ok := inner.(domain.HealthChecker); ok {
		g.health = hc
	}
	return g
}

// Embed returns the vector for text under the given role.
func (g *Gateway) Embed(ctx context.Context, text string, role domain.Role) ([]float32, error) {
	emb, err := g.chain(role)
	if err != nil {
		return nil, err
	}
	res, err := emb.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", role, err)
	}
	return res.Embedding, nil
}

// EmbedBatch returns one vector per text, in input order, under the given role.
func (g *Gateway) EmbedBatch(ctx context.Context, texts []string, role domain.Role) ([][]float32, error) {
	emb, err := g.chain(role)
	if err != nil {
		return nil, err
	}
	res, err := emb.BatchEmbed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d %s texts: %w", len(texts), role, err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d: %w",
			len(texts), len(res.Embeddings), domain.ErrEmbeddingProviderError)
	}
	return res.Embeddings, nil
}

// HealthCheck probes the underlying provider when it supports it.
func (g *Gateway) HealthCheck(ctx context.Context) error {
	if g.health == nil {
		return errors.New("embedding provider has no health check")
	}
	if err := g.health.HealthCheck(ctx); err != nil {
		return fmt.Errorf("embedding health: %w", err)
	}
	return nil
}

func (g *Gateway) chain(role domain.Role) (*domain.InstructionEmbedder, error) {
	switch role {
	case domain.RoleDocument:
		return g.document, nil
	case domain.RoleQuery:
		return g.query, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownRole, role)
	}
}
