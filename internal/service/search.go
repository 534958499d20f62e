package service

import (
	"context"
	"strings"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/cloo-solutions/lexcorpus/internal/pagination"
	"github.com/cloo-solutions/lexcorpus/internal/telemetry"
)

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
	DefaultPageLimit   = 50
	MaxPageLimit       = 200
)

// SearchService answers retrieval queries against the vector index
type SearchService struct {
	chunks   ChunkRepositoryInterface
	embedder EmbeddingClient
}

// NewSearchService creates a new SearchService. embedder may be nil, in which
// case Search reports the embedding provider as unavailable.
func NewSearchService(chunks ChunkRepositoryInterface, embedder EmbeddingClient) *SearchService {
	return &SearchService{chunks: chunks, embedder: embedder}
}

// Search embeds the query and returns the most similar chunks.
func (s *SearchService) Search(ctx context.Context, q domain.SearchQuery) ([]*domain.SearchResult, error) {
	query := strings.TrimSpace(q.Query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	ctx, span := telemetry.StartSpan(ctx, "search.query", telemetry.SpanAttributes{
		Source:    q.Source,
		Operation: "search",
	})
	defer span.End()

	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	results, err := s.chunks.SearchByEmbedding(ctx, embedding, ChunkFilters{
		Category: q.Category,
		Source:   q.Source,
	}, clampLimit(q.Limit, DefaultSearchLimit, MaxSearchLimit))
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	span.SetData("results", len(results))
	return results, nil
}

// GetChunk returns one indexed chunk by id.
func (s *SearchService) GetChunk(ctx context.Context, id string) (*domain.IndexedChunk, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrMissingRequiredField
	}
	return s.chunks.GetByID(ctx, id)
}

// ListSourceChunks pages through the chunks of a source in artifact order.
func (s *SearchService) ListSourceChunks(ctx context.Context, source, cursor string, limit int) (*ChunkPageResult, error) {
	if strings.TrimSpace(source) == "" {
		return nil, domain.ErrMissingRequiredField
	}

	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	return s.chunks.ListBySource(ctx, source, decoded, clampLimit(limit, DefaultPageLimit, MaxPageLimit))
}

func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}
