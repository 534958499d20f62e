package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/cloo-solutions/lexcorpus/internal/jsonl"
	"github.com/cloo-solutions/lexcorpus/internal/pagination"
	"github.com/cloo-solutions/lexcorpus/internal/telemetry"
	"github.com/cloo-solutions/lexcorpus/internal/textclean"
)

// MinIndexChars is the shortest text, in runes, that is worth embedding.
const MinIndexChars = 20

// EmbeddingClient defines the interface for embedding generation
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkFilters narrows a similarity search. Empty fields match everything.
type ChunkFilters struct {
	Category string
	Source   string
}

// ChunkPageResult is one page of indexed chunks of a source.
type ChunkPageResult struct {
	Items      []*domain.IndexedChunk
	NextCursor string
	HasMore    bool
}

// ChunkRepositoryInterface defines the repository interface for indexed chunks
type ChunkRepositoryInterface interface {
	ReplaceSource(ctx context.Context, source string, chunks []domain.IndexedChunk) error
	SearchByEmbedding(ctx context.Context, embedding []float32, filters ChunkFilters, limit int) ([]*domain.SearchResult, error)
	GetByID(ctx context.Context, id string) (*domain.IndexedChunk, error)
	ListBySource(ctx context.Context, source string, cursor *pagination.Cursor, limit int) (*ChunkPageResult, error)
}

// IndexJobRepositoryInterface defines the repository interface for index job persistence
type IndexJobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.IndexJob) error
	GetByID(ctx context.Context, id string) (*domain.IndexJob, error)
	UpdateStatus(ctx context.Context, id string, status domain.IndexJobStatus, errMsg string) error
}

// TxRepositories are repositories bound to one transaction.
type TxRepositories interface {
	Chunks() ChunkRepositoryInterface
	IndexJobs() IndexJobRepositoryInterface
}

// TxRunner runs fn in a transaction that commits only if fn returns nil.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}

// ArtifactReader reads JSONL artifacts written by the pipeline.
type ArtifactReader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// IndexResult reports what one indexing run loaded.
type IndexResult struct {
	Source      string
	ArtifactKey string
	Indexed     int
	Skipped     int
}

// IndexService embeds chunk artifacts and loads them into the vector index
type IndexService struct {
	store    ArtifactReader
	embedder EmbeddingClient
	txRunner TxRunner
	now      func() time.Time
}

// NewIndexService creates a new IndexService instance. embedder and
// txRunner may be nil when the corresponding backend is not configured.
func NewIndexService(store ArtifactReader, embedder EmbeddingClient, txRunner TxRunner) *IndexService {
	return &IndexService{
		store:    store,
		embedder: embedder,
		txRunner: txRunner,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// IndexArtifact replaces every indexed chunk of source with the records of
// the artifact stored under artifactKey.
func (s *IndexService) IndexArtifact(ctx context.Context, source, artifactKey string) (*IndexResult, error) {
	return s.index(ctx, source, artifactKey, "")
}

// IndexJob indexes the artifact a job points at. The job is marked completed
// in the same transaction that replaces the chunks.
func (s *IndexService) IndexJob(ctx context.Context, job *domain.IndexJob) (*IndexResult, error) {
	if err := domain.ValidateIndexJob(job); err != nil {
		return nil, err
	}
	return s.index(ctx, job.Source, job.ArtifactKey, job.ID)
}

func (s *IndexService) index(ctx context.Context, source, artifactKey, jobID string) (*IndexResult, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.txRunner == nil {
		return nil, domain.ErrIndexUnavailable
	}

	ctx, span := telemetry.StartSpan(ctx, "index.artifact", telemetry.SpanAttributes{
		Source:    source,
		JobID:     jobID,
		Operation: "index",
	})
	defer span.End()

	data, err := s.store.Get(ctx, artifactKey)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to read artifact %s: %w", artifactKey, err)
	}

	records, err := jsonl.ReadAll(bytes.NewReader(data))
	if err != nil {
		span.SetError(err)
		return nil, domain.ErrMalformedArtifactRecord.WithCause(err)
	}

	result := &IndexResult{Source: source, ArtifactKey: artifactKey}
	kept := make([]domain.ChunkRecord, 0, len(records))
	for _, rec := range records {
		if textclean.RuneLen(rec.Text) < MinIndexChars {
			result.Skipped++
			continue
		}
		kept = append(kept, rec)
	}

	texts := make([]string, len(kept))
	for i, rec := range kept {
		texts[i] = rec.Text
	}

	var embeddings [][]float32
	if len(texts) > 0 {
		embeddings, err = s.embedder.GenerateEmbeddings(ctx, texts)
		if err != nil {
			span.SetError(err)
			return nil, fmt.Errorf("failed to embed %s: %w", source, err)
		}
	}

	indexedAt := s.now()
	chunks := make([]domain.IndexedChunk, len(kept))
	for i, rec := range kept {
		chunks[i] = domain.IndexedChunk{
			ChunkRecord: rec,
			Seq:         i,
			Embedding:   embeddings[i],
			IndexedAt:   indexedAt,
		}
	}

	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Chunks().ReplaceSource(ctx, source, chunks); err != nil {
			return fmt.Errorf("failed to replace chunks of %s: %w", source, err)
		}
		if jobID != "" {
			if err := repos.IndexJobs().UpdateStatus(ctx, jobID, domain.IndexJobStatusCompleted, ""); err != nil {
				return fmt.Errorf("failed to complete index job: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	result.Indexed = len(chunks)
	span.SetData("indexed", result.Indexed)
	log.Printf("indexed %s: %d chunks (%d skipped)", source, result.Indexed, result.Skipped)
	return result, nil
}
