package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/cloo-solutions/lexcorpus/internal/jsonl"
	"github.com/cloo-solutions/lexcorpus/internal/storage"
	"github.com/cloo-solutions/lexcorpus/internal/telemetry"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// TextExtractor pulls raw page text out of a source file.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// DocumentChunker turns raw text into finished chunk records.
type DocumentChunker interface {
	Process(raw string, doc domain.SourceDocument) ([]domain.ChunkRecord, error)
}

// ArtifactWriter stores serialized artifacts.
type ArtifactWriter interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Location(key string) string
}

// IndexJobCreator enqueues index jobs for written artifacts.
type IndexJobCreator interface {
	Create(ctx context.Context, job *domain.IndexJob) error
}

// DocumentResult is the outcome of one source document.
type DocumentResult struct {
	Source   string
	OutName  string
	Mode     domain.Mode
	Records  int
	Location string
	JobID    string
	Err      error
}

// RunSummary collects the outcome of every document of a run, in input order.
type RunSummary struct {
	Documents    []DocumentResult
	TotalRecords int
}

// Failed returns the number of documents that did not produce an artifact.
func (s *RunSummary) Failed() int {
	n := 0
	for _, d := range s.Documents {
		if d.Err != nil {
			n++
		}
	}
	return n
}

// PipelineOptions configures a PipelineService.
type PipelineOptions struct {
	InputDir string
	Workers  int
}

// PipelineService runs extraction, chunking and artifact writing for a set
// of source documents.
type PipelineService struct {
	extractor TextExtractor
	chunker   DocumentChunker
	store     ArtifactWriter
	jobs      IndexJobCreator
	uuidGen   UUIDGenerator
	inputDir  string
	workers   int
	now       func() time.Time
}

// NewPipelineService creates a new PipelineService instance
func NewPipelineService(extractor TextExtractor, chunker DocumentChunker, store ArtifactWriter, opts PipelineOptions) *PipelineService {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &PipelineService{
		extractor: extractor,
		chunker:   chunker,
		store:     store,
		uuidGen:   &DefaultUUIDGenerator{},
		inputDir:  opts.InputDir,
		workers:   workers,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithIndexJobs makes Run able to enqueue an index job per written artifact.
func (s *PipelineService) WithIndexJobs(jobs IndexJobCreator, uuidGen UUIDGenerator) *PipelineService {
	s.jobs = jobs
	if uuidGen != nil {
		s.uuidGen = uuidGen
	}
	return s
}

// Run processes docs concurrently. A failing document is recorded in the
// summary and does not stop the others; the returned error is only set when
// ctx is cancelled or enqueueing was requested without a job repository.
func (s *PipelineService) Run(ctx context.Context, docs []domain.SourceDocument, enqueue bool) (*RunSummary, error) {
	if enqueue && s.jobs == nil {
		return nil, domain.ErrIndexUnavailable
	}

	summary := &RunSummary{Documents: make([]DocumentResult, len(docs))}

	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i, doc := range docs {
		g.Go(func() error {
			summary.Documents[i] = s.processDocument(ctx, doc, enqueue)
			return nil
		})
	}
	_ = g.Wait()

	for _, d := range summary.Documents {
		summary.TotalRecords += d.Records
	}

	return summary, ctx.Err()
}

func (s *PipelineService) processDocument(ctx context.Context, doc domain.SourceDocument, enqueue bool) DocumentResult {
	result := DocumentResult{Source: doc.RawName, OutName: doc.OutName, Mode: doc.Mode}

	ctx, span := telemetry.StartSpan(ctx, "pipeline.document", telemetry.SpanAttributes{
		Source:    doc.RawName,
		Mode:      string(doc.Mode),
		Operation: "process",
	})
	defer span.End()

	fail := func(err error) DocumentResult {
		log.Printf("%s: %v", doc.RawName, err)
		span.SetError(err)
		result.Err = err
		return result
	}

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	raw, err := s.extractor.Extract(ctx, filepath.Join(s.inputDir, doc.RawName))
	if err != nil {
		return fail(fmt.Errorf("extract: %w", err))
	}
	telemetry.AddBreadcrumb(ctx, "pipeline", "extracted "+doc.RawName)

	records, err := s.chunker.Process(raw, doc)
	if err != nil {
		return fail(fmt.Errorf("chunk: %w", err))
	}

	data, err := jsonl.Marshal(records)
	if err != nil {
		return fail(fmt.Errorf("serialize: %w", err))
	}

	if err := s.store.Put(ctx, doc.OutName, data, storage.ContentTypeJSONL); err != nil {
		return fail(fmt.Errorf("write: %w", err))
	}
	result.Records = len(records)
	result.Location = s.store.Location(doc.OutName)
	span.SetData("records", len(records))
	log.Printf("%s: %d chunks -> %s", doc.RawName, len(records), result.Location)

	if enqueue {
		job := domain.NewIndexJob(s.uuidGen.NewString(), doc.RawName, doc.OutName, s.now())
		if err := s.jobs.Create(ctx, job); err != nil {
			return fail(fmt.Errorf("enqueue: %w", err))
		}
		result.JobID = job.ID
	}

	return result
}
