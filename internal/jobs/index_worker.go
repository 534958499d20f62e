package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/cloo-solutions/lexcorpus/internal/service"
	"github.com/cloo-solutions/lexcorpus/internal/telemetry"
)

const (
	// MaxRetries is the maximum number of retries for a failed job
	MaxRetries = 3
	// ClaimBatchSize is the number of jobs claimed per poll
	ClaimBatchSize = 5
)

// IndexJobRepository defines the interface for index job persistence
type IndexJobRepository interface {
	// ClaimPending retrieves and claims pending index jobs
	ClaimPending(ctx context.Context, limit int) ([]*domain.IndexJob, error)

	// UpdateStatus updates the status of an index job
	UpdateStatus(ctx context.Context, jobID string, status domain.IndexJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, jobID string) error
}

// Indexer loads the artifact of a job into the vector index and marks the
// job completed.
type Indexer interface {
	IndexJob(ctx context.Context, job *domain.IndexJob) (*service.IndexResult, error)
}

// IndexWorker processes index jobs
type IndexWorker struct {
	repo    IndexJobRepository
	indexer Indexer
}

// NewIndexWorker creates a new IndexWorker instance
func NewIndexWorker(repo IndexJobRepository, indexer Indexer) *IndexWorker {
	return &IndexWorker{
		repo:    repo,
		indexer: indexer,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *IndexWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.ClaimPending(ctx, ClaimBatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Printf("Processing %d pending index jobs", len(jobs))

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			log.Printf("Error processing job %s: %v", job.ID, err)
		}
	}

	return nil
}

func (w *IndexWorker) processJob(ctx context.Context, job *domain.IndexJob) error {
	log.Printf("Processing job %s for %s (%s)", job.ID, job.Source, job.ArtifactKey)

	result, err := w.indexer.IndexJob(ctx, job)
	if err != nil {
		telemetry.CaptureError(ctx, fmt.Errorf("index job %s: %w", job.ID, err))
		return w.handleJobFailure(ctx, job, err)
	}

	log.Printf("Job %s completed successfully (%d chunks)", job.ID, result.Indexed)
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *IndexWorker) handleJobFailure(ctx context.Context, job *domain.IndexJob, jobErr error) error {
	log.Printf("Job %s failed: %v", job.ID, jobErr)

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("Job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.IndexJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Printf("Job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.UpdateStatus(ctx, job.ID, domain.IndexJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
