package domain

import (
	"fmt"
	"time"
)

// IndexJobStatus represents the status of an index job
type IndexJobStatus string

const (
	IndexJobStatusPending    IndexJobStatus = "pending"
	IndexJobStatusProcessing IndexJobStatus = "processing"
	IndexJobStatusCompleted  IndexJobStatus = "completed"
	IndexJobStatusFailed     IndexJobStatus = "failed"
)

// IndexJob asks the worker to embed one JSONL artifact and load it into the
// vector index.
type IndexJob struct {
	ID          string
	Source      string // raw_name of the source document
	ArtifactKey string // key of the JSONL artifact in the artifact store
	Status      IndexJobStatus
	Retries     int32
	Error       string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// NewIndexJob creates a pending IndexJob instance
func NewIndexJob(id, source, artifactKey string, createdAt time.Time) *IndexJob {
	return &IndexJob{
		ID:          id,
		Source:      source,
		ArtifactKey: artifactKey,
		Status:      IndexJobStatusPending,
		CreatedAt:   createdAt,
	}
}

// ValidateIndexJob validates an IndexJob instance
func ValidateIndexJob(j *IndexJob) error {
	if j == nil {
		return fmt.Errorf("index job cannot be nil")
	}

	if j.ID == "" {
		return fmt.Errorf("index job ID is required")
	}

	if j.Source == "" {
		return fmt.Errorf("index job Source is required")
	}

	if j.ArtifactKey == "" {
		return fmt.Errorf("index job ArtifactKey is required")
	}

	if !isValidIndexJobStatus(j.Status) {
		return fmt.Errorf("%w: %s", ErrInvalidIndexJobStatus, j.Status)
	}

	if j.Retries < 0 {
		return fmt.Errorf("index job Retries cannot be negative")
	}

	return nil
}

func isValidIndexJobStatus(s IndexJobStatus) bool {
	switch s {
	case IndexJobStatusPending, IndexJobStatusProcessing,
		IndexJobStatusCompleted, IndexJobStatusFailed:
		return true
	}
	return false
}

// ParseIndexJobStatus converts s to an IndexJobStatus. The empty string is
// accepted and means "any status".
func ParseIndexJobStatus(s string) (IndexJobStatus, error) {
	status := IndexJobStatus(s)
	if s == "" || isValidIndexJobStatus(status) {
		return status, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidIndexJobStatus, s)
}
