package storage

import (
	"context"
	"time"
)

// ArtifactStore holds JSONL artifacts by key. Keys are flat file names such
// as "1_minbeob_sangsok_chunks.jsonl".
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Head(ctx context.Context, key string) (*ObjectMetadata, error)
	// Location describes where key lives, for logs and run summaries.
	Location(key string) string
}

// ObjectMetadata contains metadata about a stored artifact
type ObjectMetadata struct {
	ContentLength int64
	ContentType   string
	ETag          string
	LastModified  time.Time
}

// ContentTypeJSONL is the content type used for chunk artifacts.
const ContentTypeJSONL = "application/x-ndjson"
