package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError with the same code and message, so a
// sentinel wrapped with a cause still satisfies errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithCause returns a copy of e carrying err as its cause.
func (e *DomainError) WithCause(err error) *DomainError {
	return NewDomainErrorWithCause(e.Code, e.Message, err)
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeUnavailable   = "UNAVAILABLE"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidMode             = NewDomainError(ErrCodeValidation, "invalid chunking mode")
	ErrInvalidIndexJobStatus   = NewDomainError(ErrCodeValidation, "invalid index job status")
	ErrMissingRequiredField    = NewDomainError(ErrCodeValidation, "missing required field")
	ErrDuplicateIDPrefix       = NewDomainError(ErrCodeValidation, "duplicate id prefix")
	ErrDuplicateOutName        = NewDomainError(ErrCodeValidation, "duplicate output name")
	ErrUnsupportedFormat       = NewDomainError(ErrCodeValidation, "unsupported source format")
	ErrEmptyQuery              = NewDomainError(ErrCodeValidation, "query is required")
	ErrInvalidCursor           = NewDomainError(ErrCodeValidation, "invalid cursor")
	ErrMalformedArtifactRecord = NewDomainError(ErrCodeValidation, "malformed artifact record")
	ErrChunkIDConflict         = NewDomainError(ErrCodeValidation, "chunk id already in use")
)

// Not found errors
var (
	ErrSourceNotFound   = NewDomainError(ErrCodeNotFound, "source document not found")
	ErrChunkNotFound    = NewDomainError(ErrCodeNotFound, "chunk not found")
	ErrArtifactNotFound = NewDomainError(ErrCodeNotFound, "artifact not found")
	ErrIndexJobNotFound = NewDomainError(ErrCodeNotFound, "index job not found")
)

// Authorization errors
var (
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)

// Unavailable errors are returned when an optional backend is not configured.
var (
	ErrIndexUnavailable     = NewDomainError(ErrCodeUnavailable, "vector index is not configured")
	ErrEmbeddingUnavailable = NewDomainError(ErrCodeUnavailable, "embedding provider is not configured")
)

// Internal errors
var (
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "storage operation failed")
	ErrExtractionFailed     = NewDomainError(ErrCodeInternalError, "text extraction failed")
)
