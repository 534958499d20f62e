package pagination

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
)

// Cursor represents a decoded pagination cursor
type Cursor struct {
	LastID  string
	LastSeq int
}

// PageResult represents a paginated result set
type PageResult[T any] struct {
	Items   []T    `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

// ErrInvalidCursor is returned for cursors that were not produced by EncodeCursor.
var ErrInvalidCursor = domain.ErrInvalidCursor

// EncodeCursor creates a base64-encoded cursor from the last item ID and its position
func EncodeCursor(lastID string, seq int) string {
	if lastID == "" {
		return ""
	}
	raw := lastID + "|" + strconv.Itoa(seq)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor decodes a base64-encoded cursor and returns the last ID and position
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	idx := strings.LastIndex(string(decoded), "|")
	if idx <= 0 {
		return nil, ErrInvalidCursor
	}

	seq, err := strconv.Atoi(string(decoded[idx+1:]))
	if err != nil || seq < 0 {
		return nil, ErrInvalidCursor
	}

	return &Cursor{
		LastID:  string(decoded[:idx]),
		LastSeq: seq,
	}, nil
}

// CreateNextCursor creates a cursor for the next page based on the last item
// Returns empty string if there are no more items
func CreateNextCursor[T any](items []T, limit int, getID func(T) string, getSeq func(T) int) string {
	if len(items) == 0 || len(items) < limit {
		return ""
	}
	lastItem := items[len(items)-1]
	return EncodeCursor(getID(lastItem), getSeq(lastItem))
}
