// Package jsonl reads and writes chunk artifacts, one JSON object per line.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
)

// maxLineBytes bounds a single artifact line. Records are at most a few
// kilobytes; the limit only protects against corrupt input.
const maxLineBytes = 4 << 20

// Writer encodes ChunkRecords as JSON lines without escaping non-ASCII or
// HTML characters.
type Writer struct {
	enc *json.Encoder
	n   int
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Writer{enc: enc}
}

// Write encodes one record followed by a newline.
func (w *Writer) Write(rec domain.ChunkRecord) error {
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.ID, err)
	}
	w.n++
	return nil
}

// Count returns how many records have been written.
func (w *Writer) Count() int {
	return w.n
}

// Marshal encodes records into a complete artifact body.
func Marshal(records []domain.ChunkRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// LineError reports an artifact line that is not a valid record.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Scan calls fn for every line of r. Blank lines are skipped. A line that does
// not decode is passed to onError and scanning continues; a nil onError stops
// at the first bad line and returns its LineError.
func Scan(r io.Reader, fn func(line int, rec domain.ChunkRecord) error, onError func(*LineError)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		var rec domain.ChunkRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			lerr := &LineError{Line: line, Err: fmt.Errorf("%w: %v", domain.ErrMalformedArtifactRecord, err)}
			if onError == nil {
				return lerr
			}
			onError(lerr)
			continue
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read artifact: %w", err)
	}
	return nil
}

// ReadAll decodes every record of r, failing on the first malformed line.
func ReadAll(r io.Reader) ([]domain.ChunkRecord, error) {
	var records []domain.ChunkRecord
	err := Scan(r, func(_ int, rec domain.ChunkRecord) error {
		records = append(records, rec)
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return records, nil
}
