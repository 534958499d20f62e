// Package extract reads the raw text of a source document.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// Extractor turns a source file into raw page text. PDF pages are joined with
// a newline; plain text and markdown are read as UTF-8. The result is NFC
// composed so Hangul from decomposed fonts matches the chunker's patterns.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Supported reports whether path has an extension the extractor can read.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt", ".md":
		return true
	}
	return false
}

// Extract reads the text of the file at path.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.ErrSourceNotFound.WithCause(err)
		}
		return "", fmt.Errorf("failed to stat source: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", domain.ErrUnsupportedFormat, path)
	}

	var text string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = extractPDF(ctx, path)
	case ".txt", ".md":
		text, err = extractPlain(path)
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return "", err
	}

	return norm.NFC.String(text), nil
}

func extractPDF(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", domain.ErrExtractionFailed.WithCause(err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return "", domain.ErrExtractionFailed.WithCause(fmt.Errorf("page %d: %w", i, err))
		}
		pages = append(pages, content)
	}

	return strings.Join(pages, "\n"), nil
}

func extractPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read source: %w", err)
	}
	if !utf8.Valid(data) {
		return "", domain.ErrExtractionFailed.WithCause(errors.New("file is not valid UTF-8"))
	}
	return strings.TrimPrefix(string(data), "\uFEFF"), nil
}
