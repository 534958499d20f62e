// Package chunker splits normalized document text into retrieval-sized
// ChunkRecords. It performs no I/O and holds no mutable package state.
package chunker

import (
	"fmt"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/cloo-solutions/lexcorpus/internal/textclean"
)

// Config holds chunk sizing limits, all measured in runes.
type Config struct {
	MaxChars       int // upper bound for every emitted text
	MinChars       int // finished texts shorter than this are dropped
	SimpleMinChars int // a simple-mode buffer is flushed only once it reaches this size
	TitleChars     int // simple-mode title length
}

// DefaultConfig returns the limits used to build the corpus.
func DefaultConfig() Config {
	return Config{
		MaxChars:       500,
		MinChars:       20,
		SimpleMinChars: 300,
		TitleChars:     50,
	}
}

// Chunker turns normalized text into ChunkRecords. It is safe for concurrent
// use.
type Chunker struct {
	cfg Config
}

// New creates a Chunker. Non-positive limits fall back to DefaultConfig.
func New(cfg Config) *Chunker {
	def := DefaultConfig()
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = def.MaxChars
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = def.MinChars
	}
	if cfg.SimpleMinChars <= 0 {
		cfg.SimpleMinChars = def.SimpleMinChars
	}
	if cfg.TitleChars <= 0 {
		cfg.TitleChars = def.TitleChars
	}
	if cfg.MinChars > cfg.MaxChars {
		cfg.MinChars = cfg.MaxChars
	}
	return &Chunker{cfg: cfg}
}

// Config returns the effective limits.
func (c *Chunker) Config() Config {
	return c.cfg
}

// Process normalizes raw page text and chunks it with the document's mode.
func (c *Chunker) Process(raw string, doc domain.SourceDocument) ([]domain.ChunkRecord, error) {
	return c.Chunk(textclean.Normalize(raw), doc)
}

// Chunk dispatches already normalized text to the document's strategy.
func (c *Chunker) Chunk(text string, doc domain.SourceDocument) ([]domain.ChunkRecord, error) {
	switch doc.Mode {
	case domain.ModeLaw:
		return c.Structured(text, doc), nil
	case domain.ModeSimple:
		return c.Simple(text, doc), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMode, doc.Mode)
	}
}

// sequence numbers records "{prefix}_0001", "{prefix}_0002", ... within one call.
type sequence struct {
	prefix string
	n      int
}

func (s *sequence) next() string {
	s.n++
	return fmt.Sprintf("%s_%04d", s.prefix, s.n)
}

// finalize finishes a candidate and enforces the size bounds. A finished text
// that grew past MaxChars is split again, each piece finished on its own, and
// anything still too long is cut into even slices.
func (c *Chunker) finalize(candidate string) []string {
	text := textclean.Finish(candidate)
	n := textclean.RuneLen(text)
	if n <= c.cfg.MaxChars {
		if n < c.cfg.MinChars {
			return nil
		}
		return []string{text}
	}

	var out []string
	for _, piece := range c.pack(text, "\n\n", 0) {
		for _, s := range sliceEven(textclean.Finish(piece), c.cfg.MaxChars) {
			if textclean.RuneLen(s) >= c.cfg.MinChars {
				out = append(out, s)
			}
		}
	}
	return out
}
