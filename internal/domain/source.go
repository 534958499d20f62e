package domain

import (
	"fmt"
	"strings"
)

// Mode selects the chunking strategy for a source document
type Mode string

const (
	// ModeLaw splits on numbered article headers ("제N조(제목)").
	ModeLaw Mode = "law"
	// ModeSimple packs paragraphs by length.
	ModeSimple Mode = "simple"
)

// ParseMode converts a user-supplied string to a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeLaw, ModeSimple:
		return true
	}
	return false
}

// SourceDocument is the per-document input configuration. It is never mutated
// after loading.
type SourceDocument struct {
	RawName  string `yaml:"raw_name" json:"raw_name"`
	OutName  string `yaml:"out_name" json:"out_name"`
	Mode     Mode   `yaml:"mode" json:"mode"`
	IDPrefix string `yaml:"id_prefix" json:"id_prefix"`
	Category string `yaml:"category" json:"category"`
}

// ValidateSourceDocument validates a SourceDocument instance
func ValidateSourceDocument(d *SourceDocument) error {
	if d == nil {
		return fmt.Errorf("source document cannot be nil")
	}

	if strings.TrimSpace(d.RawName) == "" {
		return fmt.Errorf("%w: raw_name", ErrMissingRequiredField)
	}

	if strings.TrimSpace(d.OutName) == "" {
		return fmt.Errorf("%w: out_name", ErrMissingRequiredField)
	}

	if strings.TrimSpace(d.IDPrefix) == "" {
		return fmt.Errorf("%w: id_prefix", ErrMissingRequiredField)
	}

	if !d.Mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, d.Mode)
	}

	return nil
}
