// Package sources loads the per-document configuration of a corpus run.
package sources

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"gopkg.in/yaml.v3"
)

// Manifest is the YAML document listing the source documents of a corpus.
type Manifest struct {
	Sources []domain.SourceDocument `yaml:"sources"`
}

// Default returns the built-in manifest: the six documents of the
// inheritance corpus.
func Default() Manifest {
	return Manifest{Sources: []domain.SourceDocument{
		{
			RawName:  "1. 민법 상속편.pdf",
			OutName:  "1_minbeob_sangsok_chunks.jsonl",
			Mode:     domain.ModeLaw,
			IDPrefix: "minlaw",
			Category: "법령_민법_상속",
		},
		{
			RawName:  "2. 국세청-상속·증여 세금상식1.pdf",
			OutName:  "2_segeumsangsik_I_simple.jsonl",
			Mode:     domain.ModeSimple,
			IDPrefix: "tax1",
			Category: "세금_안내",
		},
		{
			RawName:  "3. 국세청-상속·증여 세금상식Ⅱ.pdf",
			OutName:  "3_segeumsangsik_II_simple.jsonl",
			Mode:     domain.ModeSimple,
			IDPrefix: "tax2",
			Category: "세금_안내",
		},
		{
			RawName:  "4. 사망자 및 피후견인 등 재산조회 통합처리 신청(안심상속)웹스크래핑.pdf",
			OutName:  "4_ansimsangsok_web_simple.jsonl",
			Mode:     domain.ModeSimple,
			IDPrefix: "ansim",
			Category: "안심상속_안내",
		},
		{
			RawName:  "5. 사망자 및 피후견인 등 재산조회 통합처리에 관한 기준(행정안전).pdf",
			OutName:  "5_jaesanjohoe_rule_chunks.jsonl",
			Mode:     domain.ModeLaw,
			IDPrefix: "rule",
			Category: "행정기준",
		},
		{
			RawName:  "6. 상속세 및 증여세법.pdf",
			OutName:  "6_sangsokse_beob_chunks.jsonl",
			Mode:     domain.ModeLaw,
			IDPrefix: "taxlaw",
			Category: "법령_상속세증여세",
		},
	}}
}

// Load reads a manifest from path. An empty path returns Default.
func Load(path string) (Manifest, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Manifest{}, fmt.Errorf("sources file %s: %w", path, domain.ErrSourceNotFound.WithCause(err))
		}
		return Manifest{}, fmt.Errorf("failed to read sources file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML manifest.
func Parse(data []byte) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse sources file: %w", err)
	}

	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Validate checks every entry and rejects duplicate id prefixes and output
// names, which would make record ids or artifacts collide.
func (m Manifest) Validate() error {
	if len(m.Sources) == 0 {
		return fmt.Errorf("%w: sources", domain.ErrMissingRequiredField)
	}

	prefixes := make(map[string]string, len(m.Sources))
	outputs := make(map[string]string, len(m.Sources))
	for i := range m.Sources {
		d := &m.Sources[i]
		if err := domain.ValidateSourceDocument(d); err != nil {
			return fmt.Errorf("source %d (%s): %w", i+1, d.RawName, err)
		}
		if other, ok := prefixes[d.IDPrefix]; ok {
			return fmt.Errorf("%w: %q used by %s and %s", domain.ErrDuplicateIDPrefix, d.IDPrefix, other, d.RawName)
		}
		prefixes[d.IDPrefix] = d.RawName
		if other, ok := outputs[d.OutName]; ok {
			return fmt.Errorf("%w: %q used by %s and %s", domain.ErrDuplicateOutName, d.OutName, other, d.RawName)
		}
		outputs[d.OutName] = d.RawName
	}
	return nil
}

// Filter keeps the documents whose id prefix or raw name is listed in only.
// An empty list keeps everything. Unknown names are an error.
func (m Manifest) Filter(only []string) (Manifest, error) {
	if len(only) == 0 {
		return m, nil
	}

	want := make(map[string]bool, len(only))
	for _, name := range only {
		want[strings.TrimSpace(name)] = true
	}

	var out Manifest
	for _, d := range m.Sources {
		if want[d.IDPrefix] || want[d.RawName] {
			out.Sources = append(out.Sources, d)
			delete(want, d.IDPrefix)
			delete(want, d.RawName)
		}
	}
	for name := range want {
		return Manifest{}, fmt.Errorf("%w: %s", domain.ErrSourceNotFound, name)
	}
	return out, nil
}

// Lookup finds a document by id prefix or raw name.
func (m Manifest) Lookup(name string) (domain.SourceDocument, bool) {
	for _, d := range m.Sources {
		if d.IDPrefix == name || d.RawName == name {
			return d, true
		}
	}
	return domain.SourceDocument{}, false
}

// Marshal encodes the manifest as YAML.
func (m Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode sources: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode sources: %w", err)
	}
	return buf.Bytes(), nil
}
