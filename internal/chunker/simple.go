package chunker

import (
	"strings"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/cloo-solutions/lexcorpus/internal/textclean"
)

var titleBlanks = strings.NewReplacer("\n", " ", "\t", " ")

// Simple chunks unstructured prose by packing paragraphs. Candidates shorter
// than SimpleMinChars are dropped, so a document of only short paragraphs
// yields nothing.
func (c *Chunker) Simple(text string, doc domain.SourceDocument) []domain.ChunkRecord {
	seq := &sequence{prefix: doc.IDPrefix}

	var records []domain.ChunkRecord
	for _, candidate := range c.pack(text, " ", c.cfg.SimpleMinChars) {
		for _, body := range c.finalize(candidate) {
			records = append(records, domain.ChunkRecord{
				ID:       seq.next(),
				Title:    c.simpleTitle(body),
				Text:     body,
				Source:   doc.RawName,
				Category: doc.Category,
			})
		}
	}
	return records
}

func (c *Chunker) simpleTitle(body string) string {
	runes := []rune(body)
	if len(runes) > c.cfg.TitleChars {
		runes = runes[:c.cfg.TitleChars]
	}
	title := titleBlanks.Replace(string(runes))
	return strings.TrimSpace(textclean.StripControl(title))
}
