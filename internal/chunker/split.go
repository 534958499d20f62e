package chunker

import (
	"regexp"
	"sort"
	"strings"

	"github.com/cloo-solutions/lexcorpus/internal/textclean"
)

var (
	tagSpan  = regexp.MustCompile(`<[^>]+>|\[[^\]]+\]`)
	dateSpan = regexp.MustCompile(`[0-9]{4}\.\s*[0-9]{1,2}\.\s*[0-9]{1,2}\.`)

	sentenceEnd      = regexp.MustCompile(`[.!?。]\s+`)
	clauseComma      = regexp.MustCompile(`[,，]\s+`)
	clauseConnective = regexp.MustCompile(`그리고|또는|및`)
)

// packer greedily joins units into buffers of at most limit runes. A buffer
// is emitted only if it holds at least floor runes; a shorter one is
// discarded when it overflows or is flushed.
type packer struct {
	limit int
	floor int
	buf   string
	out   []string
}

func (p *packer) add(unit, sep string) {
	if p.buf == "" {
		p.buf = unit
		return
	}
	if textclean.RuneLen(p.buf)+textclean.RuneLen(sep)+textclean.RuneLen(unit) <= p.limit {
		p.buf = p.buf + sep + unit
		return
	}
	p.flush()
	p.buf = unit
}

func (p *packer) flush() {
	if strings.TrimSpace(p.buf) != "" && textclean.RuneLen(p.buf) >= p.floor {
		p.out = append(p.out, p.buf)
	}
	p.buf = ""
}

// pack splits text into paragraphs and packs them. Paragraphs longer than
// MaxChars flush the buffer and are broken into sentence and clause units,
// which are packed with single spaces.
func (c *Chunker) pack(text, paraSep string, floor int) []string {
	p := &packer{limit: c.cfg.MaxChars, floor: floor}
	for _, para := range paragraphs(text) {
		if textclean.RuneLen(para) > c.cfg.MaxChars {
			p.flush()
			for _, unit := range splitUnits(para, c.cfg.MaxChars) {
				p.add(unit, " ")
			}
			continue
		}
		p.add(para, paraSep)
	}
	p.flush()
	return p.out
}

func paragraphs(text string) []string {
	var out []string
	for _, part := range strings.Split(text, "\n\n") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitUnits breaks one paragraph into sentences, sentences longer than limit
// into clauses, and clauses longer than limit into even slices. Tags and
// dates are shielded so their inner punctuation never ends a sentence.
func splitUnits(para string, limit int) []string {
	v := textclean.NewVault()
	shielded := v.Protect(para, tagSpan)
	shielded = v.Protect(shielded, dateSpan)

	var units []string
	for _, sentence := range cutAfter(shielded, sentenceEnd) {
		if s := strings.TrimSpace(v.Restore(sentence)); textclean.RuneLen(s) <= limit {
			if s != "" {
				units = append(units, s)
			}
			continue
		}
		for _, clause := range splitClauses(sentence) {
			cl := strings.TrimSpace(v.Restore(clause))
			if cl == "" {
				continue
			}
			units = append(units, sliceEven(cl, limit)...)
		}
	}
	return units
}

// cutAfter splits s after every match of re.
func cutAfter(s string, re *regexp.Regexp) []string {
	cuts := make([]int, 0, 8)
	for _, m := range re.FindAllStringIndex(s, -1) {
		cuts = append(cuts, m[1])
	}
	return cutAt(s, cuts)
}

// splitClauses cuts after a comma followed by whitespace and before a
// coordinating word.
func splitClauses(s string) []string {
	var cuts []int
	for _, m := range clauseComma.FindAllStringIndex(s, -1) {
		cuts = append(cuts, m[1])
	}
	for _, m := range clauseConnective.FindAllStringIndex(s, -1) {
		cuts = append(cuts, m[0])
	}
	sort.Ints(cuts)
	return cutAt(s, cuts)
}

func cutAt(s string, cuts []int) []string {
	var out []string
	last := 0
	for _, cut := range cuts {
		if cut <= last || cut >= len(s) {
			continue
		}
		if piece := strings.TrimSpace(s[last:cut]); piece != "" {
			out = append(out, piece)
		}
		last = cut
	}
	if piece := strings.TrimSpace(s[last:]); piece != "" {
		out = append(out, piece)
	}
	return out
}

// sliceEven cuts s into the fewest equal slices of at most limit runes.
func sliceEven(s string, limit int) []string {
	runes := []rune(s)
	if len(runes) <= limit {
		if s = strings.TrimSpace(s); s == "" {
			return nil
		}
		return []string{s}
	}

	parts := (len(runes) + limit - 1) / limit
	size := (len(runes) + parts - 1) / parts

	out := make([]string, 0, parts)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			out = append(out, piece)
		}
	}
	return out
}
