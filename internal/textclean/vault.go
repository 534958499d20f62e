package textclean

import (
	"regexp"
	"strings"
)

// Placeholders are built only from Private Use Area runes: no repair or split
// pattern matches them, and StripControl deletes any that leak.
const (
	markerOpen  = '\uF8F0'
	markerClose = '\uF8F1'
	markerDigit = 0xE000
	markerRadix = 256
)

var placeholderPattern = regexp.MustCompile(`\x{F8F0}[\x{E000}-\x{E0FF}]+\x{F8F1}`)

// Vault swaps spans of text for opaque placeholders so a transform cannot
// touch them, then puts them back.
//
// When a pattern declares a named group "span", only that group is protected
// and the rest of the match stays visible. This is how trailing word-boundary
// characters are matched without being hidden.
type Vault struct {
	spans []string
}

// NewVault returns an empty vault.
func NewVault() *Vault {
	return &Vault{}
}

// Protect hides every match of re, restoring it verbatim later.
func (v *Vault) Protect(text string, re *regexp.Regexp) string {
	return v.protect(text, re, nil)
}

// ProtectAs hides every match of re and restores it as canonical.
func (v *Vault) ProtectAs(text string, re *regexp.Regexp, canonical string) string {
	return v.protect(text, re, func(string) string { return canonical })
}

func (v *Vault) protect(text string, re *regexp.Regexp, canon func(string) string) string {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	group := re.SubexpIndex("span")

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if group > 0 && m[2*group] >= 0 {
			start, end = m[2*group], m[2*group+1]
		}
		span := text[start:end]
		if canon != nil {
			span = canon(span)
		}
		b.WriteString(text[last:start])
		b.WriteString(v.stash(span))
		last = end
	}
	b.WriteString(text[last:])

	return b.String()
}

func (v *Vault) stash(span string) string {
	idx := len(v.spans)
	v.spans = append(v.spans, span)
	return placeholder(idx)
}

// Restore replaces every placeholder with its span. Placeholders the vault
// does not know are dropped.
func (v *Vault) Restore(text string) string {
	if !strings.ContainsRune(text, markerOpen) {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(m string) string {
		idx := placeholderIndex(m)
		if idx < 0 || idx >= len(v.spans) {
			return ""
		}
		// A span protected later may contain an earlier placeholder.
		return v.Restore(v.spans[idx])
	})
}

// Len reports how many spans the vault holds.
func (v *Vault) Len() int {
	return len(v.spans)
}

func placeholder(idx int) string {
	var b strings.Builder
	b.WriteRune(markerOpen)
	for {
		b.WriteRune(rune(markerDigit + idx%markerRadix))
		idx /= markerRadix
		if idx == 0 {
			break
		}
	}
	b.WriteRune(markerClose)
	return b.String()
}

func placeholderIndex(m string) int {
	runes := []rune(m)
	if len(runes) < 3 {
		return -1
	}
	digits := runes[1 : len(runes)-1]
	idx := 0
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i]) - markerDigit
		if d < 0 || d >= markerRadix {
			return -1
		}
		idx = idx*markerRadix + d
	}
	return idx
}

// HasPlaceholder reports whether text still carries a vault placeholder.
func HasPlaceholder(text string) bool {
	return placeholderPattern.MatchString(text)
}

// Guard names spans a transform must not touch. A non-empty Canonical is
// restored in place of the original span.
type Guard struct {
	Pattern   *regexp.Regexp
	Canonical string
}

// Shield protects every guard's spans (in order), runs transform, and restores
// the protected spans.
func Shield(text string, guards []Guard, transform func(string) string) string {
	v := NewVault()
	for _, g := range guards {
		if g.Canonical != "" {
			text = v.ProtectAs(text, g.Pattern, g.Canonical)
		} else {
			text = v.Protect(text, g.Pattern)
		}
	}
	return v.Restore(transform(text))
}
