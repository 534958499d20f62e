// Package textclean repairs text extracted from legal and administrative PDFs.
//
// Normalize runs once over a whole document before chunking. Finish runs over
// every chunk after splitting and applies the corpus-specific repairs that would
// produce false positives if they ran document-wide.
package textclean

import (
	"strings"
	"unicode/utf8"
)

func isHangul(r rune) bool {
	return r >= 0xAC00 && r <= 0xD7A3
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isPrivateUse(r rune) bool {
	return r >= 0xE000 && r <= 0xF8FF
}

// StripControl removes C0 and C1 control characters, except newline, tab and
// carriage return, and every Private Use Area character.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			return r
		case r < 0x20, r >= 0x7F && r <= 0x9F:
			return -1
		case isPrivateUse(r):
			return -1
		}
		return r
	}, s)
}

// HealLineBreaks deletes runs of newlines that sit between two Hangul
// syllables or between two digits. Page layout wraps words and numbers
// mid-token; "상\n속" becomes "상속" and "제1\n\n2조" becomes "제12조".
func HealLineBreaks(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	prev := utf8.RuneError
	for i := 0; i < len(s); {
		if s[i] != '\n' {
			r, size := utf8.DecodeRuneInString(s[i:])
			b.WriteString(s[i : i+size])
			prev = r
			i += size
			continue
		}

		j := i
		for j < len(s) && s[j] == '\n' {
			j++
		}
		if j < len(s) {
			next, _ := utf8.DecodeRuneInString(s[j:])
			if joinable(prev, next) {
				i = j
				continue
			}
		}
		b.WriteString(s[i:j])
		prev = '\n'
		i = j
	}

	return b.String()
}

func joinable(a, b rune) bool {
	return (isHangul(a) && isHangul(b)) || (isDigit(a) && isDigit(b))
}

// RuneLen reports the length of s in code points. Every size limit in the
// corpus is expressed in characters, never bytes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
