package textclean

import (
	"regexp"
	"strings"
)

var (
	lineEndings  = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\f", "\n")
	manyNewlines = regexp.MustCompile(`\n{3,}`)
	blankRuns    = regexp.MustCompile(`[ \t]+`)
)

// Normalize cleans raw extracted text at document level.
//
// Afterwards the text holds no control or Private Use characters, no carriage
// returns or form feeds, no run of three or more newlines, no run of spaces or
// tabs, and no leading or trailing whitespace. Paragraph breaks ("\n\n")
// survive; a lone newline is a layout wrap and becomes a space.
func Normalize(raw string) string {
	text := StripControl(raw)
	text = lineEndings.Replace(text)
	text = HealLineBreaks(text)
	text = manyNewlines.ReplaceAllString(text, "\n\n")
	text = unwrapLines(text)
	text = manyNewlines.ReplaceAllString(text, "\n\n")
	text = blankRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// unwrapLines turns every single newline, one not adjacent to another
// newline, into a space.
func unwrapLines(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] != '\n' {
			j := strings.IndexByte(s[i:], '\n')
			if j < 0 {
				b.WriteString(s[i:])
				break
			}
			b.WriteString(s[i : i+j])
			i += j
			continue
		}

		j := i
		for j < len(s) && s[j] == '\n' {
			j++
		}
		if j-i == 1 {
			b.WriteByte(' ')
		} else {
			b.WriteString(s[i:j])
		}
		i = j
	}

	return b.String()
}
