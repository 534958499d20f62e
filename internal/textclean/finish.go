package textclean

import (
	"regexp"
	"strings"
)

// maxFinishPasses bounds Finish. The chain settles in two or three passes on
// real documents.
const maxFinishPasses = 8

// wordEnd emulates a trailing word boundary after a digit: end of text or a
// character that is not a letter, digit or underscore. RE2 has no lookahead,
// so the character is captured and written back.
const wordEnd = `($|[^\p{L}\p{N}_])`

// circled digits ① to ⑩ or ASCII digits: what follows a stray running header.
const clauseStart = `[\x{2460}-\x{2469}0-9]`

var (
	digitSymbols = regexp.MustCompile(`([0-9])[\^&*]+`)

	headerBetweenDigits = regexp.MustCompile(`([0-9])\n+민법\s+([0-9])`)
	headerBeforeBreak   = regexp.MustCompile(`([가-힣0-9])\n+민법\s+(` + clauseStart + `)`)
	headerInline        = regexp.MustCompile(`([가-힣0-9])\s+민법\s+(` + clauseStart + `)`)
	headerAfterBreak    = regexp.MustCompile(`\n+민법\s+(` + clauseStart + `)`)

	// A "0" preceded by another digit belongs to a longer number and is left
	// alone, so a correct "100분의 100" is never rewritten.
	droppedHundred = regexp.MustCompile(`(^|[^0-9])0분의\s*100` + wordEnd)
	droppedTen     = regexp.MustCompile(`(^|[^0-9])0분의\s*10` + wordEnd)
	duplicatedTen  = regexp.MustCompile(`10100분의\s*10` + wordEnd)

	hundredOfHundred = regexp.MustCompile(`(?P<span>100\s*분의\s*100)` + wordEnd)
	tenOfHundred     = regexp.MustCompile(`(?P<span>100\s*분의\s*10)` + wordEnd)
	gluedFraction    = regexp.MustCompile(`[0-9]+분의\s*1[0-9]+`)
	gluedParts       = regexp.MustCompile(`^([0-9]+분의\s*1)([0-9]+)$`)

	splitHundred = regexp.MustCompile(`100분의\s*1\s+00`)
	splitTen     = regexp.MustCompile(`100분의\s*1\s+0`)

	gluedCitation = regexp.MustCompile(`100분의\s*20([0-9]+)`)

	conjunction = regexp.MustCompile(`및([가-힣])`)
	spaceRuns   = regexp.MustCompile(` {3,}`)
)

var knownTypos = []struct{ from, to string }{
	{"상속민법권", "상속권"},
	{"상속민법", "상속"},
}

var finishChain = Chain{
	{Name: "strip-control", Apply: StripControl},
	{Name: "heal-line-breaks", Apply: HealLineBreaks},
	{Name: "drop-digit-symbols", Apply: dropDigitSymbols},
	{Name: "fix-known-typos", Apply: fixKnownTypos},
	{Name: "drop-running-header", Apply: dropRunningHeader},
	{Name: "restore-dropped-fraction-digit", Apply: restoreDroppedFractionDigit},
	{Name: "split-glued-fractions", Apply: splitGluedFractions},
	{Name: "rejoin-protected-fractions", Apply: rejoinProtectedFractions},
	{Name: "split-glued-citation", Apply: splitGluedCitation},
	{Name: "space-after-conjunction", Apply: spaceAfterConjunction},
	{Name: "collapse-spaces", Apply: collapseSpaces},
	{Name: "trim", Apply: strings.TrimSpace},
}

// FinishRules returns a copy of the chunk-level repair chain in application
// order.
func FinishRules() Chain {
	return append(Chain(nil), finishChain...)
}

// Finish applies the chunk-level repair chain until the text is stable, so
// Finish(Finish(x)) == Finish(x).
func Finish(body string) string {
	return finishChain.Stabilize(body, maxFinishPasses)
}

func dropDigitSymbols(s string) string {
	return digitSymbols.ReplaceAllString(s, "${1}")
}

func fixKnownTypos(s string) string {
	for {
		before := s
		for _, t := range knownTypos {
			s = strings.ReplaceAll(s, t.from, t.to)
		}
		if s == before {
			return s
		}
	}
}

// dropRunningHeader removes the "민법" page header that the extractor leaves in
// front of a clause or digit. Between two digits the paragraph break keeps a
// leading space so HealLineBreaks never merges the numbers on a later pass.
func dropRunningHeader(s string) string {
	if !strings.Contains(s, "민법") {
		return s
	}
	// matches share their trailing digit, so repeat until none is left
	for headerBetweenDigits.MatchString(s) {
		s = headerBetweenDigits.ReplaceAllString(s, "${1}\n\n ${2}")
	}
	s = headerBeforeBreak.ReplaceAllString(s, "${1}\n\n${2}")
	s = headerInline.ReplaceAllString(s, "${1} ${2}")
	s = headerAfterBreak.ReplaceAllString(s, "\n\n${1}")
	return s
}

// restoreDroppedFractionDigit puts back the "10" the extractor drops from
// "100분의 100" and "100분의 10", and removes a duplicated "10".
func restoreDroppedFractionDigit(s string) string {
	if !strings.Contains(s, "분의") {
		return s
	}
	s = droppedHundred.ReplaceAllString(s, "${1}100분의 100${2}")
	s = droppedTen.ReplaceAllString(s, "${1}100분의 10${2}")
	s = duplicatedTen.ReplaceAllString(s, "100분의 10${1}")
	return s
}

// splitGluedFractions separates a fraction from the number the extractor
// glued to it ("3분의 115" is "3분의 1" followed by item "15"). The two
// legitimate percentages are shielded first.
func splitGluedFractions(s string) string {
	if !strings.Contains(s, "분의") {
		return s
	}
	guards := []Guard{
		{Pattern: hundredOfHundred, Canonical: "100분의 100"},
		{Pattern: tenOfHundred, Canonical: "100분의 10"},
	}
	return Shield(s, guards, func(text string) string {
		return gluedFraction.ReplaceAllStringFunc(text, func(m string) string {
			if strings.HasPrefix(m, "100분의 1") || strings.HasPrefix(m, "100분의1") {
				return m
			}
			parts := gluedParts.FindStringSubmatch(m)
			if parts == nil {
				return m
			}
			return parts[1] + "\n\n" + parts[2]
		})
	})
}

func rejoinProtectedFractions(s string) string {
	if !strings.Contains(s, "100분의") {
		return s
	}
	s = splitHundred.ReplaceAllString(s, "100분의 100")
	s = splitTen.ReplaceAllString(s, "100분의 10")
	return s
}

func splitGluedCitation(s string) string {
	return gluedCitation.ReplaceAllString(s, "100분의 20\n\n${1}")
}

func spaceAfterConjunction(s string) string {
	return conjunction.ReplaceAllString(s, "및 ${1}")
}

func collapseSpaces(s string) string {
	return spaceRuns.ReplaceAllString(s, "  ")
}
