// Package validate checks chunk records and JSONL artifacts against the
// corpus quality rules.
package validate

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/cloo-solutions/lexcorpus/internal/jsonl"
	"github.com/cloo-solutions/lexcorpus/internal/textclean"
)

// IssueKind identifies a failed check.
type IssueKind string

const (
	IssueMissingField      IssueKind = "missing-field"
	IssueTooShort          IssueKind = "too-short"
	IssueTooLong           IssueKind = "too-long"
	IssueControlChar       IssueKind = "control-char"
	IssueTitleControlChar  IssueKind = "title-control-char"
	IssueMidWordBreak      IssueKind = "mid-word-break"
	IssueDigitSymbol       IssueKind = "digit-symbol"
	IssueKnownTypo         IssueKind = "known-typo"
	IssueConjunctionSpace  IssueKind = "conjunction-space"
	IssueRunningHeader     IssueKind = "running-header"
	IssueGluedFraction     IssueKind = "glued-fraction"
	IssueSplitFraction     IssueKind = "split-fraction"
	IssueGluedCitation     IssueKind = "glued-citation"
	IssuePlaceholder       IssueKind = "placeholder"
	IssueMalformedJSON     IssueKind = "malformed-json"
	IssueNumbering         IssueKind = "numbering"
	IssueSubChunkSequence  IssueKind = "sub-chunk-sequence"
	IssueSubChunkSingleton IssueKind = "sub-chunk-singleton"
)

// Issue is one failed check on one record.
type Issue struct {
	Line   int       `json:"line,omitempty"`
	ID     string    `json:"id,omitempty"`
	Kind   IssueKind `json:"kind"`
	Detail string    `json:"detail,omitempty"`
}

func (i Issue) String() string {
	var b strings.Builder
	if i.Line > 0 {
		fmt.Fprintf(&b, "line %d ", i.Line)
	}
	if i.ID != "" {
		fmt.Fprintf(&b, "[%s] ", i.ID)
	}
	b.WriteString(string(i.Kind))
	if i.Detail != "" {
		b.WriteString(": ")
		b.WriteString(i.Detail)
	}
	return b.String()
}

// Report summarizes the validation of one artifact.
type Report struct {
	File    string  `json:"file"`
	Records int     `json:"records"`
	Issues  []Issue `json:"issues"`
}

// OK reports whether the artifact passed every check.
func (r Report) OK() bool {
	return len(r.Issues) == 0
}

var (
	controlChars     = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f-\x9f]`)
	midWordBreak     = regexp.MustCompile(`[가-힣]\n+[가-힣]`)
	digitSymbol      = regexp.MustCompile(`[0-9][\^&*]`)
	missingSpace     = regexp.MustCompile(`및[가-힣]`)
	runningHeader    = regexp.MustCompile(`[가-힣0-9]\n+민법\s+[\x{2460}-\x{2469}0-9]`)
	gluedFraction    = regexp.MustCompile(`[0-9]+분의\s*1[0-9]+`)
	exemptFraction   = regexp.MustCompile(`100\s*분의\s*1`)
	splitFraction    = regexp.MustCompile(`100분의\s*1\s*\n+\s*0`)
	gluedCitation    = regexp.MustCompile(`100분의\s*201\)`)
	legacyMarker     = regexp.MustCompile(`__PROTECT|__TAG|__DATE`)
	privateUse       = regexp.MustCompile(`[\x{E000}-\x{F8FF}]`)
	sequentialID     = regexp.MustCompile(`^(.+)_([0-9]{4,})$`)
	knownTypoMarkers = []string{"상속민법"}
)

// Validator applies the record and file checks with the given size bounds.
type Validator struct {
	minChars int
	maxChars int
}

// New creates a Validator for texts of minChars..maxChars runes.
func New(minChars, maxChars int) *Validator {
	return &Validator{minChars: minChars, maxChars: maxChars}
}

// Record checks a single record.
func (v *Validator) Record(rec domain.ChunkRecord) []Issue {
	var issues []Issue
	add := func(kind IssueKind, detail string) {
		issues = append(issues, Issue{ID: rec.ID, Kind: kind, Detail: detail})
	}

	required := []struct{ name, value string }{
		{"id", rec.ID},
		{"text", rec.Text},
		{"source", rec.Source},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			add(IssueMissingField, f.name)
		}
	}

	text := rec.Text
	n := textclean.RuneLen(strings.TrimSpace(text))
	if n < v.minChars {
		add(IssueTooShort, fmt.Sprintf("%d runes", n))
	}
	if total := textclean.RuneLen(text); total > v.maxChars {
		add(IssueTooLong, fmt.Sprintf("%d runes", total))
	}

	if controlChars.MatchString(text) {
		add(IssueControlChar, "")
	}
	if controlChars.MatchString(rec.Title) {
		add(IssueTitleControlChar, "")
	}
	if midWordBreak.MatchString(text) {
		add(IssueMidWordBreak, midWordBreak.FindString(text))
	}
	if digitSymbol.MatchString(text) {
		add(IssueDigitSymbol, digitSymbol.FindString(text))
	}
	for _, typo := range knownTypoMarkers {
		if strings.Contains(text, typo) {
			add(IssueKnownTypo, typo)
		}
	}
	if missingSpace.MatchString(text) {
		add(IssueConjunctionSpace, missingSpace.FindString(text))
	}
	if runningHeader.MatchString(text) {
		add(IssueRunningHeader, "")
	}
	for _, m := range gluedFraction.FindAllString(text, -1) {
		if !exemptFraction.MatchString(m) {
			add(IssueGluedFraction, m)
			break
		}
	}
	if splitFraction.MatchString(text) {
		add(IssueSplitFraction, "")
	}
	if gluedCitation.MatchString(text) {
		add(IssueGluedCitation, "")
	}
	if privateUse.MatchString(text) || privateUse.MatchString(rec.Title) || legacyMarker.MatchString(text) {
		add(IssuePlaceholder, "")
	}

	return issues
}

// Records checks every record plus the per-artifact invariants: ids numbered
// {prefix}_0001 upwards without gaps, and sub_chunk runs that start at 1,
// increase by one within an article and never stand alone.
func (v *Validator) Records(records []domain.ChunkRecord) []Issue {
	var issues []Issue
	for _, rec := range records {
		issues = append(issues, v.Record(rec)...)
	}
	issues = append(issues, checkNumbering(records)...)
	issues = append(issues, checkSubChunks(records)...)
	return issues
}

// File validates an artifact read from r. Malformed lines are reported as
// issues, never as errors; the error result is reserved for read failures.
func (v *Validator) File(name string, r io.Reader) (Report, error) {
	report := Report{File: name}

	var records []domain.ChunkRecord
	var lines []int
	err := jsonl.Scan(r, func(line int, rec domain.ChunkRecord) error {
		records = append(records, rec)
		lines = append(lines, line)
		return nil
	}, func(lerr *jsonl.LineError) {
		report.Issues = append(report.Issues, Issue{Line: lerr.Line, Kind: IssueMalformedJSON, Detail: lerr.Err.Error()})
	})
	if err != nil {
		return report, err
	}

	report.Records = len(records)
	lineOf := make(map[string]int, len(records))
	for i, rec := range records {
		lineOf[rec.ID] = lines[i]
	}
	for _, issue := range v.Records(records) {
		if issue.Line == 0 {
			issue.Line = lineOf[issue.ID]
		}
		report.Issues = append(report.Issues, issue)
	}
	return report, nil
}

func checkNumbering(records []domain.ChunkRecord) []Issue {
	var issues []Issue
	prefix := ""
	for i, rec := range records {
		m := sequentialID.FindStringSubmatch(rec.ID)
		if m == nil {
			issues = append(issues, Issue{ID: rec.ID, Kind: IssueNumbering, Detail: "id is not {prefix}_{NNNN}"})
			continue
		}
		if prefix == "" {
			prefix = m[1]
		} else if m[1] != prefix {
			issues = append(issues, Issue{ID: rec.ID, Kind: IssueNumbering, Detail: fmt.Sprintf("prefix %q, expected %q", m[1], prefix)})
		}
		n, _ := strconv.Atoi(m[2])
		if n != i+1 {
			issues = append(issues, Issue{ID: rec.ID, Kind: IssueNumbering, Detail: fmt.Sprintf("number %d at position %d", n, i+1)})
		}
	}
	return issues
}

func checkSubChunks(records []domain.ChunkRecord) []Issue {
	var issues []Issue
	for i, rec := range records {
		if rec.SubChunk == 0 {
			continue
		}
		want := 1
		if i > 0 && records[i-1].SubChunk > 0 && records[i-1].ArticleID == rec.ArticleID && rec.SubChunk != 1 {
			want = records[i-1].SubChunk + 1
		}
		if rec.SubChunk != want {
			issues = append(issues, Issue{ID: rec.ID, Kind: IssueSubChunkSequence, Detail: fmt.Sprintf("sub_chunk %d, expected %d", rec.SubChunk, want)})
		}
		if rec.SubChunk == 1 {
			next := i + 1
			if next >= len(records) || records[next].SubChunk != 2 || records[next].ArticleID != rec.ArticleID {
				issues = append(issues, Issue{ID: rec.ID, Kind: IssueSubChunkSingleton})
			}
		}
	}
	return issues
}
