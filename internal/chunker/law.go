package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/cloo-solutions/lexcorpus/internal/textclean"
)

var (
	registryFooter = regexp.MustCompile(`법제처\s+[0-9]+\s+국가법령정보센터`)
	articleHeader  = regexp.MustCompile(`제[0-9]+조(?:의[0-9]+)?\s*\([^)]*\)`)
	headerTitle    = regexp.MustCompile(`\(([^)]+)\)`)
	longAnnotation = regexp.MustCompile(`\[[^\]]{80,}\]`)
	effectiveTail  = regexp.MustCompile(`(\[본조신설[^\]]*\]\s*)?(\[시행일:[^\]]*\])\s*`)
)

type article struct {
	id    string
	title string
	body  string
}

// heading renders "{title} {id}", or the id alone when the header has no title.
func (a article) heading() string {
	if a.title == "" {
		return a.id
	}
	return a.title + " " + a.id
}

// Structured chunks statute text on its article headers ("제N조(제목)" or
// "제N조의M(제목)"). Text before the first header and headers without a body
// are skipped.
func (c *Chunker) Structured(text string, doc domain.SourceDocument) []domain.ChunkRecord {
	text = registryFooter.ReplaceAllString(text, "")
	seq := &sequence{prefix: doc.IDPrefix}

	var records []domain.ChunkRecord
	for _, art := range splitArticles(text) {
		texts := c.articleTexts(art)
		for i, body := range texts {
			rec := domain.ChunkRecord{
				ID:           seq.next(),
				Title:        art.heading(),
				Text:         body,
				Source:       doc.RawName,
				Category:     doc.Category,
				ArticleID:    art.id,
				ArticleTitle: art.title,
			}
			if len(texts) > 1 {
				rec.SubChunk = i + 1
				rec.Title = fmt.Sprintf("%s (부분 %d)", rec.Title, i+1)
			}
			records = append(records, rec)
		}
	}
	return records
}

// splitArticles pairs every header with the text up to the next header.
func splitArticles(text string) []article {
	locs := articleHeader.FindAllStringIndex(text, -1)

	articles := make([]article, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimSpace(text[loc[1]:end])
		if body == "" {
			continue
		}
		art := parseHeader(text[loc[0]:loc[1]])
		art.body = body
		articles = append(articles, art)
	}
	return articles
}

func parseHeader(header string) article {
	var art article
	if i := strings.IndexByte(header, '('); i >= 0 {
		art.id = strings.TrimSpace(header[:i])
	} else {
		art.id = strings.TrimSpace(header)
	}
	if m := headerTitle.FindStringSubmatch(header); m != nil {
		art.title = strings.TrimSpace(textclean.StripControl(m[1]))
	}
	return art
}

// articleTexts cleans one article body and returns its finished texts.
func (c *Chunker) articleTexts(art article) []string {
	body := cleanArticleBody(art.body, art.id)
	body = detachLongAnnotations(body, c.cfg.MinChars)
	if body == "" {
		return nil
	}

	if textclean.RuneLen(body) <= c.cfg.MaxChars {
		return c.finalize(body)
	}

	var out []string
	for _, piece := range c.pack(body, "\n\n", 0) {
		out = append(out, c.finalize(piece)...)
	}
	return out
}

// cleanArticleBody strips the registry footer and the trailing
// "[본조신설 ...] [시행일: ...] 제N조 ..." tail, keeping the two markers. Only a
// last-line tail that restates articleID is cut.
func cleanArticleBody(body, articleID string) string {
	body = registryFooter.ReplaceAllString(body, "")
	if articleID != "" && strings.Contains(body, "[시행일:") {
		for _, m := range effectiveTail.FindAllStringSubmatchIndex(body, -1) {
			rest := body[m[1]:]
			if !strings.HasPrefix(rest, articleID) || strings.Contains(rest, "\n") {
				continue
			}
			markers := body[m[4]:m[5]]
			if m[2] >= 0 {
				markers = body[m[2]:m[3]] + markers
			}
			body = body[:m[0]] + markers
			break
		}
	}
	return strings.TrimSpace(body)
}

// detachLongAnnotations removes bracketed annotations of 80 or more runes,
// unless that leaves fewer than minChars runes of body.
func detachLongAnnotations(body string, minChars int) string {
	notes := longAnnotation.FindAllString(body, -1)
	if len(notes) == 0 {
		return body
	}
	rest := body
	for _, note := range notes {
		rest = strings.Replace(rest, note, "", 1)
	}
	rest = strings.TrimSpace(rest)
	if textclean.RuneLen(rest) >= minChars {
		return rest
	}
	return body
}
