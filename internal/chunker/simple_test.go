package chunker

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleDoc() domain.SourceDocument {
	return domain.SourceDocument{
		RawName:  "2. 국세청-상속·증여 세금상식1.pdf",
		OutName:  "2_segeumsangsik_I_simple.jsonl",
		Mode:     domain.ModeSimple,
		IDPrefix: "tax1",
		Category: "세금_안내",
	}
}

func TestSimple_LoneShortParagraphDropped(t *testing.T) {
	text := strings.Repeat("가", 250)

	assert.Empty(t, New(DefaultConfig()).Simple(text, simpleDoc()))
}

func TestSimple_ParagraphsJoined(t *testing.T) {
	para := strings.TrimSpace(strings.Repeat("가나다라마 ", 40))
	text := para + "\n\n" + para

	records := New(DefaultConfig()).Simple(text, simpleDoc())
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "tax1_0001", r.ID)
	assert.Equal(t, para+" "+para, r.Text)
	assert.Equal(t, string([]rune(r.Text)[:50]), r.Title)
	assert.Equal(t, "2. 국세청-상속·증여 세금상식1.pdf", r.Source)
	assert.Equal(t, "세금_안내", r.Category)
	assert.Empty(t, r.ArticleID)
	assert.Empty(t, r.ArticleTitle)
	assert.Zero(t, r.SubChunk)
}

func TestSimple_LongParagraph(t *testing.T) {
	text := strings.Repeat("상속세는 사망으로 이전되는 재산에 부과되는 세금입니다. ", 60)

	records := New(DefaultConfig()).Simple(text, simpleDoc())
	require.NotEmpty(t, records)

	for i, r := range records {
		assert.Equal(t, fmt.Sprintf("tax1_%04d", i+1), r.ID)
		assert.LessOrEqual(t, len([]rune(r.Text)), 500)
		assert.GreaterOrEqual(t, len([]rune(r.Text)), 20)
		assert.LessOrEqual(t, len([]rune(r.Title)), 50)
		assert.Zero(t, r.SubChunk)
		assert.Empty(t, r.ArticleID)
	}
}

func TestSimple_TitleBlanksNewlines(t *testing.T) {
	c := New(DefaultConfig())

	assert.Equal(t, "첫 줄 둘째 줄", c.simpleTitle("첫 줄\t둘째 줄"))
	assert.Equal(t, strings.Repeat("가", 50), c.simpleTitle(strings.Repeat("가", 80)))
}

func TestChunk_InvalidMode(t *testing.T) {
	doc := simpleDoc()
	doc.Mode = "table"

	_, err := New(DefaultConfig()).Chunk("본문", doc)

	assert.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestNew_DefaultsForZeroConfig(t *testing.T) {
	assert.Equal(t, DefaultConfig(), New(Config{}).Config())
}

func TestChunker_ConcurrentUse(t *testing.T) {
	c := New(DefaultConfig())
	text := "제1조(목적) 이 법은 상속에 관한 사항을 규정함을 목적으로 한다.\n\n" +
		"제2조(정의) 이 법에서 사용하는 용어의 뜻은 다음과 같다."
	want := c.Structured(text, lawDoc())

	var wg sync.WaitGroup
	results := make([][]domain.ChunkRecord, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Structured(text, lawDoc())
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
