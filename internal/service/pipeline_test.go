package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloo-solutions/lexcorpus/internal/chunker"
	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/cloo-solutions/lexcorpus/internal/jsonl"
	"github.com/cloo-solutions/lexcorpus/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const lawText = "민법\n\n제1조(목적) 이 법은 상속에 관한 사항을 규정함을 목적으로 한다.\n\n" +
	"제2조(정의) 이 법에서 사용하는 용어의 뜻은 다음과 같이 정하여 둔다."

var lawDoc = domain.SourceDocument{
	RawName:  "law.pdf",
	OutName:  "law_chunks.jsonl",
	Mode:     domain.ModeLaw,
	IDPrefix: "law",
	Category: "법령",
}

var guideDoc = domain.SourceDocument{
	RawName:  "guide.pdf",
	OutName:  "guide_chunks.jsonl",
	Mode:     domain.ModeSimple,
	IDPrefix: "guide",
	Category: "안내",
}

func newTestPipeline(t *testing.T, extractor TextExtractor) (*PipelineService, *storage.LocalStore) {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	svc := NewPipelineService(extractor, chunker.New(chunker.DefaultConfig()), store, PipelineOptions{
		InputDir: "input",
		Workers:  2,
	})
	return svc, store
}

func TestPipelineService_Run_WritesArtifact(t *testing.T) {
	extractor := new(MockTextExtractor)
	extractor.On("Extract", mock.Anything, filepath.Join("input", "law.pdf")).Return(lawText, nil)

	svc, store := newTestPipeline(t, extractor)

	summary, err := svc.Run(context.Background(), []domain.SourceDocument{lawDoc}, false)
	require.NoError(t, err)
	require.Len(t, summary.Documents, 1)

	doc := summary.Documents[0]
	assert.NoError(t, doc.Err)
	assert.Equal(t, 2, doc.Records)
	assert.Equal(t, 2, summary.TotalRecords)
	assert.Equal(t, 0, summary.Failed())
	assert.Empty(t, doc.JobID)

	data, err := store.Get(context.Background(), "law_chunks.jsonl")
	require.NoError(t, err)
	records, err := jsonl.ReadAll(strings.NewReader(string(data)))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "law_0001", records[0].ID)
	assert.Equal(t, "제1조", records[0].ArticleID)
	assert.Equal(t, "목적", records[0].ArticleTitle)
	assert.Equal(t, "law_0002", records[1].ID)
	extractor.AssertExpectations(t)
}

func TestPipelineService_Run_FailureDoesNotStopOthers(t *testing.T) {
	extractor := new(MockTextExtractor)
	extractor.On("Extract", mock.Anything, filepath.Join("input", "law.pdf")).Return(lawText, nil)
	extractor.On("Extract", mock.Anything, filepath.Join("input", "guide.pdf")).
		Return("", domain.ErrSourceNotFound)

	svc, _ := newTestPipeline(t, extractor)

	summary, err := svc.Run(context.Background(), []domain.SourceDocument{guideDoc, lawDoc}, false)
	require.NoError(t, err)
	require.Len(t, summary.Documents, 2)

	assert.Equal(t, "guide.pdf", summary.Documents[0].Source)
	assert.ErrorIs(t, summary.Documents[0].Err, domain.ErrSourceNotFound)
	assert.Equal(t, "law.pdf", summary.Documents[1].Source)
	assert.NoError(t, summary.Documents[1].Err)
	assert.Equal(t, 1, summary.Failed())
	assert.Equal(t, 2, summary.TotalRecords)
}

func TestPipelineService_Run_InvalidMode(t *testing.T) {
	extractor := new(MockTextExtractor)
	extractor.On("Extract", mock.Anything, mock.Anything).Return(lawText, nil)

	svc, _ := newTestPipeline(t, extractor)
	doc := lawDoc
	doc.Mode = "poem"

	summary, err := svc.Run(context.Background(), []domain.SourceDocument{doc}, false)
	require.NoError(t, err)
	assert.ErrorIs(t, summary.Documents[0].Err, domain.ErrInvalidMode)
}

func TestPipelineService_Run_Enqueue(t *testing.T) {
	extractor := new(MockTextExtractor)
	extractor.On("Extract", mock.Anything, mock.Anything).Return(lawText, nil)

	jobs := new(MockIndexJobRepository)
	jobs.On("Create", mock.Anything, mock.MatchedBy(func(job *domain.IndexJob) bool {
		return job.ID == "job-1" &&
			job.Source == "law.pdf" &&
			job.ArtifactKey == "law_chunks.jsonl" &&
			job.Status == domain.IndexJobStatusPending
	})).Return(nil)

	svc, _ := newTestPipeline(t, extractor)
	svc.WithIndexJobs(jobs, &fixedUUIDGenerator{ids: []string{"job-1"}})

	summary, err := svc.Run(context.Background(), []domain.SourceDocument{lawDoc}, true)
	require.NoError(t, err)
	assert.Equal(t, "job-1", summary.Documents[0].JobID)
	jobs.AssertExpectations(t)
}

func TestPipelineService_Run_EnqueueFailure(t *testing.T) {
	extractor := new(MockTextExtractor)
	extractor.On("Extract", mock.Anything, mock.Anything).Return(lawText, nil)

	jobs := new(MockIndexJobRepository)
	jobs.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	svc, _ := newTestPipeline(t, extractor)
	svc.WithIndexJobs(jobs, nil)

	summary, err := svc.Run(context.Background(), []domain.SourceDocument{lawDoc}, true)
	require.NoError(t, err)
	assert.Error(t, summary.Documents[0].Err)
	assert.Contains(t, summary.Documents[0].Err.Error(), "enqueue")
}

func TestPipelineService_Run_EnqueueWithoutRepository(t *testing.T) {
	svc, _ := newTestPipeline(t, new(MockTextExtractor))

	_, err := svc.Run(context.Background(), []domain.SourceDocument{lawDoc}, true)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestPipelineService_Run_Cancelled(t *testing.T) {
	extractor := new(MockTextExtractor)
	svc, _ := newTestPipeline(t, extractor)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := svc.Run(ctx, []domain.SourceDocument{lawDoc, guideDoc}, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, summary.Failed())
	extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}
