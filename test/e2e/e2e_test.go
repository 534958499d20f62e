//go:build e2e

package e2e

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloo-solutions/lexcorpus/internal/jsonl"
	"github.com/cloo-solutions/lexcorpus/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lawSource = "민법 상속편\n\n" +
	"제1000조(상속의 순위) ① 상속에 있어서는 다음 순위로 상속인이 된다.\n" +
	"1. 피상속인의 직계비속\n2. 피상속인의 직계존속\n\n" +
	"제1001조(대습상속) 전조제1항제1호와 제3호의 규정에 의하여 상속인이 될 직계비속 또는 " +
	"형제자매가 상속개시전에 사망하거나 결격자가 된 경우에 그 직계비속이 있는 때에는 " +
	"그 직계비속이 사망하거나 결격된 자의 순위에 갈음하여 상속인이 된다.\n"

const guideSource = "상속세 신고 안내\n\n" +
	"상속세는 상속개시일이 속하는 달의 말일부터 6개월 이내에 신고하여야 합니다.\n\n" +
	"신고기한 내에 신고하면 납부할 세액의 3퍼센트를 공제받을 수 있습니다.\n"

const e2eManifest = `sources:
  - raw_name: law.txt
    out_name: law_chunks.jsonl
    mode: law
    id_prefix: minlaw
    category: 법령_민법_상속
  - raw_name: guide.txt
    out_name: guide_simple.jsonl
    mode: simple
    id_prefix: guide
    category: 세금_안내
`

func writeCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "raw"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw", "law.txt"), []byte(lawSource), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw", "guide.txt"), []byte(guideSource), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sources.yaml"), []byte(e2eManifest), 0644))
	return dir
}

// TestE2E_PipelineToSearch builds artifacts with the CLI, indexes them and
// queries them through the API and the CLI.
func TestE2E_PipelineToSearch(t *testing.T) {
	env := SetupE2EEnv(t)
	env.BuildBinaries()

	workDir := writeCorpus(t)
	corpusFlags := []string{"--sources", "sources.yaml", "-i", "raw", "-o", "processed"}

	t.Run("process writes artifacts", func(t *testing.T) {
		out, err := env.RunCLI(workDir, append([]string{"process"}, corpusFlags...)...)
		require.NoError(t, err, out)
		assert.Contains(t, out, "2 documents")
		assert.Contains(t, out, "0 failed")

		assert.FileExists(t, filepath.Join(workDir, "processed", "law_chunks.jsonl"))
		assert.FileExists(t, filepath.Join(workDir, "processed", "guide_simple.jsonl"))
	})

	t.Run("validate passes", func(t *testing.T) {
		out, err := env.RunCLI(workDir, append([]string{"validate"}, corpusFlags...)...)
		require.NoError(t, err, out)
		assert.Contains(t, out, "PASS")
		assert.NotContains(t, out, "FAIL")
	})

	lawData, err := os.ReadFile(filepath.Join(workDir, "processed", "law_chunks.jsonl"))
	require.NoError(t, err)
	lawRecords, err := jsonl.ReadAll(strings.NewReader(string(lawData)))
	require.NoError(t, err)
	require.NotEmpty(t, lawRecords)
	assert.Equal(t, "minlaw_0001", lawRecords[0].ID)
	assert.Equal(t, "제1000조", lawRecords[0].ArticleID)

	guideData, err := os.ReadFile(filepath.Join(workDir, "processed", "guide_simple.jsonl"))
	require.NoError(t, err)

	t.Run("index artifacts", func(t *testing.T) {
		require.NoError(t, env.S3Client.Put(env.Ctx, "law_chunks.jsonl", lawData, storage.ContentTypeJSONL))
		require.NoError(t, env.S3Client.Put(env.Ctx, "guide_simple.jsonl", guideData, storage.ContentTypeJSONL))

		res, err := env.Indexer.IndexArtifact(env.Ctx, "law.txt", "law_chunks.jsonl")
		require.NoError(t, err)
		assert.Positive(t, res.Indexed)

		_, err = env.Indexer.IndexArtifact(env.Ctx, "guide.txt", "guide_simple.jsonl")
		require.NoError(t, err)
	})

	t.Run("search requires API key", func(t *testing.T) {
		_, err := env.Post("/search", map[string]string{"query": "상속 순위"}, "")
		var httpErr *HTTPError
		require.True(t, errors.As(err, &httpErr), "got %v", err)
		assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	})

	t.Run("search finds the exact chunk text first", func(t *testing.T) {
		resp, err := env.Post("/search", map[string]any{"query": lawRecords[0].Text, "limit": 3}, env.APIKey)
		require.NoError(t, err)

		var data struct {
			Results []struct {
				ID    string  `json:"id"`
				Score float64 `json:"score"`
			} `json:"results"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		require.NotEmpty(t, data.Results)
		assert.Equal(t, lawRecords[0].ID, data.Results[0].ID)
		assert.InDelta(t, 1.0, data.Results[0].Score, 1e-4)
	})

	t.Run("search filters by category", func(t *testing.T) {
		resp, err := env.Post("/search", map[string]any{"query": "신고", "category": "세금_안내"}, env.APIKey)
		require.NoError(t, err)

		var data struct {
			Results []struct {
				Category string `json:"category"`
			} `json:"results"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		require.NotEmpty(t, data.Results)
		for _, r := range data.Results {
			assert.Equal(t, "세금_안내", r.Category)
		}
	})

	t.Run("get chunk", func(t *testing.T) {
		resp, err := env.Get("/chunks/"+lawRecords[0].ID, env.APIKey)
		require.NoError(t, err)

		var chunk struct {
			ID        string `json:"id"`
			ArticleID string `json:"article_id"`
			Seq       int    `json:"seq"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &chunk))
		assert.Equal(t, lawRecords[0].ID, chunk.ID)
		assert.Equal(t, "제1000조", chunk.ArticleID)
		assert.Equal(t, 0, chunk.Seq)

		_, err = env.Get("/chunks/minlaw_9999", env.APIKey)
		var httpErr *HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	})

	t.Run("list source chunks in artifact order", func(t *testing.T) {
		var ids []string
		cursor := ""
		for page := 0; page < 10; page++ {
			q := url.Values{"limit": {"1"}}
			if cursor != "" {
				q.Set("cursor", cursor)
			}
			resp, err := env.Get("/sources/law.txt/chunks?"+q.Encode(), env.APIKey)
			require.NoError(t, err)

			var data struct {
				Items []struct {
					ID string `json:"id"`
				} `json:"items"`
				NextCursor string `json:"next_cursor"`
				HasMore    bool   `json:"has_more"`
			}
			require.NoError(t, json.Unmarshal(resp.Data, &data))
			for _, item := range data.Items {
				ids = append(ids, item.ID)
			}
			if !data.HasMore {
				break
			}
			cursor = data.NextCursor
		}

		expected := make([]string, 0, len(lawRecords))
		for _, r := range lawRecords {
			expected = append(expected, r.ID)
		}
		assert.Equal(t, expected, ids)
	})

	t.Run("artifact metadata and download", func(t *testing.T) {
		resp, err := env.Get("/artifacts/law_chunks.jsonl", env.APIKey)
		require.NoError(t, err)

		var meta struct {
			Name          string `json:"name"`
			ContentLength int64  `json:"content_length"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &meta))
		assert.Equal(t, "law_chunks.jsonl", meta.Name)
		assert.Equal(t, int64(len(lawData)), meta.ContentLength)

		resp, err = env.Get("/artifacts/law_chunks.jsonl/url", env.APIKey)
		require.NoError(t, err)

		var signed struct {
			DownloadURL string `json:"download_url"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &signed))
		require.NotEmpty(t, signed.DownloadURL)

		body, err := env.DownloadFile(signed.DownloadURL)
		require.NoError(t, err)
		assert.Equal(t, lawData, body)
	})

	t.Run("cli search", func(t *testing.T) {
		out, err := env.RunCLI(workDir, "search", "--output", "-n", "2", lawRecords[0].Text)
		require.NoError(t, err, out)

		var data struct {
			Results []struct {
				ID string `json:"id"`
			} `json:"results"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &data), out)
		require.NotEmpty(t, data.Results)
		assert.Equal(t, lawRecords[0].ID, data.Results[0].ID)
	})

	t.Run("cli get", func(t *testing.T) {
		out, err := env.RunCLI(workDir, "get", lawRecords[0].ID)
		require.NoError(t, err, out)
		assert.Contains(t, out, lawRecords[0].Title)
	})
}

// TestE2E_ChunkPreview exercises the public preview endpoint.
func TestE2E_ChunkPreview(t *testing.T) {
	env := SetupE2EEnv(t)

	resp, err := env.Post("/chunk", map[string]string{
		"text":      lawSource,
		"mode":      "law",
		"id_prefix": "preview",
	}, "")
	require.NoError(t, err)

	var data struct {
		Count   int `json:"count"`
		Records []struct {
			ID        string `json:"id"`
			ArticleID string `json:"article_id"`
			Source    string `json:"source"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Equal(t, len(data.Records), data.Count)
	require.NotEmpty(t, data.Records)
	assert.Equal(t, "preview_0001", data.Records[0].ID)
	assert.Equal(t, "제1000조", data.Records[0].ArticleID)
	assert.Equal(t, "inline", data.Records[0].Source)

	_, err = env.Post("/chunk", map[string]string{"text": lawSource, "mode": "poem"}, "")
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
}
