package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// SearchRequest mirrors the POST /search body.
type SearchRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	Source   string `json:"source,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// Chunk is a chunk record as returned by the API.
type Chunk struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Text         string  `json:"text"`
	Source       string  `json:"source"`
	Category     string  `json:"category"`
	ArticleID    string  `json:"article_id,omitempty"`
	ArticleTitle string  `json:"article_title,omitempty"`
	SubChunk     int     `json:"sub_chunk,omitempty"`
	Score        float64 `json:"score,omitempty"`
	Seq          int     `json:"seq,omitempty"`
	IndexedAt    string  `json:"indexed_at,omitempty"`
}

// SearchResponse mirrors the POST /search response data.
type SearchResponse struct {
	Query   string  `json:"query"`
	Results []Chunk `json:"results"`
}

const previewRunes = 120

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var req SearchRequest

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed chunks",
		Long:  "Runs a semantic search against the lexcorpusd retrieval API.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			req.Query = strings.Join(args, " ")
			var resp SearchResponse
			if err := api.PostData(cmd.Context(), "/search", req, &resp); err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			printSearchResults(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Category, "category", "c", "", "Filter by category")
	cmd.Flags().StringVarP(&req.Source, "source", "s", "", "Filter by source document")
	cmd.Flags().IntVarP(&req.Limit, "limit", "n", 10, "Maximum number of results")

	return cmd
}

func printSearchResults(out io.Writer, resp SearchResponse) {
	if len(resp.Results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return
	}

	fmt.Fprintf(out, "Found %d results:\n\n", len(resp.Results))
	for i, r := range resp.Results {
		fmt.Fprintf(out, "%d. %s (%.3f)\n", i+1, r.Title, r.Score)
		fmt.Fprintf(out, "   %s\n", truncateRunes(r.Text, previewRunes))
		fmt.Fprintf(out, "   ID: %s  Source: %s\n", r.ID, r.Source)
		if i < len(resp.Results)-1 {
			fmt.Fprintln(out, strings.Repeat("-", 40))
		}
	}
}

func truncateRunes(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
