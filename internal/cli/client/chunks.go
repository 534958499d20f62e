package client

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// ChunkListResponse mirrors the GET /sources/{source}/chunks response data.
type ChunkListResponse struct {
	Items      []Chunk `json:"items"`
	NextCursor string  `json:"next_cursor,omitempty"`
	HasMore    bool    `json:"has_more"`
}

// ChunksCmd lists the indexed chunks of one source document in order.
func ChunksCmd() *cobra.Command {
	var (
		cursor string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "chunks <source>",
		Short: "List indexed chunks of a source document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			query := url.Values{}
			if cursor != "" {
				query.Set("cursor", cursor)
			}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}

			var page ChunkListResponse
			path := "/sources/" + url.PathEscape(args[0]) + "/chunks"
			if err := api.GetData(cmd.Context(), path, query, &page); err != nil {
				return fmt.Errorf("failed to list chunks: %w", err)
			}

			out := cmd.OutOrStdout()
			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				return writeJSON(out, page)
			}

			if len(page.Items) == 0 {
				fmt.Fprintln(out, "No chunks found.")
				return nil
			}
			for _, c := range page.Items {
				fmt.Fprintf(out, "%4d  %-16s %s\n", c.Seq, c.ID, c.Title)
			}
			if page.HasMore {
				fmt.Fprintf(out, "\nMore chunks available. Use --cursor %s\n", page.NextCursor)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from a previous page")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Page size (server default when 0)")

	return cmd
}
