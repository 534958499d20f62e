package client

import (
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"
)

// GetCmd creates the get command.
func GetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <chunk_id>",
		Short:   "Show an indexed chunk",
		Aliases: []string{"view"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var chunk Chunk
			if err := api.GetData(cmd.Context(), "/chunks/"+url.PathEscape(args[0]), nil, &chunk); err != nil {
				return fmt.Errorf("failed to get chunk: %w", err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), chunk)
			}
			printChunk(cmd.OutOrStdout(), chunk)
			return nil
		},
	}
}

func printChunk(out io.Writer, c Chunk) {
	fmt.Fprintf(out, "ID: %s\n", c.ID)
	fmt.Fprintf(out, "Title: %s\n", c.Title)
	fmt.Fprintf(out, "Source: %s\n", c.Source)
	fmt.Fprintf(out, "Category: %s\n", c.Category)
	if c.ArticleID != "" {
		fmt.Fprintf(out, "Article: %s %s\n", c.ArticleID, c.ArticleTitle)
	}
	if c.SubChunk > 0 {
		fmt.Fprintf(out, "Part: %d\n", c.SubChunk)
	}
	if c.IndexedAt != "" {
		fmt.Fprintf(out, "Indexed: %s\n", c.IndexedAt)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, c.Text)
}
