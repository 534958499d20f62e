package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/lexcorpus/internal/cli"
	"github.com/cloo-solutions/lexcorpus/internal/cli/client"
	"github.com/cloo-solutions/lexcorpus/internal/cli/corpus"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "lexcorpus",
		Short: "lexcorpus - legal corpus chunking and retrieval",
		Long: `lexcorpus turns legal and administrative source documents into
retrieval-ready JSONL chunk artifacts, and queries a running lexcorpusd.

Environment variables:
  LEXCORPUS_SOURCES_FILE  Source manifest (YAML) used by process/validate/index
  LEXCORPUS_INPUT_DIR     Directory holding the raw source files (default: .)
  LEXCORPUS_OUTPUT_DIR    Directory for JSONL artifacts (default: processed)
  LEXCORPUS_API_KEY       API key for the search API
  LEXCORPUS_API_URL       API base URL (default: http://localhost:8080)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(corpus.Commands()...)
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.GetCmd())
	rootCmd.AddCommand(client.ChunksCmd())
	rootCmd.AddCommand(client.AuthCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
