package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/lexcorpus/internal/cli"
	"github.com/cloo-solutions/lexcorpus/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lexcorpusd",
		Short: "lexcorpus retrieval server",
		Long:  "lexcorpus daemon for serving the chunk search API, running the index worker and managing the database",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.MigrateCmd())
	rootCmd.AddCommand(admin.APIKeyCmd())
	rootCmd.AddCommand(admin.JobsCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
