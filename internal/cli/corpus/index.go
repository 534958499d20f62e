package corpus

import (
	"context"
	"fmt"
	"io"

	"github.com/cloo-solutions/lexcorpus/internal/cli"
	"github.com/cloo-solutions/lexcorpus/internal/repository"
	"github.com/cloo-solutions/lexcorpus/internal/service"
	"github.com/spf13/cobra"
)

// IndexCmd embeds artifacts and loads them into the vector index directly,
// without going through the job queue.
func IndexCmd() *cobra.Command {
	var opts corpusOptions

	cmd := &cobra.Command{
		Use:   "index [document...]",
		Short: "Embed JSONL artifacts into the vector index",
		Long: `Reads the artifacts of the given documents (id prefix or raw name; all manifest
documents when none is given), embeds every record of at least 20 characters,
and replaces the document's rows in the chunks table.

Needs LEXCORPUS_DATABASE_URL and LEXCORPUS_OPENAI_API_KEY.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), cmd.OutOrStdout(), &opts, args)
		},
	}

	opts.addManifestFlags(cmd)
	opts.addDatabaseFlags(cmd)

	return cmd
}

func runIndex(ctx context.Context, out io.Writer, opts *corpusOptions, only []string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	flush := cli.InitTelemetry(cfg)
	defer flush()

	manifest, err := loadManifest(cfg, only)
	if err != nil {
		return err
	}

	embedder, err := cli.NewEmbedder(cfg)
	if err != nil {
		return err
	}

	store, err := cli.OpenArtifactStore(ctx, cfg, cfg.OutputDir, opts.useS3)
	if err != nil {
		return err
	}

	pool, err := cli.OpenDatabase(ctx, cfg, opts.migrationsDir, opts.noMigrate)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc := service.NewIndexService(store, embedder, repository.NewTxRunner(pool))

	var failed int
	for _, doc := range manifest.Sources {
		result, err := svc.IndexArtifact(ctx, doc.RawName, doc.OutName)
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s: error: %v\n", doc.RawName, err)
			continue
		}
		fmt.Fprintf(out, "%s: %d indexed, %d skipped\n", result.Source, result.Indexed, result.Skipped)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to index", failed, len(manifest.Sources))
	}
	return nil
}
