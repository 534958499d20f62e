package corpus

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cloo-solutions/lexcorpus/internal/cli"
	"github.com/cloo-solutions/lexcorpus/internal/extract"
	"github.com/cloo-solutions/lexcorpus/internal/repository"
	"github.com/cloo-solutions/lexcorpus/internal/service"
	"github.com/spf13/cobra"
)

type processOptions struct {
	corpusOptions
	only    []string
	workers int
	enqueue bool
}

// ProcessCmd builds the JSONL artifacts of the manifest's documents.
func ProcessCmd() *cobra.Command {
	var opts processOptions

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Extract, clean, and chunk source documents into JSONL artifacts",
		Long: `Runs every document of the source manifest through extraction, normalization,
chunking, and finishing, and writes one JSONL artifact per document.

A failing document does not stop the others; the command exits non-zero when
any document failed. With --enqueue an index job is recorded per artifact for
the lexcorpusd index worker.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd.Context(), cmd.OutOrStdout(), &opts)
		},
	}

	opts.addManifestFlags(cmd)
	opts.addDatabaseFlags(cmd)
	cmd.Flags().StringSliceVar(&opts.only, "only", nil, "Process only these documents (id prefix or raw name, repeatable)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Documents processed in parallel (default: LEXCORPUS_WORKERS)")
	cmd.Flags().BoolVar(&opts.enqueue, "enqueue", false, "Enqueue an index job per written artifact (needs LEXCORPUS_DATABASE_URL)")

	return cmd
}

func runProcess(ctx context.Context, out io.Writer, opts *processOptions) error {
	cfg, err := loadConfig(&opts.corpusOptions)
	if err != nil {
		return err
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}

	flush := cli.InitTelemetry(cfg)
	defer flush()

	manifest, err := loadManifest(cfg, opts.only)
	if err != nil {
		return err
	}

	store, err := cli.OpenArtifactStore(ctx, cfg, cfg.OutputDir, opts.useS3)
	if err != nil {
		return err
	}

	svc := service.NewPipelineService(extract.New(), newChunker(), store, service.PipelineOptions{
		InputDir: cfg.InputDir,
		Workers:  cfg.Workers,
	})

	if opts.enqueue {
		pool, err := cli.OpenDatabase(ctx, cfg, opts.migrationsDir, opts.noMigrate)
		if err != nil {
			return err
		}
		defer pool.Close()
		svc.WithIndexJobs(repository.NewIndexJobRepository(pool), nil)
	}

	summary, err := svc.Run(ctx, manifest.Sources, opts.enqueue)
	if err != nil {
		return err
	}

	printSummary(out, summary)

	if failed := summary.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(summary.Documents))
	}
	return nil
}

func printSummary(out io.Writer, summary *service.RunSummary) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tMODE\tCHUNKS\tARTIFACT\tSTATUS")
	for _, d := range summary.Documents {
		status := "ok"
		if d.JobID != "" {
			status = "queued " + d.JobID
		}
		artifact := d.Location
		if d.Err != nil {
			status = "error: " + d.Err.Error()
			artifact = d.OutName
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", d.Source, d.Mode, d.Records, artifact, status)
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "\n%d documents, %d chunks, %d failed\n", len(summary.Documents), summary.TotalRecords, summary.Failed())
}
