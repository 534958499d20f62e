package corpus

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/cloo-solutions/lexcorpus/internal/extract"
	"github.com/cloo-solutions/lexcorpus/internal/jsonl"
	"github.com/cloo-solutions/lexcorpus/internal/sources"
	"github.com/spf13/cobra"
)

type chunkOptions struct {
	sourcesFile string
	mode        string
	prefix      string
	category    string
	outFile     string
}

// ChunkCmd chunks a single document and prints its JSONL to stdout.
func ChunkCmd() *cobra.Command {
	var opts chunkOptions

	cmd := &cobra.Command{
		Use:   "chunk <file>",
		Short: "Chunk one document and print its JSONL records",
		Long: `Chunks a single .pdf, .txt, or .md file. When the file name matches a manifest
entry its mode, id prefix, and category are used unless overridden by flags;
otherwise --mode is required.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChunk(cmd.Context(), cmd.OutOrStdout(), &opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.sourcesFile, "sources", "", "Source manifest YAML used for defaults")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Chunking mode: law or simple")
	cmd.Flags().StringVarP(&opts.prefix, "prefix", "p", "", "Record id prefix (default: file name without extension)")
	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "Record category")
	cmd.Flags().StringVar(&opts.outFile, "out", "", "Write JSONL to this file instead of stdout")

	return cmd
}

func runChunk(ctx context.Context, out io.Writer, opts *chunkOptions, path string) error {
	doc, err := resolveChunkDocument(opts, path)
	if err != nil {
		return err
	}

	raw, err := extract.New().Extract(ctx, path)
	if err != nil {
		return err
	}

	records, err := newChunker().Process(raw, doc)
	if err != nil {
		return err
	}

	if opts.outFile != "" {
		f, err := os.Create(opts.outFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := jsonl.NewWriter(out)
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func resolveChunkDocument(opts *chunkOptions, path string) (domain.SourceDocument, error) {
	base := filepath.Base(path)
	doc := domain.SourceDocument{
		RawName:  base,
		IDPrefix: strings.TrimSuffix(base, filepath.Ext(base)),
	}

	manifest, err := sources.Load(opts.sourcesFile)
	if err != nil {
		return doc, err
	}
	if known, ok := manifest.Lookup(base); ok {
		doc = known
	}

	if opts.mode != "" {
		mode, err := domain.ParseMode(opts.mode)
		if err != nil {
			return doc, err
		}
		doc.Mode = mode
	}
	if opts.prefix != "" {
		doc.IDPrefix = opts.prefix
	}
	if opts.category != "" {
		doc.Category = opts.category
	}

	if doc.Mode == "" {
		return doc, fmt.Errorf("%w: --mode is required for %s", domain.ErrMissingRequiredField, base)
	}
	return doc, nil
}
