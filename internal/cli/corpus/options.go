// Package corpus implements the offline pipeline commands of the lexcorpus
// CLI: building, inspecting, validating, and indexing chunk artifacts.
package corpus

import (
	"github.com/cloo-solutions/lexcorpus/internal/chunker"
	"github.com/cloo-solutions/lexcorpus/internal/config"
	"github.com/cloo-solutions/lexcorpus/internal/database"
	"github.com/cloo-solutions/lexcorpus/internal/sources"
	"github.com/cloo-solutions/lexcorpus/internal/validate"
	"github.com/spf13/cobra"
)

// Commands returns every corpus command for registration on a root command.
func Commands() []*cobra.Command {
	return []*cobra.Command{
		ProcessCmd(),
		ValidateCmd(),
		SourcesCmd(),
		ChunkCmd(),
		IndexCmd(),
	}
}

// corpusOptions are the flags shared by commands that work on the manifest.
type corpusOptions struct {
	sourcesFile   string
	inputDir      string
	outputDir     string
	useS3         bool
	migrationsDir string
	noMigrate     bool
}

func (o *corpusOptions) addManifestFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.sourcesFile, "sources", "", "Source manifest YAML (default: LEXCORPUS_SOURCES_FILE or the built-in corpus)")
	cmd.Flags().StringVarP(&o.inputDir, "input", "i", "", "Directory holding the source documents (default: LEXCORPUS_INPUT_DIR)")
	cmd.Flags().StringVarP(&o.outputDir, "output-dir", "o", "", "Directory for JSONL artifacts (default: LEXCORPUS_OUTPUT_DIR)")
	cmd.Flags().BoolVar(&o.useS3, "s3", false, "Use the configured S3 bucket as the artifact store")
}

func (o *corpusOptions) addDatabaseFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.migrationsDir, "migrations", database.DefaultMigrationsDir, "Directory with SQL migrations")
	cmd.Flags().BoolVar(&o.noMigrate, "no-migrate", false, "Skip automatic database migrations")
}

// apply overlays non-empty flags on cfg.
func (o *corpusOptions) apply(cfg *config.Config) {
	if o.sourcesFile != "" {
		cfg.SourcesFile = o.sourcesFile
	}
	if o.inputDir != "" {
		cfg.InputDir = o.inputDir
	}
	if o.outputDir != "" {
		cfg.OutputDir = o.outputDir
	}
}

func loadConfig(o *corpusOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	o.apply(cfg)
	return cfg, nil
}

// loadManifest reads and validates the manifest, then applies the --only filter.
func loadManifest(cfg *config.Config, only []string) (sources.Manifest, error) {
	m, err := sources.Load(cfg.SourcesFile)
	if err != nil {
		return sources.Manifest{}, err
	}
	if err := m.Validate(); err != nil {
		return sources.Manifest{}, err
	}
	return m.Filter(only)
}

func newChunker() *chunker.Chunker {
	return chunker.New(chunker.DefaultConfig())
}

func newValidator() *validate.Validator {
	c := chunker.DefaultConfig()
	return validate.New(c.MinChars, c.MaxChars)
}
