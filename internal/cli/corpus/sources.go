package corpus

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// SourcesCmd prints the effective source manifest.
func SourcesCmd() *cobra.Command {
	var opts corpusOptions

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Print the source manifest",
		Long: `Prints the source manifest in effect as YAML: the file given with --sources or
LEXCORPUS_SOURCES_FILE, or the built-in corpus. The output can be edited and
passed back with --sources.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSources(cmd.OutOrStdout(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.sourcesFile, "sources", "", "Source manifest YAML")

	return cmd
}

func runSources(out io.Writer, opts *corpusOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	manifest, err := loadManifest(cfg, nil)
	if err != nil {
		return err
	}
	data, err := manifest.Marshal()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, string(data))
	return err
}
