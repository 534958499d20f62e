package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cloo-solutions/lexcorpus/internal/cli"
	"github.com/cloo-solutions/lexcorpus/internal/validate"
	"github.com/spf13/cobra"
)

const defaultMaxIssues = 20

type validateOptions struct {
	corpusOptions
	only      []string
	maxIssues int
}

// ValidateCmd checks JSONL artifacts against the record and file rules.
func ValidateCmd() *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate [artifact.jsonl...]",
		Short: "Check JSONL artifacts for quality issues",
		Long: `Validates the given JSONL files, or every artifact of the source manifest when
no file is given. Exits non-zero when any issue is found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runValidate(cmd.Context(), cmd.OutOrStdout(), &opts, args, outputJSON)
		},
	}

	opts.addManifestFlags(cmd)
	cmd.Flags().StringSliceVar(&opts.only, "only", nil, "Validate only these documents' artifacts")
	cmd.Flags().IntVar(&opts.maxIssues, "max-issues", defaultMaxIssues, "Issues printed per file (0 prints all)")

	return cmd
}

func runValidate(ctx context.Context, out io.Writer, opts *validateOptions, files []string, outputJSON bool) error {
	v := newValidator()
	var reports []validate.Report

	if len(files) > 0 {
		for _, path := range files {
			report, err := validateFile(v, path)
			if err != nil {
				return err
			}
			reports = append(reports, report)
		}
	} else {
		cfg, err := loadConfig(&opts.corpusOptions)
		if err != nil {
			return err
		}
		manifest, err := loadManifest(cfg, opts.only)
		if err != nil {
			return err
		}
		store, err := cli.OpenArtifactStore(ctx, cfg, cfg.OutputDir, opts.useS3)
		if err != nil {
			return err
		}
		for _, doc := range manifest.Sources {
			data, err := store.Get(ctx, doc.OutName)
			if err != nil {
				return fmt.Errorf("%s: %w", doc.OutName, err)
			}
			report, err := v.File(doc.OutName, bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("%s: %w", doc.OutName, err)
			}
			reports = append(reports, report)
		}
	}

	if outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		printReports(out, reports, opts.maxIssues)
	}

	failed := 0
	for _, r := range reports {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d artifacts have issues", failed, len(reports))
	}
	return nil
}

func validateFile(v *validate.Validator, path string) (validate.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return validate.Report{}, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()
	return v.File(filepath.Base(path), f)
}

func printReports(out io.Writer, reports []validate.Report, maxIssues int) {
	for _, r := range reports {
		if r.OK() {
			fmt.Fprintf(out, "PASS %s (%d records)\n", r.File, r.Records)
			continue
		}
		fmt.Fprintf(out, "FAIL %s (%d records, %d issues)\n", r.File, r.Records, len(r.Issues))
		for i, issue := range r.Issues {
			if maxIssues > 0 && i == maxIssues {
				fmt.Fprintf(out, "  ... %d more\n", len(r.Issues)-maxIssues)
				break
			}
			fmt.Fprintf(out, "  %s\n", issue)
		}
	}
}
