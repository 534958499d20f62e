package admin

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cloo-solutions/lexcorpus/internal/service"
	"github.com/spf13/cobra"
)

// APIKeyCmd returns the apikey command
func APIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage the API key",
		Long:  "Generate keys for LEXCORPUS_API_KEY. The server holds a single static key; rotate it by generating a new one and restarting.",
	}

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			return runAPIKeyGenerate(cmd.OutOrStdout(), format)
		},
	}
	generate.Flags().String("output", "text", "Output format (text or json)")
	cmd.AddCommand(generate)

	return cmd
}

func runAPIKeyGenerate(out io.Writer, format string) error {
	key, err := service.GenerateAPIKey()
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{"api_key": key})
	case "text", "":
		fmt.Fprintln(out, "API key generated. It will not be shown again.")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  LEXCORPUS_API_KEY=%s\n", key)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
