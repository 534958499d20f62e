package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// AuthCmd creates the auth parent command
func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage API credentials",
		Long:  "Login, logout, and check which credentials the lexcorpus client uses",
	}

	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authLogoutCmd())
	cmd.AddCommand(authStatusCmd())

	return cmd
}

func authLoginCmd() *cobra.Command {
	var apiKey, apiURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key",
		Long:  "Store API key and URL in the global config (<user config dir>/lexcorpus/config.json)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(cmd.InOrStdin(), cmd.OutOrStdout(), apiKey, apiURL)
		},
	}

	cmd.Flags().StringVar(&apiKey, "key", "", "API key (lxc_...)")
	cmd.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API URL")

	return cmd
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := DeleteGlobalConfig(); err != nil {
				return fmt.Errorf("failed to logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Successfully logged out")
			return nil
		},
	}
}

func authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the effective credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAuthStatus(cmd.OutOrStdout(), outputJSON)
		},
	}
}

func runAuthLogin(in io.Reader, out io.Writer, apiKey, apiURL string) error {
	if apiKey == "" {
		fmt.Fprint(out, "Enter API key: ")
		input, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		apiKey = strings.TrimSpace(input)
	}

	if !IsValidAPIKey(apiKey) {
		return fmt.Errorf("invalid API key format (expected: lxc_ + 64 hex characters)")
	}

	if err := SaveGlobalConfig(&GlobalConfig{APIKey: apiKey, APIURL: apiURL}); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Fprintln(out, "Successfully logged in")
	return nil
}

func runAuthStatus(out io.Writer, outputJSON bool) error {
	creds, err := ResolveCredentials("", "")
	if err != nil {
		return err
	}

	if outputJSON {
		status := map[string]interface{}{
			"authenticated": creds.Source != SourceNone,
			"source":        string(creds.Source),
			"api_url":       creds.APIURL,
		}
		if creds.Source != SourceNone {
			status["api_key"] = maskAPIKey(creds.APIKey)
		}
		return writeJSON(out, status)
	}

	fmt.Fprintf(out, "API URL: %s\n", creds.APIURL)
	if creds.Source == SourceNone {
		fmt.Fprintln(out, "API Key: none (requests are sent without authorization)")
		return nil
	}
	fmt.Fprintf(out, "API Key: %s\n", maskAPIKey(creds.APIKey))
	fmt.Fprintf(out, "Source: %s\n", creds.Source)
	return nil
}

func maskAPIKey(key string) string {
	if len(key) < 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

func writeJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
