// Package cli holds helpers shared by the lexcorpus and lexcorpusd command
// trees: the --help-json schema dump and the runtime wiring of stores,
// database and embedder.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const helpJSONFlag = "help-json"

// FlagSchema describes one flag in --help-json output.
type FlagSchema struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Inherited   bool   `json:"inherited,omitempty"`
}

// CommandSchema describes a command and its subcommands.
type CommandSchema struct {
	Name        string          `json:"name"`
	Path        string          `json:"path"`
	Use         string          `json:"use,omitempty"`
	Aliases     []string        `json:"aliases,omitempty"`
	Description string          `json:"description,omitempty"`
	Long        string          `json:"long,omitempty"`
	Runnable    bool            `json:"runnable"`
	Flags       []FlagSchema    `json:"flags,omitempty"`
	Subcommands []CommandSchema `json:"subcommands,omitempty"`
}

// GenerateSchema walks cmd and its visible subcommands.
func GenerateSchema(cmd *cobra.Command) CommandSchema {
	schema := CommandSchema{
		Name:        cmd.Name(),
		Path:        cmd.CommandPath(),
		Use:         cmd.Use,
		Aliases:     cmd.Aliases,
		Description: cmd.Short,
		Long:        cmd.Long,
		Runnable:    cmd.Runnable(),
		Flags:       commandFlags(cmd),
	}

	for _, sub := range cmd.Commands() {
		if sub.Name() == "help" || sub.Name() == "completion" || sub.Hidden {
			continue
		}
		schema.Subcommands = append(schema.Subcommands, GenerateSchema(sub))
	}

	return schema
}

// commandFlags lists local flags first, then flags inherited from parents,
// each group sorted by name.
func commandFlags(cmd *cobra.Command) []FlagSchema {
	var local, inherited []FlagSchema

	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if skipFlag(f) {
			return
		}
		local = append(local, flagToSchema(f, false))
	})
	cmd.InheritedFlags().VisitAll(func(f *pflag.Flag) {
		if skipFlag(f) {
			return
		}
		inherited = append(inherited, flagToSchema(f, true))
	})

	byName := func(fs []FlagSchema) {
		sort.Slice(fs, func(i, j int) bool { return fs[i].Name < fs[j].Name })
	}
	byName(local)
	byName(inherited)
	return append(local, inherited...)
}

func skipFlag(f *pflag.Flag) bool {
	return f.Hidden || f.Name == helpJSONFlag || f.Name == "help" || f.Name == "version"
}

func flagToSchema(f *pflag.Flag, inherited bool) FlagSchema {
	_, required := f.Annotations[cobra.BashCompOneRequiredFlag]
	return FlagSchema{
		Name:        f.Name,
		Shorthand:   f.Shorthand,
		Type:        f.Value.Type(),
		Default:     f.DefValue,
		Description: f.Usage,
		Required:    required,
		Inherited:   inherited,
	}
}

// WriteSchema writes the schema of cmd as indented JSON.
func WriteSchema(w io.Writer, cmd *cobra.Command) error {
	output, err := json.MarshalIndent(GenerateSchema(cmd), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// AddHelpJSONFlag adds the --help-json flag to a command.
func AddHelpJSONFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(helpJSONFlag, false, "Output command schema as JSON")
}

// CheckHelpJSON prints the schema of the addressed command and exits when
// os.Args contains --help-json. It runs before Execute so required args and
// flags do not get in the way.
func CheckHelpJSON(rootCmd *cobra.Command) {
	target, ok := helpJSONTarget(rootCmd, os.Args[1:])
	if !ok {
		return
	}
	if err := WriteSchema(os.Stdout, target); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schema: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

// helpJSONTarget resolves the command named by the words before --help-json.
func helpJSONTarget(rootCmd *cobra.Command, args []string) (*cobra.Command, bool) {
	for i, arg := range args {
		if arg == "--"+helpJSONFlag {
			return findTargetCommand(rootCmd, args[:i]), true
		}
	}
	return nil, false
}

func findTargetCommand(cmd *cobra.Command, args []string) *cobra.Command {
	if len(args) == 0 {
		return cmd
	}

	for _, sub := range cmd.Commands() {
		if sub.Name() == args[0] || sub.HasAlias(args[0]) {
			return findTargetCommand(sub, args[1:])
		}
	}

	return cmd
}
