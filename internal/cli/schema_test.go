package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *cobra.Command {
	root := &cobra.Command{Use: "lexcorpus", Short: "root"}
	root.PersistentFlags().Bool("output", false, "Output as JSON")
	AddHelpJSONFlag(root)

	process := &cobra.Command{Use: "process", Short: "Run the pipeline", RunE: func(*cobra.Command, []string) error { return nil }}
	process.Flags().StringSlice("only", nil, "Only these documents")
	process.Flags().IntP("workers", "w", 0, "Parallel documents")

	chunk := &cobra.Command{Use: "chunk <file>", Aliases: []string{"c"}, RunE: func(*cobra.Command, []string) error { return nil }}
	chunk.Flags().StringP("mode", "m", "", "Chunking mode")
	_ = chunk.MarkFlagRequired("mode")

	hidden := &cobra.Command{Use: "debug", Hidden: true, Run: func(*cobra.Command, []string) {}}

	root.AddCommand(process, chunk, hidden)
	return root
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema(testTree())

	assert.Equal(t, "lexcorpus", schema.Name)
	assert.False(t, schema.Runnable)
	require.Len(t, schema.Subcommands, 2)

	chunk := schema.Subcommands[0]
	assert.Equal(t, "chunk", chunk.Name)
	assert.Equal(t, "lexcorpus chunk", chunk.Path)
	assert.Equal(t, []string{"c"}, chunk.Aliases)
	require.Len(t, chunk.Flags, 2)
	assert.Equal(t, "mode", chunk.Flags[0].Name)
	assert.True(t, chunk.Flags[0].Required)
	assert.Equal(t, "output", chunk.Flags[1].Name)
	assert.True(t, chunk.Flags[1].Inherited)

	process := schema.Subcommands[1]
	assert.Equal(t, "process", process.Name)
	assert.True(t, process.Runnable)
	require.Len(t, process.Flags, 3)
	assert.Equal(t, "only", process.Flags[0].Name)
	assert.Equal(t, "workers", process.Flags[1].Name)
	assert.Equal(t, "w", process.Flags[1].Shorthand)
	assert.Equal(t, "int", process.Flags[1].Type)
	assert.False(t, process.Flags[1].Required)
}

func TestHelpJSONTarget(t *testing.T) {
	root := testTree()

	_, ok := helpJSONTarget(root, []string{"process", "--only", "law"})
	assert.False(t, ok)

	cmd, ok := helpJSONTarget(root, []string{"--help-json"})
	require.True(t, ok)
	assert.Equal(t, root, cmd)

	cmd, ok = helpJSONTarget(root, []string{"c", "--help-json"})
	require.True(t, ok)
	assert.Equal(t, "chunk", cmd.Name())

	cmd, ok = helpJSONTarget(root, []string{"unknown", "--help-json"})
	require.True(t, ok)
	assert.Equal(t, root, cmd)
}

func TestWriteSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSchema(&buf, testTree()))

	var decoded CommandSchema
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "lexcorpus", decoded.Name)
	assert.Len(t, decoded.Subcommands, 2)
}
