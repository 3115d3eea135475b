package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRenderCommand_Stdin(t *testing.T) {
	out, err := execute(t, "# Install\n\nRun it.", "render", "--toc")
	require.NoError(t, err)

	var res struct {
		Content []map[string]any `json:"content"`
		TOC     []map[string]any `json:"toc"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	require.NotEmpty(t, res.Content)
	assert.Equal(t, "h1", res.Content[0]["tag"])
	require.Len(t, res.TOC, 1)
	assert.Equal(t, "install", res.TOC[0]["id"])
}

func TestRenderCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("some *text*"), 0o644))

	out, err := execute(t, "", "render", path, "--tokens")
	require.NoError(t, err)
	assert.Contains(t, out, `"paragraph_open"`)
}

func TestRenderCommand_BadMode(t *testing.T) {
	_, err := execute(t, "x", "render", "--mode", "html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown render mode")
}

func TestRenderCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "", "render", filepath.Join(t.TempDir(), "nope.md"))
	assert.Error(t, err)
}
