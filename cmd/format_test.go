package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/harry-hov/lspfmt/internal/config"
	"github.com/harry-hov/lspfmt/internal/format"
)

func pos(line, char uint32) protocol.Position {
	return protocol.Position{Line: line, Character: char}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in   string
		want protocol.Range
	}{
		{"1-1", protocol.Range{Start: pos(0, 0), End: pos(1, 0)}},
		{"3-5", protocol.Range{Start: pos(2, 0), End: pos(5, 0)}},
		{"2:3-2:7", protocol.Range{Start: pos(1, 2), End: pos(1, 6)}},
		{"2:3-4", protocol.Range{Start: pos(1, 2), End: pos(4, 0)}},
		{" 1 - 2:1", protocol.Range{Start: pos(0, 0), End: pos(1, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseRange(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRangeInvalid(t *testing.T) {
	for _, in := range []string{"", "3", "0-2", "a-b", "2:0-3", "4-3", "2:5-2:5", "2:x-3"} {
		t.Run(in, func(t *testing.T) {
			_, err := parseRange(in)
			assert.ErrorIs(t, err, errInvalidRange)
		})
	}
}

func TestLanguageID(t *testing.T) {
	assert.Equal(t, "go", languageID("/a/b.go"))
	assert.Equal(t, "markdown", languageID("README.md"))
	assert.Equal(t, "plaintext", languageID("Makefile"))
}

func TestServerCommand(t *testing.T) {
	cfg := config.Default()
	cfg.ServerCommand = []string{"gopls", "serve"}
	argv, err := serverCommand(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"gopls", "serve"}, argv)

	argv, err = serverCommand(config.Default())
	require.NoError(t, err)
	require.Len(t, argv, 2)
	assert.Equal(t, "serve", argv[1])
}

func TestCommandTree(t *testing.T) {
	root := LspfmtCmd()
	for _, name := range []string{"serve", "format", "version"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lspfmt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tab_size: 2\nformat_on_save_timeout: 1s\n"), 0o644))
	t.Setenv(config.EnvTabSize, "3")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.TabSize)
	assert.Equal(t, time.Second, cfg.FormatOnSaveTimeout)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))
}

func TestSaveError(t *testing.T) {
	assert.NoError(t, saveError(format.SaveResult{State: format.StateApplied, Edits: 2}))
	assert.NoError(t, saveError(format.SaveResult{State: format.StateIdle}))

	err := saveError(format.SaveResult{State: format.StateTimedOut, Elapsed: 1500 * time.Millisecond})
	assert.ErrorIs(t, err, errFormatTimeout)
	assert.Contains(t, err.Error(), "1.5s")

	cause := errors.New("cannot format")
	assert.ErrorIs(t, saveError(format.SaveResult{State: format.StateReported, Err: cause}), cause)
}
