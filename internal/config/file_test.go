package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFromFile(t *testing.T) {
	path := writeConfig(t, `
format_on_save: false
format_on_save_timeout: 500ms
tab_size: 8
server: [gopls, serve]
`)
	cfg, err := FromFile(Default(), path)
	require.NoError(t, err)
	assert.False(t, cfg.FormatOnSave)
	assert.Equal(t, 500*time.Millisecond, cfg.FormatOnSaveTimeout)
	assert.Equal(t, 8, cfg.TabSize)
	assert.Equal(t, []string{"gopls", "serve"}, cfg.ServerCommand)
}

func TestFromFilePartial(t *testing.T) {
	cfg, err := FromFile(Default(), writeConfig(t, "tab_size: 2\n"))
	require.NoError(t, err)
	assert.True(t, cfg.FormatOnSave)
	assert.Equal(t, DefaultFormatOnSaveTimeout, cfg.FormatOnSaveTimeout)
	assert.Equal(t, 2, cfg.TabSize)
}

func TestFromFileInvalid(t *testing.T) {
	for name, content := range map[string]string{
		"syntax":   "tab_size: [",
		"duration": "format_on_save_timeout: later\n",
		"tab size": "tab_size: 0\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := FromFile(Default(), writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestFromFileIfExists(t *testing.T) {
	missing := filepath.Join(t.TempDir(), FileName)
	cfg, err := FromFileIfExists(Default(), missing)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = FromFile(Default(), missing)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
