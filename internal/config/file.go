package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".lspfmt.yaml"

// fileConfig mirrors Config in the file. Unset keys leave the base value.
type fileConfig struct {
	FormatOnSave        *bool    `yaml:"format_on_save"`
	FormatOnSaveTimeout string   `yaml:"format_on_save_timeout"`
	TabSize             *int     `yaml:"tab_size"`
	Server              []string `yaml:"server"`
}

// FromFile returns base with the settings in the YAML file at path applied.
func FromFile(base Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	return parse(base, data, path)
}

// FromFileIfExists is FromFile, except that a missing file leaves base as is.
func FromFileIfExists(base Config, path string) (Config, error) {
	cfg, err := FromFile(base, path)
	if os.IsNotExist(err) {
		return base, nil
	}
	return cfg, err
}

func parse(base Config, data []byte, path string) (Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return base, fmt.Errorf("%s: %w", path, err)
	}

	cfg := base
	if fc.FormatOnSave != nil {
		cfg.FormatOnSave = *fc.FormatOnSave
	}
	if fc.FormatOnSaveTimeout != "" {
		d, err := time.ParseDuration(fc.FormatOnSaveTimeout)
		if err != nil {
			return base, fmt.Errorf("%s: format_on_save_timeout: %w", path, err)
		}
		cfg.FormatOnSaveTimeout = d
	}
	if fc.TabSize != nil {
		cfg.TabSize = *fc.TabSize
	}
	if len(fc.Server) > 0 {
		cfg.ServerCommand = fc.Server
	}
	if err := cfg.Validate(); err != nil {
		return base, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
