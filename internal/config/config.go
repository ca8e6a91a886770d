package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultFormatOnSaveTimeout = 2 * time.Second
	DefaultTabSize             = 4
)

// Environment variables read by FromEnv.
const (
	EnvFormatOnSave        = "LSPFMT_FORMAT_ON_SAVE"
	EnvFormatOnSaveTimeout = "LSPFMT_FORMAT_ON_SAVE_TIMEOUT"
	EnvTabSize             = "LSPFMT_TAB_SIZE"
	EnvServer              = "LSPFMT_SERVER"
)

type Config struct {
	FormatOnSave        bool
	FormatOnSaveTimeout time.Duration

	// TabSize is used for documents that carry no indent setting of their own.
	TabSize int

	// ServerCommand is the language server to spawn. Empty means the
	// built-in reference server.
	ServerCommand []string
}

func Default() Config {
	return Config{
		FormatOnSave:        true,
		FormatOnSaveTimeout: DefaultFormatOnSaveTimeout,
		TabSize:             DefaultTabSize,
	}
}

// FromEnv returns base with every variable that is set in the environment
// applied on top of it.
func FromEnv(base Config) (Config, error) {
	cfg := base
	if v, ok := os.LookupEnv(EnvFormatOnSave); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvFormatOnSave, err)
		}
		cfg.FormatOnSave = b
	}
	if v, ok := os.LookupEnv(EnvFormatOnSaveTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvFormatOnSaveTimeout, err)
		}
		cfg.FormatOnSaveTimeout = d
	}
	if v, ok := os.LookupEnv(EnvTabSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvTabSize, err)
		}
		cfg.TabSize = n
	}
	if v, ok := os.LookupEnv(EnvServer); ok {
		cfg.ServerCommand = strings.Fields(v)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.FormatOnSaveTimeout <= 0 {
		return errors.New("format on save timeout must be positive")
	}
	if c.TabSize <= 0 {
		return fmt.Errorf("invalid tab size %d", c.TabSize)
	}
	return nil
}
