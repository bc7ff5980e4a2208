// Package config loads and validates the application configuration:
// router tier policy, provider credentials, storage path, and logging.
// Files are YAML with ${ENV_VAR} interpolation; a handful of GANDALF_*
// environment variables override the router policy directly so operators
// can steer tiers without editing files.
package config

import (
	"fmt"

	"github.com/kolobosdimitrios/GANDALF/internal/llm/providers"
	"github.com/kolobosdimitrios/GANDALF/internal/router"
	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// LoggingConfig controls the slog setup.
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// StoreConfig locates the SQLite artifact store.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// Config is the full application configuration.
type Config struct {
	Logging   LoggingConfig               `yaml:"logging" mapstructure:"logging"`
	Router    router.Config               `yaml:"router" mapstructure:"router"`
	Providers map[string]providers.Config `yaml:"providers" mapstructure:"providers"`
	Store     StoreConfig                 `yaml:"store" mapstructure:"store"`
}

// DefaultConfig returns the configuration used when no file is supplied:
// anthropic-only providers keyed from the environment, router defaults,
// and a local store.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Router:  router.DefaultConfig(),
		Providers: map[string]providers.Config{
			"anthropic": {
				Type:   "anthropic",
				APIKey: "${ANTHROPIC_API_KEY}",
			},
		},
		Store: StoreConfig{Path: "gandalf.db"},
	}
}

// Validate checks cross-field consistency: a valid router policy, every
// tier's provider present in the provider map, and a known log level.
func (c *Config) Validate() error {
	if err := c.Router.Validate(); err != nil {
		return err
	}

	for tier, tc := range c.Router.Tiers {
		if !tc.Enabled {
			continue
		}
		if _, ok := c.Providers[tc.Provider]; !ok {
			return types.NewError(types.CONFIG_VALIDATION_FAILED,
				fmt.Sprintf("tier %q references provider %q which is not configured", tier, tc.Provider))
		}
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("unknown log level %q", c.Logging.Level))
	}
	return nil
}
