package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolobosdimitrios/GANDALF/internal/router"
	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, router.TierBalanced, cfg.Router.DefaultTier)
	assert.Contains(t, cfg.Providers, "anthropic")
}

func TestLoadFileWithEnvInterpolation(t *testing.T) {
	t.Setenv("TEST_GANDALF_KEY", "sk-test-123")

	path := writeConfig(t, `
logging:
  level: debug
providers:
  anthropic:
    type: anthropic
    api_key: ${TEST_GANDALF_KEY}
store:
  path: /tmp/test-gandalf.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "sk-test-123", cfg.Providers["anthropic"].APIKey)
	assert.Equal(t, "/tmp/test-gandalf.db", cfg.Store.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_NOT_FOUND, types.CodeOf(err))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GANDALF_ENABLE_FAST", "false")
	t.Setenv("GANDALF_ENABLE_PREMIUM", "false")
	t.Setenv("GANDALF_DEFAULT_TIER", "balanced")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Router.Tiers[router.TierFast].Enabled)
	assert.False(t, cfg.Router.Tiers[router.TierPremium].Enabled)
	assert.True(t, cfg.Router.Tiers[router.TierBalanced].Enabled)
	assert.Equal(t, router.TierBalanced, cfg.Router.DefaultTier)
}

func TestForceTierOverride(t *testing.T) {
	t.Setenv("GANDALF_FORCE_TIER", "PREMIUM")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, router.TierPremium, cfg.Router.ForceTier)
}

func TestForcedDisabledTierRejected(t *testing.T) {
	t.Setenv("GANDALF_ENABLE_PREMIUM", "false")
	t.Setenv("GANDALF_FORCE_TIER", "premium")

	_, err := Load("")
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
}

func TestValidateRejectsUnknownProviderReference(t *testing.T) {
	cfg := DefaultConfig()
	tc := cfg.Router.Tiers[router.TierFast]
	tc.Provider = "nonexistent"
	cfg.Router.Tiers[router.TierFast] = tc

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
}
