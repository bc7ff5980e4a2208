package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/kolobosdimitrios/GANDALF/internal/router"
	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// envPattern matches ${VAR_NAME} references in config values.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads a YAML config file, interpolates ${ENV} references, applies
// the GANDALF_* environment overrides, and validates the result. An
// empty path yields the defaults (still subject to env overrides).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, types.WrapError(types.CONFIG_NOT_FOUND,
					fmt.Sprintf("config file %s not found", path), err)
			}
			return nil, types.WrapError(types.CONFIG_LOAD_FAILED,
				fmt.Sprintf("reading config file %s", path), err)
		}

		interpolateEnv(v)

		if err := v.Unmarshal(cfg); err != nil {
			return nil, types.WrapError(types.CONFIG_PARSE_FAILED,
				fmt.Sprintf("parsing config file %s", path), err)
		}
	} else {
		// Interpolate the defaults too; they reference ${ANTHROPIC_API_KEY}.
		for name, pc := range cfg.Providers {
			pc.APIKey = expandEnv(pc.APIKey)
			cfg.Providers[name] = pc
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// interpolateEnv rewrites every string value in the viper tree, replacing
// ${VAR} with the variable's value. Unset variables become empty strings.
func interpolateEnv(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		if s, ok := v.Get(key).(string); ok {
			v.Set(key, expandEnv(s))
		}
	}
}

func expandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}

// applyEnvOverrides maps the operator steering variables onto the router
// policy: GANDALF_ENABLE_FAST and GANDALF_ENABLE_PREMIUM toggle the outer
// tiers, GANDALF_FORCE_TIER pins every stage to one tier, and
// GANDALF_DEFAULT_TIER changes the unrouted-stage default.
func applyEnvOverrides(cfg *Config) {
	if v, ok := boolEnv("GANDALF_ENABLE_FAST"); ok {
		tc := cfg.Router.Tiers[router.TierFast]
		tc.Enabled = v
		cfg.Router.Tiers[router.TierFast] = tc
	}
	if v, ok := boolEnv("GANDALF_ENABLE_PREMIUM"); ok {
		tc := cfg.Router.Tiers[router.TierPremium]
		tc.Enabled = v
		cfg.Router.Tiers[router.TierPremium] = tc
	}
	if v := os.Getenv("GANDALF_FORCE_TIER"); v != "" {
		cfg.Router.ForceTier = router.Tier(strings.ToLower(v))
	}
	if v := os.Getenv("GANDALF_DEFAULT_TIER"); v != "" {
		cfg.Router.DefaultTier = router.Tier(strings.ToLower(v))
	}
}

func boolEnv(name string) (value, set bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return false, false
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return parsed, true
}
