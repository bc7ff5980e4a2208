// Package router selects which model tier serves each pipeline stage.
// Routing is a fixed policy table plus per-tier enable flags and an
// operator force-override; when a chosen tier is disabled an ordered
// fallback chain is walked until an enabled tier is found or the chain
// is exhausted.
package router

import (
	"fmt"

	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// Tier is a capability/cost class, not a concrete model. The concrete
// model behind a tier is configuration.
type Tier string

const (
	// TierFast is the cheapest tier, for mechanical extraction work.
	TierFast Tier = "fast"
	// TierBalanced is the mid tier, the general-purpose default.
	TierBalanced Tier = "balanced"
	// TierPremium is the most capable tier, reserved for synthesis.
	TierPremium Tier = "premium"
)

// IsValid checks if the Tier is one of the defined constants.
func (t Tier) IsValid() bool {
	switch t {
	case TierFast, TierBalanced, TierPremium:
		return true
	default:
		return false
	}
}

// Stage identifies one of the four pipeline stages.
type Stage string

const (
	StageLexical  Stage = "lexical"
	StageSemantic Stage = "semantic"
	StageCoverage Stage = "coverage"
	StageContract Stage = "contract"
)

// Stages is the fixed pipeline order.
var Stages = []Stage{StageLexical, StageSemantic, StageCoverage, StageContract}

// IsValid checks if the Stage is one of the defined constants.
func (s Stage) IsValid() bool {
	switch s {
	case StageLexical, StageSemantic, StageCoverage, StageContract:
		return true
	default:
		return false
	}
}

// Complexity is the caller's optional hint about how demanding the
// request is. It only ever downgrades; it never upgrades past the
// routing table.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityNormal Complexity = "normal"
	ComplexityHigh   Complexity = "high"
)

// TierConfig holds the concrete model and generation parameters behind
// one tier, plus its per-1K-token rates for cost estimation.
type TierConfig struct {
	Enabled         bool    `yaml:"enabled" mapstructure:"enabled"`
	Provider        string  `yaml:"provider" mapstructure:"provider"`
	Model           string  `yaml:"model" mapstructure:"model"`
	MaxTokens       int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature     float64 `yaml:"temperature" mapstructure:"temperature"`
	TimeoutSeconds  int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	InputCostPer1K  float64 `yaml:"input_cost_per_1k" mapstructure:"input_cost_per_1k"`
	OutputCostPer1K float64 `yaml:"output_cost_per_1k" mapstructure:"output_cost_per_1k"`
}

// Config is the router's full policy state.
type Config struct {
	// ForceTier, when set, overrides every routing decision. The forced
	// tier must be enabled; forcing a disabled tier is a configuration
	// error, not a fallback situation.
	ForceTier Tier `yaml:"force_tier" mapstructure:"force_tier"`

	// DefaultTier serves any stage missing from the routing table.
	DefaultTier Tier `yaml:"default_tier" mapstructure:"default_tier"`

	Tiers map[Tier]TierConfig `yaml:"tiers" mapstructure:"tiers"`
}

// DefaultConfig returns the shipped tier setup: all three tiers enabled
// on anthropic models, balanced as the default.
func DefaultConfig() Config {
	return Config{
		DefaultTier: TierBalanced,
		Tiers: map[Tier]TierConfig{
			TierFast: {
				Enabled:         true,
				Provider:        "anthropic",
				Model:           "claude-3-5-haiku-20241022",
				MaxTokens:       4096,
				Temperature:     0.0,
				TimeoutSeconds:  60,
				InputCostPer1K:  0.0008,
				OutputCostPer1K: 0.004,
			},
			TierBalanced: {
				Enabled:         true,
				Provider:        "anthropic",
				Model:           "claude-sonnet-4-20250514",
				MaxTokens:       8192,
				Temperature:     0.2,
				TimeoutSeconds:  120,
				InputCostPer1K:  0.003,
				OutputCostPer1K: 0.015,
			},
			TierPremium: {
				Enabled:         true,
				Provider:        "anthropic",
				Model:           "claude-opus-4-20250514",
				MaxTokens:       8192,
				Temperature:     0.2,
				TimeoutSeconds:  180,
				InputCostPer1K:  0.015,
				OutputCostPer1K: 0.075,
			},
		},
	}
}

// Validate checks the config is internally consistent: all three tiers
// configured, at least one enabled, and any forced tier both valid and
// enabled.
func (c *Config) Validate() error {
	anyEnabled := false
	for _, tier := range []Tier{TierFast, TierBalanced, TierPremium} {
		tc, ok := c.Tiers[tier]
		if !ok {
			return types.NewError(types.CONFIG_VALIDATION_FAILED,
				fmt.Sprintf("router config missing tier %q", tier))
		}
		if tc.Enabled {
			if tc.Model == "" {
				return types.NewError(types.CONFIG_VALIDATION_FAILED,
					fmt.Sprintf("tier %q enabled but has no model", tier))
			}
			anyEnabled = true
		}
	}
	if !anyEnabled {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			"router config has no enabled tiers")
	}
	if c.ForceTier != "" {
		if !c.ForceTier.IsValid() {
			return types.NewError(types.CONFIG_VALIDATION_FAILED,
				fmt.Sprintf("force_tier %q is not a known tier", c.ForceTier))
		}
		if !c.Tiers[c.ForceTier].Enabled {
			return types.NewError(types.CONFIG_VALIDATION_FAILED,
				fmt.Sprintf("force_tier %q is disabled", c.ForceTier))
		}
	}
	if c.DefaultTier != "" && !c.DefaultTier.IsValid() {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("default_tier %q is not a known tier", c.DefaultTier))
	}
	return nil
}
