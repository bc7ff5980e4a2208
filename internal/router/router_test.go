package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

func TestDefaultRouting(t *testing.T) {
	r := New(DefaultConfig())

	tests := []struct {
		stage      Stage
		complexity Complexity
		want       Tier
	}{
		{StageLexical, ComplexityNormal, TierFast},
		{StageSemantic, ComplexityNormal, TierBalanced},
		{StageCoverage, ComplexityNormal, TierFast},
		{StageContract, ComplexityNormal, TierPremium},
		{StageContract, ComplexityHigh, TierPremium},
		{StageContract, ComplexityLow, TierBalanced},
		{StageLexical, ComplexityLow, TierFast},
	}

	for _, tt := range tests {
		choice, err := r.SelectModel(tt.stage, tt.complexity, "")
		require.NoError(t, err)
		assert.Equal(t, tt.want, choice.Tier, "stage %s complexity %s", tt.stage, tt.complexity)
		assert.NotEmpty(t, choice.Model)
	}
}

func TestForceTierWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ForceTier = TierBalanced
	r := New(cfg)

	for _, stage := range Stages {
		choice, err := r.SelectModel(stage, ComplexityHigh, "")
		require.NoError(t, err)
		assert.Equal(t, TierBalanced, choice.Tier)
	}
}

func TestFallbackChain(t *testing.T) {
	disable := func(cfg Config, tiers ...Tier) Config {
		for _, tier := range tiers {
			tc := cfg.Tiers[tier]
			tc.Enabled = false
			cfg.Tiers[tier] = tc
		}
		return cfg
	}

	// fast disabled: lexical escalates to balanced.
	r := New(disable(DefaultConfig(), TierFast))
	choice, err := r.SelectModel(StageLexical, ComplexityNormal, "")
	require.NoError(t, err)
	assert.Equal(t, TierBalanced, choice.Tier)

	// fast and balanced disabled: lexical walks to premium.
	r = New(disable(DefaultConfig(), TierFast, TierBalanced))
	choice, err = r.SelectModel(StageLexical, ComplexityNormal, "")
	require.NoError(t, err)
	assert.Equal(t, TierPremium, choice.Tier)

	// premium disabled: contract falls back to balanced.
	r = New(disable(DefaultConfig(), TierPremium))
	choice, err = r.SelectModel(StageContract, ComplexityNormal, "")
	require.NoError(t, err)
	assert.Equal(t, TierBalanced, choice.Tier)

	// balanced and premium disabled: contract walks all the way to fast.
	r = New(disable(DefaultConfig(), TierBalanced, TierPremium))
	choice, err = r.SelectModel(StageContract, ComplexityNormal, "")
	require.NoError(t, err)
	assert.Equal(t, TierFast, choice.Tier)

	// same config: balanced-routed semantic also ends on fast.
	choice, err = r.SelectModel(StageSemantic, ComplexityNormal, "")
	require.NoError(t, err)
	assert.Equal(t, TierFast, choice.Tier)
}

func TestForcedTierPrecedence(t *testing.T) {
	// A per-call forced tier overrides the routing table.
	r := New(DefaultConfig())
	choice, err := r.SelectModel(StageLexical, ComplexityNormal, TierPremium)
	require.NoError(t, err)
	assert.Equal(t, TierPremium, choice.Tier)

	// The configured force-override outranks the per-call one.
	cfg := DefaultConfig()
	cfg.ForceTier = TierBalanced
	r = New(cfg)
	choice, err = r.SelectModel(StageLexical, ComplexityNormal, TierPremium)
	require.NoError(t, err)
	assert.Equal(t, TierBalanced, choice.Tier)

	// Forcing a disabled tier per-call still walks the fallback chain.
	cfg = DefaultConfig()
	tc := cfg.Tiers[TierPremium]
	tc.Enabled = false
	cfg.Tiers[TierPremium] = tc
	r = New(cfg)
	choice, err = r.SelectModel(StageLexical, ComplexityNormal, TierPremium)
	require.NoError(t, err)
	assert.Equal(t, TierBalanced, choice.Tier)

	// An unknown forced tier is rejected.
	r = New(DefaultConfig())
	_, err = r.SelectModel(StageLexical, ComplexityNormal, Tier("bogus"))
	require.Error(t, err)
	assert.Equal(t, types.PIPELINE_NO_AVAILABLE_MODEL, types.CodeOf(err))
}

func TestNoAvailableModel(t *testing.T) {
	cfg := DefaultConfig()
	for tier, tc := range cfg.Tiers {
		tc.Enabled = false
		cfg.Tiers[tier] = tc
	}
	r := New(cfg)

	_, err := r.SelectModel(StageContract, ComplexityNormal, "")
	require.Error(t, err)
	assert.Equal(t, types.PIPELINE_NO_AVAILABLE_MODEL, types.CodeOf(err))
}

func TestPlanCoversAllStagesInOrder(t *testing.T) {
	r := New(DefaultConfig())
	plan, err := r.Plan(ComplexityNormal)
	require.NoError(t, err)
	require.Len(t, plan, 4)

	wantStages := []Stage{StageLexical, StageSemantic, StageCoverage, StageContract}
	wantTiers := []Tier{TierFast, TierBalanced, TierFast, TierPremium}
	for i := range plan {
		assert.Equal(t, wantStages[i], plan[i].Stage)
		assert.Equal(t, wantTiers[i], plan[i].Tier)
	}
}

func TestEstimateCost(t *testing.T) {
	r := New(DefaultConfig())

	cost, err := r.EstimateCost(TierFast, 1000, 1000)
	require.NoError(t, err)
	assert.InDelta(t, 0.0008+0.004, cost, 1e-9)

	cost, err = r.EstimateCost(TierPremium, 2000, 500)
	require.NoError(t, err)
	assert.InDelta(t, 2*0.015+0.5*0.075, cost, 1e-9)

	_, err = r.EstimateCost(Tier("bogus"), 1, 1)
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
}

func TestEstimatePipelineCost(t *testing.T) {
	r := New(DefaultConfig())

	total, err := r.EstimatePipelineCost(ComplexityNormal)
	require.NoError(t, err)

	// Hand-computed from the routing table, rate table, and the
	// per-stage token assumptions.
	lexical := 0.8*0.0008 + 0.6*0.004
	semantic := 1.5*0.003 + 1.2*0.015
	coverage := 1.8*0.0008 + 0.8*0.004
	contract := 2.5*0.015 + 1.5*0.075
	assert.InDelta(t, lexical+semantic+coverage+contract, total, 1e-9)
}

func TestConfigValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("forced disabled tier rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		tc := cfg.Tiers[TierPremium]
		tc.Enabled = false
		cfg.Tiers[TierPremium] = tc
		cfg.ForceTier = TierPremium
		err := cfg.Validate()
		assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
	})

	t.Run("all disabled rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		for tier, tc := range cfg.Tiers {
			tc.Enabled = false
			cfg.Tiers[tier] = tc
		}
		err := cfg.Validate()
		assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
	})

	t.Run("missing tier rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		delete(cfg.Tiers, TierBalanced)
		err := cfg.Validate()
		assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
	})
}
