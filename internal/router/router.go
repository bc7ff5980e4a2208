package router

import (
	"fmt"

	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// routingTable maps each stage to its preferred tier. Extraction and
// auditing are mechanical and go to the fast tier; interpretation goes
// to balanced; final synthesis goes to premium.
var routingTable = map[Stage]Tier{
	StageLexical:  TierFast,
	StageSemantic: TierBalanced,
	StageCoverage: TierFast,
	StageContract: TierPremium,
}

// fallbackTable is the ordered fallback list walked when the preferred
// tier is disabled. Every list covers the remaining tiers, so as long as
// any tier is enabled a stage gets a model; fast and balanced escalate
// first, premium degrades gracefully.
var fallbackTable = map[Tier][]Tier{
	TierFast:     {TierBalanced, TierPremium},
	TierBalanced: {TierPremium, TierFast},
	TierPremium:  {TierBalanced, TierFast},
}

// Choice is one routing decision: the tier that will serve a stage plus
// the concrete model parameters behind it.
type Choice struct {
	Stage Stage      `json:"stage"`
	Tier  Tier       `json:"tier"`
	Model string     `json:"model"`
	Cfg   TierConfig `json:"-"`
}

// Router decides which model serves each stage.
type Router interface {
	SelectModel(stage Stage, complexity Complexity, forced Tier) (Choice, error)
	EstimateCost(tier Tier, inputTokens, outputTokens int) (float64, error)
	Plan(complexity Complexity) ([]Choice, error)
	EstimatePipelineCost(complexity Complexity) (float64, error)
}

// DefaultRouter is the standard Router implementation over a static
// Config. Decisions are pure functions of the config; the router holds
// no mutable state.
type DefaultRouter struct {
	cfg Config
}

// New creates a router over the given config. The config must already
// have passed Validate.
func New(cfg Config) *DefaultRouter {
	return &DefaultRouter{cfg: cfg}
}

// SelectModel picks the tier for a stage. Order of authority:
//
//  1. The configured ForceTier wins unconditionally.
//  2. forced, the caller's per-call override, when non-empty.
//  3. The routing table, with the contract stage downgraded to balanced
//     when the caller hints low complexity.
//  4. DefaultTier for any stage the table does not cover.
//
// If the chosen tier is disabled the fallback chain is walked; an
// exhausted chain is the fatal no-available-model condition.
func (r *DefaultRouter) SelectModel(stage Stage, complexity Complexity, forced Tier) (Choice, error) {
	if !stage.IsValid() {
		return Choice{}, types.NewError(types.PIPELINE_NO_AVAILABLE_MODEL,
			fmt.Sprintf("unknown stage %q", stage))
	}

	if r.cfg.ForceTier != "" {
		return r.resolve(stage, r.cfg.ForceTier)
	}
	if forced != "" {
		if !forced.IsValid() {
			return Choice{}, types.NewError(types.PIPELINE_NO_AVAILABLE_MODEL,
				fmt.Sprintf("unknown forced tier %q", forced))
		}
		return r.resolve(stage, forced)
	}

	tier, ok := routingTable[stage]
	if !ok {
		tier = r.cfg.DefaultTier
		if tier == "" {
			tier = TierBalanced
		}
	}
	if stage == StageContract && complexity == ComplexityLow {
		tier = TierBalanced
	}
	return r.resolve(stage, tier)
}

// resolve tries tier, then its fallback list in order, and returns the
// first enabled tier. Exhausting the list means no tier at all is enabled
// for this stage.
func (r *DefaultRouter) resolve(stage Stage, tier Tier) (Choice, error) {
	for _, t := range append([]Tier{tier}, fallbackTable[tier]...) {
		tc, ok := r.cfg.Tiers[t]
		if ok && tc.Enabled {
			return Choice{Stage: stage, Tier: t, Model: tc.Model, Cfg: tc}, nil
		}
	}
	return Choice{}, types.NewError(types.PIPELINE_NO_AVAILABLE_MODEL,
		fmt.Sprintf("no enabled tier reachable from %q for stage %q", tier, stage))
}

// Plan reports the tier each stage would get under the current config,
// in pipeline order. Purely informational; makes routing inspectable
// without running anything.
func (r *DefaultRouter) Plan(complexity Complexity) ([]Choice, error) {
	plan := make([]Choice, 0, len(Stages))
	for _, stage := range Stages {
		choice, err := r.SelectModel(stage, complexity, "")
		if err != nil {
			return nil, err
		}
		plan = append(plan, choice)
	}
	return plan, nil
}
