package router

import (
	"fmt"

	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// stageTokenEstimates are the assumed per-stage token volumes used for
// whole-pipeline cost estimation. Rough by design; estimates feed
// telemetry and the plan command, never routing decisions.
var stageTokenEstimates = map[Stage]struct{ in, out int }{
	StageLexical:  {in: 800, out: 600},
	StageSemantic: {in: 1500, out: 1200},
	StageCoverage: {in: 1800, out: 800},
	StageContract: {in: 2500, out: 1500},
}

// EstimateCost prices a single call against a tier's per-1K rates. An
// unknown tier is a caller mistake against the configured tier set, not
// a routing failure.
func (r *DefaultRouter) EstimateCost(tier Tier, inputTokens, outputTokens int) (float64, error) {
	tc, ok := r.cfg.Tiers[tier]
	if !ok {
		return 0, types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("unknown tier %q", tier))
	}
	in := float64(inputTokens) / 1000 * tc.InputCostPer1K
	out := float64(outputTokens) / 1000 * tc.OutputCostPer1K
	return in + out, nil
}

// EstimatePipelineCost prices a full clean-path run (each stage once)
// under the current routing and the assumed token volumes.
func (r *DefaultRouter) EstimatePipelineCost(complexity Complexity) (float64, error) {
	total := 0.0
	for _, stage := range Stages {
		choice, err := r.SelectModel(stage, complexity, "")
		if err != nil {
			return 0, err
		}
		est := stageTokenEstimates[stage]
		cost, err := r.EstimateCost(choice.Tier, est.in, est.out)
		if err != nil {
			return 0, err
		}
		total += cost
	}
	return total, nil
}
