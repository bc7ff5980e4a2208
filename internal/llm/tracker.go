package llm

import "sync"

// ModelUsage accumulates consumption for one model.
type ModelUsage struct {
	Calls        int     `json:"calls"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// UsageReport is a point-in-time snapshot of tracked consumption.
type UsageReport struct {
	PerModel map[string]ModelUsage `json:"per_model"`
	Total    ModelUsage            `json:"total"`
}

// UsageTracker aggregates token and cost consumption across a pipeline
// run, per model and in total. Safe for concurrent use.
type UsageTracker struct {
	mu       sync.Mutex
	perModel map[string]ModelUsage
}

// NewUsageTracker creates an empty tracker.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{perModel: make(map[string]ModelUsage)}
}

// Record adds one completion's usage under the given model. Cost is
// computed by the caller from the tier rate table; the tracker only sums.
func (t *UsageTracker) Record(model string, usage Usage, costUSD float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	mu := t.perModel[model]
	mu.Calls++
	mu.InputTokens += usage.InputTokens
	if usage.OutputTokens != nil {
		mu.OutputTokens += *usage.OutputTokens
	}
	mu.CostUSD += costUSD
	t.perModel[model] = mu
}

// Report snapshots the tracker. The returned report is detached; later
// Record calls do not mutate it.
func (t *UsageTracker) Report() UsageReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	report := UsageReport{PerModel: make(map[string]ModelUsage, len(t.perModel))}
	for model, mu := range t.perModel {
		report.PerModel[model] = mu
		report.Total.Calls += mu.Calls
		report.Total.InputTokens += mu.InputTokens
		report.Total.OutputTokens += mu.OutputTokens
		report.Total.CostUSD += mu.CostUSD
	}
	return report
}
