// Package stage implements the four pipeline stage executors. Each
// executor is an input -> artifact contract: select a model through the
// router, send the stage instructions plus a JSON payload of its inputs,
// parse the response, and structurally validate it before anything is
// accepted. A stage that fails validation produces no artifact at all.
package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kolobosdimitrios/GANDALF/internal/artifact"
	"github.com/kolobosdimitrios/GANDALF/internal/llm"
	"github.com/kolobosdimitrios/GANDALF/internal/router"
	"github.com/kolobosdimitrios/GANDALF/internal/schema"
	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// Executor runs pipeline stages against configured LLM providers.
type Executor struct {
	Router     router.Router
	Providers  llm.Registry
	Tracker    *llm.UsageTracker
	Complexity router.Complexity
	Logger     *slog.Logger

	// ContractTemplate is the externally supplied output-shape schema the
	// contract stage validates against. The contract stage refuses to run
	// without one.
	ContractTemplate *schema.Schema

	// ExecutorName and ExecutorVersion identify this build in contract
	// telemetry.
	ExecutorName    string
	ExecutorVersion string
}

// complete routes, calls, and accounts for one stage completion, and
// returns the JSON body dug out of the response.
func (e *Executor) complete(ctx context.Context, stage router.Stage, system string, payload any) (string, llm.Usage, error) {
	choice, err := e.Router.SelectModel(stage, e.Complexity, "")
	if err != nil {
		return "", llm.Usage{}, err
	}

	provider, err := e.Providers.Get(choice.Cfg.Provider)
	if err != nil {
		return "", llm.Usage{}, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", llm.Usage{}, types.WrapError(types.LLM_COMPLETION_FAILED,
			fmt.Sprintf("stage %s payload does not marshal", stage), err)
	}

	if choice.Cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(choice.Cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	e.logger().Debug("stage completion",
		"stage", stage, "tier", choice.Tier, "model", choice.Model)

	resp, err := provider.Complete(ctx, llm.CompletionRequest{
		Model:       choice.Model,
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: string(body)}},
		MaxTokens:   choice.Cfg.MaxTokens,
		Temperature: choice.Cfg.Temperature,
	})
	if err != nil {
		return "", llm.Usage{}, types.WrapError(types.LLM_COMPLETION_FAILED,
			fmt.Sprintf("stage %s completion failed on %s", stage, choice.Model), err)
	}

	if e.Tracker != nil {
		out := 0
		if resp.Usage.OutputTokens != nil {
			out = *resp.Usage.OutputTokens
		}
		cost, _ := e.Router.EstimateCost(choice.Tier, resp.Usage.InputTokens, out)
		e.Tracker.Record(resp.Model, resp.Usage, cost)
	}

	extracted, err := llm.ExtractJSON(resp.Content)
	if err != nil {
		return "", resp.Usage, err
	}
	return extracted, resp.Usage, nil
}

// RunLexical produces the lexical report for the raw prompt.
func (e *Executor) RunLexical(ctx context.Context, req *artifact.Request) (*artifact.LexicalReport, error) {
	system, err := renderStage(router.StageLexical, nil)
	if err != nil {
		return nil, err
	}

	body, _, err := e.complete(ctx, router.StageLexical, system, map[string]any{
		"user_prompt": req.UserPrompt,
		"context":     req.Context,
	})
	if err != nil {
		return nil, err
	}

	var report artifact.LexicalReport
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, types.WrapError(types.PIPELINE_SCHEMA_MISMATCH,
			"lexical response does not fit the report shape", err)
	}
	if err := report.Validate(); err != nil {
		return nil, err
	}
	return &report, nil
}

// RunSemantic produces a semantic frame from the raw prompt, the lexical
// report, and any human answers merged so far. Answers travel with their
// question text so the model sees what was asked, not bare IDs.
func (e *Executor) RunSemantic(ctx context.Context, req *artifact.Request) (*artifact.SemanticFrame, error) {
	system, err := renderStage(router.StageSemantic, nil)
	if err != nil {
		return nil, err
	}

	body, _, err := e.complete(ctx, router.StageSemantic, system, map[string]any{
		"user_prompt":    req.UserPrompt,
		"lexical_report": req.Lexical,
		"answers":        answeredQuestions(req),
	})
	if err != nil {
		return nil, err
	}

	var frame artifact.SemanticFrame
	if err := json.Unmarshal([]byte(body), &frame); err != nil {
		return nil, types.WrapError(types.PIPELINE_SCHEMA_MISMATCH,
			"semantic response does not fit the frame shape", err)
	}
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	return &frame, nil
}

// RunCoverage audits the latest semantic frame. The returned report's
// score and blocking flag are re-derived locally; whatever the model
// asserted for them is discarded.
func (e *Executor) RunCoverage(ctx context.Context, req *artifact.Request) (*artifact.CoverageReport, error) {
	system, err := renderStage(router.StageCoverage, coverageTemplateData())
	if err != nil {
		return nil, err
	}

	body, _, err := e.complete(ctx, router.StageCoverage, system, map[string]any{
		"semantic_frame": req.LatestFrame(),
	})
	if err != nil {
		return nil, err
	}

	var report artifact.CoverageReport
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, types.WrapError(types.PIPELINE_SCHEMA_MISMATCH,
			"coverage response does not fit the report shape", err)
	}
	if err := report.Validate(); err != nil {
		return nil, err
	}
	report.Recompute()
	return &report, nil
}

// RunContract produces the terminal task contract. Requires the
// externally supplied output-shape template; the model's JSON is
// validated against it before the contract is assembled, and the
// clarification record and telemetry are filled in locally, never by
// the model. Defaults assumed for unanswered non-blocking questions are
// folded into the frame's assumptions before the payload is assembled.
func (e *Executor) RunContract(ctx context.Context, req *artifact.Request) (*artifact.TaskContract, error) {
	if e.ContractTemplate == nil {
		return nil, types.NewError(types.PIPELINE_MISSING_TEMPLATE,
			"contract stage requires an output-shape template")
	}

	system, err := renderStage(router.StageContract, contractTemplateData())
	if err != nil {
		return nil, err
	}

	resolutions := resolveClarifications(req)
	body, usage, err := e.complete(ctx, router.StageContract, system, map[string]any{
		"semantic_frame":  contractFrame(req),
		"coverage_report": req.LatestCoverage(),
		"clarifications":  resolutions,
	})
	if err != nil {
		return nil, err
	}

	if err := e.ContractTemplate.Validate([]byte(body)); err != nil {
		return nil, err
	}

	var contract artifact.TaskContract
	if err := json.Unmarshal([]byte(body), &contract); err != nil {
		return nil, types.WrapError(types.PIPELINE_SCHEMA_MISMATCH,
			"contract response does not fit the contract shape", err)
	}

	// The request's pass-through metadata lands in telemetry verbatim;
	// generate_for names the executor the contract is produced for.
	executorName := e.ExecutorName
	if req.GenerateFor != "" {
		executorName = req.GenerateFor
	}

	contract.Clarifications = resolutions
	contract.Telemetry = artifact.Telemetry{
		IntentID:           req.ID,
		Date:               req.Date,
		CreatedAt:          time.Now().UTC().Format(time.RFC3339),
		Executor:           artifact.Executor{Name: executorName, Version: e.ExecutorVersion},
		InputTokens:        usage.InputTokens,
		OutputTokens:       usage.OutputTokens,
		UserQuestionsCount: countAskedQuestions(req),
		ExecutionResult:    "success",
	}

	if err := contract.Validate(); err != nil {
		return nil, err
	}
	return &contract, nil
}

func (e *Executor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
