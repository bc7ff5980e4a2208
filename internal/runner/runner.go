// Package runner drives a request through the pipeline: call the
// decision core, execute the stage it names, persist, repeat. The
// decision core stays pure; everything effectful (model calls, storage,
// tracing, asking humans) happens here.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kolobosdimitrios/GANDALF/internal/artifact"
	"github.com/kolobosdimitrios/GANDALF/internal/llm"
	"github.com/kolobosdimitrios/GANDALF/internal/pipeline"
	"github.com/kolobosdimitrios/GANDALF/internal/stage"
	"github.com/kolobosdimitrios/GANDALF/internal/store"
	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// maxSteps bounds a single Run. The pipeline converges in a handful of
// steps; hitting the cap means a decision loop, which is a bug worth
// failing loudly on.
const maxSteps = 24

// AskFunc presents blocking questions to a human and returns their
// answers keyed by question ID. A nil AskFunc makes Run stop and return
// the questions instead.
type AskFunc func(ctx context.Context, questions []pipeline.PackagedQuestion) (map[string]string, error)

// Result is the outcome of one Run: either a finished contract or the
// questions the pipeline is blocked on.
type Result struct {
	Request   *artifact.Request           `json:"request"`
	Contract  *artifact.TaskContract      `json:"contract,omitempty"`
	Questions []pipeline.PackagedQuestion `json:"questions,omitempty"`
	Warnings  []string                    `json:"warnings,omitempty"`
	Usage     llm.UsageReport             `json:"usage"`
	ElapsedMS int64                       `json:"elapsed_ms"`
}

// Runner executes the next-action loop.
type Runner struct {
	Exec     *stage.Executor
	Store    store.Store // optional; nil disables persistence
	Tracker  *llm.UsageTracker
	Logger   *slog.Logger
	Packager pipeline.Packager
	Ask      AskFunc
}

// Run drives the request until it is done, blocked on questions with no
// AskFunc to answer them, or failed. The request's artifact state is
// persisted after every accepted artifact, so an interrupted run resumes
// from where it stopped.
func (r *Runner) Run(ctx context.Context, req *artifact.Request) (*Result, error) {
	tracer := otel.Tracer("gandalf/runner")
	ctx, span := tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("request.id", req.ID.String())))
	defer span.End()

	start := time.Now()
	result := &Result{Request: req}

	if err := r.save(ctx, req); err != nil {
		return nil, err
	}

	for step := 0; step < maxSteps; step++ {
		action := pipeline.NextAction(req)
		result.Warnings = append(result.Warnings, action.Warnings...)
		r.logger().Debug("next action", "request_id", req.ID, "action", action.Type)

		switch action.Type {
		case pipeline.ActionRunLexical, pipeline.ActionRunSemantic,
			pipeline.ActionRunCoverage, pipeline.ActionRunContract:
			if err := r.runStage(ctx, tracer, req, action.Type, start); err != nil {
				return nil, err
			}
			if err := r.save(ctx, req); err != nil {
				return nil, err
			}

		case pipeline.ActionAskUser:
			packaged := r.Packager.Package(action.Questions)
			if r.Ask == nil {
				result.Questions = packaged
				r.finish(result, start)
				return result, nil
			}
			answers, err := r.Ask(ctx, packaged)
			if err != nil {
				return nil, err
			}
			if problems := MissingAnswers(action.Questions, answers); len(problems) > 0 {
				result.Warnings = append(result.Warnings, problems...)
			}
			merged := pipeline.Apply(req, answers)
			req.ApplyDefaults(action.Questions)
			result.Warnings = append(result.Warnings, merged.Warnings...)
			if err := r.save(ctx, req); err != nil {
				return nil, err
			}

		case pipeline.ActionDone:
			result.Contract = req.Contract
			r.finish(result, start)
			return result, nil

		case pipeline.ActionError:
			return nil, types.NewError(action.ErrorKind, action.Detail)
		}
	}

	return nil, types.NewError(types.PIPELINE_STALE_STATE,
		fmt.Sprintf("pipeline did not converge within %d steps", maxSteps))
}

func (r *Runner) runStage(ctx context.Context, tracer trace.Tracer, req *artifact.Request, action pipeline.ActionType, start time.Time) error {
	ctx, span := tracer.Start(ctx, "stage."+stageName(action))
	defer span.End()

	stageStart := time.Now()
	var err error
	switch action {
	case pipeline.ActionRunLexical:
		var lr *artifact.LexicalReport
		if lr, err = r.Exec.RunLexical(ctx, req); err == nil {
			req.AddLexical(lr)
		}
	case pipeline.ActionRunSemantic:
		var sf *artifact.SemanticFrame
		if sf, err = r.Exec.RunSemantic(ctx, req); err == nil {
			req.AddFrame(sf)
		}
	case pipeline.ActionRunCoverage:
		var cr *artifact.CoverageReport
		if cr, err = r.Exec.RunCoverage(ctx, req); err == nil {
			req.AddCoverage(cr)
		}
	case pipeline.ActionRunContract:
		var tc *artifact.TaskContract
		if tc, err = r.Exec.RunContract(ctx, req); err == nil {
			tc.Telemetry.ElapsedMS = time.Since(start).Milliseconds()
			req.AddContract(tc)
		}
	}

	if err != nil {
		span.RecordError(err)
		return err
	}
	r.logger().Info("stage complete",
		"request_id", req.ID,
		"stage", stageName(action),
		"elapsed", time.Since(stageStart).Round(time.Millisecond))
	return nil
}

func (r *Runner) finish(result *Result, start time.Time) {
	result.ElapsedMS = time.Since(start).Milliseconds()
	if r.Tracker != nil {
		result.Usage = r.Tracker.Report()
	}
}

func (r *Runner) save(ctx context.Context, req *artifact.Request) error {
	if r.Store == nil {
		return nil
	}
	return r.Store.SaveRequest(ctx, req)
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func stageName(action pipeline.ActionType) string {
	switch action {
	case pipeline.ActionRunLexical:
		return "lexical"
	case pipeline.ActionRunSemantic:
		return "semantic"
	case pipeline.ActionRunCoverage:
		return "coverage"
	case pipeline.ActionRunContract:
		return "contract"
	default:
		return string(action)
	}
}
