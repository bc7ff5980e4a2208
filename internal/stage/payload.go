package stage

import (
	"fmt"
	"strings"

	"github.com/kolobosdimitrios/GANDALF/internal/artifact"
	"github.com/kolobosdimitrios/GANDALF/internal/prompt"
	"github.com/kolobosdimitrios/GANDALF/internal/router"
	"github.com/kolobosdimitrios/GANDALF/internal/schema"
)

// renderStage renders the builtin instruction template for a stage.
func renderStage(stage router.Stage, data any) (string, error) {
	t, err := prompt.ForStage(string(stage))
	if err != nil {
		return "", err
	}
	return t.Render(data)
}

func coverageTemplateData() map[string]any {
	names := make([]string, len(artifact.SlotOrder))
	for i, s := range artifact.SlotOrder {
		names[i] = string(s)
	}
	return map[string]any{"SlotList": strings.Join(names, ", ")}
}

func contractTemplateData() map[string]any {
	return map[string]any{
		"MaxContext":      2,
		"MinDoD":          3,
		"MaxDoD":          7,
		"MaxConstraints":  5,
		"MaxDeliverables": 5,
	}
}

// AnsweredQuestion pairs a question with its human answer for the
// semantic stage payload.
type AnsweredQuestion struct {
	QuestionID string `json:"question_id"`
	Slot       string `json:"slot"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// answeredQuestions joins merged answers back to the question text they
// answered, in the order the questions were issued.
func answeredQuestions(req *artifact.Request) []AnsweredQuestion {
	var out []AnsweredQuestion
	seen := make(map[string]bool)
	for _, cr := range req.Coverages {
		for _, q := range append(append([]artifact.Question{}, cr.BlockingQuestions...), cr.NonBlockingQuestions...) {
			if seen[q.QuestionID] {
				continue
			}
			seen[q.QuestionID] = true
			if a, ok := req.Answers[q.QuestionID]; ok {
				out = append(out, AnsweredQuestion{
					QuestionID: q.QuestionID,
					Slot:       q.Slot,
					Question:   q.Question,
					Answer:     a.Value,
				})
			}
		}
	}
	return out
}

// contractFrame returns the latest frame with the defaults assumed for
// unanswered non-blocking questions folded into its assumptions. The
// stored frame is append-only and never mutated; the extended copy exists
// only for the contract payload.
func contractFrame(req *artifact.Request) *artifact.SemanticFrame {
	frame := req.LatestFrame()
	if frame == nil {
		return nil
	}
	assumed := assumedDefaults(req)
	if len(assumed) == 0 {
		return frame
	}
	clone := *frame
	clone.Assumptions = append(append([]string{}, frame.Assumptions...), assumed...)
	return &clone
}

// assumedDefaults lists the defaults silently applied for non-blocking
// questions nobody answered, one "<slot>: <default> (assumed)" entry each.
func assumedDefaults(req *artifact.Request) []string {
	var out []string
	seen := make(map[string]bool)
	for _, cr := range req.Coverages {
		for _, q := range cr.NonBlockingQuestions {
			if seen[q.QuestionID] {
				continue
			}
			seen[q.QuestionID] = true
			if _, answered := req.Answers[q.QuestionID]; answered {
				continue
			}
			if q.DefaultIfBlank == "" {
				continue
			}
			out = append(out, fmt.Sprintf("%s: %s (assumed)", q.Slot, q.DefaultIfBlank))
		}
	}
	return out
}

// resolveClarifications builds the contract's resolution record: every
// blocking question ever asked, answered by the human where an answer
// was merged and by its stated default otherwise. Non-blocking questions
// appear when answered, or as resolved-by-default when they carried a
// default that got assumed.
func resolveClarifications(req *artifact.Request) []artifact.QuestionResolution {
	var out []artifact.QuestionResolution
	seen := make(map[string]bool)

	record := func(q artifact.Question, mustResolve bool) {
		if seen[q.QuestionID] {
			return
		}
		if a, ok := req.Answers[q.QuestionID]; ok {
			seen[q.QuestionID] = true
			resolvedBy := artifact.ResolvedByUser
			if a.ByDefault {
				resolvedBy = artifact.ResolvedByDefault
			}
			out = append(out, artifact.QuestionResolution{
				QuestionID: q.QuestionID,
				Question:   q.Question,
				Answer:     a.Value,
				ResolvedBy: resolvedBy,
			})
			return
		}
		if mustResolve {
			seen[q.QuestionID] = true
			out = append(out, artifact.QuestionResolution{
				QuestionID: q.QuestionID,
				Question:   q.Question,
				Answer:     q.DefaultIfBlank,
				ResolvedBy: artifact.ResolvedByDefault,
			})
		}
	}

	for _, cr := range req.Coverages {
		for _, q := range cr.BlockingQuestions {
			record(q, true)
		}
		for _, q := range cr.NonBlockingQuestions {
			record(q, q.DefaultIfBlank != "")
		}
	}
	return out
}

// countAskedQuestions counts distinct blocking questions issued on the
// request, for contract telemetry.
func countAskedQuestions(req *artifact.Request) int {
	ids := make(map[string]bool)
	for _, cr := range req.Coverages {
		for _, q := range cr.BlockingQuestions {
			ids[q.QuestionID] = true
		}
	}
	return len(ids)
}

// DefaultContractTemplate is the shipped output-shape schema for the
// contract stage: the model-produced fields with their item bounds.
// Callers may substitute their own template; the stage treats whatever
// it is given as authoritative.
func DefaultContractTemplate() *schema.Schema {
	return schema.Object(map[string]schema.Schema{
		"title":              schema.Str(),
		"context":            schema.Array(schema.Str()).WithMaxItems(2),
		"definition_of_done": schema.Array(schema.Str()).WithItemCount(3, 7),
		"constraints":        schema.Array(schema.Str()).WithMaxItems(5),
		"deliverables":       schema.Array(schema.Str()).WithMaxItems(5),
	}, "title", "definition_of_done")
}
