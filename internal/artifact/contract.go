package artifact

import (
	"fmt"

	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// Contract field bounds. The contract is an execution order, not an essay;
// hard caps keep it skimmable by the downstream executor.
const (
	maxContextItems     = 2
	minDoDItems         = 3
	maxDoDItems         = 7
	maxConstraintItems  = 5
	maxDeliverableItems = 5
)

// ResolvedBy records how a clarifying question got its answer.
const (
	ResolvedByUser    = "user"
	ResolvedByDefault = "default"
)

// QuestionResolution records one asked question and how it was settled.
// Every question that was ever asked on the request appears here, whether
// the human answered it or its default was applied.
type QuestionResolution struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	ResolvedBy string `json:"resolved_by"`
}

// Executor identifies the pipeline build that produced a contract.
type Executor struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Telemetry is the contract's provenance block: which run produced it,
// how long it took, and what it consumed. OutputTokens is a pointer so
// "not reported by the provider" is distinguishable from zero.
type Telemetry struct {
	IntentID           types.ID `json:"intent_id"`
	Date               string   `json:"date,omitempty"`
	CreatedAt          string   `json:"created_at"`
	Executor           Executor `json:"executor"`
	ElapsedMS          int64    `json:"elapsed_ms"`
	InputTokens        int      `json:"input_tokens"`
	OutputTokens       *int     `json:"output_tokens"`
	UserQuestionsCount int      `json:"user_questions_count"`
	ExecutionResult    string   `json:"execution_result"`
}

// TaskContract is the terminal artifact: the bounded, structured order
// handed to the downstream executor. Once present on a request the
// pipeline is done; contracts are never regenerated in place.
type TaskContract struct {
	Meta Meta `json:"meta"`

	Title            string               `json:"title"`
	Context          []string             `json:"context,omitempty"`
	DefinitionOfDone []string             `json:"definition_of_done"`
	Constraints      []string             `json:"constraints,omitempty"`
	Deliverables     []string             `json:"deliverables,omitempty"`
	Clarifications   []QuestionResolution `json:"clarifications,omitempty"`
	Telemetry        Telemetry            `json:"telemetry"`
}

// Validate enforces the contract's field bounds. A contract that fails
// here is rejected whole; no partial contract is ever recorded.
func (tc *TaskContract) Validate() error {
	if tc.Title == "" {
		return types.NewError(types.PIPELINE_SCHEMA_MISMATCH, "contract missing title")
	}
	if len(tc.Context) > maxContextItems {
		return types.NewError(types.PIPELINE_SCHEMA_MISMATCH,
			fmt.Sprintf("contract context has %d items, max %d", len(tc.Context), maxContextItems))
	}
	if n := len(tc.DefinitionOfDone); n < minDoDItems || n > maxDoDItems {
		return types.NewError(types.PIPELINE_SCHEMA_MISMATCH,
			fmt.Sprintf("contract definition_of_done has %d items, want %d-%d", n, minDoDItems, maxDoDItems))
	}
	if len(tc.Constraints) > maxConstraintItems {
		return types.NewError(types.PIPELINE_SCHEMA_MISMATCH,
			fmt.Sprintf("contract constraints has %d items, max %d", len(tc.Constraints), maxConstraintItems))
	}
	if len(tc.Deliverables) > maxDeliverableItems {
		return types.NewError(types.PIPELINE_SCHEMA_MISMATCH,
			fmt.Sprintf("contract deliverables has %d items, max %d", len(tc.Deliverables), maxDeliverableItems))
	}
	for i, c := range tc.Clarifications {
		if c.ResolvedBy != ResolvedByUser && c.ResolvedBy != ResolvedByDefault {
			return types.NewError(types.PIPELINE_SCHEMA_MISMATCH,
				fmt.Sprintf("clarification %d resolved_by %q not in {user, default}", i, c.ResolvedBy))
		}
	}
	return nil
}
