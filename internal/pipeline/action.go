// Package pipeline holds the orchestrator's decision core: a pure
// function from a request's artifact state to the single next action,
// plus the packager that formats blocking questions for humans. Nothing
// in this package performs I/O or calls a model; execution belongs to
// the runner.
package pipeline

import (
	"github.com/kolobosdimitrios/GANDALF/internal/artifact"
	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// ActionType enumerates everything the orchestrator can tell its caller
// to do next.
type ActionType string

const (
	ActionRunLexical  ActionType = "run_lexical"
	ActionRunSemantic ActionType = "run_semantic"
	ActionRunCoverage ActionType = "run_coverage"
	ActionRunContract ActionType = "run_contract"
	ActionAskUser     ActionType = "ask_user"
	ActionDone        ActionType = "done"
	ActionError       ActionType = "error"
)

// Action is the orchestrator's verdict. Exactly one action comes back per
// call; failures are carried as ActionError with a kind and detail, never
// as a raw Go error, so the caller always has a well-formed next step.
type Action struct {
	Type ActionType `json:"type"`

	// Questions is populated only for ActionAskUser: the current blocking
	// questions, verbatim and in source order.
	Questions []artifact.Question `json:"questions,omitempty"`

	// ErrorKind and Detail are populated only for ActionError.
	ErrorKind types.ErrorCode `json:"error_kind,omitempty"`
	Detail    string          `json:"detail,omitempty"`

	// Warnings carries recoverable problems noticed while deciding, such
	// as answers referencing unknown question IDs. Warnings never change
	// the action itself.
	Warnings []string `json:"warnings,omitempty"`
}

// errorAction builds an ActionError from a tagged error kind.
func errorAction(kind types.ErrorCode, detail string) Action {
	return Action{Type: ActionError, ErrorKind: kind, Detail: detail}
}
