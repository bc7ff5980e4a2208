package artifact

import (
	"fmt"

	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// Unknown is the sentinel value for enum-ish frame fields the semantic
// stage could not determine from the available inputs. An unknown field
// is an honest gap, never a guess.
const Unknown = "unknown"

// maxGoalLen bounds the goal statement so it stays a single actionable
// sentence rather than a restated prompt.
const maxGoalLen = 500

// Environment captures the target execution environment of the task.
type Environment struct {
	OSFamily  string `json:"os_family"`
	BaseImage string `json:"base_image"`
	Arch      string `json:"arch"`
}

// Toolchain captures how the task's software is provisioned and invoked.
type Toolchain struct {
	Provisioning string `json:"provisioning"`
	Database     string `json:"database"`
	RuntimePath  string `json:"runtime_path"`
	CLIInstall   string `json:"cli_install"`
}

// Deliverable is one concrete output the task must produce.
type Deliverable struct {
	Path    string `json:"path"`
	Purpose string `json:"purpose"`
}

// SecurityPosture captures the task's handling of secrets, filesystem
// reach, and network access.
type SecurityPosture struct {
	Secrets     string `json:"secrets"`
	Directories string `json:"directories"`
	Network     string `json:"network"`
}

// OpenQuestion is a gap the semantic stage surfaced instead of guessing.
// A question carries either a safe default or is genuinely open; the
// coverage stage decides whether it blocks contract generation.
type OpenQuestion struct {
	Slot         string `json:"slot"`
	Question     string `json:"question"`
	Rationale    string `json:"rationale,omitempty"`
	Default      string `json:"default,omitempty"`
	AnswerFormat string `json:"answer_format,omitempty"`
}

// SemanticFrame is the second-stage artifact: the interpreted task as a
// fixed-slot structure. It is the only artifact type that may be
// superseded; regeneration replaces the frame wholesale, fields are
// never patched in place.
type SemanticFrame struct {
	Meta Meta `json:"meta"`

	Goal             string          `json:"goal"`
	InScope          []string        `json:"in_scope,omitempty"`
	OutOfScope       []string        `json:"out_of_scope,omitempty"`
	Environment      Environment     `json:"environment"`
	Toolchain        Toolchain       `json:"toolchain"`
	Deliverables     []Deliverable   `json:"deliverables,omitempty"`
	DefinitionOfDone []string        `json:"definition_of_done,omitempty"`
	Entrypoint       string          `json:"entrypoint,omitempty"`
	Idempotency      []string        `json:"idempotency,omitempty"`
	Verification     []string        `json:"verification,omitempty"`
	Security         SecurityPosture `json:"security"`
	Constraints      []string        `json:"constraints,omitempty"`
	Assumptions      []string        `json:"assumptions,omitempty"`
	OpenQuestions    []OpenQuestion  `json:"open_questions,omitempty"`
}

// Validate checks the frame's structural rules: a bounded goal, and
// well-formed open questions. Unknown slot values are legal; missing
// goal is not.
func (sf *SemanticFrame) Validate() error {
	if sf.Goal == "" {
		return types.NewError(types.PIPELINE_SCHEMA_MISMATCH,
			"semantic frame missing goal")
	}
	if len(sf.Goal) > maxGoalLen {
		return types.NewError(types.PIPELINE_SCHEMA_MISMATCH,
			fmt.Sprintf("semantic frame goal exceeds %d characters", maxGoalLen))
	}
	for i, q := range sf.OpenQuestions {
		if q.Slot == "" || q.Question == "" {
			return types.NewError(types.PIPELINE_SCHEMA_MISMATCH,
				fmt.Sprintf("open question %d missing slot or question text", i))
		}
	}
	return nil
}

// OpenSlots returns the set of slot names the frame still has questions
// about. Used to decide whether freshly merged answers warrant
// regenerating the frame.
func (sf *SemanticFrame) OpenSlots() map[string]struct{} {
	slots := make(map[string]struct{}, len(sf.OpenQuestions))
	for _, q := range sf.OpenQuestions {
		slots[q.Slot] = struct{}{}
	}
	return slots
}
