package artifact

import (
	"fmt"
	"math"

	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// SlotName identifies one of the nine fixed slots the coverage stage scores.
type SlotName string

const (
	SlotGoal             SlotName = "goal"
	SlotScope            SlotName = "scope"
	SlotEnvironment      SlotName = "environment"
	SlotToolchain        SlotName = "toolchain"
	SlotDeliverables     SlotName = "deliverables"
	SlotDefinitionOfDone SlotName = "definition_of_done"
	SlotEntrypoint       SlotName = "entrypoint"
	SlotVerification     SlotName = "verification"
	SlotSecurity         SlotName = "security"
)

// SlotOrder is the canonical slot ordering used for scoring and reporting.
var SlotOrder = []SlotName{
	SlotGoal,
	SlotScope,
	SlotEnvironment,
	SlotToolchain,
	SlotDeliverables,
	SlotDefinitionOfDone,
	SlotEntrypoint,
	SlotVerification,
	SlotSecurity,
}

// SlotWeights is the fixed weight table; weights sum to 100 so the total
// score reads directly as a percentage.
var SlotWeights = map[SlotName]float64{
	SlotGoal:             20,
	SlotScope:            10,
	SlotEnvironment:      10,
	SlotToolchain:        10,
	SlotDeliverables:     10,
	SlotDefinitionOfDone: 15,
	SlotEntrypoint:       5,
	SlotVerification:     10,
	SlotSecurity:         10,
}

// Completeness levels a slot may score. Anything else is a schema violation.
const (
	CompletenessMissing = 0.0
	CompletenessPartial = 0.5
	CompletenessFull    = 1.0
)

// SlotScore is the coverage assessment of a single frame slot.
type SlotScore struct {
	Completeness float64 `json:"completeness"`
	Note         string  `json:"note,omitempty"`
}

// Question is a clarifying question issued by the coverage stage. IDs are
// stable within a request so human answers can be joined back by reference.
type Question struct {
	QuestionID     string `json:"question_id"`
	Slot           string `json:"slot"`
	Question       string `json:"question"`
	Rationale      string `json:"rationale,omitempty"`
	DefaultIfBlank string `json:"default_if_blank,omitempty"`
	AnswerFormat   string `json:"answer_format,omitempty"`
}

// CoverageReport is the third-stage artifact: a weighted audit of the
// latest semantic frame. Blocking and ScoreTotal are derived fields;
// Recompute re-derives them from the slots and question lists, and the
// derived values always win over whatever the producing model asserted.
type CoverageReport struct {
	Meta Meta `json:"meta"`

	Slots                map[SlotName]SlotScore `json:"slots"`
	ScoreTotal           float64                `json:"score_total"`
	Blocking             bool                   `json:"blocking"`
	BlockingQuestions    []Question             `json:"blocking_questions,omitempty"`
	NonBlockingQuestions []Question             `json:"non_blocking_questions,omitempty"`
	DefaultsApplied      []string               `json:"defaults_applied,omitempty"`
}

// Recompute re-derives ScoreTotal from the slot completeness values and
// the weight table, and Blocking from the presence of blocking questions.
// Idempotent; safe to call any number of times.
func (cr *CoverageReport) Recompute() {
	total := 0.0
	for _, name := range SlotOrder {
		total += SlotWeights[name] * cr.Slots[name].Completeness
	}
	cr.ScoreTotal = total
	cr.Blocking = len(cr.BlockingQuestions) > 0
}

// Validate checks the report's structural rules: every slot present and
// scored at a legal completeness level, and question IDs unique across
// both question lists.
func (cr *CoverageReport) Validate() error {
	for _, name := range SlotOrder {
		score, ok := cr.Slots[name]
		if !ok {
			return types.NewError(types.PIPELINE_SCHEMA_MISMATCH,
				fmt.Sprintf("coverage report missing slot %q", name))
		}
		if !validCompleteness(score.Completeness) {
			return types.NewError(types.PIPELINE_SCHEMA_MISMATCH,
				fmt.Sprintf("slot %q completeness %v not in {0, 0.5, 1}", name, score.Completeness))
		}
	}

	seen := make(map[string]struct{})
	for _, q := range append(append([]Question{}, cr.BlockingQuestions...), cr.NonBlockingQuestions...) {
		if q.QuestionID == "" {
			return types.NewError(types.PIPELINE_SCHEMA_MISMATCH,
				"coverage question missing question_id")
		}
		if _, dup := seen[q.QuestionID]; dup {
			return types.NewError(types.PIPELINE_SCHEMA_MISMATCH,
				fmt.Sprintf("duplicate question_id %q", q.QuestionID))
		}
		seen[q.QuestionID] = struct{}{}
	}
	return nil
}

func validCompleteness(v float64) bool {
	for _, level := range []float64{CompletenessMissing, CompletenessPartial, CompletenessFull} {
		if math.Abs(v-level) < 1e-9 {
			return true
		}
	}
	return false
}

// QuestionBySlot returns the slot each issued question targets, keyed by
// question ID. Used to map merged answers back onto frame slots.
func (cr *CoverageReport) QuestionBySlot() map[string]string {
	slots := make(map[string]string, len(cr.BlockingQuestions)+len(cr.NonBlockingQuestions))
	for _, q := range cr.BlockingQuestions {
		slots[q.QuestionID] = q.Slot
	}
	for _, q := range cr.NonBlockingQuestions {
		slots[q.QuestionID] = q.Slot
	}
	return slots
}
