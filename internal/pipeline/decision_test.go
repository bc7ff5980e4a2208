package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolobosdimitrios/GANDALF/internal/artifact"
	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

func slots(completeness float64) map[artifact.SlotName]artifact.SlotScore {
	out := make(map[artifact.SlotName]artifact.SlotScore)
	for _, name := range artifact.SlotOrder {
		out[name] = artifact.SlotScore{Completeness: completeness}
	}
	return out
}

func coverage(blocking []artifact.Question) *artifact.CoverageReport {
	cr := &artifact.CoverageReport{Slots: slots(0.5), BlockingQuestions: blocking}
	cr.Recompute()
	return cr
}

// assertStable checks NextAction is idempotent at the current state.
func assertStable(t *testing.T, req *artifact.Request, want ActionType) {
	t.Helper()
	first := NextAction(req)
	require.Equal(t, want, first.Type)
	second := NextAction(req)
	assert.Equal(t, first.Type, second.Type)
	assert.Equal(t, first.Questions, second.Questions)
}

func TestDecisionWalkWithBlockingRound(t *testing.T) {
	req := artifact.NewRequest("set up a database on the build host")

	assertStable(t, req, ActionRunLexical)

	req.AddLexical(&artifact.LexicalReport{Language: "en"})
	assertStable(t, req, ActionRunSemantic)

	req.AddFrame(&artifact.SemanticFrame{
		Goal: "set up a database",
		OpenQuestions: []artifact.OpenQuestion{
			{Slot: "toolchain.database", Question: "Which database engine?"},
		},
	})
	assertStable(t, req, ActionRunCoverage)

	blocking := []artifact.Question{{
		QuestionID:     "q1",
		Slot:           "toolchain.database",
		Question:       "Which database engine?",
		DefaultIfBlank: "postgres",
		AnswerFormat:   "engine name",
	}}
	req.AddCoverage(coverage(blocking))

	action := NextAction(req)
	require.Equal(t, ActionAskUser, action.Type)
	// Questions pass through verbatim and in order.
	assert.Equal(t, blocking, action.Questions)
	assertStable(t, req, ActionAskUser)

	// Answer arrives: the frame must be rebuilt with the new information.
	action = Apply(req, map[string]string{"q1": "postgres 16"})
	assert.Equal(t, ActionRunSemantic, action.Type)
	assert.Empty(t, action.Warnings)
	assertStable(t, req, ActionRunSemantic)

	// Regenerated frame incorporates the answer; coverage is now stale.
	req.AddFrame(&artifact.SemanticFrame{Goal: "set up postgres 16"})
	assertStable(t, req, ActionRunCoverage)

	req.AddCoverage(coverage(nil))
	assertStable(t, req, ActionRunContract)

	req.AddContract(&artifact.TaskContract{
		Title:            "Set up postgres 16",
		DefinitionOfDone: []string{"a", "b", "c"},
	})
	assertStable(t, req, ActionDone)
}

func TestCleanPathSkipsAskUser(t *testing.T) {
	req := artifact.NewRequest("install ripgrep")
	req.AddLexical(&artifact.LexicalReport{Language: "en"})
	req.AddFrame(&artifact.SemanticFrame{Goal: "install ripgrep"})
	req.AddCoverage(coverage(nil))

	assertStable(t, req, ActionRunContract)
}

func TestUnknownAnswerReferenceIsWarningOnly(t *testing.T) {
	req := artifact.NewRequest("x")
	req.AddLexical(&artifact.LexicalReport{Language: "en"})
	req.AddFrame(&artifact.SemanticFrame{Goal: "g"})
	req.AddCoverage(coverage(nil))

	action := Apply(req, map[string]string{"never-issued": "value"})

	assert.Equal(t, ActionRunContract, action.Type)
	require.Len(t, action.Warnings, 1)
	assert.True(t, strings.Contains(action.Warnings[0], string(types.PIPELINE_INVALID_ANSWER_REFERENCE)))
	assert.True(t, strings.Contains(action.Warnings[0], "never-issued"))
}

func TestStaleStateSurfacesAsErrorAction(t *testing.T) {
	req := artifact.NewRequest("x")
	req.Frames = append(req.Frames, &artifact.SemanticFrame{Goal: "g"})

	action := NextAction(req)
	require.Equal(t, ActionError, action.Type)
	assert.Equal(t, types.PIPELINE_STALE_STATE, action.ErrorKind)
	assert.NotEmpty(t, action.Detail)
}

func TestStaleCoverageTriggersRerun(t *testing.T) {
	req := artifact.NewRequest("x")
	req.AddLexical(&artifact.LexicalReport{Language: "en"})
	req.AddFrame(&artifact.SemanticFrame{Goal: "first"})
	req.AddCoverage(coverage(nil))
	// Superseding the frame makes the existing coverage stale.
	req.AddFrame(&artifact.SemanticFrame{Goal: "second"})

	assertStable(t, req, ActionRunCoverage)
}

func TestAnswerToOpenSlotTriggersRegeneration(t *testing.T) {
	req := artifact.NewRequest("x")
	req.AddLexical(&artifact.LexicalReport{Language: "en"})
	req.AddFrame(&artifact.SemanticFrame{
		Goal: "g",
		OpenQuestions: []artifact.OpenQuestion{
			{Slot: "environment.arch", Question: "Which architecture?"},
		},
	})
	// Non-blocking question targeting the open slot.
	req.AddCoverage(&artifact.CoverageReport{
		Slots: slots(1.0),
		NonBlockingQuestions: []artifact.Question{
			{QuestionID: "q7", Slot: "environment.arch", Question: "Which architecture?"},
		},
	})

	action := Apply(req, map[string]string{"q7": "arm64"})
	assert.Equal(t, ActionRunSemantic, action.Type)
}
