package artifact

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

func coverageWithQuestions(blocking, nonBlocking []Question) *CoverageReport {
	cr := &CoverageReport{
		Slots:                fullSlots(0.5),
		BlockingQuestions:    blocking,
		NonBlockingQuestions: nonBlocking,
	}
	cr.Recompute()
	return cr
}

func TestRevisionsAreMonotonic(t *testing.T) {
	req := NewRequest("set up a postgres database")
	req.AddLexical(&LexicalReport{Language: "en"})
	req.AddFrame(&SemanticFrame{Goal: "set up postgres"})
	req.AddCoverage(coverageWithQuestions(nil, nil))
	req.AddFrame(&SemanticFrame{Goal: "set up postgres 16"})

	assert.Equal(t, 1, req.Lexical.Meta.Revision)
	assert.Equal(t, 2, req.Frames[0].Meta.Revision)
	assert.Equal(t, 3, req.Coverages[0].Meta.Revision)
	assert.Equal(t, 4, req.Frames[1].Meta.Revision)
}

func TestFrameSupersedeKeepsHistory(t *testing.T) {
	req := NewRequest("x")
	req.AddLexical(&LexicalReport{Language: "en"})
	req.AddFrame(&SemanticFrame{Goal: "first"})
	req.AddFrame(&SemanticFrame{Goal: "second"})

	require.Len(t, req.Frames, 2)
	assert.Equal(t, "second", req.LatestFrame().Goal)
	assert.Equal(t, "first", req.Frames[0].Goal)
}

func TestMergeAnswersUnknownIDs(t *testing.T) {
	req := NewRequest("x")
	req.AddLexical(&LexicalReport{Language: "en"})
	req.AddFrame(&SemanticFrame{Goal: "g"})
	req.AddCoverage(coverageWithQuestions(
		[]Question{{QuestionID: "q1", Slot: "toolchain.database", Question: "Which database?"}},
		[]Question{{QuestionID: "q2", Slot: "environment.arch", Question: "Which arch?"}},
	))

	unknown := req.MergeAnswers(map[string]string{
		"q1":    "postgres",
		"q2":    "arm64",
		"stale": "ignored",
	})

	assert.ElementsMatch(t, []string{"stale"}, unknown)
	assert.Equal(t, "postgres", req.Answers["q1"].Value)
	assert.Equal(t, "arm64", req.Answers["q2"].Value)
	assert.NotContains(t, req.Answers, "stale")
}

func TestMergeAnswersSkipsBlanks(t *testing.T) {
	req := NewRequest("x")
	req.AddLexical(&LexicalReport{Language: "en"})
	req.AddFrame(&SemanticFrame{Goal: "g"})
	req.AddCoverage(coverageWithQuestions(
		[]Question{{QuestionID: "q1", Question: "?", DefaultIfBlank: "sqlite"}}, nil))

	unknown := req.MergeAnswers(map[string]string{"q1": ""})
	assert.Empty(t, unknown)
	assert.NotContains(t, req.Answers, "q1")
}

func TestApplyDefaults(t *testing.T) {
	req := NewRequest("x")
	req.AddLexical(&LexicalReport{Language: "en"})
	req.AddFrame(&SemanticFrame{Goal: "g"})
	questions := []Question{
		{QuestionID: "q1", Question: "?", DefaultIfBlank: "sqlite"},
		{QuestionID: "q2", Question: "?"}, // no default: stays open
	}
	req.AddCoverage(coverageWithQuestions(questions, nil))

	req.ApplyDefaults(questions)

	require.Contains(t, req.Answers, "q1")
	assert.Equal(t, "sqlite", req.Answers["q1"].Value)
	assert.True(t, req.Answers["q1"].ByDefault)
	assert.NotContains(t, req.Answers, "q2")

	// A merged human answer is never overwritten by a default.
	req.MergeAnswers(map[string]string{"q2": "typed"})
	req.ApplyDefaults([]Question{{QuestionID: "q2", Question: "?", DefaultIfBlank: "other"}})
	assert.Equal(t, "typed", req.Answers["q2"].Value)
	assert.False(t, req.Answers["q2"].ByDefault)
}

func TestCheckInvariants(t *testing.T) {
	req := NewRequest("x")
	assert.NoError(t, req.CheckInvariants())

	req.Frames = append(req.Frames, &SemanticFrame{Goal: "g"})
	err := req.CheckInvariants()
	require.Error(t, err)
	assert.Equal(t, types.PIPELINE_STALE_STATE, types.CodeOf(err))

	req = NewRequest("x")
	req.Coverages = append(req.Coverages, coverageWithQuestions(nil, nil))
	assert.Equal(t, types.PIPELINE_STALE_STATE, types.CodeOf(req.CheckInvariants()))

	req = NewRequest("x")
	req.Contract = &TaskContract{Title: "t"}
	assert.Equal(t, types.PIPELINE_STALE_STATE, types.CodeOf(req.CheckInvariants()))
}

func TestRehydrateRestoresRevisionCounter(t *testing.T) {
	req := NewRequest("x")
	req.AddLexical(&LexicalReport{Language: "en"})
	req.AddFrame(&SemanticFrame{Goal: "g"})

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var restored Request
	require.NoError(t, json.Unmarshal(data, &restored))
	restored.Rehydrate()

	restored.AddCoverage(coverageWithQuestions(nil, nil))
	assert.Equal(t, 3, restored.Coverages[0].Meta.Revision)
}
