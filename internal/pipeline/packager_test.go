package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolobosdimitrios/GANDALF/internal/artifact"
)

func TestPackagerFidelity(t *testing.T) {
	questions := []artifact.Question{
		{QuestionID: "q2", Slot: "toolchain.database", Question: "Which engine?", Rationale: "ambiguous", DefaultIfBlank: "postgres", AnswerFormat: "name"},
		{QuestionID: "q1", Slot: "environment.arch", Question: "Which arch?", Rationale: "unstated"},
	}

	packaged := Packager{}.Package(questions)

	require.Len(t, packaged, len(questions))
	for i, q := range questions {
		// Same set, same order, text verbatim.
		assert.Equal(t, q.QuestionID, packaged[i].QuestionID)
		assert.Equal(t, q.Question, packaged[i].Question)
		assert.Equal(t, q.DefaultIfBlank, packaged[i].DefaultIfBlank)
		assert.Equal(t, q.AnswerFormat, packaged[i].AnswerFormat)
		// Internal fields dropped by default.
		assert.Empty(t, packaged[i].Slot)
		assert.Empty(t, packaged[i].Rationale)
	}
}

func TestPackagerIncludeInternal(t *testing.T) {
	questions := []artifact.Question{
		{QuestionID: "q1", Slot: "goal", Question: "?", Rationale: "because"},
	}

	packaged := Packager{IncludeInternal: true}.Package(questions)

	require.Len(t, packaged, 1)
	assert.Equal(t, "goal", packaged[0].Slot)
	assert.Equal(t, "because", packaged[0].Rationale)
}

func TestPackagerEmpty(t *testing.T) {
	assert.Empty(t, Packager{}.Package(nil))
}
