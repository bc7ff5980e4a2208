package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			"fenced with tag",
			"Here is the result:\n```json\n{\"goal\": \"x\"}\n```\nDone.",
			`{"goal": "x"}`,
		},
		{
			"fenced without tag",
			"```\n{\"goal\": \"x\"}\n```",
			`{"goal": "x"}`,
		},
		{
			"bare object",
			`{"goal": "x"}`,
			`{"goal": "x"}`,
		},
		{
			"object wrapped in prose",
			`Sure! The frame is {"goal": "x", "note": "a {brace} inside"} as requested.`,
			`{"goal": "x", "note": "a {brace} inside"}`,
		},
		{
			"array payload",
			`The items: [1, 2, 3] end.`,
			`[1, 2, 3]`,
		},
		{
			"nested braces",
			`{"a": {"b": {"c": 1}}}`,
			`{"a": {"b": {"c": 1}}}`,
		},
		{
			"string containing bracket",
			`{"path": "map[key]"}`,
			`{"path": "map[key]"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.response)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, got)
		})
	}
}

func TestExtractJSONPrefersFencedOverBare(t *testing.T) {
	response := "{\"stray\": true} but the answer is:\n```json\n{\"real\": true}\n```"
	got, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.JSONEq(t, `{"real": true}`, got)
}

func TestExtractJSONSkipsOtherLanguageFences(t *testing.T) {
	response := "```python\nprint('hi')\n```\n{\"goal\": \"x\"}"
	got, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.JSONEq(t, `{"goal": "x"}`, got)
}

func TestExtractJSONNoPayload(t *testing.T) {
	_, err := ExtractJSON("I could not produce a structured answer.")
	require.Error(t, err)
	assert.Equal(t, types.LLM_RESPONSE_UNPARSEABLE, types.CodeOf(err))
}

func TestExtractJSONAs(t *testing.T) {
	type frame struct {
		Goal string `json:"goal"`
	}

	got, err := ExtractJSONAs[frame]("```json\n{\"goal\": \"ship it\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "ship it", got.Goal)

	_, err = ExtractJSONAs[frame](`["not", "an", "object"]`)
	assert.Equal(t, types.LLM_RESPONSE_UNPARSEABLE, types.CodeOf(err))
}
