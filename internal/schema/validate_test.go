package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

func contractShape() *Schema {
	return Object(map[string]Schema{
		"title":              Str(),
		"context":            Array(Str()).WithMaxItems(2),
		"definition_of_done": Array(Str()).WithItemCount(3, 7),
		"score":              Num().WithRange(0, 100),
		"tier":               Str().WithEnum("fast", "balanced", "premium"),
	}, "title", "definition_of_done")
}

func TestValidatePasses(t *testing.T) {
	doc := []byte(`{
		"title": "Set up postgres",
		"context": ["debian host"],
		"definition_of_done": ["installed", "running", "reachable"],
		"score": 85,
		"tier": "premium"
	}`)
	assert.NoError(t, contractShape().Validate(doc))
}

func TestValidateFailuresCarryPaths(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantPath string
	}{
		{"missing required", `{"definition_of_done": ["a","b","c"]}`, "$.title"},
		{"wrong type", `{"title": 7, "definition_of_done": ["a","b","c"]}`, "$.title"},
		{"too few items", `{"title": "t", "definition_of_done": ["a","b"]}`, "$.definition_of_done"},
		{"too many items", `{"title": "t", "definition_of_done": ["a","b","c"], "context": ["a","b","c"]}`, "$.context"},
		{"enum violation", `{"title": "t", "definition_of_done": ["a","b","c"], "tier": "turbo"}`, "$.tier"},
		{"range violation", `{"title": "t", "definition_of_done": ["a","b","c"], "score": 120}`, "$.score"},
		{"nested item type", `{"title": "t", "definition_of_done": ["a", 2, "c"]}`, "$.definition_of_done[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := contractShape().Validate([]byte(tt.doc))
			require.Error(t, err)
			assert.Equal(t, types.PIPELINE_SCHEMA_MISMATCH, types.CodeOf(err))
			assert.Contains(t, err.Error(), tt.wantPath)
		})
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	err := contractShape().Validate([]byte(`{"score": 120, "tier": "turbo", "definition_of_done": ["a","b","c"]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$.title")
	assert.Contains(t, err.Error(), "$.score")
	assert.Contains(t, err.Error(), "$.tier")
}

func TestValidateRejectsNonJSON(t *testing.T) {
	err := contractShape().Validate([]byte("not json at all"))
	assert.Equal(t, types.PIPELINE_SCHEMA_MISMATCH, types.CodeOf(err))
}

func TestClosedObject(t *testing.T) {
	s := Object(map[string]Schema{"a": Str()}, "a").Closed()
	err := s.Validate([]byte(`{"a": "x", "extra": 1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$.extra")
}

func TestValidateInto(t *testing.T) {
	type doc struct {
		Title string `json:"title"`
	}
	s := Object(map[string]Schema{"title": Str()}, "title")

	var out doc
	require.NoError(t, s.ValidateInto([]byte(`{"title": "x"}`), &out))
	assert.Equal(t, "x", out.Title)

	assert.Error(t, s.ValidateInto([]byte(`{}`), &out))
}

func TestParse(t *testing.T) {
	s, err := Parse([]byte(`{"type": "object", "required": ["title"], "properties": {"title": {"type": "string"}}}`))
	require.NoError(t, err)
	assert.NoError(t, s.Validate([]byte(`{"title": "x"}`)))
	assert.Error(t, s.Validate([]byte(`{}`)))
}
