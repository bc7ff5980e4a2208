package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

func validContract() *TaskContract {
	return &TaskContract{
		Title:            "Provision a postgres database",
		Context:          []string{"target is a debian container"},
		DefinitionOfDone: []string{"postgres installed", "service running", "psql connects"},
		Constraints:      []string{"no docker"},
		Deliverables:     []string{"/opt/setup.sh"},
	}
}

func TestContractValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TaskContract)
		wantErr bool
	}{
		{"valid", func(tc *TaskContract) {}, false},
		{"missing title", func(tc *TaskContract) { tc.Title = "" }, true},
		{"context over cap", func(tc *TaskContract) {
			tc.Context = []string{"a", "b", "c"}
		}, true},
		{"dod too short", func(tc *TaskContract) {
			tc.DefinitionOfDone = []string{"a", "b"}
		}, true},
		{"dod too long", func(tc *TaskContract) {
			tc.DefinitionOfDone = []string{"a", "b", "c", "d", "e", "f", "g", "h"}
		}, true},
		{"constraints over cap", func(tc *TaskContract) {
			tc.Constraints = []string{"a", "b", "c", "d", "e", "f"}
		}, true},
		{"deliverables over cap", func(tc *TaskContract) {
			tc.Deliverables = []string{"a", "b", "c", "d", "e", "f"}
		}, true},
		{"bad resolution source", func(tc *TaskContract) {
			tc.Clarifications = []QuestionResolution{{QuestionID: "q1", ResolvedBy: "oracle"}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := validContract()
			tt.mutate(tc)
			err := tc.Validate()
			if tt.wantErr {
				assert.Equal(t, types.PIPELINE_SCHEMA_MISMATCH, types.CodeOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
