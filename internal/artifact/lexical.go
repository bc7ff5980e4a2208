package artifact

import (
	"fmt"

	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// EntityCategory classifies a surface-level mention found in the raw text.
type EntityCategory string

const (
	EntityTechnology EntityCategory = "technology"
	EntityFramework  EntityCategory = "framework"
	EntityDatabase   EntityCategory = "database"
	EntityPlatform   EntityCategory = "platform"
	EntityAction     EntityCategory = "action"
	EntityObject     EntityCategory = "object"
	EntityVersion    EntityCategory = "version"
	EntityPath       EntityCategory = "path"
	EntityOther      EntityCategory = "other"
)

// IsValid checks if the EntityCategory is one of the defined constants.
func (c EntityCategory) IsValid() bool {
	switch c {
	case EntityTechnology, EntityFramework, EntityDatabase, EntityPlatform,
		EntityAction, EntityObject, EntityVersion, EntityPath, EntityOther:
		return true
	default:
		return false
	}
}

// Entity is a single extracted mention with its supporting evidence.
// Evidence is a literal substring of the user prompt; the lexical stage
// must not infer anything that has no textual anchor.
type Entity struct {
	Category   EntityCategory `json:"category"`
	Value      string         `json:"value"`
	Confidence float64        `json:"confidence"`
	Evidence   string         `json:"evidence"`
}

// Mention is a referenced file, command, or other concrete artifact
// named in the raw text.
type Mention struct {
	Kind       string  `json:"kind"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence"`
}

// Ambiguity flags a term the lexical stage could not resolve to a single
// reading. Candidates list the plausible interpretations; nothing here is
// resolved, only surfaced for the semantic stage.
type Ambiguity struct {
	Item       string   `json:"item"`
	Reason     string   `json:"reason"`
	Candidates []string `json:"candidates,omitempty"`
}

// LexicalReport is the first-stage artifact: a surface-level extraction
// over the raw text with no interpretation. It is produced once per
// request and never regenerated because its input never changes.
type LexicalReport struct {
	Meta Meta `json:"meta"`

	Language    string      `json:"language"`
	Keywords    []string    `json:"keywords"`
	Entities    []Entity    `json:"entities"`
	Mentions    []Mention   `json:"mentions,omitempty"`
	Constraints []string    `json:"constraints,omitempty"`
	Ambiguities []Ambiguity `json:"ambiguities,omitempty"`
	Warnings    []string    `json:"warnings,omitempty"`
}

// Validate checks the report's structural rules. An empty report (no
// keywords, no entities) is valid: a vague prompt legitimately yields
// little, and the gap shows up downstream as coverage questions.
func (lr *LexicalReport) Validate() error {
	if lr.Language == "" {
		return types.NewError(types.PIPELINE_SCHEMA_MISMATCH,
			"lexical report missing detected language")
	}
	for i, e := range lr.Entities {
		if !e.Category.IsValid() {
			return types.NewError(types.PIPELINE_SCHEMA_MISMATCH,
				fmt.Sprintf("lexical entity %d has unknown category %q", i, e.Category))
		}
		if e.Confidence < 0 || e.Confidence > 1 {
			return types.NewError(types.PIPELINE_SCHEMA_MISMATCH,
				fmt.Sprintf("lexical entity %d confidence %v outside [0,1]", i, e.Confidence))
		}
	}
	for i, m := range lr.Mentions {
		if m.Confidence < 0 || m.Confidence > 1 {
			return types.NewError(types.PIPELINE_SCHEMA_MISMATCH,
				fmt.Sprintf("lexical mention %d confidence %v outside [0,1]", i, m.Confidence))
		}
	}
	return nil
}
