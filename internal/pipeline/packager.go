package pipeline

import "github.com/kolobosdimitrios/GANDALF/internal/artifact"

// PackagedQuestion is the human-facing form of a blocking question. Only
// what a person needs to answer: the stable ID to reply with, the
// question text, the default applied if they leave it blank, and the
// expected answer shape.
type PackagedQuestion struct {
	QuestionID     string `json:"question_id"`
	Question       string `json:"question"`
	DefaultIfBlank string `json:"default_if_blank,omitempty"`
	AnswerFormat   string `json:"answer_format,omitempty"`

	// Slot and Rationale are internal diagnostics, included only when the
	// packager is built with IncludeInternal.
	Slot      string `json:"slot,omitempty"`
	Rationale string `json:"rationale,omitempty"`
}

// Packager formats blocking questions for presentation to a human.
type Packager struct {
	// IncludeInternal additionally exposes each question's slot and
	// rationale, for debugging surfaces.
	IncludeInternal bool
}

// Package converts the questions of an ask-user action into their
// presentation form. Questions pass through verbatim and in order; the
// packager never invents, rewrites, merges, or reorders them. Only
// blocking questions ever reach it, so there is nothing to filter.
func (p Packager) Package(questions []artifact.Question) []PackagedQuestion {
	out := make([]PackagedQuestion, 0, len(questions))
	for _, q := range questions {
		pq := PackagedQuestion{
			QuestionID:     q.QuestionID,
			Question:       q.Question,
			DefaultIfBlank: q.DefaultIfBlank,
			AnswerFormat:   q.AnswerFormat,
		}
		if p.IncludeInternal {
			pq.Slot = q.Slot
			pq.Rationale = q.Rationale
		}
		out = append(out, pq)
	}
	return out
}
