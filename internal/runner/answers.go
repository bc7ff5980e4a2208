package runner

import (
	"fmt"

	"github.com/kolobosdimitrios/GANDALF/internal/artifact"
)

// MissingAnswers reports, per question, blocking questions that were
// neither answered nor equipped with a default. Such questions will
// block again on the next round; surfacing them early saves the human
// a wasted round trip.
func MissingAnswers(questions []artifact.Question, answers map[string]string) []string {
	var problems []string
	for _, q := range questions {
		if answers[q.QuestionID] != "" {
			continue
		}
		if q.DefaultIfBlank != "" {
			continue
		}
		problems = append(problems, fmt.Sprintf(
			"question %s (%s) left blank and has no default; it will block again",
			q.QuestionID, q.Slot))
	}
	return problems
}
