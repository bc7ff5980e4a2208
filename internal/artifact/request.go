package artifact

import (
	"time"

	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// Kind identifies the type of a pipeline artifact.
type Kind string

const (
	KindLexicalReport  Kind = "lexical_report"
	KindSemanticFrame  Kind = "semantic_frame"
	KindCoverageReport Kind = "coverage_report"
	KindTaskContract   Kind = "task_contract"
)

// IsValid checks if the Kind is one of the defined constants.
func (k Kind) IsValid() bool {
	switch k {
	case KindLexicalReport, KindSemanticFrame, KindCoverageReport, KindTaskContract:
		return true
	default:
		return false
	}
}

// Meta carries bookkeeping shared by all artifacts on a request.
// Revision is a per-request monotonic sequence assigned at append time;
// it lets the orchestrator order artifacts without wall-clock comparisons.
type Meta struct {
	Revision  int       `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
}

// Answer is one merged reply, tagged with the artifact revision current at
// merge time. An answer is unincorporated while the latest semantic frame
// predates it; that comparison is what drives frame regeneration.
// ByDefault marks answers filled from a question's stated default rather
// than typed by the human; the distinction survives into the contract's
// resolution record.
type Answer struct {
	Value     string `json:"value"`
	MergedAt  int    `json:"merged_at_revision"`
	ByDefault bool   `json:"by_default,omitempty"`
}

// Request is the unit of work: one raw user submission plus its accumulated
// artifacts and human-supplied answers. The artifact set is append-only;
// artifacts are never mutated or removed once added. The SemanticFrame is
// the one artifact type that may be superseded by appending a newer one.
type Request struct {
	ID          types.ID          `json:"id"`
	UserPrompt  string            `json:"user_prompt"`
	Date        string            `json:"date,omitempty"`
	GenerateFor string            `json:"generate_for,omitempty"`
	Context     map[string]any    `json:"context,omitempty"`
	Answers     map[string]Answer `json:"answers,omitempty"`

	Lexical   *LexicalReport    `json:"lexical_report,omitempty"`
	Frames    []*SemanticFrame  `json:"semantic_frames,omitempty"`
	Coverages []*CoverageReport `json:"coverage_reports,omitempty"`
	Contract  *TaskContract     `json:"task_contract,omitempty"`

	seq int
}

// NewRequest creates a Request for the given free-text prompt with a fresh ID.
func NewRequest(userPrompt string) *Request {
	return &Request{
		ID:         types.NewID(),
		UserPrompt: userPrompt,
		Answers:    make(map[string]Answer),
	}
}

// WithMetadata sets the pass-through metadata copied verbatim into the final
// contract's telemetry block.
func (r *Request) WithMetadata(date, generateFor string) *Request {
	r.Date = date
	r.GenerateFor = generateFor
	return r
}

// nextRevision advances the per-request artifact sequence.
func (r *Request) nextRevision() int {
	r.seq++
	return r.seq
}

// AddLexical appends the lexical report. A request has at most one; the raw
// text never changes, so the report is never regenerated.
func (r *Request) AddLexical(lr *LexicalReport) {
	lr.Meta = Meta{Revision: r.nextRevision(), CreatedAt: time.Now().UTC()}
	r.Lexical = lr
}

// AddFrame appends a semantic frame. Appending supersedes any prior frame
// wholesale; prior frames are retained for audit.
func (r *Request) AddFrame(sf *SemanticFrame) {
	sf.Meta = Meta{Revision: r.nextRevision(), CreatedAt: time.Now().UTC()}
	r.Frames = append(r.Frames, sf)
}

// AddCoverage appends a coverage report scored against the latest frame.
func (r *Request) AddCoverage(cr *CoverageReport) {
	cr.Meta = Meta{Revision: r.nextRevision(), CreatedAt: time.Now().UTC()}
	r.Coverages = append(r.Coverages, cr)
}

// AddContract records the terminal artifact.
func (r *Request) AddContract(tc *TaskContract) {
	tc.Meta = Meta{Revision: r.nextRevision(), CreatedAt: time.Now().UTC()}
	r.Contract = tc
}

// LatestFrame returns the most recent semantic frame, or nil if none exists.
func (r *Request) LatestFrame() *SemanticFrame {
	if len(r.Frames) == 0 {
		return nil
	}
	return r.Frames[len(r.Frames)-1]
}

// LatestCoverage returns the most recent coverage report, or nil if none exists.
func (r *Request) LatestCoverage() *CoverageReport {
	if len(r.Coverages) == 0 {
		return nil
	}
	return r.Coverages[len(r.Coverages)-1]
}

// MergeAnswers merges human-supplied answers into the request, keyed by
// question ID. Answers referencing a question ID that was never issued on
// this request are ignored and returned so the caller can report them;
// stale answers from a prior round must not break forward progress.
func (r *Request) MergeAnswers(answers map[string]string) (unknown []string) {
	if r.Answers == nil {
		r.Answers = make(map[string]Answer)
	}

	known := r.knownQuestionIDs()
	for id, value := range answers {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
			continue
		}
		if value == "" {
			// A blank is not an answer; the question's default, if any, is
			// applied separately so the resolution record stays honest.
			continue
		}
		r.Answers[id] = Answer{Value: value, MergedAt: r.seq}
	}
	return unknown
}

// ApplyDefaults fills unanswered questions from their stated defaults.
// Questions with no default stay open.
func (r *Request) ApplyDefaults(questions []Question) {
	if r.Answers == nil {
		r.Answers = make(map[string]Answer)
	}
	for _, q := range questions {
		if _, answered := r.Answers[q.QuestionID]; answered {
			continue
		}
		if q.DefaultIfBlank == "" {
			continue
		}
		r.Answers[q.QuestionID] = Answer{Value: q.DefaultIfBlank, MergedAt: r.seq, ByDefault: true}
	}
}

// AnswerValues flattens the answer map to question_id -> reply text.
func (r *Request) AnswerValues() map[string]string {
	values := make(map[string]string, len(r.Answers))
	for id, a := range r.Answers {
		values[id] = a.Value
	}
	return values
}

// knownQuestionIDs collects every question ID issued on this request,
// across all coverage reports (blocking and non-blocking alike).
func (r *Request) knownQuestionIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, cr := range r.Coverages {
		for _, q := range cr.BlockingQuestions {
			ids[q.QuestionID] = struct{}{}
		}
		for _, q := range cr.NonBlockingQuestions {
			ids[q.QuestionID] = struct{}{}
		}
	}
	return ids
}

// Rehydrate restores the unexported revision counter after decoding a
// persisted request; JSON round-trips lose it. Safe to call on a live
// request, where it is a no-op.
func (r *Request) Rehydrate() {
	max := r.seq
	bump := func(m Meta) {
		if m.Revision > max {
			max = m.Revision
		}
	}
	if r.Lexical != nil {
		bump(r.Lexical.Meta)
	}
	for _, f := range r.Frames {
		bump(f.Meta)
	}
	for _, c := range r.Coverages {
		bump(c.Meta)
	}
	if r.Contract != nil {
		bump(r.Contract.Meta)
	}
	r.seq = max
}

// CheckInvariants validates the artifact set against the pipeline's
// structural invariants. A violation means the caller assembled an
// impossible state (for example a semantic frame without a lexical
// report); it is surfaced, never auto-corrected.
func (r *Request) CheckInvariants() error {
	if len(r.Frames) > 0 && r.Lexical == nil {
		return types.NewError(types.PIPELINE_STALE_STATE,
			"semantic frame present without a lexical report")
	}
	if len(r.Coverages) > 0 && len(r.Frames) == 0 {
		return types.NewError(types.PIPELINE_STALE_STATE,
			"coverage report present without a semantic frame")
	}
	if r.Contract != nil && len(r.Coverages) == 0 {
		return types.NewError(types.PIPELINE_STALE_STATE,
			"task contract present without a coverage report")
	}
	return nil
}
