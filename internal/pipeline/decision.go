package pipeline

import (
	"fmt"

	"github.com/kolobosdimitrios/GANDALF/internal/artifact"
	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// NextAction inspects the request's artifact state and returns the single
// next thing to do. It is a pure function: no I/O, no mutation of the
// request, and calling it repeatedly on the same state returns the same
// action. Rule order is fixed and earlier rules win:
//
//  1. no lexical report            -> run lexical
//  2. no frame, or fresh answers
//     touching the frame's gaps    -> run semantic
//  3. no coverage for this frame   -> run coverage
//  4. blocking questions open      -> ask the user
//  5. no contract                  -> run contract
//  6. contract present             -> done
//
// Blocking is re-derived here from the report's question lists; the flag
// the producing model asserted is never trusted for the gate.
func NextAction(req *artifact.Request) Action {
	if err := req.CheckInvariants(); err != nil {
		return errorAction(types.CodeOf(err), err.Error())
	}

	if req.Lexical == nil {
		return Action{Type: ActionRunLexical}
	}

	frame := req.LatestFrame()
	if frame == nil {
		return Action{Type: ActionRunSemantic}
	}
	if answersWarrantRegeneration(req, frame) {
		return Action{Type: ActionRunSemantic}
	}

	coverage := req.LatestCoverage()
	if coverage == nil || coverage.Meta.Revision < frame.Meta.Revision {
		return Action{Type: ActionRunCoverage}
	}

	if blocking := unansweredBlocking(req, coverage); len(blocking) > 0 {
		return Action{Type: ActionAskUser, Questions: blocking}
	}

	if req.Contract == nil {
		return Action{Type: ActionRunContract}
	}

	return Action{Type: ActionDone}
}

// answersWarrantRegeneration reports whether any answer merged after the
// latest frame was built touches a gap that frame still has: either a
// slot in its open questions, or a blocking question on the current
// coverage report. Such answers are new information the frame has not
// seen, so the frame must be rebuilt before anything downstream runs.
func answersWarrantRegeneration(req *artifact.Request, frame *artifact.SemanticFrame) bool {
	fresh := freshAnswerIDs(req, frame)
	if len(fresh) == 0 {
		return false
	}

	openSlots := frame.OpenSlots()
	slotOf := questionSlots(req)
	blockingIDs := currentBlockingIDs(req)

	for id := range fresh {
		if _, blocking := blockingIDs[id]; blocking {
			return true
		}
		if slot, known := slotOf[id]; known {
			if _, open := openSlots[slot]; open {
				return true
			}
		}
	}
	return false
}

// freshAnswerIDs returns the IDs of answers merged at or after the latest
// frame's revision, i.e. answers the frame cannot have incorporated.
func freshAnswerIDs(req *artifact.Request, frame *artifact.SemanticFrame) map[string]struct{} {
	fresh := make(map[string]struct{})
	for id, a := range req.Answers {
		if a.MergedAt >= frame.Meta.Revision {
			fresh[id] = struct{}{}
		}
	}
	return fresh
}

// questionSlots maps every question ID ever issued on the request to the
// frame slot it targets.
func questionSlots(req *artifact.Request) map[string]string {
	slots := make(map[string]string)
	for _, cr := range req.Coverages {
		for id, slot := range cr.QuestionBySlot() {
			slots[id] = slot
		}
	}
	return slots
}

// currentBlockingIDs returns the blocking question IDs of the latest
// coverage report.
func currentBlockingIDs(req *artifact.Request) map[string]struct{} {
	ids := make(map[string]struct{})
	if cr := req.LatestCoverage(); cr != nil {
		for _, q := range cr.BlockingQuestions {
			ids[q.QuestionID] = struct{}{}
		}
	}
	return ids
}

// unansweredBlocking returns the report's blocking questions that have no
// merged answer yet, in source order. The gate holds while this is
// non-empty, regardless of what the report's own Blocking flag claims.
func unansweredBlocking(req *artifact.Request, cr *artifact.CoverageReport) []artifact.Question {
	var open []artifact.Question
	for _, q := range cr.BlockingQuestions {
		if _, answered := req.Answers[q.QuestionID]; !answered {
			open = append(open, q)
		}
	}
	return open
}

// Apply merges a round of human answers into the request and re-decides.
// Unknown question references are recoverable: they surface as warnings
// on the returned action instead of blocking progress.
func Apply(req *artifact.Request, answers map[string]string) Action {
	unknown := req.MergeAnswers(answers)

	action := NextAction(req)
	for _, id := range unknown {
		action.Warnings = append(action.Warnings, fmt.Sprintf(
			"[%s] answer references unknown question_id %q; ignored",
			types.PIPELINE_INVALID_ANSWER_REFERENCE, id))
	}
	return action
}
