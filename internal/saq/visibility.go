// Package saq implements the questionnaire engine of the SAQ advisor:
// conditional visibility, dependency filtering, the answer store and its
// persistence reconciler, worksheet sub-state, progress calculation, and the
// wizard orchestrator.
package saq

import (
	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

// Evaluator decides whether a question is visible given the current answers
// of its questionnaire. It carries the UUID-to-ID index for the question
// bank, built once at load time.
// #IMPLEMENTATION_DECISION: Pure evaluation - it runs on every response
// change and must be deterministic for consistent reads.
type Evaluator struct {
	idByUUID map[string]string
}

// NewEvaluator builds an evaluator for one questionnaire's question list
func NewEvaluator(questions []models.Question) *Evaluator {
	idx := make(map[string]string, len(questions))
	for _, q := range questions {
		if q.QuestionUUID != "" {
			idx[q.QuestionUUID] = q.QuestionID
		}
	}
	return &Evaluator{idByUUID: idx}
}

// ResolveTarget returns the canonical question ID a depends_on expression
// points at, or empty if the reference cannot be resolved.
func (e *Evaluator) ResolveTarget(d *models.DependsOn) string {
	if d == nil {
		return ""
	}
	if d.QuestionID != "" {
		return d.QuestionID
	}
	if d.QuestionUUID != "" {
		return e.idByUUID[d.QuestionUUID]
	}
	return ""
}

// IsVisible evaluates a question's depends_on expression against the current
// response map. Questions without a dependency are always visible; unresolved
// references (target missing or unanswered) evaluate to not visible.
func (e *Evaluator) IsVisible(q models.Question, responses map[string]*models.Response) bool {
	if q.DependsOn == nil {
		return true
	}

	target := e.ResolveTarget(q.DependsOn)
	if target == "" {
		return false
	}

	resp := responses[target]
	if resp == nil || !resp.IsAnswered() {
		return false
	}

	expected := q.DependsOn.ExpectedValues()
	if len(expected) == 0 {
		// A dependency with no expected values only requires the target to
		// be answered at all.
		return true
	}

	return valueMatches(resp.Value, expected)
}

// valueMatches tests a response value against the expected set: exact match
// for scalars, set membership for multi-valued answers.
func valueMatches(value interface{}, expected []string) bool {
	actual := answerValueSet(value)
	if len(actual) == 0 {
		return false
	}
	for _, e := range expected {
		if actual[e] {
			return true
		}
	}
	return false
}

// answerValueSet normalizes an answer value into a comparable string set
func answerValueSet(value interface{}) map[string]bool {
	out := map[string]bool{}
	switch v := value.(type) {
	case string:
		if v != "" {
			out[v] = true
		}
	case bool:
		if v {
			out["yes"] = true
			out["true"] = true
		} else {
			out["no"] = true
			out["false"] = true
		}
	default:
		if values, ok := models.ToStringSlice(value); ok {
			for _, s := range values {
				if s != "" {
					out[s] = true
				}
			}
		}
	}
	return out
}
