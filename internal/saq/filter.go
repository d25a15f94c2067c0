package saq

import (
	"strings"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

// Reserved question ID prefixes for legacy or duplicated template sections.
// Questions carrying them never render as standalone cards.
var reservedIDPrefixes = []string{"legacy_", "dup_"}

// Appendix letters whose questions render inline inside their parent control
// question (via the worksheet manager) rather than as standalone cards.
// Appendix A questions remain standalone.
var inlineAppendixLetters = map[string]bool{"B": true, "C": true, "D": true}

// QuestionBank maps a questionnaire type to its ordered question list
type QuestionBank map[models.QuestionnaireType][]models.Question

// ResponseSet maps questionnaire type -> question ID -> response
type ResponseSet map[models.QuestionnaireType]map[string]*models.Response

// Filter produces the per-type visible question lists. Evaluators are built
// once from the source bank; only the dynamic pass depends on answers.
type Filter struct {
	source     QuestionBank
	evaluators map[models.QuestionnaireType]*Evaluator
}

// NewFilter indexes a source question bank for filtering
func NewFilter(source QuestionBank) *Filter {
	evaluators := make(map[models.QuestionnaireType]*Evaluator, len(source))
	for qType, questions := range source {
		evaluators[qType] = NewEvaluator(questions)
	}
	return &Filter{source: source, evaluators: evaluators}
}

// Evaluator returns the visibility evaluator for a questionnaire type
func (f *Filter) Evaluator(qType models.QuestionnaireType) *Evaluator {
	if ev, ok := f.evaluators[qType]; ok {
		return ev
	}
	return NewEvaluator(nil)
}

// FilterAll applies static and dynamic exclusions across the whole bank.
// Relative question order is preserved; a type with a missing question list
// yields an empty result rather than an error.
func (f *Filter) FilterAll(responses ResponseSet) QuestionBank {
	out := make(QuestionBank, len(f.source))
	for qType := range f.source {
		out[qType] = f.FilterType(qType, responses[qType])
	}
	return out
}

// FilterType filters one questionnaire's question list
func (f *Filter) FilterType(qType models.QuestionnaireType, responses map[string]*models.Response) []models.Question {
	questions := f.source[qType]
	visible := make([]models.Question, 0, len(questions))
	if len(questions) == 0 {
		return visible
	}
	if responses == nil {
		responses = map[string]*models.Response{}
	}

	ev := f.Evaluator(qType)
	for _, q := range questions {
		if StaticallyExcluded(q) {
			continue
		}
		if !ev.IsVisible(q, responses) {
			continue
		}
		visible = append(visible, q)
	}
	return visible
}

// StaticallyExcluded applies the answer-independent exclusions: reserved
// legacy/duplicate prefixes, auto-generated summary questions, and inline
// appendix worksheet cards.
func StaticallyExcluded(q models.Question) bool {
	for _, prefix := range reservedIDPrefixes {
		if strings.HasPrefix(q.QuestionID, prefix) {
			return true
		}
	}
	if q.IsSummary() {
		return true
	}
	if letter := q.AppendixLetter(); letter != "" && inlineAppendixLetters[letter] {
		return true
	}
	return false
}

// AppendixQuestions returns the inline worksheet questions of one letter for
// a questionnaire type, in template order. Used by worksheet completeness
// checks, which need the cards the filter hides.
func (f *Filter) AppendixQuestions(qType models.QuestionnaireType, letter string) []models.Question {
	var out []models.Question
	for _, q := range f.source[qType] {
		if q.AppendixLetter() == letter {
			out = append(out, q)
		}
	}
	return out
}
