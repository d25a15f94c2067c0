package saq

import (
	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

// SectionStatus is the completion state of one logical questionnaire section
type SectionStatus struct {
	Complete bool `json:"complete"`
	Total    int  `json:"total"`
	Answered int  `json:"answered"`
}

// Progress aggregates per-question completion into the three logical
// sections of a questionnaire.
type Progress struct {
	Section1 SectionStatus `json:"section1"`
	Section2 SectionStatus `json:"section2"`
	Section3 SectionStatus `json:"section3"`
}

// AllComplete reports whether every section is complete
func (p Progress) AllComplete() bool {
	return p.Section1.Complete && p.Section2.Complete && p.Section3.Complete
}

// SectionProgress computes section completion for one questionnaire type.
//
// Questions already accepted by review (answer status valid) are excluded
// before computing. When the questionnaire is in a finalized status,
// unanswered questions and those marked requires_review no longer need
// merchant attention and are excluded as well.
//
// A section is complete iff every remaining visible question in it carries a
// non-empty value and, when that value requires a worksheet, the worksheet's
// own completeness check passes.
func SectionProgress(
	visible []models.Question,
	responses map[string]*models.Response,
	meta *models.QuestionnaireAnswer,
	worksheets *WorksheetManager,
	filter *Filter,
	qType models.QuestionnaireType,
) Progress {
	finalized := meta != nil && meta.Status.IsFinalized()

	sections := [3]SectionStatus{}
	complete := [3]bool{true, true, true}

	for _, q := range visible {
		idx := q.Section - 1
		if idx < 0 || idx > 2 {
			idx = 0
		}

		var resp *models.Response
		if responses != nil {
			resp = responses[q.QuestionID]
		}

		if resp != nil && resp.AnswerStatus == models.AnswerStatusValid {
			continue
		}
		if finalized {
			if resp == nil || !resp.IsAnswered() {
				continue
			}
			if resp.AnswerStatus == models.AnswerStatusRequiresReview {
				continue
			}
		}

		sections[idx].Total++

		if resp == nil || !resp.IsAnswered() {
			complete[idx] = false
			continue
		}

		if letter := models.WorksheetLetterForValue(stringValue(resp.Value)); letter != "" {
			appendix := filter.AppendixQuestions(qType, letter)
			if !worksheets.IsComplete(letter, q, qType, resp, appendix) {
				complete[idx] = false
				continue
			}
		}

		sections[idx].Answered++
	}

	for i := range sections {
		sections[i].Complete = complete[i]
	}

	return Progress{Section1: sections[0], Section2: sections[1], Section3: sections[2]}
}
