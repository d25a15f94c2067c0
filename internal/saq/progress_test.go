package saq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

func sectionQuestion(id string, section int) models.Question {
	q := controlQuestion(id)
	q.Section = section
	return q
}

func TestSectionProgress_Basic(t *testing.T) {
	visible := []models.Question{
		sectionQuestion("s1a", 1),
		sectionQuestion("s2a", 2),
		sectionQuestion("s2b", 2),
		sectionQuestion("s3a", 3),
	}
	responses := map[string]*models.Response{
		"s1a": answered("s1a", models.AnswerValueInPlace),
		"s2a": answered("s2a", models.AnswerValueInPlace),
	}

	p := SectionProgress(visible, responses, nil, NewWorksheetManager(), NewFilter(QuestionBank{}), models.QuestionnaireTypeSAQA)

	assert.True(t, p.Section1.Complete)
	assert.Equal(t, 1, p.Section1.Total)
	assert.Equal(t, 1, p.Section1.Answered)

	assert.False(t, p.Section2.Complete)
	assert.Equal(t, 2, p.Section2.Total)
	assert.Equal(t, 1, p.Section2.Answered)

	assert.False(t, p.Section3.Complete)
	assert.False(t, p.AllComplete())
}

func TestSectionProgress_AllComplete(t *testing.T) {
	visible := []models.Question{
		sectionQuestion("s1a", 1),
		sectionQuestion("s2a", 2),
		sectionQuestion("s3a", 3),
	}
	responses := map[string]*models.Response{
		"s1a": answered("s1a", models.AnswerValueInPlace),
		"s2a": answered("s2a", models.AnswerValueInPlace),
		"s3a": answered("s3a", models.AnswerValueInPlace),
	}

	p := SectionProgress(visible, responses, nil, NewWorksheetManager(), NewFilter(QuestionBank{}), models.QuestionnaireTypeSAQA)
	assert.True(t, p.AllComplete())
}

func TestSectionProgress_EmptySectionsComplete(t *testing.T) {
	// A questionnaire with no section 3 questions has section 3 complete
	visible := []models.Question{sectionQuestion("s1a", 1)}
	responses := map[string]*models.Response{
		"s1a": answered("s1a", models.AnswerValueInPlace),
	}

	p := SectionProgress(visible, responses, nil, NewWorksheetManager(), NewFilter(QuestionBank{}), models.QuestionnaireTypeSAQA)
	assert.True(t, p.Section3.Complete)
	assert.Zero(t, p.Section3.Total)
	assert.True(t, p.AllComplete())
}

func TestSectionProgress_ValidAnswersExcluded(t *testing.T) {
	visible := []models.Question{
		sectionQuestion("s2a", 2),
		sectionQuestion("s2b", 2),
	}
	accepted := answered("s2a", models.AnswerValueInPlace)
	accepted.AnswerStatus = models.AnswerStatusValid
	responses := map[string]*models.Response{
		"s2a": accepted,
	}

	p := SectionProgress(visible, responses, nil, NewWorksheetManager(), NewFilter(QuestionBank{}), models.QuestionnaireTypeSAQA)
	// Accepted answer drops out of totals entirely
	assert.Equal(t, 1, p.Section2.Total)
	assert.False(t, p.Section2.Complete)
}

func TestSectionProgress_FinalizedExcludesRemaining(t *testing.T) {
	visible := []models.Question{
		sectionQuestion("s2a", 2),
		sectionQuestion("s2b", 2),
		sectionQuestion("s2c", 2),
	}
	flagged := answered("s2a", models.AnswerValueInPlace)
	flagged.AnswerStatus = models.AnswerStatusRequiresFurtherDetails
	inReview := answered("s2b", models.AnswerValueInPlace)
	inReview.AnswerStatus = models.AnswerStatusRequiresReview
	responses := map[string]*models.Response{
		"s2a": flagged,
		"s2b": inReview,
		// s2c unanswered
	}

	meta := &models.QuestionnaireAnswer{Status: models.QuestionnaireStatusSubmitted}

	p := SectionProgress(visible, responses, meta, NewWorksheetManager(), NewFilter(QuestionBank{}), models.QuestionnaireTypeSAQA)
	// After submission only the flagged answer still needs merchant attention
	assert.Equal(t, 1, p.Section2.Total)
	assert.Equal(t, 1, p.Section2.Answered)
	assert.True(t, p.Section2.Complete)
}

func TestSectionProgress_WorksheetGatesCompletion(t *testing.T) {
	parent := sectionQuestion("s2a", 2)
	parent.Schema = []models.SchemaField{
		{Key: "requirement", Required: true},
		{Key: "reason", Required: true},
	}
	bank := QuestionBank{models.QuestionnaireTypeSAQA: {parent}}
	filter := NewFilter(bank)
	worksheets := NewWorksheetManager()

	resp := answered("s2a", models.AnswerValueNotApplicable)
	responses := map[string]*models.Response{"s2a": resp}
	visible := []models.Question{parent}

	p := SectionProgress(visible, responses, nil, worksheets, filter, models.QuestionnaireTypeSAQA)
	require.False(t, p.Section2.Complete, "answered but incomplete worksheet blocks the section")
	assert.Zero(t, p.Section2.Answered)

	_, err := worksheets.UpdateField("C", models.QuestionnaireTypeSAQA, "s2a", resp, "reason", "outsourced")
	require.NoError(t, err)

	p = SectionProgress(visible, responses, nil, worksheets, filter, models.QuestionnaireTypeSAQA)
	assert.True(t, p.Section2.Complete)
	assert.Equal(t, 1, p.Section2.Answered)
}
