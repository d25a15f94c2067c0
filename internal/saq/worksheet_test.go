package saq

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

func TestWorksheetManager_UpdateField_ObjectForm(t *testing.T) {
	m := NewWorksheetManager()
	resp := answered("q1", models.AnswerValueInPlaceWithCCW)

	notes, err := m.UpdateField("B", models.QuestionnaireTypeSAQA, "q1", resp, "b_constraint", "legacy system")
	require.NoError(t, err)
	assert.JSONEq(t, `{"b_constraint":"legacy system"}`, notes)

	// Object form uses raw keys, no prefix
	ws := m.Get("B", models.QuestionnaireTypeSAQA, "q1", resp)
	assert.Equal(t, "legacy system", ws.Get("b_constraint"))
}

func TestWorksheetManager_UpdateField_SchemaForm(t *testing.T) {
	m := NewWorksheetManager()
	resp := answered("q1", models.AnswerValueNotApplicable)

	notes, err := m.UpdateField("C", models.QuestionnaireTypeSAQA, "q1", resp, "reason", "no cardholder data")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"app_c_reason":"no cardholder data"}]`, notes)

	// An already-prefixed key is not double-prefixed
	notes, err = m.UpdateField("C", models.QuestionnaireTypeSAQA, "q1", resp, "app_c_reason", "updated")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"app_c_reason":"updated"}]`, notes)
}

func TestWorksheetManager_DraftSurvivesValueSwitch(t *testing.T) {
	m := NewWorksheetManager()
	resp := answered("q1", models.AnswerValueNotApplicable)

	// Fill the C worksheet, then switch the parent to a D answer
	_, err := m.UpdateField("C", models.QuestionnaireTypeSAQA, "q1", resp, "reason", "outsourced")
	require.NoError(t, err)

	_, err = m.UpdateField("D", models.QuestionnaireTypeSAQA, "q1", resp, "justification", "pending audit")
	require.NoError(t, err)

	// Switching back to C restores the earlier draft
	c := m.Get("C", models.QuestionnaireTypeSAQA, "q1", resp)
	assert.Equal(t, "outsourced", c.Get("app_c_reason"))
	d := m.Get("D", models.QuestionnaireTypeSAQA, "q1", resp)
	assert.Equal(t, "pending audit", d.Get("app_d_justification"))
}

func TestWorksheetManager_ClearDraft(t *testing.T) {
	m := NewWorksheetManager()
	resp := answered("q1", models.AnswerValueNotApplicable)
	resp.Notes = `[{"app_c_reason":"persisted"}]`

	_, err := m.UpdateField("C", models.QuestionnaireTypeSAQA, "q1", resp, "reason", "draft edit")
	require.NoError(t, err)
	assert.Equal(t, "draft edit", m.Get("C", models.QuestionnaireTypeSAQA, "q1", resp).Get("app_c_reason"))

	// After clearing, reads fall back to the response notes
	m.ClearDraft("C", models.QuestionnaireTypeSAQA, "q1")
	assert.Equal(t, "persisted", m.Get("C", models.QuestionnaireTypeSAQA, "q1", resp).Get("app_c_reason"))
}

func TestWorksheetManager_IsComplete_ObjectForm(t *testing.T) {
	m := NewWorksheetManager()
	parent := controlQuestion("q1")
	appendix := []models.Question{
		appendixQuestion("b0", "B.0"), // header, excluded
		appendixQuestion("b_constraint", "B.1"),
		appendixQuestion("b_objective", "B.2"),
	}
	resp := answered("q1", models.AnswerValueInPlaceWithCCW)

	assert.False(t, m.IsComplete("B", parent, models.QuestionnaireTypeSAQA, resp, appendix))

	_, err := m.UpdateField("B", models.QuestionnaireTypeSAQA, "q1", resp, "b_constraint", "x")
	require.NoError(t, err)
	assert.False(t, m.IsComplete("B", parent, models.QuestionnaireTypeSAQA, resp, appendix))

	_, err = m.UpdateField("B", models.QuestionnaireTypeSAQA, "q1", resp, "b_objective", "y")
	require.NoError(t, err)
	assert.True(t, m.IsComplete("B", parent, models.QuestionnaireTypeSAQA, resp, appendix),
		"header card must not count toward completeness")
}

func TestWorksheetManager_IsComplete_SchemaForm(t *testing.T) {
	m := NewWorksheetManager()
	parent := controlQuestion("q1")
	parent.Schema = []models.SchemaField{
		{Key: "requirement", Required: true}, // auto-populated, excluded
		{Key: "reason", Required: true},
		{Key: "evidence", Required: true},
	}
	resp := answered("q1", models.AnswerValueNotApplicable)

	assert.False(t, m.IsComplete("C", parent, models.QuestionnaireTypeSAQA, resp, nil))

	_, err := m.UpdateField("C", models.QuestionnaireTypeSAQA, "q1", resp, "reason", "outsourced")
	require.NoError(t, err)
	assert.False(t, m.IsComplete("C", parent, models.QuestionnaireTypeSAQA, resp, nil))

	_, err = m.UpdateField("C", models.QuestionnaireTypeSAQA, "q1", resp, "evidence", "contract")
	require.NoError(t, err)
	assert.True(t, m.IsComplete("C", parent, models.QuestionnaireTypeSAQA, resp, nil))

	// Blank values do not count
	_, err = m.UpdateField("C", models.QuestionnaireTypeSAQA, "q1", resp, "evidence", "   ")
	require.NoError(t, err)
	assert.False(t, m.IsComplete("C", parent, models.QuestionnaireTypeSAQA, resp, nil))
}

func TestWorksheetManager_ConcurrentAccess(t *testing.T) {
	m := NewWorksheetManager()
	resp := answered("q1", models.AnswerValueNotApplicable)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := m.UpdateField("C", models.QuestionnaireTypeSAQA, "q1", resp, "reason", "outsourced")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			m.ClearDraft("D", models.QuestionnaireTypeSAQA, "q1")
			_ = m.Get("C", models.QuestionnaireTypeSAQA, "q1", resp)
		}()
	}
	wg.Wait()

	assert.Equal(t, "outsourced", m.Get("C", models.QuestionnaireTypeSAQA, "q1", resp).Get("app_c_reason"))
}

func TestWorksheetManager_Reset(t *testing.T) {
	m := NewWorksheetManager()
	resp := answered("q1", models.AnswerValueNotApplicable)

	_, err := m.UpdateField("C", models.QuestionnaireTypeSAQA, "q1", resp, "reason", "draft")
	require.NoError(t, err)

	m.Reset()
	resp.Notes = ""
	assert.Equal(t, "", m.Get("C", models.QuestionnaireTypeSAQA, "q1", resp).Get("app_c_reason"))
}
