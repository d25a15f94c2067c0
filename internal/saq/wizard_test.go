package saq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

func newTestWizard(bank QuestionBank) *Wizard {
	return NewWizard(bank, time.Hour, nil)
}

func TestWizard_StartsAtDecision(t *testing.T) {
	w := newTestWizard(testBank())
	defer w.Close()
	assert.Equal(t, StepDecision, w.Step())
}

func TestStep_IsValid(t *testing.T) {
	for _, s := range []Step{StepDecision, StepAmendment, StepQuestionnaires, StepAttestation} {
		assert.True(t, s.IsValid())
	}
	assert.False(t, Step("summary").IsValid())
}

func TestWizard_SelectChannels(t *testing.T) {
	w := newTestWizard(testBank())
	defer w.Close()

	applicable := w.SelectChannels([]string{ChannelEcommerceOutsourced, ChannelDialoutTerminal}, false)
	assert.Equal(t, []models.QuestionnaireType{models.QuestionnaireTypeSAQA, models.QuestionnaireTypeSAQB}, applicable)

	channels, stores := w.Channels()
	assert.Equal(t, []string{ChannelEcommerceOutsourced, ChannelDialoutTerminal}, channels)
	assert.False(t, stores)
}

func TestWizard_ToggleType(t *testing.T) {
	w := newTestWizard(testBank())
	defer w.Close()
	w.SelectChannels([]string{ChannelEcommerceOutsourced, ChannelDialoutTerminal}, false)

	// Opt out of SAQ B
	assert.False(t, w.ToggleType(models.QuestionnaireTypeSAQB))
	assert.Equal(t, []models.QuestionnaireType{models.QuestionnaireTypeSAQA}, w.SelectedTypes())

	// Opt back in
	assert.True(t, w.ToggleType(models.QuestionnaireTypeSAQB))
	assert.Len(t, w.SelectedTypes(), 2)
}

func TestWizard_ReselectionDropsStaleOptOuts(t *testing.T) {
	w := newTestWizard(testBank())
	defer w.Close()

	w.SelectChannels([]string{ChannelDialoutTerminal}, false)
	w.ToggleType(models.QuestionnaireTypeSAQB)
	require.Empty(t, w.SelectedTypes())

	// SAQ B leaves the applicable set, then returns: the opt-out is gone
	w.SelectChannels([]string{ChannelEcommerceOutsourced}, false)
	w.SelectChannels([]string{ChannelDialoutTerminal}, false)
	assert.Equal(t, []models.QuestionnaireType{models.QuestionnaireTypeSAQB}, w.SelectedTypes())
}

func TestWizard_Amendments(t *testing.T) {
	w := newTestWizard(testBank())
	defer w.Close()

	w.SetAmendment("company_name", "Acme Payments Ltd")
	w.SetAmendment("dba", "Acme")
	assert.Equal(t, map[string]string{"company_name": "Acme Payments Ltd", "dba": "Acme"}, w.Amendments())

	assert.False(t, w.StepComplete(StepAmendment))
	w.ConfirmAmendments()
	assert.True(t, w.StepComplete(StepAmendment))

	// A later edit withdraws the confirmation
	w.SetAmendment("dba", "Acme Pay")
	assert.False(t, w.StepComplete(StepAmendment))
}

func TestWizard_Advance_StepLocked(t *testing.T) {
	w := newTestWizard(testBank())
	defer w.Close()

	// Decision incomplete: no channels selected yet
	step, err := w.Advance()
	assert.ErrorIs(t, err, models.ErrStepLocked)
	assert.Equal(t, StepDecision, step)

	w.SelectChannels([]string{ChannelEcommerceOutsourced}, false)
	step, err = w.Advance()
	require.NoError(t, err)
	assert.Equal(t, StepAmendment, step)

	// Amendment not confirmed yet
	_, err = w.Advance()
	assert.ErrorIs(t, err, models.ErrStepLocked)

	w.ConfirmAmendments()
	step, err = w.Advance()
	require.NoError(t, err)
	assert.Equal(t, StepQuestionnaires, step)
}

func TestWizard_ToggleEnumValue(t *testing.T) {
	w := newTestWizard(testBank())
	defer w.Close()

	require.NoError(t, w.ToggleEnumValue(models.QuestionnaireTypeSAQA, "q1", models.AnswerValueInPlace))
	resp := w.Store().Response(models.QuestionnaireTypeSAQA, "q1")
	require.NotNil(t, resp)
	assert.Equal(t, models.AnswerValueInPlace, resp.Value)

	// Selecting the selected option deselects
	require.NoError(t, w.ToggleEnumValue(models.QuestionnaireTypeSAQA, "q1", models.AnswerValueInPlace))
	assert.Nil(t, resp.Value)
	assert.False(t, resp.IsAnswered())

	// Selecting a different option switches
	require.NoError(t, w.ToggleEnumValue(models.QuestionnaireTypeSAQA, "q1", models.AnswerValueNotInPlace))
	assert.Equal(t, models.AnswerValueNotInPlace, resp.Value)
}

func TestWizard_AdvanceQuestion(t *testing.T) {
	w := newTestWizard(testBank())
	defer w.Close()
	ctx := context.Background()
	calls := 0
	persist := countingPersist(&calls)

	require.NoError(t, w.Store().SetValue(models.QuestionnaireTypeSAQA, "q1", models.AnswerValueInPlace))

	pos, err := w.AdvanceQuestion(ctx, models.QuestionnaireTypeSAQA, persist)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 1, calls, "leaving a dirty question persists it")

	// Advancing past the last question stays put
	pos, err = w.AdvanceQuestion(ctx, models.QuestionnaireTypeSAQA, persist)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
}

func TestWizard_AdvanceQuestion_PersistFailureBlocks(t *testing.T) {
	w := newTestWizard(testBank())
	defer w.Close()
	ctx := context.Background()

	require.NoError(t, w.Store().SetValue(models.QuestionnaireTypeSAQA, "q1", models.AnswerValueInPlace))

	pos, err := w.AdvanceQuestion(ctx, models.QuestionnaireTypeSAQA, failingPersist(errors.New("backend down")))
	assert.ErrorIs(t, err, models.ErrAnswerPersistence)
	assert.Equal(t, 0, pos, "cursor must not move past an unpersisted answer")
	assert.Equal(t, 0, w.Cursor(models.QuestionnaireTypeSAQA))
}

func TestWizard_JumpToQuestion_Clamps(t *testing.T) {
	w := newTestWizard(testBank())
	defer w.Close()
	ctx := context.Background()
	calls := 0
	persist := countingPersist(&calls)

	pos, err := w.JumpToQuestion(ctx, models.QuestionnaireTypeSAQA, 99, persist)
	require.NoError(t, err)
	assert.Equal(t, 1, pos, "out-of-range target clamps to the last question")

	pos, err = w.JumpToQuestion(ctx, models.QuestionnaireTypeSAQA, -5, persist)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)
}

func TestWizard_ReconcileAll(t *testing.T) {
	w := newTestWizard(testBank())
	defer w.Close()
	ctx := context.Background()
	w.SelectChannels([]string{ChannelEcommerceOutsourced}, false)

	require.NoError(t, w.Store().SetValue(models.QuestionnaireTypeSAQA, "q1", models.AnswerValueInPlace))
	require.NoError(t, w.Store().SetValue(models.QuestionnaireTypeSAQA, "q2", models.AnswerValueNotInPlace))

	calls := 0
	require.NoError(t, w.ReconcileAll(ctx, countingPersist(&calls)))
	assert.Equal(t, 2, calls)

	// Everything clean now: a second pass is all skips
	require.NoError(t, w.ReconcileAll(ctx, countingPersist(&calls)))
	assert.Equal(t, 2, calls)
}

func TestWizard_ReadyToSubmit(t *testing.T) {
	w := newTestWizard(testBank())
	defer w.Close()
	ctx := context.Background()
	w.SelectChannels([]string{ChannelEcommerceOutsourced}, false)

	assert.False(t, w.ReadyToSubmit())

	require.NoError(t, w.Store().SetValue(models.QuestionnaireTypeSAQA, "q1", models.AnswerValueInPlace))
	require.NoError(t, w.Store().SetValue(models.QuestionnaireTypeSAQA, "q2", models.AnswerValueNotInPlace))
	calls := 0
	require.NoError(t, w.ReconcileAll(ctx, countingPersist(&calls)))

	assert.False(t, w.ReadyToSubmit(), "attestation still missing")

	assert.ErrorIs(t, w.Attest("", "CTO"), models.ErrInvalidInput)
	require.NoError(t, w.Attest("Jane Smith", "CTO"))

	name, role, ok := w.Signatory()
	assert.True(t, ok)
	assert.Equal(t, "Jane Smith", name)
	assert.Equal(t, "CTO", role)

	assert.True(t, w.ReadyToSubmit())
}

func TestWizard_PersistedAnswersArmScheduler(t *testing.T) {
	rec := &renderRecorder{}
	w := NewWizard(testBank(), 15*time.Millisecond, rec.render)
	defer w.Close()
	ctx := context.Background()

	require.NoError(t, w.Store().SetValue(models.QuestionnaireTypeSAQA, "q1", models.AnswerValueInPlace))
	calls := 0
	_, err := w.Store().Reconcile(ctx, models.QuestionnaireTypeSAQA, "q1", countingPersist(&calls), false)
	require.NoError(t, err)

	assert.True(t, w.Scheduler().Pending(models.QuestionnaireTypeSAQA))
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}
