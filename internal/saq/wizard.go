package saq

import (
	"context"
	"sync"
	"time"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

// Step identifies one of the four advisor wizard sections
type Step string

const (
	StepDecision       Step = "decision"
	StepAmendment      Step = "amendment"
	StepQuestionnaires Step = "questionnaires"
	StepAttestation    Step = "attestation"
)

// wizardSteps is the fixed forward order of the wizard
var wizardSteps = []Step{StepDecision, StepAmendment, StepQuestionnaires, StepAttestation}

// IsValid checks if the Step is a known wizard section
func (s Step) IsValid() bool {
	switch s {
	case StepDecision, StepAmendment, StepQuestionnaires, StepAttestation:
		return true
	}
	return false
}

// Wizard sequences the advisor flow: decision -> amendment -> questionnaires
// -> attestation. It owns all session-scoped state (answer store, dependency
// filter, render scheduler) and injects it where needed; nothing is read
// from ambient globals.
type Wizard struct {
	mu sync.Mutex

	store     *Store
	scheduler *RenderScheduler

	step Step

	// Decision section
	channels          []string
	storesAccountData bool
	applicable        []models.QuestionnaireType
	optedOut          map[models.QuestionnaireType]bool

	// Amendment section (merchant business detail corrections)
	amendments         map[string]string
	amendmentConfirmed bool

	// Questionnaires section: per-type navigation cursor
	cursor map[models.QuestionnaireType]int

	// Attestation section
	attested      bool
	signatoryName string
	signatoryRole string
}

// NewWizard creates a wizard over a question bank. The render function is
// invoked, debounced, after persisted answer changes.
func NewWizard(bank QuestionBank, renderDelay time.Duration, render RenderFunc) *Wizard {
	w := &Wizard{
		store:      NewStore(bank),
		scheduler:  NewRenderScheduler(renderDelay, render),
		step:       StepDecision,
		optedOut:   map[models.QuestionnaireType]bool{},
		amendments: map[string]string{},
		cursor:     map[models.QuestionnaireType]int{},
	}
	w.store.OnPersisted(func(qType models.QuestionnaireType) {
		w.scheduler.Arm(qType)
	})
	return w
}

// Store exposes the session answer store
func (w *Wizard) Store() *Store {
	return w.store
}

// Scheduler exposes the render scheduler
func (w *Wizard) Scheduler() *RenderScheduler {
	return w.scheduler
}

// Step returns the current wizard section
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// SelectChannels records the decision-step payment channels and recomputes
// the applicable SAQ types. Opt-outs for types that are no longer applicable
// are dropped.
func (w *Wizard) SelectChannels(channels []string, storesAccountData bool) []models.QuestionnaireType {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.channels = append([]string(nil), channels...)
	w.storesAccountData = storesAccountData
	w.applicable = DetermineTypes(channels, storesAccountData)

	applicable := map[models.QuestionnaireType]bool{}
	for _, qType := range w.applicable {
		applicable[qType] = true
	}
	for qType := range w.optedOut {
		if !applicable[qType] {
			delete(w.optedOut, qType)
		}
	}
	return w.applicable
}

// Channels returns the recorded decision answers
func (w *Wizard) Channels() ([]string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.channels...), w.storesAccountData
}

// ToggleType flips the applicability opt-out of one SAQ type. Toggling marks
// the type pending render and is an applicability change for the dependency
// filter's consumers. Returns true if the type is now selected.
func (w *Wizard) ToggleType(qType models.QuestionnaireType) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.optedOut[qType] {
		delete(w.optedOut, qType)
		return true
	}
	w.optedOut[qType] = true
	return false
}

// SelectedTypes returns the applicable types minus merchant opt-outs
func (w *Wizard) SelectedTypes() []models.QuestionnaireType {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]models.QuestionnaireType, 0, len(w.applicable))
	for _, qType := range w.applicable {
		if !w.optedOut[qType] {
			out = append(out, qType)
		}
	}
	return out
}

// SetAmendment records one merchant-detail amendment field
func (w *Wizard) SetAmendment(field, value string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.amendments[field] = value
	w.amendmentConfirmed = false
}

// ConfirmAmendments marks the amendment section as reviewed by the merchant
func (w *Wizard) ConfirmAmendments() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.amendmentConfirmed = true
}

// Amendments returns a copy of the amendment fields
func (w *Wizard) Amendments() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]string, len(w.amendments))
	for k, v := range w.amendments {
		out[k] = v
	}
	return out
}

// ToggleEnumValue applies the enum toggle-to-deselect behavior: selecting the
// already-selected option clears the value (and with it any notes-required
// obligation attached to that value).
func (w *Wizard) ToggleEnumValue(qType models.QuestionnaireType, questionID, value string) error {
	resp := w.store.Response(qType, questionID)
	if resp != nil {
		if current, ok := resp.Value.(string); ok && current == value {
			return w.store.SetValue(qType, questionID, nil)
		}
	}
	return w.store.SetValue(qType, questionID, value)
}

// Cursor returns the current question index for a type
func (w *Wizard) Cursor(qType models.QuestionnaireType) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cursor[qType]
}

// AdvanceQuestion reconciles the current question and, on success, moves the
// cursor forward. A persistence failure aborts the navigation: the cursor
// stays put and the error is surfaced so the caller can let the user retry.
func (w *Wizard) AdvanceQuestion(ctx context.Context, qType models.QuestionnaireType, persistFn PersistFunc) (int, error) {
	return w.navigate(ctx, qType, persistFn, func(current, max int) int {
		if current < max {
			return current + 1
		}
		return current
	})
}

// JumpToQuestion reconciles the current question and jumps to an arbitrary
// visible index. Out-of-range targets clamp to the valid range.
func (w *Wizard) JumpToQuestion(ctx context.Context, qType models.QuestionnaireType, target int, persistFn PersistFunc) (int, error) {
	return w.navigate(ctx, qType, persistFn, func(current, max int) int {
		if target < 0 {
			return 0
		}
		if target > max {
			return max
		}
		return target
	})
}

// navigate runs the reconcile-then-move sequence shared by advance and jump
func (w *Wizard) navigate(ctx context.Context, qType models.QuestionnaireType, persistFn PersistFunc, next func(current, max int) int) (int, error) {
	visible := w.store.VisibleQuestions(qType)
	if len(visible) == 0 {
		return 0, nil
	}

	w.mu.Lock()
	current := w.cursor[qType]
	w.mu.Unlock()
	if current >= len(visible) {
		current = len(visible) - 1
	}

	if _, err := w.store.Reconcile(ctx, qType, visible[current].QuestionID, persistFn, false); err != nil {
		return current, err
	}

	// Visibility may have shifted underneath the cursor after reconcile
	visible = w.store.VisibleQuestions(qType)
	max := len(visible) - 1
	if max < 0 {
		max = 0
	}

	w.mu.Lock()
	w.cursor[qType] = next(current, max)
	pos := w.cursor[qType]
	w.mu.Unlock()
	return pos, nil
}

// ReconcileAll walks every visible question of every selected type and
// reconciles it. Used before submission. Stops at the first failure.
func (w *Wizard) ReconcileAll(ctx context.Context, persistFn PersistFunc) error {
	for _, qType := range w.SelectedTypes() {
		for _, q := range w.store.VisibleQuestions(qType) {
			if _, err := w.store.Reconcile(ctx, qType, q.QuestionID, persistFn, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// TypeProgress computes section progress for one selected type
func (w *Wizard) TypeProgress(qType models.QuestionnaireType) Progress {
	return SectionProgress(
		w.store.VisibleQuestions(qType),
		w.store.Responses(qType),
		w.store.Metadata(qType),
		w.store.Worksheets(),
		w.store.Filter(),
		qType,
	)
}

// StepComplete reports whether a wizard section's requirements are met
func (w *Wizard) StepComplete(step Step) bool {
	switch step {
	case StepDecision:
		w.mu.Lock()
		defer w.mu.Unlock()
		return len(w.applicable) > 0
	case StepAmendment:
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.amendmentConfirmed
	case StepQuestionnaires:
		types := w.SelectedTypes()
		if len(types) == 0 {
			return false
		}
		for _, qType := range types {
			if !w.TypeProgress(qType).AllComplete() {
				return false
			}
		}
		return true
	case StepAttestation:
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.attested
	}
	return false
}

// Advance moves to the next wizard section once the current one is complete
func (w *Wizard) Advance() (Step, error) {
	current := w.Step()
	if !w.StepComplete(current) {
		return current, models.ErrStepLocked
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for i, s := range wizardSteps {
		if s == w.step && i < len(wizardSteps)-1 {
			w.step = wizardSteps[i+1]
			break
		}
	}
	return w.step, nil
}

// Attest records the signatory and marks the attestation section complete
func (w *Wizard) Attest(name, role string) error {
	if name == "" {
		return models.ErrInvalidInput
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attested = true
	w.signatoryName = name
	w.signatoryRole = role
	return nil
}

// Signatory returns the recorded attestation signatory
func (w *Wizard) Signatory() (name, role string, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.signatoryName, w.signatoryRole, w.attested
}

// ReadyToSubmit reports whether every selected questionnaire type
// independently satisfies all three sections and the attestation is signed.
func (w *Wizard) ReadyToSubmit() bool {
	return w.StepComplete(StepQuestionnaires) && w.StepComplete(StepAttestation)
}

// Close tears the session down: pending render timers and worksheet drafts
// are dropped. In-flight renders run to completion; their results are
// discarded by the owning service.
func (w *Wizard) Close() {
	w.scheduler.Close()
	w.store.Worksheets().Reset()
}
