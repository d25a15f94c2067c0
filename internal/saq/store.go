package saq

import (
	"context"
	"fmt"
	"sync"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

// PersistRequest is the payload handed to the answer-persistence collaborator
type PersistRequest struct {
	QuestionnaireAnswerUUID string
	Question                models.Question
	Response                *models.Response
}

// PersistResult is the collaborator's acknowledgement of a persisted answer
type PersistResult struct {
	AnswerUUID   string
	AnswerStatus models.AnswerStatus
	Normalized   bool
}

// PersistFunc persists one answer with the backend. Implementations must
// return an error without partial effects on failure.
type PersistFunc func(ctx context.Context, req PersistRequest) (*PersistResult, error)

// Store is the session-scoped answer state for one advisor session. All
// response and metadata mutation goes through it; updates replace the
// relevant sub-tree so readers never observe partial writes.
// #IMPLEMENTATION_DECISION: Session state is owned and injected, never read
// from package-level globals.
type Store struct {
	mu sync.Mutex

	filter     *Filter
	questions  map[models.QuestionnaireType]map[string]models.Question
	responses  ResponseSet
	visible    QuestionBank
	meta       map[models.QuestionnaireType]*models.QuestionnaireAnswer
	worksheets *WorksheetManager

	pendingRender map[models.QuestionnaireType]bool

	// onPersisted is invoked after every successful persistence, outside of
	// store-internal bookkeeping. Used to arm the render debounce.
	onPersisted func(models.QuestionnaireType)
}

// NewStore builds a store over a source question bank
func NewStore(bank QuestionBank) *Store {
	byID := make(map[models.QuestionnaireType]map[string]models.Question, len(bank))
	for qType, questions := range bank {
		idx := make(map[string]models.Question, len(questions))
		for _, q := range questions {
			idx[q.QuestionID] = q
		}
		byID[qType] = idx
	}

	s := &Store{
		filter:        NewFilter(bank),
		questions:     byID,
		responses:     ResponseSet{},
		meta:          map[models.QuestionnaireType]*models.QuestionnaireAnswer{},
		worksheets:    NewWorksheetManager(),
		pendingRender: map[models.QuestionnaireType]bool{},
	}
	s.visible = s.filter.FilterAll(s.responses)
	return s
}

// OnPersisted registers the post-persistence callback
func (s *Store) OnPersisted(fn func(models.QuestionnaireType)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPersisted = fn
}

// Filter exposes the dependency filter (read-only use)
func (s *Store) Filter() *Filter {
	return s.filter
}

// Worksheets exposes the worksheet manager
func (s *Store) Worksheets() *WorksheetManager {
	return s.worksheets
}

// Hydrate installs previously persisted responses for a questionnaire type
// and re-runs the dependency filter.
func (s *Store) Hydrate(qType models.QuestionnaireType, responses []models.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]*models.Response, len(responses))
	for i := range responses {
		r := responses[i]
		byID[r.QuestionID] = &r
	}
	s.responses[qType] = byID
	s.visible[qType] = s.filter.FilterType(qType, byID)
}

// SetMetadata installs questionnaire instance metadata
func (s *Store) SetMetadata(meta *models.QuestionnaireAnswer) {
	if meta == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta[meta.QuestionnaireType] = meta
}

// Metadata returns the questionnaire metadata for a type, if loaded
func (s *Store) Metadata(qType models.QuestionnaireType) *models.QuestionnaireAnswer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta[qType]
}

// Question looks up a source question by type and ID
func (s *Store) Question(qType models.QuestionnaireType, questionID string) (models.Question, bool) {
	q, ok := s.questions[qType][questionID]
	return q, ok
}

// Response returns the response for a question, or nil
func (s *Store) Response(qType models.QuestionnaireType, questionID string) *models.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.responses[qType][questionID]
}

// Responses returns the response map for a questionnaire type
func (s *Store) Responses(qType models.QuestionnaireType) map[string]*models.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.responses[qType]
}

// VisibleQuestions returns the current filtered question list for a type
func (s *Store) VisibleQuestions(qType models.QuestionnaireType) []models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible[qType]
}

// SetValue merges a new answer value into the response for a question,
// preserving review metadata. A real change dirties the response, re-runs the
// dependency filter for the type (a changed answer may change downstream
// visibility) and marks the questionnaire as pending render.
func (s *Store) SetValue(qType models.QuestionnaireType, questionID string, value interface{}) error {
	q, ok := s.Question(qType, questionID)
	if !ok {
		return models.ErrQuestionNotFound
	}
	if err := q.ValidateAnswer(value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resp := s.ensureResponseLocked(qType, questionID)
	if !resp.ApplyValue(value) {
		return nil
	}

	s.visible[qType] = s.filter.FilterType(qType, s.responses[qType])
	s.pendingRender[qType] = true

	if meta := s.meta[qType]; meta != nil {
		meta.MarkInProgress()
	}
	return nil
}

// SetNotes merges new notes into the response for a question with the same
// dirtying rule as SetValue, but without re-running dependency filtering:
// notes never affect visibility.
func (s *Store) SetNotes(qType models.QuestionnaireType, questionID string, notes string) error {
	if _, ok := s.Question(qType, questionID); !ok {
		return models.ErrQuestionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resp := s.ensureResponseLocked(qType, questionID)
	if resp.ApplyNotes(notes) {
		s.pendingRender[qType] = true
	}
	return nil
}

// UpdateWorksheetField routes a worksheet edit through the worksheet manager
// and stores the serialized result as the response notes.
func (s *Store) UpdateWorksheetField(qType models.QuestionnaireType, questionID, letter, fieldKey, value string) error {
	if _, ok := s.Question(qType, questionID); !ok {
		return models.ErrQuestionNotFound
	}

	s.mu.Lock()
	resp := s.ensureResponseLocked(qType, questionID)
	s.mu.Unlock()

	notes, err := s.worksheets.UpdateField(letter, qType, questionID, resp, fieldKey, value)
	if err != nil {
		return err
	}
	return s.SetNotes(qType, questionID, notes)
}

// Reconcile decides whether the current answer state of a question needs
// persistence and performs it. Invoked on navigation, jumps and submission.
//
//  1. A clean response (AnswerUUID present) is a no-op unless force is set.
//  2. A dirty response whose value/notes deep-equal the saved snapshot gets
//     its AnswerUUID restored locally with no network call.
//  3. Otherwise a trimmed copy of the value/notes is handed to persistFn;
//     success applies the trim, refreshes the saved snapshot and marks the
//     type pending render.
//  4. Failure leaves the response dirty and untouched and is returned to the
//     caller, which must block forward navigation.
//
// Returns true if a network persistence happened.
func (s *Store) Reconcile(ctx context.Context, qType models.QuestionnaireType, questionID string, persistFn PersistFunc, force bool) (bool, error) {
	q, ok := s.Question(qType, questionID)
	if !ok {
		return false, models.ErrQuestionNotFound
	}

	s.mu.Lock()
	resp := s.responses[qType][questionID]
	if resp == nil {
		// Nothing was ever entered for this question
		s.mu.Unlock()
		return false, nil
	}

	if !force && !resp.IsDirty() {
		s.mu.Unlock()
		return false, nil
	}

	if resp.IsDirty() && resp.MatchesSaved() {
		resp.RestoreSaved()
		s.mu.Unlock()
		return false, nil
	}

	// Trim a copy for the wire; the live response is only touched on success
	// so a failed persist leaves the draft exactly as entered.
	draft := *resp
	draft.Normalize()
	meta := s.meta[qType]
	s.mu.Unlock()

	req := PersistRequest{Question: q, Response: &draft}
	if meta != nil {
		req.QuestionnaireAnswerUUID = meta.QuestionnaireAnswerUUID
	}

	result, err := persistFn(ctx, req)
	if err != nil {
		// Response stays dirty; the caller decides what to block
		return false, fmt.Errorf("%w: %v", models.ErrAnswerPersistence, err)
	}

	s.mu.Lock()
	resp.Value = draft.Value
	resp.Notes = draft.Notes
	resp.MarkPersisted(result.AnswerUUID, result.AnswerStatus)
	s.worksheets.ClearDraft(models.WorksheetLetterForValue(stringValue(resp.Value)), qType, questionID)
	s.pendingRender[qType] = true
	if meta != nil {
		meta.BeginProvidingInfo()
	}
	cb := s.onPersisted
	s.mu.Unlock()

	if cb != nil {
		cb(qType)
	}
	return true, nil
}

// PendingRender reports and optionally clears the pending-render mark
func (s *Store) PendingRender(qType models.QuestionnaireType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingRender[qType]
}

// ClearPendingRender resets the pending-render mark for a type
func (s *Store) ClearPendingRender(qType models.QuestionnaireType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pendingRender, qType)
}

// ensureResponseLocked returns the response for a question, creating an
// empty one if needed. Caller holds s.mu.
func (s *Store) ensureResponseLocked(qType models.QuestionnaireType, questionID string) *models.Response {
	byID := s.responses[qType]
	if byID == nil {
		byID = map[string]*models.Response{}
		s.responses[qType] = byID
	}
	resp := byID[questionID]
	if resp == nil {
		resp = &models.Response{
			QuestionnaireType: qType,
			QuestionID:        questionID,
		}
		resp.BeforeCreate()
		byID[questionID] = resp
	}
	return resp
}

// stringValue returns the value as string when it is one
func stringValue(value interface{}) string {
	s, _ := value.(string)
	return s
}
