// Package services provides business logic implementations.
package services

import (
	"context"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
	"github.com/paysec-tools/saqadvisor_backend/internal/saq"
)

// DefaultSessionTTL evicts advisor sessions idle longer than this
const DefaultSessionTTL = 2 * time.Hour

// SessionState is the advisor session snapshot returned to the frontend
type SessionState struct {
	Step          saq.Step                   `json:"step"`
	Applicable    []models.QuestionnaireType `json:"applicable,omitempty"`
	SelectedTypes []models.QuestionnaireType `json:"selected_types,omitempty"`
	Channels      []string                   `json:"channels,omitempty"`
}

// AdvisorService owns the per-merchant advisor sessions. Each session wraps
// one wizard holding the answer store, dependency filter and render
// scheduler; the service supplies the persistence and render collaborators.
// #IMPLEMENTATION_DECISION: Sessions are in-process state keyed by merchant.
// Persisted answers survive eviction; re-opening a session rehydrates them.
type AdvisorService interface {
	// StartSession opens (or resumes) the merchant's advisor session
	StartSession(ctx context.Context, merchantID primitive.ObjectID) (*SessionState, error)

	// CloseSession tears the merchant's session down
	CloseSession(merchantID primitive.ObjectID)

	// SelectChannels records decision answers and returns applicable types
	SelectChannels(ctx context.Context, merchantID primitive.ObjectID, channels []string, storesAccountData bool) ([]models.QuestionnaireType, error)

	// ToggleType flips one SAQ type's opt-out; returns true if now selected
	ToggleType(ctx context.Context, merchantID primitive.ObjectID, qType models.QuestionnaireType) (bool, error)

	// SetAmendment records one merchant business-detail amendment
	SetAmendment(merchantID primitive.ObjectID, field, value string) error

	// ConfirmAmendments marks the amendment section reviewed
	ConfirmAmendments(merchantID primitive.ObjectID) error

	// VisibleQuestions returns the filtered question list for a type
	VisibleQuestions(merchantID primitive.ObjectID, qType models.QuestionnaireType) ([]models.Question, error)

	// SetAnswer merges a new answer value into the session state
	SetAnswer(merchantID primitive.ObjectID, qType models.QuestionnaireType, questionID string, value interface{}) error

	// ToggleEnumValue applies the enum toggle-to-deselect behavior
	ToggleEnumValue(merchantID primitive.ObjectID, qType models.QuestionnaireType, questionID, value string) error

	// SetNotes merges new supplemental notes into the session state
	SetNotes(merchantID primitive.ObjectID, qType models.QuestionnaireType, questionID, notes string) error

	// UpdateWorksheetField edits one field of an appendix worksheet
	UpdateWorksheetField(merchantID primitive.ObjectID, qType models.QuestionnaireType, questionID, letter, fieldKey, value string) error

	// AdvanceQuestion reconciles the current question and moves forward
	AdvanceQuestion(ctx context.Context, merchantID primitive.ObjectID, qType models.QuestionnaireType) (int, error)

	// JumpToQuestion reconciles the current question and jumps to an index
	JumpToQuestion(ctx context.Context, merchantID primitive.ObjectID, qType models.QuestionnaireType, target int) (int, error)

	// Progress computes section progress for one selected type
	Progress(merchantID primitive.ObjectID, qType models.QuestionnaireType) (saq.Progress, error)

	// AdvanceStep moves the wizard to its next section
	AdvanceStep(merchantID primitive.ObjectID) (saq.Step, error)

	// Attest records the attestation signatory
	Attest(merchantID primitive.ObjectID, name, role string) error

	// Submit reconciles everything and submits every selected questionnaire
	Submit(ctx context.Context, merchantID primitive.ObjectID, actorEmail, requestID string) error
}

// advisorSession is one merchant's live wizard
type advisorSession struct {
	wizard     *saq.Wizard
	merchantID primitive.ObjectID
	lastAccess time.Time
}

// advisorService implements AdvisorService
type advisorService struct {
	templates     TemplateService
	answers       AnswerService
	questionnaire QuestionnaireService
	render        RenderService

	renderDelay time.Duration
	sessionTTL  time.Duration

	mu       sync.Mutex
	sessions map[string]*advisorSession
}

// NewAdvisorService creates the advisor session manager and starts its
// idle-session eviction loop.
func NewAdvisorService(
	templates TemplateService,
	answers AnswerService,
	questionnaire QuestionnaireService,
	render RenderService,
	renderDelay, sessionTTL time.Duration,
) AdvisorService {
	if renderDelay <= 0 {
		renderDelay = saq.DefaultRenderDelay
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	s := &advisorService{
		templates:     templates,
		answers:       answers,
		questionnaire: questionnaire,
		render:        render,
		renderDelay:   renderDelay,
		sessionTTL:    sessionTTL,
		sessions:      map[string]*advisorSession{},
	}
	go s.evictLoop()
	return s
}

// evictLoop closes sessions idle past the TTL
func (s *advisorService) evictLoop() {
	ticker := time.NewTicker(s.sessionTTL / 4)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-s.sessionTTL)
		s.mu.Lock()
		for key, sess := range s.sessions {
			if sess.lastAccess.Before(cutoff) {
				sess.wizard.Close()
				delete(s.sessions, key)
				log.Printf("[ADVISOR] Evicted idle session for merchant %s", key)
			}
		}
		s.mu.Unlock()
	}
}

// StartSession opens (or resumes) the merchant's advisor session
func (s *advisorService) StartSession(ctx context.Context, merchantID primitive.ObjectID) (*SessionState, error) {
	sess, err := s.getOrCreateSession(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	channels, _ := sess.wizard.Channels()
	return &SessionState{
		Step:          sess.wizard.Step(),
		SelectedTypes: sess.wizard.SelectedTypes(),
		Channels:      channels,
	}, nil
}

// CloseSession tears the merchant's session down
func (s *advisorService) CloseSession(merchantID primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := merchantID.Hex()
	if sess, ok := s.sessions[key]; ok {
		sess.wizard.Close()
		delete(s.sessions, key)
	}
}

// getOrCreateSession returns the merchant's session, building and hydrating
// a new one on first access.
func (s *advisorService) getOrCreateSession(ctx context.Context, merchantID primitive.ObjectID) (*advisorSession, error) {
	key := merchantID.Hex()

	s.mu.Lock()
	if sess, ok := s.sessions[key]; ok {
		sess.lastAccess = time.Now()
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	bank, err := s.templates.LoadBank(ctx)
	if err != nil {
		return nil, err
	}

	sess := &advisorSession{merchantID: merchantID, lastAccess: time.Now()}
	sess.wizard = saq.NewWizard(bank, s.renderDelay, s.renderFunc(sess))

	if err := s.hydrate(ctx, sess); err != nil {
		sess.wizard.Close()
		return nil, err
	}

	s.mu.Lock()
	// A concurrent request may have built the session in the meantime
	if existing, ok := s.sessions[key]; ok {
		s.mu.Unlock()
		sess.wizard.Close()
		existing.lastAccess = time.Now()
		return existing, nil
	}
	s.sessions[key] = sess
	s.mu.Unlock()
	return sess, nil
}

// hydrate installs the merchant's persisted instances and answers
func (s *advisorService) hydrate(ctx context.Context, sess *advisorSession) error {
	instances, err := s.questionnaire.ListByMerchant(ctx, sess.merchantID)
	if err != nil {
		return err
	}
	store := sess.wizard.Store()
	for i := range instances {
		qa := instances[i]
		if qa.Status == models.QuestionnaireStatusRemoved {
			continue
		}
		store.SetMetadata(&qa)

		responses, err := s.answers.ListAnswers(ctx, qa.QuestionnaireAnswerUUID)
		if err != nil {
			return err
		}
		store.Hydrate(qa.QuestionnaireType, responses)
	}
	return nil
}

// session returns the live session for a merchant
func (s *advisorService) session(merchantID primitive.ObjectID) (*advisorSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[merchantID.Hex()]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	sess.lastAccess = time.Now()
	return sess, nil
}

// renderFunc builds the debounced render callback for one session. The
// scheduler fires it off the request path, so it carries its own context.
func (s *advisorService) renderFunc(sess *advisorSession) saq.RenderFunc {
	return func(qType models.QuestionnaireType) {
		store := sess.wizard.Store()
		qa := store.Metadata(qType)
		if qa == nil {
			return
		}
		if !store.PendingRender(qType) {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		visible := store.VisibleQuestions(qType)
		responses := store.Responses(qType)
		if _, err := s.render.RenderDocument(ctx, qa, visible, responses); err != nil {
			log.Printf("[ADVISOR] Render failed for %s (%s): %v", qa.QuestionnaireAnswerUUID, qType, err)
			return
		}
		store.ClearPendingRender(qType)
	}
}

// persistFunc adapts the answer service to the store's persistence contract
func (s *advisorService) persistFunc() saq.PersistFunc {
	return func(ctx context.Context, req saq.PersistRequest) (*saq.PersistResult, error) {
		return s.answers.PersistAnswer(ctx, req)
	}
}

// SelectChannels records decision answers and returns applicable types
func (s *advisorService) SelectChannels(ctx context.Context, merchantID primitive.ObjectID, channels []string, storesAccountData bool) ([]models.QuestionnaireType, error) {
	sess, err := s.session(merchantID)
	if err != nil {
		return nil, err
	}
	applicable := sess.wizard.SelectChannels(channels, storesAccountData)

	// Instances are created lazily per applicable type so the persistence
	// collaborator always has a questionnaire answer UUID to work with
	for _, qType := range applicable {
		if err := s.ensureInstance(ctx, sess, qType); err != nil {
			return nil, err
		}
	}
	return applicable, nil
}

// ensureInstance makes sure a questionnaire instance backs a selected type
func (s *advisorService) ensureInstance(ctx context.Context, sess *advisorSession, qType models.QuestionnaireType) error {
	store := sess.wizard.Store()
	if store.Metadata(qType) != nil {
		return nil
	}
	qa, err := s.questionnaire.GetOrCreateInstance(ctx, sess.merchantID, qType)
	if err != nil {
		return err
	}
	store.SetMetadata(qa)

	responses, err := s.answers.ListAnswers(ctx, qa.QuestionnaireAnswerUUID)
	if err != nil {
		return err
	}
	if len(responses) > 0 {
		store.Hydrate(qType, responses)
	}
	return nil
}

// ToggleType flips one SAQ type's opt-out; returns true if now selected
func (s *advisorService) ToggleType(ctx context.Context, merchantID primitive.ObjectID, qType models.QuestionnaireType) (bool, error) {
	if !qType.IsValid() {
		return false, models.ErrUnknownQuestionnaireType
	}
	sess, err := s.session(merchantID)
	if err != nil {
		return false, err
	}
	selected := sess.wizard.ToggleType(qType)
	if selected {
		if err := s.ensureInstance(ctx, sess, qType); err != nil {
			return false, err
		}
	}
	return selected, nil
}

// SetAmendment records one merchant business-detail amendment
func (s *advisorService) SetAmendment(merchantID primitive.ObjectID, field, value string) error {
	sess, err := s.session(merchantID)
	if err != nil {
		return err
	}
	if field == "" {
		return models.ErrInvalidInput
	}
	sess.wizard.SetAmendment(field, value)
	return nil
}

// ConfirmAmendments marks the amendment section reviewed
func (s *advisorService) ConfirmAmendments(merchantID primitive.ObjectID) error {
	sess, err := s.session(merchantID)
	if err != nil {
		return err
	}
	sess.wizard.ConfirmAmendments()
	return nil
}

// VisibleQuestions returns the filtered question list for a type
func (s *advisorService) VisibleQuestions(merchantID primitive.ObjectID, qType models.QuestionnaireType) ([]models.Question, error) {
	sess, err := s.session(merchantID)
	if err != nil {
		return nil, err
	}
	return sess.wizard.Store().VisibleQuestions(qType), nil
}

// SetAnswer merges a new answer value into the session state
func (s *advisorService) SetAnswer(merchantID primitive.ObjectID, qType models.QuestionnaireType, questionID string, value interface{}) error {
	sess, err := s.session(merchantID)
	if err != nil {
		return err
	}
	return sess.wizard.Store().SetValue(qType, questionID, value)
}

// ToggleEnumValue applies the enum toggle-to-deselect behavior
func (s *advisorService) ToggleEnumValue(merchantID primitive.ObjectID, qType models.QuestionnaireType, questionID, value string) error {
	sess, err := s.session(merchantID)
	if err != nil {
		return err
	}
	return sess.wizard.ToggleEnumValue(qType, questionID, value)
}

// SetNotes merges new supplemental notes into the session state
func (s *advisorService) SetNotes(merchantID primitive.ObjectID, qType models.QuestionnaireType, questionID, notes string) error {
	sess, err := s.session(merchantID)
	if err != nil {
		return err
	}
	return sess.wizard.Store().SetNotes(qType, questionID, notes)
}

// UpdateWorksheetField edits one field of an appendix worksheet
func (s *advisorService) UpdateWorksheetField(merchantID primitive.ObjectID, qType models.QuestionnaireType, questionID, letter, fieldKey, value string) error {
	sess, err := s.session(merchantID)
	if err != nil {
		return err
	}
	return sess.wizard.Store().UpdateWorksheetField(qType, questionID, letter, fieldKey, value)
}

// AdvanceQuestion reconciles the current question and moves forward
func (s *advisorService) AdvanceQuestion(ctx context.Context, merchantID primitive.ObjectID, qType models.QuestionnaireType) (int, error) {
	sess, err := s.session(merchantID)
	if err != nil {
		return 0, err
	}
	return sess.wizard.AdvanceQuestion(ctx, qType, s.persistFunc())
}

// JumpToQuestion reconciles the current question and jumps to an index
func (s *advisorService) JumpToQuestion(ctx context.Context, merchantID primitive.ObjectID, qType models.QuestionnaireType, target int) (int, error) {
	sess, err := s.session(merchantID)
	if err != nil {
		return 0, err
	}
	return sess.wizard.JumpToQuestion(ctx, qType, target, s.persistFunc())
}

// Progress computes section progress for one selected type
func (s *advisorService) Progress(merchantID primitive.ObjectID, qType models.QuestionnaireType) (saq.Progress, error) {
	sess, err := s.session(merchantID)
	if err != nil {
		return saq.Progress{}, err
	}
	return sess.wizard.TypeProgress(qType), nil
}

// AdvanceStep moves the wizard to its next section
func (s *advisorService) AdvanceStep(merchantID primitive.ObjectID) (saq.Step, error) {
	sess, err := s.session(merchantID)
	if err != nil {
		return "", err
	}
	return sess.wizard.Advance()
}

// Attest records the attestation signatory
func (s *advisorService) Attest(merchantID primitive.ObjectID, name, role string) error {
	sess, err := s.session(merchantID)
	if err != nil {
		return err
	}
	return sess.wizard.Attest(name, role)
}

// Submit reconciles everything and submits every selected questionnaire.
// A reconcile failure aborts before any instance changes status.
func (s *advisorService) Submit(ctx context.Context, merchantID primitive.ObjectID, actorEmail, requestID string) error {
	sess, err := s.session(merchantID)
	if err != nil {
		return err
	}
	if !sess.wizard.ReadyToSubmit() {
		return models.ErrQuestionnaireNotComplete
	}
	if err := sess.wizard.ReconcileAll(ctx, s.persistFunc()); err != nil {
		return err
	}

	store := sess.wizard.Store()
	for _, qType := range sess.wizard.SelectedTypes() {
		qa := store.Metadata(qType)
		if qa == nil {
			return models.ErrQuestionnaireNotFound
		}
		if qa.IsSubmitted() {
			continue
		}
		if err := s.questionnaire.Submit(ctx, qa, actorEmail, requestID); err != nil {
			return err
		}
	}
	return nil
}

// Ensure advisorService implements AdvisorService
var _ AdvisorService = (*advisorService)(nil)
