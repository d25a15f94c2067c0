// Package services provides business logic implementations.
package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
	"github.com/paysec-tools/saqadvisor_backend/internal/repository"
)

// RenderedItem is one question/answer pair of a rendered document
type RenderedItem struct {
	QuestionID   string              `json:"question_id"`
	Number       string              `json:"number,omitempty"`
	Text         string              `json:"text"`
	Section      int                 `json:"section"`
	Value        interface{}         `json:"value,omitempty"`
	Notes        string              `json:"notes,omitempty"`
	AnswerStatus models.AnswerStatus `json:"answer_status,omitempty"`
}

// RenderedDocument is a point-in-time JSON rendering of one questionnaire.
// Every render produces a fresh document UUID; documents are immutable once
// generated.
type RenderedDocument struct {
	DocumentUUID            string                     `json:"document_uuid"`
	QuestionnaireAnswerUUID string                     `json:"questionnaire_answer_uuid"`
	QuestionnaireType       models.QuestionnaireType   `json:"questionnaire_type"`
	Status                  models.QuestionnaireStatus `json:"status"`
	GeneratedAt             time.Time                  `json:"generated_at"`
	Items                   []RenderedItem             `json:"items"`
}

// RenderService regenerates questionnaire documents after answer changes
// #IMPLEMENTATION_DECISION: Documents live in process memory; the durable
// record is the document UUID stored on the questionnaire instance. A lost
// document is regenerated from persisted answers on the next render.
type RenderService interface {
	// RenderDocument generates a new document version for a questionnaire
	RenderDocument(ctx context.Context, qa *models.QuestionnaireAnswer, visible []models.Question, responses map[string]*models.Response) (*RenderedDocument, error)

	// GetDocument returns a previously rendered document by its UUID
	GetDocument(documentUUID string) (*RenderedDocument, error)

	// GetLatest returns the latest rendered document of a questionnaire
	GetLatest(questionnaireAnswerUUID string) (*RenderedDocument, error)
}

// renderService implements RenderService
type renderService struct {
	qaRepo repository.QuestionnaireAnswerRepository
	audit  *AuditHelpers

	mu       sync.Mutex
	docs     map[string]*RenderedDocument
	latest   map[string]string
	inFlight map[string]bool
}

// NewRenderService creates a new render service
func NewRenderService(qaRepo repository.QuestionnaireAnswerRepository, audit *AuditHelpers) RenderService {
	return &renderService{
		qaRepo:   qaRepo,
		audit:    audit,
		docs:     map[string]*RenderedDocument{},
		latest:   map[string]string{},
		inFlight: map[string]bool{},
	}
}

// RenderDocument generates a new document version for a questionnaire.
// A render already in flight for the same questionnaire is a conflict; the
// debounce scheduler normally prevents this.
func (s *renderService) RenderDocument(ctx context.Context, qa *models.QuestionnaireAnswer, visible []models.Question, responses map[string]*models.Response) (*RenderedDocument, error) {
	if qa == nil || qa.QuestionnaireAnswerUUID == "" {
		return nil, models.ErrMissingQuestionnaireUUID
	}

	s.mu.Lock()
	if s.inFlight[qa.QuestionnaireAnswerUUID] {
		s.mu.Unlock()
		return nil, models.ErrRenderInFlight
	}
	s.inFlight[qa.QuestionnaireAnswerUUID] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, qa.QuestionnaireAnswerUUID)
		s.mu.Unlock()
	}()

	doc := &RenderedDocument{
		DocumentUUID:            uuid.New().String(),
		QuestionnaireAnswerUUID: qa.QuestionnaireAnswerUUID,
		QuestionnaireType:       qa.QuestionnaireType,
		Status:                  qa.Status,
		GeneratedAt:             time.Now().UTC(),
		Items:                   make([]RenderedItem, 0, len(visible)),
	}

	for _, q := range visible {
		item := RenderedItem{
			QuestionID: q.QuestionID,
			Number:     q.Number,
			Text:       q.Text,
			Section:    q.Section,
		}
		if resp := responses[q.QuestionID]; resp != nil {
			item.Value = resp.Value
			item.Notes = resp.Notes
			item.AnswerStatus = resp.AnswerStatus
		}
		doc.Items = append(doc.Items, item)
	}

	s.mu.Lock()
	s.docs[doc.DocumentUUID] = doc
	s.latest[qa.QuestionnaireAnswerUUID] = doc.DocumentUUID
	s.mu.Unlock()

	qa.SetDocument(doc.DocumentUUID)
	if err := s.qaRepo.Update(ctx, qa); err != nil {
		log.Printf("[RENDER] Failed to record document %s on questionnaire %s: %v",
			doc.DocumentUUID, qa.QuestionnaireAnswerUUID, err)
		return nil, fmt.Errorf("failed to record rendered document: %w", err)
	}

	if s.audit != nil {
		s.audit.LogRender(qa.QuestionnaireAnswerUUID, doc.DocumentUUID)
	}
	return doc, nil
}

// GetDocument returns a previously rendered document by its UUID
func (s *renderService) GetDocument(documentUUID string) (*RenderedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[documentUUID]
	if !ok {
		return nil, models.ErrDocumentNotFound
	}
	return doc, nil
}

// GetLatest returns the latest rendered document of a questionnaire
func (s *renderService) GetLatest(questionnaireAnswerUUID string) (*RenderedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docUUID, ok := s.latest[questionnaireAnswerUUID]
	if !ok {
		return nil, models.ErrDocumentNotFound
	}
	doc, ok := s.docs[docUUID]
	if !ok {
		return nil, models.ErrDocumentNotFound
	}
	return doc, nil
}

// Ensure renderService implements RenderService
var _ RenderService = (*renderService)(nil)
