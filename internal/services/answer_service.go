// Package services provides business logic implementations.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
	"github.com/paysec-tools/saqadvisor_backend/internal/repository"
	"github.com/paysec-tools/saqadvisor_backend/internal/saq"
)

// AnswerService is the persistence collaborator behind the advisor session's
// reconcile step. Every persisted answer gets a fresh answer UUID; the store
// treats that UUID as the proof of a clean response.
type AnswerService interface {
	// PersistAnswer stores one reconciled answer and acknowledges it
	PersistAnswer(ctx context.Context, req saq.PersistRequest) (*saq.PersistResult, error)

	// ListAnswers lists the persisted answers of a questionnaire
	ListAnswers(ctx context.Context, questionnaireAnswerUUID string) ([]models.Response, error)

	// GetAnswer returns the persisted answer for one question
	GetAnswer(ctx context.Context, questionnaireAnswerUUID, questionID string) (*models.Response, error)
}

// answerService implements AnswerService
type answerService struct {
	responseRepo repository.ResponseRepository
	qaRepo       repository.QuestionnaireAnswerRepository
	audit        *AuditHelpers
}

// NewAnswerService creates a new answer service
func NewAnswerService(
	responseRepo repository.ResponseRepository,
	qaRepo repository.QuestionnaireAnswerRepository,
	audit *AuditHelpers,
) AnswerService {
	return &answerService{
		responseRepo: responseRepo,
		qaRepo:       qaRepo,
		audit:        audit,
	}
}

// PersistAnswer stores one reconciled answer and acknowledges it
// #BUSINESS_RULE: Persistence without a questionnaire answer UUID is a
// configuration error, fatal to the attempted operation
func (s *answerService) PersistAnswer(ctx context.Context, req saq.PersistRequest) (*saq.PersistResult, error) {
	if req.QuestionnaireAnswerUUID == "" {
		return nil, models.ErrMissingQuestionnaireUUID
	}
	if req.Response == nil || req.Response.QuestionID == "" {
		return nil, models.ErrMissingQuestionID
	}

	// Answers whose value mandates an explanation cannot be persisted bare
	if value, ok := req.Response.Value.(string); ok {
		if req.Question.NotesRequired(value) && strings.TrimSpace(req.Response.Notes) == "" {
			return nil, models.ErrNotesRequired
		}
	}

	// A re-persisted answer goes back to pending: reviewer decisions apply to
	// answer versions, not questions
	status := models.AnswerStatusPending

	answerUUID := uuid.New().String()

	stored := *req.Response
	stored.AnswerUUID = answerUUID
	stored.AnswerStatus = status

	if err := s.responseRepo.Upsert(ctx, req.QuestionnaireAnswerUUID, &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAnswerPersistence, err)
	}

	// An edit on a flagged questionnaire flips it to providing_info
	if qa, err := s.qaRepo.GetByUUID(ctx, req.QuestionnaireAnswerUUID); err == nil {
		if qa.BeginProvidingInfo() {
			//nolint:errcheck // Best-effort status update; the next persist retries
			s.qaRepo.Update(ctx, qa)
		}
	}

	if s.audit != nil {
		s.audit.LogAnswerPersisted("", nil, req.QuestionnaireAnswerUUID, req.Response.QuestionID, answerUUID, "")
	}

	return &saq.PersistResult{
		AnswerUUID:   answerUUID,
		AnswerStatus: status,
		Normalized:   true,
	}, nil
}

// ListAnswers lists the persisted answers of a questionnaire
func (s *answerService) ListAnswers(ctx context.Context, questionnaireAnswerUUID string) ([]models.Response, error) {
	if questionnaireAnswerUUID == "" {
		return nil, models.ErrMissingQuestionnaireUUID
	}
	return s.responseRepo.ListByQuestionnaire(ctx, questionnaireAnswerUUID)
}

// GetAnswer returns the persisted answer for one question
func (s *answerService) GetAnswer(ctx context.Context, questionnaireAnswerUUID, questionID string) (*models.Response, error) {
	if questionnaireAnswerUUID == "" {
		return nil, models.ErrMissingQuestionnaireUUID
	}
	if questionID == "" {
		return nil, models.ErrMissingQuestionID
	}
	response, err := s.responseRepo.GetByQuestion(ctx, questionnaireAnswerUUID, questionID)
	if err != nil {
		if errors.Is(err, models.ErrResponseNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	return response, nil
}

// Ensure answerService implements AnswerService
var _ AnswerService = (*answerService)(nil)
