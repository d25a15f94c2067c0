// Package services provides business logic implementations.
package services

import (
	"context"
	"fmt"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
	"github.com/paysec-tools/saqadvisor_backend/internal/repository"
	"github.com/paysec-tools/saqadvisor_backend/internal/saq"
)

// TemplateService provides read access to the seeded SAQ question banks
// #QUERY_INTERFACE: Banks are read-mostly; the advisor session loads them once
type TemplateService interface {
	// LoadBank loads the full question bank for every SAQ type
	LoadBank(ctx context.Context) (saq.QuestionBank, error)

	// ListQuestions lists a questionnaire's questions in template order
	ListQuestions(ctx context.Context, qType models.QuestionnaireType) ([]models.Question, error)

	// GetQuestion finds a question by type and stable question ID
	GetQuestion(ctx context.Context, qType models.QuestionnaireType, questionID string) (*models.Question, error)

	// BankStats returns the question count per SAQ type
	BankStats(ctx context.Context) (map[models.QuestionnaireType]int64, error)
}

// templateService implements TemplateService
type templateService struct {
	questionRepo repository.QuestionRepository
}

// NewTemplateService creates a new template service
func NewTemplateService(questionRepo repository.QuestionRepository) TemplateService {
	return &templateService{questionRepo: questionRepo}
}

// LoadBank loads the full question bank for every SAQ type
func (s *templateService) LoadBank(ctx context.Context) (saq.QuestionBank, error) {
	bank := saq.QuestionBank{}
	for _, qType := range models.AllQuestionnaireTypes() {
		questions, err := s.questionRepo.ListByType(ctx, qType)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s question bank: %w", qType, err)
		}
		bank[qType] = questions
	}
	return bank, nil
}

// ListQuestions lists a questionnaire's questions in template order
func (s *templateService) ListQuestions(ctx context.Context, qType models.QuestionnaireType) ([]models.Question, error) {
	if !qType.IsValid() {
		return nil, models.ErrUnknownQuestionnaireType
	}
	return s.questionRepo.ListByType(ctx, qType)
}

// GetQuestion finds a question by type and stable question ID
func (s *templateService) GetQuestion(ctx context.Context, qType models.QuestionnaireType, questionID string) (*models.Question, error) {
	if !qType.IsValid() {
		return nil, models.ErrUnknownQuestionnaireType
	}
	if questionID == "" {
		return nil, models.ErrMissingQuestionID
	}
	return s.questionRepo.GetByQuestionID(ctx, qType, questionID)
}

// BankStats returns the question count per SAQ type
func (s *templateService) BankStats(ctx context.Context) (map[models.QuestionnaireType]int64, error) {
	stats := make(map[models.QuestionnaireType]int64)
	for _, qType := range models.AllQuestionnaireTypes() {
		count, err := s.questionRepo.CountByType(ctx, qType)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s questions: %w", qType, err)
		}
		stats[qType] = count
	}
	return stats, nil
}

// Ensure templateService implements TemplateService
var _ TemplateService = (*templateService)(nil)
