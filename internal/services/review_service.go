// Package services provides business logic implementations.
package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
	"github.com/paysec-tools/saqadvisor_backend/internal/repository"
)

// ReviewService handles the reviewer side of the submission lifecycle
// #BUSINESS_RULE: Reviewer decisions apply to answer versions; a re-persisted
// answer returns to pending regardless of prior review status
type ReviewService interface {
	// ListSubmitted lists submitted questionnaires awaiting review
	ListSubmitted(ctx context.Context, opts repository.PaginationOptions) (*repository.PaginatedResult[models.QuestionnaireAnswer], error)

	// GetSubmission loads one submitted questionnaire with its answers
	GetSubmission(ctx context.Context, questionnaireAnswerUUID string) (*models.QuestionnaireAnswer, []models.Response, error)

	// FlagAnswer marks an answer as requiring further merchant details
	FlagAnswer(ctx context.Context, reviewerEmail, questionnaireAnswerUUID, questionID, reviewerNotes, requestID string) error

	// AcceptAnswer marks an answer as valid
	AcceptAnswer(ctx context.Context, reviewerEmail, questionnaireAnswerUUID, questionID, requestID string) error

	// CompleteReview closes the review and notifies collaborators
	CompleteReview(ctx context.Context, reviewerEmail, questionnaireAnswerUUID, requestID string) error
}

// reviewService implements ReviewService
type reviewService struct {
	qaRepo       repository.QuestionnaireAnswerRepository
	responseRepo repository.ResponseRepository
	notification NotificationService
	audit        *AuditHelpers
}

// NewReviewService creates a new review service
func NewReviewService(
	qaRepo repository.QuestionnaireAnswerRepository,
	responseRepo repository.ResponseRepository,
	notification NotificationService,
	audit *AuditHelpers,
) ReviewService {
	return &reviewService{
		qaRepo:       qaRepo,
		responseRepo: responseRepo,
		notification: notification,
		audit:        audit,
	}
}

// ListSubmitted lists submitted questionnaires awaiting review
func (s *reviewService) ListSubmitted(ctx context.Context, opts repository.PaginationOptions) (*repository.PaginatedResult[models.QuestionnaireAnswer], error) {
	return s.qaRepo.ListByStatus(ctx, models.QuestionnaireStatusSubmitted, opts)
}

// GetSubmission loads one submitted questionnaire with its answers
func (s *reviewService) GetSubmission(ctx context.Context, questionnaireAnswerUUID string) (*models.QuestionnaireAnswer, []models.Response, error) {
	if questionnaireAnswerUUID == "" {
		return nil, nil, models.ErrMissingQuestionnaireUUID
	}
	qa, err := s.qaRepo.GetByUUID(ctx, questionnaireAnswerUUID)
	if err != nil {
		return nil, nil, err
	}
	if !qa.IsSubmitted() && qa.Status != models.QuestionnaireStatusInfoRequested &&
		qa.Status != models.QuestionnaireStatusProvidingInfo {
		return nil, nil, models.ErrQuestionnaireNotSubmitted
	}
	responses, err := s.responseRepo.ListByQuestionnaire(ctx, questionnaireAnswerUUID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load responses: %w", err)
	}
	return qa, responses, nil
}

// FlagAnswer marks an answer as requiring further merchant details.
// The owning questionnaire moves to info_requested so the merchant regains
// edit access on the flagged answers.
func (s *reviewService) FlagAnswer(ctx context.Context, reviewerEmail, questionnaireAnswerUUID, questionID, reviewerNotes, requestID string) error {
	if questionID == "" {
		return models.ErrMissingQuestionID
	}
	if strings.TrimSpace(reviewerNotes) == "" {
		return models.ErrInvalidInput
	}

	qa, err := s.qaRepo.GetByUUID(ctx, questionnaireAnswerUUID)
	if err != nil {
		return err
	}

	if err := s.responseRepo.UpdateStatus(ctx, questionnaireAnswerUUID, questionID,
		models.AnswerStatusRequiresFurtherDetails, reviewerNotes); err != nil {
		return fmt.Errorf("failed to flag answer: %w", err)
	}

	if qa.Status != models.QuestionnaireStatusInfoRequested {
		if err := qa.Transition(models.QuestionnaireStatusInfoRequested); err != nil {
			return err
		}
		if err := s.qaRepo.Update(ctx, qa); err != nil {
			return fmt.Errorf("failed to update questionnaire: %w", err)
		}
	}

	if s.audit != nil {
		s.audit.LogReview(reviewerEmail, questionnaireAnswerUUID, qa.Status, requestID)
	}
	if s.notification != nil {
		if err := s.notification.NotifyInfoRequested(ctx, qa, questionID, reviewerNotes); err != nil {
			log.Printf("[REVIEW] Info-requested notification failed for %s: %v", questionnaireAnswerUUID, err)
		}
	}
	return nil
}

// AcceptAnswer marks an answer as valid
func (s *reviewService) AcceptAnswer(ctx context.Context, reviewerEmail, questionnaireAnswerUUID, questionID, requestID string) error {
	if questionID == "" {
		return models.ErrMissingQuestionID
	}
	if _, err := s.qaRepo.GetByUUID(ctx, questionnaireAnswerUUID); err != nil {
		return err
	}
	if err := s.responseRepo.UpdateStatus(ctx, questionnaireAnswerUUID, questionID,
		models.AnswerStatusValid, ""); err != nil {
		return fmt.Errorf("failed to accept answer: %w", err)
	}
	if s.audit != nil {
		s.audit.LogReview(reviewerEmail, questionnaireAnswerUUID, models.QuestionnaireStatusSubmitted, requestID)
	}
	return nil
}

// CompleteReview closes the review and notifies collaborators.
// Answers still flagged for further details block completion.
func (s *reviewService) CompleteReview(ctx context.Context, reviewerEmail, questionnaireAnswerUUID, requestID string) error {
	qa, err := s.qaRepo.GetByUUID(ctx, questionnaireAnswerUUID)
	if err != nil {
		return err
	}

	responses, err := s.responseRepo.ListByQuestionnaire(ctx, questionnaireAnswerUUID)
	if err != nil {
		return fmt.Errorf("failed to load responses: %w", err)
	}
	for i := range responses {
		if responses[i].AnswerStatus == models.AnswerStatusRequiresFurtherDetails {
			return models.ErrQuestionnaireNotComplete
		}
	}

	if err := qa.Transition(models.QuestionnaireStatusReviewed); err != nil {
		return err
	}
	if err := s.qaRepo.Update(ctx, qa); err != nil {
		return fmt.Errorf("failed to update questionnaire: %w", err)
	}

	if s.audit != nil {
		s.audit.LogReview(reviewerEmail, questionnaireAnswerUUID, qa.Status, requestID)
	}
	if s.notification != nil {
		if err := s.notification.NotifyReviewComplete(ctx, qa); err != nil {
			log.Printf("[REVIEW] Review-complete notification failed for %s: %v", questionnaireAnswerUUID, err)
		}
	}
	return nil
}

// Ensure reviewService implements ReviewService
var _ ReviewService = (*reviewService)(nil)
