// Package services provides business logic implementations.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
	"github.com/paysec-tools/saqadvisor_backend/internal/repository"
)

// QuestionnaireService manages questionnaire instance lifecycle
// #BUSINESS_RULE: One instance per merchant per SAQ type; instances are
// created lazily when a type is first selected in the advisor
type QuestionnaireService interface {
	// GetOrCreateInstance returns the merchant's instance for a type,
	// creating a draft one if none exists
	GetOrCreateInstance(ctx context.Context, merchantID primitive.ObjectID, qType models.QuestionnaireType) (*models.QuestionnaireAnswer, error)

	// GetByUUID finds an instance by its backend UUID
	GetByUUID(ctx context.Context, questionnaireAnswerUUID string) (*models.QuestionnaireAnswer, error)

	// GetForActor finds an instance and checks the actor may access it
	GetForActor(ctx context.Context, questionnaireAnswerUUID string, merchantID primitive.ObjectID, email string) (*models.QuestionnaireAnswer, error)

	// ListByMerchant lists a merchant's questionnaire instances
	ListByMerchant(ctx context.Context, merchantID primitive.ObjectID) ([]models.QuestionnaireAnswer, error)

	// Submit moves an instance to submitted and notifies collaborators
	Submit(ctx context.Context, qa *models.QuestionnaireAnswer, actorEmail, requestID string) error

	// Remove soft-deletes an instance
	Remove(ctx context.Context, qa *models.QuestionnaireAnswer) error
}

// questionnaireService implements QuestionnaireService
type questionnaireService struct {
	qaRepo       repository.QuestionnaireAnswerRepository
	notification NotificationService
	audit        *AuditHelpers
}

// NewQuestionnaireService creates a new questionnaire service
func NewQuestionnaireService(
	qaRepo repository.QuestionnaireAnswerRepository,
	notification NotificationService,
	audit *AuditHelpers,
) QuestionnaireService {
	return &questionnaireService{
		qaRepo:       qaRepo,
		notification: notification,
		audit:        audit,
	}
}

// GetOrCreateInstance returns the merchant's instance for a type,
// creating a draft one if none exists
func (s *questionnaireService) GetOrCreateInstance(ctx context.Context, merchantID primitive.ObjectID, qType models.QuestionnaireType) (*models.QuestionnaireAnswer, error) {
	if !qType.IsValid() {
		return nil, models.ErrUnknownQuestionnaireType
	}

	qa, err := s.qaRepo.GetByMerchantAndType(ctx, merchantID, qType)
	if err == nil {
		if qa.Status == models.QuestionnaireStatusRemoved {
			return nil, models.ErrQuestionnaireRemoved
		}
		return qa, nil
	}
	if !errors.Is(err, models.ErrQuestionnaireNotFound) {
		return nil, fmt.Errorf("failed to look up questionnaire instance: %w", err)
	}

	qa = &models.QuestionnaireAnswer{
		MerchantID:              merchantID,
		QuestionnaireAnswerUUID: uuid.New().String(),
		QuestionnaireType:       qType,
		Status:                  models.QuestionnaireStatusDraft,
	}
	if err := s.qaRepo.Create(ctx, qa); err != nil {
		// A concurrent request may have created it first
		if errors.Is(err, models.ErrAlreadyExists) {
			return s.qaRepo.GetByMerchantAndType(ctx, merchantID, qType)
		}
		return nil, fmt.Errorf("failed to create questionnaire instance: %w", err)
	}
	return qa, nil
}

// GetByUUID finds an instance by its backend UUID
func (s *questionnaireService) GetByUUID(ctx context.Context, questionnaireAnswerUUID string) (*models.QuestionnaireAnswer, error) {
	if questionnaireAnswerUUID == "" {
		return nil, models.ErrMissingQuestionnaireUUID
	}
	return s.qaRepo.GetByUUID(ctx, questionnaireAnswerUUID)
}

// GetForActor finds an instance and checks the actor may access it.
// Access is granted to the owning merchant and to assigned collaborators.
func (s *questionnaireService) GetForActor(ctx context.Context, questionnaireAnswerUUID string, merchantID primitive.ObjectID, email string) (*models.QuestionnaireAnswer, error) {
	qa, err := s.GetByUUID(ctx, questionnaireAnswerUUID)
	if err != nil {
		return nil, err
	}
	if qa.MerchantID == merchantID {
		return qa, nil
	}
	if _, ok := qa.RoleFor(email); ok {
		return qa, nil
	}
	return nil, models.ErrForbidden
}

// ListByMerchant lists a merchant's questionnaire instances
func (s *questionnaireService) ListByMerchant(ctx context.Context, merchantID primitive.ObjectID) ([]models.QuestionnaireAnswer, error) {
	return s.qaRepo.ListByMerchant(ctx, merchantID)
}

// Submit moves an instance to submitted and notifies collaborators.
// Completeness is the caller's responsibility; this enforces only the
// status transition rules.
func (s *questionnaireService) Submit(ctx context.Context, qa *models.QuestionnaireAnswer, actorEmail, requestID string) error {
	if qa.IsSubmitted() {
		return models.ErrInvalidStatusTransition
	}
	if err := qa.Transition(models.QuestionnaireStatusSubmitted); err != nil {
		return err
	}
	if err := s.qaRepo.Update(ctx, qa); err != nil {
		return fmt.Errorf("failed to update questionnaire: %w", err)
	}

	if s.audit != nil {
		s.audit.LogSubmission(actorEmail, &qa.MerchantID, qa.QuestionnaireAnswerUUID, qa.QuestionnaireType, requestID)
	}
	if s.notification != nil {
		if err := s.notification.NotifySubmissionReceived(ctx, qa); err != nil {
			log.Printf("[QUESTIONNAIRE] Submission notification failed for %s: %v", qa.QuestionnaireAnswerUUID, err)
		}
	}
	return nil
}

// Remove soft-deletes an instance
func (s *questionnaireService) Remove(ctx context.Context, qa *models.QuestionnaireAnswer) error {
	if err := qa.Transition(models.QuestionnaireStatusRemoved); err != nil {
		return err
	}
	return s.qaRepo.Update(ctx, qa)
}

// Ensure questionnaireService implements QuestionnaireService
var _ QuestionnaireService = (*questionnaireService)(nil)
