// Package services provides business logic implementations.
package services

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
	"github.com/paysec-tools/saqadvisor_backend/internal/repository"
)

// AuditService handles audit logging
// #INTEGRATION_POINT: Used by all services for compliance logging
type AuditService interface {
	// Log creates an audit log entry
	Log(ctx context.Context, entry AuditEntry) error

	// LogAsync logs asynchronously (non-blocking)
	LogAsync(entry AuditEntry)

	// ListByResource lists audit logs for a resource
	ListByResource(ctx context.Context, resourceType, resourceID string, opts repository.PaginationOptions) (*repository.PaginatedResult[models.AuditLog], error)
}

// AuditEntry represents an audit log entry to be created
type AuditEntry struct {
	ActorEmail      string
	ActorMerchantID *primitive.ObjectID
	Action          models.AuditAction
	ResourceType    string
	ResourceID      string
	Description     string
	Changes         map[string]interface{}
	RequestID       string
}

// auditService implements AuditService
type auditService struct {
	auditRepo repository.AuditRepository
	logChan   chan AuditEntry
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	svc := &auditService{
		auditRepo: auditRepo,
		logChan:   make(chan AuditEntry, 1000), // Buffer for async logging
	}

	// Start async worker
	go svc.asyncWorker()

	return svc
}

// asyncWorker processes audit entries asynchronously
func (s *auditService) asyncWorker() {
	for entry := range s.logChan {
		ctx := context.Background()
		if err := s.Log(ctx, entry); err != nil {
			log.Printf("Failed to log audit entry: %v", err)
		}
	}
}

// Log creates an audit log entry
func (s *auditService) Log(ctx context.Context, entry AuditEntry) error {
	auditLog := &models.AuditLog{
		ActorEmail:      entry.ActorEmail,
		ActorMerchantID: entry.ActorMerchantID,
		Action:          entry.Action,
		ResourceType:    entry.ResourceType,
		ResourceID:      entry.ResourceID,
		Description:     entry.Description,
		Changes:         entry.Changes,
		RequestID:       entry.RequestID,
	}

	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

// LogAsync logs asynchronously (non-blocking)
func (s *auditService) LogAsync(entry AuditEntry) {
	select {
	case s.logChan <- entry:
		// Successfully queued
	default:
		// Channel full, log synchronously as fallback
		log.Printf("Audit log channel full, logging synchronously")
		ctx := context.Background()
		if err := s.Log(ctx, entry); err != nil {
			log.Printf("Failed to log audit entry: %v", err)
		}
	}
}

// ListByResource lists audit logs for a resource
func (s *auditService) ListByResource(ctx context.Context, resourceType, resourceID string, opts repository.PaginationOptions) (*repository.PaginatedResult[models.AuditLog], error) {
	return s.auditRepo.ListByResource(ctx, resourceType, resourceID, opts)
}

// AuditHelpers provides convenient methods for common audit operations
type AuditHelpers struct {
	service AuditService
}

// NewAuditHelpers creates audit helpers
func NewAuditHelpers(service AuditService) *AuditHelpers {
	return &AuditHelpers{service: service}
}

// LogAnswerPersisted logs a persisted answer
func (h *AuditHelpers) LogAnswerPersisted(email string, merchantID *primitive.ObjectID, questionnaireAnswerUUID, questionID, answerUUID, requestID string) {
	h.service.LogAsync(AuditEntry{
		ActorEmail:      email,
		ActorMerchantID: merchantID,
		Action:          models.AuditActionPersist,
		ResourceType:    models.ResourceTypeResponse,
		ResourceID:      questionnaireAnswerUUID,
		Description:     fmt.Sprintf("Persisted answer for question %s", questionID),
		Changes:         map[string]interface{}{"question_id": questionID, "answer_uuid": answerUUID},
		RequestID:       requestID,
	})
}

// LogSubmission logs a questionnaire submission
func (h *AuditHelpers) LogSubmission(email string, merchantID *primitive.ObjectID, questionnaireAnswerUUID string, qType models.QuestionnaireType, requestID string) {
	h.service.LogAsync(AuditEntry{
		ActorEmail:      email,
		ActorMerchantID: merchantID,
		Action:          models.AuditActionSubmit,
		ResourceType:    models.ResourceTypeQuestionnaire,
		ResourceID:      questionnaireAnswerUUID,
		Description:     fmt.Sprintf("Submitted %s for review", qType),
		RequestID:       requestID,
	})
}

// LogReview logs a reviewer decision on a questionnaire
func (h *AuditHelpers) LogReview(email, questionnaireAnswerUUID string, status models.QuestionnaireStatus, requestID string) {
	h.service.LogAsync(AuditEntry{
		ActorEmail:   email,
		Action:       models.AuditActionReview,
		ResourceType: models.ResourceTypeQuestionnaire,
		ResourceID:   questionnaireAnswerUUID,
		Description:  fmt.Sprintf("Review moved questionnaire to %s", status),
		RequestID:    requestID,
	})
}

// LogShare logs a collaborator being added
func (h *AuditHelpers) LogShare(email string, merchantID *primitive.ObjectID, questionnaireAnswerUUID, collaboratorEmail, role, requestID string) {
	h.service.LogAsync(AuditEntry{
		ActorEmail:      email,
		ActorMerchantID: merchantID,
		Action:          models.AuditActionShare,
		ResourceType:    models.ResourceTypeCollaborator,
		ResourceID:      questionnaireAnswerUUID,
		Description:     fmt.Sprintf("Shared questionnaire with %s as %s", collaboratorEmail, role),
		RequestID:       requestID,
	})
}

// LogRender logs a rendered document version
func (h *AuditHelpers) LogRender(questionnaireAnswerUUID, documentUUID string) {
	h.service.LogAsync(AuditEntry{
		Action:       models.AuditActionRender,
		ResourceType: models.ResourceTypeDocument,
		ResourceID:   questionnaireAnswerUUID,
		Description:  "Rendered questionnaire document",
		Changes:      map[string]interface{}{"document_uuid": documentUUID},
	})
}

// Ensure auditService implements AuditService
var _ AuditService = (*auditService)(nil)
