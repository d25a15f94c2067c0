// Package services provides business logic implementations.
package services

import (
	"context"
	"fmt"
	"log"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

// Mail template names registered with the mail API
const (
	TemplateCollaboratorInvitation = "saq-collaborator-invitation"
	TemplateInfoRequested          = "saq-info-requested"
	TemplateSubmissionReceived     = "saq-submission-received"
	TemplateReviewComplete         = "saq-review-complete"
)

// NotificationService composes and sends advisor email notifications
// #INTEGRATION_POINT: Thin layer over MailService; recipients come from the
// questionnaire's collaborator role assignments
type NotificationService interface {
	// SendInvitation invites a collaborator to a shared questionnaire
	SendInvitation(ctx context.Context, recipient, inviterEmail, role, invitationURL string, qType models.QuestionnaireType) error

	// NotifyInfoRequested tells collaborators a reviewer flagged an answer
	NotifyInfoRequested(ctx context.Context, qa *models.QuestionnaireAnswer, questionID, reviewerNotes string) error

	// NotifySubmissionReceived confirms a submission to its collaborators
	NotifySubmissionReceived(ctx context.Context, qa *models.QuestionnaireAnswer) error

	// NotifyReviewComplete tells collaborators their review finished
	NotifyReviewComplete(ctx context.Context, qa *models.QuestionnaireAnswer) error
}

// notificationService implements NotificationService
type notificationService struct {
	mail MailService
}

// NewNotificationService creates a new notification service
func NewNotificationService(mail MailService) NotificationService {
	return &notificationService{mail: mail}
}

// SendInvitation invites a collaborator to a shared questionnaire
func (s *notificationService) SendInvitation(ctx context.Context, recipient, inviterEmail, role, invitationURL string, qType models.QuestionnaireType) error {
	subject := fmt.Sprintf("You have been invited to collaborate on %s", DisplayName(qType))
	variables := map[string]interface{}{
		"inviter_email":      inviterEmail,
		"role":               role,
		"questionnaire_type": string(qType),
		"questionnaire_name": DisplayName(qType),
		"invitation_url":     invitationURL,
	}
	return s.mail.SendTemplate(ctx, recipient, TemplateCollaboratorInvitation, subject, variables)
}

// NotifyInfoRequested tells collaborators a reviewer flagged an answer
// #BUSINESS_RULE: Notification failure never rolls back the review decision
func (s *notificationService) NotifyInfoRequested(ctx context.Context, qa *models.QuestionnaireAnswer, questionID, reviewerNotes string) error {
	subject := fmt.Sprintf("Further details requested on your %s", DisplayName(qa.QuestionnaireType))
	variables := map[string]interface{}{
		"questionnaire_type": string(qa.QuestionnaireType),
		"questionnaire_name": DisplayName(qa.QuestionnaireType),
		"question_id":        questionID,
		"reviewer_notes":     reviewerNotes,
	}
	return s.broadcast(ctx, qa, TemplateInfoRequested, subject, variables)
}

// NotifySubmissionReceived confirms a submission to its collaborators
func (s *notificationService) NotifySubmissionReceived(ctx context.Context, qa *models.QuestionnaireAnswer) error {
	subject := fmt.Sprintf("Your %s has been submitted for review", DisplayName(qa.QuestionnaireType))
	variables := map[string]interface{}{
		"questionnaire_type": string(qa.QuestionnaireType),
		"questionnaire_name": DisplayName(qa.QuestionnaireType),
	}
	return s.broadcast(ctx, qa, TemplateSubmissionReceived, subject, variables)
}

// NotifyReviewComplete tells collaborators their review finished
func (s *notificationService) NotifyReviewComplete(ctx context.Context, qa *models.QuestionnaireAnswer) error {
	subject := fmt.Sprintf("Review of your %s is complete", DisplayName(qa.QuestionnaireType))
	variables := map[string]interface{}{
		"questionnaire_type": string(qa.QuestionnaireType),
		"questionnaire_name": DisplayName(qa.QuestionnaireType),
	}
	return s.broadcast(ctx, qa, TemplateReviewComplete, subject, variables)
}

// broadcast sends one template mail to every collaborator of a questionnaire.
// Individual delivery failures are logged and skipped so one bad address does
// not suppress the remaining notifications.
func (s *notificationService) broadcast(ctx context.Context, qa *models.QuestionnaireAnswer, template, subject string, variables map[string]interface{}) error {
	var lastErr error
	for _, ra := range qa.Roles {
		email := ra.Email()
		if email == "" {
			continue
		}
		if err := s.mail.SendTemplate(ctx, email, template, subject, variables); err != nil {
			log.Printf("[NOTIFY] Failed to send %s to %s: %v", template, email, err)
			lastErr = err
		}
	}
	return lastErr
}

// DisplayName returns the human-readable name of a SAQ type
func DisplayName(qType models.QuestionnaireType) string {
	switch qType {
	case models.QuestionnaireTypeSAQA:
		return "SAQ A"
	case models.QuestionnaireTypeSAQAEP:
		return "SAQ A-EP"
	case models.QuestionnaireTypeSAQB:
		return "SAQ B"
	case models.QuestionnaireTypeSAQBIP:
		return "SAQ B-IP"
	case models.QuestionnaireTypeSAQC:
		return "SAQ C"
	case models.QuestionnaireTypeSAQCVT:
		return "SAQ C-VT"
	case models.QuestionnaireTypeSAQD:
		return "SAQ D"
	case models.QuestionnaireTypeSAQP2PE:
		return "SAQ P2PE"
	}
	return string(qType)
}

// Ensure notificationService implements NotificationService
var _ NotificationService = (*notificationService)(nil)
