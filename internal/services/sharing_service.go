// Package services provides business logic implementations.
package services

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/paysec-tools/saqadvisor_backend/internal/auth"
	"github.com/paysec-tools/saqadvisor_backend/internal/models"
	"github.com/paysec-tools/saqadvisor_backend/internal/repository"
)

// Collaborator is one email/role assignment of a shared questionnaire
type Collaborator struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SharingService manages questionnaire collaborator assignments
// #BUSINESS_RULE: Only the owning merchant (or an admin) may share; invited
// collaborators access the questionnaire via signed invitation tokens
type SharingService interface {
	// AddCollaborator assigns a role, issues an invitation and mails it
	AddCollaborator(ctx context.Context, actorEmail string, actorMerchantID primitive.ObjectID, questionnaireAnswerUUID, email, role, requestID string) (*Collaborator, error)

	// RemoveCollaborator drops a role assignment
	RemoveCollaborator(ctx context.Context, questionnaireAnswerUUID, email string) error

	// ListCollaborators lists the role assignments of a questionnaire
	ListCollaborators(ctx context.Context, questionnaireAnswerUUID string) ([]Collaborator, error)

	// AcceptInvitation validates an invitation token and returns the
	// questionnaire it grants access to
	AcceptInvitation(ctx context.Context, token string) (*models.QuestionnaireAnswer, *Collaborator, error)
}

// sharingService implements SharingService
type sharingService struct {
	qaRepo       repository.QuestionnaireAnswerRepository
	jwtService   auth.JWTService
	notification NotificationService
	audit        *AuditHelpers

	// invitationBaseURL is the frontend URL invitation links point at
	invitationBaseURL string
}

// NewSharingService creates a new sharing service
func NewSharingService(
	qaRepo repository.QuestionnaireAnswerRepository,
	jwtService auth.JWTService,
	notification NotificationService,
	audit *AuditHelpers,
	invitationBaseURL string,
) SharingService {
	return &sharingService{
		qaRepo:            qaRepo,
		jwtService:        jwtService,
		notification:      notification,
		audit:             audit,
		invitationBaseURL: invitationBaseURL,
	}
}

// AddCollaborator assigns a role, issues an invitation and mails it.
// Re-adding an existing collaborator updates the role and re-sends the
// invitation.
func (s *sharingService) AddCollaborator(ctx context.Context, actorEmail string, actorMerchantID primitive.ObjectID, questionnaireAnswerUUID, email, role, requestID string) (*Collaborator, error) {
	if questionnaireAnswerUUID == "" {
		return nil, models.ErrMissingQuestionnaireUUID
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, models.ErrInvalidEmail
	}
	if !models.IsValidCollaboratorRole(role) {
		return nil, models.ErrInvalidInput
	}

	qa, err := s.qaRepo.GetByUUID(ctx, questionnaireAnswerUUID)
	if err != nil {
		return nil, err
	}
	if qa.Status == models.QuestionnaireStatusRemoved {
		return nil, models.ErrQuestionnaireRemoved
	}

	qa.AddCollaborator(email, role)
	if err := s.qaRepo.Update(ctx, qa); err != nil {
		return nil, fmt.Errorf("failed to update questionnaire: %w", err)
	}

	token, err := s.jwtService.GenerateInvitationToken(questionnaireAnswerUUID, email, role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation token: %w", err)
	}
	invitationURL := fmt.Sprintf("%s/invitations/accept?token=%s", strings.TrimRight(s.invitationBaseURL, "/"), token)

	if s.notification != nil {
		if err := s.notification.SendInvitation(ctx, email, actorEmail, role, invitationURL, qa.QuestionnaireType); err != nil {
			log.Printf("[SHARING] Invitation mail failed for %s: %v", email, err)
		}
	}
	if s.audit != nil {
		s.audit.LogShare(actorEmail, &actorMerchantID, questionnaireAnswerUUID, email, role, requestID)
	}

	return &Collaborator{Email: email, Role: role}, nil
}

// RemoveCollaborator drops a role assignment
func (s *sharingService) RemoveCollaborator(ctx context.Context, questionnaireAnswerUUID, email string) error {
	if questionnaireAnswerUUID == "" {
		return models.ErrMissingQuestionnaireUUID
	}
	email = strings.ToLower(strings.TrimSpace(email))

	qa, err := s.qaRepo.GetByUUID(ctx, questionnaireAnswerUUID)
	if err != nil {
		return err
	}
	if !qa.RemoveCollaborator(email) {
		return models.ErrCollaboratorNotFound
	}
	return s.qaRepo.Update(ctx, qa)
}

// ListCollaborators lists the role assignments of a questionnaire
func (s *sharingService) ListCollaborators(ctx context.Context, questionnaireAnswerUUID string) ([]Collaborator, error) {
	if questionnaireAnswerUUID == "" {
		return nil, models.ErrMissingQuestionnaireUUID
	}
	qa, err := s.qaRepo.GetByUUID(ctx, questionnaireAnswerUUID)
	if err != nil {
		return nil, err
	}
	out := make([]Collaborator, 0, len(qa.Roles))
	for _, ra := range qa.Roles {
		out = append(out, Collaborator{Email: ra.Email(), Role: ra.Role()})
	}
	return out, nil
}

// AcceptInvitation validates an invitation token and returns the
// questionnaire it grants access to. The role assignment must still exist;
// a revoked collaborator's token is useless even before it expires.
func (s *sharingService) AcceptInvitation(ctx context.Context, token string) (*models.QuestionnaireAnswer, *Collaborator, error) {
	claims, err := s.jwtService.ValidateInvitationToken(token)
	if err != nil {
		return nil, nil, err
	}

	qa, err := s.qaRepo.GetByUUID(ctx, claims.QuestionnaireAnswerUUID)
	if err != nil {
		return nil, nil, err
	}
	role, ok := qa.RoleFor(claims.Email)
	if !ok {
		return nil, nil, models.ErrCollaboratorNotFound
	}
	return qa, &Collaborator{Email: claims.Email, Role: role}, nil
}

// Ensure sharingService implements SharingService
var _ SharingService = (*sharingService)(nil)
