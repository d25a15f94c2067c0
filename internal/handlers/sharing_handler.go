// Package handlers provides HTTP handlers for API endpoints.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paysec-tools/saqadvisor_backend/internal/middleware"
	"github.com/paysec-tools/saqadvisor_backend/internal/services"
)

// SharingHandler handles collaborator sharing endpoints
// #INTEGRATION_POINT: Merchant portal shares questionnaires with coworkers
type SharingHandler struct {
	sharingService       services.SharingService
	questionnaireService services.QuestionnaireService
}

// NewSharingHandler creates a new sharing handler
func NewSharingHandler(sharingService services.SharingService, questionnaireService services.QuestionnaireService) *SharingHandler {
	return &SharingHandler{
		sharingService:       sharingService,
		questionnaireService: questionnaireService,
	}
}

// AddCollaboratorRequest represents a collaborator assignment
type AddCollaboratorRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

// AcceptInvitationRequest carries a signed invitation token
type AcceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}

// AcceptInvitationResponse reports the questionnaire the invitation grants
type AcceptInvitationResponse struct {
	QuestionnaireAnswerUUID string `json:"questionnaire_answer_uuid"`
	QuestionnaireType       string `json:"questionnaire_type"`
	Email                   string `json:"email"`
	Role                    string `json:"role"`
}

// AddCollaborator handles POST /api/v1/questionnaires/:uuid/collaborators
// @Summary Add a collaborator
// @Description Assigns a role and emails a signed invitation link
// @Tags Sharing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Questionnaire answer UUID"
// @Param request body AddCollaboratorRequest true "Collaborator"
// @Success 201 {object} services.Collaborator
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questionnaires/{uuid}/collaborators [post]
func (h *SharingHandler) AddCollaborator(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	var req AddCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Email and role are required",
		})
		return
	}

	// Only the owning merchant may share
	if _, err := h.questionnaireService.GetForActor(c.Request.Context(), c.Param("uuid"), merchantID, middleware.GetEmail(c)); err != nil {
		respondError(c, err)
		return
	}

	collaborator, err := h.sharingService.AddCollaborator(c.Request.Context(), middleware.GetEmail(c),
		merchantID, c.Param("uuid"), req.Email, req.Role, middleware.GetRequestID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, collaborator)
}

// ListCollaborators handles GET /api/v1/questionnaires/:uuid/collaborators
// @Summary List collaborators
// @Description Lists the role assignments of a questionnaire
// @Tags Sharing
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Questionnaire answer UUID"
// @Success 200 {array} services.Collaborator
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questionnaires/{uuid}/collaborators [get]
func (h *SharingHandler) ListCollaborators(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	if _, err := h.questionnaireService.GetForActor(c.Request.Context(), c.Param("uuid"), merchantID, middleware.GetEmail(c)); err != nil {
		respondError(c, err)
		return
	}

	collaborators, err := h.sharingService.ListCollaborators(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, collaborators)
}

// RemoveCollaborator handles DELETE /api/v1/questionnaires/:uuid/collaborators/:email
// @Summary Remove a collaborator
// @Description Drops a role assignment, invalidating outstanding invitations
// @Tags Sharing
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Questionnaire answer UUID"
// @Param email path string true "Collaborator email"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questionnaires/{uuid}/collaborators/{email} [delete]
func (h *SharingHandler) RemoveCollaborator(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	if _, err := h.questionnaireService.GetForActor(c.Request.Context(), c.Param("uuid"), merchantID, middleware.GetEmail(c)); err != nil {
		respondError(c, err)
		return
	}

	if err := h.sharingService.RemoveCollaborator(c.Request.Context(), c.Param("uuid"), c.Param("email")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AcceptInvitation handles POST /api/v1/invitations/accept
// @Summary Accept an invitation
// @Description Validates an invitation token and returns the granted access
// @Tags Sharing
// @Accept json
// @Produce json
// @Param request body AcceptInvitationRequest true "Invitation token"
// @Success 200 {object} AcceptInvitationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /invitations/accept [post]
func (h *SharingHandler) AcceptInvitation(c *gin.Context) {
	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Token is required",
		})
		return
	}

	qa, collaborator, err := h.sharingService.AcceptInvitation(c.Request.Context(), req.Token)
	if err != nil {
		// Token validation errors are authentication failures, not 500s
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_invitation",
			Message: "Invitation is invalid, expired or revoked",
		})
		return
	}

	c.JSON(http.StatusOK, AcceptInvitationResponse{
		QuestionnaireAnswerUUID: qa.QuestionnaireAnswerUUID,
		QuestionnaireType:       string(qa.QuestionnaireType),
		Email:                   collaborator.Email,
		Role:                    collaborator.Role,
	})
}

// RegisterRoutes registers sharing handler routes
// #INTEGRATION_POINT: Invitation acceptance is unauthenticated; the signed
// token is the credential
func (h *SharingHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	collaborators := rg.Group("/questionnaires/:uuid/collaborators")
	collaborators.Use(authMiddleware)
	collaborators.Use(middleware.RequireMerchant())
	{
		collaborators.POST("", h.AddCollaborator)
		collaborators.GET("", h.ListCollaborators)
		collaborators.DELETE("/:email", h.RemoveCollaborator)
	}

	rg.POST("/invitations/accept", h.AcceptInvitation)
}
