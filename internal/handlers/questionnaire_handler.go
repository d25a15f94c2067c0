// Package handlers provides HTTP handlers for API endpoints.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/paysec-tools/saqadvisor_backend/internal/middleware"
	"github.com/paysec-tools/saqadvisor_backend/internal/models"
	"github.com/paysec-tools/saqadvisor_backend/internal/repository"
	"github.com/paysec-tools/saqadvisor_backend/internal/services"
)

// QuestionnaireHandler handles questionnaire instance endpoints
// #INTEGRATION_POINT: Merchant portal reads instance state and answers here
type QuestionnaireHandler struct {
	questionnaireService services.QuestionnaireService
	answerService        services.AnswerService
	renderService        services.RenderService
	auditService         services.AuditService
}

// NewQuestionnaireHandler creates a new questionnaire handler
func NewQuestionnaireHandler(
	questionnaireService services.QuestionnaireService,
	answerService services.AnswerService,
	renderService services.RenderService,
	auditService services.AuditService,
) *QuestionnaireHandler {
	return &QuestionnaireHandler{
		questionnaireService: questionnaireService,
		answerService:        answerService,
		renderService:        renderService,
		auditService:         auditService,
	}
}

// QuestionnaireInstanceResponse represents a questionnaire instance
type QuestionnaireInstanceResponse struct {
	QuestionnaireAnswerUUID string                  `json:"questionnaire_answer_uuid"`
	QuestionnaireType       string                  `json:"questionnaire_type"`
	Status                  string                  `json:"status"`
	Roles                   []services.Collaborator `json:"roles,omitempty"`
	DocumentUUID            string                  `json:"document_uuid,omitempty"`
	RenderedAt              *time.Time              `json:"rendered_at,omitempty"`
	CreatedAt               time.Time               `json:"created_at"`
	UpdatedAt               time.Time               `json:"updated_at"`
	SubmittedAt             *time.Time              `json:"submitted_at,omitempty"`
	ReviewedAt              *time.Time              `json:"reviewed_at,omitempty"`
}

// QuestionnaireDetailResponse bundles an instance with its persisted answers
type QuestionnaireDetailResponse struct {
	Questionnaire QuestionnaireInstanceResponse `json:"questionnaire"`
	Answers       []models.Response             `json:"answers"`
}

// PaginatedAuditResponse represents a page of audit log entries
type PaginatedAuditResponse struct {
	Items      []models.AuditLog `json:"items"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// ListQuestionnaires handles GET /api/v1/questionnaires
// @Summary List questionnaire instances
// @Description Lists the merchant's questionnaire instances
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Success 200 {array} QuestionnaireInstanceResponse
// @Failure 401 {object} ErrorResponse
// @Router /questionnaires [get]
func (h *QuestionnaireHandler) ListQuestionnaires(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	instances, err := h.questionnaireService.ListByMerchant(c.Request.Context(), merchantID)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]QuestionnaireInstanceResponse, 0, len(instances))
	for i := range instances {
		if instances[i].Status == models.QuestionnaireStatusRemoved {
			continue
		}
		items = append(items, toInstanceResponse(&instances[i]))
	}
	c.JSON(http.StatusOK, items)
}

// GetQuestionnaire handles GET /api/v1/questionnaires/:uuid
// @Summary Get a questionnaire instance
// @Description Gets one instance with its persisted answers
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Questionnaire answer UUID"
// @Success 200 {object} QuestionnaireDetailResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questionnaires/{uuid} [get]
func (h *QuestionnaireHandler) GetQuestionnaire(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	qa, err := h.questionnaireService.GetForActor(c.Request.Context(), c.Param("uuid"), merchantID, middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	answers, err := h.answerService.ListAnswers(c.Request.Context(), qa.QuestionnaireAnswerUUID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, QuestionnaireDetailResponse{
		Questionnaire: toInstanceResponse(qa),
		Answers:       answers,
	})
}

// GetDocument handles GET /api/v1/questionnaires/:uuid/document
// @Summary Get the rendered document
// @Description Gets the latest rendered document of a questionnaire
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Questionnaire answer UUID"
// @Success 200 {object} services.RenderedDocument
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questionnaires/{uuid}/document [get]
func (h *QuestionnaireHandler) GetDocument(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	qa, err := h.questionnaireService.GetForActor(c.Request.Context(), c.Param("uuid"), merchantID, middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	doc, err := h.renderService.GetLatest(qa.QuestionnaireAnswerUUID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// GetAuditTrail handles GET /api/v1/questionnaires/:uuid/audit
// @Summary Get the audit trail
// @Description Lists audit log entries for a questionnaire, newest first
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Questionnaire answer UUID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} PaginatedAuditResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questionnaires/{uuid}/audit [get]
func (h *QuestionnaireHandler) GetAuditTrail(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	qa, err := h.questionnaireService.GetForActor(c.Request.Context(), c.Param("uuid"), merchantID, middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	opts := repository.DefaultPaginationOptions()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		opts.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit <= 100 {
		opts.Limit = limit
	}

	result, err := h.auditService.ListByResource(c.Request.Context(), models.ResourceTypeQuestionnaire, qa.QuestionnaireAnswerUUID, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaginatedAuditResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// RegisterRoutes registers questionnaire handler routes
// #INTEGRATION_POINT: Routes require authentication and the merchant role
func (h *QuestionnaireHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	questionnaires := rg.Group("/questionnaires")
	questionnaires.Use(authMiddleware)
	questionnaires.Use(middleware.RequireMerchant())
	{
		questionnaires.GET("", h.ListQuestionnaires)
		questionnaires.GET("/:uuid", h.GetQuestionnaire)
		questionnaires.GET("/:uuid/document", h.GetDocument)
		questionnaires.GET("/:uuid/audit", h.GetAuditTrail)
	}
}

// toInstanceResponse converts a questionnaire instance to its API shape
func toInstanceResponse(qa *models.QuestionnaireAnswer) QuestionnaireInstanceResponse {
	resp := QuestionnaireInstanceResponse{
		QuestionnaireAnswerUUID: qa.QuestionnaireAnswerUUID,
		QuestionnaireType:       string(qa.QuestionnaireType),
		Status:                  string(qa.Status),
		DocumentUUID:            qa.DocumentUUID,
		RenderedAt:              qa.RenderedAt,
		CreatedAt:               qa.CreatedAt,
		UpdatedAt:               qa.UpdatedAt,
		SubmittedAt:             qa.SubmittedAt,
		ReviewedAt:              qa.ReviewedAt,
	}
	for _, ra := range qa.Roles {
		resp.Roles = append(resp.Roles, services.Collaborator{Email: ra.Email(), Role: ra.Role()})
	}
	return resp
}
