// Package handlers provides HTTP handlers for API endpoints.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paysec-tools/saqadvisor_backend/internal/middleware"
	"github.com/paysec-tools/saqadvisor_backend/internal/models"
	"github.com/paysec-tools/saqadvisor_backend/internal/services"
)

// TemplateHandler handles SAQ question bank endpoints
// #INTEGRATION_POINT: Frontends load question templates here; the banks are
// read-only outside of seeding
type TemplateHandler struct {
	templateService services.TemplateService
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateService services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// QuestionnaireTypeResponse describes one supported SAQ type
type QuestionnaireTypeResponse struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// BankStatsResponse maps SAQ types to their question counts
type BankStatsResponse struct {
	Counts map[models.QuestionnaireType]int64 `json:"counts"`
}

// ListTypes handles GET /api/v1/templates/types
// @Summary List SAQ types
// @Description Lists every supported questionnaire type
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Success 200 {array} QuestionnaireTypeResponse
// @Failure 401 {object} ErrorResponse
// @Router /templates/types [get]
func (h *TemplateHandler) ListTypes(c *gin.Context) {
	types := models.AllQuestionnaireTypes()
	items := make([]QuestionnaireTypeResponse, len(types))
	for i, qType := range types {
		items[i] = QuestionnaireTypeResponse{
			Type: string(qType),
			Name: services.DisplayName(qType),
		}
	}
	c.JSON(http.StatusOK, items)
}

// ListQuestions handles GET /api/v1/templates/:type/questions
// @Summary List template questions
// @Description Lists a questionnaire's questions in template order
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Param type path string true "Questionnaire type"
// @Success 200 {array} models.Question
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /templates/{type}/questions [get]
func (h *TemplateHandler) ListQuestions(c *gin.Context) {
	qType := models.QuestionnaireType(c.Param("type"))
	questions, err := h.templateService.ListQuestions(c.Request.Context(), qType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// GetQuestion handles GET /api/v1/templates/:type/questions/:question_id
// @Summary Get a template question
// @Description Gets one question by type and stable question ID
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Param type path string true "Questionnaire type"
// @Param question_id path string true "Question ID"
// @Success 200 {object} models.Question
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /templates/{type}/questions/{question_id} [get]
func (h *TemplateHandler) GetQuestion(c *gin.Context) {
	qType := models.QuestionnaireType(c.Param("type"))
	question, err := h.templateService.GetQuestion(c.Request.Context(), qType, c.Param("question_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// GetStats handles GET /api/v1/templates/stats
// @Summary Get question bank statistics
// @Description Returns the question count per SAQ type
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} BankStatsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /templates/stats [get]
func (h *TemplateHandler) GetStats(c *gin.Context) {
	stats, err := h.templateService.BankStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, BankStatsResponse{Counts: stats})
}

// RegisterRoutes registers template handler routes
func (h *TemplateHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	templates := rg.Group("/templates")
	templates.Use(authMiddleware)
	{
		templates.GET("/types", h.ListTypes)
		templates.GET("/stats", middleware.RequireAdmin(), h.GetStats)
		templates.GET("/:type/questions", h.ListQuestions)
		templates.GET("/:type/questions/:question_id", h.GetQuestion)
	}
}
