// Package handlers provides HTTP handlers for API endpoints.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paysec-tools/saqadvisor_backend/internal/middleware"
	"github.com/paysec-tools/saqadvisor_backend/internal/models"
	"github.com/paysec-tools/saqadvisor_backend/internal/services"
)

// AdvisorHandler handles the advisor wizard endpoints
// #INTEGRATION_POINT: Merchant portal drives the four-step SAQ flow through
// these endpoints
type AdvisorHandler struct {
	advisorService services.AdvisorService
}

// NewAdvisorHandler creates a new advisor handler
func NewAdvisorHandler(advisorService services.AdvisorService) *AdvisorHandler {
	return &AdvisorHandler{advisorService: advisorService}
}

// DecisionRequest represents the decision-step answers
type DecisionRequest struct {
	Channels          []string `json:"channels" binding:"required"`
	StoresAccountData bool     `json:"stores_account_data"`
}

// DecisionResponse lists the SAQ types the decision answers imply
type DecisionResponse struct {
	Applicable []models.QuestionnaireType `json:"applicable"`
}

// ToggleTypeResponse reports the new selection state of a SAQ type
type ToggleTypeResponse struct {
	Type     models.QuestionnaireType `json:"type"`
	Selected bool                     `json:"selected"`
}

// AmendmentRequest represents one business-detail correction
type AmendmentRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// AnswerRequest represents an answer value update
type AnswerRequest struct {
	Value interface{} `json:"value"`
}

// ToggleValueRequest represents an enum option toggle
type ToggleValueRequest struct {
	Value string `json:"value" binding:"required"`
}

// NotesRequest represents a supplemental notes update
type NotesRequest struct {
	Notes string `json:"notes"`
}

// WorksheetFieldRequest represents one appendix worksheet field edit
type WorksheetFieldRequest struct {
	Letter   string `json:"letter" binding:"required"`
	FieldKey string `json:"field_key" binding:"required"`
	Value    string `json:"value"`
}

// JumpRequest represents a navigation jump target
type JumpRequest struct {
	Target int `json:"target"`
}

// CursorResponse reports the question cursor after navigation
type CursorResponse struct {
	Position int `json:"position"`
}

// StepResponse reports the current wizard section
type StepResponse struct {
	Step string `json:"step"`
}

// AttestRequest represents the attestation signatory
type AttestRequest struct {
	SignatoryName string `json:"signatory_name" binding:"required"`
	SignatoryRole string `json:"signatory_role"`
}

// StartSession handles POST /api/v1/advisor/session
// @Summary Start advisor session
// @Description Opens or resumes the merchant's advisor session
// @Tags Advisor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.SessionState
// @Failure 401 {object} ErrorResponse
// @Router /advisor/session [post]
func (h *AdvisorHandler) StartSession(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	state, err := h.advisorService.StartSession(c.Request.Context(), merchantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// CloseSession handles DELETE /api/v1/advisor/session
// @Summary Close advisor session
// @Description Tears the merchant's advisor session down
// @Tags Advisor
// @Produce json
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Router /advisor/session [delete]
func (h *AdvisorHandler) CloseSession(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	h.advisorService.CloseSession(merchantID)
	c.Status(http.StatusNoContent)
}

// SelectChannels handles POST /api/v1/advisor/decision
// @Summary Record decision answers
// @Description Records payment channels and returns applicable SAQ types
// @Tags Advisor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DecisionRequest true "Decision answers"
// @Success 200 {object} DecisionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /advisor/decision [post]
func (h *AdvisorHandler) SelectChannels(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Channels are required",
		})
		return
	}

	applicable, err := h.advisorService.SelectChannels(c.Request.Context(), merchantID, req.Channels, req.StoresAccountData)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DecisionResponse{Applicable: applicable})
}

// ToggleType handles POST /api/v1/advisor/types/:type/toggle
// @Summary Toggle SAQ type selection
// @Description Flips the opt-out state of one applicable SAQ type
// @Tags Advisor
// @Produce json
// @Security BearerAuth
// @Param type path string true "Questionnaire type"
// @Success 200 {object} ToggleTypeResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /advisor/types/{type}/toggle [post]
func (h *AdvisorHandler) ToggleType(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	qType := models.QuestionnaireType(c.Param("type"))
	selected, err := h.advisorService.ToggleType(c.Request.Context(), merchantID, qType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToggleTypeResponse{Type: qType, Selected: selected})
}

// SetAmendment handles POST /api/v1/advisor/amendments
// @Summary Record a business-detail amendment
// @Description Records one merchant business-detail correction
// @Tags Advisor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AmendmentRequest true "Amendment field"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /advisor/amendments [post]
func (h *AdvisorHandler) SetAmendment(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	var req AmendmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Field is required",
		})
		return
	}

	if err := h.advisorService.SetAmendment(merchantID, req.Field, req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Amendment recorded"})
}

// ConfirmAmendments handles POST /api/v1/advisor/amendments/confirm
// @Summary Confirm amendments
// @Description Marks the amendment section as reviewed
// @Tags Advisor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Router /advisor/amendments/confirm [post]
func (h *AdvisorHandler) ConfirmAmendments(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	if err := h.advisorService.ConfirmAmendments(merchantID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Amendments confirmed"})
}

// ListQuestions handles GET /api/v1/advisor/questionnaires/:type/questions
// @Summary List visible questions
// @Description Lists the filtered question list for one SAQ type
// @Tags Advisor
// @Produce json
// @Security BearerAuth
// @Param type path string true "Questionnaire type"
// @Success 200 {array} models.Question
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /advisor/questionnaires/{type}/questions [get]
func (h *AdvisorHandler) ListQuestions(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	qType := models.QuestionnaireType(c.Param("type"))
	questions, err := h.advisorService.VisibleQuestions(merchantID, qType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// SetAnswer handles PUT /api/v1/advisor/questionnaires/:type/questions/:question_id/answer
// @Summary Set an answer value
// @Description Merges a new answer value into the session state
// @Tags Advisor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type path string true "Questionnaire type"
// @Param question_id path string true "Question ID"
// @Param request body AnswerRequest true "Answer value"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /advisor/questionnaires/{type}/questions/{question_id}/answer [put]
func (h *AdvisorHandler) SetAnswer(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	qType := models.QuestionnaireType(c.Param("type"))
	if err := h.advisorService.SetAnswer(merchantID, qType, c.Param("question_id"), req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Answer updated"})
}

// ToggleEnumValue handles POST /api/v1/advisor/questionnaires/:type/questions/:question_id/toggle
// @Summary Toggle an enum answer option
// @Description Selecting the already-selected option clears the value
// @Tags Advisor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type path string true "Questionnaire type"
// @Param question_id path string true "Question ID"
// @Param request body ToggleValueRequest true "Option value"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /advisor/questionnaires/{type}/questions/{question_id}/toggle [post]
func (h *AdvisorHandler) ToggleEnumValue(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	var req ToggleValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Value is required",
		})
		return
	}

	qType := models.QuestionnaireType(c.Param("type"))
	if err := h.advisorService.ToggleEnumValue(merchantID, qType, c.Param("question_id"), req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Answer updated"})
}

// SetNotes handles PUT /api/v1/advisor/questionnaires/:type/questions/:question_id/notes
// @Summary Set supplemental notes
// @Description Merges new supplemental notes into the session state
// @Tags Advisor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type path string true "Questionnaire type"
// @Param question_id path string true "Question ID"
// @Param request body NotesRequest true "Notes"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /advisor/questionnaires/{type}/questions/{question_id}/notes [put]
func (h *AdvisorHandler) SetNotes(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	var req NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	qType := models.QuestionnaireType(c.Param("type"))
	if err := h.advisorService.SetNotes(merchantID, qType, c.Param("question_id"), req.Notes); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Notes updated"})
}

// UpdateWorksheetField handles PUT /api/v1/advisor/questionnaires/:type/questions/:question_id/worksheet
// @Summary Edit an appendix worksheet field
// @Description Edits one field of the worksheet attached to an answer value
// @Tags Advisor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type path string true "Questionnaire type"
// @Param question_id path string true "Question ID"
// @Param request body WorksheetFieldRequest true "Worksheet field"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /advisor/questionnaires/{type}/questions/{question_id}/worksheet [put]
func (h *AdvisorHandler) UpdateWorksheetField(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	var req WorksheetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Letter and field key are required",
		})
		return
	}

	qType := models.QuestionnaireType(c.Param("type"))
	if err := h.advisorService.UpdateWorksheetField(merchantID, qType, c.Param("question_id"), req.Letter, req.FieldKey, req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Worksheet updated"})
}

// AdvanceQuestion handles POST /api/v1/advisor/questionnaires/:type/next
// @Summary Advance to the next question
// @Description Reconciles the current answer and moves the cursor forward
// @Tags Advisor
// @Produce json
// @Security BearerAuth
// @Param type path string true "Questionnaire type"
// @Success 200 {object} CursorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /advisor/questionnaires/{type}/next [post]
func (h *AdvisorHandler) AdvanceQuestion(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	qType := models.QuestionnaireType(c.Param("type"))
	pos, err := h.advisorService.AdvanceQuestion(c.Request.Context(), merchantID, qType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CursorResponse{Position: pos})
}

// JumpToQuestion handles POST /api/v1/advisor/questionnaires/:type/jump
// @Summary Jump to a question
// @Description Reconciles the current answer and jumps to a visible index
// @Tags Advisor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type path string true "Questionnaire type"
// @Param request body JumpRequest true "Target index"
// @Success 200 {object} CursorResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /advisor/questionnaires/{type}/jump [post]
func (h *AdvisorHandler) JumpToQuestion(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	var req JumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	qType := models.QuestionnaireType(c.Param("type"))
	pos, err := h.advisorService.JumpToQuestion(c.Request.Context(), merchantID, qType, req.Target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CursorResponse{Position: pos})
}

// GetProgress handles GET /api/v1/advisor/questionnaires/:type/progress
// @Summary Get section progress
// @Description Computes three-section completion for one SAQ type
// @Tags Advisor
// @Produce json
// @Security BearerAuth
// @Param type path string true "Questionnaire type"
// @Success 200 {object} saq.Progress
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /advisor/questionnaires/{type}/progress [get]
func (h *AdvisorHandler) GetProgress(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	qType := models.QuestionnaireType(c.Param("type"))
	progress, err := h.advisorService.Progress(merchantID, qType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// AdvanceStep handles POST /api/v1/advisor/step/advance
// @Summary Advance the wizard step
// @Description Moves to the next wizard section once the current one is complete
// @Tags Advisor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} StepResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /advisor/step/advance [post]
func (h *AdvisorHandler) AdvanceStep(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	step, err := h.advisorService.AdvanceStep(merchantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StepResponse{Step: string(step)})
}

// Attest handles POST /api/v1/advisor/attest
// @Summary Record the attestation
// @Description Records the signatory and completes the attestation section
// @Tags Advisor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AttestRequest true "Signatory"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /advisor/attest [post]
func (h *AdvisorHandler) Attest(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	var req AttestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Signatory name is required",
		})
		return
	}

	if err := h.advisorService.Attest(merchantID, req.SignatoryName, req.SignatoryRole); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Attestation recorded"})
}

// Submit handles POST /api/v1/advisor/submit
// @Summary Submit the selected questionnaires
// @Description Reconciles all answers and submits every selected SAQ for review
// @Tags Advisor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /advisor/submit [post]
func (h *AdvisorHandler) Submit(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	email := middleware.GetEmail(c)
	requestID := middleware.GetRequestID(c)

	if err := h.advisorService.Submit(c.Request.Context(), merchantID, email, requestID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Questionnaires submitted for review"})
}

// RegisterRoutes registers advisor handler routes
// #INTEGRATION_POINT: Routes require authentication and the merchant role
func (h *AdvisorHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	advisor := rg.Group("/advisor")
	advisor.Use(authMiddleware)
	advisor.Use(middleware.RequireMerchant())
	{
		advisor.POST("/session", h.StartSession)
		advisor.DELETE("/session", h.CloseSession)
		advisor.POST("/decision", h.SelectChannels)
		advisor.POST("/types/:type/toggle", h.ToggleType)
		advisor.POST("/amendments", h.SetAmendment)
		advisor.POST("/amendments/confirm", h.ConfirmAmendments)
		advisor.GET("/questionnaires/:type/questions", h.ListQuestions)
		advisor.PUT("/questionnaires/:type/questions/:question_id/answer", h.SetAnswer)
		advisor.POST("/questionnaires/:type/questions/:question_id/toggle", h.ToggleEnumValue)
		advisor.PUT("/questionnaires/:type/questions/:question_id/notes", h.SetNotes)
		advisor.PUT("/questionnaires/:type/questions/:question_id/worksheet", h.UpdateWorksheetField)
		advisor.POST("/questionnaires/:type/next", h.AdvanceQuestion)
		advisor.POST("/questionnaires/:type/jump", h.JumpToQuestion)
		advisor.GET("/questionnaires/:type/progress", h.GetProgress)
		advisor.POST("/step/advance", h.AdvanceStep)
		advisor.POST("/attest", h.Attest)
		advisor.POST("/submit", h.Submit)
	}
}
