// Package handlers provides HTTP handlers for API endpoints.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/paysec-tools/saqadvisor_backend/internal/middleware"
	"github.com/paysec-tools/saqadvisor_backend/internal/models"
	"github.com/paysec-tools/saqadvisor_backend/internal/repository"
	"github.com/paysec-tools/saqadvisor_backend/internal/services"
)

// ReviewHandler handles the reviewer-facing endpoints
// #INTEGRATION_POINT: Review portal works submitted questionnaires here
type ReviewHandler struct {
	reviewService services.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// FlagAnswerRequest carries the reviewer's clarification request
type FlagAnswerRequest struct {
	ReviewerNotes string `json:"reviewer_notes" binding:"required"`
}

// PaginatedSubmissionsResponse represents a page of submitted questionnaires
type PaginatedSubmissionsResponse struct {
	Items      []QuestionnaireInstanceResponse `json:"items"`
	TotalCount int64                           `json:"total_count"`
	Page       int                             `json:"page"`
	Limit      int                             `json:"limit"`
	TotalPages int                             `json:"total_pages"`
}

// SubmissionDetailResponse bundles a submission with its answers
type SubmissionDetailResponse struct {
	Questionnaire QuestionnaireInstanceResponse `json:"questionnaire"`
	Answers       []models.Response             `json:"answers"`
}

// ListSubmissions handles GET /api/v1/review/submissions
// @Summary List submitted questionnaires
// @Description Lists questionnaires awaiting review, paginated
// @Tags Review
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} PaginatedSubmissionsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /review/submissions [get]
func (h *ReviewHandler) ListSubmissions(c *gin.Context) {
	opts := repository.DefaultPaginationOptions()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		opts.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit <= 100 {
		opts.Limit = limit
	}

	result, err := h.reviewService.ListSubmitted(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]QuestionnaireInstanceResponse, len(result.Items))
	for i := range result.Items {
		items[i] = toInstanceResponse(&result.Items[i])
	}

	c.JSON(http.StatusOK, PaginatedSubmissionsResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// GetSubmission handles GET /api/v1/review/submissions/:uuid
// @Summary Get a submission
// @Description Gets one submitted questionnaire with its answers
// @Tags Review
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Questionnaire answer UUID"
// @Success 200 {object} SubmissionDetailResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /review/submissions/{uuid} [get]
func (h *ReviewHandler) GetSubmission(c *gin.Context) {
	qa, answers, err := h.reviewService.GetSubmission(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SubmissionDetailResponse{
		Questionnaire: toInstanceResponse(qa),
		Answers:       answers,
	})
}

// FlagAnswer handles POST /api/v1/review/submissions/:uuid/answers/:question_id/flag
// @Summary Flag an answer
// @Description Marks an answer as requiring further merchant details
// @Tags Review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Questionnaire answer UUID"
// @Param question_id path string true "Question ID"
// @Param request body FlagAnswerRequest true "Reviewer notes"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /review/submissions/{uuid}/answers/{question_id}/flag [post]
func (h *ReviewHandler) FlagAnswer(c *gin.Context) {
	var req FlagAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Reviewer notes are required",
		})
		return
	}

	err := h.reviewService.FlagAnswer(c.Request.Context(), middleware.GetEmail(c),
		c.Param("uuid"), c.Param("question_id"), req.ReviewerNotes, middleware.GetRequestID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Answer flagged for further details"})
}

// AcceptAnswer handles POST /api/v1/review/submissions/:uuid/answers/:question_id/accept
// @Summary Accept an answer
// @Description Marks an answer as valid
// @Tags Review
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Questionnaire answer UUID"
// @Param question_id path string true "Question ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /review/submissions/{uuid}/answers/{question_id}/accept [post]
func (h *ReviewHandler) AcceptAnswer(c *gin.Context) {
	err := h.reviewService.AcceptAnswer(c.Request.Context(), middleware.GetEmail(c),
		c.Param("uuid"), c.Param("question_id"), middleware.GetRequestID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Answer accepted"})
}

// CompleteReview handles POST /api/v1/review/submissions/:uuid/complete
// @Summary Complete a review
// @Description Closes the review and notifies collaborators
// @Tags Review
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Questionnaire answer UUID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /review/submissions/{uuid}/complete [post]
func (h *ReviewHandler) CompleteReview(c *gin.Context) {
	err := h.reviewService.CompleteReview(c.Request.Context(), middleware.GetEmail(c),
		c.Param("uuid"), middleware.GetRequestID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Review completed"})
}

// RegisterRoutes registers review handler routes
// #INTEGRATION_POINT: Routes require authentication and the reviewer role
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	review := rg.Group("/review")
	review.Use(authMiddleware)
	review.Use(middleware.RequireReviewer())
	{
		review.GET("/submissions", h.ListSubmissions)
		review.GET("/submissions/:uuid", h.GetSubmission)
		review.POST("/submissions/:uuid/answers/:question_id/flag", h.FlagAnswer)
		review.POST("/submissions/:uuid/answers/:question_id/accept", h.AcceptAnswer)
		review.POST("/submissions/:uuid/complete", h.CompleteReview)
	}
}
