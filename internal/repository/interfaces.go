// Package repository defines interfaces for data access and their MongoDB implementations
// #ORM_PATTERN: Repository pattern with interfaces for testability and abstraction
package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

// PaginationOptions contains pagination parameters
type PaginationOptions struct {
	Page    int
	Limit   int
	SortBy  string
	SortDir int // 1 for ascending, -1 for descending
}

// DefaultPaginationOptions returns default pagination settings
// #DATA_ASSUMPTION: Pagination defaults to 20 items per page
func DefaultPaginationOptions() PaginationOptions {
	return PaginationOptions{
		Page:    1,
		Limit:   20,
		SortBy:  "created_at",
		SortDir: -1,
	}
}

// PaginatedResult contains paginated query results
type PaginatedResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// QuestionRepository defines operations for SAQ question banks
// #QUERY_INTERFACE: Question banks are read-mostly; writes happen via seeding
type QuestionRepository interface {
	// Create inserts a new question
	Create(ctx context.Context, question *models.Question) error

	// CreateMany inserts a batch of questions
	CreateMany(ctx context.Context, questions []models.Question) error

	// GetByQuestionID finds a question by type and stable question ID
	GetByQuestionID(ctx context.Context, qType models.QuestionnaireType, questionID string) (*models.Question, error)

	// ListByType lists a questionnaire's questions in template order
	ListByType(ctx context.Context, qType models.QuestionnaireType) ([]models.Question, error)

	// CountByType counts questions per questionnaire type
	CountByType(ctx context.Context, qType models.QuestionnaireType) (int64, error)

	// DeleteByType removes a questionnaire's question bank (re-seeding)
	DeleteByType(ctx context.Context, qType models.QuestionnaireType) (int64, error)
}

// ResponseRepository defines operations for persisted answers
// #QUERY_INTERFACE: One response document per (questionnaire answer, question)
type ResponseRepository interface {
	// Upsert stores the current answer state for a question
	Upsert(ctx context.Context, questionnaireAnswerUUID string, response *models.Response) error

	// GetByQuestion finds the persisted response for one question
	GetByQuestion(ctx context.Context, questionnaireAnswerUUID, questionID string) (*models.Response, error)

	// ListByQuestionnaire lists all persisted responses of a questionnaire
	ListByQuestionnaire(ctx context.Context, questionnaireAnswerUUID string) ([]models.Response, error)

	// UpdateStatus updates the review status of one response
	UpdateStatus(ctx context.Context, questionnaireAnswerUUID, questionID string, status models.AnswerStatus, reviewerNotes string) error
}

// QuestionnaireAnswerRepository defines operations for questionnaire instances
/// #QUERY_INTERFACE: Questionnaire instance metadata access patterns
type QuestionnaireAnswerRepository interface {
	// Create creates a new questionnaire instance
	Create(ctx context.Context, qa *models.QuestionnaireAnswer) error

	// GetByUUID finds an instance by its backend UUID
	GetByUUID(ctx context.Context, questionnaireAnswerUUID string) (*models.QuestionnaireAnswer, error)

	// GetByMerchantAndType finds a merchant's instance for one SAQ type
	GetByMerchantAndType(ctx context.Context, merchantID primitive.ObjectID, qType models.QuestionnaireType) (*models.QuestionnaireAnswer, error)

	// ListByMerchant lists a merchant's questionnaire instances
	ListByMerchant(ctx context.Context, merchantID primitive.ObjectID) ([]models.QuestionnaireAnswer, error)

	// ListByStatus lists instances in a given status, paginated
	ListByStatus(ctx context.Context, status models.QuestionnaireStatus, opts PaginationOptions) (*PaginatedResult[models.QuestionnaireAnswer], error)

	// Update updates an instance
	Update(ctx context.Context, qa *models.QuestionnaireAnswer) error
}

// AuditRepository defines operations for the append-only audit trail
// #QUERY_INTERFACE: Audit log access patterns
type AuditRepository interface {
	// Create appends an audit log entry
	Create(ctx context.Context, entry *models.AuditLog) error

	// ListByResource lists entries for one resource, newest first
	ListByResource(ctx context.Context, resourceType, resourceID string, opts PaginationOptions) (*PaginatedResult[models.AuditLog], error)
}
