package database

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

// IndexManager handles MongoDB index creation and management
// #INDEX_IMPLEMENTATION: All indexes defined per data architecture plan
type IndexManager struct {
	db *mongo.Database
}

// NewIndexManager creates a new index manager
func NewIndexManager(db *mongo.Database) *IndexManager {
	return &IndexManager{db: db}
}

// CreateAllIndexes creates all indexes for all collections
// #MIGRATION_DECISION: Indexes created at application startup if they don't exist
func (m *IndexManager) CreateAllIndexes(ctx context.Context) error {
	log.Println("Creating MongoDB indexes...")

	if err := m.createQuestionIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create question indexes: %w", err)
	}

	if err := m.createResponseIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create response indexes: %w", err)
	}

	if err := m.createQuestionnaireAnswerIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create questionnaire answer indexes: %w", err)
	}

	if err := m.createAuditLogIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create audit log indexes: %w", err)
	}

	log.Println("All indexes created successfully")
	return nil
}

// createQuestionIndexes creates indexes for the saq_questions collection
// #INDEX_IMPLEMENTATION: Unique (type, question_id), type-ordered listing, UUID lookup
func (m *IndexManager) createQuestionIndexes(ctx context.Context) error {
	collection := m.db.Collection(models.Question{}.CollectionName())

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "questionnaire_type", Value: 1}, {Key: "question_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_type_question_unique"),
		},
		{
			Keys:    bson.D{{Key: "questionnaire_type", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index().SetName("idx_type_order"),
		},
		{
			Keys:    bson.D{{Key: "question_uuid", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_question_uuid_unique"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// createResponseIndexes creates indexes for the saq_responses collection
// #INDEX_IMPLEMENTATION: Unique answer per (questionnaire answer, question)
func (m *IndexManager) createResponseIndexes(ctx context.Context) error {
	collection := m.db.Collection(models.Response{}.CollectionName())

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "questionnaire_answer_uuid", Value: 1}, {Key: "question_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_questionnaire_question_unique"),
		},
		{
			Keys:    bson.D{{Key: "questionnaire_answer_uuid", Value: 1}, {Key: "answer_status", Value: 1}},
			Options: options.Index().SetName("idx_questionnaire_status"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// createQuestionnaireAnswerIndexes creates indexes for the saq_questionnaire_answers collection
// #INDEX_IMPLEMENTATION: UUID lookup, one active instance per merchant and type
func (m *IndexManager) createQuestionnaireAnswerIndexes(ctx context.Context) error {
	collection := m.db.Collection(models.QuestionnaireAnswer{}.CollectionName())

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "questionnaire_answer_uuid", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_answer_uuid_unique"),
		},
		{
			Keys:    bson.D{{Key: "merchant_id", Value: 1}, {Key: "questionnaire_type", Value: 1}},
			Options: options.Index().SetName("idx_merchant_type"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_status_created"),
		},
		{
			Keys:    bson.D{{Key: "roles.email", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("idx_roles_email_sparse"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// createAuditLogIndexes creates indexes for the saq_audit_logs collection
// #INDEX_IMPLEMENTATION: Multiple indexes for different audit query patterns
func (m *IndexManager) createAuditLogIndexes(ctx context.Context) error {
	collection := m.db.Collection(models.AuditLog{}.CollectionName())

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "resource_type", Value: 1}, {Key: "resource_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_resource_created"),
		},
		{
			Keys:    bson.D{{Key: "actor_merchant_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetSparse(true).SetName("idx_merchant_created"),
		},
		{
			Keys:    bson.D{{Key: "action", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_action_created"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// DropAllIndexes drops all custom indexes (not the _id index)
func (m *IndexManager) DropAllIndexes(ctx context.Context) error {
	collections := []string{
		models.Question{}.CollectionName(),
		models.Response{}.CollectionName(),
		models.QuestionnaireAnswer{}.CollectionName(),
		models.AuditLog{}.CollectionName(),
	}

	for _, collName := range collections {
		_, err := m.db.Collection(collName).Indexes().DropAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop indexes for %s: %w", collName, err)
		}
	}

	return nil
}

// GetIndexInfo returns information about indexes for a collection
func (m *IndexManager) GetIndexInfo(ctx context.Context, collectionName string) ([]bson.M, error) {
	collection := m.db.Collection(collectionName)

	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var indexes []bson.M
	if err := cursor.All(ctx, &indexes); err != nil {
		return nil, err
	}

	return indexes, nil
}
