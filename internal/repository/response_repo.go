package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

// MongoResponseRepository implements ResponseRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoResponseRepository struct {
	collection *mongo.Collection
}

// NewMongoResponseRepository creates a new MongoDB response repository
func NewMongoResponseRepository(db *mongo.Database) *MongoResponseRepository {
	return &MongoResponseRepository{
		collection: db.Collection(models.Response{}.CollectionName()),
	}
}

// responseDoc wraps a response with its owning questionnaire answer UUID
type responseDoc struct {
	QuestionnaireAnswerUUID string          `bson:"questionnaire_answer_uuid"`
	Response                models.Response `bson:",inline"`
}

// Upsert stores the current answer state for a question
// #IMPLEMENTATION_DECISION: Answers are superseded in place, never deleted
func (r *MongoResponseRepository) Upsert(ctx context.Context, questionnaireAnswerUUID string, response *models.Response) error {
	response.BeforeUpdate()
	if response.CreatedAt.IsZero() {
		response.CreatedAt = time.Now().UTC()
	}

	filter := bson.M{
		"questionnaire_answer_uuid": questionnaireAnswerUUID,
		"question_id":               response.QuestionID,
	}
	doc := responseDoc{
		QuestionnaireAnswerUUID: questionnaireAnswerUUID,
		Response:                *response,
	}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetByQuestion finds the persisted response for one question
func (r *MongoResponseRepository) GetByQuestion(ctx context.Context, questionnaireAnswerUUID, questionID string) (*models.Response, error) {
	var response models.Response
	filter := bson.M{
		"questionnaire_answer_uuid": questionnaireAnswerUUID,
		"question_id":               questionID,
	}
	err := r.collection.FindOne(ctx, filter).Decode(&response)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrResponseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListByQuestionnaire lists all persisted responses of a questionnaire
func (r *MongoResponseRepository) ListByQuestionnaire(ctx context.Context, questionnaireAnswerUUID string) ([]models.Response, error) {
	filter := bson.M{"questionnaire_answer_uuid": questionnaireAnswerUUID}
	findOpts := options.Find().SetSort(bson.D{{Key: "question_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var responses []models.Response
	if err := cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

// UpdateStatus updates the review status of one response
func (r *MongoResponseRepository) UpdateStatus(ctx context.Context, questionnaireAnswerUUID, questionID string, status models.AnswerStatus, reviewerNotes string) error {
	filter := bson.M{
		"questionnaire_answer_uuid": questionnaireAnswerUUID,
		"question_id":               questionID,
	}
	update := bson.M{"$set": bson.M{
		"answer_status":  status,
		"reviewer_notes": reviewerNotes,
		"updated_at":     time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrResponseNotFound
	}
	return nil
}
