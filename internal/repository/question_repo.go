package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

// MongoQuestionRepository implements QuestionRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoQuestionRepository struct {
	collection *mongo.Collection
}

// NewMongoQuestionRepository creates a new MongoDB question repository
func NewMongoQuestionRepository(db *mongo.Database) *MongoQuestionRepository {
	return &MongoQuestionRepository{
		collection: db.Collection(models.Question{}.CollectionName()),
	}
}

// Create inserts a new question
func (r *MongoQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	question.BeforeCreate()
	_, err := r.collection.InsertOne(ctx, question)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrAlreadyExists
	}
	return err
}

// CreateMany inserts a batch of questions
func (r *MongoQuestionRepository) CreateMany(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	docs := make([]interface{}, len(questions))
	for i := range questions {
		questions[i].BeforeCreate()
		docs[i] = questions[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// GetByQuestionID finds a question by type and stable question ID
func (r *MongoQuestionRepository) GetByQuestionID(ctx context.Context, qType models.QuestionnaireType, questionID string) (*models.Question, error) {
	var question models.Question
	filter := bson.M{"questionnaire_type": qType, "question_id": questionID}
	err := r.collection.FindOne(ctx, filter).Decode(&question)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// ListByType lists a questionnaire's questions in template order
func (r *MongoQuestionRepository) ListByType(ctx context.Context, qType models.QuestionnaireType) ([]models.Question, error) {
	filter := bson.M{"questionnaire_type": qType}
	findOpts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []models.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// CountByType counts questions per questionnaire type
func (r *MongoQuestionRepository) CountByType(ctx context.Context, qType models.QuestionnaireType) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"questionnaire_type": qType})
}

// DeleteByType removes a questionnaire's question bank
func (r *MongoQuestionRepository) DeleteByType(ctx context.Context, qType models.QuestionnaireType) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"questionnaire_type": qType})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
