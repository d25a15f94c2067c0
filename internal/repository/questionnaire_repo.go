package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

// MongoQuestionnaireAnswerRepository implements QuestionnaireAnswerRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoQuestionnaireAnswerRepository struct {
	collection *mongo.Collection
}

// NewMongoQuestionnaireAnswerRepository creates a new MongoDB questionnaire answer repository
func NewMongoQuestionnaireAnswerRepository(db *mongo.Database) *MongoQuestionnaireAnswerRepository {
	return &MongoQuestionnaireAnswerRepository{
		collection: db.Collection(models.QuestionnaireAnswer{}.CollectionName()),
	}
}

// Create creates a new questionnaire instance
func (r *MongoQuestionnaireAnswerRepository) Create(ctx context.Context, qa *models.QuestionnaireAnswer) error {
	qa.BeforeCreate()
	result, err := r.collection.InsertOne(ctx, qa)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		qa.ID = oid
	}
	return nil
}

// GetByUUID finds an instance by its backend UUID
func (r *MongoQuestionnaireAnswerRepository) GetByUUID(ctx context.Context, questionnaireAnswerUUID string) (*models.QuestionnaireAnswer, error) {
	var qa models.QuestionnaireAnswer
	filter := bson.M{"questionnaire_answer_uuid": questionnaireAnswerUUID}
	err := r.collection.FindOne(ctx, filter).Decode(&qa)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrQuestionnaireNotFound
	}
	if err != nil {
		return nil, err
	}
	return &qa, nil
}

// GetByMerchantAndType finds a merchant's instance for one SAQ type
// #BUSINESS_RULE: A merchant has at most one active instance per SAQ type
func (r *MongoQuestionnaireAnswerRepository) GetByMerchantAndType(ctx context.Context, merchantID primitive.ObjectID, qType models.QuestionnaireType) (*models.QuestionnaireAnswer, error) {
	var qa models.QuestionnaireAnswer
	filter := bson.M{
		"merchant_id":        merchantID,
		"questionnaire_type": qType,
		"status":             bson.M{"$ne": models.QuestionnaireStatusRemoved},
	}
	err := r.collection.FindOne(ctx, filter).Decode(&qa)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrQuestionnaireNotFound
	}
	if err != nil {
		return nil, err
	}
	return &qa, nil
}

// ListByMerchant lists a merchant's questionnaire instances
func (r *MongoQuestionnaireAnswerRepository) ListByMerchant(ctx context.Context, merchantID primitive.ObjectID) ([]models.QuestionnaireAnswer, error) {
	filter := bson.M{
		"merchant_id": merchantID,
		"status":      bson.M{"$ne": models.QuestionnaireStatusRemoved},
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "questionnaire_type", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var answers []models.QuestionnaireAnswer
	if err := cursor.All(ctx, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// ListByStatus lists instances in a given status, paginated
func (r *MongoQuestionnaireAnswerRepository) ListByStatus(ctx context.Context, status models.QuestionnaireStatus, opts PaginationOptions) (*PaginatedResult[models.QuestionnaireAnswer], error) {
	filter := bson.M{"status": status}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	skip := int64((opts.Page - 1) * opts.Limit)
	findOpts := options.Find().
		SetSort(bson.D{{Key: opts.SortBy, Value: opts.SortDir}}).
		SetSkip(skip).
		SetLimit(int64(opts.Limit))

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var answers []models.QuestionnaireAnswer
	if err := cursor.All(ctx, &answers); err != nil {
		return nil, err
	}

	totalPages := int(totalCount) / opts.Limit
	if int(totalCount)%opts.Limit > 0 {
		totalPages++
	}

	return &PaginatedResult[models.QuestionnaireAnswer]{
		Items:      answers,
		TotalCount: totalCount,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: totalPages,
	}, nil
}

// Update updates an instance
func (r *MongoQuestionnaireAnswerRepository) Update(ctx context.Context, qa *models.QuestionnaireAnswer) error {
	qa.BeforeUpdate()
	filter := bson.M{"questionnaire_answer_uuid": qa.QuestionnaireAnswerUUID}
	update := bson.M{"$set": qa}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrQuestionnaireNotFound
	}
	return nil
}
