package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

// MongoAuditRepository implements AuditRepository for MongoDB
type MongoAuditRepository struct {
	collection *mongo.Collection
}

// NewMongoAuditRepository creates a new MongoDB audit repository
func NewMongoAuditRepository(db *mongo.Database) *MongoAuditRepository {
	return &MongoAuditRepository{
		collection: db.Collection(models.AuditLog{}.CollectionName()),
	}
}

// Create appends an audit log entry
// #BUSINESS_RULE: Audit entries are append-only; there is no update or delete
func (r *MongoAuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	entry.BeforeCreate()
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// ListByResource lists entries for one resource, newest first
func (r *MongoAuditRepository) ListByResource(ctx context.Context, resourceType, resourceID string, opts PaginationOptions) (*PaginatedResult[models.AuditLog], error) {
	filter := bson.M{
		"resource_type": resourceType,
		"resource_id":   resourceID,
	}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	skip := int64((opts.Page - 1) * opts.Limit)
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(opts.Limit))

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.AuditLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	totalPages := int(totalCount) / opts.Limit
	if int(totalCount)%opts.Limit > 0 {
		totalPages++
	}

	return &PaginatedResult[models.AuditLog]{
		Items:      entries,
		TotalCount: totalCount,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: totalPages,
	}, nil
}
