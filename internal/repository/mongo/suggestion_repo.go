package mongo

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const suggestionCollectionName = "suggestions"

// mongoSuggestionRepository implements repository.SuggestionRepository
type mongoSuggestionRepository struct {
	collection *mongo.Collection
}

// NewMongoSuggestionRepository creates a new Suggestion repository backed by MongoDB.
func NewMongoSuggestionRepository(db *mongo.Database) repository.SuggestionRepository {
	return &mongoSuggestionRepository{
		collection: db.Collection(suggestionCollectionName),
	}
}

// Create inserts a new suggestion. Status defaults to pending.
func (r *mongoSuggestionRepository) Create(ctx context.Context, suggestion *domain.Suggestion) (primitive.ObjectID, error) {
	if suggestion.StudentID == primitive.NilObjectID || suggestion.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("suggestion requires studentId and trainerId")
	}

	suggestion.ID = primitive.NewObjectID()
	suggestion.CreatedAt = time.Now().UTC()
	if suggestion.Status == "" {
		suggestion.Status = domain.SuggestionPending
	}

	result, err := r.collection.InsertOne(ctx, suggestion)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(result)
}

// GetByID retrieves a suggestion by its ID.
func (r *mongoSuggestionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Suggestion, error) {
	var suggestion domain.Suggestion
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&suggestion)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &suggestion, nil
}

// UpdateStatus only matches a document still in the from status, so two
// concurrent answers cannot both succeed.
func (r *mongoSuggestionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, next domain.SuggestionStatus, at time.Time) error {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": next, "respondedAt": at.UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrUpdateFailed
	}
	return nil
}

func (r *mongoSuggestionRepository) list(ctx context.Context, filter bson.M, status domain.SuggestionStatus) ([]domain.Suggestion, error) {
	if status != "" {
		filter["status"] = status
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findAll[domain.Suggestion](ctx, r.collection, filter, findOptions)
}

// ListByStudent returns the suggestions addressed to a student, newest first.
func (r *mongoSuggestionRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID, status domain.SuggestionStatus) ([]domain.Suggestion, error) {
	return r.list(ctx, bson.M{"studentId": studentID}, status)
}

// ListByTrainer returns the suggestions sent by a trainer, newest first.
func (r *mongoSuggestionRepository) ListByTrainer(ctx context.Context, trainerID primitive.ObjectID, status domain.SuggestionStatus) ([]domain.Suggestion, error) {
	return r.list(ctx, bson.M{"trainerId": trainerID}, status)
}

// CountByStatus counts suggestions per status for dashboards.
func (r *mongoSuggestionRepository) CountByStatus(ctx context.Context) (map[domain.SuggestionStatus]int64, error) {
	raw, err := countBy(ctx, r.collection, bson.M{}, "status")
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.SuggestionStatus]int64, len(raw))
	for key, n := range raw {
		counts[domain.SuggestionStatus(key)] = n
	}
	return counts, nil
}

// EnsureSuggestionIndexes creates necessary indexes for the suggestions collection.
func EnsureSuggestionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
