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

const dietCollectionName = "diets"

type mongoDietRepository struct {
	collection *mongo.Collection
}

// NewMongoDietRepository creates a new Diet repository.
func NewMongoDietRepository(db *mongo.Database) repository.DietRepository {
	return &mongoDietRepository{
		collection: db.Collection(dietCollectionName),
	}
}

func (r *mongoDietRepository) Create(ctx context.Context, diet *domain.Diet) (primitive.ObjectID, error) {
	if diet.TrainerID == primitive.NilObjectID || diet.StudentID == primitive.NilObjectID || diet.Title == "" {
		return primitive.NilObjectID, errors.New("diet requires trainerId, studentId, and title")
	}
	diet.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	diet.CreatedAt = now
	diet.UpdatedAt = now
	if diet.Status == "" {
		diet.Status = domain.PlanPending
	}

	result, err := r.collection.InsertOne(ctx, diet)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(result)
}

func (r *mongoDietRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Diet, error) {
	var diet domain.Diet
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&diet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &diet, nil
}

func (r *mongoDietRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Diet, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findAll[domain.Diet](ctx, r.collection, bson.M{"studentId": studentID}, findOptions)
}

func (r *mongoDietRepository) ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Diet, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findAll[domain.Diet](ctx, r.collection, bson.M{"trainerId": trainerID}, findOptions)
}

func (r *mongoDietRepository) MarkCompleted(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	filter := bson.M{"_id": id, "status": domain.PlanPending}
	update := bson.M{"$set": bson.M{"status": domain.PlanCompleted, "completedAt": at.UTC(), "updatedAt": at.UTC()}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrUpdateFailed
	}
	return nil
}

func (r *mongoDietRepository) Delete(ctx context.Context, id, trainerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "trainerId": trainerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureDietIndexes creates necessary indexes for the diets collection.
func EnsureDietIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
