package mongo

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	taskCollectionName       = "tasks"
	evaluationCollectionName = "evaluations"
)

// mongoTaskRepository implements repository.TaskRepository over two
// collections that share one document shape.
type mongoTaskRepository struct {
	tasks       *mongo.Collection
	evaluations *mongo.Collection
}

// NewMongoTaskRepository creates a repository for the task and evaluation queues.
func NewMongoTaskRepository(db *mongo.Database) repository.TaskRepository {
	return &mongoTaskRepository{
		tasks:       db.Collection(taskCollectionName),
		evaluations: db.Collection(evaluationCollectionName),
	}
}

func (r *mongoTaskRepository) collectionFor(kind domain.TaskKind) (*mongo.Collection, error) {
	switch kind {
	case domain.KindTask:
		return r.tasks, nil
	case domain.KindEvaluation:
		return r.evaluations, nil
	}
	return nil, fmt.Errorf("unknown task kind %q", kind)
}

// Create inserts a new request in the pending state.
func (r *mongoTaskRepository) Create(ctx context.Context, task *domain.Task) (primitive.ObjectID, error) {
	collection, err := r.collectionFor(task.Kind)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if task.StudentID == primitive.NilObjectID || task.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("task requires studentId and trainerId")
	}

	task.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = domain.TaskPending
	}

	result, err := collection.InsertOne(ctx, task)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(result)
}

// GetByID retrieves a task or evaluation by its ID.
func (r *mongoTaskRepository) GetByID(ctx context.Context, kind domain.TaskKind, id primitive.ObjectID) (*domain.Task, error) {
	collection, err := r.collectionFor(kind)
	if err != nil {
		return nil, err
	}
	var task domain.Task
	err = collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// Update writes the workflow fields, guarded by the expected current status.
func (r *mongoTaskRepository) Update(ctx context.Context, task *domain.Task, from domain.TaskStatus) error {
	collection, err := r.collectionFor(task.Kind)
	if err != nil {
		return err
	}
	if task.ID == primitive.NilObjectID {
		return errors.New("task ID is required for update")
	}

	task.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"status":    task.Status,
		"updatedAt": task.UpdatedAt,
	}
	if task.ScheduledAt != nil {
		set["scheduledAt"] = task.ScheduledAt.UTC()
	}
	if task.Results != nil {
		set["results"] = task.Results
	}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": task.ID, "status": from}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrUpdateFailed
	}
	return nil
}

func (r *mongoTaskRepository) list(ctx context.Context, kind domain.TaskKind, filter bson.M, status domain.TaskStatus) ([]domain.Task, error) {
	collection, err := r.collectionFor(kind)
	if err != nil {
		return nil, err
	}
	if status != "" {
		filter["status"] = status
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findAll[domain.Task](ctx, collection, filter, findOptions)
}

// ListByStudent returns a student's requests, newest first.
func (r *mongoTaskRepository) ListByStudent(ctx context.Context, kind domain.TaskKind, studentID primitive.ObjectID, status domain.TaskStatus) ([]domain.Task, error) {
	return r.list(ctx, kind, bson.M{"studentId": studentID}, status)
}

// ListByTrainer returns the requests a trainer must act on, newest first.
func (r *mongoTaskRepository) ListByTrainer(ctx context.Context, kind domain.TaskKind, trainerID primitive.ObjectID, status domain.TaskStatus) ([]domain.Task, error) {
	return r.list(ctx, kind, bson.M{"trainerId": trainerID}, status)
}

// CountByStatus counts requests of a kind per status.
func (r *mongoTaskRepository) CountByStatus(ctx context.Context, kind domain.TaskKind) (map[domain.TaskStatus]int64, error) {
	collection, err := r.collectionFor(kind)
	if err != nil {
		return nil, err
	}
	raw, err := countBy(ctx, collection, bson.M{}, "status")
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.TaskStatus]int64, len(raw))
	for key, n := range raw {
		counts[domain.TaskStatus(key)] = n
	}
	return counts, nil
}

// EnsureTaskIndexes creates indexes for the tasks and evaluations collections.
func EnsureTaskIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
