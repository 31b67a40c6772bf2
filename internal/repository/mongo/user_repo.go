package mongo

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	// Basic validation, more robust validation belongs in the service layer
	if user.Email == "" || user.PasswordHash == "" || !user.Level.Valid() {
		return primitive.NilObjectID, errors.New("user email, password hash, and level are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		// Unique indexes on email and trainerCode
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return insertedID(result)
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByTrainerCode retrieves the trainer owning an invite code.
func (r *mongoUserRepository) GetByTrainerCode(ctx context.Context, code string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"trainerCode": code, "level": domain.LevelTrainer})
}

// SetTrainerLink sets the trainerId and pending flag of a student. A nil
// trainerID removes the link.
func (r *mongoUserRepository) SetTrainerLink(ctx context.Context, studentID primitive.ObjectID, trainerID *primitive.ObjectID, pending bool) error {
	filter := bson.M{"_id": studentID, "level": domain.LevelStudent}
	set := bson.M{
		"pendingTrainerApproval": pending,
		"updatedAt":              time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if trainerID != nil {
		set["trainerId"] = *trainerID
	} else {
		update["$unset"] = bson.M{"trainerId": ""}
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetTrainerCode replaces the invite code of a trainer.
func (r *mongoUserRepository) SetTrainerCode(ctx context.Context, trainerID primitive.ObjectID, code string) error {
	filter := bson.M{"_id": trainerID, "level": domain.LevelTrainer}
	update := bson.M{"$set": bson.M{"trainerCode": code, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func studentsOfTrainer(trainerID primitive.ObjectID, pending *bool) bson.M {
	filter := bson.M{"trainerId": trainerID, "level": domain.LevelStudent}
	if pending != nil {
		filter["pendingTrainerApproval"] = *pending
	}
	return filter
}

// ListStudentsByTrainer retrieves the students linked to a trainer, sorted by name.
func (r *mongoUserRepository) ListStudentsByTrainer(ctx context.Context, trainerID primitive.ObjectID, pending *bool) ([]domain.User, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return findAll[domain.User](ctx, r.collection, studentsOfTrainer(trainerID, pending), findOptions)
}

// CountStudentsByTrainer counts the students linked to a trainer.
func (r *mongoUserRepository) CountStudentsByTrainer(ctx context.Context, trainerID primitive.ObjectID, pending *bool) (int64, error) {
	return r.collection.CountDocuments(ctx, studentsOfTrainer(trainerID, pending))
}

// UpdatePresence mirrors the presence state on the user document.
func (r *mongoUserRepository) UpdatePresence(ctx context.Context, userID primitive.ObjectID, online bool, lastSeen time.Time) error {
	update := bson.M{"$set": bson.M{"isOnline": online, "lastSeen": lastSeen.UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateProfile changes the editable profile fields.
func (r *mongoUserRepository) UpdateProfile(ctx context.Context, userID primitive.ObjectID, name, avatarURL string) error {
	set := bson.M{"name": name, "updatedAt": time.Now().UTC()}
	if avatarURL != "" {
		set["avatarUrl"] = avatarURL
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountByLevel counts users per role level.
func (r *mongoUserRepository) CountByLevel(ctx context.Context) (map[domain.Level]int64, error) {
	raw, err := countBy(ctx, r.collection, bson.M{}, "level")
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.Level]int64, len(raw))
	for key, n := range raw {
		level, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		counts[domain.Level(level)] = n
	}
	return counts, nil
}

// CountPendingLinks counts students waiting for a trainer's approval.
func (r *mongoUserRepository) CountPendingLinks(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"level": domain.LevelStudent, "pendingTrainerApproval": true})
}

// EnsureUserIndexes creates necessary indexes for the users collection.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Only trainers carry a code
			Keys:    bson.D{{Key: "trainerCode", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "level", Value: 1}},
			Options: options.Index(),
		},
		{
			// Roster and capacity queries
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "level", Value: 1}, {Key: "pendingTrainerApproval", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
