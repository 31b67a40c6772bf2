package repository

import (
	"alcyxob/fitcoach/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for the account directory.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByTrainerCode(ctx context.Context, code string) (*domain.User, error)
	// SetTrainerLink sets (or clears, when trainerID is nil) the student's trainer and pending flag.
	SetTrainerLink(ctx context.Context, studentID primitive.ObjectID, trainerID *primitive.ObjectID, pending bool) error
	SetTrainerCode(ctx context.Context, trainerID primitive.ObjectID, code string) error
	// ListStudentsByTrainer returns students linked to trainerID; pending filters on the
	// approval flag when non-nil.
	ListStudentsByTrainer(ctx context.Context, trainerID primitive.ObjectID, pending *bool) ([]domain.User, error)
	// CountStudentsByTrainer counts students linked to trainerID; pending filters as above.
	CountStudentsByTrainer(ctx context.Context, trainerID primitive.ObjectID, pending *bool) (int64, error)
	UpdatePresence(ctx context.Context, userID primitive.ObjectID, online bool, lastSeen time.Time) error
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, name, avatarURL string) error
	CountByLevel(ctx context.Context) (map[domain.Level]int64, error)
	CountPendingLinks(ctx context.Context) (int64, error)
}

// SuggestionRepository defines persistence for suggestions.
type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *domain.Suggestion) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Suggestion, error)
	// UpdateStatus moves a suggestion to next only if it is currently in from.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, next domain.SuggestionStatus, at time.Time) error
	ListByStudent(ctx context.Context, studentID primitive.ObjectID, status domain.SuggestionStatus) ([]domain.Suggestion, error)
	ListByTrainer(ctx context.Context, trainerID primitive.ObjectID, status domain.SuggestionStatus) ([]domain.Suggestion, error)
	CountByStatus(ctx context.Context) (map[domain.SuggestionStatus]int64, error)
}

// TaskRepository defines persistence for the task and evaluation queues.
// The kind selects the underlying collection.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (primitive.ObjectID, error)
	GetByID(ctx context.Context, kind domain.TaskKind, id primitive.ObjectID) (*domain.Task, error)
	// Update persists status, scheduledAt and results only if the stored status still equals from.
	Update(ctx context.Context, task *domain.Task, from domain.TaskStatus) error
	ListByStudent(ctx context.Context, kind domain.TaskKind, studentID primitive.ObjectID, status domain.TaskStatus) ([]domain.Task, error)
	ListByTrainer(ctx context.Context, kind domain.TaskKind, trainerID primitive.ObjectID, status domain.TaskStatus) ([]domain.Task, error)
	CountByStatus(ctx context.Context, kind domain.TaskKind) (map[domain.TaskStatus]int64, error)
}

// WorkoutRepository defines persistence for workouts.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Workout, error)
	ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Workout, error)
	MarkCompleted(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Delete(ctx context.Context, id, trainerID primitive.ObjectID) error
	// DeleteExpiredPending removes pending workouts whose expiresAt is before now.
	DeleteExpiredPending(ctx context.Context, now time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// DietRepository defines persistence for diets.
type DietRepository interface {
	Create(ctx context.Context, diet *domain.Diet) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Diet, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Diet, error)
	ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Diet, error)
	MarkCompleted(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Delete(ctx context.Context, id, trainerID primitive.ObjectID) error
}

// PostRepository defines persistence for the social feed.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Post, error)
	// List returns up to limit posts created before the given time, newest first.
	List(ctx context.Context, before time.Time, limit int64) ([]domain.Post, error)
	SetLike(ctx context.Context, id, userID primitive.ObjectID, liked bool) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MessageRepository defines persistence for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) (primitive.ObjectID, error)
	// Conversation returns up to limit messages exchanged between a and b, newest first.
	Conversation(ctx context.Context, a, b primitive.ObjectID, limit int64) ([]domain.Message, error)
	// MarkRead flags every unread message from sender to recipient as read.
	MarkRead(ctx context.Context, sender, recipient primitive.ObjectID) (int64, error)
}

// UploadRepository defines the interface for interacting with upload metadata.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Upload, error)
	GetByObjectKey(ctx context.Context, key string) (*domain.Upload, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
