package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanStatus is shared by workouts and diets.
type PlanStatus string

const (
	PlanPending   PlanStatus = "pending"
	PlanCompleted PlanStatus = "completed"
)

// Workout is a training session a trainer assigns to a student.
// Pending workouts are removed by the expiration sweep once ExpiresAt passes.
type Workout struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TrainerID    primitive.ObjectID  `bson:"trainerId" json:"trainerId"`
	StudentID    primitive.ObjectID  `bson:"studentId" json:"studentId"`
	SuggestionID *primitive.ObjectID `bson:"suggestionId,omitempty" json:"suggestionId,omitempty"`
	Title        string              `bson:"title" json:"title"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	Exercises    string              `bson:"exercises" json:"exercises"` // Semi-structured text, one exercise per line
	Status       PlanStatus          `bson:"status" json:"status"`
	ExpiresAt    *time.Time          `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	CompletedAt  *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Expired reports whether the workout is still pending past its expiry.
func (w *Workout) Expired(now time.Time) bool {
	return w.Status == PlanPending && w.ExpiresAt != nil && w.ExpiresAt.Before(now)
}
