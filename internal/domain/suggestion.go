package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SuggestionType tells whether a suggestion carries a workout or a diet.
type SuggestionType string

const (
	SuggestionWorkout SuggestionType = "workout"
	SuggestionDiet    SuggestionType = "diet"
)

func (t SuggestionType) Valid() bool {
	return t == SuggestionWorkout || t == SuggestionDiet
}

// SuggestionSource records who authored the content.
type SuggestionSource string

const (
	SourceTrainer SuggestionSource = "trainer"
	SourceAI      SuggestionSource = "ai"
)

// SuggestionStatus type for the suggestion lifecycle
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionAccepted SuggestionStatus = "accepted"
	SuggestionRejected SuggestionStatus = "rejected"
)

// CanTransition reports whether a suggestion may move from s to next.
// Only pending suggestions can be answered, and only once.
func (s SuggestionStatus) CanTransition(next SuggestionStatus) bool {
	return s == SuggestionPending && (next == SuggestionAccepted || next == SuggestionRejected)
}

// Suggestion is workout or diet content offered by a trainer to one student.
type Suggestion struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	StudentID   primitive.ObjectID `bson:"studentId" json:"studentId"`
	Type        SuggestionType     `bson:"type" json:"type"`
	Source      SuggestionSource   `bson:"source" json:"source"`
	Content     string             `bson:"content" json:"content"` // Immutable after creation
	Meals       []Meal             `bson:"meals,omitempty" json:"meals,omitempty"`
	Status      SuggestionStatus   `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	RespondedAt *time.Time         `bson:"respondedAt,omitempty" json:"respondedAt,omitempty"`
}

// IsParty reports whether userID is the student or trainer of the suggestion.
func (s *Suggestion) IsParty(userID primitive.ObjectID) bool {
	return s.StudentID == userID || s.TrainerID == userID
}
