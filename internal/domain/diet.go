package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Macros holds optional nutrition annotations. Nil means "not given".
type Macros struct {
	Calories *float64 `bson:"calories,omitempty" json:"calories,omitempty"`
	Protein  *float64 `bson:"protein,omitempty" json:"protein,omitempty"` // grams
	Carbs    *float64 `bson:"carbs,omitempty" json:"carbs,omitempty"`     // grams
	Fat      *float64 `bson:"fat,omitempty" json:"fat,omitempty"`         // grams
}

// Empty reports whether no macro was recognized.
func (m Macros) Empty() bool {
	return m.Calories == nil && m.Protein == nil && m.Carbs == nil && m.Fat == nil
}

// Meal is one block of a diet: a header and its food lines.
type Meal struct {
	Name   string   `bson:"name" json:"name"`
	Foods  []string `bson:"foods" json:"foods"`
	Macros Macros   `bson:"macros" json:"macros"`
}

// Diet is a nutrition plan a trainer assigns to a student.
type Diet struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TrainerID    primitive.ObjectID  `bson:"trainerId" json:"trainerId"`
	StudentID    primitive.ObjectID  `bson:"studentId" json:"studentId"`
	SuggestionID *primitive.ObjectID `bson:"suggestionId,omitempty" json:"suggestionId,omitempty"`
	Title        string              `bson:"title" json:"title"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	Content      string              `bson:"content" json:"content"`
	Meals        []Meal              `bson:"meals" json:"meals"`
	Status       PlanStatus          `bson:"status" json:"status"`
	CompletedAt  *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}
