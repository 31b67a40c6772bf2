package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskKind selects the queue (and collection) a request lives in.
type TaskKind string

const (
	KindTask       TaskKind = "task"
	KindEvaluation TaskKind = "evaluation"
)

func (k TaskKind) Valid() bool {
	return k == KindTask || k == KindEvaluation
}

// TaskStatus type for the request pipeline
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskScheduled TaskStatus = "scheduled"
	TaskCompleted TaskStatus = "completed"
	TaskRejected  TaskStatus = "rejected"
)

// taskTransitions lists the allowed next states. There is no way back
// from scheduled to pending.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskPending:   {TaskScheduled, TaskRejected},
	TaskScheduled: {TaskCompleted},
}

// CanTransition reports whether a task may move from s to next.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	for _, allowed := range taskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Task is a student-initiated request (a workout request or an evaluation)
// a trainer must act on.
type Task struct {
	ID          primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Kind        TaskKind               `bson:"kind" json:"kind"`
	Type        string                 `bson:"type" json:"type"` // e.g. "physical", "nutritional", "performance", "workout"
	Description string                 `bson:"description,omitempty" json:"description,omitempty"`
	StudentID   primitive.ObjectID     `bson:"studentId" json:"studentId"`
	StudentName string                 `bson:"studentName" json:"studentName"`
	TrainerID   primitive.ObjectID     `bson:"trainerId" json:"trainerId"`
	Status      TaskStatus             `bson:"status" json:"status"`
	ScheduledAt *time.Time             `bson:"scheduledAt,omitempty" json:"scheduledAt,omitempty"`
	Results     map[string]interface{} `bson:"results,omitempty" json:"results,omitempty"` // Free-form measurements
	CreatedAt   time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time              `bson:"updatedAt" json:"updatedAt"`
}
