package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/realtime"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CreateTaskInput is a student's request for a workout or an evaluation.
type CreateTaskInput struct {
	StudentID   primitive.ObjectID
	Kind        domain.TaskKind
	Type        string
	Description string
}

// TaskService drives the task and evaluation queues through
// pending -> scheduled -> completed, or pending -> rejected.
type TaskService interface {
	Create(ctx context.Context, in CreateTaskInput) (*domain.Task, error)
	Reject(ctx context.Context, trainerID primitive.ObjectID, kind domain.TaskKind, taskID primitive.ObjectID) (*domain.Task, error)
	Schedule(ctx context.Context, trainerID primitive.ObjectID, kind domain.TaskKind, taskID primitive.ObjectID, at time.Time) (*domain.Task, error)
	Complete(ctx context.Context, trainerID primitive.ObjectID, kind domain.TaskKind, taskID primitive.ObjectID, results map[string]interface{}) (*domain.Task, error)
	ListForStudent(ctx context.Context, kind domain.TaskKind, studentID primitive.ObjectID, status domain.TaskStatus) ([]domain.Task, error)
	ListForTrainer(ctx context.Context, kind domain.TaskKind, trainerID primitive.ObjectID, status domain.TaskStatus) ([]domain.Task, error)
}

type taskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	notifier notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, pub realtime.Publisher, logger *zap.Logger) TaskService {
	return &taskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		notifier: newNotifier(pub, logger),
		logger:   logger,
		now:      time.Now,
	}
}

// Create opens a pending request addressed to the student's active trainer.
func (s *taskService) Create(ctx context.Context, in CreateTaskInput) (*domain.Task, error) {
	// 1. Validate Input
	if !in.Kind.Valid() {
		return nil, ErrInvalidType
	}
	in.Type = strings.TrimSpace(in.Type)
	if in.Type == "" {
		return nil, fmt.Errorf("%w: type cannot be empty", ErrValidation)
	}

	// 2. Student must be allowed to ask and have a trainer to ask
	student, err := getUser(ctx, s.userRepo, in.StudentID)
	if err != nil {
		return nil, err
	}
	if !student.Capabilities().RequestEvaluations() {
		return nil, ErrCapabilityDenied
	}
	if student.TrainerID == nil || student.PendingTrainerApproval {
		return nil, ErrStudentHasNoCoach
	}

	task := &domain.Task{
		Kind:        in.Kind,
		Type:        in.Type,
		Description: strings.TrimSpace(in.Description),
		StudentID:   student.ID,
		StudentName: student.Name,
		TrainerID:   *student.TrainerID,
		Status:      domain.TaskPending,
	}
	id, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	task.ID = id

	s.notifier.notify(ctx, task.TrainerID, EventTaskCreated, task)
	return task, nil
}

func (s *taskService) Reject(ctx context.Context, trainerID primitive.ObjectID, kind domain.TaskKind, taskID primitive.ObjectID) (*domain.Task, error) {
	return s.transition(ctx, trainerID, kind, taskID, domain.TaskRejected, nil)
}

// Schedule sets the date of a pending request. The date must be in the future.
func (s *taskService) Schedule(ctx context.Context, trainerID primitive.ObjectID, kind domain.TaskKind, taskID primitive.ObjectID, at time.Time) (*domain.Task, error) {
	if !at.After(s.now()) {
		return nil, ErrScheduleInPast
	}
	return s.transition(ctx, trainerID, kind, taskID, domain.TaskScheduled, func(t *domain.Task) error {
		scheduled := at.UTC()
		t.ScheduledAt = &scheduled
		return nil
	})
}

// Complete closes a scheduled request and attaches its results.
func (s *taskService) Complete(ctx context.Context, trainerID primitive.ObjectID, kind domain.TaskKind, taskID primitive.ObjectID, results map[string]interface{}) (*domain.Task, error) {
	return s.transition(ctx, trainerID, kind, taskID, domain.TaskCompleted, func(t *domain.Task) error {
		if t.ScheduledAt == nil {
			return ErrNotScheduled
		}
		t.Results = results
		return nil
	})
}

// transition loads a task owned by trainerID, applies mutate and moves it
// to next. The write only lands if nobody changed the status meanwhile.
func (s *taskService) transition(ctx context.Context, trainerID primitive.ObjectID, kind domain.TaskKind, taskID primitive.ObjectID, next domain.TaskStatus, mutate func(*domain.Task) error) (*domain.Task, error) {
	if !kind.Valid() {
		return nil, ErrInvalidType
	}
	task, err := s.taskRepo.GetByID(ctx, kind, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.TrainerID != trainerID {
		return nil, ErrTaskAccessDenied
	}

	from := task.Status
	if !from.CanTransition(next) {
		return nil, ErrInvalidTransition
	}
	if mutate != nil {
		if err := mutate(task); err != nil {
			return nil, err
		}
	}
	task.Status = next

	if err := s.taskRepo.Update(ctx, task, from); err != nil {
		if errors.Is(err, repository.ErrUpdateFailed) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	s.logger.Debug("task transitioned",
		zap.String("task_id", task.ID.Hex()),
		zap.String("kind", string(kind)),
		zap.String("from", string(from)),
		zap.String("to", string(next)))
	s.notifier.notify(ctx, task.StudentID, EventTaskUpdated, task)
	return task, nil
}

func (s *taskService) ListForStudent(ctx context.Context, kind domain.TaskKind, studentID primitive.ObjectID, status domain.TaskStatus) ([]domain.Task, error) {
	if !kind.Valid() {
		return nil, ErrInvalidType
	}
	return s.taskRepo.ListByStudent(ctx, kind, studentID, status)
}

func (s *taskService) ListForTrainer(ctx context.Context, kind domain.TaskKind, trainerID primitive.ObjectID, status domain.TaskStatus) ([]domain.Task, error) {
	if !kind.Valid() {
		return nil, ErrInvalidType
	}
	return s.taskRepo.ListByTrainer(ctx, kind, trainerID, status)
}
