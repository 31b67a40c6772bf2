package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CreateStudentInput is a privileged student account creation. TrainerID
// links the new student directly, with no pending step.
type CreateStudentInput struct {
	Name      string
	Email     string
	Password  string
	TrainerID *primitive.ObjectID
}

// Dashboard summarises the system for admins.
type Dashboard struct {
	UsersByLevel        map[string]int64 `json:"usersByLevel"`
	PendingLinkRequests int64            `json:"pendingLinkRequests"`
	Suggestions         map[string]int64 `json:"suggestions"`
	Tasks               map[string]int64 `json:"tasks"`
	Evaluations         map[string]int64 `json:"evaluations"`
	Workouts            int64            `json:"workouts"`
}

type AdminService interface {
	CreateStudent(ctx context.Context, callerID primitive.ObjectID, in CreateStudentInput) (*domain.User, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type adminService struct {
	userRepo       repository.UserRepository
	suggestionRepo repository.SuggestionRepository
	taskRepo       repository.TaskRepository
	workoutRepo    repository.WorkoutRepository
	relationships  RelationshipService
	logger         *zap.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	userRepo repository.UserRepository,
	suggestionRepo repository.SuggestionRepository,
	taskRepo repository.TaskRepository,
	workoutRepo repository.WorkoutRepository,
	relationships RelationshipService,
	logger *zap.Logger,
) AdminService {
	return &adminService{
		userRepo:       userRepo,
		suggestionRepo: suggestionRepo,
		taskRepo:       taskRepo,
		workoutRepo:    workoutRepo,
		relationships:  relationships,
		logger:         logger,
	}
}

// CreateStudent creates a student account on behalf of an admin or a
// trainer. Trainers can only create students for themselves, and the
// trainer's capacity is checked before anything is written.
func (s *adminService) CreateStudent(ctx context.Context, callerID primitive.ObjectID, in CreateStudentInput) (*domain.User, error) {
	// 1. Caller must be allowed
	caller, err := getUser(ctx, s.userRepo, callerID)
	if err != nil {
		return nil, err
	}
	if !caller.Capabilities().CreateStudentAccounts() {
		return nil, ErrCapabilityDenied
	}

	// 2. Validate Input
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password cannot be empty", ErrValidation)
	}

	trainerID := in.TrainerID
	if caller.IsTrainer() {
		if trainerID != nil && *trainerID != caller.ID {
			return nil, fmt.Errorf("%w: trainers can only create their own students", ErrForbidden)
		}
		trainerID = &caller.ID
	}

	// 3. Check the trainer and its capacity
	if trainerID != nil {
		trainer, err := getUser(ctx, s.userRepo, *trainerID)
		if err != nil {
			return nil, err
		}
		if !trainer.IsTrainer() {
			return nil, ErrNotATrainer
		}
		if err := s.relationships.CheckCapacity(ctx, trainer.ID); err != nil {
			return nil, err
		}
	}

	if err := ensureEmailFree(ctx, s.userRepo, in.Email); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	// 4. Save
	student := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Level:        domain.LevelStudent,
		TrainerID:    trainerID,
	}
	id, err := s.userRepo.Create(ctx, student)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	student.ID = id

	s.logger.Info("student account created",
		zap.String("student_id", id.Hex()),
		zap.String("created_by", caller.ID.Hex()))

	student.PasswordHash = ""
	return student, nil
}

func (s *adminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	byLevel, err := s.userRepo.CountByLevel(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.userRepo.CountPendingLinks(ctx)
	if err != nil {
		return nil, err
	}
	suggestions, err := s.suggestionRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.CountByStatus(ctx, domain.KindTask)
	if err != nil {
		return nil, err
	}
	evaluations, err := s.taskRepo.CountByStatus(ctx, domain.KindEvaluation)
	if err != nil {
		return nil, err
	}
	workouts, err := s.workoutRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		UsersByLevel:        make(map[string]int64, len(byLevel)),
		PendingLinkRequests: pending,
		Suggestions:         stringKeys(suggestions),
		Tasks:               stringKeys(tasks),
		Evaluations:         stringKeys(evaluations),
		Workouts:            workouts,
	}
	for level, n := range byLevel {
		d.UsersByLevel[level.String()] = n
	}
	return d, nil
}

func stringKeys[K ~string](m map[K]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}
