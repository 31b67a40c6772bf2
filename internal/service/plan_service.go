package service

import (
	"alcyxob/fitcoach/internal/dietparser"
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

// PlanInput describes a workout or diet a trainer writes for a student.
// Body holds the exercise list for workouts and the diet text for diets.
type PlanInput struct {
	TrainerID   primitive.ObjectID
	StudentID   primitive.ObjectID
	Title       string
	Description string
	Body        string
}

// PlanService manages workouts and diets assigned to students.
type PlanService interface {
	CreateWorkout(ctx context.Context, in PlanInput) (*domain.Workout, error)
	CreateDiet(ctx context.Context, in PlanInput) (*domain.Diet, error)
	// StudentWorkouts lists a student's workouts for the student or their active trainer.
	StudentWorkouts(ctx context.Context, callerID, studentID primitive.ObjectID) ([]domain.Workout, error)
	StudentDiets(ctx context.Context, callerID, studentID primitive.ObjectID) ([]domain.Diet, error)
	TrainerWorkouts(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Workout, error)
	TrainerDiets(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Diet, error)
	CompleteWorkout(ctx context.Context, studentID, workoutID primitive.ObjectID) (*domain.Workout, error)
	CompleteDiet(ctx context.Context, studentID, dietID primitive.ObjectID) (*domain.Diet, error)
	DeleteWorkout(ctx context.Context, trainerID, workoutID primitive.ObjectID) error
	DeleteDiet(ctx context.Context, trainerID, dietID primitive.ObjectID) error
}

type planService struct {
	workoutRepo repository.WorkoutRepository
	dietRepo    repository.DietRepository
	userRepo    repository.UserRepository
	workoutTTL  time.Duration
	notifier    notifier
	now         func() time.Time
}

// NewPlanService creates a new PlanService. Workouts expire workoutTTL after creation.
func NewPlanService(
	workoutRepo repository.WorkoutRepository,
	dietRepo repository.DietRepository,
	userRepo repository.UserRepository,
	pub realtime.Publisher,
	workoutTTL time.Duration,
	logger *zap.Logger,
) PlanService {
	return &planService{
		workoutRepo: workoutRepo,
		dietRepo:    dietRepo,
		userRepo:    userRepo,
		workoutTTL:  workoutTTL,
		notifier:    newNotifier(pub, logger),
		now:         time.Now,
	}
}

// checkRoster validates input common to both plan kinds.
func (s *planService) checkRoster(ctx context.Context, in *PlanInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	if in.Title == "" || in.Body == "" {
		return fmt.Errorf("%w: title and content are required", ErrValidation)
	}
	student, err := getUser(ctx, s.userRepo, in.StudentID)
	if err != nil {
		return err
	}
	if !student.HasActiveTrainer(in.TrainerID) {
		return ErrStudentNotLinked
	}
	return nil
}

func (s *planService) CreateWorkout(ctx context.Context, in PlanInput) (*domain.Workout, error) {
	if err := s.checkRoster(ctx, &in); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	expires := now.Add(s.workoutTTL)
	workout := &domain.Workout{
		TrainerID:   in.TrainerID,
		StudentID:   in.StudentID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Exercises:   in.Body,
		Status:      domain.PlanPending,
		ExpiresAt:   &expires,
		CreatedAt:   now,
	}
	id, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = id
	s.notifier.notify(ctx, workout.StudentID, EventPlanAssigned, workout)
	return workout, nil
}

func (s *planService) CreateDiet(ctx context.Context, in PlanInput) (*domain.Diet, error) {
	if err := s.checkRoster(ctx, &in); err != nil {
		return nil, err
	}
	meals, err := dietparser.Parse(in.Body)
	if err != nil {
		if errors.Is(err, dietparser.ErrNoMealsRecognized) {
			return nil, ErrNoMealsRecognized
		}
		return nil, err
	}
	diet := &domain.Diet{
		TrainerID:   in.TrainerID,
		StudentID:   in.StudentID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Content:     in.Body,
		Meals:       meals,
		Status:      domain.PlanPending,
	}
	id, err := s.dietRepo.Create(ctx, diet)
	if err != nil {
		return nil, err
	}
	diet.ID = id
	s.notifier.notify(ctx, diet.StudentID, EventPlanAssigned, diet)
	return diet, nil
}

// canView reports whether callerID may read studentID's plans.
func (s *planService) canView(ctx context.Context, callerID, studentID primitive.ObjectID) error {
	if callerID == studentID {
		return nil
	}
	student, err := getUser(ctx, s.userRepo, studentID)
	if err != nil {
		return err
	}
	if !student.HasActiveTrainer(callerID) {
		return ErrPlanAccess
	}
	return nil
}

func (s *planService) StudentWorkouts(ctx context.Context, callerID, studentID primitive.ObjectID) ([]domain.Workout, error) {
	if err := s.canView(ctx, callerID, studentID); err != nil {
		return nil, err
	}
	return s.workoutRepo.ListByStudent(ctx, studentID)
}

func (s *planService) StudentDiets(ctx context.Context, callerID, studentID primitive.ObjectID) ([]domain.Diet, error) {
	if err := s.canView(ctx, callerID, studentID); err != nil {
		return nil, err
	}
	return s.dietRepo.ListByStudent(ctx, studentID)
}

func (s *planService) TrainerWorkouts(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Workout, error) {
	return s.workoutRepo.ListByTrainer(ctx, trainerID)
}

func (s *planService) TrainerDiets(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Diet, error) {
	return s.dietRepo.ListByTrainer(ctx, trainerID)
}

func (s *planService) CompleteWorkout(ctx context.Context, studentID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.StudentID != studentID {
		return nil, ErrPlanAccess
	}
	now := s.now().UTC()
	if workout.Expired(now) {
		return nil, ErrWorkoutNotFound
	}
	if err := s.workoutRepo.MarkCompleted(ctx, workoutID, now); err != nil {
		if errors.Is(err, repository.ErrUpdateFailed) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	workout.Status = domain.PlanCompleted
	workout.CompletedAt = &now
	s.notifier.notify(ctx, workout.TrainerID, EventPlanCompleted, workout)
	return workout, nil
}

func (s *planService) CompleteDiet(ctx context.Context, studentID, dietID primitive.ObjectID) (*domain.Diet, error) {
	diet, err := s.dietRepo.GetByID(ctx, dietID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDietNotFound
		}
		return nil, err
	}
	if diet.StudentID != studentID {
		return nil, ErrPlanAccess
	}
	now := s.now().UTC()
	if err := s.dietRepo.MarkCompleted(ctx, dietID, now); err != nil {
		if errors.Is(err, repository.ErrUpdateFailed) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	diet.Status = domain.PlanCompleted
	diet.CompletedAt = &now
	s.notifier.notify(ctx, diet.TrainerID, EventPlanCompleted, diet)
	return diet, nil
}

func (s *planService) DeleteWorkout(ctx context.Context, trainerID, workoutID primitive.ObjectID) error {
	if err := s.workoutRepo.Delete(ctx, workoutID, trainerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	return nil
}

func (s *planService) DeleteDiet(ctx context.Context, trainerID, dietID primitive.ObjectID) error {
	if err := s.dietRepo.Delete(ctx, dietID, trainerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDietNotFound
		}
		return err
	}
	return nil
}
