package service

import (
	"alcyxob/fitcoach/internal/dietparser"
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/realtime"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxTitleLength = 80

// SendSuggestionInput is what a trainer submits for one student.
type SendSuggestionInput struct {
	TrainerID primitive.ObjectID
	StudentID primitive.ObjectID
	Type      domain.SuggestionType
	Source    domain.SuggestionSource // Defaults to trainer
	Content   string
}

// SuggestionService routes workout and diet suggestions from a trainer to
// a linked student and records the student's answer.
type SuggestionService interface {
	Send(ctx context.Context, in SendSuggestionInput) (*domain.Suggestion, error)
	UpdateStatus(ctx context.Context, callerID, suggestionID primitive.ObjectID, next domain.SuggestionStatus) (*domain.Suggestion, error)
	ListForStudent(ctx context.Context, studentID primitive.ObjectID, status domain.SuggestionStatus) ([]domain.Suggestion, error)
	ListForTrainer(ctx context.Context, trainerID primitive.ObjectID, status domain.SuggestionStatus) ([]domain.Suggestion, error)
}

type suggestionService struct {
	suggestionRepo repository.SuggestionRepository
	userRepo       repository.UserRepository
	workoutRepo    repository.WorkoutRepository
	dietRepo       repository.DietRepository
	workoutTTL     time.Duration
	notifier       notifier
	logger         *zap.Logger
	now            func() time.Time
}

// NewSuggestionService creates a new SuggestionService.
func NewSuggestionService(
	suggestionRepo repository.SuggestionRepository,
	userRepo repository.UserRepository,
	workoutRepo repository.WorkoutRepository,
	dietRepo repository.DietRepository,
	pub realtime.Publisher,
	workoutTTL time.Duration,
	logger *zap.Logger,
) SuggestionService {
	return &suggestionService{
		suggestionRepo: suggestionRepo,
		userRepo:       userRepo,
		workoutRepo:    workoutRepo,
		dietRepo:       dietRepo,
		workoutTTL:     workoutTTL,
		notifier:       newNotifier(pub, logger),
		logger:         logger,
		now:            time.Now,
	}
}

// Send persists a pending suggestion. Diet content must contain at least
// one recognizable meal; otherwise nothing is stored.
func (s *suggestionService) Send(ctx context.Context, in SendSuggestionInput) (*domain.Suggestion, error) {
	// 1. Validate Input
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if !in.Type.Valid() {
		return nil, ErrInvalidType
	}
	if in.Source == "" {
		in.Source = domain.SourceTrainer
	}
	if in.Source != domain.SourceTrainer && in.Source != domain.SourceAI {
		return nil, ErrInvalidType
	}

	// 2. Caller must be allowed to suggest
	trainer, err := getUser(ctx, s.userRepo, in.TrainerID)
	if err != nil {
		return nil, err
	}
	if !trainer.Capabilities().SendSuggestions() {
		return nil, ErrCapabilityDenied
	}

	// 3. Student must be in the trainer's active roster
	student, err := getUser(ctx, s.userRepo, in.StudentID)
	if err != nil {
		return nil, err
	}
	if !student.IsStudent() {
		return nil, ErrNotAStudent
	}
	if !student.HasActiveTrainer(trainer.ID) {
		return nil, ErrStudentNotLinked
	}

	suggestion := &domain.Suggestion{
		TrainerID: trainer.ID,
		StudentID: student.ID,
		Type:      in.Type,
		Source:    in.Source,
		Content:   content,
		Status:    domain.SuggestionPending,
		CreatedAt: s.now().UTC(),
	}

	// 4. Diets are parsed up front
	if in.Type == domain.SuggestionDiet {
		meals, err := dietparser.Parse(content)
		if err != nil {
			if errors.Is(err, dietparser.ErrNoMealsRecognized) {
				return nil, ErrNoMealsRecognized
			}
			return nil, err
		}
		suggestion.Meals = meals
	}

	// 5. Save
	id, err := s.suggestionRepo.Create(ctx, suggestion)
	if err != nil {
		return nil, err
	}
	suggestion.ID = id

	s.notifier.notify(ctx, student.ID, EventSuggestionCreated, suggestion)
	return suggestion, nil
}

// UpdateStatus answers a pending suggestion. Accepting turns the content
// into a workout or diet for the student.
func (s *suggestionService) UpdateStatus(ctx context.Context, callerID, suggestionID primitive.ObjectID, next domain.SuggestionStatus) (*domain.Suggestion, error) {
	suggestion, err := s.suggestionRepo.GetByID(ctx, suggestionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSuggestionNotFound
		}
		return nil, err
	}
	if !suggestion.IsParty(callerID) {
		return nil, ErrNotSuggestionParty
	}
	if !suggestion.Status.CanTransition(next) {
		return nil, ErrInvalidTransition
	}

	now := s.now().UTC()

	// Create the plan first so a lost race can be undone.
	var undo func()
	if next == domain.SuggestionAccepted {
		undo, err = s.materialize(ctx, suggestion, now)
		if err != nil {
			return nil, err
		}
	}

	err = s.suggestionRepo.UpdateStatus(ctx, suggestion.ID, domain.SuggestionPending, next, now)
	if err != nil {
		if undo != nil {
			undo()
		}
		if errors.Is(err, repository.ErrUpdateFailed) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	suggestion.Status = next
	suggestion.RespondedAt = &now

	other := suggestion.TrainerID
	if callerID == suggestion.TrainerID {
		other = suggestion.StudentID
	}
	s.notifier.notify(ctx, other, EventSuggestionAnswered, suggestion)
	return suggestion, nil
}

// materialize stores the accepted content as a plan and returns a func that removes it again.
func (s *suggestionService) materialize(ctx context.Context, sg *domain.Suggestion, now time.Time) (func(), error) {
	switch sg.Type {
	case domain.SuggestionWorkout:
		expires := now.Add(s.workoutTTL)
		workout := &domain.Workout{
			TrainerID:    sg.TrainerID,
			StudentID:    sg.StudentID,
			SuggestionID: &sg.ID,
			Title:        titleFromContent(sg.Content, "Suggested workout"),
			Exercises:    sg.Content,
			Status:       domain.PlanPending,
			ExpiresAt:    &expires,
			CreatedAt:    now,
		}
		id, err := s.workoutRepo.Create(ctx, workout)
		if err != nil {
			return nil, err
		}
		return func() { s.rollback("workout", id, s.workoutRepo.Delete(ctx, id, sg.TrainerID)) }, nil
	case domain.SuggestionDiet:
		diet := &domain.Diet{
			TrainerID:    sg.TrainerID,
			StudentID:    sg.StudentID,
			SuggestionID: &sg.ID,
			Title:        titleFromContent(sg.Content, "Suggested diet"),
			Content:      sg.Content,
			Meals:        sg.Meals,
			Status:       domain.PlanPending,
		}
		id, err := s.dietRepo.Create(ctx, diet)
		if err != nil {
			return nil, err
		}
		return func() { s.rollback("diet", id, s.dietRepo.Delete(ctx, id, sg.TrainerID)) }, nil
	}
	return nil, ErrInvalidType
}

func (s *suggestionService) rollback(kind string, id primitive.ObjectID, err error) {
	if err != nil {
		s.logger.Error("failed to remove plan after lost suggestion update",
			zap.String("kind", kind),
			zap.String("plan_id", id.Hex()),
			zap.Error(err))
	}
}

func (s *suggestionService) ListForStudent(ctx context.Context, studentID primitive.ObjectID, status domain.SuggestionStatus) ([]domain.Suggestion, error) {
	return s.suggestionRepo.ListByStudent(ctx, studentID, status)
}

func (s *suggestionService) ListForTrainer(ctx context.Context, trainerID primitive.ObjectID, status domain.SuggestionStatus) ([]domain.Suggestion, error) {
	return s.suggestionRepo.ListByTrainer(ctx, trainerID, status)
}

// titleFromContent uses the first non-empty line, cut to a readable length.
func titleFromContent(content, fallback string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "#*:-• ")
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > maxTitleLength {
			line = string(r[:maxTitleLength])
		}
		return line
	}
	return fallback
}
