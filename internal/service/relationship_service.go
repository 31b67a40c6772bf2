package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/realtime"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RelationshipService manages the trainer/student link: requests by trainer
// code, approval, the free tier capacity and the roster.
type RelationshipService interface {
	RequestLink(ctx context.Context, studentID primitive.ObjectID, trainerCode string) (*domain.User, error)
	Decide(ctx context.Context, trainerID, studentID primitive.ObjectID, approved bool) (*domain.User, error)
	// CheckCapacity fails with ErrTrainerCapacityExceeded when the trainer
	// already has the maximum number of linked students.
	CheckCapacity(ctx context.Context, trainerID primitive.ObjectID) error
	Roster(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	PendingRequests(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	Unlink(ctx context.Context, trainerID, studentID primitive.ObjectID) error
	RegenerateCode(ctx context.Context, trainerID primitive.ObjectID) (string, error)
}

type relationshipService struct {
	userRepo     repository.UserRepository
	studentLimit int
	notifier     notifier
	logger       *zap.Logger
	codeGen      func() (string, error)
}

// NewRelationshipService creates a new RelationshipService.
func NewRelationshipService(userRepo repository.UserRepository, pub realtime.Publisher, studentLimit int, logger *zap.Logger) RelationshipService {
	return &relationshipService{
		userRepo:     userRepo,
		studentLimit: studentLimit,
		notifier:     newNotifier(pub, logger),
		logger:       logger,
		codeGen:      randomTrainerCode,
	}
}

// RequestLink points the student at the trainer owning code and marks the
// link pending. A student with an active trainer must unlink first; a
// pending request to another trainer is replaced.
func (s *relationshipService) RequestLink(ctx context.Context, studentID primitive.ObjectID, trainerCode string) (*domain.User, error) {
	// 1. Validate Input
	code := strings.ToUpper(strings.TrimSpace(trainerCode))
	if code == "" {
		return nil, ErrTrainerCodeNotFound
	}

	// 2. Load the student
	student, err := getUser(ctx, s.userRepo, studentID)
	if err != nil {
		return nil, err
	}
	if !student.IsStudent() {
		return nil, ErrNotAStudent
	}
	if student.TrainerID != nil && !student.PendingTrainerApproval {
		return nil, ErrAlreadyLinked
	}

	// 3. Resolve the code
	trainer, err := s.userRepo.GetByTrainerCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerCodeNotFound
		}
		return nil, err
	}

	// 4. Store the pending link
	if err := s.userRepo.SetTrainerLink(ctx, student.ID, &trainer.ID, true); err != nil {
		return nil, err
	}
	student.TrainerID = &trainer.ID
	student.PendingTrainerApproval = true

	s.notifier.notify(ctx, trainer.ID, EventLinkRequested, refOf(student))
	student.PasswordHash = ""
	return student, nil
}

// Decide approves or rejects a pending request. Approving re-checks
// capacity against the trainer's active students.
func (s *relationshipService) Decide(ctx context.Context, trainerID, studentID primitive.ObjectID, approved bool) (*domain.User, error) {
	student, err := getUser(ctx, s.userRepo, studentID)
	if err != nil {
		return nil, err
	}
	if !student.IsPendingWith(trainerID) {
		return nil, ErrNoPendingRequest
	}

	if !approved {
		if err := s.userRepo.SetTrainerLink(ctx, student.ID, nil, false); err != nil {
			return nil, err
		}
		student.TrainerID = nil
		student.PendingTrainerApproval = false
		s.notifier.notify(ctx, student.ID, EventLinkRejected, nil)
		student.PasswordHash = ""
		return student, nil
	}

	active := false
	count, err := s.userRepo.CountStudentsByTrainer(ctx, trainerID, &active)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.studentLimit) {
		return nil, ErrTrainerCapacityExceeded
	}

	if err := s.userRepo.SetTrainerLink(ctx, student.ID, &trainerID, false); err != nil {
		return nil, err
	}
	student.PendingTrainerApproval = false
	s.notifier.notify(ctx, student.ID, EventLinkApproved, nil)
	s.logger.Info("student link approved",
		zap.String("trainer_id", trainerID.Hex()),
		zap.String("student_id", studentID.Hex()))

	student.PasswordHash = ""
	return student, nil
}

func (s *relationshipService) CheckCapacity(ctx context.Context, trainerID primitive.ObjectID) error {
	count, err := s.userRepo.CountStudentsByTrainer(ctx, trainerID, nil)
	if err != nil {
		return err
	}
	if count >= int64(s.studentLimit) {
		return ErrTrainerCapacityExceeded
	}
	return nil
}

func (s *relationshipService) Roster(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	pending := false
	return s.listStudents(ctx, trainerID, &pending)
}

func (s *relationshipService) PendingRequests(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	pending := true
	return s.listStudents(ctx, trainerID, &pending)
}

func (s *relationshipService) listStudents(ctx context.Context, trainerID primitive.ObjectID, pending *bool) ([]domain.User, error) {
	students, err := s.userRepo.ListStudentsByTrainer(ctx, trainerID, pending)
	if err != nil {
		return nil, err
	}
	for i := range students {
		students[i].PasswordHash = ""
	}
	return students, nil
}

// Unlink removes an active student from the trainer's roster.
func (s *relationshipService) Unlink(ctx context.Context, trainerID, studentID primitive.ObjectID) error {
	student, err := getUser(ctx, s.userRepo, studentID)
	if err != nil {
		return err
	}
	if !student.HasActiveTrainer(trainerID) {
		return ErrStudentNotLinked
	}
	if err := s.userRepo.SetTrainerLink(ctx, student.ID, nil, false); err != nil {
		return err
	}
	s.notifier.notify(ctx, student.ID, EventLinkRemoved, nil)
	return nil
}

// RegenerateCode issues a fresh trainer code. Pending requests made with
// the old code stay pending.
func (s *relationshipService) RegenerateCode(ctx context.Context, trainerID primitive.ObjectID) (string, error) {
	trainer, err := getUser(ctx, s.userRepo, trainerID)
	if err != nil {
		return "", err
	}
	if !trainer.IsTrainer() {
		return "", ErrNotATrainer
	}
	// A concurrent writer can take the code between the lookup and the
	// write; draw again once before giving up.
	for attempt := 0; ; attempt++ {
		code, err := uniqueTrainerCode(ctx, s.userRepo, s.codeGen)
		if err != nil {
			return "", err
		}
		err = s.userRepo.SetTrainerCode(ctx, trainerID, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return "", err
		}
		if attempt == 1 {
			return "", ErrTrainerCodeTaken
		}
	}
}
