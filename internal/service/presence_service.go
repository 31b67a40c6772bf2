package service

import (
	"alcyxob/fitcoach/internal/realtime"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PresenceStatus is the online state of one user.
type PresenceStatus struct {
	UserID   string     `json:"userId"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

// PresenceService tracks who is online. A user is online while their
// presence key lives; it lapses on its own when heartbeats stop.
type PresenceService interface {
	Heartbeat(ctx context.Context, userID primitive.ObjectID) error
	Offline(ctx context.Context, userID primitive.ObjectID) error
	Status(ctx context.Context, userID primitive.ObjectID) (*PresenceStatus, error)
}

type presenceService struct {
	store    realtime.PresenceStore
	userRepo repository.UserRepository
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewPresenceService creates a new PresenceService.
func NewPresenceService(store realtime.PresenceStore, userRepo repository.UserRepository, ttl time.Duration, logger *zap.Logger) PresenceService {
	return &presenceService{
		store:    store,
		userRepo: userRepo,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *presenceService) Heartbeat(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.store.Touch(ctx, userID.Hex(), s.ttl); err != nil {
		return err
	}
	return s.mirror(ctx, userID, true)
}

func (s *presenceService) Offline(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.store.Clear(ctx, userID.Hex()); err != nil {
		return err
	}
	return s.mirror(ctx, userID, false)
}

// mirror copies the state onto the user document so lastSeen survives key expiry.
func (s *presenceService) mirror(ctx context.Context, userID primitive.ObjectID, online bool) error {
	err := s.userRepo.UpdatePresence(ctx, userID, online, s.now().UTC())
	if err != nil {
		s.logger.Warn("presence mirror failed", zap.String("user_id", userID.Hex()), zap.Error(err))
	}
	return err
}

func (s *presenceService) Status(ctx context.Context, userID primitive.ObjectID) (*PresenceStatus, error) {
	user, err := getUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	online, err := s.store.Online(ctx, userID.Hex())
	if err != nil {
		return nil, err
	}
	return &PresenceStatus{UserID: userID.Hex(), Online: online, LastSeen: user.LastSeen}, nil
}
