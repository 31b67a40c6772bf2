package service

import (
	"alcyxob/fitcoach/internal/repository"
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper deletes pending workouts past their expiry. Runs are best effort:
// a failed run is logged and the next tick tries again.
type Sweeper struct {
	workoutRepo repository.WorkoutRepository
	interval    time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewSweeper creates a Sweeper that runs every interval once started.
func NewSweeper(workoutRepo repository.WorkoutRepository, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		workoutRepo: workoutRepo,
		interval:    interval,
		logger:      logger,
		now:         time.Now,
	}
}

// SweepOnce removes every pending workout whose expiresAt is before now.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	deleted, err := s.workoutRepo.DeleteExpiredPending(ctx, s.now().UTC())
	if err != nil {
		s.logger.Error("workout sweep failed", zap.Error(err))
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("expired workouts removed", zap.Int64("count", deleted))
	}
	return deleted, nil
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("workout sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("workout sweeper stopped")
			return
		case <-ticker.C:
			_, _ = s.SweepOnce(ctx)
		}
	}
}
