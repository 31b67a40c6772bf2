package service

import (
	"alcyxob/fitcoach/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateWorkoutSetsExpiry(t *testing.T) {
	users := newFakeUserRepo()
	workouts := newFakeWorkoutRepo()
	pub := &fakePublisher{}
	trainer := seedTrainer(users, "PT1234")
	student := seedStudent(users, "sam", &trainer.ID, false)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	svc := NewPlanService(workouts, newFakeDietRepo(), users, pub, workoutTTL, zap.NewNop()).(*planService)
	svc.now = fixedClock(now)

	w, err := svc.CreateWorkout(context.Background(), PlanInput{
		TrainerID: trainer.ID, StudentID: student.ID, Title: "Legs", Body: "Squat 5x5",
	})
	require.NoError(t, err)
	require.NotNil(t, w.ExpiresAt)
	assert.Equal(t, now.Add(15*24*time.Hour), *w.ExpiresAt)
	assert.Contains(t, pub.typesFor(student.ID), EventPlanAssigned)

	_, err = svc.CreateWorkout(context.Background(), PlanInput{
		TrainerID: trainer.ID, StudentID: student.ID, Title: "", Body: "Squat",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateDietNeedsMeals(t *testing.T) {
	users := newFakeUserRepo()
	diets := newFakeDietRepo()
	trainer := seedTrainer(users, "PT1234")
	student := seedStudent(users, "sam", &trainer.ID, false)
	svc := NewPlanService(newFakeWorkoutRepo(), diets, users, &fakePublisher{}, workoutTTL, zap.NewNop())

	d, err := svc.CreateDiet(context.Background(), PlanInput{
		TrainerID: trainer.ID, StudentID: student.ID, Title: "Cut", Body: sampleDiet,
	})
	require.NoError(t, err)
	assert.Len(t, d.Meals, 2)

	_, err = svc.CreateDiet(context.Background(), PlanInput{
		TrainerID: trainer.ID, StudentID: student.ID, Title: "Cut", Body: "eat clean",
	})
	assert.ErrorIs(t, err, ErrNoMealsRecognized)
	assert.Len(t, diets.items, 1)
}

func TestPlanVisibility(t *testing.T) {
	users := newFakeUserRepo()
	trainer := seedTrainer(users, "PT1234")
	stranger := seedTrainer(users, "PT9999")
	student := seedStudent(users, "sam", &trainer.ID, false)
	svc := NewPlanService(newFakeWorkoutRepo(), newFakeDietRepo(), users, &fakePublisher{}, workoutTTL, zap.NewNop())
	ctx := context.Background()

	_, err := svc.StudentWorkouts(ctx, student.ID, student.ID)
	assert.NoError(t, err)
	_, err = svc.StudentWorkouts(ctx, trainer.ID, student.ID)
	assert.NoError(t, err)
	_, err = svc.StudentDiets(ctx, stranger.ID, student.ID)
	assert.ErrorIs(t, err, ErrPlanAccess)
}

func TestCompleteWorkout(t *testing.T) {
	users := newFakeUserRepo()
	workouts := newFakeWorkoutRepo()
	pub := &fakePublisher{}
	trainer := seedTrainer(users, "PT1234")
	student := seedStudent(users, "sam", &trainer.ID, false)
	svc := NewPlanService(workouts, newFakeDietRepo(), users, pub, workoutTTL, zap.NewNop())
	ctx := context.Background()

	w, err := svc.CreateWorkout(ctx, PlanInput{TrainerID: trainer.ID, StudentID: student.ID, Title: "Legs", Body: "Squat"})
	require.NoError(t, err)

	_, err = svc.CompleteWorkout(ctx, trainer.ID, w.ID)
	assert.ErrorIs(t, err, ErrPlanAccess, "only the student completes")

	done, err := svc.CompleteWorkout(ctx, student.ID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanCompleted, done.Status)
	assert.Contains(t, pub.typesFor(trainer.ID), EventPlanCompleted)

	_, err = svc.CompleteWorkout(ctx, student.ID, w.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDeletePlansByOwner(t *testing.T) {
	users := newFakeUserRepo()
	trainer := seedTrainer(users, "PT1234")
	other := seedTrainer(users, "PT9999")
	student := seedStudent(users, "sam", &trainer.ID, false)
	svc := NewPlanService(newFakeWorkoutRepo(), newFakeDietRepo(), users, &fakePublisher{}, workoutTTL, zap.NewNop())
	ctx := context.Background()

	w, err := svc.CreateWorkout(ctx, PlanInput{TrainerID: trainer.ID, StudentID: student.ID, Title: "Legs", Body: "Squat"})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteWorkout(ctx, other.ID, w.ID), ErrWorkoutNotFound)
	assert.NoError(t, svc.DeleteWorkout(ctx, trainer.ID, w.ID))
}

func TestSweepDeletesOnlyExpiredPending(t *testing.T) {
	now := time.Date(2025, 3, 16, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)
	repo := newFakeWorkoutRepo()
	ctx := context.Background()

	seed := func(status domain.PlanStatus, expires *time.Time) *domain.Workout {
		w := &domain.Workout{Title: "w", Status: status, ExpiresAt: expires}
		_, err := repo.Create(ctx, w)
		require.NoError(t, err)
		return w
	}
	expired := seed(domain.PlanPending, &past)
	completed := seed(domain.PlanCompleted, &past)
	fresh := seed(domain.PlanPending, &future)
	noExpiry := seed(domain.PlanPending, nil)

	sweeper := NewSweeper(repo, time.Hour, zap.NewNop())
	sweeper.now = fixedClock(now)

	deleted, err := sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetByID(ctx, expired.ID)
	assert.Error(t, err)
	for _, kept := range []*domain.Workout{completed, fresh, noExpiry} {
		_, err := repo.GetByID(ctx, kept.ID)
		assert.NoError(t, err)
	}
}

func TestSweeperStopsOnCancel(t *testing.T) {
	sweeper := NewSweeper(newFakeWorkoutRepo(), time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
