package service

import (
	"alcyxob/fitcoach/internal/domain"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func newTestAuth(users *fakeUserRepo, pub *fakePublisher) *authService {
	return NewAuthService(users, pub, testSecret, time.Hour, zap.NewNop()).(*authService)
}

func TestRegisterStudentWithTrainerCode(t *testing.T) {
	users := newFakeUserRepo()
	pub := &fakePublisher{}
	trainer := users.add(domain.User{Name: "Tina", Email: "tina@example.com", Level: domain.LevelTrainer, TrainerCode: "PT1234"})
	svc := newTestAuth(users, pub)

	student, err := svc.Register(context.Background(), RegisterInput{
		Name:        "Sam",
		Email:       "Sam@Example.com ",
		Password:    "secret123",
		Level:       domain.LevelStudent,
		TrainerCode: "pt1234",
	})
	require.NoError(t, err)

	stored := users.get(student.ID)
	require.NotNil(t, stored.TrainerID)
	assert.Equal(t, trainer.ID, *stored.TrainerID)
	assert.True(t, stored.PendingTrainerApproval)
	assert.Equal(t, "sam@example.com", stored.Email)
	assert.Empty(t, student.PasswordHash)
	assert.Contains(t, pub.typesFor(trainer.ID), EventLinkRequested)
}

func TestRegisterWithUnknownTrainerCode(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuth(users, &fakePublisher{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:        "Sam",
		Email:       "sam@example.com",
		Password:    "secret123",
		Level:       domain.LevelStudent,
		TrainerCode: "PT9999",
	})
	assert.ErrorIs(t, err, ErrTrainerCodeNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = users.GetByEmail(context.Background(), "sam@example.com")
	assert.Error(t, err, "no account is created for an unknown code")
}

func TestRegisterTrainerGetsCode(t *testing.T) {
	users := newFakeUserRepo()
	users.add(domain.User{Email: "other@example.com", Level: domain.LevelTrainer, TrainerCode: "PT0001"})
	svc := newTestAuth(users, &fakePublisher{})

	codes := []string{"PT0001", "PT0002"}
	svc.codeGen = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	trainer, err := svc.Register(context.Background(), RegisterInput{
		Name: "Tina", Email: "tina@example.com", Password: "secret123", Level: domain.LevelTrainer,
	})
	require.NoError(t, err)
	assert.Equal(t, "PT0002", trainer.TrainerCode, "taken codes are skipped")
}

func TestRegisterValidation(t *testing.T) {
	users := newFakeUserRepo()
	users.add(domain.User{Email: "taken@example.com", Level: domain.LevelStudent})
	svc := newTestAuth(users, &fakePublisher{})

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"missing name", RegisterInput{Email: "a@example.com", Password: "x", Level: domain.LevelStudent}, ErrValidation},
		{"admin self registration", RegisterInput{Name: "A", Email: "a@example.com", Password: "x", Level: domain.LevelAdmin}, ErrInvalidLevel},
		{"duplicate email", RegisterInput{Name: "A", Email: "taken@example.com", Password: "x", Level: domain.LevelStudent}, ErrUserAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoginIssuesToken(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuth(users, &fakePublisher{})
	registered, err := svc.Register(context.Background(), RegisterInput{
		Name: "Tina", Email: "tina@example.com", Password: "secret123", Level: domain.LevelTrainer,
	})
	require.NoError(t, err)

	token, user, err := svc.Login(context.Background(), "tina@example.com", "secret123")
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID.Hex(), claims.UserID)
	assert.Equal(t, domain.LevelTrainer, claims.Level)

	_, err = ParseToken(token, "another-secret")
	assert.Error(t, err)

	_, _, err = svc.Login(context.Background(), "tina@example.com", "wrong")
	assert.True(t, errors.Is(err, ErrAuthenticationFailed))
	_, _, err = svc.Login(context.Background(), "nobody@example.com", "secret123")
	assert.True(t, errors.Is(err, ErrAuthenticationFailed))
}

func TestRandomTrainerCodeFormat(t *testing.T) {
	re := regexp.MustCompile(`^PT\d{4}$`)
	for i := 0; i < 50; i++ {
		code, err := randomTrainerCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
	}
}

func TestUpdateProfileKeepsEmptyFields(t *testing.T) {
	users := newFakeUserRepo()
	u := users.add(domain.User{Name: "Sam", Email: "sam@example.com", Level: domain.LevelStudent, AvatarURL: "https://cdn/a.jpg"})
	svc := newTestAuth(users, &fakePublisher{})

	updated, err := svc.UpdateProfile(context.Background(), u.ID, "Samuel", "")
	require.NoError(t, err)
	assert.Equal(t, "Samuel", updated.Name)
	assert.Equal(t, "https://cdn/a.jpg", updated.AvatarURL)
}
