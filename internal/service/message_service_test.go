package service

import (
	"alcyxob/fitcoach/internal/domain"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMessagesBetweenTrainerAndStudent(t *testing.T) {
	users := newFakeUserRepo()
	messages := &fakeMessageRepo{}
	pub := &fakePublisher{}
	trainer := seedTrainer(users, "PT1234")
	student := seedStudent(users, "sam", &trainer.ID, false)
	svc := NewMessageService(messages, users, pub, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Send(ctx, student.ID, trainer.ID, "  hi coach ")
	require.NoError(t, err)
	msg, err := svc.Send(ctx, trainer.ID, student.ID, "hi sam")
	require.NoError(t, err)
	assert.Equal(t, "hi sam", msg.Content)
	assert.Contains(t, pub.typesFor(student.ID), EventMessageReceived)

	conv, err := svc.Conversation(ctx, trainer.ID, student.ID, 0)
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, "hi sam", conv[0].Content, "newest first")
	assert.Equal(t, "hi coach", conv[1].Content)

	n, err := svc.MarkRead(ctx, trainer.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "only messages the student sent are marked")
}

func TestMessagingRules(t *testing.T) {
	users := newFakeUserRepo()
	trainer := seedTrainer(users, "PT1234")
	student := seedStudent(users, "sam", &trainer.ID, false)
	pending := seedStudent(users, "pending", &trainer.ID, true)
	stranger := seedStudent(users, "eve", nil, false)
	admin := users.add(domain.User{Name: "Ada", Email: "ada@example.com", Level: domain.LevelAdmin})
	svc := NewMessageService(&fakeMessageRepo{}, users, &fakePublisher{}, zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name     string
		from, to *domain.User
		content  string
		want     error
	}{
		{"pending link", pending, trainer, "hello", ErrMessagingNotAllowed},
		{"no link", stranger, student, "hello", ErrMessagingNotAllowed},
		{"self", student, student, "hello", ErrValidation},
		{"empty", student, trainer, "   ", ErrEmptyContent},
		{"too long", student, trainer, strings.Repeat("x", maxMessageLength+1), ErrValidation},
		{"admin writes anyone", admin, stranger, "hello", nil},
		{"anyone answers an admin", stranger, admin, "thanks", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(ctx, tt.from.ID, tt.to.ID, tt.content)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
