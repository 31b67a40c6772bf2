package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/realtime"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	defaultConversationLimit = 50
	maxConversationLimit     = 200
	maxMessageLength         = 4000
)

// MessageService carries direct messages between a trainer and their
// active students. Admins may write to anyone.
type MessageService interface {
	Send(ctx context.Context, senderID, recipientID primitive.ObjectID, content string) (*domain.Message, error)
	Conversation(ctx context.Context, callerID, otherID primitive.ObjectID, limit int64) ([]domain.Message, error)
	MarkRead(ctx context.Context, callerID, otherID primitive.ObjectID) (int64, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    notifier
}

// NewMessageService creates a new MessageService.
func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository, pub realtime.Publisher, logger *zap.Logger) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifier:    newNotifier(pub, logger),
	}
}

// linked reports whether a and b are a trainer and one of their active students.
func linked(a, b *domain.User) bool {
	return a.HasActiveTrainer(b.ID) || b.HasActiveTrainer(a.ID)
}

func (s *messageService) Send(ctx context.Context, senderID, recipientID primitive.ObjectID, content string) (*domain.Message, error) {
	// 1. Validate Input
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > maxMessageLength {
		return nil, fmt.Errorf("%w: message longer than %d bytes", ErrValidation, maxMessageLength)
	}
	if senderID == recipientID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrValidation)
	}

	// 2. Check the pair
	sender, err := getUser(ctx, s.userRepo, senderID)
	if err != nil {
		return nil, err
	}
	recipient, err := getUser(ctx, s.userRepo, recipientID)
	if err != nil {
		return nil, err
	}
	// Admins can write to anyone, and anyone can answer an admin.
	if !sender.IsAdmin() && !recipient.IsAdmin() && !linked(sender, recipient) {
		return nil, ErrMessagingNotAllowed
	}

	// 3. Save and notify
	msg := &domain.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
	}
	id, err := s.messageRepo.Create(ctx, msg)
	if err != nil {
		return nil, err
	}
	msg.ID = id
	s.notifier.notify(ctx, recipientID, EventMessageReceived, msg)
	return msg, nil
}

func (s *messageService) Conversation(ctx context.Context, callerID, otherID primitive.ObjectID, limit int64) ([]domain.Message, error) {
	if limit <= 0 {
		limit = defaultConversationLimit
	}
	if limit > maxConversationLimit {
		limit = maxConversationLimit
	}
	return s.messageRepo.Conversation(ctx, callerID, otherID, limit)
}

// MarkRead flags everything otherID sent to callerID as read.
func (s *messageService) MarkRead(ctx context.Context, callerID, otherID primitive.ObjectID) (int64, error) {
	return s.messageRepo.MarkRead(ctx, otherID, callerID)
}
