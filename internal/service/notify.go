package service

import (
	"alcyxob/fitcoach/internal/realtime"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Event types published to user notification channels.
const (
	EventLinkRequested      = "link_requested"
	EventLinkApproved       = "link_approved"
	EventLinkRejected       = "link_rejected"
	EventLinkRemoved        = "link_removed"
	EventSuggestionCreated  = "suggestion_created"
	EventSuggestionAnswered = "suggestion_answered"
	EventTaskCreated        = "task_created"
	EventTaskUpdated        = "task_updated"
	EventPlanAssigned       = "plan_assigned"
	EventPlanCompleted      = "plan_completed"
	EventMessageReceived    = "message_received"
)

// notifier publishes change events. Delivery is best effort: a failed
// publish is logged and never fails the write that triggered it.
type notifier struct {
	pub    realtime.Publisher
	logger *zap.Logger
}

func newNotifier(pub realtime.Publisher, logger *zap.Logger) notifier {
	return notifier{pub: pub, logger: logger}
}

func (n notifier) notify(ctx context.Context, userID primitive.ObjectID, eventType string, data interface{}) {
	if n.pub == nil {
		return
	}
	err := n.pub.Publish(ctx, userID.Hex(), realtime.Event{Type: eventType, Data: data, At: time.Now().UTC()})
	if err != nil {
		n.logger.Warn("notification publish failed",
			zap.String("user_id", userID.Hex()),
			zap.String("event", eventType),
			zap.Error(err))
	}
}
