package service

import (
	"context"
	"fmt"

	"spaced-learning-be/internal/pkg/logger"
	"spaced-learning-be/internal/websocket"
	"spaced-learning-be/pkg/events"
	pkgNats "spaced-learning-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time updates. Implemented by
// the websocket hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notice websocket.Notice)
}

// NotificationService bridges the event bus to connected clients: a study
// client hears about completed sessions and freshly generated distractor
// sets without polling.
type NotificationService struct {
	subscriber *pkgNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pkgNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("study.>", "study-notif-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start event subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("NotificationService", "Listening to study.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	rawUserId, ok := payload["user_id"].(string)
	if !ok {
		s.logger.Warn("NotificationService", fmt.Sprintf("Event %s has no user_id, dropping", event.EventType()), nil)
		return nil
	}
	userId, err := uuid.Parse(rawUserId)
	if err != nil {
		s.logger.Warn("NotificationService", "Event carries malformed user_id", map[string]interface{}{"user_id": rawUserId})
		return nil
	}

	s.delivery.Send(userId, websocket.Notice{
		Type: event.EventType(),
		Data: payload,
	})
	return nil
}
