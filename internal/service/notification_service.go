package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/opsdesk-service/internal/events"
)

// NotificationService reacts to domain events. Delivery today is structured
// log output; channel integrations hang off the same subscriptions.
type NotificationService struct {
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(logger *zap.Logger) *NotificationService {
	return &NotificationService{logger: logger}
}

// Register subscribes the service to every event type it handles.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, s.onEvent("ticket created"))
	dispatcher.Subscribe(events.EventTicketStatusChanged, s.onEvent("ticket status changed"))
	dispatcher.Subscribe(events.EventTicketEscalated, s.onEvent("ticket escalated"))
	dispatcher.Subscribe(events.EventTicketCommentAdded, s.onEvent("ticket comment added"))
	dispatcher.Subscribe(events.EventTicketOverdue, s.onEvent("ticket overdue"))
	dispatcher.Subscribe(events.EventClientOnboarded, s.onEvent("client onboarded"))
}

func (s *NotificationService) onEvent(message string) events.EventHandler {
	return func(_ context.Context, event events.Event) error {
		s.logger.Info(message,
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.String("actor_id", event.Actor.UserID),
			zap.Any("payload", event.Payload),
		)
		return nil
	}
}
