package events

import (
	"time"

	"github.com/spec-kit/opsdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketEscalated     EventType = "ticket_escalated"
	EventTicketCommentAdded  EventType = "ticket_comment_added"
	EventTicketOverdue       EventType = "ticket_overdue"
	EventClientOnboarded     EventType = "client_onboarded"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketType domain.TicketType     `json:"ticket_type"`
	Priority   domain.TicketPriority `json:"priority"`
	ClientID   *string               `json:"client_id,omitempty"`
	DueDate    time.Time             `json:"due_date"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	EscalationLevel int    `json:"escalation_level"`
	Reason          string `json:"reason,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID  string `json:"comment_id"`
	IsInternal bool   `json:"is_internal"`
}

// TicketOverduePayload payload.
type TicketOverduePayload struct {
	DueDate      time.Time `json:"due_date"`
	HoursOverdue int       `json:"hours_overdue"`
}

// ClientOnboardedPayload payload.
type ClientOnboardedPayload struct {
	ClientID string `json:"client_id"`
	FullName string `json:"full_name"`
}
