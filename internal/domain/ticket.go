package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen             TicketStatus = "open"
	TicketStatusInProgress       TicketStatus = "in_progress"
	TicketStatusResolved         TicketStatus = "resolved"
	TicketStatusEscalated        TicketStatus = "escalated"
	TicketStatusClosed           TicketStatus = "closed"
	TicketStatusManagerAttention TicketStatus = "manager_attention"
	TicketStatusForwarded        TicketStatus = "forwarded"
	TicketStatusReplied          TicketStatus = "replied"
)

// Terminal reports whether no further transitions are allowed from s.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates SLA urgency tiers.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// Ticket is the aggregate for operational requests. Priority, SLAHours and
// DueDate are stamped from the SLA table at creation and never recomputed.
type Ticket struct {
	ID              string
	Type            TicketType
	Title           string
	Description     string
	Status          TicketStatus
	Priority        TicketPriority
	SLAHours        int
	ClientID        *string
	CreatedBy       string
	CreatedByClient bool
	EscalationLevel int
	Metadata        TicketMetadata
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DueDate         time.Time
}
