package domain

// SLAConfig maps a ticket type to its priority and response-time allowance.
// Rows are sourced from configuration and treated as read-only input; a
// ticket locks in the values that were current at creation time.
type SLAConfig struct {
	TicketType TicketType
	Hours      int
	Priority   TicketPriority
}

// SLAState classifies a ticket against its due date.
type SLAState string

const (
	SLAOnTime  SLAState = "on_time"
	SLAOverdue SLAState = "overdue"
)
