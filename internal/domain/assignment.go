package domain

import "time"

// Assignment grants a specific user the right to act on a specific ticket
// beyond their role's global permissions. Many-to-many, no ordering.
type Assignment struct {
	TicketID  string
	UserID    string
	CreatedAt time.Time
}
