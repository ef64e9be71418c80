package domain

import "time"

// Comment is an append-only note on a ticket. A resolution is an ordinary
// comment followed by a status transition, not a distinct entity.
type Comment struct {
	ID         string
	TicketID   string
	AuthorID   string
	Content    string
	IsInternal bool
	CreatedAt  time.Time
}
