package sla

import (
	"time"

	"github.com/spec-kit/opsdesk-service/internal/domain"
)

// DueDate derives the deadline from the creation instant and the SLA hour
// allowance. Computed once at creation and persisted; never recomputed even
// if the SLA table changes afterwards.
func DueDate(createdAt time.Time, hours int) time.Time {
	return createdAt.Add(time.Duration(hours) * time.Hour)
}

// Classification is the on-time/overdue verdict for a ticket at a read
// instant. Hours is the whole-hour magnitude: remaining when on time,
// elapsed past the deadline when overdue.
type Classification struct {
	State domain.SLAState
	Hours int
}

// Classify compares the ticket's due date against now. The exact due instant
// belongs to "remaining": delta zero is on_time with zero hours. Tickets in a
// terminal state are never overdue; overdue status is only meaningful for
// open work.
func Classify(ticket *domain.Ticket, now time.Time) Classification {
	if ticket.Status.Terminal() {
		return Classification{State: domain.SLAOnTime}
	}
	delta := ticket.DueDate.Sub(now)
	if delta < 0 {
		return Classification{State: domain.SLAOverdue, Hours: int(-delta / time.Hour)}
	}
	return Classification{State: domain.SLAOnTime, Hours: int(delta / time.Hour)}
}
