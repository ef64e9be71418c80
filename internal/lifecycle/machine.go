// Package lifecycle defines the ticket state machine: which statuses exist,
// which transitions are legal, and who may perform them. All checks are pure
// functions over caller-supplied values.
package lifecycle

import (
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/opsdesk-service/internal/domain"
)

var (
	// ErrPermissionDenied means the actor lacks the role or assignment to
	// transition the ticket. The read path stays available.
	ErrPermissionDenied = errors.New("actor may not transition this ticket")
	// ErrTerminalState means the ticket is resolved or closed and accepts no
	// further transitions.
	ErrTerminalState = errors.New("ticket is in a terminal state")
	// ErrInvalidTransition means the target status is not reachable from the
	// current one.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrEmptyResolution means the resolve transition was attempted without a
	// resolution comment.
	ErrEmptyResolution = errors.New("resolution comment required")
)

// Actor is the acting identity, supplied as trusted input by the identity
// collaborator, plus whether the actor appears in the ticket's assignment
// set.
type Actor struct {
	ID       string
	Role     domain.Role
	Assigned bool
}

var transitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen: {
		domain.TicketStatusInProgress,
		domain.TicketStatusReplied,
		domain.TicketStatusForwarded,
		domain.TicketStatusManagerAttention,
		domain.TicketStatusEscalated,
		domain.TicketStatusResolved,
	},
	domain.TicketStatusInProgress: {
		domain.TicketStatusReplied,
		domain.TicketStatusForwarded,
		domain.TicketStatusManagerAttention,
		domain.TicketStatusEscalated,
		domain.TicketStatusResolved,
		domain.TicketStatusClosed,
	},
	domain.TicketStatusReplied: {
		domain.TicketStatusInProgress,
		domain.TicketStatusForwarded,
		domain.TicketStatusManagerAttention,
		domain.TicketStatusEscalated,
		domain.TicketStatusResolved,
		domain.TicketStatusClosed,
	},
	domain.TicketStatusForwarded: {
		domain.TicketStatusInProgress,
		domain.TicketStatusReplied,
		domain.TicketStatusManagerAttention,
		domain.TicketStatusEscalated,
		domain.TicketStatusResolved,
		domain.TicketStatusClosed,
	},
	domain.TicketStatusManagerAttention: {
		domain.TicketStatusInProgress,
		domain.TicketStatusEscalated,
		domain.TicketStatusResolved,
		domain.TicketStatusClosed,
	},
	domain.TicketStatusEscalated: {
		domain.TicketStatusInProgress,
		domain.TicketStatusManagerAttention,
		domain.TicketStatusResolved,
		domain.TicketStatusClosed,
	},
	domain.TicketStatusResolved: {},
	domain.TicketStatusClosed:   {},
}

// CanTransition reports whether next is reachable from current.
func CanTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range transitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Authorize checks that the actor may move the ticket to the target status.
// Clients may never transition; everyone else needs an executive role or an
// explicit assignment; resolving additionally requires a role with the
// resolve capability.
func Authorize(actor Actor, ticket *domain.Ticket, next domain.TicketStatus) error {
	if actor.Role == domain.RoleClient {
		return ErrPermissionDenied
	}
	if ticket.Status.Terminal() {
		return ErrTerminalState
	}
	if !CanTransition(ticket.Status, next) {
		return ErrInvalidTransition
	}
	caps := domain.Capabilities(actor.Role)
	if caps.IsExecutive {
		return nil
	}
	if !actor.Assigned {
		return ErrPermissionDenied
	}
	if next == domain.TicketStatusResolved && !caps.CanResolve {
		return ErrPermissionDenied
	}
	return nil
}

// ValidateResolution rejects empty or whitespace-only resolution comments
// before any write is attempted.
func ValidateResolution(comment string) error {
	if strings.TrimSpace(comment) == "" {
		return ErrEmptyResolution
	}
	return nil
}

// Apply mutates the ticket for a successful transition: the status flips,
// updatedAt is refreshed, and an escalation bumps the counter.
func Apply(ticket *domain.Ticket, next domain.TicketStatus, now time.Time) {
	if next == domain.TicketStatusEscalated {
		ticket.EscalationLevel++
	}
	ticket.Status = next
	ticket.UpdatedAt = now
}
