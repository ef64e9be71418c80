package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/opsdesk-service/internal/domain"
)

func openTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:     "tck-1",
		Status: domain.TicketStatusOpen,
	}
}

func TestClientNeverTransitions(t *testing.T) {
	actor := Actor{ID: "u1", Role: domain.RoleClient, Assigned: true}
	for _, next := range []domain.TicketStatus{
		domain.TicketStatusInProgress,
		domain.TicketStatusResolved,
		domain.TicketStatusEscalated,
	} {
		err := Authorize(actor, openTicket(), next)
		assert.ErrorIs(t, err, ErrPermissionDenied, "transition to %s", next)
	}
}

func TestExecutiveTransitionsWithoutAssignment(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleCRO, domain.RoleCOO, domain.RoleCEO} {
		actor := Actor{ID: "exec", Role: role}
		assert.NoError(t, Authorize(actor, openTicket(), domain.TicketStatusResolved), "role %s", role)
		assert.NoError(t, Authorize(actor, openTicket(), domain.TicketStatusEscalated), "role %s", role)
	}
}

func TestUnassignedNonExecutiveDenied(t *testing.T) {
	actor := Actor{ID: "am", Role: domain.RoleAccountManager, Assigned: false}
	err := Authorize(actor, openTicket(), domain.TicketStatusInProgress)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestAssignedAccountManagerResolves(t *testing.T) {
	actor := Actor{ID: "am", Role: domain.RoleAccountManager, Assigned: true}
	assert.NoError(t, Authorize(actor, openTicket(), domain.TicketStatusResolved))
}

func TestAssignedRoleWithoutResolveCapability(t *testing.T) {
	actor := Actor{ID: "ca", Role: domain.RoleCareerAssociate, Assigned: true}
	// May work the ticket, but not resolve it.
	assert.NoError(t, Authorize(actor, openTicket(), domain.TicketStatusInProgress))
	err := Authorize(actor, openTicket(), domain.TicketStatusResolved)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestTerminalStatesAcceptNothing(t *testing.T) {
	actor := Actor{ID: "exec", Role: domain.RoleCEO}
	for _, status := range []domain.TicketStatus{domain.TicketStatusResolved, domain.TicketStatusClosed} {
		ticket := openTicket()
		ticket.Status = status
		err := Authorize(actor, ticket, domain.TicketStatusInProgress)
		assert.ErrorIs(t, err, ErrTerminalState, "from %s", status)
	}
}

func TestUnreachableTransition(t *testing.T) {
	actor := Actor{ID: "exec", Role: domain.RoleCEO}
	ticket := openTicket()
	// open -> closed is not modeled; work must pass through another state.
	err := Authorize(actor, ticket, domain.TicketStatusClosed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestValidateResolution(t *testing.T) {
	assert.ErrorIs(t, ValidateResolution(""), ErrEmptyResolution)
	assert.ErrorIs(t, ValidateResolution("   \t\n"), ErrEmptyResolution)
	assert.NoError(t, ValidateResolution("replaced the feed mapping"))
}

func TestApplyRefreshesUpdatedAt(t *testing.T) {
	ticket := openTicket()
	now := time.Date(2025, 3, 11, 15, 0, 0, 0, time.UTC)
	Apply(ticket, domain.TicketStatusInProgress, now)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	assert.Equal(t, now, ticket.UpdatedAt)
	assert.Equal(t, 0, ticket.EscalationLevel)
}

func TestApplyEscalationBumpsCounter(t *testing.T) {
	ticket := openTicket()
	now := time.Now()
	Apply(ticket, domain.TicketStatusEscalated, now)
	assert.Equal(t, 1, ticket.EscalationLevel)
	assert.Equal(t, domain.TicketStatusEscalated, ticket.Status)

	Apply(ticket, domain.TicketStatusInProgress, now)
	Apply(ticket, domain.TicketStatusEscalated, now)
	assert.Equal(t, 2, ticket.EscalationLevel)
}
