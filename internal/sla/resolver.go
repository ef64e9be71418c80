// Package sla implements the pure SLA rules: resolving a ticket type to its
// priority and hour allowance, and classifying tickets against their due
// date. Nothing here performs I/O; callers supply the table and the clock.
package sla

import (
	"errors"

	"github.com/spec-kit/opsdesk-service/internal/domain"
)

// ErrConfigurationMissing signals that no SLA entry exists for a requested
// ticket type. Callers must refuse to create the ticket rather than default
// to an arbitrary priority.
var ErrConfigurationMissing = errors.New("sla configuration missing for ticket type")

// Table indexes SLA configuration rows by ticket type.
type Table map[domain.TicketType]domain.SLAConfig

// NewTable builds a lookup table from configuration rows. Later rows for the
// same ticket type overwrite earlier ones; ticket_type is the unique key.
func NewTable(configs []domain.SLAConfig) Table {
	table := make(Table, len(configs))
	for _, cfg := range configs {
		table[cfg.TicketType] = cfg
	}
	return table
}

// Resolve returns the SLA row for a ticket type, or ErrConfigurationMissing
// when the table has no entry for it.
func Resolve(ticketType domain.TicketType, table Table) (domain.SLAConfig, error) {
	cfg, ok := table[ticketType]
	if !ok {
		return domain.SLAConfig{}, ErrConfigurationMissing
	}
	return cfg, nil
}
