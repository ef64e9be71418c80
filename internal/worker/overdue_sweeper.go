// Package worker holds background loops that run beside the HTTP server.
package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/opsdesk-service/internal/events"
	"github.com/spec-kit/opsdesk-service/internal/repository"
	"github.com/spec-kit/opsdesk-service/internal/sla"
)

// OverdueSweeper periodically scans for non-terminal tickets past their due
// date and publishes an overdue event per ticket. Overdue is a derived view;
// the sweep never writes to the tickets table.
type OverdueSweeper struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	interval   time.Duration
	now        func() time.Time
}

// NewOverdueSweeper constructs the sweeper.
func NewOverdueSweeper(tickets repository.TicketRepository, dispatcher events.Dispatcher, interval time.Duration, logger *zap.Logger, now func() time.Time) *OverdueSweeper {
	if now == nil {
		now = time.Now
	}
	return &OverdueSweeper{
		tickets:    tickets,
		dispatcher: dispatcher,
		logger:     logger,
		interval:   interval,
		now:        now,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (w *OverdueSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("overdue sweeper started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("overdue sweeper stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs a single pass.
func (w *OverdueSweeper) Sweep(ctx context.Context) {
	now := w.now()
	tickets, err := w.tickets.ListOpenPastDue(ctx, now)
	if err != nil {
		w.logger.Error("overdue sweep failed", zap.Error(err))
		return
	}
	for i := range tickets {
		ticket := &tickets[i]
		verdict := sla.Classify(ticket, now)
		_ = w.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketOverdue,
			TicketID:  ticket.ID,
			Timestamp: now,
			Payload: events.TicketOverduePayload{
				DueDate:      ticket.DueDate,
				HoursOverdue: verdict.Hours,
			},
		})
	}
	if len(tickets) > 0 {
		w.logger.Info("overdue sweep", zap.Int("overdue_tickets", len(tickets)))
	}
}
