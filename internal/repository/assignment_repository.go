package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/opsdesk-service/internal/domain"
)

// AssignmentRepository manages the ticket/user assignment relation.
type AssignmentRepository interface {
	Add(ctx context.Context, assignment *domain.Assignment) error
	Exists(ctx context.Context, ticketID, userID string) (bool, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Assignment, error)
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository builds repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

func (r *assignmentRepository) Add(ctx context.Context, assignment *domain.Assignment) error {
	const query = `
        INSERT INTO ticket_assignments (ticket_id, user_id)
        VALUES ($1,$2)
        ON CONFLICT (ticket_id, user_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, assignment.TicketID, assignment.UserID)
	return err
}

func (r *assignmentRepository) Exists(ctx context.Context, ticketID, userID string) (bool, error) {
	const query = `
        SELECT EXISTS (SELECT 1 FROM ticket_assignments WHERE ticket_id=$1 AND user_id=$2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, ticketID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *assignmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Assignment, error) {
	const query = `
        SELECT ticket_id, user_id, created_at
        FROM ticket_assignments WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Assignment
	for rows.Next() {
		var assignment domain.Assignment
		if err := rows.Scan(&assignment.TicketID, &assignment.UserID, &assignment.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, assignment)
	}
	return result, rows.Err()
}
