package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/opsdesk-service/internal/domain"
)

// TicketFileRepository records attachment objects linked to tickets.
type TicketFileRepository interface {
	Create(ctx context.Context, file *domain.TicketFile) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketFile, error)
}

type ticketFileRepository struct {
	pool *pgxpool.Pool
}

// NewTicketFileRepository builds repository.
func NewTicketFileRepository(pool *pgxpool.Pool) TicketFileRepository {
	return &ticketFileRepository{pool: pool}
}

func (r *ticketFileRepository) Create(ctx context.Context, file *domain.TicketFile) error {
	const query = `
        INSERT INTO ticket_files (id, ticket_id, uploaded_by, file_path, file_name, size_bytes)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		file.ID,
		file.TicketID,
		file.UploadedBy,
		file.FilePath,
		file.FileName,
		file.SizeBytes,
	).Scan(&file.CreatedAt)
}

func (r *ticketFileRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketFile, error) {
	const query = `
        SELECT id, ticket_id, uploaded_by, file_path, file_name, size_bytes, created_at
        FROM ticket_files WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketFile
	for rows.Next() {
		var file domain.TicketFile
		if err := rows.Scan(
			&file.ID,
			&file.TicketID,
			&file.UploadedBy,
			&file.FilePath,
			&file.FileName,
			&file.SizeBytes,
			&file.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, file)
	}
	return result, rows.Err()
}
