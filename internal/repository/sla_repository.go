package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/opsdesk-service/internal/domain"
)

// SLARepository reads the SLA configuration rows. The table is reference
// data: one row per ticket type, maintained out of band.
type SLARepository interface {
	ListAll(ctx context.Context) ([]domain.SLAConfig, error)
}

type slaRepository struct {
	pool *pgxpool.Pool
}

// NewSLARepository builds repository.
func NewSLARepository(pool *pgxpool.Pool) SLARepository {
	return &slaRepository{pool: pool}
}

func (r *slaRepository) ListAll(ctx context.Context) ([]domain.SLAConfig, error) {
	const query = `SELECT ticket_type, hours, priority FROM sla_configs ORDER BY ticket_type`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLAConfig
	for rows.Next() {
		var cfg domain.SLAConfig
		if err := rows.Scan(&cfg.TicketType, &cfg.Hours, &cfg.Priority); err != nil {
			return nil, err
		}
		result = append(result, cfg)
	}
	return result, rows.Err()
}
