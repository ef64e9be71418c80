package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/opsdesk-service/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	CreatedBy   *string
	ClientID    *string
	Types       []domain.TicketType
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	UpdateStatus(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListOpenPastDue(ctx context.Context, now time.Time) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, type, title, description, status, priority, sla_hours,
       client_id, created_by, created_by_client, escalation_level, metadata,
       created_at, updated_at, due_date`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	metadata, err := encodeMetadata(ticket.Metadata)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO tickets (id, type, title, description, status, priority, sla_hours,
            client_id, created_by, created_by_client, escalation_level, metadata,
            created_at, updated_at, due_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
	_, err = r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Type,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.SLAHours,
		ticket.ClientID,
		ticket.CreatedBy,
		ticket.CreatedByClient,
		ticket.EscalationLevel,
		metadata,
		ticket.CreatedAt,
		ticket.UpdatedAt,
		ticket.DueDate,
	)
	return err
}

// UpdateStatus persists a transition: status, escalation level and updated_at
// only. Due date and priority are SLA-locked and never rewritten.
func (r *ticketRepository) UpdateStatus(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, escalation_level=$2, updated_at=$3
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Status,
		ticket.EscalationLevel,
		ticket.UpdatedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTicket(row)
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		clauses = append(clauses, fmt.Sprintf("client_id=$%d", len(args)))
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			args = append(args, t)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("type IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// ListOpenPastDue returns non-terminal tickets whose due date has passed.
func (r *ticketRepository) ListOpenPastDue(ctx context.Context, now time.Time) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets
        WHERE status NOT IN ($1,$2) AND due_date < $3
        ORDER BY due_date ASC`
	rows, err := r.pool.Query(ctx, query, domain.TicketStatusResolved, domain.TicketStatusClosed, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket  domain.Ticket
		rawMeta []byte
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Type,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.SLAHours,
		&ticket.ClientID,
		&ticket.CreatedBy,
		&ticket.CreatedByClient,
		&ticket.EscalationLevel,
		&rawMeta,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.DueDate,
	); err != nil {
		return nil, err
	}
	metadata, err := decodeMetadata(ticket.Type, rawMeta)
	if err != nil {
		return nil, err
	}
	ticket.Metadata = metadata
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

// Metadata is stored as a jsonb document whose shape is fixed by the ticket
// type; the type column is the discriminator.

type volumeShortfallRecord struct {
	ExpectedApplications int    `json:"expected_applications"`
	ActualApplications   int    `json:"actual_applications"`
	TimePeriod           string `json:"time_period"`
	Notes                string `json:"notes"`
	ForwardedToScraping  bool   `json:"forwarded_to_ca_scraping"`
}

type dataMismatchRecord struct {
	Field         string `json:"field"`
	ExpectedValue string `json:"expected_value"`
	ActualValue   string `json:"actual_value"`
	Notes         string `json:"notes"`
}

func encodeMetadata(metadata domain.TicketMetadata) ([]byte, error) {
	switch m := metadata.(type) {
	case nil:
		return []byte("{}"), nil
	case domain.VolumeShortfallDetails:
		return json.Marshal(volumeShortfallRecord{
			ExpectedApplications: m.ExpectedApplications,
			ActualApplications:   m.ActualApplications,
			TimePeriod:           m.TimePeriod,
			Notes:                m.Notes,
			ForwardedToScraping:  m.ForwardedToScraping,
		})
	case domain.DataMismatchDetails:
		return json.Marshal(dataMismatchRecord{
			Field:         m.Field,
			ExpectedValue: m.ExpectedValue,
			ActualValue:   m.ActualValue,
			Notes:         m.Notes,
		})
	default:
		return nil, fmt.Errorf("unknown ticket metadata %T", metadata)
	}
}

func decodeMetadata(ticketType domain.TicketType, raw []byte) (domain.TicketMetadata, error) {
	if len(raw) == 0 || string(raw) == "{}" || string(raw) == "null" {
		return nil, nil
	}
	switch ticketType {
	case domain.TicketTypeVolumeShortfall:
		var record volumeShortfallRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, err
		}
		return domain.VolumeShortfallDetails{
			ExpectedApplications: record.ExpectedApplications,
			ActualApplications:   record.ActualApplications,
			TimePeriod:           record.TimePeriod,
			Notes:                record.Notes,
			ForwardedToScraping:  record.ForwardedToScraping,
		}, nil
	case domain.TicketTypeDataMismatch:
		var record dataMismatchRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, err
		}
		return domain.DataMismatchDetails{
			Field:         record.Field,
			ExpectedValue: record.ExpectedValue,
			ActualValue:   record.ActualValue,
			Notes:         record.Notes,
		}, nil
	default:
		return nil, nil
	}
}
