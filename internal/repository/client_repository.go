package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/opsdesk-service/internal/domain"
)

// ClientRepository manages onboarded clients and pending submissions.
type ClientRepository interface {
	CreateClient(ctx context.Context, client *domain.Client) error
	GetClientByID(ctx context.Context, id string) (*domain.Client, error)
	GetClientByEmail(ctx context.Context, personalEmail string) (*domain.Client, error)
	ListClients(ctx context.Context, limit, offset int) ([]domain.Client, error)

	CreatePending(ctx context.Context, pending *domain.PendingClient) error
	GetPendingByID(ctx context.Context, id string) (*domain.PendingClient, error)
	ListPending(ctx context.Context, limit, offset int) ([]domain.PendingClient, error)
	MarkApproved(ctx context.Context, id string, at time.Time) error
}

type clientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository builds repository.
func NewClientRepository(pool *pgxpool.Pool) ClientRepository {
	return &clientRepository{pool: pool}
}

func (r *clientRepository) CreateClient(ctx context.Context, client *domain.Client) error {
	const query = `
        INSERT INTO clients (id, full_name, personal_email, company_email, job_role_preferences)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		client.ID,
		client.FullName,
		client.PersonalEmail,
		client.CompanyEmail,
		client.JobRolePreferences,
	).Scan(&client.CreatedAt)
}

func (r *clientRepository) GetClientByID(ctx context.Context, id string) (*domain.Client, error) {
	const query = `
        SELECT id, full_name, personal_email, company_email, job_role_preferences, created_at
        FROM clients WHERE id=$1`
	return r.fetchClient(ctx, query, id)
}

// GetClientByEmail locates the client record for a client-role login; the
// personal email is the join key between users and clients.
func (r *clientRepository) GetClientByEmail(ctx context.Context, personalEmail string) (*domain.Client, error) {
	const query = `
        SELECT id, full_name, personal_email, company_email, job_role_preferences, created_at
        FROM clients WHERE LOWER(personal_email)=LOWER($1)`
	return r.fetchClient(ctx, query, personalEmail)
}

func (r *clientRepository) fetchClient(ctx context.Context, query string, arg any) (*domain.Client, error) {
	var client domain.Client
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&client.ID,
		&client.FullName,
		&client.PersonalEmail,
		&client.CompanyEmail,
		&client.JobRolePreferences,
		&client.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) ListClients(ctx context.Context, limit, offset int) ([]domain.Client, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, full_name, personal_email, company_email, job_role_preferences, created_at
        FROM clients ORDER BY full_name ASC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Client
	for rows.Next() {
		var client domain.Client
		if err := rows.Scan(
			&client.ID,
			&client.FullName,
			&client.PersonalEmail,
			&client.CompanyEmail,
			&client.JobRolePreferences,
			&client.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, client)
	}
	return result, rows.Err()
}

func (r *clientRepository) CreatePending(ctx context.Context, pending *domain.PendingClient) error {
	const query = `
        INSERT INTO pending_clients (id, full_name, personal_email, whatsapp_number, callable_phone,
            company_email, job_role_preferences, salary_range, location_preferences,
            work_auth_details, submitted_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		pending.ID,
		pending.FullName,
		pending.PersonalEmail,
		pending.WhatsappNumber,
		pending.CallablePhone,
		pending.CompanyEmail,
		pending.JobRolePreferences,
		pending.SalaryRange,
		pending.LocationPreferences,
		pending.WorkAuthDetails,
		pending.SubmittedBy,
	).Scan(&pending.CreatedAt)
}

func (r *clientRepository) GetPendingByID(ctx context.Context, id string) (*domain.PendingClient, error) {
	const query = `
        SELECT id, full_name, personal_email, whatsapp_number, callable_phone, company_email,
               job_role_preferences, salary_range, location_preferences, work_auth_details,
               submitted_by, approved_at, created_at
        FROM pending_clients WHERE id=$1`
	var pending domain.PendingClient
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&pending.ID,
		&pending.FullName,
		&pending.PersonalEmail,
		&pending.WhatsappNumber,
		&pending.CallablePhone,
		&pending.CompanyEmail,
		&pending.JobRolePreferences,
		&pending.SalaryRange,
		&pending.LocationPreferences,
		&pending.WorkAuthDetails,
		&pending.SubmittedBy,
		&pending.ApprovedAt,
		&pending.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &pending, nil
}

func (r *clientRepository) ListPending(ctx context.Context, limit, offset int) ([]domain.PendingClient, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, full_name, personal_email, whatsapp_number, callable_phone, company_email,
               job_role_preferences, salary_range, location_preferences, work_auth_details,
               submitted_by, approved_at, created_at
        FROM pending_clients WHERE approved_at IS NULL
        ORDER BY created_at ASC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PendingClient
	for rows.Next() {
		var pending domain.PendingClient
		if err := rows.Scan(
			&pending.ID,
			&pending.FullName,
			&pending.PersonalEmail,
			&pending.WhatsappNumber,
			&pending.CallablePhone,
			&pending.CompanyEmail,
			&pending.JobRolePreferences,
			&pending.SalaryRange,
			&pending.LocationPreferences,
			&pending.WorkAuthDetails,
			&pending.SubmittedBy,
			&pending.ApprovedAt,
			&pending.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, pending)
	}
	return result, rows.Err()
}

func (r *clientRepository) MarkApproved(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE pending_clients SET approved_at=$1 WHERE id=$2 AND approved_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
