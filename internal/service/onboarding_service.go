package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/opsdesk-service/internal/auth"
	"github.com/spec-kit/opsdesk-service/internal/domain"
	"github.com/spec-kit/opsdesk-service/internal/events"
	"github.com/spec-kit/opsdesk-service/internal/repository"
	apperrors "github.com/spec-kit/opsdesk-service/pkg/util"
)

// OnboardingService covers the client intake flow: a staff member submits a
// pending client, an executive approves it, and approval produces both the
// client record and a login account.
type OnboardingService struct {
	clients    repository.ClientRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	now        func() time.Time
}

// NewOnboardingService constructs the service.
func NewOnboardingService(clients repository.ClientRepository, users repository.UserRepository, dispatcher events.Dispatcher, bcryptCost int, logger *zap.Logger, now func() time.Time) *OnboardingService {
	if now == nil {
		now = time.Now
	}
	return &OnboardingService{
		clients:    clients,
		users:      users,
		dispatcher: dispatcher,
		logger:     logger,
		bcryptCost: bcryptCost,
		now:        now,
	}
}

// PendingClientInput is an onboarding submission.
type PendingClientInput struct {
	FullName            string
	PersonalEmail       string
	WhatsappNumber      string
	CallablePhone       string
	CompanyEmail        string
	JobRolePreferences  []string
	SalaryRange         string
	LocationPreferences []string
	WorkAuthDetails     string
}

// SubmitPending records a new onboarding submission. Any staff role with the
// client-picking capability may submit; clients may not.
func (s *OnboardingService) SubmitPending(ctx context.Context, actor *domain.User, input PendingClientInput) (*domain.PendingClient, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	if !domain.Capabilities(actor.Role).CanPickClient {
		return nil, apperrors.NewPermissionDenied("role may not submit client onboarding")
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, apperrors.NewValidationError("full name required", nil)
	}
	if strings.TrimSpace(input.PersonalEmail) == "" {
		return nil, apperrors.NewValidationError("personal email required", nil)
	}

	pending := &domain.PendingClient{
		ID:                  uuid.NewString(),
		FullName:            strings.TrimSpace(input.FullName),
		PersonalEmail:       strings.ToLower(strings.TrimSpace(input.PersonalEmail)),
		WhatsappNumber:      input.WhatsappNumber,
		CallablePhone:       input.CallablePhone,
		CompanyEmail:        strings.ToLower(strings.TrimSpace(input.CompanyEmail)),
		JobRolePreferences:  input.JobRolePreferences,
		SalaryRange:         input.SalaryRange,
		LocationPreferences: input.LocationPreferences,
		WorkAuthDetails:     input.WorkAuthDetails,
		SubmittedBy:         actor.ID,
	}
	if err := s.clients.CreatePending(ctx, pending); err != nil {
		return nil, apperrors.MapError(err)
	}
	return pending, nil
}

// ListPending returns submissions awaiting approval.
func (s *OnboardingService) ListPending(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.PendingClient, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	if !domain.Capabilities(actor.Role).IsExecutive {
		return nil, apperrors.NewPermissionDenied("only executives may review onboarding")
	}
	pending, err := s.clients.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return pending, nil
}

// ApprovalResult reports a completed approval. AccountWarning is set when the
// client record exists but the login account could not be provisioned; the
// approval itself stands and the account can be created again.
type ApprovalResult struct {
	Client         *domain.Client
	AccountWarning error
}

// Approve promotes a pending submission into a client record plus a client
// login. Approval is executive-only and idempotent-safe: an already approved
// submission conflicts instead of producing a second client.
func (s *OnboardingService) Approve(ctx context.Context, actor *domain.User, pendingID, initialPassword string) (*ApprovalResult, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	if !domain.Capabilities(actor.Role).IsExecutive {
		return nil, apperrors.NewPermissionDenied("only executives may approve onboarding")
	}
	if strings.TrimSpace(initialPassword) == "" {
		return nil, apperrors.NewValidationError("initial password required", nil)
	}

	pending, err := s.clients.GetPendingByID(ctx, pendingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("pending client", map[string]any{"pending_id": pendingID})
		}
		return nil, apperrors.MapError(err)
	}
	if pending.ApprovedAt != nil {
		return nil, apperrors.NewConflict("submission already approved", nil)
	}

	client := &domain.Client{
		ID:                 uuid.NewString(),
		FullName:           pending.FullName,
		PersonalEmail:      pending.PersonalEmail,
		CompanyEmail:       pending.CompanyEmail,
		JobRolePreferences: pending.JobRolePreferences,
	}
	if err := s.clients.CreateClient(ctx, client); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.clients.MarkApproved(ctx, pending.ID, s.now()); err != nil {
		return nil, apperrors.NewDependencyFailure("client created but approval mark failed", true, err)
	}

	hash, err := auth.HashPassword(initialPassword, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	account := &domain.User{
		ID:           uuid.NewString(),
		Name:         client.FullName,
		Email:        client.PersonalEmail,
		PasswordHash: hash,
		Role:         domain.RoleClient,
		Status:       domain.UserStatusActive,
	}
	var accountWarning error
	if err := s.users.Create(ctx, account); err != nil {
		// The client record stands; the account can be provisioned again.
		accountWarning = apperrors.NewDependencyFailure("client approved but account provisioning failed", true, err)
		s.logger.Warn("client approved but account creation failed",
			zap.String("client_id", client.ID), zap.Error(err))
	}

	s.logger.Info("client onboarded",
		zap.String("client_id", client.ID),
		zap.String("approved_by", actor.ID))

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventClientOnboarded,
			Actor:     events.Actor{UserID: actor.ID, Role: actor.Role},
			Timestamp: s.now(),
			Payload: events.ClientOnboardedPayload{
				ClientID: client.ID,
				FullName: client.FullName,
			},
		})
	}
	return &ApprovalResult{Client: client, AccountWarning: accountWarning}, nil
}

// ListClients returns onboarded clients for staff pickers.
func (s *OnboardingService) ListClients(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.Client, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	if actor.IsClient() {
		return nil, apperrors.NewPermissionDenied("clients may not list client records")
	}
	clients, err := s.clients.ListClients(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return clients, nil
}
