package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/opsdesk-service/internal/domain"
	"github.com/spec-kit/opsdesk-service/internal/events"
	"github.com/spec-kit/opsdesk-service/internal/lifecycle"
	"github.com/spec-kit/opsdesk-service/internal/repository"
	"github.com/spec-kit/opsdesk-service/internal/sla"
	"github.com/spec-kit/opsdesk-service/internal/storage"
	apperrors "github.com/spec-kit/opsdesk-service/pkg/util"
)

// SLAProvider supplies the current SLA lookup table.
type SLAProvider interface {
	Table(ctx context.Context) (sla.Table, error)
}

// TicketService coordinates ticket workflows: creation with SLA stamping,
// the resolution transition, generic transitions, comments, assignments and
// attachments.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	assignments repository.AssignmentRepository
	files       repository.TicketFileRepository
	clients     repository.ClientRepository
	slas        SLAProvider
	store       storage.Store
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.CommentRepository
	AssignmentRepo repository.AssignmentRepository
	FileRepo       repository.TicketFileRepository
	ClientRepo     repository.ClientRepository
	SLAs           SLAProvider
	Store          storage.Store
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Now            func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		assignments: deps.AssignmentRepo,
		files:       deps.FileRepo,
		clients:     deps.ClientRepo,
		slas:        deps.SLAs,
		store:       deps.Store,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		now:         now,
	}
}

// AttachmentInput carries an optional upload supplied at creation.
type AttachmentInput struct {
	FileName    string
	ContentType string
	SizeBytes   int64
	Body        io.Reader
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Type        domain.TicketType
	Title       string
	Description string
	ClientID    *string
	Metadata    domain.TicketMetadata
	Attachment  *AttachmentInput
}

// TicketCreateResult is the creation outcome. AttachmentWarning is non-nil
// when the ticket row exists but the attachment upload or link failed; the
// failure is scoped to the attachment and never unwinds the ticket.
type TicketCreateResult struct {
	Ticket            *domain.Ticket
	AttachmentWarning error
}

// TicketDetail aggregates everything a read returns.
type TicketDetail struct {
	Ticket      *domain.Ticket
	Comments    []domain.Comment
	Files       []domain.TicketFile
	Assignments []domain.Assignment
	SLA         sla.Classification
	Timeline    []TimelineStep
}

// TimelineStep is one entry in the ordered progress view of a ticket:
// creation, the current working status, and the terminal outcome.
type TimelineStep struct {
	Status  domain.TicketStatus
	At      *time.Time
	Reached bool
}

func buildTimeline(ticket *domain.Ticket) []TimelineStep {
	createdAt := ticket.CreatedAt
	steps := []TimelineStep{{Status: domain.TicketStatusOpen, At: &createdAt, Reached: true}}
	if ticket.Status != domain.TicketStatusOpen {
		updatedAt := ticket.UpdatedAt
		steps = append(steps, TimelineStep{Status: ticket.Status, At: &updatedAt, Reached: true})
	}
	if !ticket.Status.Terminal() {
		steps = append(steps, TimelineStep{Status: domain.TicketStatusResolved})
	}
	return steps
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Types       []domain.TicketType
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// CreateTicket validates, stamps SLA values and persists a new ticket. The
// ticket row is the essential write; the attachment is best-effort.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*TicketCreateResult, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	if !input.Type.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket type", map[string]any{"type": input.Type})
	}
	caps := domain.Capabilities(actor.Role)
	if !caps.CanCreateType(input.Type) {
		return nil, apperrors.NewPermissionDenied("role may not create tickets of this type")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("description required", nil)
	}
	if input.Metadata != nil && input.Metadata.MetadataType() != input.Type {
		return nil, apperrors.NewValidationError("metadata does not match ticket type", nil)
	}

	table, err := s.slas.Table(ctx)
	if err != nil {
		return nil, apperrors.NewDependencyFailure("sla configuration unavailable", true, err)
	}
	cfg, err := sla.Resolve(input.Type, table)
	if err != nil {
		if errors.Is(err, sla.ErrConfigurationMissing) {
			return nil, apperrors.NewConfigurationMissing(string(input.Type))
		}
		return nil, apperrors.MapError(err)
	}

	clientID, err := s.resolveClientID(ctx, actor, input.ClientID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = input.Type.DefaultTitle()
	}

	now := s.now()
	ticket := &domain.Ticket{
		ID:              uuid.NewString(),
		Type:            input.Type,
		Title:           title,
		Description:     strings.TrimSpace(input.Description),
		Status:          domain.TicketStatusOpen,
		Priority:        cfg.Priority,
		SLAHours:        cfg.Hours,
		ClientID:        clientID,
		CreatedBy:       actor.ID,
		CreatedByClient: actor.IsClient(),
		EscalationLevel: 0,
		Metadata:        input.Metadata,
		CreatedAt:       now,
		UpdatedAt:       now,
		DueDate:         sla.DueDate(now, cfg.Hours),
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	result := &TicketCreateResult{Ticket: ticket}
	if input.Attachment != nil {
		result.AttachmentWarning = s.storeAttachment(ctx, actor.ID, ticket.ID, input.Attachment)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			TicketType: ticket.Type,
			Priority:   ticket.Priority,
			ClientID:   ticket.ClientID,
			DueDate:    ticket.DueDate,
		},
	})
	return result, nil
}

// GetTicket returns the full ticket view. Clients only see tickets tied to
// their own client record, and internal comments are filtered out for them.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID string) (*TicketDetail, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, actor, ticket); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if actor.IsClient() {
		visible := make([]domain.Comment, 0, len(comments))
		for _, comment := range comments {
			if !comment.IsInternal {
				visible = append(visible, comment)
			}
		}
		comments = visible
	}

	files, err := s.files.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	assignments, err := s.assignments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	return &TicketDetail{
		Ticket:      ticket,
		Comments:    comments,
		Files:       files,
		Assignments: assignments,
		SLA:         sla.Classify(ticket, s.now()),
		Timeline:    buildTimeline(ticket),
	}, nil
}

// ListTickets returns tickets visible to the actor. Clients are scoped to
// their own client record.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	repoFilter := repository.TicketFilter{
		Types:       filter.Types,
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if actor.IsClient() {
		client, err := s.clients.GetClientByEmail(ctx, actor.Email)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return []domain.Ticket{}, nil
			}
			return nil, apperrors.MapError(err)
		}
		repoFilter.ClientID = &client.ID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// AddComment appends a comment to a ticket. Clients are read-only and may
// not comment; internal comments are staff-only by construction.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, ticketID, content string, isInternal bool) (*domain.Comment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	if actor.IsClient() {
		return nil, apperrors.NewPermissionDenied("clients may not comment on tickets")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("comment content required", nil)
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ID:         uuid.NewString(),
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		Content:    strings.TrimSpace(content),
		IsInternal: isInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		Payload: events.TicketCommentAddedPayload{
			CommentID:  comment.ID,
			IsInternal: comment.IsInternal,
		},
	})
	return comment, nil
}

// Resolve performs the open -> resolved transition as one unit of work:
// the resolution comment is written first, then the status flips. A failed
// comment write aborts the transition; a failed status write after the
// comment succeeded is surfaced as retryable so the caller can complete the
// unit.
func (s *TicketService) Resolve(ctx context.Context, actor *domain.User, ticketID, resolutionComment string) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	if err := lifecycle.ValidateResolution(resolutionComment); err != nil {
		return nil, apperrors.NewValidationError("resolution comment required", nil)
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeTransition(ctx, actor, ticket, domain.TicketStatusResolved); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ID:         uuid.NewString(),
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		Content:    strings.TrimSpace(resolutionComment),
		IsInternal: false,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.NewDependencyFailure("resolution comment write failed", true, err)
	}

	oldStatus := ticket.Status
	lifecycle.Apply(ticket, domain.TicketStatusResolved, s.now())
	if err := s.tickets.UpdateStatus(ctx, ticket); err != nil {
		// The resolution comment is already persisted; the caller must retry
		// the status write to complete the unit of work.
		return nil, apperrors.NewDependencyFailure("status update failed after resolution comment", true, err)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			Comment:   comment.Content,
		},
	})
	return ticket, nil
}

// Transition moves a ticket to the target status. Resolution must go through
// Resolve so the comment-then-status ordering holds.
func (s *TicketService) Transition(ctx context.Context, actor *domain.User, ticketID string, next domain.TicketStatus) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	if next == domain.TicketStatusResolved {
		return nil, apperrors.NewValidationError("resolution requires a resolution comment", nil)
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeTransition(ctx, actor, ticket, next); err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	lifecycle.Apply(ticket, next, s.now())
	if err := s.tickets.UpdateStatus(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	eventType := events.EventTicketStatusChanged
	var payload any = events.TicketStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: ticket.Status,
	}
	if next == domain.TicketStatusEscalated {
		eventType = events.EventTicketEscalated
		payload = events.TicketEscalatedPayload{EscalationLevel: ticket.EscalationLevel}
	}
	s.publishEvent(ctx, actor, events.Event{
		Type:     eventType,
		TicketID: ticket.ID,
		Payload:  payload,
	})
	return ticket, nil
}

// AssignUser grants a user the right to act on a ticket. Executives and
// already-assigned users may extend the assignment set.
func (s *TicketService) AssignUser(ctx context.Context, actor *domain.User, ticketID, userID string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if actor.IsClient() {
		return apperrors.NewPermissionDenied("clients may not assign tickets")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.Status.Terminal() {
		return apperrors.NewConflict("ticket is in a terminal state", nil)
	}
	caps := domain.Capabilities(actor.Role)
	if !caps.IsExecutive {
		assigned, err := s.assignments.Exists(ctx, ticket.ID, actor.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if !assigned {
			return apperrors.NewPermissionDenied("actor may not assign this ticket")
		}
	}
	if err := s.assignments.Add(ctx, &domain.Assignment{TicketID: ticket.ID, UserID: userID}); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// UploadAttachment stores a file for an existing ticket and links it.
func (s *TicketService) UploadAttachment(ctx context.Context, actor *domain.User, ticketID string, input AttachmentInput) (*domain.TicketFile, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, actor, ticket); err != nil {
		return nil, err
	}

	key := storage.AttachmentKey(ticket.ID, input.FileName, s.now())
	if err := s.store.Upload(ctx, key, input.Body, input.ContentType, input.SizeBytes); err != nil {
		return nil, apperrors.NewDependencyFailure("attachment upload failed", false, err)
	}
	file := &domain.TicketFile{
		ID:         uuid.NewString(),
		TicketID:   ticket.ID,
		UploadedBy: actor.ID,
		FilePath:   key,
		FileName:   input.FileName,
		SizeBytes:  input.SizeBytes,
	}
	if err := s.files.Create(ctx, file); err != nil {
		return nil, apperrors.NewDependencyFailure("attachment stored but link failed", true, err)
	}
	return file, nil
}

// FileURL returns a time-limited download URL for a ticket attachment.
func (s *TicketService) FileURL(ctx context.Context, actor *domain.User, ticketID, fileID string) (string, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return "", err
	}
	if err := s.authorizeRead(ctx, actor, ticket); err != nil {
		return "", err
	}
	files, err := s.files.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	for _, file := range files {
		if file.ID == fileID {
			url, err := s.store.SignedURL(ctx, file.FilePath, 15*time.Minute)
			if err != nil {
				return "", apperrors.NewDependencyFailure("signed url generation failed", false, err)
			}
			return url, nil
		}
	}
	return "", apperrors.NewNotFound("attachment", map[string]any{"file_id": fileID})
}

func (s *TicketService) storeAttachment(ctx context.Context, actorID, ticketID string, input *AttachmentInput) error {
	key := storage.AttachmentKey(ticketID, input.FileName, s.now())
	if err := s.store.Upload(ctx, key, input.Body, input.ContentType, input.SizeBytes); err != nil {
		s.logger.Warn("ticket created but attachment upload failed",
			zap.String("ticket_id", ticketID), zap.Error(err))
		return apperrors.NewDependencyFailure("attachment upload failed", false, err)
	}
	file := &domain.TicketFile{
		ID:         uuid.NewString(),
		TicketID:   ticketID,
		UploadedBy: actorID,
		FilePath:   key,
		FileName:   input.FileName,
		SizeBytes:  input.SizeBytes,
	}
	if err := s.files.Create(ctx, file); err != nil {
		s.logger.Warn("ticket created but attachment link failed",
			zap.String("ticket_id", ticketID), zap.Error(err))
		return apperrors.NewDependencyFailure("attachment stored but link failed", true, err)
	}
	return nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) authorizeRead(ctx context.Context, actor *domain.User, ticket *domain.Ticket) error {
	if actor == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if !actor.IsClient() {
		return nil
	}
	client, err := s.clients.GetClientByEmail(ctx, actor.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewPermissionDenied("no client record for this account")
		}
		return apperrors.MapError(err)
	}
	if ticket.ClientID == nil || *ticket.ClientID != client.ID {
		return apperrors.NewPermissionDenied("ticket belongs to another client")
	}
	return nil
}

func (s *TicketService) authorizeTransition(ctx context.Context, actor *domain.User, ticket *domain.Ticket, next domain.TicketStatus) error {
	assigned := false
	if !domain.Capabilities(actor.Role).IsExecutive && !actor.IsClient() {
		var err error
		assigned, err = s.assignments.Exists(ctx, ticket.ID, actor.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
	}
	lifecycleActor := lifecycle.Actor{ID: actor.ID, Role: actor.Role, Assigned: assigned}
	switch err := lifecycle.Authorize(lifecycleActor, ticket, next); {
	case err == nil:
		return nil
	case errors.Is(err, lifecycle.ErrPermissionDenied):
		return apperrors.NewPermissionDenied("actor may not transition this ticket")
	case errors.Is(err, lifecycle.ErrTerminalState):
		return apperrors.NewConflict("ticket is in a terminal state", nil)
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   next,
		})
	default:
		return apperrors.MapError(err)
	}
}

func (s *TicketService) resolveClientID(ctx context.Context, actor *domain.User, requested *string) (*string, error) {
	if actor.IsClient() {
		client, err := s.clients.GetClientByEmail(ctx, actor.Email)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewPermissionDenied("no client record for this account")
			}
			return nil, apperrors.MapError(err)
		}
		return &client.ID, nil
	}
	if requested == nil || *requested == "" {
		// Staff without a selected client: tolerated at this layer.
		return nil, nil
	}
	client, err := s.clients.GetClientByID(ctx, *requested)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("client", map[string]any{"client_id": *requested})
		}
		return nil, apperrors.MapError(err)
	}
	return &client.ID, nil
}

func (s *TicketService) publishEvent(ctx context.Context, actor *domain.User, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	event.Actor = events.Actor{UserID: actor.ID, Role: actor.Role}
	_ = s.dispatcher.Publish(ctx, event)
}
