package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/opsdesk-service/internal/domain"
	"github.com/spec-kit/opsdesk-service/internal/events"
	"github.com/spec-kit/opsdesk-service/internal/repository"
	"github.com/spec-kit/opsdesk-service/internal/sla"
	apperrors "github.com/spec-kit/opsdesk-service/pkg/util"
)

type fakeTicketRepo struct {
	tickets      map[string]domain.Ticket
	failCreate   error
	failUpdate   error
	updateCalls  int
	createdOrder []string
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]domain.Ticket{}}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	f.tickets[ticket.ID] = *ticket
	f.createdOrder = append(f.createdOrder, ticket.ID)
	return nil
}

func (f *fakeTicketRepo) UpdateStatus(_ context.Context, ticket *domain.Ticket) error {
	f.updateCalls++
	if f.failUpdate != nil {
		return f.failUpdate
	}
	stored, ok := f.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Status = ticket.Status
	stored.EscalationLevel = ticket.EscalationLevel
	stored.UpdatedAt = ticket.UpdatedAt
	f.tickets[ticket.ID] = stored
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := ticket
	return &copied, nil
}

func (f *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		if filter.ClientID != nil {
			if ticket.ClientID == nil || *ticket.ClientID != *filter.ClientID {
				continue
			}
		}
		result = append(result, ticket)
	}
	return result, nil
}

func (f *fakeTicketRepo) ListOpenPastDue(_ context.Context, now time.Time) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		if !ticket.Status.Terminal() && ticket.DueDate.Before(now) {
			result = append(result, ticket)
		}
	}
	return result, nil
}

type fakeCommentRepo struct {
	comments   []domain.Comment
	failCreate error
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	f.comments = append(f.comments, *comment)
	return nil
}

func (f *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	var result []domain.Comment
	for _, comment := range f.comments {
		if comment.TicketID == ticketID {
			result = append(result, comment)
		}
	}
	return result, nil
}

type fakeAssignmentRepo struct {
	assigned map[string]bool
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assigned: map[string]bool{}}
}

func assignmentKey(ticketID, userID string) string { return ticketID + "|" + userID }

func (f *fakeAssignmentRepo) Add(_ context.Context, assignment *domain.Assignment) error {
	f.assigned[assignmentKey(assignment.TicketID, assignment.UserID)] = true
	return nil
}

func (f *fakeAssignmentRepo) Exists(_ context.Context, ticketID, userID string) (bool, error) {
	return f.assigned[assignmentKey(ticketID, userID)], nil
}

func (f *fakeAssignmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Assignment, error) {
	var result []domain.Assignment
	for key := range f.assigned {
		parts := strings.SplitN(key, "|", 2)
		if parts[0] == ticketID {
			result = append(result, domain.Assignment{TicketID: parts[0], UserID: parts[1]})
		}
	}
	return result, nil
}

type fakeFileRepo struct {
	files      []domain.TicketFile
	failCreate error
}

func (f *fakeFileRepo) Create(_ context.Context, file *domain.TicketFile) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	f.files = append(f.files, *file)
	return nil
}

func (f *fakeFileRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketFile, error) {
	var result []domain.TicketFile
	for _, file := range f.files {
		if file.TicketID == ticketID {
			result = append(result, file)
		}
	}
	return result, nil
}

type fakeClientRepo struct {
	byEmail map[string]domain.Client
	byID    map[string]domain.Client
	pending map[string]domain.PendingClient
}

func newFakeClientRepo(clients ...domain.Client) *fakeClientRepo {
	repo := &fakeClientRepo{
		byEmail: map[string]domain.Client{},
		byID:    map[string]domain.Client{},
		pending: map[string]domain.PendingClient{},
	}
	for _, client := range clients {
		repo.byEmail[strings.ToLower(client.PersonalEmail)] = client
		repo.byID[client.ID] = client
	}
	return repo
}

func (f *fakeClientRepo) CreateClient(_ context.Context, client *domain.Client) error {
	f.byEmail[strings.ToLower(client.PersonalEmail)] = *client
	f.byID[client.ID] = *client
	return nil
}

func (f *fakeClientRepo) GetClientByID(_ context.Context, id string) (*domain.Client, error) {
	client, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &client, nil
}

func (f *fakeClientRepo) GetClientByEmail(_ context.Context, email string) (*domain.Client, error) {
	client, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &client, nil
}

func (f *fakeClientRepo) ListClients(_ context.Context, _, _ int) ([]domain.Client, error) {
	var result []domain.Client
	for _, client := range f.byID {
		result = append(result, client)
	}
	return result, nil
}

func (f *fakeClientRepo) CreatePending(_ context.Context, pending *domain.PendingClient) error {
	f.pending[pending.ID] = *pending
	return nil
}

func (f *fakeClientRepo) GetPendingByID(_ context.Context, id string) (*domain.PendingClient, error) {
	pending, ok := f.pending[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &pending, nil
}

func (f *fakeClientRepo) ListPending(_ context.Context, _, _ int) ([]domain.PendingClient, error) {
	var result []domain.PendingClient
	for _, pending := range f.pending {
		if pending.ApprovedAt == nil {
			result = append(result, pending)
		}
	}
	return result, nil
}

func (f *fakeClientRepo) MarkApproved(_ context.Context, id string, at time.Time) error {
	pending, ok := f.pending[id]
	if !ok || pending.ApprovedAt != nil {
		return pgx.ErrNoRows
	}
	pending.ApprovedAt = &at
	f.pending[id] = pending
	return nil
}

type fakeSLAProvider struct {
	table sla.Table
	err   error
}

func (f *fakeSLAProvider) Table(_ context.Context) (sla.Table, error) {
	return f.table, f.err
}

type fakeStore struct {
	failUpload error
	uploaded   []string
}

func (f *fakeStore) Upload(_ context.Context, key string, body io.Reader, _ string, _ int64) error {
	if f.failUpload != nil {
		return f.failUpload
	}
	if body != nil {
		_, _ = io.Copy(io.Discard, body)
	}
	f.uploaded = append(f.uploaded, key)
	return nil
}

func (f *fakeStore) Get(_ context.Context, _ string) (io.ReadCloser, string, error) {
	return nil, "", errors.New("not implemented")
}

func (f *fakeStore) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://example.test/" + key, nil
}

type capturingDispatcher struct {
	published []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(_ events.EventType, _ events.EventHandler) {}

type ticketHarness struct {
	service     *TicketService
	tickets     *fakeTicketRepo
	comments    *fakeCommentRepo
	assignments *fakeAssignmentRepo
	files       *fakeFileRepo
	clients     *fakeClientRepo
	store       *fakeStore
	dispatcher  *capturingDispatcher
	now         time.Time
}

func newTicketHarness(t *testing.T, clients ...domain.Client) *ticketHarness {
	t.Helper()
	h := &ticketHarness{
		tickets:     newFakeTicketRepo(),
		comments:    &fakeCommentRepo{},
		assignments: newFakeAssignmentRepo(),
		files:       &fakeFileRepo{},
		clients:     newFakeClientRepo(clients...),
		store:       &fakeStore{},
		dispatcher:  &capturingDispatcher{},
		now:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	provider := &fakeSLAProvider{table: sla.NewTable([]domain.SLAConfig{
		{TicketType: domain.TicketTypeVolumeShortfall, Hours: 48, Priority: domain.TicketPriorityHigh},
		{TicketType: domain.TicketTypeDataMismatch, Hours: 24, Priority: domain.TicketPriorityMedium},
	})}
	h.service = NewTicketService(TicketDependencies{
		TicketRepo:     h.tickets,
		CommentRepo:    h.comments,
		AssignmentRepo: h.assignments,
		FileRepo:       h.files,
		ClientRepo:     h.clients,
		SLAs:           provider,
		Store:          h.store,
		Dispatcher:     h.dispatcher,
		Now:            func() time.Time { return h.now },
	})
	return h
}

func staffUser(id string, role domain.Role) *domain.User {
	return &domain.User{ID: id, Email: id + "@opsdesk.test", Role: role, Status: domain.UserStatusActive}
}

func TestCreateTicketStampsSLA(t *testing.T) {
	h := newTicketHarness(t)
	actor := staffUser("am-1", domain.RoleAccountManager)

	result, err := h.service.CreateTicket(context.Background(), actor, TicketCreateInput{
		Type:        domain.TicketTypeVolumeShortfall,
		Description: "only 12 of 50 applications submitted this week",
		Metadata: domain.VolumeShortfallDetails{
			ExpectedApplications: 50,
			ActualApplications:   12,
			TimePeriod:           "2025-W22",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Ticket)
	assert.Nil(t, result.AttachmentWarning)

	ticket := result.Ticket
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityHigh, ticket.Priority)
	assert.Equal(t, 48, ticket.SLAHours)
	assert.Equal(t, h.now.Add(48*time.Hour), ticket.DueDate)
	assert.Equal(t, domain.TicketTypeVolumeShortfall.DefaultTitle(), ticket.Title)
	assert.False(t, ticket.CreatedByClient)

	require.Len(t, h.dispatcher.published, 1)
	assert.Equal(t, events.EventTicketCreated, h.dispatcher.published[0].Type)
}

func TestCreateTicketMissingSLAConfig(t *testing.T) {
	h := newTicketHarness(t)
	provider := &fakeSLAProvider{table: sla.NewTable([]domain.SLAConfig{
		{TicketType: domain.TicketTypeDataMismatch, Hours: 24, Priority: domain.TicketPriorityMedium},
	})}
	h.service.slas = provider

	_, err := h.service.CreateTicket(context.Background(), staffUser("am-1", domain.RoleAccountManager), TicketCreateInput{
		Type:        domain.TicketTypeVolumeShortfall,
		Description: "shortfall with no sla row",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFIGURATION_MISSING"))
	assert.Empty(t, h.tickets.tickets, "no ticket row may exist after a configuration miss")
}

func TestCreateTicketRoleTypeRestriction(t *testing.T) {
	h := newTicketHarness(t)

	_, err := h.service.CreateTicket(context.Background(), staffUser("sales-1", domain.RoleSales), TicketCreateInput{
		Type:        domain.TicketTypeVolumeShortfall,
		Description: "sales should not open shortfall tickets",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "PERMISSION_DENIED"))
}

func TestCreateTicketMetadataTypeMismatch(t *testing.T) {
	h := newTicketHarness(t)

	_, err := h.service.CreateTicket(context.Background(), staffUser("am-1", domain.RoleAccountManager), TicketCreateInput{
		Type:        domain.TicketTypeVolumeShortfall,
		Description: "mismatched metadata",
		Metadata:    domain.DataMismatchDetails{Field: "salary"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestCreateTicketClientScopedToOwnRecord(t *testing.T) {
	client := domain.Client{ID: "client-9", FullName: "Dana Reyes", PersonalEmail: "dana@example.test"}
	h := newTicketHarness(t, client)
	actor := &domain.User{ID: "u-client", Email: "dana@example.test", Role: domain.RoleClient}

	otherID := "client-other"
	result, err := h.service.CreateTicket(context.Background(), actor, TicketCreateInput{
		Type:        domain.TicketTypeDataMismatch,
		Description: "my profile lists the wrong target role",
		ClientID:    &otherID,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Ticket.ClientID)
	assert.Equal(t, "client-9", *result.Ticket.ClientID, "client creators are always scoped to their own record")
	assert.True(t, result.Ticket.CreatedByClient)
}

func TestCreateTicketAttachmentFailureIsScopedWarning(t *testing.T) {
	h := newTicketHarness(t)
	h.store.failUpload = errors.New("bucket unreachable")

	result, err := h.service.CreateTicket(context.Background(), staffUser("am-1", domain.RoleAccountManager), TicketCreateInput{
		Type:        domain.TicketTypeVolumeShortfall,
		Description: "shortfall with evidence attached",
		Attachment: &AttachmentInput{
			FileName:    "evidence.csv",
			ContentType: "text/csv",
			SizeBytes:   42,
			Body:        strings.NewReader("a,b\n1,2\n"),
		},
	})
	require.NoError(t, err, "attachment failure must not fail creation")
	require.NotNil(t, result.AttachmentWarning)
	assert.True(t, apperrors.IsCode(result.AttachmentWarning, "DEPENDENCY_FAILURE"))

	stored, getErr := h.tickets.GetByID(context.Background(), result.Ticket.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	assert.Empty(t, h.files.files)
}

func seedOpenTicket(h *ticketHarness, id string, clientID *string) domain.Ticket {
	ticket := domain.Ticket{
		ID:        id,
		Type:      domain.TicketTypeVolumeShortfall,
		Title:     "Volume Shortfall Report",
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityHigh,
		SLAHours:  48,
		ClientID:  clientID,
		CreatedBy: "am-1",
		CreatedAt: h.now.Add(-time.Hour),
		UpdatedAt: h.now.Add(-time.Hour),
		DueDate:   h.now.Add(47 * time.Hour),
	}
	h.tickets.tickets[id] = ticket
	return ticket
}

func TestResolveRejectsEmptyCommentBeforeAnyWrite(t *testing.T) {
	h := newTicketHarness(t)
	seedOpenTicket(h, "t-1", nil)

	_, err := h.service.Resolve(context.Background(), staffUser("am-1", domain.RoleAccountManager), "t-1", "   ")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	assert.Empty(t, h.comments.comments)
	assert.Zero(t, h.tickets.updateCalls)
	assert.Equal(t, domain.TicketStatusOpen, h.tickets.tickets["t-1"].Status)
}

func TestResolveWritesCommentThenStatus(t *testing.T) {
	h := newTicketHarness(t)
	seedOpenTicket(h, "t-1", nil)
	actor := staffUser("am-1", domain.RoleAccountManager)
	_ = h.assignments.Add(context.Background(), &domain.Assignment{TicketID: "t-1", UserID: actor.ID})

	ticket, err := h.service.Resolve(context.Background(), actor, "t-1", "re-ran the batch, counts now match")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, ticket.Status)
	assert.Equal(t, domain.TicketStatusResolved, h.tickets.tickets["t-1"].Status)

	require.Len(t, h.comments.comments, 1)
	assert.Equal(t, "re-ran the batch, counts now match", h.comments.comments[0].Content)
	assert.False(t, h.comments.comments[0].IsInternal)

	require.Len(t, h.dispatcher.published, 1)
	assert.Equal(t, events.EventTicketStatusChanged, h.dispatcher.published[0].Type)
}

func TestResolveStatusFailureAfterCommentIsRetryable(t *testing.T) {
	h := newTicketHarness(t)
	seedOpenTicket(h, "t-1", nil)
	h.tickets.failUpdate = errors.New("connection reset")
	actor := staffUser("am-1", domain.RoleAccountManager)
	_ = h.assignments.Add(context.Background(), &domain.Assignment{TicketID: "t-1", UserID: actor.ID})

	_, err := h.service.Resolve(context.Background(), actor, "t-1", "fixed upstream feed")
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "DEPENDENCY_FAILURE", domainErr.Code)
	assert.True(t, domainErr.Retryable, "status failure after the comment landed must be retryable")
	assert.Len(t, h.comments.comments, 1, "the resolution comment stays persisted")
}

func TestResolveCommentFailureAbortsTransition(t *testing.T) {
	h := newTicketHarness(t)
	seedOpenTicket(h, "t-1", nil)
	h.comments.failCreate = errors.New("disk full")
	actor := staffUser("am-1", domain.RoleAccountManager)
	_ = h.assignments.Add(context.Background(), &domain.Assignment{TicketID: "t-1", UserID: actor.ID})

	_, err := h.service.Resolve(context.Background(), actor, "t-1", "fixed")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "DEPENDENCY_FAILURE"))
	assert.Zero(t, h.tickets.updateCalls, "no status write may happen without the comment")
	assert.Equal(t, domain.TicketStatusOpen, h.tickets.tickets["t-1"].Status)
}

func TestResolveRequiresResolveCapability(t *testing.T) {
	h := newTicketHarness(t)
	seedOpenTicket(h, "t-1", nil)
	actor := staffUser("ca-1", domain.RoleCareerAssociate)
	_ = h.assignments.Add(context.Background(), &domain.Assignment{TicketID: "t-1", UserID: actor.ID})

	_, err := h.service.Resolve(context.Background(), actor, "t-1", "done")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "PERMISSION_DENIED"))
	assert.Empty(t, h.comments.comments)
}

func TestResolveExecutiveBypassesAssignment(t *testing.T) {
	h := newTicketHarness(t)
	seedOpenTicket(h, "t-1", nil)

	ticket, err := h.service.Resolve(context.Background(), staffUser("ceo-1", domain.RoleCEO), "t-1", "handled directly")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, ticket.Status)
}

func TestTransitionEscalationBumpsCounter(t *testing.T) {
	h := newTicketHarness(t)
	seedOpenTicket(h, "t-1", nil)

	ticket, err := h.service.Transition(context.Background(), staffUser("coo-1", domain.RoleCOO), "t-1", domain.TicketStatusEscalated)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusEscalated, ticket.Status)
	assert.Equal(t, 1, ticket.EscalationLevel)

	require.Len(t, h.dispatcher.published, 1)
	assert.Equal(t, events.EventTicketEscalated, h.dispatcher.published[0].Type)
}

func TestTransitionToResolvedRequiresResolvePath(t *testing.T) {
	h := newTicketHarness(t)
	seedOpenTicket(h, "t-1", nil)

	_, err := h.service.Transition(context.Background(), staffUser("ceo-1", domain.RoleCEO), "t-1", domain.TicketStatusResolved)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestTransitionTerminalTicketConflicts(t *testing.T) {
	h := newTicketHarness(t)
	ticket := seedOpenTicket(h, "t-1", nil)
	ticket.Status = domain.TicketStatusClosed
	h.tickets.tickets["t-1"] = ticket

	_, err := h.service.Transition(context.Background(), staffUser("ceo-1", domain.RoleCEO), "t-1", domain.TicketStatusInProgress)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestGetTicketClientScopingAndInternalComments(t *testing.T) {
	client := domain.Client{ID: "client-9", PersonalEmail: "dana@example.test"}
	h := newTicketHarness(t, client)
	clientID := client.ID
	seedOpenTicket(h, "t-mine", &clientID)
	seedOpenTicket(h, "t-other", nil)
	h.comments.comments = []domain.Comment{
		{ID: "c-1", TicketID: "t-mine", Content: "status update for the client", IsInternal: false},
		{ID: "c-2", TicketID: "t-mine", Content: "internal triage notes", IsInternal: true},
	}
	actor := &domain.User{ID: "u-client", Email: "dana@example.test", Role: domain.RoleClient}

	detail, err := h.service.GetTicket(context.Background(), actor, "t-mine")
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "c-1", detail.Comments[0].ID)
	assert.Equal(t, "on_time", string(detail.SLA.State))

	require.Len(t, detail.Timeline, 2)
	assert.True(t, detail.Timeline[0].Reached)
	assert.Equal(t, domain.TicketStatusResolved, detail.Timeline[1].Status)
	assert.False(t, detail.Timeline[1].Reached)

	_, err = h.service.GetTicket(context.Background(), actor, "t-other")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "PERMISSION_DENIED"))
}

func TestListTicketsClientSeesOnlyOwn(t *testing.T) {
	client := domain.Client{ID: "client-9", PersonalEmail: "dana@example.test"}
	h := newTicketHarness(t, client)
	clientID := client.ID
	seedOpenTicket(h, "t-mine", &clientID)
	seedOpenTicket(h, "t-other", nil)
	actor := &domain.User{ID: "u-client", Email: "dana@example.test", Role: domain.RoleClient}

	tickets, err := h.service.ListTickets(context.Background(), actor, TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "t-mine", tickets[0].ID)
}

func TestAddCommentClientDenied(t *testing.T) {
	client := domain.Client{ID: "client-9", PersonalEmail: "dana@example.test"}
	h := newTicketHarness(t, client)
	clientID := client.ID
	seedOpenTicket(h, "t-mine", &clientID)
	actor := &domain.User{ID: "u-client", Email: "dana@example.test", Role: domain.RoleClient}

	_, err := h.service.AddComment(context.Background(), actor, "t-mine", "please hurry", false)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "PERMISSION_DENIED"))
}

func TestAssignUserRules(t *testing.T) {
	h := newTicketHarness(t)
	seedOpenTicket(h, "t-1", nil)

	err := h.service.AssignUser(context.Background(), staffUser("am-1", domain.RoleAccountManager), "t-1", "ca-2")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "PERMISSION_DENIED"))

	require.NoError(t, h.service.AssignUser(context.Background(), staffUser("cro-1", domain.RoleCRO), "t-1", "am-1"))

	// Once assigned, the account manager can extend the assignment set.
	require.NoError(t, h.service.AssignUser(context.Background(), staffUser("am-1", domain.RoleAccountManager), "t-1", "ca-2"))

	assigned, err := h.assignments.Exists(context.Background(), "t-1", "ca-2")
	require.NoError(t, err)
	assert.True(t, assigned)
}

func TestUnassignedNonExecutiveCannotTransition(t *testing.T) {
	h := newTicketHarness(t)
	seedOpenTicket(h, "t-1", nil)

	_, err := h.service.Transition(context.Background(), staffUser("am-1", domain.RoleAccountManager), "t-1", domain.TicketStatusInProgress)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "PERMISSION_DENIED"))
}
