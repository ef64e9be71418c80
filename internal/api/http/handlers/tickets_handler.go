package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/opsdesk-service/internal/api/dto"
	"github.com/spec-kit/opsdesk-service/internal/auth"
	"github.com/spec-kit/opsdesk-service/internal/domain"
	"github.com/spec-kit/opsdesk-service/internal/service"
	apperrors "github.com/spec-kit/opsdesk-service/pkg/util"
)

// TicketsHandler exposes ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets. Accepts JSON, or multipart/form-data with an
// optional "attachment" file alongside the same fields.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}

	input, err := parseCreateTicket(c)
	if err != nil {
		return err
	}
	result, err := h.service.CreateTicket(c.UserContext(), principal, input)
	if err != nil {
		return err
	}

	resp := dto.CreateTicketResponse{Ticket: ticketSummary(result.Ticket)}
	if result.AttachmentWarning != nil {
		resp.AttachmentWarning = result.AttachmentWarning.Error()
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": resp})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	tickets, err := h.service.ListTickets(c.UserContext(), principal, parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	detail, err := h.service.GetTicket(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(detail)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.UserContext(), principal, c.Params("id"), req.Content, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// Resolve POST /tickets/:id/resolve.
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Resolve(c.UserContext(), principal, c.Params("id"), req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Transition POST /tickets/:id/transition.
func (h *TicketsHandler) Transition(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Transition(c.UserContext(), principal, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Escalate POST /tickets/:id/escalate.
func (h *TicketsHandler) Escalate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, err := h.service.Transition(c.UserContext(), principal, c.Params("id"), domain.TicketStatusEscalated)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Assign POST /tickets/:id/assignments.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.UserID) == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}
	if err := h.service.AssignUser(c.UserContext(), principal, c.Params("id"), req.UserID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// UploadFile POST /tickets/:id/attachments (multipart).
func (h *TicketsHandler) UploadFile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	fileHeader, err := c.FormFile("attachment")
	if err != nil {
		return apperrors.NewValidationError("attachment file required", nil)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidationError("attachment unreadable", nil)
	}
	defer src.Close()

	file, err := h.service.UploadAttachment(c.UserContext(), principal, c.Params("id"), service.AttachmentInput{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		SizeBytes:   fileHeader.Size,
		Body:        src,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fileResponse(file)})
}

// FileURL GET /tickets/:id/attachments/:fileID/url.
func (h *TicketsHandler) FileURL(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	url, err := h.service.FileURL(c.UserContext(), principal, c.Params("id"), c.Params("fileID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"url": url}})
}

func parseCreateTicket(c *fiber.Ctx) (service.TicketCreateInput, error) {
	contentType := c.Get(fiber.HeaderContentType)
	if strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		return parseCreateTicketMultipart(c)
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return service.TicketCreateInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	return service.TicketCreateInput{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		ClientID:    req.ClientID,
		Metadata:    buildMetadata(req.Type, req.Metadata),
	}, nil
}

func parseCreateTicketMultipart(c *fiber.Ctx) (service.TicketCreateInput, error) {
	input := service.TicketCreateInput{
		Type:        domain.TicketType(c.FormValue("type")),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	}
	if clientID := c.FormValue("client_id"); clientID != "" {
		input.ClientID = &clientID
	}
	if raw := c.FormValue("metadata"); raw != "" {
		var meta dto.TicketMetadataRequest
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return input, apperrors.NewValidationError("invalid metadata json", nil)
		}
		input.Metadata = buildMetadata(input.Type, &meta)
	}
	if fileHeader, err := c.FormFile("attachment"); err == nil {
		src, err := fileHeader.Open()
		if err != nil {
			return input, apperrors.NewValidationError("attachment unreadable", nil)
		}
		// Closed by fiber when the request completes.
		input.Attachment = &service.AttachmentInput{
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			SizeBytes:   fileHeader.Size,
			Body:        src,
		}
	}
	return input, nil
}

func buildMetadata(ticketType domain.TicketType, req *dto.TicketMetadataRequest) domain.TicketMetadata {
	if req == nil {
		return nil
	}
	switch ticketType {
	case domain.TicketTypeVolumeShortfall:
		details := domain.VolumeShortfallDetails{
			TimePeriod: req.TimePeriod,
			Notes:      req.Notes,
		}
		if req.ExpectedApplications != nil {
			details.ExpectedApplications = *req.ExpectedApplications
		}
		if req.ActualApplications != nil {
			details.ActualApplications = *req.ActualApplications
		}
		return details
	case domain.TicketTypeDataMismatch:
		return domain.DataMismatchDetails{
			Field:         req.Field,
			ExpectedValue: req.ExpectedValue,
			ActualValue:   req.ActualValue,
			Notes:         req.Notes,
		}
	}
	return nil
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if typeStr := c.Query("type"); typeStr != "" {
		for _, part := range strings.Split(typeStr, ",") {
			filter.Types = append(filter.Types, domain.TicketType(strings.TrimSpace(part)))
		}
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:              ticket.ID,
		Type:            ticket.Type,
		Title:           ticket.Title,
		Status:          ticket.Status,
		Priority:        ticket.Priority,
		SLAHours:        ticket.SLAHours,
		ClientID:        ticket.ClientID,
		EscalationLevel: ticket.EscalationLevel,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
		DueDate:         ticket.DueDate,
	}
}

func ticketDetail(detail *service.TicketDetail) dto.TicketDetailResponse {
	comments := make([]dto.CommentResponse, 0, len(detail.Comments))
	for i := range detail.Comments {
		comments = append(comments, commentResponse(&detail.Comments[i]))
	}
	files := make([]dto.FileResponse, 0, len(detail.Files))
	for i := range detail.Files {
		files = append(files, fileResponse(&detail.Files[i]))
	}
	assignments := make([]dto.AssignmentResponse, 0, len(detail.Assignments))
	for _, assignment := range detail.Assignments {
		assignments = append(assignments, dto.AssignmentResponse{
			UserID:    assignment.UserID,
			CreatedAt: assignment.CreatedAt,
		})
	}
	timeline := make([]dto.TimelineStep, 0, len(detail.Timeline))
	for _, step := range detail.Timeline {
		timeline = append(timeline, dto.TimelineStep{
			Status:  step.Status,
			At:      step.At,
			Reached: step.Reached,
		})
	}
	return dto.TicketDetailResponse{
		TicketSummary: ticketSummary(detail.Ticket),
		Description:   detail.Ticket.Description,
		Metadata:      detail.Ticket.Metadata,
		SLA: dto.SLAStatus{
			State: detail.SLA.State,
			Hours: detail.SLA.Hours,
		},
		Timeline:    timeline,
		Comments:    comments,
		Files:       files,
		Assignments: assignments,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		AuthorID:   comment.AuthorID,
		Content:    comment.Content,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
	}
}

func fileResponse(file *domain.TicketFile) dto.FileResponse {
	return dto.FileResponse{
		ID:        file.ID,
		FileName:  file.FileName,
		SizeBytes: file.SizeBytes,
		CreatedAt: file.CreatedAt,
	}
}
