package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/opsdesk-service/internal/api/dto"
	"github.com/spec-kit/opsdesk-service/internal/auth"
	"github.com/spec-kit/opsdesk-service/internal/service"
	apperrors "github.com/spec-kit/opsdesk-service/pkg/util"
)

// ClientsHandler serves the onboarding flow: submissions, review, approval
// and the client picker list.
type ClientsHandler struct {
	service *service.OnboardingService
}

// NewClientsHandler constructs handler.
func NewClientsHandler(onboarding *service.OnboardingService) *ClientsHandler {
	return &ClientsHandler{service: onboarding}
}

// SubmitPending POST /clients/pending.
func (h *ClientsHandler) SubmitPending(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SubmitPendingClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	pending, err := h.service.SubmitPending(c.UserContext(), principal, service.PendingClientInput{
		FullName:            req.FullName,
		PersonalEmail:       req.PersonalEmail,
		WhatsappNumber:      req.WhatsappNumber,
		CallablePhone:       req.CallablePhone,
		CompanyEmail:        req.CompanyEmail,
		JobRolePreferences:  req.JobRolePreferences,
		SalaryRange:         req.SalaryRange,
		LocationPreferences: req.LocationPreferences,
		WorkAuthDetails:     req.WorkAuthDetails,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.PendingClientFromDomain(pending)})
}

// ListPending GET /clients/pending.
func (h *ClientsHandler) ListPending(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	pending, err := h.service.ListPending(c.UserContext(), principal, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.PendingClientResponse, 0, len(pending))
	for i := range pending {
		items = append(items, dto.PendingClientFromDomain(&pending[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Approve POST /clients/pending/:id/approve.
func (h *ClientsHandler) Approve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ApproveClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.Approve(c.UserContext(), principal, c.Params("id"), req.InitialPassword)
	if err != nil {
		return err
	}
	resp := dto.ApproveClientResponse{Client: dto.ClientFromDomain(result.Client)}
	if result.AccountWarning != nil {
		resp.AccountWarning = result.AccountWarning.Error()
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": resp})
}

// ListClients GET /clients.
func (h *ClientsHandler) ListClients(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	clients, err := h.service.ListClients(c.UserContext(), principal, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		items = append(items, dto.ClientFromDomain(&clients[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
