package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/opsdesk-service/internal/api/dto"
	"github.com/spec-kit/opsdesk-service/internal/service"
	apperrors "github.com/spec-kit/opsdesk-service/pkg/util"
)

// UsersHandler serves account provisioning. Routes are executive-only.
type UsersHandler struct {
	service *service.ProvisioningService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(provisioning *service.ProvisioningService) *UsersHandler {
	return &UsersHandler{service: provisioning}
}

// CreateUser POST /users.
func (h *UsersHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.service.CreateUser(c.UserContext(), service.UserInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// ImportUsers POST /users/import (multipart, "file" field holding a CSV).
func (h *UsersHandler) ImportUsers(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("csv file required", nil)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidationError("csv file unreadable", nil)
	}
	defer src.Close()

	report, err := h.service.ImportUsersCSV(c.UserContext(), src)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ImportReportResponse{
		Created: report.Created,
		Skipped: report.Skipped,
		Errors:  report.Errors,
	}})
}
