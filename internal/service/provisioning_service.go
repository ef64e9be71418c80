package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/opsdesk-service/internal/auth"
	"github.com/spec-kit/opsdesk-service/internal/domain"
	"github.com/spec-kit/opsdesk-service/internal/repository"
	apperrors "github.com/spec-kit/opsdesk-service/pkg/util"
)

// ProvisioningService creates staff accounts, one at a time or in bulk from
// a CSV export.
type ProvisioningService struct {
	users      repository.UserRepository
	logger     *zap.Logger
	bcryptCost int
}

// NewProvisioningService constructs the service.
func NewProvisioningService(users repository.UserRepository, bcryptCost int, logger *zap.Logger) *ProvisioningService {
	return &ProvisioningService{users: users, bcryptCost: bcryptCost, logger: logger}
}

// UserInput describes a single account to create.
type UserInput struct {
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	Department string
}

// CreateUser provisions one account.
func (s *ProvisioningService) CreateUser(ctx context.Context, input UserInput) (*domain.User, error) {
	if err := validateUserInput(input); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Role:         input.Role,
		Department:   strings.TrimSpace(input.Department),
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ImportReport summarizes a bulk import run.
type ImportReport struct {
	Created int
	Skipped int
	Errors  []string
}

// csv columns: name, email, password, role, department (department optional)
var requiredCSVColumns = []string{"name", "email", "password", "role"}

// ImportUsersCSV reads accounts from a CSV stream. Invalid rows and duplicate
// emails are skipped and reported; a bad row never aborts the rest of the
// import.
func (s *ProvisioningService) ImportUsersCSV(ctx context.Context, r io.Reader) (*ImportReport, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewValidationError("csv header unreadable", nil)
	}
	index := map[string]int{}
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredCSVColumns {
		if _, ok := index[col]; !ok {
			return nil, apperrors.NewValidationError("csv missing required column", map[string]any{"column": col})
		}
	}

	report := &ImportReport{}
	seen := map[string]bool{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		input := UserInput{
			Name:       field("name"),
			Email:      strings.ToLower(field("email")),
			Password:   field("password"),
			Role:       domain.Role(strings.ToLower(field("role"))),
			Department: field("department"),
		}
		if seen[input.Email] {
			report.Skipped++
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: duplicate email %s", line, input.Email))
			continue
		}

		if _, err := s.CreateUser(ctx, input); err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: %v", line, err))
			s.logger.Warn("user import row skipped", zap.Int("line", line), zap.Error(err))
			continue
		}
		seen[input.Email] = true
		report.Created++
	}

	s.logger.Info("user import finished",
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped))
	return report, nil
}

func validateUserInput(input UserInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	email := strings.TrimSpace(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return apperrors.NewValidationError("valid email required", map[string]any{"email": email})
	}
	if len(input.Password) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	if !input.Role.Valid() {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
	}
	return nil
}
