package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/opsdesk-service/internal/auth"
	"github.com/spec-kit/opsdesk-service/internal/domain"
	apperrors "github.com/spec-kit/opsdesk-service/pkg/util"
)

type fakeUserRepo struct {
	byID      map[string]domain.User
	byEmail   map[string]domain.User
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]domain.User{}, byEmail: map[string]domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.byEmail[strings.ToLower(user.Email)]; exists {
		return errors.New("duplicate key value violates unique constraint \"users_email_key\"")
	}
	f.byID[user.ID] = *user
	f.byEmail[strings.ToLower(user.Email)] = *user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func TestCreateUserHashesPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewProvisioningService(users, 4, zap.NewNop())

	user, err := svc.CreateUser(context.Background(), UserInput{
		Name:     "Priya Nair",
		Email:    "Priya@OpsDesk.Test",
		Password: "s3cret-pass",
		Role:     domain.RoleAccountManager,
	})
	require.NoError(t, err)
	assert.Equal(t, "priya@opsdesk.test", user.Email)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	require.NoError(t, auth.ComparePassword(user.PasswordHash, "s3cret-pass"))
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc := NewProvisioningService(newFakeUserRepo(), 4, zap.NewNop())

	_, err := svc.CreateUser(context.Background(), UserInput{
		Name:     "Sam",
		Email:    "sam@opsdesk.test",
		Password: "password1",
		Role:     domain.Role("superadmin"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestImportUsersCSVSkipsBadRows(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewProvisioningService(users, 4, zap.NewNop())

	csvData := strings.Join([]string{
		"name,email,password,role,department",
		"Priya Nair,priya@opsdesk.test,longenough,account_manager,delivery",
		"Bad Role,bad@opsdesk.test,longenough,wizard,",
		"Short Pass,short@opsdesk.test,tiny,sales,",
		"Priya Again,priya@opsdesk.test,longenough,sales,",
		"Omar Haddad,omar@opsdesk.test,longenough,career_associate,delivery",
	}, "\n")

	report, err := svc.ImportUsersCSV(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 3, report.Skipped)
	assert.Len(t, report.Errors, 3)

	_, err = users.GetByEmail(context.Background(), "omar@opsdesk.test")
	require.NoError(t, err)
	_, err = users.GetByEmail(context.Background(), "bad@opsdesk.test")
	require.Error(t, err)
}

func TestImportUsersCSVRequiresColumns(t *testing.T) {
	svc := NewProvisioningService(newFakeUserRepo(), 4, zap.NewNop())

	_, err := svc.ImportUsersCSV(context.Background(), strings.NewReader("name,email\nA,a@b.c\n"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}
