package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassesThroughDomainErrors(t *testing.T) {
	src := NewPermissionDenied("insufficient role")
	converted := ToDomainError(src)
	require.NotNil(t, converted)
	assert.Equal(t, "PERMISSION_DENIED", converted.Code)
	assert.Equal(t, http.StatusForbidden, converted.HTTPStatus)
}

func TestToDomainErrorMapsFiberErrors(t *testing.T) {
	cases := []struct {
		status int
		code   string
	}{
		{http.StatusBadRequest, "VALIDATION_FAILED"},
		{http.StatusUnauthorized, "UNAUTHORIZED"},
		{http.StatusForbidden, "PERMISSION_DENIED"},
		{http.StatusNotFound, "NOT_FOUND"},
		{http.StatusConflict, "CONFLICT"},
		{http.StatusMethodNotAllowed, "REQUEST_FAILED"},
		{http.StatusBadGateway, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		converted := ToDomainError(fiber.NewError(tc.status, "nope"))
		require.NotNil(t, converted)
		assert.Equal(t, tc.code, converted.Code, "status %d", tc.status)
		assert.Equal(t, tc.status, converted.HTTPStatus)
		assert.Equal(t, "nope", converted.Message)
	}
}

func TestToDomainErrorMapsNoRowsToNotFound(t *testing.T) {
	converted := ToDomainError(pgx.ErrNoRows)
	require.NotNil(t, converted)
	assert.Equal(t, "NOT_FOUND", converted.Code)
	assert.Equal(t, http.StatusNotFound, converted.HTTPStatus)
}

func TestToDomainErrorDefaultsToInternal(t *testing.T) {
	converted := ToDomainError(errors.New("boom"))
	require.NotNil(t, converted)
	assert.Equal(t, "INTERNAL_ERROR", converted.Code)
	assert.Equal(t, http.StatusInternalServerError, converted.HTTPStatus)
}
