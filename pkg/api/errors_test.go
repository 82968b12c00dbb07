package api

import (
	"fmt"
	"net/http"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"

	"github.com/rafiq-ai/rafiq/pkg/apperr"
)

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		expectCode int
		expectMsg  string
	}{
		{
			name:       "validation error maps to 400",
			err:        apperr.NewValidationError("name", "missing field"),
			expectCode: http.StatusBadRequest,
			expectMsg:  "missing field",
		},
		{
			name:       "typed not found maps to 404",
			err:        apperr.NewNotFoundError("person", "Khalid"),
			expectCode: http.StatusNotFound,
			expectMsg:  "person",
		},
		{
			name:       "wrapped sentinel not found maps to 404",
			err:        fmt.Errorf("lookup failed: %w", apperr.ErrNotFound),
			expectCode: http.StatusNotFound,
			expectMsg:  "resource not found",
		},
		{
			name:       "backend unavailable maps to 503",
			err:        fmt.Errorf("graph store: %w", apperr.ErrBackendUnavailable),
			expectCode: http.StatusServiceUnavailable,
			expectMsg:  "backend store unavailable",
		},
		{
			name:       "llm timeout maps to 502",
			err:        apperr.ErrLLMTimeout,
			expectCode: http.StatusBadGateway,
			expectMsg:  "language model call failed",
		},
		{
			name:       "llm malformed maps to 502",
			err:        apperr.ErrLLMMalformed,
			expectCode: http.StatusBadGateway,
			expectMsg:  "language model call failed",
		},
		{
			name:       "extraction empty maps to 422",
			err:        apperr.ErrExtractionEmpty,
			expectCode: http.StatusUnprocessableEntity,
			expectMsg:  "no content could be extracted",
		},
		{
			name:       "typed fatal error maps to 500",
			err:        &apperr.FatalError{Op: "UpsertPerson", Err: fmt.Errorf("boom")},
			expectCode: http.StatusInternalServerError,
			expectMsg:  "internal server error",
		},
		{
			name:       "sentinel fatal error maps to 500",
			err:        apperr.ErrFatal,
			expectCode: http.StatusInternalServerError,
			expectMsg:  "internal server error",
		},
		{
			name:       "unknown error maps to 500",
			err:        fmt.Errorf("something unexpected happened"),
			expectCode: http.StatusInternalServerError,
			expectMsg:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := mapServiceError(tt.err)
			assert.IsType(t, &echo.HTTPError{}, he)
			assert.Equal(t, tt.expectCode, he.Code)
			assert.Contains(t, he.Error(), tt.expectMsg)
		})
	}
}
