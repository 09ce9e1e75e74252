package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobscout/internal/generation"
	"github.com/jonathan/jobscout/internal/ingestion"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "url", Message: "max"}
	assert.Equal(t, "validation error: url - max", err.Error())
}

func TestHTTPStatusAndPublicMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "empty input", err: ingestion.ErrEmptyInput, status: http.StatusBadRequest, message: ingestion.ErrEmptyInput.Error()},
		{name: "invalid source", err: ingestion.ErrInvalidSource, status: http.StatusBadRequest, message: ingestion.ErrInvalidSource.Error()},
		{name: "fetch failed wrapped", err: fmt.Errorf("%w: %w", ingestion.ErrFetchFailed, errors.New("dial tcp: timeout")), status: http.StatusBadRequest, message: ingestion.ErrFetchFailed.Error()},
		{name: "comparison size", err: generation.ErrInvalidComparisonSize, status: http.StatusBadRequest, message: generation.ErrInvalidComparisonSize.Error()},
		{name: "validation", err: &ErrValidation{Field: "text", Message: "max"}, status: http.StatusBadRequest, message: "validation error: text - max"},
		{name: "listing not found", err: ingestion.ErrListingNotFound, status: http.StatusNotFound, message: "listing not found"},
		{name: "unauthorized", err: ErrUnauthorized, status: http.StatusUnauthorized, message: "Unauthorized"},
		{name: "not configured", err: generation.ErrModelNotConfigured, status: http.StatusServiceUnavailable, message: generation.ErrModelNotConfigured.Error()},
		{name: "generation failed hides detail", err: fmt.Errorf("%w: %w", generation.ErrGenerationFailed, errors.New("quota exceeded for key sk-123")), status: http.StatusInternalServerError, message: generation.ErrGenerationFailed.Error()},
		{name: "unknown", err: errors.New("pq: connection reset"), status: http.StatusInternalServerError, message: "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
			assert.Equal(t, tt.message, PublicMessage(tt.err))
		})
	}
}

func TestExtractValidationErrors(t *testing.T) {
	type body struct {
		Token string `validate:"required"`
	}
	err := extractValidationErrors(validator.New().Struct(body{}))

	var ve *ErrValidation
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Token", ve.Field)
	assert.Equal(t, "required", ve.Message)

	err = extractValidationErrors(errors.New("other"))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "request", ve.Field)
}
