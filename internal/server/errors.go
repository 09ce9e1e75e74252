// Package server provides the HTTP API for summaries and comparisons.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/jobscout/internal/generation"
	"github.com/jonathan/jobscout/internal/ingestion"
)

// ErrUnauthorized indicates a missing or rejected credential.
var ErrUnauthorized = errors.New("Unauthorized")

const internalErrorMessage = "Internal server error"

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// clientErrors are reported to the caller verbatim.
var clientErrors = []error{
	ingestion.ErrEmptyInput,
	ingestion.ErrInvalidSource,
	ingestion.ErrFetchFailed,
	ingestion.ErrListingNotFound,
	generation.ErrInvalidComparisonSize,
	generation.ErrModelNotConfigured,
	ErrUnauthorized,
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var ve *ErrValidation
	switch {
	case errors.As(err, &ve),
		errors.Is(err, ingestion.ErrEmptyInput),
		errors.Is(err, ingestion.ErrInvalidSource),
		errors.Is(err, ingestion.ErrFetchFailed),
		errors.Is(err, generation.ErrInvalidComparisonSize):
		return http.StatusBadRequest
	case errors.Is(err, ingestion.ErrListingNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, generation.ErrModelNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text safe to show a caller. Errors without a
// public form collapse to a generic message.
func PublicMessage(err error) string {
	var ve *ErrValidation
	if errors.As(err, &ve) {
		return ve.Error()
	}
	for _, known := range clientErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	if errors.Is(err, generation.ErrGenerationFailed) {
		return generation.ErrGenerationFailed.Error()
	}
	return internalErrorMessage
}

// extractValidationErrors converts validator errors into an *ErrValidation.
func extractValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		// Report the first failure only
		ve := validationErrors[0]
		return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ErrValidation{Field: "request", Message: "invalid request"}
}
