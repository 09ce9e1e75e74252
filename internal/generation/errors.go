package generation

import "errors"

var (
	// ErrInvalidComparisonSize is returned when a comparison is not over 2 or 3 listings.
	ErrInvalidComparisonSize = errors.New("comparison requires 2 or 3 listings")
	// ErrModelNotConfigured is returned when no model client is available.
	ErrModelNotConfigured = errors.New("generation model is not configured")
	// ErrGenerationFailed is returned once every attempt has failed. Its message is safe to show users.
	ErrGenerationFailed = errors.New("generation failed, please try again")
)

// Comparison size bounds.
const (
	MinComparisonListings = 2
	MaxComparisonListings = 3
)
