// Package ingestion turns a generation request into normalized plain text
// plus whatever metadata its source carries.
package ingestion

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmptyInput is returned for a blank text source.
	ErrEmptyInput = errors.New("job description text is required")
	// ErrListingNotFound is returned when a referenced listing does not exist.
	ErrListingNotFound = errors.New("listing not found")
	// ErrFetchFailed is returned when a user-supplied URL cannot be fetched.
	ErrFetchFailed = errors.New("could not fetch the job posting at that URL")
	// ErrInvalidSource is returned unless exactly one of text, url or listingId is set.
	ErrInvalidSource = errors.New("provide exactly one of text, url or listingId")
)

// SourceKind identifies which field of a request carries the input.
type SourceKind int

// Source kinds
const (
	SourceText SourceKind = iota + 1
	SourceURL
	SourceListing
)

func (k SourceKind) String() string {
	switch k {
	case SourceText:
		return "text"
	case SourceURL:
		return "url"
	case SourceListing:
		return "listing"
	default:
		return "unknown"
	}
}

// Source is the single populated input of a request.
type Source struct {
	Kind  SourceKind
	Value string
}

// TextSource wraps raw posting text.
func TextSource(text string) Source { return Source{Kind: SourceText, Value: text} }

// URLSource wraps a remote posting URL.
func URLSource(u string) Source { return Source{Kind: SourceURL, Value: u} }

// ListingSource wraps a listing id.
func ListingSource(id string) Source { return Source{Kind: SourceListing, Value: id} }

// GenerationRequest is the body of a summary request.
type GenerationRequest struct {
	ListingID       string `json:"listingId,omitempty" validate:"omitempty,max=128"`
	Text            string `json:"text,omitempty" validate:"omitempty,max=200000"`
	URL             string `json:"url,omitempty" validate:"omitempty,max=2048"`
	ForceRegenerate bool   `json:"forceRegenerate,omitempty"`
}

var validate = validator.New()

// Validate checks field limits.
func (r *GenerationRequest) Validate() error {
	return validate.Struct(r)
}

// Source returns the one populated source. Blank fields count as absent,
// except that a text field with only whitespace and nothing else set is an
// empty-input error rather than a missing source.
func (r *GenerationRequest) Source() (Source, error) {
	var sources []Source
	if strings.TrimSpace(r.Text) != "" {
		sources = append(sources, TextSource(r.Text))
	}
	if strings.TrimSpace(r.URL) != "" {
		sources = append(sources, URLSource(strings.TrimSpace(r.URL)))
	}
	if strings.TrimSpace(r.ListingID) != "" {
		sources = append(sources, ListingSource(strings.TrimSpace(r.ListingID)))
	}

	switch len(sources) {
	case 1:
		return sources[0], nil
	case 0:
		if r.Text != "" {
			return Source{}, ErrEmptyInput
		}
		return Source{}, ErrInvalidSource
	default:
		return Source{}, ErrInvalidSource
	}
}
