package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonathan/jobscout/internal/types"
)

// DefaultPageTimeout bounds a remote page fetch.
const DefaultPageTimeout = 10 * time.Second

// NoTextPlaceholder stands in for a fetched URL that yielded no text.
const NoTextPlaceholder = "No text content found."

// ListingLookup supplies mirrored job listings. It returns (nil, nil) when the
// listing does not exist.
type ListingLookup interface {
	GetListing(ctx context.Context, id string) (*types.Listing, error)
}

// PageSource fetches a remote page and returns its readable text.
type PageSource interface {
	Text(ctx context.Context, url string) (string, error)
}

// Resolver turns request sources into ResolvedInput.
type Resolver struct {
	listings    ListingLookup
	pages       PageSource
	pageTimeout time.Duration
	logger      *slog.Logger
}

// NewResolver creates a resolver. A zero pageTimeout uses DefaultPageTimeout.
func NewResolver(listings ListingLookup, pages PageSource, pageTimeout time.Duration, logger *slog.Logger) *Resolver {
	if pageTimeout <= 0 {
		pageTimeout = DefaultPageTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{listings: listings, pages: pages, pageTimeout: pageTimeout, logger: logger}
}

// Resolve produces the normalized text for src.
func (r *Resolver) Resolve(ctx context.Context, src Source) (types.ResolvedInput, error) {
	switch src.Kind {
	case SourceText:
		return r.resolveText(src.Value)
	case SourceURL:
		return r.resolveURL(ctx, src.Value)
	case SourceListing:
		return r.resolveListing(ctx, src.Value)
	default:
		return types.ResolvedInput{}, ErrInvalidSource
	}
}

func (r *Resolver) resolveText(text string) (types.ResolvedInput, error) {
	text = Normalize(strings.TrimSpace(text))
	if text == "" {
		return types.ResolvedInput{}, ErrEmptyInput
	}
	return types.ResolvedInput{Text: text}, nil
}

func (r *Resolver) resolveURL(ctx context.Context, url string) (types.ResolvedInput, error) {
	text, err := r.fetchPage(ctx, url)
	if err != nil {
		return types.ResolvedInput{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if text == "" {
		text = NoTextPlaceholder
	}
	return types.ResolvedInput{Text: text, SourceIsRemotePage: true}, nil
}

func (r *Resolver) resolveListing(ctx context.Context, id string) (types.ResolvedInput, error) {
	if r.listings == nil {
		return types.ResolvedInput{}, ErrListingNotFound
	}
	listing, err := r.listings.GetListing(ctx, id)
	if err != nil {
		return types.ResolvedInput{}, fmt.Errorf("get listing %s: %w", id, err)
	}
	if listing == nil {
		return types.ResolvedInput{}, ErrListingNotFound
	}

	in := types.ResolvedInput{
		Text:      Normalize(ListingText(listing)),
		JobTitle:  listing.Title,
		Employer:  listing.Employer,
		ListingID: listing.ID,
	}
	if !listing.HasRemoteSource() {
		return in, nil
	}

	text, err := r.fetchPage(ctx, listing.SourceURL)
	switch {
	case err != nil:
		r.logger.Info("remote page unavailable, using listing text", "listing", id, "url", listing.SourceURL, "error", err)
	case text == "":
		r.logger.Info("remote page had no text, using listing text", "listing", id, "url", listing.SourceURL)
	default:
		in.Text = text
		in.SourceIsRemotePage = true
	}
	return in, nil
}

// fetchPage fetches url within the page timeout and normalizes the result.
func (r *Resolver) fetchPage(ctx context.Context, url string) (string, error) {
	if r.pages == nil {
		return "", fmt.Errorf("no page fetcher configured")
	}
	ctx, cancel := context.WithTimeout(ctx, r.pageTimeout)
	defer cancel()

	text, err := r.pages.Text(ctx, url)
	if err != nil {
		return "", err
	}
	return Normalize(text), nil
}

// ListingText builds the fallback text for a listing from its own fields.
func ListingText(l *types.Listing) string {
	var sb strings.Builder
	if l.Title != "" {
		sb.WriteString(l.Title)
		sb.WriteString("\n")
	}
	if l.Employer != "" {
		sb.WriteString(l.Employer)
		sb.WriteString("\n")
	}
	if l.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(l.Description)
	}
	return sb.String()
}
