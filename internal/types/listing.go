// Package types provides type definitions for structured data shared across the jobscout system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Listing is a mirrored third-party job listing as supplied by the listing store.
type Listing struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Employer    string `json:"employer"`
	Description string `json:"description"`
	SourceURL   string `json:"source_url,omitempty"` // Remote posting page, if the listing has one
}

// HasRemoteSource reports whether the listing links to a fetchable page.
func (l *Listing) HasRemoteSource() bool {
	u := strings.TrimSpace(l.SourceURL)
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
