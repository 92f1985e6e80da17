// Package provider defines the interface for movie catalog providers
// and their implementations.
package provider

import (
	"context"

	"marquee/internal/media"
)

// Provider is the interface that catalog providers must implement.
type Provider interface {
	// Search returns matching results for a query.
	Search(ctx context.Context, query string) ([]media.SearchResult, error)

	// GetDetails returns detailed metadata for a movie, including the
	// canonical IMDb identifier consumed by the source resolver.
	GetDetails(ctx context.Context, id string) (*media.Detail, error)

	// Trending returns currently popular movies.
	Trending(ctx context.Context) ([]media.SearchResult, error)
}

// FormatDisplayTitle renders a search result for list display.
func FormatDisplayTitle(r media.SearchResult) string {
	s := r.Title
	if r.Year != "" {
		s += " (" + r.Year + ")"
	}
	if r.Rating != "" {
		s += " " + r.Rating
	}
	return s
}
