package provider

import (
	"context"
	"fmt"
	"strings"

	"marquee/internal/media"
)

// Sample is an in-memory Provider used for offline and demo runs.
// It is injected explicitly like any other provider; nothing in the
// application reaches for it as hidden global state.
type Sample struct {
	movies []media.Detail
}

// NewSample creates a Sample provider with a fixed set of well-known movies.
func NewSample() *Sample {
	return &Sample{
		movies: []media.Detail{
			{ID: "tt0111161", IMDBID: "tt0111161", Title: "The Shawshank Redemption", Year: "1994"},
			{ID: "tt0468569", IMDBID: "tt0468569", Title: "The Dark Knight", Year: "2008"},
			{ID: "tt1375666", IMDBID: "tt1375666", Title: "Inception", Year: "2010"},
			{ID: "tt0133093", IMDBID: "tt0133093", Title: "The Matrix", Year: "1999"},
			{ID: "tt15398776", IMDBID: "tt15398776", Title: "Oppenheimer", Year: "2023"},
			{ID: "tt1160419", IMDBID: "tt1160419", Title: "Dune", Year: "2021"},
		},
	}
}

// Search returns sample movies whose titles contain the query.
func (s *Sample) Search(_ context.Context, query string) ([]media.SearchResult, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	var results []media.SearchResult
	for _, m := range s.movies {
		if strings.Contains(strings.ToLower(m.Title), query) {
			results = append(results, media.SearchResult{
				ID:    m.ID,
				Title: m.Title,
				Year:  m.Year,
			})
		}
	}
	return results, nil
}

// GetDetails returns the sample movie with the given id.
func (s *Sample) GetDetails(_ context.Context, id string) (*media.Detail, error) {
	for _, m := range s.movies {
		if m.ID == id {
			detail := m
			return &detail, nil
		}
	}
	return nil, fmt.Errorf("no sample movie with ID %q", id)
}

// Trending returns every sample movie.
func (s *Sample) Trending(_ context.Context) ([]media.SearchResult, error) {
	results := make([]media.SearchResult, 0, len(s.movies))
	for _, m := range s.movies {
		results = append(results, media.SearchResult{
			ID:    m.ID,
			Title: m.Title,
			Year:  m.Year,
		})
	}
	return results, nil
}
