package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"marquee/internal/httputil"
	"marquee/internal/media"
)

// Catalog implements Provider against a Cinemeta-compatible metadata API.
type Catalog struct {
	base   string // e.g., "https://v3-cinemeta.strem.io"
	client *http.Client
}

// NewCatalog creates a new Catalog provider.
func NewCatalog(base string) *Catalog {
	return &Catalog{
		base:   strings.TrimRight(base, "/"),
		client: httputil.NewClient(),
	}
}

// meta is the wire shape of a single catalog entry.
type meta struct {
	ID          string   `json:"id"`
	IMDBID      string   `json:"imdb_id"`
	Name        string   `json:"name"`
	ReleaseInfo string   `json:"releaseInfo"`
	Poster      string   `json:"poster"`
	IMDBRating  string   `json:"imdbRating"`
	Genres      []string `json:"genres"`
	Description string   `json:"description"`
}

func (m meta) toSearchResult() media.SearchResult {
	genre := ""
	if len(m.Genres) > 0 {
		genre = m.Genres[0]
	}
	return media.SearchResult{
		ID:     m.ID,
		Title:  m.Name,
		Year:   m.ReleaseInfo,
		Poster: m.Poster,
		Rating: m.IMDBRating,
		Genre:  genre,
	}
}

// Search returns matching results for a query.
func (c *Catalog) Search(ctx context.Context, query string) ([]media.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	searchURL := fmt.Sprintf("%s/catalog/movie/top/search=%s.json", c.base, url.PathEscape(query))
	body, err := httputil.GetJSON(ctx, c.client, searchURL)
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", query, err)
	}

	var payload struct {
		Metas []meta `json:"metas"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	results := make([]media.SearchResult, 0, len(payload.Metas))
	for _, m := range payload.Metas {
		results = append(results, m.toSearchResult())
	}
	return results, nil
}

// GetDetails returns detailed metadata for a movie.
func (c *Catalog) GetDetails(ctx context.Context, id string) (*media.Detail, error) {
	if err := httputil.ValidateID(id); err != nil {
		return nil, fmt.Errorf("invalid movie ID: %w", err)
	}

	detailURL := fmt.Sprintf("%s/meta/movie/%s.json", c.base, url.PathEscape(id))
	body, err := httputil.GetJSON(ctx, c.client, detailURL)
	if err != nil {
		return nil, fmt.Errorf("getting details for %s: %w", id, err)
	}

	var payload struct {
		Meta meta `json:"meta"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing detail response: %w", err)
	}
	if payload.Meta.ID == "" {
		return nil, fmt.Errorf("no metadata found for %s", id)
	}

	imdbID := payload.Meta.IMDBID
	if imdbID == "" {
		// Cinemeta movie ids are usually the IMDb id already.
		imdbID = payload.Meta.ID
	}

	return &media.Detail{
		ID:       payload.Meta.ID,
		IMDBID:   imdbID,
		Title:    payload.Meta.Name,
		Year:     payload.Meta.ReleaseInfo,
		Overview: payload.Meta.Description,
		Poster:   payload.Meta.Poster,
	}, nil
}

// Trending returns the top movie catalog page.
func (c *Catalog) Trending(ctx context.Context) ([]media.SearchResult, error) {
	trendingURL := fmt.Sprintf("%s/catalog/movie/top.json", c.base)
	body, err := httputil.GetJSON(ctx, c.client, trendingURL)
	if err != nil {
		return nil, fmt.Errorf("getting trending: %w", err)
	}

	var payload struct {
		Metas []meta `json:"metas"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing trending response: %w", err)
	}

	results := make([]media.SearchResult, 0, len(payload.Metas))
	for _, m := range payload.Metas {
		results = append(results, m.toSearchResult())
	}
	return results, nil
}
