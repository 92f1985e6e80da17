// Package media defines shared types for the marquee application.
package media

import "time"

// Mode is the rendering mode a playback session resolves to.
type Mode int

const (
	ModeEmbed Mode = iota
	ModeDirect
	ModeError
)

func (m Mode) String() string {
	switch m {
	case ModeEmbed:
		return "embed"
	case ModeDirect:
		return "direct"
	case ModeError:
		return "error"
	default:
		return "unknown"
	}
}

// SearchResult represents a single search result from a catalog provider.
type SearchResult struct {
	ID     string // Provider-specific ID or canonical tt-prefixed ID
	Title  string // Display title
	Year   string // Release year, may be empty
	Poster string // Poster image URL, may be empty
	Rating string // Rating string, may be empty
	Genre  string // Primary genre, may be empty
}

// Detail is the full metadata for a single movie, including the canonical
// IMDb identifier used by the source resolver.
type Detail struct {
	ID       string
	IMDBID   string // Canonical tt-prefixed identifier
	Title    string
	Year     string
	Overview string
	Poster   string
}

// VideoSourceConfig is the parsed form of a video source URL.
// Immutable once computed; recomputed whenever the source URL changes.
type VideoSourceConfig struct {
	RawURL        string            // full source URL as supplied
	BaseURL       string            // scheme://host
	VideoID       string            // last non-empty path segment
	IsDirectVideo bool              // classifier verdict for the full URL
	Params        map[string]string // query parameters
}

// HistoryEntry represents a single entry in the watch history.
type HistoryEntry struct {
	ID        string // Movie identifier
	Title     string
	Year      string
	Source    string // Resolved source URL at playback time
	Mode      string // "direct" or "embed"
	WatchedAt time.Time
}
