// Package videourl classifies and parses video source URLs.
// Classification decides whether a URL is natively playable (stream manifest
// or video file) or an embed page meant for an external player surface.
package videourl

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"marquee/internal/media"
)

// directExtPattern matches direct video file extensions, tolerating a query
// string or fragment after the extension.
var directExtPattern = regexp.MustCompile(`\.(mp4|webm|ogg|mov)([?#]|$)`)

// IsDirectVideoURL reports whether a URL references a natively playable
// video resource. True iff the URL ends with ".m3u8", contains "/stream",
// or carries a .mp4/.webm/.ogg/.mov extension (case-insensitive).
// Pure and total: malformed input simply fails every predicate.
func IsDirectVideoURL(rawURL string) bool {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	if u == "" {
		return false
	}
	if strings.HasSuffix(u, ".m3u8") {
		return true
	}
	if strings.Contains(u, "/stream") {
		return true
	}
	return directExtPattern.MatchString(u)
}

// Parse parses a source URL into a typed VideoSourceConfig.
// The scheme and host are required. On failure it returns an error, never
// panics; callers treat the error as terminal for the operation at hand.
func Parse(rawURL string) (*media.VideoSourceConfig, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parsing source URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("source URL %q has no scheme or host", rawURL)
	}

	params := make(map[string]string)
	for key, vals := range u.Query() {
		if len(vals) > 0 {
			params[key] = vals[0]
		}
	}

	return &media.VideoSourceConfig{
		RawURL:        u.String(),
		BaseURL:       u.Scheme + "://" + u.Host,
		VideoID:       lastPathSegment(u.Path),
		IsDirectVideo: IsDirectVideoURL(rawURL),
		Params:        params,
	}, nil
}

// lastPathSegment returns the last non-empty path segment, or "".
func lastPathSegment(path string) string {
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}
