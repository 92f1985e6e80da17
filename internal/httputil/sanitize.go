package httputil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// validIDPattern matches alphanumeric IDs with hyphens and slashes (catalog content IDs).
	validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9/_-]+$`)

	// numericIDPattern matches purely numeric IDs.
	numericIDPattern = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateURL checks that a URL is well-formed and uses HTTPS.
// Plain HTTP is permitted for loopback hosts only, so local test
// servers and LAN-side stubs keep working.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	switch u.Scheme {
	case "https":
		return nil
	case "http":
		if isLoopback(u.Hostname()) {
			return nil
		}
		return fmt.Errorf("plain HTTP only allowed for loopback hosts, got %q", u.Host)
	default:
		return fmt.Errorf("only HTTPS URLs are allowed, got %q", u.Scheme)
	}
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// ValidateID checks that a catalog content ID contains only safe characters.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}
	if len(id) > 256 {
		return fmt.Errorf("ID too long: %d characters", len(id))
	}
	if !validIDPattern.MatchString(id) {
		return fmt.Errorf("ID contains invalid characters: %q", id)
	}
	if strings.Contains(id, "..") {
		return fmt.Errorf("ID contains path traversal: %q", id)
	}
	return nil
}

// ValidateNumericID checks that an ID is purely numeric.
func ValidateNumericID(id string) error {
	if id == "" {
		return fmt.Errorf("numeric ID cannot be empty")
	}
	if !numericIDPattern.MatchString(id) {
		return fmt.Errorf("expected numeric ID, got %q", id)
	}
	return nil
}

// IsNumeric reports whether a string is one or more ASCII digits.
func IsNumeric(s string) bool {
	return numericIDPattern.MatchString(s)
}

// BuildURL constructs a URL from base and path components, encoding each path segment.
func BuildURL(base string, pathSegments ...string) string {
	u := strings.TrimRight(base, "/")
	for _, seg := range pathSegments {
		u += "/" + url.PathEscape(seg)
	}
	return u
}
