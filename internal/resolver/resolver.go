// Package resolver turns movie identifiers and stale source configs into
// playable URLs: deterministic embed URLs, cache-busted direct URLs,
// direct-stream extraction, and expiry probing.
package resolver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"marquee/internal/extract"
	"marquee/internal/httputil"
	"marquee/internal/media"
)

// Resolver produces and refreshes playable video source URLs.
type Resolver struct {
	embedBase string
	client    *http.Client
	extractor extract.Extractor
	refreshes atomic.Uint64
	now       func() time.Time
	logf      func(format string, args ...interface{})
}

// New creates a Resolver building embed URLs under embedBase and
// delegating direct-stream extraction to ex. Probe diagnostics are
// silent until SetLogf installs a logger.
func New(embedBase string, ex extract.Extractor) *Resolver {
	return &Resolver{
		embedBase: strings.TrimRight(embedBase, "/"),
		client:    httputil.NewClient(),
		extractor: ex,
		now:       time.Now,
		logf:      func(string, ...interface{}) {},
	}
}

// SetLogf installs a logger for probe diagnostics. The TUI runs on the
// alternate screen, so nothing may write to stderr unless asked for.
func (r *Resolver) SetLogf(f func(format string, args ...interface{})) {
	r.logf = f
}

// CanonicalID normalizes a movie identifier to the tt-prefixed form.
// Purely numeric input gains the prefix; already-prefixed input is
// unchanged; anything else passes through for the caller to validate.
func CanonicalID(movieID string) string {
	id := strings.TrimSpace(movieID)
	if httputil.IsNumeric(id) {
		return "tt" + id
	}
	if rest, ok := strings.CutPrefix(id, "tt"); ok && httputil.IsNumeric(rest) {
		return id
	}
	return id
}

// ResolveFromID builds the deterministic embed URL for a movie identifier.
func (r *Resolver) ResolveFromID(movieID string) string {
	return httputil.BuildURL(r.embedBase, "embed", "movie", CanonicalID(movieID))
}

// Refresh produces a new URL for a previously parsed source config.
// Direct sources get a fresh cache-bust timestamp so clients bypass
// expired signed URLs; embed sources are rebuilt with a refresh marker.
// An incomplete config fails with a ResolutionError before any I/O.
func (r *Resolver) Refresh(_ context.Context, cfg *media.VideoSourceConfig) (string, error) {
	if cfg == nil {
		return "", &ResolutionError{Reason: "missing source config"}
	}
	if cfg.BaseURL == "" {
		return "", &ResolutionError{Reason: "source config has empty base URL"}
	}
	if cfg.VideoID == "" {
		return "", &ResolutionError{Reason: "source config has empty video ID"}
	}

	if cfg.IsDirectVideo {
		return r.cacheBust(cfg)
	}

	n := r.refreshes.Add(1)
	return r.ResolveFromID(cfg.VideoID) + "?refresh=" + strconv.FormatUint(n, 10), nil
}

// cacheBust replaces or appends the `t` query marker on a direct URL.
func (r *Resolver) cacheBust(cfg *media.VideoSourceConfig) (string, error) {
	raw := cfg.RawURL
	if raw == "" {
		raw = cfg.BaseURL + "/" + cfg.VideoID
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", &ResolutionError{Reason: fmt.Sprintf("unparsable source URL %q", raw)}
	}

	q := u.Query()
	q.Set("t", strconv.FormatInt(r.now().Unix(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ExtractDirect attempts to resolve a direct stream URL for an embed
// source. An empty result with nil error means the extraction was
// inconclusive, which is expected and recoverable. Errors indicate faults.
func (r *Resolver) ExtractDirect(ctx context.Context, embedURL string) (string, error) {
	if strings.TrimSpace(embedURL) == "" {
		return "", &ValidationError{Reason: "empty embed URL"}
	}

	direct, err := r.extractor.Extract(ctx, embedURL)
	if err != nil {
		return "", &NetworkError{Op: "extract", Err: err}
	}
	return direct, nil
}

// CheckExpired probes whether a URL still resolves. Gone/denied statuses
// read as expired. Any inability to complete the probe is fail-open
// (not expired) and only logged, to avoid spurious refresh storms.
func (r *Resolver) CheckExpired(ctx context.Context, rawURL string) bool {
	status, err := httputil.Head(ctx, r.client, rawURL)
	if err != nil {
		r.logf("expiry probe for %s failed: %v", rawURL, err)
		return false
	}

	switch status {
	case http.StatusForbidden, http.StatusNotFound, http.StatusGone:
		return true
	default:
		return false
	}
}
