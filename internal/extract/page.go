package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"marquee/internal/httputil"
	"marquee/internal/videourl"
)

// filePattern matches the `file: "..."` assignment common to JS player configs.
var filePattern = regexp.MustCompile(`file:\s*["']([^"']+)["']`)

// sourceSelectors are tried in order against the embed page DOM.
var sourceSelectors = []string{
	"video source[src]",
	"video[src]",
	"source[src]",
}

// PageScanner fetches an embed page and scans it for a direct stream URL:
// first <video>/<source> elements, then player-config `file:` assignments.
// Candidates must classify as direct video URLs to count.
type PageScanner struct {
	client *http.Client
}

// NewPageScanner creates a PageScanner with the hardened HTTP client.
func NewPageScanner() *PageScanner {
	return &PageScanner{client: httputil.NewClient()}
}

// Extract scans the embed page for a direct stream URL.
func (p *PageScanner) Extract(ctx context.Context, embedURL string) (string, error) {
	resp, err := httputil.Get(ctx, p.client, embedURL)
	if err != nil {
		return "", fmt.Errorf("fetching embed page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d for embed page", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return "", fmt.Errorf("reading embed page: %w", err)
	}
	html := string(body)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing embed page: %w", err)
	}

	for _, sel := range sourceSelectors {
		if src, ok := doc.Find(sel).First().Attr("src"); ok {
			if videourl.IsDirectVideoURL(src) {
				return src, nil
			}
		}
	}

	for _, match := range filePattern.FindAllStringSubmatch(html, -1) {
		if videourl.IsDirectVideoURL(match[1]) {
			return match[1], nil
		}
	}

	// Nothing usable on the page: inconclusive, not an error.
	return "", nil
}
