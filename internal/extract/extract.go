// Package extract attempts to resolve embed page URLs into direct,
// natively playable stream URLs. The real extraction contract belongs to
// the streaming provider; implementations here are deliberately generic.
package extract

import "context"

// Extractor resolves an embed URL into a direct stream URL.
// An empty string with a nil error means the extraction was inconclusive,
// which is an expected, recoverable outcome. A non-nil error signals an
// unexpected fault (network failure, malformed input).
type Extractor interface {
	Extract(ctx context.Context, embedURL string) (string, error)
}

// New returns the extractor for the given kind ("page" or "inert").
func New(kind string) Extractor {
	switch kind {
	case "page":
		return NewPageScanner()
	default:
		return Inert{}
	}
}

// Inert is an Extractor that never finds anything. It is the safe choice
// when no extraction endpoint is trusted.
type Inert struct{}

// Extract always reports an inconclusive result.
func (Inert) Extract(context.Context, string) (string, error) {
	return "", nil
}
