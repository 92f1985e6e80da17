// Package search debounces user input and dispatches catalog searches,
// discarding results that a newer query has since superseded.
package search

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"marquee/internal/media"
	"marquee/internal/provider"
)

// minQueryLen is the shortest query that reaches the catalog API.
const minQueryLen = 2

// Results is one emitted outcome: the query it belongs to, the matches,
// and any recoverable error.
type Results struct {
	Query   string
	Matches []media.SearchResult
	Err     error
}

// Coordinator debounces keystrokes and runs at most the trailing search of
// each quiet period. Stale in-flight responses are dropped by sequence
// number. Results are delivered on the channel returned by Results().
type Coordinator struct {
	provider provider.Provider
	delay    time.Duration
	out      chan Results

	mu     sync.Mutex
	timer  *time.Timer
	seq    uint64
	closed bool
}

// New creates a Coordinator dispatching against p after the given quiet
// period. A nonpositive delay dispatches immediately.
func New(p provider.Provider, delay time.Duration) *Coordinator {
	return &Coordinator{
		provider: p,
		delay:    delay,
		out:      make(chan Results, 8),
	}
}

// Results is the channel search outcomes arrive on. It is closed by Close
// so consumers can unblock and stop listening.
func (c *Coordinator) Results() <-chan Results {
	return c.out
}

// Update supersedes any pending dispatch with the latest query. Queries
// shorter than two runes clear results immediately without an API call.
func (c *Coordinator) Update(query string) {
	query = strings.TrimSpace(query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.seq++
	token := c.seq

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	if utf8.RuneCountInString(query) < minQueryLen {
		c.emit(Results{Query: query})
		return
	}

	if c.delay <= 0 {
		go c.dispatch(query, token)
		return
	}

	c.timer = time.AfterFunc(c.delay, func() {
		c.dispatch(query, token)
	})
}

// dispatch performs the search and emits the outcome unless a newer query
// has been issued since.
func (c *Coordinator) dispatch(query string, token uint64) {
	matches, err := c.provider.Search(context.Background(), query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || token != c.seq {
		return // superseded while in flight
	}
	c.emit(Results{Query: query, Matches: matches, Err: err})
}

// emit delivers without blocking; the consumer owns a buffered channel and
// only the freshest outcomes matter. Caller holds c.mu.
func (c *Coordinator) emit(r Results) {
	select {
	case c.out <- r:
	default:
	}
}

// Close cancels any pending dispatch and closes the results channel.
// In-flight responses are dropped.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	close(c.out)
}
