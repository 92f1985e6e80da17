// Package session owns the playback state machine: the currently displayed
// source, loading/extracting phases, render-mode selection, and the
// refresh/expiry timers scoped to the session's lifetime.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"marquee/internal/media"
	"marquee/internal/resolver"
	"marquee/internal/videourl"
)

// State is the playback session state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Sourcer is what the session needs from the source resolver.
type Sourcer interface {
	Refresh(ctx context.Context, cfg *media.VideoSourceConfig) (string, error)
	ExtractDirect(ctx context.Context, embedURL string) (string, error)
	CheckExpired(ctx context.Context, url string) bool
}

// Snapshot is the read-only view the presentation layer renders from.
type Snapshot struct {
	State        State
	Mode         media.Mode
	CurrentSrc   string
	DirectURL    string // auxiliary direct stream, if extraction succeeded
	IsLoading    bool
	IsExtracting bool
	Err          error
	Notice       string
}

// Options configures a session's recurring timers. A nonpositive interval
// disables the corresponding timer.
type Options struct {
	RefreshEvery time.Duration
	ExpiryCheck  time.Duration
}

// Session is a single playback session. All state is owned exclusively by
// the session and guarded by one mutex; timers are cancelled on source
// change and teardown.
type Session struct {
	src  Sourcer
	opts Options

	mu           sync.Mutex
	state        State
	currentSrc   string
	cfg          *media.VideoSourceConfig // nil when currentSrc is unparsable
	forced       *media.Mode              // user override, cleared on source change
	directURL    string
	loading      bool
	extracting   bool
	lastErr      error
	notice       string
	closed       bool
	timerStop    chan struct{} // current timer generation, nil when no timers run
	done         chan struct{}
	notifyC      chan struct{}
}

// New creates a session. The initial source, when non-empty, is submitted
// immediately.
func New(src Sourcer, initialSrc string, opts Options) *Session {
	s := &Session{
		src:     src,
		opts:    opts,
		state:   StateIdle,
		done:    make(chan struct{}),
		notifyC: make(chan struct{}, 1),
	}
	if initialSrc != "" {
		_ = s.Submit(initialSrc)
	}
	return s
}

// Updates signals that the snapshot changed. Signals coalesce; consumers
// re-read Snapshot() on each receive.
func (s *Session) Updates() <-chan struct{} {
	return s.notifyC
}

// Done is closed when the session is torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:        s.state,
		Mode:         s.modeLocked(),
		CurrentSrc:   s.currentSrc,
		DirectURL:    s.directURL,
		IsLoading:    s.loading,
		IsExtracting: s.extracting,
		Err:          s.lastErr,
		Notice:       s.notice,
	}
}

// modeLocked selects the render mode: Error state always wins, then the
// user override, then the classifier.
func (s *Session) modeLocked() media.Mode {
	if s.state == StateError {
		return media.ModeError
	}
	if s.forced != nil {
		return *s.forced
	}
	if videourl.IsDirectVideoURL(s.currentSrc) {
		return media.ModeDirect
	}
	return media.ModeEmbed
}

// Submit replaces the session's source. The new source must be non-empty
// and carry a scheme; on validation failure the session state is unchanged
// and a ValidationError is returned. On success the session goes straight
// to Playing without a network step, timers restart, the user override clears,
// and an embed source gets one automatic extraction attempt.
func (s *Session) Submit(rawSrc string) error {
	src := strings.TrimSpace(rawSrc)
	if src == "" {
		return &resolver.ValidationError{Reason: "source URL cannot be empty"}
	}
	if !strings.Contains(src, "://") {
		return &resolver.ValidationError{Reason: "source URL needs a scheme prefix"}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return &resolver.ValidationError{Reason: "session is closed"}
	}

	s.currentSrc = src
	s.cfg, _ = videourl.Parse(src) // unparsable sources fail later, at refresh
	s.forced = nil
	s.directURL = ""
	s.lastErr = nil
	s.notice = ""
	s.state = StatePlaying
	embed := s.modeLocked() == media.ModeEmbed
	s.restartTimersLocked()
	s.mu.Unlock()
	s.notify()

	if embed {
		go s.ExtractOriginal(context.Background())
	}
	return nil
}

// Refresh re-resolves the current source. Re-entrant calls while a refresh
// is in flight are coalesced into a no-op. On failure the session enters
// Error with the last good source preserved for Retry.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || s.loading {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.state = StateLoading
	s.notice = ""
	cfg := s.cfg
	src := s.currentSrc
	s.mu.Unlock()
	s.notify()

	newSrc, err := s.src.Refresh(ctx, cfg)

	s.mu.Lock()
	s.loading = false
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if s.currentSrc != src {
		// A new source was submitted while refreshing; the result is stale.
		s.mu.Unlock()
		s.notify()
		return nil
	}
	if err != nil {
		// currentSrc stays: the last good source remains active.
		s.state = StateError
		s.lastErr = err
		s.mu.Unlock()
		s.notify()
		return err
	}

	s.state = StatePlaying
	s.lastErr = nil
	if newSrc != s.currentSrc {
		s.currentSrc = newSrc
		s.cfg, _ = videourl.Parse(newSrc)
		s.restartTimersLocked()
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// Retry re-enters Loading from the Error state with the preserved source.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateError {
		s.mu.Unlock()
		return nil
	}
	s.lastErr = nil
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// ExtractOriginal attempts to resolve a direct stream URL for the current
// source. At most one extraction is in flight; success records the direct
// URL as an affordance without switching modes; an inconclusive or failed
// attempt leaves the session state untouched and surfaces a notice.
func (s *Session) ExtractOriginal(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.extracting || s.currentSrc == "" {
		s.mu.Unlock()
		return
	}
	s.extracting = true
	src := s.currentSrc
	s.mu.Unlock()
	s.notify()

	direct, err := s.src.ExtractDirect(ctx, src)

	s.mu.Lock()
	s.extracting = false
	if s.closed {
		s.mu.Unlock()
		return
	}
	switch {
	case err != nil:
		s.notice = "direct stream lookup failed"
	case direct == "":
		s.notice = "no direct stream found"
	case s.currentSrc != src:
		// Source changed while extracting; the result is stale.
	default:
		s.directURL = direct
		s.notice = "direct stream available"
	}
	s.mu.Unlock()
	s.notify()
}

// ToggleMode flips the user's embed/direct override. The override takes
// precedence over the classifier until the source next changes.
func (s *Session) ToggleMode() {
	s.mu.Lock()
	if s.state == StateError || s.closed {
		s.mu.Unlock()
		return
	}
	current := s.modeLocked()
	forced := media.ModeEmbed
	if current == media.ModeEmbed {
		forced = media.ModeDirect
	}
	s.forced = &forced
	s.mu.Unlock()
	s.notify()
}

// Close tears the session down: both timers stop and no further resolver
// calls are made on the session's behalf.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTimersLocked()
	close(s.done)
	s.mu.Unlock()
}

// restartTimersLocked cancels the previous timer generation and starts a
// fresh one for the current source. Caller holds s.mu.
func (s *Session) restartTimersLocked() {
	s.stopTimersLocked()
	if s.opts.RefreshEvery <= 0 && s.opts.ExpiryCheck <= 0 {
		return
	}

	stop := make(chan struct{})
	s.timerStop = stop
	go s.runTimers(stop)
}

// stopTimersLocked cancels the current timer generation. Caller holds s.mu.
func (s *Session) stopTimersLocked() {
	if s.timerStop != nil {
		close(s.timerStop)
		s.timerStop = nil
	}
}

// runTimers drives the scheduled refresh and the expiry probe until this
// timer generation is cancelled or the session closes.
func (s *Session) runTimers(stop chan struct{}) {
	var refreshC, expiryC <-chan time.Time

	if s.opts.RefreshEvery > 0 {
		t := time.NewTicker(s.opts.RefreshEvery)
		defer t.Stop()
		refreshC = t.C
	}
	if s.opts.ExpiryCheck > 0 {
		t := time.NewTicker(s.opts.ExpiryCheck)
		defer t.Stop()
		expiryC = t.C
	}

	for {
		select {
		case <-stop:
			return
		case <-s.done:
			return
		case <-refreshC:
			_ = s.Refresh(context.Background())
		case <-expiryC:
			s.mu.Lock()
			src := s.currentSrc
			closed := s.closed
			s.mu.Unlock()
			if closed || src == "" {
				return
			}
			if s.src.CheckExpired(context.Background(), src) {
				_ = s.Refresh(context.Background())
			}
		}
	}
}

// notify wakes the presentation layer; signals coalesce.
func (s *Session) notify() {
	select {
	case s.notifyC <- struct{}{}:
	default:
	}
}
