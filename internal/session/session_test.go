package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"marquee/internal/media"
	"marquee/internal/resolver"
)

// fakeSource is a controllable Sourcer that counts calls.
type fakeSource struct {
	mu           sync.Mutex
	refreshCalls int
	extractCalls int
	probeCalls   int

	refreshURL string
	refreshErr error
	extractURL string
	extractErr error
	expired    bool

	block        chan struct{} // when set, Refresh waits until closed
	extractBlock chan struct{} // when set, ExtractDirect waits until closed
}

func (f *fakeSource) Refresh(_ context.Context, cfg *media.VideoSourceConfig) (string, error) {
	f.mu.Lock()
	f.refreshCalls++
	block := f.block
	url, err := f.refreshURL, f.refreshErr
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if err != nil {
		return "", err
	}
	if url != "" {
		return url, nil
	}
	if cfg != nil {
		return cfg.RawURL, nil
	}
	return "", &resolver.ResolutionError{Reason: "no config"}
}

func (f *fakeSource) ExtractDirect(context.Context, string) (string, error) {
	f.mu.Lock()
	f.extractCalls++
	block := f.extractBlock
	url, err := f.extractURL, f.extractErr
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return url, err
}

func (f *fakeSource) CheckExpired(context.Context, string) bool {
	f.mu.Lock()
	f.probeCalls++
	f.mu.Unlock()
	return f.expired
}

func (f *fakeSource) counts() (refresh, extract, probe int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls, f.extractCalls, f.probeCalls
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSubmitDirectSource(t *testing.T) {
	src := &fakeSource{}
	s := New(src, "https://cdn.example.com/hls/tt1/master.m3u8", Options{})
	defer s.Close()

	snap := s.Snapshot()
	if snap.State != StatePlaying {
		t.Errorf("state = %v, want playing", snap.State)
	}
	if snap.Mode != media.ModeDirect {
		t.Errorf("mode = %v, want direct", snap.Mode)
	}

	// Direct sources never trigger automatic extraction.
	time.Sleep(50 * time.Millisecond)
	if _, extracts, _ := src.counts(); extracts != 0 {
		t.Errorf("extract calls = %d, want 0 for direct source", extracts)
	}
}

func TestSubmitEmbedTriggersOneExtraction(t *testing.T) {
	src := &fakeSource{extractURL: "https://cdn.example.com/v/master.m3u8"}
	s := New(src, "https://vidsrc.example/embed/movie/tt1", Options{})
	defer s.Close()

	snap := s.Snapshot()
	if snap.Mode != media.ModeEmbed {
		t.Errorf("mode = %v, want embed", snap.Mode)
	}

	waitFor(t, func() bool {
		return s.Snapshot().DirectURL != ""
	})

	snap = s.Snapshot()
	if snap.DirectURL != "https://cdn.example.com/v/master.m3u8" {
		t.Errorf("DirectURL = %q", snap.DirectURL)
	}
	// The affordance is exposed, but the mode must not force-switch.
	if snap.Mode != media.ModeEmbed {
		t.Errorf("mode = %v after extraction, want embed", snap.Mode)
	}

	time.Sleep(50 * time.Millisecond)
	if _, extracts, _ := src.counts(); extracts != 1 {
		t.Errorf("extract calls = %d, want exactly 1", extracts)
	}
}

func TestSubmitValidation(t *testing.T) {
	src := &fakeSource{}
	s := New(src, "https://host.example/v.mp4", Options{})
	defer s.Close()

	before := s.Snapshot()

	tests := []string{"", "   ", "no-scheme-here", "host.example/v.mp4"}
	for _, input := range tests {
		err := s.Submit(input)
		var valErr *resolver.ValidationError
		if !errors.As(err, &valErr) {
			t.Errorf("Submit(%q) error = %v, want ValidationError", input, err)
		}
	}

	after := s.Snapshot()
	if after.CurrentSrc != before.CurrentSrc || after.State != before.State {
		t.Errorf("failed submits changed state: %+v -> %+v", before, after)
	}
}

func TestRefreshCoalescesConcurrentCalls(t *testing.T) {
	block := make(chan struct{})
	src := &fakeSource{block: block}
	s := New(src, "https://host.example/v.mp4", Options{})
	defer s.Close()

	done := make(chan struct{})
	go func() {
		_ = s.Refresh(context.Background())
		close(done)
	}()

	waitFor(t, func() bool { return s.Snapshot().IsLoading })

	// A second refresh while one is in flight must not start another.
	if err := s.Refresh(context.Background()); err != nil {
		t.Errorf("coalesced refresh returned error: %v", err)
	}
	if refreshes, _, _ := src.counts(); refreshes != 1 {
		t.Errorf("refresh calls = %d, want 1", refreshes)
	}

	close(block)
	<-done

	if refreshes, _, _ := src.counts(); refreshes != 1 {
		t.Errorf("refresh calls after unblock = %d, want 1", refreshes)
	}
}

func TestSubmitDuringRefreshWins(t *testing.T) {
	block := make(chan struct{})
	src := &fakeSource{block: block, refreshURL: "https://old.example/v.mp4?t=1"}
	s := New(src, "https://old.example/v.mp4", Options{})
	defer s.Close()

	done := make(chan struct{})
	go func() {
		_ = s.Refresh(context.Background())
		close(done)
	}()

	waitFor(t, func() bool { return s.Snapshot().IsLoading })

	// The source submitted mid-flight replaces the session wholesale; the
	// refresh result computed for the old source must not clobber it.
	if err := s.Submit("https://new.example/other.m3u8"); err != nil {
		t.Fatal(err)
	}

	close(block)
	<-done

	snap := s.Snapshot()
	if snap.CurrentSrc != "https://new.example/other.m3u8" {
		t.Errorf("CurrentSrc = %q, want the newly submitted source", snap.CurrentSrc)
	}
	if snap.State != StatePlaying {
		t.Errorf("state = %v, want playing", snap.State)
	}
}

func TestRefreshFailurePreservesSource(t *testing.T) {
	src := &fakeSource{refreshErr: &resolver.NetworkError{Op: "refresh", Err: errors.New("timeout")}}
	s := New(src, "https://host.example/v.mp4", Options{})
	defer s.Close()

	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() should propagate the failure")
	}

	snap := s.Snapshot()
	if snap.State != StateError {
		t.Errorf("state = %v, want error", snap.State)
	}
	if snap.Mode != media.ModeError {
		t.Errorf("mode = %v, want error view", snap.Mode)
	}
	if snap.CurrentSrc != "https://host.example/v.mp4" {
		t.Errorf("CurrentSrc = %q, want the last good source preserved", snap.CurrentSrc)
	}
}

func TestRetryFromError(t *testing.T) {
	src := &fakeSource{refreshErr: errors.New("down")}
	s := New(src, "https://host.example/v.mp4", Options{})
	defer s.Close()

	_ = s.Refresh(context.Background())
	if s.Snapshot().State != StateError {
		t.Fatal("expected error state")
	}

	src.mu.Lock()
	src.refreshErr = nil
	src.refreshURL = "https://host.example/v.mp4?t=99"
	src.mu.Unlock()

	if err := s.Retry(context.Background()); err != nil {
		t.Fatalf("Retry() error: %v", err)
	}

	snap := s.Snapshot()
	if snap.State != StatePlaying {
		t.Errorf("state = %v, want playing", snap.State)
	}
	if snap.CurrentSrc != "https://host.example/v.mp4?t=99" {
		t.Errorf("CurrentSrc = %q, want refreshed URL", snap.CurrentSrc)
	}
}

func TestRetryOutsideErrorIsNoop(t *testing.T) {
	src := &fakeSource{}
	s := New(src, "https://host.example/v.mp4", Options{})
	defer s.Close()

	if err := s.Retry(context.Background()); err != nil {
		t.Errorf("Retry() in playing state returned %v", err)
	}
	if refreshes, _, _ := src.counts(); refreshes != 0 {
		t.Errorf("refresh calls = %d, want 0", refreshes)
	}
}

func TestToggleModeOverride(t *testing.T) {
	src := &fakeSource{}
	s := New(src, "https://host.example/v.mp4", Options{})
	defer s.Close()

	if s.Snapshot().Mode != media.ModeDirect {
		t.Fatal("expected direct mode for .mp4 source")
	}

	s.ToggleMode()
	if s.Snapshot().Mode != media.ModeEmbed {
		t.Error("toggle should force embed mode")
	}

	s.ToggleMode()
	if s.Snapshot().Mode != media.ModeDirect {
		t.Error("second toggle should force direct mode")
	}

	// Override clears when the source changes.
	s.ToggleMode() // force embed
	if err := s.Submit("https://host.example/other.mp4"); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().Mode != media.ModeDirect {
		t.Error("new source should clear the forced mode")
	}
}

func TestExtractOriginalSingleFlight(t *testing.T) {
	block := make(chan struct{})
	src := &fakeSource{extractURL: "https://cdn.example.com/v.m3u8", extractBlock: block}
	s := New(src, "https://host.example/v.mp4", Options{})
	defer s.Close()

	done := make(chan struct{})
	go func() {
		s.ExtractOriginal(context.Background())
		close(done)
	}()

	waitFor(t, func() bool { return s.Snapshot().IsExtracting })

	// Re-entrant calls while one extraction is in flight are rejected.
	for i := 0; i < 4; i++ {
		s.ExtractOriginal(context.Background())
	}

	close(block)
	<-done

	if _, extracts, _ := src.counts(); extracts != 1 {
		t.Errorf("extract calls = %d, want 1", extracts)
	}
}

func TestExtractInconclusiveKeepsState(t *testing.T) {
	src := &fakeSource{} // extractURL empty: inconclusive
	s := New(src, "https://host.example/v.mp4", Options{})
	defer s.Close()

	s.ExtractOriginal(context.Background())

	snap := s.Snapshot()
	if snap.State != StatePlaying {
		t.Errorf("state = %v, want playing after inconclusive extraction", snap.State)
	}
	if snap.DirectURL != "" {
		t.Errorf("DirectURL = %q, want empty", snap.DirectURL)
	}
	if snap.Notice == "" {
		t.Error("inconclusive extraction should surface a notice")
	}
}

func TestScheduledRefresh(t *testing.T) {
	src := &fakeSource{refreshURL: "https://host.example/v.mp4"}
	s := New(src, "https://host.example/v.mp4", Options{RefreshEvery: 20 * time.Millisecond})
	defer s.Close()

	waitFor(t, func() bool {
		refreshes, _, _ := src.counts()
		return refreshes >= 2
	})
}

func TestExpiryProbeTriggersRefresh(t *testing.T) {
	src := &fakeSource{expired: true, refreshURL: "https://host.example/v.mp4"}
	s := New(src, "https://host.example/v.mp4", Options{ExpiryCheck: 20 * time.Millisecond})
	defer s.Close()

	waitFor(t, func() bool {
		refreshes, _, probes := src.counts()
		return probes >= 1 && refreshes >= 1
	})
}

func TestExpiryProbeFreshSourceNoRefresh(t *testing.T) {
	src := &fakeSource{expired: false}
	s := New(src, "https://host.example/v.mp4", Options{ExpiryCheck: 20 * time.Millisecond})
	defer s.Close()

	waitFor(t, func() bool {
		_, _, probes := src.counts()
		return probes >= 3
	})

	if refreshes, _, _ := src.counts(); refreshes != 0 {
		t.Errorf("refresh calls = %d, want 0 while the source is fresh", refreshes)
	}
}

func TestCloseStopsTimers(t *testing.T) {
	src := &fakeSource{refreshURL: "https://host.example/v.mp4"}
	s := New(src, "https://host.example/v.mp4", Options{
		RefreshEvery: 15 * time.Millisecond,
		ExpiryCheck:  15 * time.Millisecond,
	})

	waitFor(t, func() bool {
		refreshes, _, probes := src.counts()
		return refreshes+probes >= 2
	})

	s.Close()
	// Give any in-flight timer fire a moment to drain.
	time.Sleep(50 * time.Millisecond)
	refreshesAfter, extractsAfter, probesAfter := src.counts()

	time.Sleep(100 * time.Millisecond)
	refreshes, extracts, probes := src.counts()
	if refreshes != refreshesAfter || extracts != extractsAfter || probes != probesAfter {
		t.Errorf("resolver calls continued after Close: %d/%d/%d -> %d/%d/%d",
			refreshesAfter, extractsAfter, probesAfter, refreshes, extracts, probes)
	}
}

func TestCloseIdempotent(t *testing.T) {
	s := New(&fakeSource{}, "https://host.example/v.mp4", Options{})
	s.Close()
	s.Close()
}

func TestUpdatesSignal(t *testing.T) {
	src := &fakeSource{}
	s := New(src, "", Options{})
	defer s.Close()

	if err := s.Submit("https://host.example/v.mp4"); err != nil {
		t.Fatal(err)
	}

	select {
	case <-s.Updates():
	case <-time.After(time.Second):
		t.Fatal("Submit did not signal an update")
	}
}
