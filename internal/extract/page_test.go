package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func scanPage(t *testing.T, html string) (string, error) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)

	return NewPageScanner().Extract(context.Background(), srv.URL)
}

func TestPageScannerVideoSource(t *testing.T) {
	got, err := scanPage(t, `<html><body>
		<video controls><source src="https://cdn.example.com/v/master.m3u8" type="application/x-mpegURL"></video>
	</body></html>`)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got != "https://cdn.example.com/v/master.m3u8" {
		t.Errorf("Extract() = %q, want master.m3u8 URL", got)
	}
}

func TestPageScannerFilePattern(t *testing.T) {
	got, err := scanPage(t, `<html><head><script>
		var player = jwplayer("player").setup({ file: "https://cdn.example.com/clip.mp4", autostart: true });
	</script></head><body></body></html>`)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got != "https://cdn.example.com/clip.mp4" {
		t.Errorf("Extract() = %q, want clip.mp4 URL", got)
	}
}

func TestPageScannerSkipsNonDirectCandidates(t *testing.T) {
	// The file: value is a page URL, not a playable stream, so the scan
	// must come back inconclusive rather than return it.
	got, err := scanPage(t, `<script>var x = { file: "https://host.example/watch/movie-1" };</script>`)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got != "" {
		t.Errorf("Extract() = %q, want inconclusive", got)
	}
}

func TestPageScannerInconclusive(t *testing.T) {
	got, err := scanPage(t, `<html><body><p>nothing to see here</p></body></html>`)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got != "" {
		t.Errorf("Extract() = %q, want empty", got)
	}
}

func TestPageScannerServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	if _, err := NewPageScanner().Extract(context.Background(), srv.URL); err == nil {
		t.Error("Extract() should surface non-200 status as error")
	}
}

func TestInert(t *testing.T) {
	got, err := Inert{}.Extract(context.Background(), "https://host.example/embed/movie/tt1")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got != "" {
		t.Errorf("Extract() = %q, want empty", got)
	}
}

func TestNewFactory(t *testing.T) {
	if _, ok := New("page").(*PageScanner); !ok {
		t.Error(`New("page") should return a PageScanner`)
	}
	if _, ok := New("inert").(Inert); !ok {
		t.Error(`New("inert") should return Inert`)
	}
	if _, ok := New("unknown").(Inert); !ok {
		t.Error("unknown kinds should fall back to Inert")
	}
}
