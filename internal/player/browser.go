package player

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Browser opens embed URLs in the system default browser.
type Browser struct{}

func (b *Browser) Name() string { return "browser" }

func (b *Browser) Available() bool {
	_, err := exec.LookPath(b.opener())
	return err == nil
}

func (b *Browser) opener() string {
	if runtime.GOOS == "darwin" {
		return "open"
	}
	return "xdg-open"
}

// Command builds the opener invocation for an embed URL.
func (b *Browser) Command(url string, _ string) *exec.Cmd {
	return exec.Command(b.opener(), url)
}

// Play hands the URL to the system opener. Does not block on the browser.
func (b *Browser) Play(url string, _ string) error {
	if err := b.Command(url, "").Start(); err != nil {
		return fmt.Errorf("opening browser: %w", err)
	}
	return nil
}
