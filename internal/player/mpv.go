package player

import (
	"fmt"
	"os"
	"os/exec"
)

// MPV implements the Player interface for mpv.
type MPV struct{}

func (m *MPV) Name() string { return "mpv" }

func (m *MPV) Available() bool {
	_, err := exec.LookPath("mpv")
	return err == nil
}

// Command builds the mpv invocation for a stream URL.
func (m *MPV) Command(url string, title string) *exec.Cmd {
	return exec.Command("mpv",
		url,
		"--force-media-title="+title,
		"--really-quiet",
	)
}

// Play launches mpv and blocks until it exits.
func (m *MPV) Play(url string, title string) error {
	cmd := m.Command(url, title)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		// mpv returns non-zero on user quit, which is normal
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 4 {
			return nil
		}
		return fmt.Errorf("running mpv: %w", err)
	}
	return nil
}
