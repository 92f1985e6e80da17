package player

import (
	"fmt"
	"os"
	"os/exec"
)

// VLC implements the Player interface for VLC media player.
type VLC struct{}

func (v *VLC) Name() string { return "vlc" }

func (v *VLC) Available() bool {
	_, err := exec.LookPath("vlc")
	return err == nil
}

// Command builds the VLC invocation for a stream URL.
func (v *VLC) Command(url string, title string) *exec.Cmd {
	return exec.Command("vlc",
		url,
		"--meta-title", title,
		"--play-and-exit",
	)
}

// Play launches VLC and blocks until it exits.
func (v *VLC) Play(url string, title string) error {
	cmd := v.Command(url, title)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			// VLC exits non-zero on user close
			return nil
		}
		return fmt.Errorf("running vlc: %w", err)
	}
	return nil
}
