package player

import (
	"fmt"
	"os"
	"os/exec"
)

// Generic implements the Player interface for players like iina and
// celluloid that accept mpv-compatible arguments.
type Generic struct {
	name string
}

func (g *Generic) Name() string { return g.name }

func (g *Generic) Available() bool {
	_, err := exec.LookPath(g.name)
	return err == nil
}

// Command builds the player invocation for a stream URL. Both iina and
// celluloid accept mpv-style flags.
func (g *Generic) Command(url string, title string) *exec.Cmd {
	return exec.Command(g.name, url, "--force-media-title="+title)
}

// Play launches the generic player and blocks until it exits.
func (g *Generic) Play(url string, title string) error {
	cmd := g.Command(url, title)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", g.name, err)
	}
	return nil
}
