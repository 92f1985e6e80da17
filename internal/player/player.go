// Package player provides a secure interface for launching playback
// surfaces. All invocations use exec.Command with explicit argument
// slices, never shell interpretation of remote data.
package player

import (
	"os/exec"

	"marquee/internal/media"
)

// Player is the interface for playback surface implementations.
type Player interface {
	// Play opens the URL for viewing. It blocks until the surface exits
	// for media players; browser launches return immediately.
	Play(url string, title string) error

	// Command builds the exec.Cmd Play would run, for callers that manage
	// the terminal themselves (the TUI hands it to tea.ExecProcess).
	Command(url string, title string) *exec.Cmd

	// Name returns the surface name.
	Name() string

	// Available checks if the binary exists in PATH.
	Available() bool
}

// New creates a media player by name.
func New(name string) Player {
	switch name {
	case "mpv":
		return &MPV{}
	case "vlc":
		return &VLC{}
	case "iina", "celluloid":
		return &Generic{name: name}
	default:
		return &MPV{} // Default to mpv
	}
}

// ForMode picks the surface for a render mode: a native player for direct
// streams, the system browser for embed pages.
func ForMode(mode media.Mode, playerName string) Player {
	if mode == media.ModeDirect {
		return New(playerName)
	}
	return &Browser{}
}
