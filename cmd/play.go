package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/history"
	"marquee/internal/media"
	"marquee/internal/player"
	"marquee/internal/resolver"
	"marquee/internal/videourl"
)

var playCmd = &cobra.Command{
	Use:   "play <id|url>",
	Short: "Resolve a movie id or source URL and play it",
	Long: `Play resolves its argument to a playable source and launches it.
A tt-prefixed or numeric id resolves to the canonical embed URL; a full
URL is used as-is. Direct streams open in the configured player, embed
pages in the browser. With --json the resolved source is printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: playRun,
}

func init() {
	playCmd.Flags().BoolVarP(&flagJSON, "json", "j", false, "Print resolved source as JSON instead of playing")
}

func playRun(cmd *cobra.Command, args []string) error {
	arg := strings.TrimSpace(args[0])
	res := newResolver()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	title := arg
	src := arg
	if !strings.Contains(arg, "://") {
		id := resolver.CanonicalID(arg)
		if detail, err := newProvider().GetDetails(ctx, id); err == nil {
			title = detail.Title
			id = detail.IMDBID
		} else {
			debugf("detail lookup failed, resolving id directly: %v", err)
		}
		src = res.ResolveFromID(id)
	}

	mode := media.ModeEmbed
	if videourl.IsDirectVideoURL(src) {
		mode = media.ModeDirect
	}
	debugf("resolved source: %s (%s)", src, mode)

	// Embed sources get one extraction attempt so direct playback wins
	// when a stream is discoverable.
	direct := ""
	if mode == media.ModeEmbed {
		d, err := res.ExtractDirect(ctx, src)
		if err != nil {
			debugf("extraction failed: %v", err)
		} else {
			direct = d
		}
	}

	if flagJSON {
		out := map[string]interface{}{
			"title":  title,
			"source": src,
			"mode":   mode.String(),
		}
		if direct != "" {
			out["direct"] = direct
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	playURL := src
	if direct != "" {
		playURL = direct
		mode = media.ModeDirect
	}

	p := player.ForMode(mode, cfg.Player)
	if !p.Available() {
		return fmt.Errorf("%s not found in PATH", p.Name())
	}

	if cfg.History {
		saveHistory(title, playURL, mode)
	}

	if err := p.Play(playURL, title); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

// saveHistory records a launch; failures are logged, never fatal.
func saveHistory(title, src string, mode media.Mode) {
	store, err := history.OpenDefault()
	if err != nil {
		debugf("opening history failed: %v", err)
		return
	}
	defer store.Close()

	id := title
	if parsed, err := videourl.Parse(src); err == nil && parsed.VideoID != "" {
		id = parsed.VideoID
	}
	if err := store.Save(media.HistoryEntry{ID: id, Title: title, Source: src, Mode: mode.String()}); err != nil {
		debugf("saving history failed: %v", err)
	}
}
