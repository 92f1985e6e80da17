// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"marquee/internal/config"
	"marquee/internal/extract"
	"marquee/internal/history"
	"marquee/internal/provider"
	"marquee/internal/resolver"
	"marquee/internal/ui"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagProvider  string
	flagExtractor string
	flagPlayer    string
	flagDebounce  int
	flagJSON      bool
	flagDebug     bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "marquee [query]",
	Short: "Search and watch movies from the terminal",
	Long: `Marquee is a terminal movie player frontend.
Search a catalog by title or IMDb id, resolve the selection to an embed
page or a direct stream, and watch it with mpv/vlc or your browser.`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: loadConfig,
	RunE:              rootRun,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagProvider, "provider", "p", "", "Catalog provider: catalog | sample")
	rootCmd.PersistentFlags().StringVarP(&flagExtractor, "extractor", "e", "", "Direct stream extractor: page | inert")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Media player: mpv | vlc | iina | celluloid")
	rootCmd.PersistentFlags().IntVar(&flagDebounce, "debounce", -1, "Search debounce window in milliseconds")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(trendingCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagPlayer != "" {
		cfg.Player = flagPlayer
	}
	if flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if flagExtractor != "" {
		cfg.Extractor = flagExtractor
	}
	if flagDebounce >= 0 {
		cfg.DebounceMS = flagDebounce
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Debug {
		log.SetOutput(os.Stderr)
		log.SetPrefix("[marquee] ")
	} else {
		log.SetOutput(os.Stderr)
		log.SetFlags(0)
	}

	return nil
}

// rootRun is the default command: the interactive TUI.
func rootRun(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal (use `marquee play <id|url>` in scripts)")
	}

	query := ""
	if len(args) > 0 {
		query = args[0]
		for _, a := range args[1:] {
			query += " " + a
		}
	}

	var hist *history.Store
	if cfg.History {
		var err error
		hist, err = history.OpenDefault()
		if err != nil {
			debugf("opening history failed: %v", err)
		} else {
			defer hist.Close()
		}
	}

	return ui.Run(cfg, newProvider(), newResolver(), hist, query)
}

// newProvider builds the configured catalog provider.
func newProvider() provider.Provider {
	if cfg.Provider == "sample" {
		return provider.NewSample()
	}
	return provider.NewCatalog(cfg.CatalogBase)
}

// newResolver builds the source resolver with the configured extractor.
func newResolver() *resolver.Resolver {
	r := resolver.New(cfg.EmbedBase, extract.New(cfg.Extractor))
	if cfg.Debug {
		r.SetLogf(log.Printf)
	}
	return r
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		log.Printf(format, args...)
	}
}
