// Package config handles TOML-based configuration loading and validation.
// Config is parsed as data only — no code execution is possible.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"marquee/internal/httputil"
)

// Duration wraps time.Duration so interval settings can be written as
// "1h" / "5m" strings in the config file.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// Config holds all application configuration.
type Config struct {
	CatalogBase   string   `toml:"catalog_base"`   // movie search/detail API base URL
	EmbedBase     string   `toml:"embed_base"`     // embed player base URL
	Provider      string   `toml:"provider"`       // catalog | sample
	Extractor     string   `toml:"extractor"`      // page | inert
	Player        string   `toml:"player"`         // mpv | vlc | iina | celluloid
	DebounceMS    int      `toml:"debounce_ms"`    // search debounce window
	RefreshEvery  Duration `toml:"refresh_every"`  // scheduled source refresh, 0 disables
	ExpiryCheck   Duration `toml:"expiry_check"`   // expiration probe interval, 0 disables
	History       bool     `toml:"history"`
	Debug         bool     `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		CatalogBase:  "https://v3-cinemeta.strem.io",
		EmbedBase:    "https://vidsrc.xyz",
		Provider:     "catalog",
		Extractor:    "page",
		Player:       "mpv",
		DebounceMS:   400,
		RefreshEvery: Duration{time.Hour},
		ExpiryCheck:  Duration{5 * time.Minute},
		History:      true,
		Debug:        false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "marquee"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "marquee"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	validPlayers := map[string]bool{
		"mpv": true, "vlc": true, "iina": true, "celluloid": true,
	}
	if !validPlayers[strings.ToLower(c.Player)] {
		return fmt.Errorf("unsupported player %q (valid: mpv, vlc, iina, celluloid)", c.Player)
	}

	validProviders := map[string]bool{
		"catalog": true, "sample": true,
	}
	if !validProviders[strings.ToLower(c.Provider)] {
		return fmt.Errorf("unsupported provider %q (valid: catalog, sample)", c.Provider)
	}

	validExtractors := map[string]bool{
		"page": true, "inert": true,
	}
	if !validExtractors[strings.ToLower(c.Extractor)] {
		return fmt.Errorf("unsupported extractor %q (valid: page, inert)", c.Extractor)
	}

	if c.CatalogBase == "" {
		return fmt.Errorf("catalog base URL cannot be empty")
	}
	if err := httputil.ValidateURL(c.CatalogBase); err != nil {
		return fmt.Errorf("catalog base: %w", err)
	}
	if c.EmbedBase == "" {
		return fmt.Errorf("embed base URL cannot be empty")
	}
	if err := httputil.ValidateURL(c.EmbedBase); err != nil {
		return fmt.Errorf("embed base: %w", err)
	}

	if c.DebounceMS < 0 || c.DebounceMS > 5000 {
		return fmt.Errorf("debounce_ms %d out of range (0-5000)", c.DebounceMS)
	}
	if c.RefreshEvery.Duration < 0 {
		return fmt.Errorf("refresh_every cannot be negative")
	}
	if c.ExpiryCheck.Duration < 0 {
		return fmt.Errorf("expiry_check cannot be negative")
	}

	return nil
}

// Debounce returns the search debounce window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// HistoryPath returns the path to the watch history database.
func HistoryPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "marquee", "history.db"), nil
}
