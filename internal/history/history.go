// Package history manages the watch history in a SQLite database,
// one row per movie, updated in place on rewatch.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"marquee/internal/config"
	"marquee/internal/media"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	year       TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL DEFAULT '',
	mode       TEXT NOT NULL DEFAULT '',
	watched_at INTEGER NOT NULL
);`

// Store is a watch history backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenDefault opens the history database at the XDG data path.
func OpenDefault() (*Store, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or updates the entry for a movie.
func (s *Store) Save(entry media.HistoryEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("history entry needs an ID")
	}
	if entry.WatchedAt.IsZero() {
		entry.WatchedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO history (id, title, year, source, mode, watched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			year = excluded.year,
			source = excluded.source,
			mode = excluded.mode,
			watched_at = excluded.watched_at`,
		entry.ID, entry.Title, entry.Year, entry.Source, entry.Mode, entry.WatchedAt.Unix())
	if err != nil {
		return fmt.Errorf("saving history entry: %w", err)
	}
	return nil
}

// Load returns all entries, most recently watched first.
func (s *Store) Load() ([]media.HistoryEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, title, year, source, mode, watched_at
		FROM history ORDER BY watched_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()

	var entries []media.HistoryEntry
	for rows.Next() {
		var e media.HistoryEntry
		var watched int64
		if err := rows.Scan(&e.ID, &e.Title, &e.Year, &e.Source, &e.Mode, &watched); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		e.WatchedAt = time.Unix(watched, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return entries, nil
}

// Remove deletes the entry for a movie.
func (s *Store) Remove(id string) error {
	if _, err := s.db.Exec(`DELETE FROM history WHERE id = ?`, id); err != nil {
		return fmt.Errorf("removing history entry: %w", err)
	}
	return nil
}

// Clear deletes all entries.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM history`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// FormatForDisplay renders history entries for list display.
func FormatForDisplay(entries []media.HistoryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		s := e.Title
		if e.Year != "" {
			s += " (" + e.Year + ")"
		}
		out[i] = fmt.Sprintf("%s - watched %s", s, e.WatchedAt.Format("2006-01-02 15:04"))
	}
	return out
}
