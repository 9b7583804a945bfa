// Package store persists mtracker state in SQLite: an append-only food log
// with a derived daily-summary table (food_log.db) and a separate nutrition
// fact cache (food_cache.db). The two databases are distinct files so that
// clearing one never affects the other.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Stored timestamps are fixed-width local ISO-8601 strings, so lexical
// comparison matches chronological order and date ranges are plain string
// range queries.
const (
	timestampLayout = "2006-01-02T15:04:05.000000"
	dateLayout      = "2006-01-02"
)

// FormatTimestamp renders an instant in the stored timestamp format.
func FormatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// ParseTimestamp parses a stored timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(timestampLayout, s, time.Local)
}

// DayBounds returns the [start, next) timestamp strings covering the
// calendar day of t.
func DayBounds(t time.Time) (string, string) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start.Format(timestampLayout), start.AddDate(0, 0, 1).Format(timestampLayout)
}

// openDB opens a SQLite database at path, creating the parent directory,
// and applies the usual pragmas.
func openDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal_mode: %w", err)
	}
	return db, nil
}
