package fred

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/sartorproj/moneysupply/timeseries"
)

// SchemaVersion is the cache schema Migrate brings a database to.
const SchemaVersion = 2

// Fetch records which range of a series the cache holds and when it was
// fetched. A zero Start or End means the fetch was open on that side.
type Fetch struct {
	SeriesID  string
	Start     time.Time
	End       time.Time
	FetchedAt time.Time
}

// Covers reports whether the fetched range contains [start, end].
func (f *Fetch) Covers(start, end time.Time) bool {
	if !f.Start.IsZero() && (start.IsZero() || start.Before(f.Start)) {
		return false
	}
	if f.End.IsZero() {
		return true
	}
	return !end.IsZero() && !end.After(f.End)
}

// Cache stores FRED observations in SQLite.
type Cache struct {
	db   *sql.DB
	path string
}

// OpenCache opens (creating if needed) the cache at path and migrates it.
func OpenCache(ctx context.Context, path string) (*Cache, error) {
	if path == "" {
		return nil, errors.New("fred: cache path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping cache: %w", err)
	}

	c := &Cache{db: db, path: path}
	if err := c.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

type migration struct {
	Version     int
	Description string
	Statements  []string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Observations",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS observations (
				series_id TEXT NOT NULL,
				date TEXT NOT NULL,
				value REAL,
				PRIMARY KEY (series_id, date)
			)`,
		},
	},
	{
		Version:     2,
		Description: "Fetch ranges",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS fetches (
				series_id TEXT PRIMARY KEY,
				start_date TEXT NOT NULL DEFAULT '',
				end_date TEXT NOT NULL DEFAULT '',
				fetched_at DATETIME NOT NULL
			)`,
		},
	},
}

// Migrate applies every migration newer than PRAGMA user_version.
func (c *Cache) Migrate(ctx context.Context) error {
	var current int
	if err := c.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := c.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		for _, stmt := range m.Statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d failed: %w", m.Version, err)
			}
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		slog.Debug("Applied cache migration", "version", m.Version, "description", m.Description)
	}

	var final int
	if err := c.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&final); err != nil {
		return fmt.Errorf("failed to verify schema version: %w", err)
	}
	if final != SchemaVersion {
		return fmt.Errorf("cache schema version mismatch: expected %d, got %d", SchemaVersion, final)
	}
	return nil
}

// Put replaces the cached observations of seriesID and records the range
// they were fetched for. NaN values are stored as NULL.
func (c *Cache) Put(ctx context.Context, seriesID string, start, end time.Time, obs []timeseries.Observation) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM observations WHERE series_id = ?`, seriesID); err != nil {
		return fmt.Errorf("failed to clear %s: %w", seriesID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO observations (series_id, date, value) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, o := range obs {
		var value sql.NullFloat64
		if !math.IsNaN(o.Value) {
			value = sql.NullFloat64{Float64: o.Value, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, seriesID, o.Date.Format(time.DateOnly), value); err != nil {
			return fmt.Errorf("failed to insert %s %s: %w", seriesID, o.Date.Format(time.DateOnly), err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO fetches (series_id, start_date, end_date, fetched_at) VALUES (?, ?, ?, ?)`,
		seriesID, formatDate(start), formatDate(end), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record fetch of %s: %w", seriesID, err)
	}

	return tx.Commit()
}

// LastFetch returns the recorded fetch of seriesID, or nil if there is none.
func (c *Cache) LastFetch(ctx context.Context, seriesID string) (*Fetch, error) {
	var start, end string
	f := &Fetch{SeriesID: seriesID}
	err := c.db.QueryRowContext(ctx,
		`SELECT start_date, end_date, fetched_at FROM fetches WHERE series_id = ?`, seriesID).
		Scan(&start, &end, &f.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fetch of %s: %w", seriesID, err)
	}
	if f.Start, err = parseDate(start); err != nil {
		return nil, err
	}
	if f.End, err = parseDate(end); err != nil {
		return nil, err
	}
	return f, nil
}

// Get returns the cached observations of seriesID within [start, end],
// ordered by date.
func (c *Cache) Get(ctx context.Context, seriesID string, start, end time.Time) ([]timeseries.Observation, error) {
	query := `SELECT date, value FROM observations WHERE series_id = ?`
	args := []any{seriesID}
	if !start.IsZero() {
		query += ` AND date >= ?`
		args = append(args, formatDate(start))
	}
	if !end.IsZero() {
		query += ` AND date <= ?`
		args = append(args, formatDate(end))
	}
	query += ` ORDER BY date`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", seriesID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []timeseries.Observation
	for rows.Next() {
		var date string
		var value sql.NullFloat64
		if err := rows.Scan(&date, &value); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", seriesID, err)
		}
		d, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		v := math.NaN()
		if value.Valid {
			v = value.Float64
		}
		out = append(out, timeseries.Observation{Date: d, Value: v})
	}
	return out, rows.Err()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("cache: bad date %q: %w", s, err)
	}
	return t, nil
}
