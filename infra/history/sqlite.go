// Package history keeps the route fetch attempts of the running process in an
// in-memory SQLite database. Nothing is written to disk, so the history ends
// with the process.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/evrange/core/routefetch"
)

// DefaultLimit is used by Recent callers that do not choose a limit.
const DefaultLimit = 20

// DefaultMaxRecords bounds the number of attempts kept.
const DefaultMaxRecords = 500

// Config enables the store.
type Config struct {
	Enabled    bool `json:"enabled"`
	MaxRecords int  `json:"max_records" validate:"gte=0"`
}

// Max returns the record bound.
func (c Config) Max() int {
	if c.MaxRecords <= 0 {
		return DefaultMaxRecords
	}
	return c.MaxRecords
}

// SQLiteStore implements routefetch.History.
type SQLiteStore struct {
	db  *sql.DB
	max int
}

// NewSQLiteStore creates an empty in-memory store keeping at most maxRecords
// attempts; older ones are dropped on insert.
func NewSQLiteStore(maxRecords int) (*SQLiteStore, error) {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Each connection to ":memory:" is its own database; keep exactly one open.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	schema := `CREATE TABLE route_fetches (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        fetch_id TEXT NOT NULL,
        ts INTEGER NOT NULL,
        start_name TEXT,
        end_name TEXT,
        state TEXT,
        kind TEXT,
        message TEXT,
        distance_km REAL,
        duration_ms INTEGER
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db, max: maxRecords}, nil
}

// Append inserts one attempt and drops those beyond the bound.
func (s *SQLiteStore) Append(ctx context.Context, rec routefetch.Record) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO route_fetches
        (fetch_id, ts, start_name, end_name, state, kind, message, distance_km, duration_ms)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.FetchID, rec.Time.UnixMilli(), rec.Start, rec.End, rec.State.String(), rec.Kind,
		rec.Message, rec.DistanceKm, rec.Duration.Milliseconds())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM route_fetches WHERE id <= ?`, id-int64(s.max))
	return err
}

// Recent returns the newest attempts first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]routefetch.Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT fetch_id, ts, start_name, end_name, state, kind,
        message, distance_km, duration_ms
        FROM route_fetches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	res := []routefetch.Record{}
	for rows.Next() {
		var (
			r         routefetch.Record
			ts, durMS int64
			state     string
		)
		if err := rows.Scan(&r.FetchID, &ts, &r.Start, &r.End, &state, &r.Kind, &r.Message, &r.DistanceKm, &durMS); err != nil {
			return nil, err
		}
		if err := r.State.UnmarshalText([]byte(state)); err != nil {
			return nil, fmt.Errorf("record %s: %w", r.FetchID, err)
		}
		r.Time = time.UnixMilli(ts).UTC()
		r.Duration = time.Duration(durMS) * time.Millisecond
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close releases the database and its records.
func (s *SQLiteStore) Close() error { return s.db.Close() }
