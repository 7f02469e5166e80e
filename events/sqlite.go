// SQLite event sink.
//
// Information Hiding:
// - SQLite connection management hidden behind the Sink interface
// - Schema details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling
package events

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSink appends lifecycle records to a SQLite database. The table is
// append-only; nothing in the engine ever updates or deletes rows.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLiteSink opens or creates an event database at the given path,
// creating parent directories as needed.
func OpenSQLiteSink(path string) (*SQLiteSink, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	sink := &SQLiteSink{db: db}
	if err := sink.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return sink, nil
}

// NewSQLiteSinkInMemory creates an in-memory event database (useful for
// testing).
func NewSQLiteSinkInMemory() (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	sink := &SQLiteSink{db: db}
	if err := sink.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return sink, nil
}

func (s *SQLiteSink) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			event TEXT NOT NULL,
			timestamp_ms INTEGER NOT NULL,
			source TEXT NOT NULL,
			data TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_events_time
		ON events(timestamp_ms);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append inserts the record.
func (s *SQLiteSink) Append(rec Record) error {
	var data []byte
	if rec.Data != nil {
		var err error
		data, err = json.Marshal(rec.Data)
		if err != nil {
			return fmt.Errorf("failed to encode event data: %w", err)
		}
	}

	_, err := s.db.Exec(
		`INSERT INTO events (id, event, timestamp_ms, source, data) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Event, rec.TimestampMs, rec.Source, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first. Intended for CLI
// inspection; the sink contract itself is append-only.
func (s *SQLiteSink) Recent(limit int) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT id, event, timestamp_ms, source, data
		 FROM events ORDER BY timestamp_ms DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var data sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Event, &rec.TimestampMs, &rec.Source, &data); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if data.Valid && data.String != "" {
			if err := json.Unmarshal([]byte(data.String), &rec.Data); err != nil {
				return nil, fmt.Errorf("failed to decode event data: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

var _ Sink = (*SQLiteSink)(nil)
