package main

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database holding the match event log.
type DB struct {
	conn *sql.DB
}

// OpenDB opens (or creates) the SQLite database at path.
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// WAL keeps the batched writer from blocking readers
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		player_id INTEGER,
		session_id TEXT,
		tick INTEGER NOT NULL DEFAULT 0,
		data TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type);
	CREATE INDEX IF NOT EXISTS idx_events_player ON events(player_id);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// EventCounts returns the number of stored events per type.
func (db *DB) EventCounts() (map[string]int, error) {
	rows, err := db.conn.Query(`SELECT event_type, COUNT(*) FROM events GROUP BY event_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			return nil, err
		}
		result[evtType] = count
	}
	return result, rows.Err()
}

// Eliminations returns how many eliminations each shooter scored.
func (db *DB) Eliminations() (map[int]int, error) {
	rows, err := db.conn.Query(`
		SELECT CAST(json_extract(data, '$.shooter') AS INTEGER), COUNT(*)
		FROM events
		WHERE event_type = ? AND json_valid(data)
		GROUP BY 1
	`, EvtEliminated)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int]int)
	for rows.Next() {
		var shooter, count int
		if err := rows.Scan(&shooter, &count); err != nil {
			return nil, err
		}
		result[shooter] = count
	}
	return result, rows.Err()
}
