package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers "sqlite" driver

	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS attempts (
	id         TEXT NOT NULL,
	collection TEXT NOT NULL,
	created_at TEXT NOT NULL,
	payload    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_attempts_collection ON attempts (collection);
`

// SQLiteRepository persists attempts in a local SQLite database. Records
// are stored as marshaled JSON so a reload returns exactly what was
// appended.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the attempts database at path.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open attempts db: %w", err)
	}
	if _, err = db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init attempts schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Close closes the database.
func (s *SQLiteRepository) Close() error {
	return s.db.Close()
}

// Append inserts one attempt row. There is no update or delete path.
func (s *SQLiteRepository) Append(ctx context.Context, collection string, attempt domain.Attempt) error {
	payload, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO attempts (id, collection, created_at, payload) VALUES (?, ?, ?, ?)`,
		attempt.ID, collection, time.Now().UTC().Format(time.RFC3339Nano), string(payload),
	)
	if err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

// LoadAll returns the collection's attempts in insertion order.
func (s *SQLiteRepository) LoadAll(ctx context.Context, collection string) ([]domain.Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM attempts WHERE collection = ? ORDER BY rowid`, collection)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.Attempt
	for rows.Next() {
		var payload string
		if err = rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		var a domain.Attempt
		if err = json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, fmt.Errorf("unmarshal attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
