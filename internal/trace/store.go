package trace

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Sessions beyond this count are pruned oldest-first on insert so the
// review surface stays bounded.
const retainedSessions = 100

// Store persists rehearsal traces to PostgreSQL.
type Store struct {
	db *sql.DB
}

// Open connects to the trace database at connStr and applies any pending
// migrations.
func Open(connStr string) (*Store, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("trace open: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("trace ping: %w", err)
	}
	if err = migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("trace migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return err
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), -1) FROM schema_version`).Scan(&current); err != nil {
		return err
	}

	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	for version := current + 1; version < len(entries); version++ {
		src, err := migrationFS.ReadFile("migrations/" + entries[version].Name())
		if err != nil {
			return fmt.Errorf("read migration %d: %w", version, err)
		}
		if _, err = db.Exec(string(src)); err != nil {
			return fmt.Errorf("apply migration %d: %w", version, err)
		}
		if _, err = db.Exec(`INSERT INTO schema_version (version) VALUES ($1)`, version); err != nil {
			return fmt.Errorf("record migration %d: %w", version, err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSession inserts a session under the given label and prunes the
// oldest sessions past the retention cap.
func (s *Store) CreateSession(id, label string) error {
	now := time.Now().UTC()
	if _, err := s.db.Exec(
		`INSERT INTO sessions (id, label, started_at) VALUES ($1, $2, $3)`,
		id, label, now,
	); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`DELETE FROM sessions WHERE id NOT IN (SELECT id FROM sessions ORDER BY started_at DESC LIMIT $1)`,
		retainedSessions,
	)
	return err
}

// EndSession marks a session finished.
func (s *Store) EndSession(id string) error {
	_, err := s.db.Exec(`UPDATE sessions SET ended_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	return err
}

// InsertRun records the start of a run in the running state.
func (s *Store) InsertRun(id, sessionID string) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, session_id, started_at, status) VALUES ($1, $2, $3, 'running')`,
		id, sessionID, time.Now().UTC(),
	)
	return err
}

// FinishRun stores a run's outcome.
func (s *Store) FinishRun(id string, durationMs float64, transcript, feedback, status string) error {
	_, err := s.db.Exec(
		`UPDATE runs SET duration_ms = $1, transcript = $2, feedback = $3, status = $4 WHERE id = $5`,
		durationMs, transcript, feedback, status, id,
	)
	return err
}

// InsertSpan records one completed pipeline stage.
func (s *Store) InsertSpan(sp Span) error {
	_, err := s.db.Exec(
		`INSERT INTO spans (id, run_id, name, started_at, duration_ms, input, output, status, error_msg)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sp.ID, sp.RunID, sp.Name, sp.StartedAt.UTC(),
		sp.DurationMs, sp.Input, sp.Output, sp.Status, sp.Error,
	)
	return err
}

// ListSessions returns sessions newest first with their run counts, plus
// the total session count for paging.
func (s *Store) ListSessions(limit, offset int) ([]Session, int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(`
		SELECT s.id, s.label, s.started_at, s.ended_at, COUNT(r.id) AS run_count
		FROM sessions s
		LEFT JOIN runs r ON r.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var endedAt sql.NullTime
		if err = rows.Scan(&sess.ID, &sess.Label, &sess.StartedAt, &endedAt, &sess.RunCount); err != nil {
			return nil, 0, err
		}
		if endedAt.Valid {
			sess.EndedAt = &endedAt.Time
		}
		sessions = append(sessions, sess)
	}
	return sessions, total, rows.Err()
}

// GetSession returns one session and its runs in start order.
func (s *Store) GetSession(id string) (*Session, []Run, error) {
	var sess Session
	var endedAt sql.NullTime
	err := s.db.QueryRow(
		`SELECT id, label, started_at, ended_at FROM sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.Label, &sess.StartedAt, &endedAt)
	if err != nil {
		return nil, nil, err
	}
	if endedAt.Valid {
		sess.EndedAt = &endedAt.Time
	}

	rows, err := s.db.Query(`
		SELECT r.id, r.session_id, r.started_at, r.duration_ms, r.transcript, r.feedback, r.status,
		       COUNT(sp.id) AS span_count
		FROM runs r
		LEFT JOIN spans sp ON sp.run_id = r.id
		WHERE r.session_id = $1
		GROUP BY r.id
		ORDER BY r.started_at ASC
	`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err = rows.Scan(&run.ID, &run.SessionID, &run.StartedAt, &run.DurationMs, &run.Transcript, &run.Feedback, &run.Status, &run.SpanCount); err != nil {
			return nil, nil, err
		}
		runs = append(runs, run)
	}
	return &sess, runs, rows.Err()
}

// GetRun returns one run and its stage spans in start order.
func (s *Store) GetRun(sessionID, runID string) (*Run, []Span, error) {
	var run Run
	err := s.db.QueryRow(
		`SELECT id, session_id, started_at, duration_ms, transcript, feedback, status FROM runs WHERE id = $1 AND session_id = $2`,
		runID, sessionID,
	).Scan(&run.ID, &run.SessionID, &run.StartedAt, &run.DurationMs, &run.Transcript, &run.Feedback, &run.Status)
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, name, started_at, duration_ms, input, output, status, error_msg FROM spans WHERE run_id = $1 ORDER BY started_at ASC`,
		runID,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var spans []Span
	for rows.Next() {
		var sp Span
		if err = rows.Scan(&sp.ID, &sp.RunID, &sp.Name, &sp.StartedAt, &sp.DurationMs, &sp.Input, &sp.Output, &sp.Status, &sp.Error); err != nil {
			return nil, nil, err
		}
		spans = append(spans, sp)
	}
	return &run, spans, rows.Err()
}
