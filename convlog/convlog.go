// Package convlog provides SQLite-based logging of conversion sessions:
// which documents were converted, when, and with what warnings.
package convlog

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/scoreflow-xyz/go-scoreflow/convert"
)

// Store handles SQLite database operations for conversion logging.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Session represents one conversion run.
type Session struct {
	ID           string     `json:"id"`
	SourceFormat string     `json:"source_format"`
	TargetFormat string     `json:"target_format"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	NoteCount    int        `json:"note_count"`
	WarningCount int        `json:"warning_count"`
	OK           bool       `json:"ok"`
}

// SessionWarning is one logged conversion warning.
type SessionWarning struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Location  string    `json:"location,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// New creates a new Store with the given database path.
func New(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		source_format TEXT NOT NULL,
		target_format TEXT NOT NULL,
		started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		ended_at DATETIME,
		note_count INTEGER DEFAULT 0,
		warning_count INTEGER DEFAULT 0,
		ok INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS warnings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		location TEXT,
		message TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_warnings_session ON warnings(session_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Begin creates a session record and returns its id.
func (s *Store) Begin(sourceFormat, targetFormat string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, source_format, target_format, started_at) VALUES (?, ?, ?, ?)`,
		id, sourceFormat, targetFormat, time.Now().UTC(),
	)
	if err != nil {
		return "", err
	}
	s.logger.Info("conversion session started",
		"session", id, "source", sourceFormat, "target", targetFormat)
	return id, nil
}

// Finish closes a session, recording its outcome and warnings.
func (s *Store) Finish(sessionID string, noteCount int, warnings []convert.Warning, ok bool) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET ended_at = ?, note_count = ?, warning_count = ?, ok = ?
		 WHERE id = ?`,
		time.Now().UTC(), noteCount, len(warnings), ok, sessionID,
	)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		if _, err := s.db.Exec(
			`INSERT INTO warnings (session_id, location, message, created_at) VALUES (?, ?, ?, ?)`,
			sessionID, w.Location, w.Message, time.Now().UTC(),
		); err != nil {
			return err
		}
	}
	s.logger.Info("conversion session finished",
		"session", sessionID, "notes", noteCount, "warnings", len(warnings), "ok", ok)
	return nil
}

// Sessions returns the most recent sessions, newest first.
func (s *Store) Sessions(limit int) ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT id, source_format, target_format, started_at, ended_at,
		        note_count, warning_count, ok
		 FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var ended sql.NullTime
		if err := rows.Scan(&sess.ID, &sess.SourceFormat, &sess.TargetFormat,
			&sess.StartedAt, &ended, &sess.NoteCount, &sess.WarningCount, &sess.OK); err != nil {
			return nil, err
		}
		if ended.Valid {
			t := ended.Time
			sess.EndedAt = &t
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// SessionWarnings returns the warnings of one session in insertion order.
func (s *Store) SessionWarnings(sessionID string) ([]SessionWarning, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, location, message, created_at
		 FROM warnings WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warnings []SessionWarning
	for rows.Next() {
		var w SessionWarning
		var location sql.NullString
		if err := rows.Scan(&w.ID, &w.SessionID, &location, &w.Message, &w.CreatedAt); err != nil {
			return nil, err
		}
		w.Location = location.String
		warnings = append(warnings, w)
	}
	return warnings, rows.Err()
}
