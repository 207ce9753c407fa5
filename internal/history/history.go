// Package history records uploads in a SQLite ledger.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width so uploaded_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one accepted upload.
type Entry struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	FileName   string    `json:"file_name"`
	Rows       int       `json:"rows"`
	Columns    []string  `json:"columns"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at path and applies migrations.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS uploads (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL,
			file_name TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			column_names TEXT NOT NULL,
			uploaded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_session ON uploads(session_id, uploaded_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record appends an upload and returns its row id.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.UploadedAt.IsZero() {
		e.UploadedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (session_id, file_name, row_count, column_names, uploaded_at) VALUES (?, ?, ?, ?, ?)`,
		e.SessionID, e.FileName, e.Rows, strings.Join(e.Columns, "\x1f"), e.UploadedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert upload: %w", err)
	}
	return res.LastInsertId()
}

// Recent lists the newest uploads first. An empty sessionID lists all
// sessions; limit <= 0 means 20.
func (s *Store) Recent(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, file_name, row_count, column_names, uploaded_at FROM uploads
		 WHERE (? = '' OR session_id = ?)
		 ORDER BY uploaded_at DESC, id DESC
		 LIMIT ?`,
		sessionID, sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			cols    string
			written string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.FileName, &e.Rows, &cols, &written); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		if cols != "" {
			e.Columns = strings.Split(cols, "\x1f")
		}
		if e.UploadedAt, err = time.Parse(timeLayout, written); err != nil {
			return nil, fmt.Errorf("parse uploaded_at: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
