package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists audit entries in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the audit database at path and
// ensures the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	// Subscribers record concurrently; a single connection serializes the
	// writes so none are dropped with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure audit schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Record stores a single audit entry.
func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_entries (
			run_id, skill, action, method, status, detail, error_text, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.RunID,
		e.Skill,
		string(e.Action),
		e.Method,
		e.Status,
		e.Detail,
		e.Error,
		created.UTC(),
	)
	return err
}

// List returns audit entries matching the filter, oldest first.
func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]Entry, error) {
	query := `
		SELECT id, run_id, skill, action, method, status, detail, error_text, created_at
		FROM audit_entries
	`
	var args []any
	where := ""
	addFilter := func(clause string, value any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, value)
	}
	if f.RunID != "" {
		addFilter("run_id = ?", f.RunID)
	}
	if f.Skill != "" {
		addFilter("skill = ?", f.Skill)
	}
	if f.Action != "" {
		addFilter("action = ?", string(f.Action))
	}
	if f.Status != "" {
		addFilter("status = ?", f.Status)
	}
	query += where + " ORDER BY created_at ASC, id ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			action  string
			created sql.NullTime
		)
		if err := rows.Scan(
			&e.ID,
			&e.RunID,
			&e.Skill,
			&action,
			&e.Method,
			&e.Status,
			&e.Detail,
			&e.Error,
			&created,
		); err != nil {
			return nil, err
		}
		e.Action = Action(action)
		if created.Valid {
			e.CreatedAt = created.Time
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			skill TEXT,
			action TEXT NOT NULL,
			method TEXT,
			status TEXT NOT NULL,
			detail TEXT,
			error_text TEXT,
			created_at TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_audit_run ON audit_entries(run_id);
		CREATE INDEX IF NOT EXISTS idx_audit_skill ON audit_entries(skill);
		CREATE INDEX IF NOT EXISTS idx_audit_status ON audit_entries(status);
	`)
	return err
}

var _ Store = (*SQLiteStore)(nil)
