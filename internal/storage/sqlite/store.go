// Package sqlite persists the recently opened projects list in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/atomicstack/bimview/internal/storage/sqlite/migrations"
)

// DefaultLimit caps Recent when the caller passes no limit.
const DefaultLimit = 10

// Project is one recently opened model file.
type Project struct {
	Path      string
	Name      string
	Schema    string
	Elements  int
	OpenCount int
	OpenedAt  time.Time
}

// Store is the recent projects store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating when needed) the database at path and applies the
// embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Touch records that p was opened now, inserting or bumping its row.
func (s *Store) Touch(ctx context.Context, p Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	path := strings.TrimSpace(p.Path)
	if path == "" {
		return fmt.Errorf("project path is required")
	}
	name := p.Name
	if name == "" {
		name = filepath.Base(path)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recent_projects (path, name, schema, elements, open_count, opened_at)
		 VALUES (?, ?, ?, ?, 1, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   name = excluded.name,
		   schema = excluded.schema,
		   elements = excluded.elements,
		   open_count = recent_projects.open_count + 1,
		   opened_at = excluded.opened_at`,
		path, name, p.Schema, p.Elements, s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("touch recent project: %w", err)
	}
	return nil
}

// Recent lists projects newest first. limit <= 0 uses DefaultLimit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, name, schema, elements, open_count, opened_at
		   FROM recent_projects
		  ORDER BY opened_at DESC, path ASC
		  LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		var openedAt int64
		if err := rows.Scan(&p.Path, &p.Name, &p.Schema, &p.Elements, &p.OpenCount, &openedAt); err != nil {
			return nil, fmt.Errorf("scan recent project: %w", err)
		}
		p.OpenedAt = time.UnixMilli(openedAt).UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent projects: %w", err)
	}
	return out, nil
}

// Forget removes path from the list. Unknown paths are ignored.
func (s *Store) Forget(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM recent_projects WHERE path = ?`, path); err != nil {
		return fmt.Errorf("forget recent project: %w", err)
	}
	return nil
}
