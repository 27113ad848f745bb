// Package library stores marketplace page templates in a local SQLite
// database. Admins seed templates from page documents; the editor lists
// them and previews them through the renderer.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/landinghub/pagekit/core/page"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no template has the requested ID.
var ErrNotFound = errors.New("template not found")

// Template is a page document published to the template marketplace.
type Template struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Keywords    []string       `json:"keywords"`
	PageData    *page.PageData `json:"pageData"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

// Store is a SQLite-backed template library.
type Store struct {
	conn *sql.DB
	// Now supplies record timestamps.
	Now func() time.Time
}

// Open opens (or creates) the library database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create library directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer; a single connection avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn, Now: time.Now}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			keywords TEXT NOT NULL DEFAULT '[]',
			page_data TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_templates_created ON templates(created_at)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Add validates t's page, assigns it a new ID and timestamps, and stores
// it. The stored template is returned.
func (s *Store) Add(ctx context.Context, t Template) (*Template, error) {
	if strings.TrimSpace(t.Name) == "" {
		return nil, fmt.Errorf("template name is required")
	}
	if err := t.PageData.Validate(); err != nil {
		return nil, fmt.Errorf("template page: %w", err)
	}
	if t.Keywords == nil {
		t.Keywords = []string{}
	}

	pageJSON, err := json.Marshal(t.PageData)
	if err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}
	keywordsJSON, err := json.Marshal(t.Keywords)
	if err != nil {
		return nil, fmt.Errorf("encode keywords: %w", err)
	}

	t.ID = uuid.NewString()
	t.CreatedAt = page.FormatTime(s.Now())
	t.UpdatedAt = t.CreatedAt

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO templates (id, name, description, category, keywords, page_data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, t.Category, string(keywordsJSON), string(pageJSON), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	return &t, nil
}

// Get returns the template with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Template, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, name, description, category, keywords, page_data, created_at, updated_at FROM templates WHERE id = ?`, id,
	)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// List returns every template, oldest first.
func (s *Store) List(ctx context.Context) ([]Template, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, description, category, keywords, page_data, created_at, updated_at FROM templates ORDER BY created_at, rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("list templates: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// Delete removes the template with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (*Template, error) {
	var (
		t                  Template
		keywords, pageJSON string
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Category, &keywords, &pageJSON, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(keywords), &t.Keywords); err != nil {
		return nil, fmt.Errorf("decode keywords of %s: %w", t.ID, err)
	}
	doc, err := page.Validate([]byte(pageJSON))
	if err != nil {
		return nil, fmt.Errorf("decode page of %s: %w", t.ID, err)
	}
	t.PageData = doc
	return &t, nil
}
