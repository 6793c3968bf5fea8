// Package sqlite is the relational bookmark table, backed by the pure-Go modernc SQLite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS bookmarks (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	url        TEXT NOT NULL,
	title      TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS bookmarks_user_created ON bookmarks (user_id, created_at DESC);
`

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=10000",
	"PRAGMA synchronous=NORMAL",
}

// Table stores bookmarks in SQLite. created_at is kept as unix nanoseconds so
// ordering is numeric and exact.
type Table struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

// Option customises a Table.
type Option func(*Table)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option { return func(t *Table) { t.now = now } }

// WithIDGenerator overrides ID assignment.
func WithIDGenerator(gen func() string) Option { return func(t *Table) { t.newID = gen } }

// Open opens (and migrates) the bookmark table at path. ":memory:" yields an ephemeral table.
func Open(ctx context.Context, path string, opts ...Option) (*Table, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One connection: SQLite serialises writers anyway and ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}

	t := &Table{
		db:    db,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// List returns the owner's bookmarks, newest first.
func (t *Table) List(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT id, user_id, url, title, created_at
		   FROM bookmarks
		  WHERE user_id = ?
		  ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	bookmarks := make([]domain.Bookmark, 0)
	for rows.Next() {
		var (
			b       domain.Bookmark
			created int64
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.URL, &b.Title, &created); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		b.CreatedAt = time.Unix(0, created).UTC()
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookmarks: %w", err)
	}

	return bookmarks, nil
}

// Insert stores a new row, assigning ID and CreatedAt.
func (t *Table) Insert(ctx context.Context, nb domain.NewBookmark) (domain.Bookmark, error) {
	b := domain.Bookmark{
		ID:        t.newID(),
		UserID:    nb.UserID,
		URL:       nb.URL,
		Title:     nb.Title,
		CreatedAt: t.now().UTC(),
	}

	_, err := t.db.ExecContext(ctx,
		`INSERT INTO bookmarks (id, user_id, url, title, created_at) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.URL, b.Title, b.CreatedAt.UnixNano())
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to insert bookmark: %w", err)
	}

	return b, nil
}

// Delete removes the owner's row. Rows of other owners are never touched.
func (t *Table) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := t.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete bookmark: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to count deleted rows: %w", err)
	}
	return n > 0, nil
}

// Ping checks the database is reachable.
func (t *Table) Ping(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// Close releases the database handle.
func (t *Table) Close() error {
	return t.db.Close()
}
