package blog

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested post or cached render does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps a SQLite database that caches rendered post HTML between
// builds. Entries are keyed by slug and a render key combining the renderer
// fingerprint with the post checksum, so edits and option changes miss.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the dev server read while a build writes; the busy timeout
	// makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS renders (
    slug TEXT PRIMARY KEY,
    render_key TEXT NOT NULL,
    html TEXT NOT NULL,
    rendered_at TEXT NOT NULL
);
`)
	return err
}

// GetRender returns the cached HTML for slug when it was rendered under key.
func (s *Store) GetRender(slug, key string) (string, error) {
	var html string
	err := s.db.QueryRow(`SELECT html FROM renders WHERE slug = ? AND render_key = ?`, slug, key).Scan(&html)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return html, nil
}

// SaveRender upserts the rendered HTML for slug.
func (s *Store) SaveRender(slug, key, html string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO renders (slug, render_key, html, rendered_at) VALUES (?, ?, ?, ?)`,
		slug, key, html, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Prune deletes cached renders for slugs not in keep and returns how many
// rows were removed.
func (s *Store) Prune(keep []string) (int64, error) {
	if len(keep) == 0 {
		res, err := s.db.Exec(`DELETE FROM renders`)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",")
	args := make([]any, len(keep))
	for i, slug := range keep {
		args[i] = slug
	}
	res, err := s.db.Exec(`DELETE FROM renders WHERE slug NOT IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountRenders returns the number of cached renders.
func (s *Store) CountRenders() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM renders`).Scan(&n)
	return n, err
}
