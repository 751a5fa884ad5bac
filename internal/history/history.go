// Package history keeps a log of executed command lines in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/jfschaefer/GLIFcore/internal/dispatch"
	"github.com/jfschaefer/GLIFcore/internal/sqlutil"
)

// Entry is one executed command line.
type Entry struct {
	ID     string    `json:"id"`
	Time   time.Time `json:"time"`
	Line   string    `json:"line"`
	OK     bool      `json:"ok"`
	Items  int       `json:"items"`
	Errors int       `json:"errors"`
	// Log is the failure reason or the accumulated warnings.
	Log string `json:"log,omitempty"`
}

// Store is a history database.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	line       TEXT NOT NULL,
	ok         INTEGER NOT NULL,
	items      INTEGER NOT NULL DEFAULT 0,
	errors     INTEGER NOT NULL DEFAULT 0,
	log        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at DESC);
`

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", sqlutil.DSN(path, "journal_mode(wal)", "busy_timeout(5000)"))
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return newStore(db)
}

// OpenInMemory opens a throwaway database (for testing).
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every connection would get its own empty database.
	db.SetMaxOpenConns(1)
	return newStore(db)
}

func newStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return &Store{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		now:     time.Now,
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// Record stores the outcome of one command line.
func (s *Store) Record(ctx context.Context, line string, res dispatch.Result) error {
	now := s.now().UTC()
	var n, errs int
	if res.Items != nil {
		n = res.Items.Len()
		errs = len(res.Items.AllErrors())
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, created_at, line, ok, items, errors, log) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.newID(now), now.Format(time.RFC3339Nano), strings.TrimSpace(line), res.OK, n, errs, res.Log)
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. Entries are filtered
// to lines containing contains if it is not empty.
func (s *Store) Recent(ctx context.Context, limit int, contains string) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, created_at, line, ok, items, errors, log FROM history`
	var args []any
	if contains != "" {
		query += ` WHERE instr(line, ?) > 0`
		args = append(args, contains)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return sqlutil.ScanRows(rows, scanEntry)
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e       Entry
		created string
	)
	if err := rows.Scan(&e.ID, &created, &e.Line, &e.OK, &e.Items, &e.Errors, &e.Log); err != nil {
		return e, fmt.Errorf("scan history: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return e, fmt.Errorf("parse history time %q: %w", created, err)
	}
	e.Time = t
	return e, nil
}

// Clear removes all entries and returns how many there were.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}
