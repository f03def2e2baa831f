// Package store persists parsed FASTA indexes in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/ShenghuiXue/bioinformatics-hub/alphabet"
	"github.com/ShenghuiXue/bioinformatics-hub/fasta"
)

// ErrNotFound is returned when no index is stored under the requested id.
var ErrNotFound = errors.New("index not found")

// Summary describes a stored index.
type Summary struct {
	ID        string        `json:"id"`
	Kind      alphabet.Kind `json:"kind"`
	Records   int           `json:"records"`
	CreatedAt time.Time     `json:"created_at"`
}

// SQLiteStore stores indexes in SQLite.
type SQLiteStore struct {
	db *sql.DB

	// guards entropy, which is not safe for concurrent use
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)&_pragma=foreign_keys(on)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// newID returns a ULID, increasing within the same millisecond
func (s *SQLiteStore) newID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now()), s.entropy)
	if err != nil {
		return "", fmt.Errorf("new id: %w", err)
	}
	return id.String(), nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS indexes (
		id              TEXT PRIMARY KEY,
		kind            INTEGER NOT NULL,
		keep_whitespace INTEGER NOT NULL DEFAULT 0,
		raw             TEXT NOT NULL,
		created_at      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_indexes_created ON indexes(created_at DESC);

	CREATE TABLE IF NOT EXISTS sequences (
		index_id  TEXT NOT NULL REFERENCES indexes(id) ON DELETE CASCADE,
		position  INTEGER NOT NULL,
		seq_id    TEXT NOT NULL,
		sequence  TEXT NOT NULL,
		PRIMARY KEY (index_id, seq_id)
	);
	CREATE INDEX IF NOT EXISTS idx_sequences_position ON sequences(index_id, position);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save stores idx and returns the id it was stored under.
func (s *SQLiteStore) Save(ctx context.Context, idx *fasta.Index) (string, error) {
	id, err := s.newID()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	keep := 0
	if idx.Options().KeepWhitespace {
		keep = 1
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexes (id, kind, keep_whitespace, raw, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, int(idx.Kind()), keep, idx.Raw(), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sequences (index_id, position, seq_id, sequence) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare sequences: %w", err)
	}
	defer stmt.Close()

	for i, r := range idx.Records() {
		if _, err := stmt.ExecContext(ctx, id, i, r.ID, r.Sequence); err != nil {
			return "", fmt.Errorf("insert sequence %q: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Load rebuilds the index stored under id by parsing its raw text again.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*fasta.Index, error) {
	var (
		kind int
		keep int
		raw  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT kind, keep_whitespace, raw FROM indexes WHERE id = ?`, id,
	).Scan(&kind, &keep, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}

	return fasta.ParseWithOptions(raw, alphabet.Kind(kind), fasta.Options{KeepWhitespace: keep == 1}), nil
}

// Sequence returns one sequence of a stored index without parsing it.
// A missing sequence id gives a *fasta.LookupError.
func (s *SQLiteStore) Sequence(ctx context.Context, id, seqID string) (string, error) {
	if err := s.exists(ctx, id); err != nil {
		return "", err
	}

	var seq string
	err := s.db.QueryRowContext(ctx,
		`SELECT sequence FROM sequences WHERE index_id = ? AND seq_id = ?`, id, seqID,
	).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &fasta.LookupError{ID: seqID}
	}
	if err != nil {
		return "", fmt.Errorf("query sequence: %w", err)
	}
	return seq, nil
}

// List returns a summary of every stored index, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.kind, i.created_at, COUNT(s.seq_id)
		FROM indexes i LEFT JOIN sequences s ON s.index_id = i.id
		GROUP BY i.id
		ORDER BY i.created_at DESC, i.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum       Summary
			kind      int
			createdAt string
		)
		if err := rows.Scan(&sum.ID, &kind, &createdAt, &sum.Records); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		sum.Kind = alphabet.Kind(kind)
		sum.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", sum.ID, err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes the index stored under id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM indexes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) exists(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM indexes WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("index %s: %w", id, ErrNotFound)
	}
	return err
}

// Close closes the store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
