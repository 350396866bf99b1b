// Package typestore persists encoded types, keyed by their content hash
package typestore

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cottand/typealg/frontend/types"
	"github.com/cottand/typealg/internal/log"
	_ "modernc.org/sqlite"
)

var logger = log.DefaultLogger.With("section", "typestore")

// ErrNotFound is returned by Get for keys that were never stored
var ErrNotFound = errors.New("type not found")

// ErrCollision is returned by Put when its key already holds a different type
var ErrCollision = errors.New("key already holds a different type")

const schema = `CREATE TABLE IF NOT EXISTS types (
	key         TEXT PRIMARY KEY,
	encoding    BLOB NOT NULL,
	description TEXT NOT NULL
)`

// Store is a table of types in a SQLite database. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the store in the SQLite database named by dsn,
// which may be ":memory:"
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening type store: %w", err)
	}
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		// every connection would see its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating type store schema: %w", err)
	}
	logger.Debug("opened type store", "dsn", dsn)
	return &Store{db: db}, nil
}

// Key returns the key t is stored under
func Key(t types.Type) string {
	return fmt.Sprintf("%016x", t.Hash())
}

// Put stores t and returns its key. Storing a type twice is a no-op.
// If a different type already holds the key, Put fails with ErrCollision.
func (s *Store) Put(ctx context.Context, t types.Type) (string, error) {
	key, encoding := Key(t), types.Encode(t)
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO types (key, encoding, description) VALUES (?, ?, ?)`,
		key, encoding, types.Describe(t),
	)
	if err != nil {
		return "", fmt.Errorf("storing type %s: %w", key, err)
	}
	if inserted, err := res.RowsAffected(); err == nil && inserted > 0 {
		return key, nil
	}

	var stored []byte
	var description string
	err = s.db.QueryRowContext(ctx, `SELECT encoding, description FROM types WHERE key = ?`, key).Scan(&stored, &description)
	if err != nil {
		return "", fmt.Errorf("checking stored type %s: %w", key, err)
	}
	if !bytes.Equal(stored, encoding) {
		logger.Warn("hash collision", "key", key, "stored", description, "new", types.Describe(t))
		return "", fmt.Errorf("%w: %s holds '%s'", ErrCollision, key, description)
	}
	return key, nil
}

// Get loads the type stored under key
func (s *Store) Get(ctx context.Context, key string) (types.Type, error) {
	var encoding []byte
	err := s.db.QueryRowContext(ctx, `SELECT encoding FROM types WHERE key = ?`, key).Scan(&encoding)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("loading type %s: %w", key, err)
	}
	t, err := types.Decode(encoding)
	if err != nil {
		return nil, fmt.Errorf("decoding type %s: %w", key, err)
	}
	return t, nil
}

// Entry is a stored type as listed by List
type Entry struct {
	Key         string
	Description string
}

// List returns every stored type, ordered by key
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, description FROM types ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing types: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Description); err != nil {
			return nil, fmt.Errorf("listing types: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
