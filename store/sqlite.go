package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"columnstore/logger"
)

// SQLiteBackend is the alternate Backend: every column's serialized payload
// is stored as a BLOB keyed by name in one shared database file, for
// deployments that want a single file for a whole column family instead of
// one file per column.
type SQLiteBackend struct {
	mu   sync.Mutex
	path string
	db   *sql.DB
}

// NewSQLiteBackend opens (creating if needed) the sqlite database at path
// and ensures its columns table exists.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite database: %w: %w", ErrBackend, err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS columns (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create columns table: %w: %w", ErrBackend, err)
	}
	return &SQLiteBackend{path: path, db: db}, nil
}

// Close releases the underlying database handle.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// Store upserts payload as the BLOB for name. dir is unused: all columns
// using a SQLiteBackend share the one database file it was opened against.
func (b *SQLiteBackend) Store(dir, name string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tag, compressed, err := compress(payload, 4096)
	if err != nil {
		return fmt.Errorf("store: %w: %w", ErrBackend, err)
	}

	envelope := append([]byte{byte(tag)}, compressed...)

	const upsert = `INSERT INTO columns (name, payload) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload`
	if _, err := b.db.Exec(upsert, name, envelope); err != nil {
		return fmt.Errorf("store: sqlite upsert: %w: %w", ErrBackend, err)
	}
	logger.Info("stored column %q in sqlite backend %s (%d bytes)", name, b.path, len(envelope))
	return nil
}

// Load reads the BLOB for name.
func (b *SQLiteBackend) Load(dir, name string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var envelope []byte
	row := b.db.QueryRow(`SELECT payload FROM columns WHERE name = ?`, name)
	if err := row.Scan(&envelope); err != nil {
		return nil, fmt.Errorf("store: sqlite select %q: %w: %w", name, ErrBackend, err)
	}
	if len(envelope) < 1 {
		return nil, fmt.Errorf("store: %w: empty payload for column %q", ErrBackend, name)
	}

	tag := compressionTag(envelope[0])
	payload, err := decompress(tag, envelope[1:])
	if err != nil {
		return nil, fmt.Errorf("store: %w: %w", ErrBackend, err)
	}
	logger.Info("loaded column %q from sqlite backend %s (%d bytes)", name, b.path, len(payload))
	return payload, nil
}
