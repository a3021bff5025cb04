// Package store persists encoded column payloads. It has no opinion about
// what the bytes mean — each column encoding serializes its own state and
// hands store a flat payload to keep, under a name, below a directory (or
// a table, for the SQLite backend).
package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"columnstore/config"
	"columnstore/logger"
)

// Backend is the persistence contract every column Store/Load call goes
// through.
type Backend interface {
	Store(dir, name string, payload []byte) error
	Load(dir, name string) ([]byte, error)
}

// fileHeaderLen is the size of the header that precedes every on-disk
// payload: a compression tag and a truncated sha256 checksum over the
// *compressed* bytes, so a truncated or
// corrupted file surfaces as a load failure rather than silently
// deserializing garbage.
const fileHeaderLen = 1 + 8 // compressionTag + checksum

// FileBackend is the default Backend: one file per column under dir,
// written atomically with store.atomicWrite.
type FileBackend struct {
	CompressionThreshold int
}

// NewFileBackend returns a FileBackend using cfg's compression threshold.
func NewFileBackend(cfg *config.Config) *FileBackend {
	threshold := 4096
	if cfg != nil {
		threshold = cfg.CompressionThreshold
	}
	return &FileBackend{CompressionThreshold: threshold}
}

func (b *FileBackend) path(dir, name string) string {
	return filepath.Join(dir, name)
}

// Store writes payload to <dir>/<name>.
func (b *FileBackend) Store(dir, name string, payload []byte) error {
	tag, compressed, err := compress(payload, b.CompressionThreshold)
	if err != nil {
		return fmt.Errorf("store: %w: %w", ErrBackend, err)
	}

	sum := checksum(compressed)

	var buf bytes.Buffer
	buf.WriteByte(byte(tag))
	buf.Write(sum[:])
	buf.Write(compressed)

	if err := atomicWrite(b.path(dir, name), buf.Bytes()); err != nil {
		return fmt.Errorf("store: %w: %w", ErrBackend, err)
	}
	logger.Info("stored column %q under %s (%d bytes)", name, dir, buf.Len())
	return nil
}

// Load reads and verifies <dir>/<name>.
func (b *FileBackend) Load(dir, name string) ([]byte, error) {
	raw, err := os.ReadFile(b.path(dir, name))
	if err != nil {
		return nil, fmt.Errorf("store: %w: %w", ErrBackend, err)
	}
	if len(raw) < fileHeaderLen {
		return nil, fmt.Errorf("store: %w: truncated file for column %q", ErrBackend, name)
	}

	tag := compressionTag(raw[0])
	var wantSum [8]byte
	copy(wantSum[:], raw[1:fileHeaderLen])
	body := raw[fileHeaderLen:]

	if gotSum := checksum(body); gotSum != wantSum {
		return nil, fmt.Errorf("store: %w: checksum mismatch for column %q", ErrBackend, name)
	}

	payload, err := decompress(tag, body)
	if err != nil {
		return nil, fmt.Errorf("store: %w: %w", ErrBackend, err)
	}
	logger.Info("loaded column %q from %s (%d bytes)", name, dir, len(payload))
	return payload, nil
}
