package store

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"columnstore/logger"
)

// atomicWrite writes data to path via a temp-file-then-rename, so a reader
// never observes a partially written file. The temp file's suffix is a
// uuid rather than a PID/counter: a column library has no request ID to
// reuse for uniqueness, and a single-owner library can still race a
// previous crashed run's leftover temp file.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("store: create directory: %w", err)
	}

	tempPath := path + ".tmp-" + uuid.NewString()

	f, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("store: create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("store: write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("store: sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("store: close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("store: rename temp file: %w", err)
	}

	logger.Trace("atomic write committed: %s (%d bytes)", path, len(data))
	return nil
}

// checksum returns a truncated sha256 digest stored in the file header.
func checksum(data []byte) [8]byte {
	full := sha256.Sum256(data)
	var out [8]byte
	copy(out[:], full[:8])
	return out
}
