package store

import "errors"

// ErrBackend is the sentinel wrapped into every Backend failure, so callers
// can errors.Is-match store failures independent of the underlying cause
// (missing file, checksum mismatch, sqlite driver error).
var ErrBackend = errors.New("store: backend i/o failure")
