package store

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"columnstore/logger"
)

// compressionTag marks whether a stored payload is gzip-compressed.
type compressionTag byte

const (
	compressionNone compressionTag = 0
	compressionGzip compressionTag = 1
)

// compress gzips content if it is at least threshold bytes and compression
// actually shrinks it; otherwise it is stored as-is. Small payloads skip
// compression because gzip's own framing overhead would grow them.
func compress(content []byte, threshold int) (compressionTag, []byte, error) {
	if len(content) < threshold {
		return compressionNone, content, nil
	}

	buf := scratchPool.Get()
	defer scratchPool.Put(buf)

	gw := gzip.NewWriter(buf)
	if _, err := gw.Write(content); err != nil {
		return 0, nil, fmt.Errorf("store: compression write failed: %w", err)
	}
	if err := gw.Close(); err != nil {
		return 0, nil, fmt.Errorf("store: compression close failed: %w", err)
	}

	if buf.Len() >= len(content) {
		logger.Trace("compression not beneficial for %d bytes (would be %d)", len(content), buf.Len())
		return compressionNone, content, nil
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	logger.Trace("compressed %d bytes to %d bytes (%.1f%% reduction)",
		len(content), len(out), float64(len(content)-len(out))/float64(len(content))*100)
	return compressionGzip, out, nil
}

func decompress(tag compressionTag, data []byte) ([]byte, error) {
	switch tag {
	case compressionNone:
		return data, nil
	case compressionGzip:
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("store: gzip reader creation failed: %w", err)
		}
		defer gr.Close()

		var out bytes.Buffer
		if _, err := io.Copy(&out, gr); err != nil {
			return nil, fmt.Errorf("store: decompression failed: %w", err)
		}
		return out.Bytes(), nil
	default:
		return nil, fmt.Errorf("store: unsupported compression tag: %d", tag)
	}
}
