package store

import (
	"bytes"
	"sync"
)

// bufferPool provides pooled *bytes.Buffer scratch space for encode/decode,
// reset before every checkout so a caller never observes a prior tenant's
// bytes.
type bufferPool struct {
	pool sync.Pool
}

func newBufferPool(size int) *bufferPool {
	return &bufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, size))
			},
		},
	}
}

func (p *bufferPool) Get() *bytes.Buffer {
	buf := p.pool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func (p *bufferPool) Put(buf *bytes.Buffer) {
	if buf.Cap() > 8*1024*1024 {
		return
	}
	buf.Reset()
	p.pool.Put(buf)
}

// scratchPool backs compress's gzip scratch buffer, for both backends.
var scratchPool = newBufferPool(64 * 1024)
