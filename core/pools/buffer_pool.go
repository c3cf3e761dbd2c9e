package pools

import (
	"sync"
	"sync/atomic"
)

// Buffer pool sizes
const (
	SmallBufferSize  = 2 * 1024  // headers and short bodies
	MediumBufferSize = 8 * 1024  // typical file bodies
	LargeBufferSize  = 32 * 1024 // anything bigger is not pooled
)

// BufferPool manages zero-length, growable write buffers in three tiers
type BufferPool struct {
	small  sync.Pool
	medium sync.Pool
	large  sync.Pool

	totalGets atomic.Uint64
	oversized atomic.Uint64
}

func newTier(size int) sync.Pool {
	return sync.Pool{
		New: func() any {
			buf := make([]byte, 0, size)
			return &buf
		},
	}
}

// NewBufferPool creates a new buffer pool
func NewBufferPool() *BufferPool {
	return &BufferPool{
		small:  newTier(SmallBufferSize),
		medium: newTier(MediumBufferSize),
		large:  newTier(LargeBufferSize),
	}
}

// Get acquires an empty buffer with room for at least estimatedSize bytes
// when estimatedSize fits a tier.
func (bp *BufferPool) Get(estimatedSize int) *[]byte {
	bp.totalGets.Add(1)

	switch {
	case estimatedSize <= SmallBufferSize:
		return bp.small.Get().(*[]byte)
	case estimatedSize <= MediumBufferSize:
		return bp.medium.Get().(*[]byte)
	case estimatedSize <= LargeBufferSize:
		return bp.large.Get().(*[]byte)
	default:
		bp.oversized.Add(1)
		buf := make([]byte, 0, estimatedSize)
		return &buf
	}
}

// Put returns a buffer to the tier matching its capacity
func (bp *BufferPool) Put(buf *[]byte) {
	if buf == nil {
		return
	}

	*buf = (*buf)[:0]

	c := cap(*buf)
	switch {
	case c <= SmallBufferSize:
		bp.small.Put(buf)
	case c <= MediumBufferSize:
		bp.medium.Put(buf)
	case c <= LargeBufferSize:
		bp.large.Put(buf)
	}
	// Oversized buffers are left to the GC
}

// BufferStats contains buffer pool statistics
type BufferStats struct {
	TotalGets uint64
	Oversized uint64
}

// Stats returns buffer pool statistics
func (bp *BufferPool) Stats() BufferStats {
	return BufferStats{
		TotalGets: bp.totalGets.Load(),
		Oversized: bp.oversized.Load(),
	}
}
