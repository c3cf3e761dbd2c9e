package core

import "github.com/searchktools/tiny-server/core/pools"

// PoolStats represents statistics for the engine's buffer pools
type PoolStats struct {
	ReadBuffers  pools.BytePoolStats
	WriteBuffers pools.BufferStats
}

// PoolStats returns statistics for the read and write buffer pools
func (e *Engine) PoolStats() PoolStats {
	return PoolStats{
		ReadBuffers:  e.bytePool.Stats(),
		WriteBuffers: e.bufferPool.Stats(),
	}
}
