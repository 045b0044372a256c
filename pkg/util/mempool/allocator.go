// Package mempool provides byte slice allocators for row buffer storage.
package mempool

import (
	"github.com/prometheus/prometheus/util/pool"
)

// Allocator hands out byte slices used as row buffer storage. It exists to
// reduce the cost of allocations and allows already allocated memory to be
// re-used once a row buffer is released.
type Allocator interface {
	// Get returns a byte slice of length size. The capacity of the slice may
	// be larger than size.
	Get(size int) ([]byte, error)

	// Put returns b, which must have been obtained from Get, to the
	// allocator. Put reports whether b was accepted. The caller must not use
	// b after calling Put.
	Put(b []byte) bool
}

// SimpleHeapAllocator allocates a new byte slice every time and does not
// re-cycle buffers.
type SimpleHeapAllocator struct{}

func (a *SimpleHeapAllocator) Get(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func (a *SimpleHeapAllocator) Put([]byte) bool {
	return true
}

// BytePool uses bucketed sync.Pools to re-cycle already allocated buffers.
// Buckets grow geometrically by factor from minSize up to maxSize; requests
// larger than maxSize are allocated directly.
type BytePool struct {
	pool    *pool.Pool
	maxSize int
}

func NewBytePoolAllocator(minSize, maxSize int, factor float64) *BytePool {
	return &BytePool{
		pool: pool.New(
			minSize, maxSize, factor,
			func(size int) interface{} {
				return make([]byte, 0, size)
			}),
		maxSize: maxSize,
	}
}

// Get implements Allocator
func (p *BytePool) Get(size int) ([]byte, error) {
	return p.pool.Get(size).([]byte)[:size], nil
}

// Put implements Allocator. Buffers larger than the biggest bucket are left
// to the garbage collector.
func (p *BytePool) Put(b []byte) bool {
	if cap(b) > p.maxSize {
		return false
	}
	p.pool.Put(b[:0])
	return true
}
