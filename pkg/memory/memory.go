// Package memory provides the storage primitives backing columnar arrays:
// typed buffers, validity bitmaps, and the allocator they draw from.
//
// Storage is shareable with arrow-go. Exporting a [Buffer] or [Bitmap] to
// Arrow never copies; instead the exported [arrowmemory.Buffer] aliases the
// same bytes. Storage that has been shared is treated as immutable: mutating
// a shared Buffer or Bitmap first copies it into fresh memory.
package memory

import (
	"sync"

	arrowmemory "github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/atomic"
)

// Allocator hands out memory for buffers and bitmaps and tracks how much of it
// is live. Memory obtained from an Allocator is returned to its parent in bulk
// by [Allocator.Reclaim].
//
// A nil *Allocator is valid and allocates from the Go heap without tracking.
type Allocator struct {
	parent arrowmemory.Allocator

	mut     sync.Mutex
	regions [][]byte

	allocated atomic.Int64
}

// NewAllocator returns a new Allocator drawing from parent. If parent is nil,
// [arrowmemory.DefaultAllocator] is used.
func NewAllocator(parent arrowmemory.Allocator) *Allocator {
	if parent == nil {
		parent = arrowmemory.DefaultAllocator
	}
	return &Allocator{parent: parent}
}

// Allocate returns a zeroed byte slice of length size.
func (a *Allocator) Allocate(size int) []byte {
	if a == nil {
		return make([]byte, size)
	}

	region := a.parent.Allocate(size)
	clear(region)

	a.mut.Lock()
	a.regions = append(a.regions, region)
	a.mut.Unlock()

	a.allocated.Add(int64(len(region)))
	return region
}

// AllocatedBytes returns the number of bytes handed out since the last call
// to Reclaim.
func (a *Allocator) AllocatedBytes() int {
	if a == nil {
		return 0
	}
	return int(a.allocated.Load())
}

// Reclaim returns all memory handed out by a to its parent. Buffers and
// bitmaps created from a must not be used after calling Reclaim.
func (a *Allocator) Reclaim() {
	if a == nil {
		return
	}

	a.mut.Lock()
	defer a.mut.Unlock()

	for _, region := range a.regions {
		a.parent.Free(region)
	}
	a.regions = nil
	a.allocated.Store(0)
}
