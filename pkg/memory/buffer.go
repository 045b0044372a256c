package memory

import (
	"fmt"

	arrowmemory "github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/daBlesr/polars/pkg/internal/unsafecast"
)

// Buffer is a typed window over contiguous storage of fixed-width values.
//
// Storage is either owned by the Buffer (allocated from an [Allocator] or
// wrapped from a Go slice) or shared through an [arrowmemory.Buffer], either
// because it came from arrow-go or because it was handed out with
// [Buffer.ArrowBuffer] or [Buffer.View]. Shared storage is copied before it is
// mutated. A Buffer holding shared storage owns one reference to it; plain
// copies of the Buffer value share that reference, and only one of them
// should call [Buffer.Release].
//
// The zero value is an empty Buffer ready for use.
type Buffer[T any] struct {
	alloc    *Allocator
	owner    *arrowmemory.Buffer
	borrowed bool // The reference to owner belongs to another Buffer.

	data   []T // Backing storage; the window is data[offset:offset+length].
	offset int
	length int
}

// NewBuffer creates a new, empty Buffer with room for at least capacity
// values.
func NewBuffer[T any](alloc *Allocator, capacity int) Buffer[T] {
	return Buffer[T]{
		alloc: alloc,
		data:  allocate[T](alloc, capacity)[:0],
	}
}

// BufferFrom wraps values in a Buffer without copying them. The caller must
// not modify values after calling BufferFrom.
func BufferFrom[T any](values []T) Buffer[T] {
	return Buffer[T]{data: values, length: len(values)}
}

// WrapArrowBuffer wraps the storage of buf in a Buffer without copying it.
// WrapArrowBuffer retains buf; call [Buffer.Release] to drop the reference.
//
// The caller guarantees that buf is suitably aligned for T.
func WrapArrowBuffer[T any](buf *arrowmemory.Buffer) Buffer[T] {
	if buf == nil {
		return Buffer[T]{}
	}
	buf.Retain()

	data := unsafecast.FromBytes[T](buf.Bytes())
	return Buffer[T]{
		owner:  buf,
		data:   data,
		length: len(data),
	}
}

func allocate[T any](alloc *Allocator, n int) []T {
	if alloc == nil {
		// Allocate typed memory directly so that alignment is guaranteed for T.
		return make([]T, n)
	}
	size := int(unsafecast.Sizeof[T]())
	return unsafecast.FromBytes[T](alloc.Allocate(n * size))[:n]
}

// Len returns the number of values in the Buffer.
func (b Buffer[T]) Len() int { return b.length }

// Cap returns the number of values the Buffer can hold without reallocating.
func (b Buffer[T]) Cap() int {
	if b.owner != nil {
		return b.length
	}
	return cap(b.data) - b.offset
}

// Offset returns the position of the Buffer's window within its backing
// storage, in values.
func (b Buffer[T]) Offset() int { return b.offset }

// Values returns the values in the Buffer's window. The returned slice aliases
// the Buffer's storage and must not be modified.
func (b Buffer[T]) Values() []T { return b.data[b.offset : b.offset+b.length] }

// Get returns the value at index i.
func (b Buffer[T]) Get(i int) T {
	if i < 0 || i >= b.length {
		panic(fmt.Sprintf("memory: index %d out of range [0, %d)", i, b.length))
	}
	return b.data[b.offset+i]
}

// View returns a copy of b sharing its storage. From then on, appending to
// either b or the view copies the storage first. Releasing the view does not
// drop b's reference.
func (b *Buffer[T]) View() Buffer[T] {
	b.markShared()

	view := *b
	view.borrowed = true
	return view
}

// markShared records that the storage of b is visible outside of it.
func (b *Buffer[T]) markShared() {
	if b.owner == nil {
		b.owner = arrowmemory.NewBufferBytes(unsafecast.Bytes(b.data[:b.offset+b.length]))
	}
}

// Slice returns a window of length values starting at offset, relative to
// the current window. Slice does not copy. Slice panics if the requested
// window does not fit inside b.
func (b Buffer[T]) Slice(offset, length int) Buffer[T] {
	if offset < 0 || length < 0 || offset+length > b.length {
		panic(fmt.Sprintf("memory: slice [%d:%d] out of range for buffer of length %d", offset, offset+length, b.length))
	}
	b.offset += offset
	b.length = length
	return b
}

// Append appends values to the end of the Buffer, growing it as needed.
func (b *Buffer[T]) Append(values ...T) {
	b.Grow(len(values))
	end := b.offset + b.length
	b.data = b.data[:end+len(values)]
	copy(b.data[end:], values)
	b.length += len(values)
}

// Grow ensures the Buffer has room for at least n more values. Grow copies
// shared storage into memory owned by the Buffer.
func (b *Buffer[T]) Grow(n int) {
	end := b.offset + b.length
	if b.owner == nil && len(b.data) == end && end+n <= cap(b.data) {
		return
	}

	newCap := max(2*b.length, b.length+n)
	data := allocate[T](b.alloc, newCap)[:b.length]
	copy(data, b.Values())

	b.dropOwner()
	b.data = data
	b.offset = 0
}

// Clear resets the Buffer to zero length, keeping its capacity when the
// storage is owned.
func (b *Buffer[T]) Clear() {
	if b.owner != nil {
		b.Release()
		return
	}
	b.data = b.data[:0]
	b.offset = 0
	b.length = 0
}

// ArrowBuffer returns a new reference to the storage backing b. The returned
// buffer starts at the beginning of the backing storage; the window of b
// begins [Buffer.Offset] values into it. The caller must release the returned
// buffer.
//
// The storage is shared from then on: later appends to b copy it first.
func (b *Buffer[T]) ArrowBuffer() *arrowmemory.Buffer {
	b.markShared()
	b.owner.Retain()
	return b.owner
}

// Release drops the reference to any shared storage and resets b.
func (b *Buffer[T]) Release() {
	b.dropOwner()
	*b = Buffer[T]{alloc: b.alloc}
}

func (b *Buffer[T]) dropOwner() {
	if b.owner != nil && !b.borrowed {
		b.owner.Release()
	}
	b.owner = nil
	b.borrowed = false
}
