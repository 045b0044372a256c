package memory

import (
	"fmt"
	"iter"

	"github.com/apache/arrow-go/v18/arrow/bitutil"
	arrowmemory "github.com/apache/arrow-go/v18/arrow/memory"
)

// Bitmap is a bit-packed sequence of booleans. Bits are stored
// least-significant first within each byte, matching the Arrow validity
// bitmap layout.
//
// A Bitmap may be a window into larger storage: the first bit of the Bitmap
// is at [Bitmap.Offset] bits into [Bitmap.Bytes]. Shared storage (see
// [BitmapFromArrow], [Bitmap.ArrowBuffer] and [Bitmap.View]) is copied before
// it is mutated.
//
// The zero value is an empty Bitmap ready for use.
type Bitmap struct {
	alloc    *Allocator
	owner    *arrowmemory.Buffer
	borrowed bool // The reference to owner belongs to another Bitmap.

	data   []byte
	offset int // Offset of the first bit in data.
	len    int // Number of bits.
}

// NewBitmap creates a new, empty Bitmap with room for at least capacity
// bits.
func NewBitmap(alloc *Allocator, capacity int) Bitmap {
	return Bitmap{
		alloc: alloc,
		data:  alloc.Allocate(int(bitutil.BytesForBits(int64(capacity)))),
	}
}

// BitmapFromArrow wraps length bits of buf, starting at bit offset, without
// copying them. BitmapFromArrow retains buf; call [Bitmap.Release] to drop
// the reference. A nil buf returns an empty Bitmap.
func BitmapFromArrow(buf *arrowmemory.Buffer, offset, length int) Bitmap {
	if buf == nil {
		return Bitmap{}
	}
	buf.Retain()

	return Bitmap{
		owner:  buf,
		data:   buf.Bytes(),
		offset: offset,
		len:    length,
	}
}

// Len returns the number of bits in bmap.
func (bmap Bitmap) Len() int { return bmap.len }

// Cap returns the number of bits bmap can hold without reallocating.
func (bmap Bitmap) Cap() int {
	if bmap.owner != nil {
		return bmap.len
	}
	return len(bmap.data)*8 - bmap.offset
}

// Offset returns the bit offset of the first bit of bmap within
// [Bitmap.Bytes].
func (bmap Bitmap) Offset() int { return bmap.offset }

// Bytes returns the storage backing bmap. The first bit of bmap is at bit
// [Bitmap.Offset] of the returned slice.
func (bmap Bitmap) Bytes() []byte { return bmap.data }

// Get returns the value of bit i.
func (bmap Bitmap) Get(i int) bool {
	bmap.checkIndex(i)
	return bitutil.BitIsSet(bmap.data, bmap.offset+i)
}

func (bmap Bitmap) checkIndex(i int) {
	if i < 0 || i >= bmap.len {
		panic(fmt.Sprintf("memory: bit %d out of range [0, %d)", i, bmap.len))
	}
}

// SetCount returns the number of set bits in bmap.
func (bmap Bitmap) SetCount() int {
	if bmap.len == 0 {
		return 0
	}
	return bitutil.CountSetBits(bmap.data, bmap.offset, bmap.len)
}

// ClearCount returns the number of unset bits in bmap.
func (bmap Bitmap) ClearCount() int { return bmap.len - bmap.SetCount() }

// IterValues returns an iterator over the indices of bits equal to value.
func (bmap Bitmap) IterValues(value bool) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := range bmap.len {
			if bitutil.BitIsSet(bmap.data, bmap.offset+i) != value {
				continue
			}
			if !yield(i) {
				return
			}
		}
	}
}

// View returns a copy of bmap sharing its storage. From then on, mutating
// either bmap or the view copies the storage first. Releasing the view does
// not drop bmap's reference.
func (bmap *Bitmap) View() Bitmap {
	bmap.markShared()

	view := *bmap
	view.borrowed = true
	return view
}

// markShared records that the storage of bmap is visible outside of it.
func (bmap *Bitmap) markShared() {
	if bmap.owner == nil {
		bmap.owner = arrowmemory.NewBufferBytes(bmap.data)
	}
}

// Slice returns a window of length bits starting at bit offset, relative to
// the current window. Slice does not copy. The window shares the reference
// held by bmap; use [Bitmap.View] first for a window that can be released
// independently.
func (bmap Bitmap) Slice(offset, length int) Bitmap {
	if offset < 0 || length < 0 || offset+length > bmap.len {
		panic(fmt.Sprintf("memory: slice [%d:%d] out of range for bitmap of length %d", offset, offset+length, bmap.len))
	}
	bmap.offset += offset
	bmap.len = length
	return bmap
}

// Append appends value to bmap.
func (bmap *Bitmap) Append(value bool) {
	bmap.Grow(1)
	bitutil.SetBitTo(bmap.data, bmap.offset+bmap.len, value)
	bmap.len++
}

// AppendCount appends value count times.
func (bmap *Bitmap) AppendCount(value bool, count int) {
	bmap.Grow(count)
	bitutil.SetBitsTo(bmap.data, int64(bmap.offset+bmap.len), int64(count), value)
	bmap.len += count
}

// AppendValues appends each of values to bmap.
func (bmap *Bitmap) AppendValues(values ...bool) {
	bmap.Grow(len(values))
	for i, value := range values {
		bitutil.SetBitTo(bmap.data, bmap.offset+bmap.len+i, value)
	}
	bmap.len += len(values)
}

// AppendBitmap appends all bits of src to bmap.
func (bmap *Bitmap) AppendBitmap(src Bitmap) {
	if src.len == 0 {
		return
	}
	bmap.Grow(src.len)
	bitutil.CopyBitmap(src.data, src.offset, src.len, bmap.data, bmap.offset+bmap.len)
	bmap.len += src.len
}

// Set sets bit i to value.
func (bmap *Bitmap) Set(i int, value bool) {
	bmap.checkIndex(i)
	bmap.unshare()
	bitutil.SetBitTo(bmap.data, bmap.offset+i, value)
}

// SetRange sets the bits in the range [from, to) to value.
func (bmap *Bitmap) SetRange(from, to int, value bool) {
	if from < 0 || to > bmap.len || from > to {
		panic(fmt.Sprintf("memory: range [%d:%d] out of range for bitmap of length %d", from, to, bmap.len))
	}
	bmap.unshare()
	bitutil.SetBitsTo(bmap.data, int64(bmap.offset+from), int64(to-from), value)
}

// Resize changes the length of bmap to n. Bits added by growing are unset.
func (bmap *Bitmap) Resize(n int) {
	if n <= bmap.len {
		bmap.unshare()
		bmap.len = n
		return
	}

	grow := n - bmap.len
	bmap.Grow(grow)
	bitutil.SetBitsTo(bmap.data, int64(bmap.offset+bmap.len), int64(grow), false)
	bmap.len = n
}

// Grow ensures bmap has room for at least n more bits.
func (bmap *Bitmap) Grow(n int) {
	if bmap.owner == nil && bmap.offset+bmap.len+n <= len(bmap.data)*8 {
		return
	}
	bmap.realloc(max(2*bmap.len, bmap.len+n))
}

// unshare copies shared storage into memory owned by bmap.
func (bmap *Bitmap) unshare() {
	if bmap.owner != nil {
		bmap.realloc(bmap.len)
	}
}

// realloc moves bmap into newly allocated storage with room for at least
// capacity bits. The new storage always starts at bit offset 0.
func (bmap *Bitmap) realloc(capacity int) {
	data := bmap.alloc.Allocate(int(bitutil.BytesForBits(int64(capacity))))
	if bmap.len > 0 {
		bitutil.CopyBitmap(bmap.data, bmap.offset, bmap.len, data, 0)
	}

	bmap.dropOwner()
	bmap.data = data
	bmap.offset = 0
}

func (bmap *Bitmap) dropOwner() {
	if bmap.owner != nil && !bmap.borrowed {
		bmap.owner.Release()
	}
	bmap.owner = nil
	bmap.borrowed = false
}

// ArrowBuffer returns a new reference to the storage backing bmap. The first
// bit of bmap is at bit [Bitmap.Offset] of the returned buffer. The caller
// must release the returned buffer.
//
// The storage is shared from then on: later mutations of bmap copy it first.
func (bmap *Bitmap) ArrowBuffer() *arrowmemory.Buffer {
	bmap.markShared()
	bmap.owner.Retain()
	return bmap.owner
}

// Release drops the reference to any shared storage and resets bmap.
func (bmap *Bitmap) Release() {
	bmap.dropOwner()
	*bmap = Bitmap{alloc: bmap.alloc}
}
