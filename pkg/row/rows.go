package row

import (
	"fmt"
	"iter"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	arrowmemory "github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/pkg/errors"

	"github.com/daBlesr/polars/pkg/internal/unsafecast"
	"github.com/daBlesr/polars/pkg/util/mempool"
)

type state int

const (
	stateLive state = iota
	stateConsumed
	stateReleased
)

func (s state) String() string {
	switch s {
	case stateLive:
		return "live"
	case stateConsumed:
		return "consumed"
	case stateReleased:
		return "released"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Rows is a packed buffer of encoded rows.
//
// Row i is values[offsets[i]:offsets[i+1]]. There is always at least one
// offset, so a Rows holding zero rows has offsets == []uint64{x}.
type Rows struct {
	values  []byte
	offsets []uint64

	pool    mempool.Allocator // Receives values on Release; may be nil.
	metrics *Metrics          // May be nil.
	state   state
}

// New creates Rows from values and offsets after checking that they are
// consistent: offsets must be non-empty and non-decreasing, and the last
// offset must equal len(values). New takes ownership of both slices.
//
// Use New where values and offsets come from outside the process or from an
// encoder that is not trusted; use [NewUnchecked] otherwise.
func New(values []byte, offsets []uint64) (*Rows, error) {
	if err := validate(values, offsets); err != nil {
		return nil, err
	}
	return NewUnchecked(values, offsets), nil
}

func validate(values []byte, offsets []uint64) error {
	if len(offsets) == 0 {
		return errors.New("rows must have at least one offset")
	}

	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return errors.Errorf("offsets decrease at row %d: %d < %d", i-1, offsets[i], offsets[i-1])
		}
	}

	if last := offsets[len(offsets)-1]; last != uint64(len(values)) {
		return errors.Errorf("last offset %d does not match value buffer size %d", last, len(values))
	}
	return nil
}

// NewUnchecked creates Rows from values and offsets without checking them.
// NewUnchecked takes ownership of both slices.
//
// The caller guarantees the invariants checked by [New]. Iterating or
// exporting Rows that violate them is undefined.
func NewUnchecked(values []byte, offsets []uint64) *Rows {
	return &Rows{values: values, offsets: offsets}
}

// Len returns the number of rows.
func (r *Rows) Len() int {
	if r.state != stateLive {
		return 0
	}
	return len(r.offsets) - 1
}

// Size returns the number of bytes in the value buffer.
func (r *Rows) Size() int { return len(r.values) }

// Values returns the value buffer. The returned slice must not be modified.
func (r *Rows) Values() []byte { return r.values }

// Offsets returns the offset buffer. The returned slice must not be modified.
func (r *Rows) Offsets() []uint64 { return r.offsets }

// Iter returns a new iterator over the rows. Each call returns an
// independent iterator starting at the first row.
func (r *Rows) Iter() *Iterator {
	r.mustBeLive("Iter")

	return &Iterator{
		start:  r.offsets[0],
		ends:   r.offsets[1:],
		values: r.values,
	}
}

// All returns an iterator over the rows, for use with range.
func (r *Rows) All() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		it := r.Iter()
		for row, ok := it.Next(); ok; row, ok = it.Next() {
			if !yield(row) {
				return
			}
		}
	}
}

// Get returns row i. Unlike [Iterator.Next], Get checks bounds; it is meant
// for tests and debugging rather than hot paths.
func (r *Rows) Get(i int) []byte {
	r.mustBeLive("Get")
	return r.values[r.offsets[i]:r.offsets[i+1]]
}

// BorrowArray returns a large binary array viewing the rows without copying
// them. The array aliases the storage of r: it is only valid until r is
// released, and it must not be used afterwards.
//
// BorrowArray panics if the last offset does not fit in an int64.
func (r *Rows) BorrowArray() *array.LargeBinary {
	r.mustBeLive("BorrowArray")

	arr := toLargeBinary(r.values, r.offsets)
	r.metrics.observeExport(exportBorrow, r.Len())
	return arr
}

// IntoArray converts r into a large binary array. The value and offset
// buffers are moved into the array, not copied; r can no longer be used.
//
// IntoArray panics if the last offset does not fit in an int64.
func (r *Rows) IntoArray() *array.LargeBinary {
	r.mustBeLive("IntoArray")

	arr := toLargeBinary(r.values, r.offsets)
	r.metrics.observeExport(exportArray, r.Len())
	r.consume()
	return arr
}

// IntoBinaryView converts r into a binary view array. Unlike [Rows.IntoArray]
// this allocates one view per row, but row bytes are still not copied: rows
// longer than the inline limit refer back to the original value buffer. r can
// no longer be used.
//
// IntoBinaryView panics if the last offset does not fit in an int64.
func (r *Rows) IntoBinaryView() *array.BinaryView {
	r.mustBeLive("IntoBinaryView")

	n := r.Len()
	binary := toLargeBinary(r.values, r.offsets)
	defer binary.Release()

	r.metrics.observeExport(exportBinaryView, n)
	r.consume()
	return largeBinaryToView(binary)
}

// Release returns the storage of r to the allocator it came from. Arrays
// returned by [Rows.BorrowArray] must not be used after Release. Calling
// Release on consumed or released Rows is a no-op.
func (r *Rows) Release() {
	if r.state != stateLive {
		return
	}
	if r.pool != nil && r.values != nil {
		r.pool.Put(r.values)
	}
	r.values, r.offsets = nil, nil
	r.state = stateReleased
}

func (r *Rows) consume() {
	// Ownership of the storage moved out; the pool must not get it back.
	r.values, r.offsets, r.pool = nil, nil, nil
	r.state = stateConsumed
}

func (r *Rows) mustBeLive(op string) {
	if r.state != stateLive {
		panic(fmt.Sprintf("row: %s called on %s rows", op, r.state))
	}
}

// checkOffsets panics if the last offset cannot be represented as an int64,
// making the reinterpretation of offsets as int64 safe for all rows.
func checkOffsets(offsets []uint64) {
	if last := offsets[len(offsets)-1]; last > math.MaxInt64 {
		panic(fmt.Sprintf("row: offset overflow: last offset %d exceeds %d", last, int64(math.MaxInt64)))
	}
}

// toLargeBinary wraps values and offsets in a large binary array without
// copying either.
func toLargeBinary(values []byte, offsets []uint64) *array.LargeBinary {
	checkOffsets(offsets)

	// Offsets are non-decreasing and the last one fits in an int64, so every
	// offset has the same value as an int64.
	signed := unsafecast.Slice[uint64, int64](offsets)

	offsetsBuf := arrowmemory.NewBufferBytes(arrow.Int64Traits.CastToBytes(signed))
	defer offsetsBuf.Release()
	valuesBuf := arrowmemory.NewBufferBytes(values)
	defer valuesBuf.Release()

	data := array.NewData(
		arrow.BinaryTypes.LargeBinary,
		len(offsets)-1,
		[]*arrowmemory.Buffer{nil, offsetsBuf, valuesBuf},
		nil,
		0,
		0,
	)
	defer data.Release()

	return array.NewLargeBinaryData(data)
}
