// Package arrowconv converts between columnar arrays and arrow-go arrays.
//
// Conversions are zero-copy: value and validity storage is shared between the
// [columnar] array and the [arrow.ArrayData] through reference-counted
// [arrowmemory.Buffer]s. [Export] and [Import] trust their input. Callers
// receiving data from outside the process should run [Validate] first.
package arrowconv

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	arrowmemory "github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/daBlesr/polars/pkg/columnar"
	"github.com/daBlesr/polars/pkg/internal/unsafecast"
	"github.com/daBlesr/polars/pkg/memory"
)

// Export converts col into Arrow array data without copying its values or
// validity bitmap. The returned data must be released by the caller; col
// remains valid and may be released independently.
//
// Export does not validate the resulting data: col already guarantees that
// its values and validity are consistent.
func Export[T columnar.Numeric](col *columnar.Number[T]) arrow.ArrayData {
	values, validity := col.Buffer(), col.Validity()

	var (
		offset      = values.Offset()
		validityBuf *arrowmemory.Buffer
	)
	if validity.Len() > 0 {
		validityBuf, offset = shareValidity(validity, values.Offset())
		defer validityBuf.Release()
	}

	valuesBuf := shareValues(values, offset)
	defer valuesBuf.Release()

	return array.NewData(
		columnar.ArrowType(col.Kind()),
		col.Len(),
		[]*arrowmemory.Buffer{validityBuf, valuesBuf},
		nil,
		col.Nulls(),
		offset,
	)
}

// shareValidity returns a buffer holding validity along with the array offset
// at which the first bit of validity sits in that buffer. Arrow applies one
// offset to both the validity and value buffers, so the returned offset must
// not exceed valuesOffset.
//
// The bitmap is shared unless its bit offset cannot be lined up with the
// values, in which case it is re-packed at offset 0.
func shareValidity(validity memory.Bitmap, valuesOffset int) (*arrowmemory.Buffer, int) {
	bitOffset := validity.Offset()
	if bitOffset == valuesOffset {
		return validity.ArrowBuffer(), bitOffset
	}

	if rem := bitOffset % 8; rem <= valuesOffset {
		full := validity.ArrowBuffer()
		defer full.Release()

		start := bitOffset / 8
		return arrowmemory.SliceBuffer(full, start, full.Len()-start), rem
	}

	var packed memory.Bitmap
	packed.AppendBitmap(validity)
	defer packed.Release()
	return packed.ArrowBuffer(), 0
}

// shareValues returns a buffer holding values such that the first value of
// the window is at element offset in the returned buffer.
func shareValues[T any](values memory.Buffer[T], offset int) *arrowmemory.Buffer {
	full := values.ArrowBuffer()

	start := (values.Offset() - offset) * int(unsafecast.Sizeof[T]())
	if start == 0 {
		return full
	}
	defer full.Release()
	return arrowmemory.SliceBuffer(full, start, full.Len()-start)
}

// Import converts Arrow array data into a columnar array without copying. The
// returned array holds references to the buffers of data; release it with
// [columnar.Number.Release].
//
// Import trusts data: it must describe a primitive array whose type is stored
// as T, with a value buffer covering data.Offset()+data.Len() elements. The
// null count of data is taken as given. Import panics if the data type has no
// columnar kind.
func Import[T columnar.Numeric](data arrow.ArrayData) *columnar.Number[T] {
	kind, ok := columnar.KindOf(data.DataType())
	if !ok {
		panic(fmt.Sprintf("arrowconv: unsupported arrow type %s", data.DataType()))
	}

	var (
		buffers = data.Buffers()
		offset  = data.Offset()
		length  = data.Len()
	)

	values := memory.WrapArrowBuffer[T](buffers[1]).Slice(offset, length)

	var (
		validity memory.Bitmap
		nulls    int
	)
	if buffers[0] != nil {
		validity = memory.BitmapFromArrow(buffers[0], offset, length)
		nulls = data.NullN()
	}

	return columnar.NewNumberNulls(kind, values, validity, nulls)
}
