package columnar

import (
	"fmt"

	"github.com/daBlesr/polars/pkg/memory"
)

// Numeric is the set of native types that can be stored in a [Number].
type Numeric interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// Number is an [Array] of fixed-width numeric values.
type Number[T Numeric] struct {
	kind     Kind
	values   memory.Buffer[T]
	validity memory.Bitmap
	nulls    int
}

var (
	_ Array = (*Number[int64])(nil)
	_ Array = (*Number[float64])(nil)
)

// NewNumber creates a new Number array from the given values and optional
// validity bitmap. The kind of the array is the natural kind of T.
//
// If validity is non-empty, it must have the same length as values.
func NewNumber[T Numeric](values memory.Buffer[T], validity memory.Bitmap) *Number[T] {
	return NewNumberKind(NativeKind[T](), values, validity)
}

// NewNumberKind is like [NewNumber] but sets the kind of the array. NewNumberKind
// panics if kind is not stored as T; for example, [KindTimestamp] must be
// stored as int64.
func NewNumberKind[T Numeric](kind Kind, values memory.Buffer[T], validity memory.Bitmap) *Number[T] {
	return NewNumberNulls(kind, values, validity, validity.ClearCount())
}

// NewNumberNulls is like [NewNumberKind] but takes the number of nulls in
// validity instead of counting them. The caller guarantees that nulls matches
// validity.
func NewNumberNulls[T Numeric](kind Kind, values memory.Buffer[T], validity memory.Bitmap, nulls int) *Number[T] {
	if native := storageKind(kind); native != NativeKind[T]() {
		panic(fmt.Sprintf("columnar: kind %s cannot be stored as %s", kind, NativeKind[T]()))
	}
	if validity.Len() > 0 && validity.Len() != values.Len() {
		panic(fmt.Sprintf("columnar: validity length %d does not match values length %d", validity.Len(), values.Len()))
	}

	return &Number[T]{
		kind:     kind,
		values:   values,
		validity: validity,
		nulls:    nulls,
	}
}

// NativeKind returns the kind naturally associated with T.
func NativeKind[T Numeric]() Kind {
	var zero T
	switch any(zero).(type) {
	case int8:
		return KindInt8
	case int16:
		return KindInt16
	case int32:
		return KindInt32
	case int64:
		return KindInt64
	case uint8:
		return KindUint8
	case uint16:
		return KindUint16
	case uint32:
		return KindUint32
	case uint64:
		return KindUint64
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	}
	panic("unreachable")
}

// storageKind returns the native kind used to store values of kind k.
func storageKind(k Kind) Kind {
	switch k {
	case KindDate32:
		return KindInt32
	case KindTimestamp, KindDuration:
		return KindInt64
	default:
		return k
	}
}

// Kind returns the kind of the array.
func (arr *Number[T]) Kind() Kind { return arr.kind }

// Len returns the number of elements in the array.
func (arr *Number[T]) Len() int { return arr.values.Len() }

// Nulls returns the number of null elements in the array.
func (arr *Number[T]) Nulls() int { return arr.nulls }

// IsNull returns true if the element at index i is null.
func (arr *Number[T]) IsNull(i int) bool {
	if arr.nulls == 0 {
		return false
	}
	return !arr.validity.Get(i)
}

// Value returns the value at index i. The value of a null element is
// unspecified.
func (arr *Number[T]) Value(i int) T { return arr.values.Get(i) }

// Values returns the raw values of the array. Values at null positions are
// unspecified.
func (arr *Number[T]) Values() []T { return arr.values.Values() }

// Buffer returns a view of the buffer holding the values of the array.
// Mutating the view copies it and leaves arr unchanged.
func (arr *Number[T]) Buffer() memory.Buffer[T] { return arr.values.View() }

// Validity returns a view of the validity bitmap of the array. Mutating the
// view copies it and leaves arr unchanged.
func (arr *Number[T]) Validity() memory.Bitmap { return arr.validity.View() }

// Slice returns a new array over the elements [offset, offset+length) of arr.
// The returned array shares storage with arr but not its references: arr must
// outlive the slice, and releasing the slice leaves arr intact.
func (arr *Number[T]) Slice(offset, length int) *Number[T] {
	var validity memory.Bitmap
	if arr.validity.Len() > 0 {
		validity = arr.validity.View().Slice(offset, length)
	}
	return NewNumberKind(arr.kind, arr.values.View().Slice(offset, length), validity)
}

// Release drops any references arr holds to shared storage.
func (arr *Number[T]) Release() {
	arr.values.Release()
	arr.validity.Release()
	arr.nulls = 0
}
