// Package unsafecast provides utilities for reinterpreting memory without
// copying it.
package unsafecast

import "unsafe"

// Sizeof returns the size of T in bytes.
func Sizeof[T any]() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

// Slice reinterprets a slice of one type as a slice of another type. Slice
// does not perform any type conversion or validation; the bit pattern of in is
// reused as-is.
//
// The length and capacity of the output slice are scaled according to the
// sizes of the From and To types. A nil input yields a nil output.
func Slice[From, To any](in []From) []To {
	if in == nil {
		return nil
	}

	var (
		fromSize = int(Sizeof[From]())
		toSize   = int(Sizeof[To]())

		toLen = len(in) * fromSize / toSize
		toCap = cap(in) * fromSize / toSize
	)

	outPointer := (*To)(unsafe.Pointer(unsafe.SliceData(in)))
	return unsafe.Slice(outPointer, toCap)[:toLen]
}

// Bytes returns the raw memory backing in.
func Bytes[T any](in []T) []byte { return Slice[T, byte](in) }

// FromBytes reinterprets raw memory as a slice of T. Trailing bytes that do
// not form a complete T are dropped. The caller guarantees that in is
// suitably aligned for T.
func FromBytes[T any](in []byte) []T { return Slice[byte, T](in) }

// SubSlice returns data[start:end] without bounds checks. The caller
// guarantees 0 <= start <= end <= cap(data).
func SubSlice(data []byte, start, end int) []byte {
	if start == end {
		return data[:0:0]
	}
	ptr := unsafe.Add(unsafe.Pointer(unsafe.SliceData(data)), start)
	return unsafe.Slice((*byte)(ptr), end-start)
}
