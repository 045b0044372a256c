// Package columnar provides strongly-typed columnar in-memory arrays.
//
// Columnar types are Arrow-compatible: every array here can be exchanged with
// arrow-go through [github.com/daBlesr/polars/pkg/columnar/arrowconv] without
// copying its value or validity storage. Storage is managed through
// [memory.Buffer] and [memory.Bitmap] rather than by arrow-go's reference
// counting; references to arrow-owned storage are only held at the import
// boundary.
package columnar

import "github.com/daBlesr/polars/pkg/memory"

// An Array is a sequence of elements of the same data type.
type Array interface {
	// Len returns the total number of elements in the array.
	Len() int

	// Nulls returns the number of null elements in the array. The number of
	// non-null elements can be calculated from Len() - Nulls().
	Nulls() int

	// IsNull returns true if the element at index i is null.
	IsNull(i int) bool

	// Validity returns the validity bitmap of the array. The returned bitmap
	// may be of length 0 if there are no nulls.
	//
	// A value of 1 in the Validity bitmap indicates that the corresponding
	// element at that position is valid (not null).
	Validity() memory.Bitmap

	// Kind returns the kind of Array being represented.
	Kind() Kind

	// Release drops any references the array holds to shared storage.
	Release()
}
