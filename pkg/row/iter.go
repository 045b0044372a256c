package row

import "github.com/daBlesr/polars/pkg/internal/unsafecast"

// Iterator walks the rows of a [Rows] in order. Slices returned by Next alias
// the row buffer and must not be modified.
type Iterator struct {
	start  uint64   // Start offset of the next row.
	ends   []uint64 // End offsets of the remaining rows.
	values []byte
}

// Next returns the next row. Next returns false once all rows have been
// returned.
func (it *Iterator) Next() ([]byte, bool) {
	if len(it.ends) == 0 {
		return nil, false
	}

	end := it.ends[0]
	it.ends = it.ends[1:]

	// The producer of the rows guarantees that offsets lie within values.
	row := unsafecast.SubSlice(it.values, int(it.start), int(end))
	it.start = end
	return row, true
}

// Remaining returns the number of rows Next has yet to return.
func (it *Iterator) Remaining() int { return len(it.ends) }
