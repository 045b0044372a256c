package columnar

import "fmt"

// RecordBatch is a collection of equal-length arrays.
type RecordBatch struct {
	nrows int64
	arrs  []Array
}

// NewRecordBatch creates a RecordBatch with nrows rows from arrs. NewRecordBatch
// panics if the length of any array differs from nrows.
func NewRecordBatch(nrows int64, arrs []Array) RecordBatch {
	for i, arr := range arrs {
		if int64(arr.Len()) != nrows {
			panic(fmt.Sprintf("columnar: column %d has %d rows, expected %d", i, arr.Len(), nrows))
		}
	}

	return RecordBatch{
		nrows: nrows,
		arrs:  arrs,
	}
}

func (rb RecordBatch) NumRows() int64 { return rb.nrows }

func (rb RecordBatch) NumCols() int64 { return int64(len(rb.arrs)) }

func (rb RecordBatch) Column(i int64) Array { return rb.arrs[i] }

// Kinds returns the kind of each column in order.
func (rb RecordBatch) Kinds() []Kind {
	kinds := make([]Kind, len(rb.arrs))
	for i, arr := range rb.arrs {
		kinds[i] = arr.Kind()
	}
	return kinds
}

// Release releases every column of rb.
func (rb RecordBatch) Release() {
	for _, arr := range rb.arrs {
		arr.Release()
	}
}
