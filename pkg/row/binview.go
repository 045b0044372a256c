package row

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	arrowmemory "github.com/apache/arrow-go/v18/arrow/memory"
)

// maxViewBufferSize is the largest data buffer a binary view may refer to.
// Views address their data buffer with an int32 offset.
var maxViewBufferSize = math.MaxInt32

// viewWindow is a region of the value buffer exported as one view data
// buffer.
type viewWindow struct {
	start, end int64
}

// largeBinaryToView converts a large binary array into a binary view array.
// Rows that fit in a view are inlined; all other rows point into windows of
// the original value buffer, which are shared rather than copied.
func largeBinaryToView(binary *array.LargeBinary) *array.BinaryView {
	var (
		n         = binary.Len()
		offsets   = binary.ValueOffsets()
		valuesBuf = binary.Data().Buffers()[2]
		values    = valuesBuf.Bytes()
		views     = make([]arrow.ViewHeader, n)
		windows   []viewWindow
	)

	for i := range n {
		start, end := offsets[i], offsets[i+1]
		views[i].SetBytes(values[start:end])
		if views[i].IsInline() {
			continue
		}

		if end-start > int64(maxViewBufferSize) {
			panic(fmt.Sprintf("row: row %d is %d bytes, larger than the largest binary view buffer (%d bytes)", i, end-start, maxViewBufferSize))
		}

		last := len(windows) - 1
		if last < 0 || end-windows[last].start > int64(maxViewBufferSize) {
			windows = append(windows, viewWindow{start: start, end: end})
			last++
		}
		windows[last].end = max(windows[last].end, end)

		views[i].SetIndexOffset(int32(last), int32(start-windows[last].start))
	}

	buffers := make([]*arrowmemory.Buffer, 0, 2+len(windows))
	buffers = append(buffers, nil, arrowmemory.NewBufferBytes(arrow.ViewHeaderTraits.CastToBytes(views)))
	for _, w := range windows {
		buffers = append(buffers, arrowmemory.SliceBuffer(valuesBuf, int(w.start), int(w.end-w.start)))
	}
	defer func() {
		for _, buf := range buffers[1:] {
			buf.Release()
		}
	}()

	data := array.NewData(arrow.BinaryTypes.BinaryView, n, buffers, nil, 0, 0)
	defer data.Release()

	return array.NewBinaryViewData(data)
}
