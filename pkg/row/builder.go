package row

import (
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/daBlesr/polars/pkg/util/mempool"
)

// ErrBufferFull is returned by [Builder.Append] when appending a row would
// grow the value buffer past the configured maximum; call [Builder.Flush] to
// start a new buffer.
var ErrBufferFull = errors.New("row buffer full")

// A Builder accumulates encoded rows into a new [Rows]. Rows are appended
// with [Builder.Append] or [Builder.AppendParts] and handed over with
// [Builder.Flush].
//
// Methods on Builder are not goroutine-safe; callers are responsible for
// synchronizing calls.
type Builder struct {
	cfg     Config
	pool    mempool.Allocator
	metrics *Metrics

	values  []byte // Obtained from pool; len is the number of used bytes.
	offsets []uint64
}

// NewBuilder creates a new Builder. Value buffers are obtained from pool,
// which may be nil to allocate from the heap. metrics may be nil.
//
// NewBuilder returns an error if cfg is invalid.
func NewBuilder(cfg Config, pool mempool.Allocator, metrics *Metrics) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, pkgerrors.Wrap(err, "invalid row builder config")
	}
	if pool == nil {
		pool = &mempool.SimpleHeapAllocator{}
	}

	b := &Builder{cfg: cfg, pool: pool, metrics: metrics}
	b.resetOffsets()
	return b, nil
}

// Append appends one encoded row. Append returns [ErrBufferFull] if the row
// does not fit under the configured maximum buffer size; the row is not
// appended in that case.
func (b *Builder) Append(row []byte) error {
	if err := b.reserve(len(row)); err != nil {
		return err
	}
	b.values = append(b.values, row...)
	b.offsets = append(b.offsets, uint64(len(b.values)))
	return nil
}

// AppendParts appends one row made of the concatenation of parts, such as
// the encodings of each column of a record.
func (b *Builder) AppendParts(parts ...[]byte) error {
	var size int
	for _, part := range parts {
		size += len(part)
	}
	if err := b.reserve(size); err != nil {
		return err
	}

	for _, part := range parts {
		b.values = append(b.values, part...)
	}
	b.offsets = append(b.offsets, uint64(len(b.values)))
	return nil
}

// reserve makes room for n more bytes in the value buffer.
func (b *Builder) reserve(n int) error {
	limit := int(b.cfg.MaxBufferSize)

	need := len(b.values) + n
	if limit > 0 && need > limit {
		return ErrBufferFull
	}
	if need <= cap(b.values) {
		return nil
	}

	size := max(2*cap(b.values), need, int(b.cfg.InitialBufferSize))
	if limit > 0 {
		size = min(size, limit)
	}

	buf, err := b.pool.Get(size)
	if err != nil {
		return pkgerrors.Wrapf(err, "allocating %d byte row buffer", size)
	}
	buf = buf[:copy(buf, b.values)]

	if b.values != nil {
		b.pool.Put(b.values)
	}
	b.values = buf
	return nil
}

// Len returns the number of rows appended since the last flush.
func (b *Builder) Len() int { return len(b.offsets) - 1 }

// Size returns the number of bytes appended since the last flush.
func (b *Builder) Size() int { return len(b.values) }

// Reset discards all appended rows.
func (b *Builder) Reset() {
	if b.values != nil {
		b.pool.Put(b.values)
	}
	b.values = nil
	b.resetOffsets()
}

// Flush returns the appended rows as a [Rows] and resets the builder. The
// returned Rows gives its value buffer back to the builder's pool when it is
// released.
//
// Flush only returns an error when Config.CheckInvariants is set and the
// rows fail validation.
func (b *Builder) Flush() (*Rows, error) {
	values, offsets := b.values, b.offsets
	if values == nil {
		values = []byte{}
	}

	var rows *Rows
	if b.cfg.CheckInvariants {
		var err error
		if rows, err = New(values, offsets); err != nil {
			b.Reset()
			return nil, pkgerrors.Wrap(err, "flushing rows")
		}
	} else {
		rows = NewUnchecked(values, offsets)
	}
	if b.values != nil {
		rows.pool = b.pool
	}
	rows.metrics = b.metrics

	b.metrics.observeBuild(rows.Len(), rows.Size())

	b.values = nil
	b.resetOffsets()
	return rows, nil
}

func (b *Builder) resetOffsets() {
	b.offsets = make([]uint64, 1, b.cfg.InitialRows+1)
}
