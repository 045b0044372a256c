package arrowconv

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/pkg/errors"

	"github.com/daBlesr/polars/pkg/columnar"
)

// Validate checks that data can be passed to [Import]. Validate is intended
// for trust boundaries; data produced by [Export] is always valid.
func Validate(data arrow.ArrayData) error {
	kind, ok := columnar.KindOf(data.DataType())
	if !ok {
		return errors.Errorf("unsupported arrow type %s", data.DataType())
	}

	buffers := data.Buffers()
	if len(buffers) != 2 {
		return errors.Errorf("%s array must have 2 buffers, got %d", kind, len(buffers))
	} else if len(data.Children()) > 0 {
		return errors.Errorf("%s array must not have children", kind)
	}

	var (
		offset = data.Offset()
		length = data.Len()
		width  = data.DataType().(arrow.FixedWidthDataType).BitWidth() / 8
	)
	if offset < 0 || length < 0 {
		return errors.Errorf("invalid window [%d:%d]", offset, offset+length)
	}

	if want := (offset + length) * width; want > 0 {
		if buffers[1] == nil {
			return errors.Errorf("%s array of length %d has no value buffer", kind, length)
		} else if got := buffers[1].Len(); got < want {
			return errors.Errorf("value buffer too small: need %d bytes, got %d", want, got)
		}
	}

	if buffers[0] != nil {
		want := int(bitutil.BytesForBits(int64(offset + length)))
		if got := buffers[0].Len(); got < want {
			return errors.Errorf("validity buffer too small: need %d bytes, got %d", want, got)
		}
	} else if data.NullN() > 0 {
		return errors.Errorf("array reports %d nulls but has no validity buffer", data.NullN())
	}

	return nil
}
