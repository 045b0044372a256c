package columnar

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// Kind is the logical type of an [Array].
type Kind int

const (
	KindInvalid Kind = iota

	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64

	KindDate32    // Days since the UNIX epoch, stored as int32.
	KindTimestamp // Nanoseconds since the UNIX epoch in UTC, stored as int64.
	KindDuration  // Nanoseconds, stored as int64.
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindInt8:      "int8",
	KindInt16:     "int16",
	KindInt32:     "int32",
	KindInt64:     "int64",
	KindUint8:     "uint8",
	KindUint16:    "uint16",
	KindUint32:    "uint32",
	KindUint64:    "uint64",
	KindFloat32:   "float32",
	KindFloat64:   "float64",
	KindDate32:    "date32",
	KindTimestamp: "timestamp",
	KindDuration:  "duration",
}

// String returns the name of k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// arrowTypes maps each Kind to its Arrow data type. The mapping is a
// bijection over the supported kinds; see [KindOf] for the inverse.
var arrowTypes = [...]arrow.DataType{
	KindInt8:      arrow.PrimitiveTypes.Int8,
	KindInt16:     arrow.PrimitiveTypes.Int16,
	KindInt32:     arrow.PrimitiveTypes.Int32,
	KindInt64:     arrow.PrimitiveTypes.Int64,
	KindUint8:     arrow.PrimitiveTypes.Uint8,
	KindUint16:    arrow.PrimitiveTypes.Uint16,
	KindUint32:    arrow.PrimitiveTypes.Uint32,
	KindUint64:    arrow.PrimitiveTypes.Uint64,
	KindFloat32:   arrow.PrimitiveTypes.Float32,
	KindFloat64:   arrow.PrimitiveTypes.Float64,
	KindDate32:    arrow.FixedWidthTypes.Date32,
	KindTimestamp: arrow.FixedWidthTypes.Timestamp_ns,
	KindDuration:  arrow.FixedWidthTypes.Duration_ns,
}

// ArrowType returns the Arrow data type for k, or nil if k is invalid.
func ArrowType(k Kind) arrow.DataType {
	if k <= KindInvalid || int(k) >= len(arrowTypes) {
		return nil
	}
	return arrowTypes[k]
}

// KindOf returns the Kind for the Arrow data type dt. KindOf returns false if
// dt has no corresponding Kind.
//
// Timestamps of any timezone map to [KindTimestamp] as long as the unit is
// nanoseconds; the timezone is not preserved.
func KindOf(dt arrow.DataType) (Kind, bool) {
	if dt == nil {
		return KindInvalid, false
	}

	switch dt.ID() {
	case arrow.INT8:
		return KindInt8, true
	case arrow.INT16:
		return KindInt16, true
	case arrow.INT32:
		return KindInt32, true
	case arrow.INT64:
		return KindInt64, true
	case arrow.UINT8:
		return KindUint8, true
	case arrow.UINT16:
		return KindUint16, true
	case arrow.UINT32:
		return KindUint32, true
	case arrow.UINT64:
		return KindUint64, true
	case arrow.FLOAT32:
		return KindFloat32, true
	case arrow.FLOAT64:
		return KindFloat64, true
	case arrow.DATE32:
		return KindDate32, true
	case arrow.TIMESTAMP:
		if dt.(*arrow.TimestampType).Unit == arrow.Nanosecond {
			return KindTimestamp, true
		}
	case arrow.DURATION:
		if dt.(*arrow.DurationType).Unit == arrow.Nanosecond {
			return KindDuration, true
		}
	}

	return KindInvalid, false
}
