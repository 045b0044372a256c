package columnar_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/require"

	"github.com/daBlesr/polars/pkg/columnar"
)

func TestKind_ArrowRoundTrip(t *testing.T) {
	for kind := columnar.KindInt8; kind <= columnar.KindDuration; kind++ {
		t.Run(kind.String(), func(t *testing.T) {
			dt := columnar.ArrowType(kind)
			require.NotNil(t, dt)

			actual, ok := columnar.KindOf(dt)
			require.True(t, ok)
			require.Equal(t, kind, actual)
		})
	}
}

func TestKindOf_Unsupported(t *testing.T) {
	for _, dt := range []arrow.DataType{
		nil,
		arrow.BinaryTypes.String,
		arrow.BinaryTypes.LargeBinary,
		arrow.FixedWidthTypes.Timestamp_ms,
		arrow.FixedWidthTypes.Duration_s,
		arrow.FixedWidthTypes.Boolean,
	} {
		_, ok := columnar.KindOf(dt)
		require.False(t, ok, "expected %v to be unsupported", dt)
	}

	require.Nil(t, columnar.ArrowType(columnar.KindInvalid))
	require.Equal(t, "Kind(99)", columnar.Kind(99).String())
}

func TestKindOf_TimestampZone(t *testing.T) {
	kind, ok := columnar.KindOf(&arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: "Europe/Amsterdam"})
	require.True(t, ok)
	require.Equal(t, columnar.KindTimestamp, kind)
}
