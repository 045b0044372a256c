package unsafecast

import (
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestSlice(t *testing.T) {
	in := []uint64{0, 3, math.MaxInt64}
	out := Slice[uint64, int64](in)

	require.Equal(t, []int64{0, 3, math.MaxInt64}, out)
	require.Same(t, &in[0], (*uint64)(unsafe.Pointer(&out[0])))

	require.Nil(t, Slice[uint64, int64](nil))
}

func TestBytes(t *testing.T) {
	in := []uint32{1, 0x01020304}
	b := Bytes(in)
	require.Len(t, b, 8)
	require.Equal(t, in, FromBytes[uint32](b))

	require.Len(t, FromBytes[uint32](b[:7]), 1, "trailing bytes are dropped")
}

func TestSubSlice(t *testing.T) {
	data := []byte("abcxy")

	require.Equal(t, []byte("abc"), SubSlice(data, 0, 3))
	require.Equal(t, []byte("xy"), SubSlice(data, 3, 5))
	require.Empty(t, SubSlice(data, 3, 3))
	require.Same(t, &data[3], &SubSlice(data, 3, 5)[0])
}
