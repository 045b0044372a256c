package row

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// packRows packs rows into a value buffer and offsets.
func packRows(rows ...string) ([]byte, []uint64) {
	values := []byte{}
	offsets := []uint64{0}
	for _, row := range rows {
		values = append(values, row...)
		offsets = append(offsets, uint64(len(values)))
	}
	return values, offsets
}

func collect(r *Rows) []string {
	out := []string{}
	for row := range r.All() {
		out = append(out, string(row))
	}
	return out
}

func TestRows_Iter(t *testing.T) {
	rows, err := New([]byte("abcxy"), []uint64{0, 3, 3, 5})
	require.NoError(t, err)
	defer rows.Release()

	require.Equal(t, 3, rows.Len())
	require.Equal(t, 5, rows.Size())

	it := rows.Iter()
	require.Equal(t, 3, it.Remaining())

	var got []string
	for row, ok := it.Next(); ok; row, ok = it.Next() {
		got = append(got, string(row))
	}
	require.Equal(t, []string{"abc", "", "xy"}, got)
	require.Equal(t, 0, it.Remaining())

	_, ok := it.Next()
	require.False(t, ok, "exhausted iterator must stay exhausted")
}

func TestRows_IntoArray(t *testing.T) {
	rows, err := New([]byte("abcxy"), []uint64{0, 3, 3, 5})
	require.NoError(t, err)

	arr := rows.IntoArray()
	defer arr.Release()

	require.Equal(t, 3, arr.Len())
	require.Equal(t, 0, arr.NullN())
	require.Equal(t, []int64{0, 3, 3, 5}, arr.ValueOffsets())
	require.Equal(t, "abcxy", string(arr.ValueBytes()))
}

func TestRows_IterRestarts(t *testing.T) {
	values, offsets := packRows("one", "two", "three")
	rows := NewUnchecked(values, offsets)
	defer rows.Release()

	first := rows.Iter()
	row, ok := first.Next()
	require.True(t, ok)
	require.Equal(t, "one", string(row))

	// A second iterator starts from the beginning regardless of the first.
	require.Equal(t, []string{"one", "two", "three"}, collect(rows))

	row, ok = first.Next()
	require.True(t, ok)
	require.Equal(t, "two", string(row))
}

func TestRows_IterAliasesValues(t *testing.T) {
	values, offsets := packRows("abc", "de")
	rows := NewUnchecked(values, offsets)
	defer rows.Release()

	it := rows.Iter()
	_, _ = it.Next()
	row, _ := it.Next()
	require.Same(t, &values[3], &row[0])
}

func TestRows_NonZeroFirstOffset(t *testing.T) {
	// Offsets need not start at zero; bytes before the first offset belong to
	// no row.
	rows, err := New([]byte("xxabcd"), []uint64{2, 4, 6})
	require.NoError(t, err)
	defer rows.Release()

	require.Equal(t, []string{"ab", "cd"}, collect(rows))

	arr := rows.BorrowArray()
	defer arr.Release()
	require.Equal(t, 2, arr.Len())
	require.Equal(t, "ab", string(arr.Value(0)))
	require.Equal(t, "cd", string(arr.Value(1)))
}

func TestRows_Empty(t *testing.T) {
	rows, err := New([]byte{}, []uint64{0})
	require.NoError(t, err)

	require.Equal(t, 0, rows.Len())
	require.Empty(t, collect(rows))

	_, ok := rows.Iter().Next()
	require.False(t, ok)

	borrowed := rows.BorrowArray()
	require.Equal(t, 0, borrowed.Len())
	borrowed.Release()

	view := rows.IntoBinaryView()
	defer view.Release()
	require.Equal(t, 0, view.Len())
}

func TestRows_AllStopsEarly(t *testing.T) {
	values, offsets := packRows("a", "b", "c")
	rows := NewUnchecked(values, offsets)
	defer rows.Release()

	var got []string
	for row := range rows.All() {
		got = append(got, string(row))
		if len(got) == 2 {
			break
		}
	}
	require.Equal(t, []string{"a", "b"}, got)
}

func TestRows_Get(t *testing.T) {
	values, offsets := packRows("abc", "", "xy")
	rows := NewUnchecked(values, offsets)
	defer rows.Release()

	require.Equal(t, "abc", string(rows.Get(0)))
	require.Equal(t, "", string(rows.Get(1)))
	require.Equal(t, "xy", string(rows.Get(2)))
	require.Panics(t, func() { rows.Get(3) })
}

func TestNew(t *testing.T) {
	tt := []struct {
		name    string
		values  []byte
		offsets []uint64
		expect  string
	}{
		{name: "valid", values: []byte("abcxy"), offsets: []uint64{0, 3, 3, 5}},
		{name: "only offset", values: nil, offsets: []uint64{0}},
		{name: "no offsets", values: nil, offsets: nil, expect: "at least one offset"},
		{name: "decreasing", values: []byte("abcxy"), offsets: []uint64{0, 3, 2, 5}, expect: "offsets decrease at row 1"},
		{name: "short value buffer", values: []byte("abc"), offsets: []uint64{0, 3, 5}, expect: "does not match value buffer size"},
		{name: "long value buffer", values: []byte("abcdef"), offsets: []uint64{0, 3, 5}, expect: "does not match value buffer size"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := New(tc.values, tc.offsets)
			if tc.expect != "" {
				require.ErrorContains(t, err, tc.expect)
				require.Nil(t, rows)
				return
			}
			require.NoError(t, err)
			rows.Release()
		})
	}
}

func TestRows_BorrowArray(t *testing.T) {
	values, offsets := packRows("abc", "", "xy")
	rows := NewUnchecked(values, offsets)
	defer rows.Release()

	arr := rows.BorrowArray()
	defer arr.Release()

	require.Equal(t, arrow.BinaryTypes.LargeBinary, arr.DataType())
	require.Equal(t, 3, arr.Len())
	require.Equal(t, 0, arr.NullN())
	require.Equal(t, []int64{0, 3, 3, 5}, arr.ValueOffsets())

	for i, want := range []string{"abc", "", "xy"} {
		require.Equal(t, want, string(arr.Value(i)), "row %d", i)
	}

	// Both buffers alias the row buffer.
	require.Same(t, &values[0], &arr.ValueBytes()[0])
	require.Same(t, &offsets[1], (*uint64)(unsafe.Pointer(&arr.ValueOffsets()[1])))

	// Borrowing does not consume the rows.
	require.Equal(t, []string{"abc", "", "xy"}, collect(rows))
}

func TestRows_ExportsAgree(t *testing.T) {
	input := []string{"", "a", "ab", "twelve bytes", "thirteen byte", "a much longer row that is not inlined", ""}

	build := func() *Rows {
		values, offsets := packRows(input...)
		return NewUnchecked(values, offsets)
	}

	iterated := build()
	defer iterated.Release()

	borrowed := build()
	defer borrowed.Release()
	borrowedArr := borrowed.BorrowArray()
	defer borrowedArr.Release()

	owned := build().IntoArray()
	defer owned.Release()

	view := build().IntoBinaryView()
	defer view.Release()

	require.Equal(t, borrowedArr.ValueOffsets(), owned.ValueOffsets())
	require.Equal(t, borrowedArr.ValueBytes(), owned.ValueBytes())

	var fromBorrow, fromOwned, fromView []string
	for i := range len(input) {
		fromBorrow = append(fromBorrow, string(borrowedArr.Value(i)))
		fromOwned = append(fromOwned, string(owned.Value(i)))
		fromView = append(fromView, string(view.Value(i)))
	}

	for name, got := range map[string][]string{
		"iter":    collect(iterated),
		"borrow":  fromBorrow,
		"array":   fromOwned,
		"binview": fromView,
	} {
		if diff := cmp.Diff(input, got); diff != "" {
			t.Errorf("%s export mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestRows_ConsumedRowsPanic(t *testing.T) {
	values, offsets := packRows("abc")

	rows := NewUnchecked(values, offsets)
	arr := rows.IntoArray()
	defer arr.Release()

	require.Equal(t, 0, rows.Len())
	require.PanicsWithValue(t, "row: Iter called on consumed rows", func() { rows.Iter() })
	require.Panics(t, func() { rows.BorrowArray() })
	require.Panics(t, func() { rows.IntoArray() })
	require.Panics(t, func() { rows.IntoBinaryView() })

	// Releasing consumed rows is a no-op and must not touch the array's
	// storage.
	rows.Release()
	require.Equal(t, "abc", string(arr.Value(0)))
}

func TestRows_ReleasedRowsPanic(t *testing.T) {
	values, offsets := packRows("abc")

	rows := NewUnchecked(values, offsets)
	rows.Release()
	rows.Release()

	require.PanicsWithValue(t, "row: BorrowArray called on released rows", func() { rows.BorrowArray() })
}

// The 2^63-1 boundary is only reachable through checkOffsets: an export with
// such an offset needs a value buffer of that size, which arrow's offset bounds
// check requires to exist. Exports are covered past the boundary below.
func TestCheckOffsets(t *testing.T) {
	require.NotPanics(t, func() { checkOffsets([]uint64{0, math.MaxInt64}) })
	require.Panics(t, func() { checkOffsets([]uint64{0, math.MaxInt64 + 1}) })
	require.Panics(t, func() { checkOffsets([]uint64{0, math.MaxUint64}) })
}

func TestRows_ExportOverflowPanics(t *testing.T) {
	// The overflow check runs before any offset is read as a position in the
	// value buffer, so the value buffer can be tiny.
	overflowing := func() *Rows {
		return NewUnchecked([]byte("x"), []uint64{0, 1, 1 << 63})
	}

	require.PanicsWithValue(t, "row: offset overflow: last offset 9223372036854775808 exceeds 9223372036854775807", func() {
		overflowing().BorrowArray()
	})
	require.Panics(t, func() { overflowing().IntoArray() })
	require.Panics(t, func() { overflowing().IntoBinaryView() })
}

func TestRows_ConcurrentReaders(t *testing.T) {
	input := []string{"alpha", "", "gamma", "a row long enough to be stored out of line"}
	values, offsets := packRows(input...)
	rows := NewUnchecked(values, offsets)
	defer rows.Release()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if i%2 == 0 {
				if diff := cmp.Diff(input, collect(rows)); diff != "" {
					errs <- fmt.Errorf("iter mismatch:\n%s", diff)
				}
				return
			}

			arr := rows.BorrowArray()
			defer arr.Release()
			for j, want := range input {
				if got := string(arr.Value(j)); got != want {
					errs <- fmt.Errorf("row %d: got %q, want %q", j, got, want)
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestRows_ReleaseReturnsStorage(t *testing.T) {
	pool := &countingPool{}
	buf, err := pool.Get(5)
	require.NoError(t, err)
	copy(buf, "abcxy")

	rows := NewUnchecked(buf, []uint64{0, 3, 3, 5})
	rows.pool = pool
	rows.Release()
	require.Equal(t, 1, pool.puts)

	// Consuming hands the storage to the array instead.
	buf, err = pool.Get(5)
	require.NoError(t, err)
	rows = NewUnchecked(buf, []uint64{0, 3, 3, 5})
	rows.pool = pool
	arr := rows.IntoArray()
	rows.Release()
	arr.Release()
	require.Equal(t, 1, pool.puts)
}
