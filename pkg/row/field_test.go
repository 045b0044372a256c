package row

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodingField(t *testing.T) {
	tt := []struct {
		field   EncodingField
		ordered bool
		expect  string
	}{
		{field: NewSortedField(false, false), ordered: true, expect: "asc nulls_first"},
		{field: NewSortedField(true, false), ordered: true, expect: "desc nulls_first"},
		{field: NewSortedField(false, true), ordered: true, expect: "asc nulls_last"},
		{field: NewSortedField(true, true), ordered: true, expect: "desc nulls_last"},
		{field: NewUnsortedField(), ordered: false, expect: "unordered"},
		{field: EncodingField{}, ordered: true, expect: "asc nulls_first"},
	}

	for _, tc := range tt {
		t.Run(tc.expect, func(t *testing.T) {
			require.Equal(t, tc.ordered, tc.field.Ordered())
			require.Equal(t, tc.expect, tc.field.String())
		})
	}
}

func TestEncodingField_NoOrderKeepsFlags(t *testing.T) {
	f := EncodingField{Descending: true, NullsLast: true, NoOrder: true}

	require.False(t, f.Ordered())
	require.True(t, f.Descending)
	require.True(t, f.NullsLast)
	require.Equal(t, "unordered", f.String())
	require.NotEqual(t, NewUnsortedField(), f, "fields differing only in ignored flags remain distinct values")
}
