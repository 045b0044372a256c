package row

import "fmt"

// EncodingField describes how a single column is encoded into a row.
type EncodingField struct {
	// Descending encodes larger values as lexicographically smaller bytes.
	Descending bool

	// NullsLast places nulls at the end of the value domain instead of the
	// start.
	NullsLast bool

	// NoOrder disables all order-preserving transforms: values are copied in
	// their natural representation, and the resulting rows are only suitable
	// for equality and hashing. Descending and NullsLast are ignored when
	// NoOrder is set, but they are kept as given.
	NoOrder bool
}

// NewSortedField returns an EncodingField for an ordered column.
func NewSortedField(descending, nullsLast bool) EncodingField {
	return EncodingField{
		Descending: descending,
		NullsLast:  nullsLast,
	}
}

// NewUnsortedField returns an EncodingField for a column that is only
// compared for equality.
func NewUnsortedField() EncodingField {
	return EncodingField{NoOrder: true}
}

// Ordered reports whether f produces order-preserving encodings. Consumers
// must check Ordered before looking at Descending or NullsLast.
func (f EncodingField) Ordered() bool { return !f.NoOrder }

func (f EncodingField) String() string {
	if f.NoOrder {
		return "unordered"
	}

	direction := "asc"
	if f.Descending {
		direction = "desc"
	}
	nulls := "nulls_first"
	if f.NullsLast {
		nulls = "nulls_last"
	}
	return fmt.Sprintf("%s %s", direction, nulls)
}
