// Package row holds order-preserving row encodings of multi-column records.
//
// An encoder (not part of this package) writes the bytes of each record so
// that unsigned lexicographic comparison of two encoded rows matches the
// intended ordering of the records. [Rows] stores those encodings packed
// back-to-back in a single value buffer, delimited by a buffer of end offsets,
// and exposes them to sort, group-by and join operators:
//
//   - [Rows.Iter] and [Rows.All] walk the rows without allocating.
//   - [Rows.BorrowArray] views the rows as an Arrow large binary array that
//     aliases the row buffer.
//   - [Rows.IntoArray] hands the storage over to an Arrow large binary array.
//   - [Rows.IntoBinaryView] converts to an Arrow binary view array.
//
// Offsets are accumulated as uint64 and exported as Arrow's int64 offsets by
// reinterpreting their bit pattern. Every export checks once that the last
// offset fits in an int64 and panics otherwise.
//
// Rows is immutable once built and may be read from many goroutines at once.
// There is no internal synchronization and no reference counting: callers
// keep the Rows alive, and unreleased, for as long as anything borrowed from
// it is in use.
package row
