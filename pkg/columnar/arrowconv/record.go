package arrowconv

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/pkg/errors"

	"github.com/daBlesr/polars/pkg/columnar"
)

// ToRecord converts a columnar RecordBatch into an Arrow record using schema
// for the output fields. Columns are shared, not copied. The field types of
// schema must match the kinds of the columns of src.
func ToRecord(src columnar.RecordBatch, schema *arrow.Schema) (arrow.Record, error) {
	if got, want := int64(schema.NumFields()), src.NumCols(); got != want {
		return nil, errors.Errorf("schema has %d fields, record batch has %d columns", got, want)
	}

	arrs := make([]arrow.Array, 0, src.NumCols())
	defer func() {
		for _, arr := range arrs {
			arr.Release()
		}
	}()

	for colIdx := range src.NumCols() {
		field := schema.Field(int(colIdx))
		col := src.Column(colIdx)

		if kind, ok := columnar.KindOf(field.Type); !ok || kind != col.Kind() {
			return nil, errors.Errorf("field %q has type %s, column %d has kind %s", field.Name, field.Type, colIdx, col.Kind())
		}

		data, err := exportArray(col)
		if err != nil {
			return nil, errors.Wrapf(err, "column %d", colIdx)
		}
		arrs = append(arrs, array.MakeFromData(data))
		data.Release()
	}

	return array.NewRecord(schema, arrs, src.NumRows()), nil
}

// FromRecord converts an Arrow record into a columnar RecordBatch. Columns
// are validated and then shared, not copied. Release the result with
// [columnar.RecordBatch.Release].
func FromRecord(rec arrow.Record) (columnar.RecordBatch, error) {
	arrs := make([]columnar.Array, 0, rec.NumCols())

	for colIdx, col := range rec.Columns() {
		data := col.Data()
		if err := Validate(data); err != nil {
			for _, arr := range arrs {
				arr.Release()
			}
			return columnar.RecordBatch{}, errors.Wrapf(err, "column %q", rec.ColumnName(colIdx))
		}
		arrs = append(arrs, importArray(data))
	}

	return columnar.NewRecordBatch(rec.NumRows(), arrs), nil
}

func exportArray(arr columnar.Array) (arrow.ArrayData, error) {
	switch arr := arr.(type) {
	case *columnar.Number[int8]:
		return Export(arr), nil
	case *columnar.Number[int16]:
		return Export(arr), nil
	case *columnar.Number[int32]:
		return Export(arr), nil
	case *columnar.Number[int64]:
		return Export(arr), nil
	case *columnar.Number[uint8]:
		return Export(arr), nil
	case *columnar.Number[uint16]:
		return Export(arr), nil
	case *columnar.Number[uint32]:
		return Export(arr), nil
	case *columnar.Number[uint64]:
		return Export(arr), nil
	case *columnar.Number[float32]:
		return Export(arr), nil
	case *columnar.Number[float64]:
		return Export(arr), nil
	default:
		return nil, errors.Errorf("unsupported array type %T", arr)
	}
}

// importArray imports data, which must have passed [Validate].
func importArray(data arrow.ArrayData) columnar.Array {
	kind, _ := columnar.KindOf(data.DataType())

	switch kind {
	case columnar.KindInt8:
		return Import[int8](data)
	case columnar.KindInt16:
		return Import[int16](data)
	case columnar.KindInt32, columnar.KindDate32:
		return Import[int32](data)
	case columnar.KindInt64, columnar.KindTimestamp, columnar.KindDuration:
		return Import[int64](data)
	case columnar.KindUint8:
		return Import[uint8](data)
	case columnar.KindUint16:
		return Import[uint16](data)
	case columnar.KindUint32:
		return Import[uint32](data)
	case columnar.KindUint64:
		return Import[uint64](data)
	case columnar.KindFloat32:
		return Import[float32](data)
	case columnar.KindFloat64:
		return Import[float64](data)
	}

	panic(fmt.Sprintf("arrowconv: unsupported kind %s", kind))
}
