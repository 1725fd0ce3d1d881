// Package convert turns Arrow record columns into the plain Go cell
// values carried across the scan boundary. Nulls become nil cells;
// decimals stay textual to preserve exactness; WKB geometry payloads
// are decoded into orb geometries.
package convert

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/hugr-lab/attach-go/driver"
)

// geometryExtensionName identifies WKB geometry columns, matching the
// GeoArrow convention used by DuckDB's spatial layer.
const geometryExtensionName = "geoarrow.wkb"

// FillBatch copies rows [offset, offset+n) of rec into out, where n is
// bounded by the batch capacity and the rows remaining in the record.
// Returns the number of rows written. Record column i fills batch
// column i; the caller is responsible for projecting the record first.
func FillBatch(rec arrow.RecordBatch, offset int64, out *driver.RowBatch) int {
	n := int(rec.NumRows() - offset)
	if n <= 0 {
		out.SetLen(0)
		return 0
	}
	if c := out.Capacity(); n > c {
		n = c
	}

	numCols := int(rec.NumCols())
	if numCols > out.NumCols() {
		numCols = out.NumCols()
	}
	for c := 0; c < numCols; c++ {
		fillColumn(rec.Column(c), offset, n, out.Col(c))
	}
	out.SetLen(n)
	return n
}

func fillColumn(col arrow.Array, offset int64, n int, dst []any) {
	for i := 0; i < n; i++ {
		row := int(offset) + i
		if col.IsNull(row) {
			dst[i] = nil
			continue
		}
		dst[i] = CellValue(col, row)
	}
}

// CellValue extracts one non-null cell as a plain Go value.
func CellValue(col arrow.Array, row int) any {
	switch a := col.(type) {
	case *array.String:
		return a.Value(row)
	case *array.LargeString:
		return a.Value(row)
	case *array.Int64:
		return a.Value(row)
	case *array.Int32:
		return a.Value(row)
	case *array.Int16:
		return a.Value(row)
	case *array.Int8:
		return a.Value(row)
	case *array.Uint64:
		return a.Value(row)
	case *array.Uint32:
		return a.Value(row)
	case *array.Uint16:
		return a.Value(row)
	case *array.Uint8:
		return a.Value(row)
	case *array.Float64:
		return a.Value(row)
	case *array.Float32:
		return a.Value(row)
	case *array.Boolean:
		return a.Value(row)
	case *array.Timestamp:
		dt := a.DataType().(*arrow.TimestampType)
		return a.Value(row).ToTime(dt.Unit)
	case *array.Date32:
		return a.Value(row).ToTime()
	case *array.Date64:
		return a.Value(row).ToTime()
	case *array.Time32:
		dt := a.DataType().(*arrow.Time32Type)
		return a.Value(row).ToTime(dt.Unit)
	case *array.Time64:
		dt := a.DataType().(*arrow.Time64Type)
		return a.Value(row).ToTime(dt.Unit)
	case *array.Binary:
		return append([]byte(nil), a.Value(row)...)
	case *array.LargeBinary:
		return append([]byte(nil), a.Value(row)...)
	case *array.FixedSizeBinary:
		return append([]byte(nil), a.Value(row)...)
	case *array.Decimal128:
		// Text keeps full precision; consumers parse on their side.
		return a.ValueStr(row)
	case *array.Decimal256:
		return a.ValueStr(row)
	case array.ExtensionArray:
		return extensionValue(a, row)
	}
	// Unhandled physical type: fall back to the textual rendering, as
	// every concrete array type implements ValueStr.
	return col.ValueStr(row)
}

func extensionValue(a array.ExtensionArray, row int) any {
	ext, ok := a.DataType().(arrow.ExtensionType)
	if ok && ext.ExtensionName() == geometryExtensionName {
		if raw, ok := binaryValue(a.Storage(), row); ok {
			if geom, err := wkb.Unmarshal(raw); err == nil {
				return geom
			}
			// Undecodable WKB: hand the raw bytes through.
			return raw
		}
	}
	return CellValue(a.Storage(), row)
}

func binaryValue(storage arrow.Array, row int) ([]byte, bool) {
	switch s := storage.(type) {
	case *array.Binary:
		return append([]byte(nil), s.Value(row)...), true
	case *array.LargeBinary:
		return append([]byte(nil), s.Value(row)...), true
	}
	return nil, false
}
