package types

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// geometryExtensionName is the Arrow extension identifier for WKB-encoded
// geometry columns, shared with GeoArrow and the DuckDB spatial extension.
const geometryExtensionName = "geoarrow.wkb"

// Arrow returns the Arrow data type connectors use to represent t on the
// wire. Types the Arrow type system lacks degrade to their storage form:
// JSON to utf8, GEOMETRY to WKB binary, HUGEINT to a 38-digit decimal.
func (t Type) Arrow() arrow.DataType {
	switch t.ID {
	case Varchar, JSON:
		return arrow.BinaryTypes.String
	case TinyInt:
		return arrow.PrimitiveTypes.Int8
	case SmallInt:
		return arrow.PrimitiveTypes.Int16
	case Integer:
		return arrow.PrimitiveTypes.Int32
	case BigInt:
		return arrow.PrimitiveTypes.Int64
	case UTinyInt:
		return arrow.PrimitiveTypes.Uint8
	case USmallInt:
		return arrow.PrimitiveTypes.Uint16
	case UInteger:
		return arrow.PrimitiveTypes.Uint32
	case UBigInt:
		return arrow.PrimitiveTypes.Uint64
	case Float:
		return arrow.PrimitiveTypes.Float32
	case Double:
		return arrow.PrimitiveTypes.Float64
	case Decimal:
		return &arrow.Decimal128Type{Precision: t.Precision, Scale: t.Scale}
	case HugeInt:
		return &arrow.Decimal128Type{Precision: MaxDecimalPrecision, Scale: 0}
	case Boolean:
		return arrow.FixedWidthTypes.Boolean
	case Date:
		return arrow.FixedWidthTypes.Date32
	case Time:
		return arrow.FixedWidthTypes.Time64us
	case Timestamp:
		return arrow.FixedWidthTypes.Timestamp_us
	case TimestampTZ:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	case Interval:
		return arrow.FixedWidthTypes.MonthDayNanoInterval
	case Blob, Geometry:
		return arrow.BinaryTypes.Binary
	case UUID:
		return &arrow.FixedSizeBinaryType{ByteWidth: 16}
	default:
		return arrow.BinaryTypes.String
	}
}

// ArrowTypeName renders an Arrow data type as the remote type-name string
// the mapper understands. The two functions close the loop: a connector
// reports ArrowTypeName for each field of a remote Arrow schema, and the
// cache maps it back with FromRemoteName.
func ArrowTypeName(dt arrow.DataType) string {
	if ext, ok := dt.(arrow.ExtensionType); ok {
		if ext.ExtensionName() == geometryExtensionName {
			return "GEOMETRY"
		}
		return ArrowTypeName(ext.StorageType())
	}

	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING:
		return "VARCHAR"
	case arrow.INT8:
		return "TINYINT"
	case arrow.INT16:
		return "SMALLINT"
	case arrow.INT32:
		return "INTEGER"
	case arrow.INT64:
		return "BIGINT"
	case arrow.UINT8:
		return "UTINYINT"
	case arrow.UINT16:
		return "USMALLINT"
	case arrow.UINT32:
		return "UINTEGER"
	case arrow.UINT64:
		return "UBIGINT"
	case arrow.FLOAT32:
		return "FLOAT"
	case arrow.FLOAT64:
		return "DOUBLE"
	case arrow.BOOL:
		return "BOOLEAN"
	case arrow.DATE32, arrow.DATE64:
		return "DATE"
	case arrow.TIME32, arrow.TIME64:
		return "TIME"
	case arrow.TIMESTAMP:
		if ts, ok := dt.(*arrow.TimestampType); ok && ts.TimeZone != "" {
			return "TIMESTAMPTZ"
		}
		return "TIMESTAMP"
	case arrow.INTERVAL_MONTH_DAY_NANO, arrow.INTERVAL_MONTHS, arrow.INTERVAL_DAY_TIME:
		return "INTERVAL"
	case arrow.BINARY, arrow.LARGE_BINARY:
		return "BLOB"
	case arrow.FIXED_SIZE_BINARY:
		if fsb, ok := dt.(*arrow.FixedSizeBinaryType); ok && fsb.ByteWidth == 16 {
			return "UUID"
		}
		return "BLOB"
	case arrow.DECIMAL128, arrow.DECIMAL256:
		if dec, ok := dt.(arrow.DecimalType); ok {
			return fmt.Sprintf("DECIMAL(%d,%d)", dec.GetPrecision(), dec.GetScale())
		}
		return "DECIMAL"
	default:
		return "VARCHAR"
	}
}
