package types

import (
	"strconv"
	"strings"
)

// aliases is the exact-match table, keyed by case-folded remote type name.
// One remote concept typically has several spellings across engines
// (Postgres, DuckDB, Spark, Flight SQL servers); all of them resolve to
// one native type.
var aliases = map[string]TypeID{
	"VARCHAR": Varchar,
	"STRING":  Varchar,
	"TEXT":    Varchar,
	"CHAR":    Varchar,
	"BPCHAR":  Varchar,
	"NAME":    Varchar,

	"BIGINT": BigInt,
	"INT8":   BigInt,
	"INT64":  BigInt,
	"LONG":   BigInt,

	"INTEGER": Integer,
	"INT":     Integer,
	"INT4":    Integer,
	"INT32":   Integer,

	"SMALLINT": SmallInt,
	"INT2":     SmallInt,
	"INT16":    SmallInt,
	"SHORT":    SmallInt,

	"TINYINT": TinyInt,
	"INT1":    TinyInt,

	"UBIGINT": UBigInt,
	"UINT8":   UBigInt,
	"UINT64":  UBigInt,
	"ULONG":   UBigInt,

	"UINTEGER": UInteger,
	"UINT":     UInteger,
	"UINT4":    UInteger,
	"UINT32":   UInteger,

	"USMALLINT": USmallInt,
	"UINT2":     USmallInt,
	"UINT16":    USmallInt,
	"USHORT":    USmallInt,

	"UTINYINT": UTinyInt,
	"UINT1":    UTinyInt,

	"DOUBLE":           Double,
	"FLOAT8":           Double,
	"DOUBLE PRECISION": Double,
	"NUMERIC":          Double,
	"REAL8":            Double,

	"FLOAT":  Float,
	"FLOAT4": Float,
	"REAL":   Float,

	"BOOLEAN": Boolean,
	"BOOL":    Boolean,

	"DATE": Date,

	"TIME":                   Time,
	"TIME WITHOUT TIME ZONE": Time,

	"TIMESTAMP":                   Timestamp,
	"DATETIME":                    Timestamp,
	"TIMESTAMP WITHOUT TIME ZONE": Timestamp,

	"TIMESTAMPTZ":              TimestampTZ,
	"TIMESTAMP WITH TIME ZONE": TimestampTZ,

	"INTERVAL": Interval,

	"BLOB":      Blob,
	"BYTEA":     Blob,
	"BINARY":    Blob,
	"VARBINARY": Blob,
	"BYTES":     Blob,

	"UUID": UUID,

	"JSON":  JSON,
	"JSONB": JSON,

	"GEOMETRY":  Geometry,
	"GEOGRAPHY": Geometry,
	"WKB":       Geometry,

	"HUGEINT": HugeInt,
	"INT128":  HugeInt,
}

// FromRemoteName maps a remote type-name string to a native Type.
//
// Resolution order: exact case-folded alias match, then the
// DECIMAL/NUMERIC prefix with optional (precision[,scale]) parameters,
// then VARCHAR as the universal fallback. Unknown names falling back to
// VARCHAR is intentional: the engine can still apply implicit casts
// downstream, so discovery never fails on a type name.
func FromRemoteName(name string) Type {
	upper := strings.ToUpper(strings.TrimSpace(name))

	if id, ok := aliases[upper]; ok {
		return New(id)
	}

	if strings.HasPrefix(upper, "DECIMAL") || strings.HasPrefix(upper, "NUMERIC") {
		return parseDecimal(upper)
	}

	return New(Varchar)
}

// parseDecimal handles "DECIMAL(p,s)", "DECIMAL(p)" and bare "DECIMAL"
// spellings (likewise NUMERIC). Any malformed parameter list falls back to
// DECIMAL(18,3) rather than failing.
func parseDecimal(upper string) Type {
	open := strings.IndexByte(upper, '(')
	close := strings.IndexByte(upper, ')')
	if open < 0 || close < open {
		return NewDecimal(DefaultDecimalPrecision, DefaultDecimalScale)
	}

	params := upper[open+1 : close]
	if comma := strings.IndexByte(params, ','); comma >= 0 {
		precision, errP := strconv.Atoi(strings.TrimSpace(params[:comma]))
		scale, errS := strconv.Atoi(strings.TrimSpace(params[comma+1:]))
		if errP != nil || errS != nil {
			return NewDecimal(DefaultDecimalPrecision, DefaultDecimalScale)
		}
		return NewDecimal(int32(precision), int32(scale))
	}

	precision, err := strconv.Atoi(strings.TrimSpace(params))
	if err != nil {
		return NewDecimal(DefaultDecimalPrecision, DefaultDecimalScale)
	}
	return NewDecimal(int32(precision), 0)
}
