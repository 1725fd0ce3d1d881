// Package types models the native column type system the attach core maps
// remote type-name strings onto.
//
// Remote endpoints report column types as free-form strings ("BIGINT",
// "DECIMAL(12,2)", "TIMESTAMPTZ"). FromRemoteName resolves any such string
// to exactly one native Type; it is total and deterministic, so discovery
// never fails on an exotic type name. The Arrow bridge (Type.Arrow,
// ArrowTypeName) translates between native types and the Arrow schemas the
// connectors speak.
package types

import "fmt"

// TypeID enumerates the native column types.
type TypeID uint8

const (
	Invalid TypeID = iota
	Varchar
	TinyInt
	SmallInt
	Integer
	BigInt
	HugeInt
	UTinyInt
	USmallInt
	UInteger
	UBigInt
	Float
	Double
	Decimal
	Boolean
	Date
	Time
	Timestamp
	TimestampTZ
	Interval
	Blob
	UUID
	JSON
	Geometry
)

// MaxDecimalPrecision is the widest decimal the native type system stores.
// Remote precisions above it are clamped, not rejected.
const MaxDecimalPrecision = 38

// DefaultDecimalPrecision and DefaultDecimalScale are used when a remote
// DECIMAL carries no usable precision/scale parameters. A deliberately
// lossy fallback, not an error.
const (
	DefaultDecimalPrecision = 18
	DefaultDecimalScale     = 3
)

// Type is one native column type. Precision and Scale are meaningful only
// for Decimal.
type Type struct {
	ID        TypeID
	Precision int32
	Scale     int32
}

// New returns the Type for a non-parameterized TypeID.
func New(id TypeID) Type {
	return Type{ID: id}
}

// NewDecimal returns a Decimal type, clamping precision to
// MaxDecimalPrecision.
func NewDecimal(precision, scale int32) Type {
	if precision > MaxDecimalPrecision {
		precision = MaxDecimalPrecision
	}
	return Type{ID: Decimal, Precision: precision, Scale: scale}
}

var typeNames = map[TypeID]string{
	Invalid:     "INVALID",
	Varchar:     "VARCHAR",
	TinyInt:     "TINYINT",
	SmallInt:    "SMALLINT",
	Integer:     "INTEGER",
	BigInt:      "BIGINT",
	HugeInt:     "HUGEINT",
	UTinyInt:    "UTINYINT",
	USmallInt:   "USMALLINT",
	UInteger:    "UINTEGER",
	UBigInt:     "UBIGINT",
	Float:       "FLOAT",
	Double:      "DOUBLE",
	Decimal:     "DECIMAL",
	Boolean:     "BOOLEAN",
	Date:        "DATE",
	Time:        "TIME",
	Timestamp:   "TIMESTAMP",
	TimestampTZ: "TIMESTAMPTZ",
	Interval:    "INTERVAL",
	Blob:        "BLOB",
	UUID:        "UUID",
	JSON:        "JSON",
	Geometry:    "GEOMETRY",
}

// String renders the canonical type name, with decimal parameters.
func (t Type) String() string {
	if t.ID == Decimal {
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Precision, t.Scale)
	}
	if name, ok := typeNames[t.ID]; ok {
		return name
	}
	return "INVALID"
}
