// Package driver defines the boundary between the attach core (metadata
// cache, scan sessions) and connectors that own the actual remote-protocol
// client.
//
// The design follows database/sql/driver: the core packages (catalog, scan)
// depend only on these interfaces and never import a connector. Connector
// implementations live in their own packages (flightsql, airport) and are
// handed to the core explicitly through attach.Config at construction time.
// There is no global registration; a missing connector is an explicit,
// testable condition, not a nil function pointer.
//
// Every call on these interfaces may block for the duration of a remote
// round trip. Cancellation and timeouts are the connector's responsibility,
// driven by the context the core passes through.
package driver

import "context"

// Options carries the connection parameters for one remote endpoint.
// Credential fields are opaque to the core: they are passed through to the
// connector untouched and never logged.
type Options struct {
	// URI is the remote endpoint, e.g. "grpc+tls://host:31337".
	// REQUIRED.
	URI string

	// Username and Password for basic authentication.
	// OPTIONAL: empty means unauthenticated or token-based auth.
	Username string
	Password string

	// Token is an opaque bearer token.
	// OPTIONAL: takes precedence over Username/Password when set.
	Token string

	// SkipVerify disables TLS certificate verification.
	// OPTIONAL: connectors MAY ignore it for non-TLS schemes.
	SkipVerify bool
}

// Connector is implemented by remote-protocol clients. Implementations
// MUST be goroutine-safe: one Connector serves every catalog and scan
// session of an attached endpoint concurrently.
type Connector interface {
	// Connect establishes a session to the remote endpoint and returns a
	// live Conn. The returned Conn is owned by the caller and must be
	// closed exactly once.
	Connect(ctx context.Context, opts Options) (Conn, error)

	// BindScan opens a scan of one remote table and returns its handle
	// together with the table's column list. The schema name may be empty
	// for endpoints without schema namespaces. The returned Scan is owned
	// by the caller and must be closed exactly once, on every exit path.
	BindScan(ctx context.Context, opts Options, schemaName, tableName string) (Scan, error)
}

// Conn is one established session to a remote endpoint. The metadata
// cache holds a Conn for the lifetime of the attached catalog and issues
// list/describe calls through it. Implementations MUST tolerate
// concurrent calls: many schema and table lookups may race on one Conn.
type Conn interface {
	// ListSchemas returns the schema names visible at the endpoint.
	// catalogFilter narrows to one remote catalog; empty means the
	// endpoint default.
	ListSchemas(ctx context.Context, catalogFilter string) ([]string, error)

	// ListTables returns the tables of one schema. Both filters may be
	// empty. The result order is whatever the endpoint reports.
	ListTables(ctx context.Context, catalogFilter, schemaFilter string) ([]TableInfo, error)

	// GetColumns describes the columns of one table in ordinal order.
	// Returning an empty slice with a nil error means the table does not
	// exist; it is not an error condition.
	GetColumns(ctx context.Context, catalogFilter, schemaName, tableName string) ([]ColumnInfo, error)

	// Close releases the session. Safe to call once only.
	Close() error
}

// TableInfo identifies one remote table in a listing.
type TableInfo struct {
	// Name is the table name as reported by the endpoint.
	Name string

	// Kind is the endpoint's table kind, e.g. "TABLE" or "VIEW".
	// Empty when the endpoint does not distinguish kinds.
	Kind string
}

// ColumnInfo describes one column of a remote table.
type ColumnInfo struct {
	// Name is the column name as reported by the endpoint.
	Name string

	// TypeName is the remote type-name string, e.g. "BIGINT" or
	// "DECIMAL(12,2)". Mapped to a native type by the types package.
	TypeName string

	// Ordinal is the zero-based column position.
	Ordinal int

	// Nullable reports whether the column admits NULLs.
	Nullable bool
}

// ScanColumn is the (name, remote type name) pair reported at bind time.
type ScanColumn struct {
	Name     string
	TypeName string
}

// Scan is an open scan of one remote table. A Scan serves exactly one
// consumer: calls are issued serially, in the order Columns, Init, Next*,
// Close. Concurrent calls on one Scan are undefined.
type Scan interface {
	// Columns returns the bound table's columns in ordinal order.
	// Valid immediately after BindScan, before Init.
	Columns() []ScanColumn

	// Init fixes the projected column set and starts the remote read.
	// columnIDs holds zero-based ordinals into Columns; nil or a full set
	// means all columns. Called exactly once per Scan, before the first
	// Next.
	Init(ctx context.Context, columnIDs []int) error

	// Next fills out with up to out.Capacity() rows and returns the row
	// count. Zero means end of stream. The connector does not need to
	// guard against calls after end of stream; the scan session stops
	// calling Next once it has seen zero.
	Next(ctx context.Context, out *RowBatch) (int64, error)

	// Close releases the scan handle and any remote resources it holds.
	// Safe to call once only; the scan session guarantees exactly-once.
	Close() error
}
