package catalog

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/hugr-lab/attach-go/driver"
	"github.com/hugr-lab/attach-go/scan"
	"github.com/hugr-lab/attach-go/types"
)

// Column is one column of a cached table entry.
type Column struct {
	// Name as reported by the endpoint.
	Name string

	// Type is the native type derived from the remote type-name string.
	Type types.Type

	// Ordinal is the zero-based position at discovery time.
	Ordinal int

	// Nullable as reported at discovery time. Informational; it does not
	// affect planning correctness in this design.
	Nullable bool
}

// Table is one table-level cache entry. Immutable once constructed; there
// is no schema-refresh operation.
type Table struct {
	name         string
	remoteSchema string
	remoteTable  string
	columns      []Column

	schema *Schema
}

func newTable(s *Schema, name string, infos []driver.ColumnInfo) *Table {
	columns := make([]Column, len(infos))
	for i, info := range infos {
		columns[i] = columnFromInfo(info)
	}
	return &Table{
		name:         name,
		remoteSchema: s.name,
		remoteTable:  name,
		columns:      columns,
		schema:       s,
	}
}

// Name returns the local table name, as it was looked up.
func (t *Table) Name() string {
	return t.name
}

// RemoteSchema returns the schema name used on the remote endpoint.
func (t *Table) RemoteSchema() string {
	return t.remoteSchema
}

// RemoteTable returns the table name used on the remote endpoint. It may
// differ in casing or namespace handling from the local lookup key.
func (t *Table) RemoteTable() string {
	return t.remoteTable
}

// Columns returns the table's columns in ordinal order. The returned slice
// is shared; callers must not modify it.
func (t *Table) Columns() []Column {
	return t.columns
}

// NumColumns returns the column count.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// ArrowSchema renders the table's columns as an Arrow schema, for engines
// and tools that consume Arrow metadata directly.
func (t *Table) ArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, len(t.columns))
	for i, col := range t.columns {
		fields[i] = arrow.Field{
			Name:     col.Name,
			Type:     col.Type.Arrow(),
			Nullable: col.Nullable,
		}
	}
	return arrow.NewSchema(fields, nil)
}

// NewScan binds a fresh scan session for this table through the catalog's
// connector. Each call obtains its own handle; sessions never share one.
func (t *Table) NewScan(ctx context.Context) (*scan.Session, error) {
	cat := t.schema.cat
	connector := cat.scanConnector()
	if connector == nil {
		return nil, ErrNotConnected
	}
	return scan.Bind(ctx, scan.Config{
		Connector: connector,
		Options:   cat.options(),
		Schema:    t.remoteSchema,
		Table:     t.remoteTable,
		Logger:    cat.logger,
	})
}
