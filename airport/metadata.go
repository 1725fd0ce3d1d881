package airport

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/attach-go/driver"
	"github.com/hugr-lab/attach-go/types"
)

// decodeCatalogRecord reads GetTables-layout rows. Column order is fixed:
// catalog_name, db_schema_name, table_name, table_type.
func decodeCatalogRecord(rec arrow.RecordBatch) []catalogEntry {
	if rec.NumCols() < 4 {
		return nil
	}
	schemaArr, ok := rec.Column(1).(*array.String)
	if !ok {
		return nil
	}
	tableArr, ok := rec.Column(2).(*array.String)
	if !ok {
		return nil
	}
	kindArr, _ := rec.Column(3).(*array.String)

	entries := make([]catalogEntry, 0, rec.NumRows())
	for i := 0; i < int(rec.NumRows()); i++ {
		if schemaArr.IsNull(i) || tableArr.IsNull(i) {
			continue
		}
		e := catalogEntry{
			Schema: schemaArr.Value(i),
			Table:  tableArr.Value(i),
		}
		if kindArr != nil && !kindArr.IsNull(i) {
			e.Kind = kindArr.Value(i)
		}
		entries = append(entries, e)
	}
	return entries
}

// Schemas lists the distinct schema names in the catalog listing.
func (c *Client) Schemas(ctx context.Context) ([]string, error) {
	entries, err := c.listCatalog(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(entries))
	var names []string
	for _, e := range entries {
		if _, ok := seen[e.Schema]; ok {
			continue
		}
		seen[e.Schema] = struct{}{}
		names = append(names, e.Schema)
	}
	return names, nil
}

// Tables lists the tables in one schema; an empty filter lists all.
func (c *Client) Tables(ctx context.Context, schemaFilter string) ([]driver.TableInfo, error) {
	entries, err := c.listCatalog(ctx)
	if err != nil {
		return nil, err
	}
	var tables []driver.TableInfo
	for _, e := range entries {
		if schemaFilter != "" && e.Schema != schemaFilter {
			continue
		}
		tables = append(tables, driver.TableInfo{Name: e.Table, Kind: e.Kind})
	}
	return tables, nil
}

// TableSchema fetches a table's Arrow schema through GetFlightInfo with a
// PATH [schema, table] descriptor. A NotFound status maps to (nil, nil):
// absence is a negative lookup, not a failure.
func (c *Client) TableSchema(ctx context.Context, schemaName, tableName string) (*arrow.Schema, error) {
	desc := &flight.FlightDescriptor{
		Type: flight.DescriptorPATH,
		Path: []string{schemaName, tableName},
	}
	info, err := c.flight.GetFlightInfo(c.withAuth(ctx), desc)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("airport: get flight info for %s.%s: %w", schemaName, tableName, err)
	}

	schema, err := flight.DeserializeSchema(info.Schema, c.alloc)
	if err != nil {
		return nil, fmt.Errorf("airport: deserialize schema of %s.%s: %w", schemaName, tableName, err)
	}
	return schema, nil
}

// Columns describes a table's columns from its Arrow schema. Remote type
// names are recovered from the Arrow types, so the shared type mapper
// round-trips them on the consumer side.
func (c *Client) Columns(ctx context.Context, schemaName, tableName string) ([]driver.ColumnInfo, error) {
	schema, err := c.TableSchema(ctx, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return []driver.ColumnInfo{}, nil
	}
	columns := make([]driver.ColumnInfo, schema.NumFields())
	for i := 0; i < schema.NumFields(); i++ {
		field := schema.Field(i)
		columns[i] = driver.ColumnInfo{
			Name:     field.Name,
			TypeName: types.ArrowTypeName(field.Type),
			Ordinal:  i,
			Nullable: field.Nullable,
		}
	}
	return columns, nil
}

// catalogVersionParams is the msgpack body of the catalog_version action.
type catalogVersionParams struct {
	CatalogName string `msgpack:"catalog_name"`
}

// CatalogVersion is the server's catalog generation counter. IsFixed
// means the catalog never changes, so clients may cache indefinitely.
type CatalogVersion struct {
	Version uint64 `msgpack:"catalog_version"`
	IsFixed bool   `msgpack:"is_fixed"`
}

// GetCatalogVersion asks the server for its current catalog version via
// the catalog_version DoAction.
func (c *Client) GetCatalogVersion(ctx context.Context, catalogName string) (CatalogVersion, error) {
	body, err := msgpack.Marshal(catalogVersionParams{CatalogName: catalogName})
	if err != nil {
		return CatalogVersion{}, fmt.Errorf("airport: encode catalog_version params: %w", err)
	}

	stream, err := c.flight.DoAction(c.withAuth(ctx), &flight.Action{
		Type: "catalog_version",
		Body: body,
	})
	if err != nil {
		return CatalogVersion{}, fmt.Errorf("airport: catalog_version action: %w", err)
	}
	result, err := stream.Recv()
	if err != nil {
		return CatalogVersion{}, fmt.Errorf("airport: receive catalog_version result: %w", err)
	}

	var version CatalogVersion
	if err := msgpack.Unmarshal(result.Body, &version); err != nil {
		return CatalogVersion{}, fmt.Errorf("airport: decode catalog_version result: %w", err)
	}
	return version, nil
}
