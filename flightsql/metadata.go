package flightsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/hugr-lab/attach-go/driver"
)

// Metadata discovery goes through ADBC GetObjects first. Not every Flight
// SQL server implements it, so each call falls back to the
// information_schema views on error.

// Schemas lists the schema names at the endpoint.
func (c *Client) Schemas(ctx context.Context, catalogFilter string) ([]string, error) {
	names, err := c.schemasViaObjects(ctx, catalogFilter)
	if err == nil {
		return names, nil
	}
	return c.schemasViaSQL(ctx)
}

func (c *Client) schemasViaObjects(ctx context.Context, catalogFilter string) ([]string, error) {
	if !c.Healthy() {
		return nil, ErrClosed
	}
	var catalog *string
	if catalogFilter != "" {
		catalog = &catalogFilter
	}
	reader, err := c.conn.GetObjects(ctx, adbc.ObjectDepthDBSchemas, catalog, nil, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("flightsql: get objects: %w", err)
	}
	defer reader.Release()

	var names []string
	for reader.Next() {
		rec := reader.RecordBatch()
		// Layout: catalog_name utf8, catalog_db_schemas list<struct>,
		// with db_schema_name as the struct's first field.
		if rec.NumCols() < 2 {
			continue
		}
		listArr, ok := rec.Column(1).(*array.List)
		if !ok {
			continue
		}
		structArr, ok := listArr.ListValues().(*array.Struct)
		if !ok || structArr.NumField() < 1 {
			continue
		}
		nameArr, ok := structArr.Field(0).(*array.String)
		if !ok {
			continue
		}
		for i := 0; i < int(rec.NumRows()); i++ {
			if listArr.IsNull(i) {
				continue
			}
			start, end := listArr.ValueOffsets(i)
			for j := int(start); j < int(end); j++ {
				if !nameArr.IsNull(j) {
					names = append(names, nameArr.Value(j))
				}
			}
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("flightsql: read objects: %w", err)
	}
	return names, nil
}

func (c *Client) schemasViaSQL(ctx context.Context) ([]string, error) {
	res, err := c.query(ctx, "SELECT schema_name FROM information_schema.schemata")
	if err != nil {
		return nil, err
	}
	defer res.release()
	return readStringColumn(res.reader, 0)
}

// Tables lists the tables of one schema.
func (c *Client) Tables(ctx context.Context, catalogFilter, schemaFilter string) ([]driver.TableInfo, error) {
	tables, err := c.tablesViaObjects(ctx, catalogFilter, schemaFilter)
	if err == nil {
		return tables, nil
	}
	return c.tablesViaSQL(ctx, schemaFilter)
}

func (c *Client) tablesViaObjects(ctx context.Context, catalogFilter, schemaFilter string) ([]driver.TableInfo, error) {
	if !c.Healthy() {
		return nil, ErrClosed
	}
	var catalog, schema *string
	if catalogFilter != "" {
		catalog = &catalogFilter
	}
	if schemaFilter != "" {
		schema = &schemaFilter
	}
	reader, err := c.conn.GetObjects(ctx, adbc.ObjectDepthTables, catalog, schema, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("flightsql: get objects: %w", err)
	}
	defer reader.Release()

	var tables []driver.TableInfo
	for reader.Next() {
		rec := reader.RecordBatch()
		if rec.NumCols() < 2 {
			continue
		}
		schemasList, ok := rec.Column(1).(*array.List)
		if !ok {
			continue
		}
		schemasStruct, ok := schemasList.ListValues().(*array.Struct)
		if !ok || schemasStruct.NumField() < 2 {
			continue
		}
		tablesList, ok := schemasStruct.Field(1).(*array.List)
		if !ok {
			continue
		}
		tablesStruct, ok := tablesList.ListValues().(*array.Struct)
		if !ok || tablesStruct.NumField() < 2 {
			continue
		}
		nameArr, ok := tablesStruct.Field(0).(*array.String)
		if !ok {
			continue
		}
		kindArr, _ := tablesStruct.Field(1).(*array.String)

		for i := 0; i < int(rec.NumRows()); i++ {
			if schemasList.IsNull(i) {
				continue
			}
			schemaStart, schemaEnd := schemasList.ValueOffsets(i)
			for j := int(schemaStart); j < int(schemaEnd); j++ {
				if tablesList.IsNull(j) {
					continue
				}
				tableStart, tableEnd := tablesList.ValueOffsets(j)
				for k := int(tableStart); k < int(tableEnd); k++ {
					if nameArr.IsNull(k) {
						continue
					}
					info := driver.TableInfo{Name: nameArr.Value(k)}
					if kindArr != nil && !kindArr.IsNull(k) {
						info.Kind = kindArr.Value(k)
					}
					tables = append(tables, info)
				}
			}
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("flightsql: read objects: %w", err)
	}
	return tables, nil
}

func (c *Client) tablesViaSQL(ctx context.Context, schemaFilter string) ([]driver.TableInfo, error) {
	sql := "SELECT table_name, table_type FROM information_schema.tables"
	if schemaFilter != "" {
		sql += " WHERE table_schema = " + quoteLiteral(schemaFilter)
	}
	res, err := c.query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer res.release()

	var tables []driver.TableInfo
	for res.reader.Next() {
		rec := res.reader.RecordBatch()
		if rec.NumCols() < 1 {
			continue
		}
		nameArr, ok := rec.Column(0).(*array.String)
		if !ok {
			continue
		}
		var kindArr *array.String
		if rec.NumCols() > 1 {
			kindArr, _ = rec.Column(1).(*array.String)
		}
		for i := 0; i < nameArr.Len(); i++ {
			if nameArr.IsNull(i) {
				continue
			}
			info := driver.TableInfo{Name: nameArr.Value(i)}
			if kindArr != nil && !kindArr.IsNull(i) {
				info.Kind = kindArr.Value(i)
			}
			tables = append(tables, info)
		}
	}
	if err := res.reader.Err(); err != nil {
		return nil, fmt.Errorf("flightsql: read tables: %w", err)
	}
	return tables, nil
}

// Columns describes one table's columns in ordinal order. An empty result
// with nil error means the table does not exist at the endpoint.
func (c *Client) Columns(ctx context.Context, catalogFilter, schemaName, tableName string) ([]driver.ColumnInfo, error) {
	cols, err := c.columnsViaObjects(ctx, catalogFilter, schemaName, tableName)
	if err == nil && len(cols) > 0 {
		return cols, nil
	}
	return c.columnsViaSQL(ctx, schemaName, tableName)
}

func (c *Client) columnsViaObjects(ctx context.Context, catalogFilter, schemaName, tableName string) ([]driver.ColumnInfo, error) {
	if !c.Healthy() {
		return nil, ErrClosed
	}
	var catalog *string
	if catalogFilter != "" {
		catalog = &catalogFilter
	}
	reader, err := c.conn.GetObjects(ctx, adbc.ObjectDepthColumns, catalog, &schemaName, nil, &tableName, nil)
	if err != nil {
		return nil, fmt.Errorf("flightsql: get objects: %w", err)
	}
	defer reader.Release()

	var columns []driver.ColumnInfo
	for reader.Next() {
		rec := reader.RecordBatch()
		if rec.NumCols() < 2 {
			continue
		}
		schemasList, ok := rec.Column(1).(*array.List)
		if !ok {
			continue
		}
		schemasStruct, ok := schemasList.ListValues().(*array.Struct)
		if !ok || schemasStruct.NumField() < 2 {
			continue
		}
		tablesList, ok := schemasStruct.Field(1).(*array.List)
		if !ok {
			continue
		}
		tablesStruct, ok := tablesList.ListValues().(*array.Struct)
		if !ok || tablesStruct.NumField() < 3 {
			continue
		}
		columnsList, ok := tablesStruct.Field(2).(*array.List)
		if !ok {
			continue
		}
		columnsStruct, ok := columnsList.ListValues().(*array.Struct)
		if !ok {
			continue
		}

		// Field positions vary by server; resolve by name.
		var nameArr, typeArr *array.String
		var ordinalArr *array.Int32
		var nullableArr *array.Int16
		structType := columnsStruct.DataType().(*arrow.StructType)
		for f := 0; f < columnsStruct.NumField(); f++ {
			switch structType.Field(f).Name {
			case "column_name":
				nameArr, _ = columnsStruct.Field(f).(*array.String)
			case "ordinal_position":
				ordinalArr, _ = columnsStruct.Field(f).(*array.Int32)
			case "xdbc_type_name":
				typeArr, _ = columnsStruct.Field(f).(*array.String)
			case "xdbc_nullable":
				nullableArr, _ = columnsStruct.Field(f).(*array.Int16)
			}
		}
		if nameArr == nil {
			continue
		}

		for row := 0; row < int(rec.NumRows()); row++ {
			if schemasList.IsNull(row) {
				continue
			}
			schemaStart, schemaEnd := schemasList.ValueOffsets(row)
			for s := int(schemaStart); s < int(schemaEnd); s++ {
				if tablesList.IsNull(s) {
					continue
				}
				tableStart, tableEnd := tablesList.ValueOffsets(s)
				for tb := int(tableStart); tb < int(tableEnd); tb++ {
					if columnsList.IsNull(tb) {
						continue
					}
					colStart, colEnd := columnsList.ValueOffsets(tb)
					for col := int(colStart); col < int(colEnd); col++ {
						if nameArr.IsNull(col) {
							continue
						}
						info := driver.ColumnInfo{Name: nameArr.Value(col)}
						if ordinalArr != nil && !ordinalArr.IsNull(col) {
							// GetObjects ordinals are one-based.
							info.Ordinal = int(ordinalArr.Value(col)) - 1
						}
						if typeArr != nil && !typeArr.IsNull(col) {
							info.TypeName = typeArr.Value(col)
						}
						// xdbc_nullable: 0 no, 1 yes, 2 unknown.
						if nullableArr != nil && !nullableArr.IsNull(col) {
							info.Nullable = nullableArr.Value(col) == 1
						}
						columns = append(columns, info)
					}
				}
			}
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("flightsql: read objects: %w", err)
	}
	return columns, nil
}

func (c *Client) columnsViaSQL(ctx context.Context, schemaName, tableName string) ([]driver.ColumnInfo, error) {
	sql := fmt.Sprintf(
		"SELECT column_name, data_type, is_nullable, ordinal_position FROM information_schema.columns WHERE table_schema = %s AND table_name = %s ORDER BY ordinal_position",
		quoteLiteral(schemaName), quoteLiteral(tableName),
	)
	res, err := c.query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer res.release()

	var columns []driver.ColumnInfo
	for res.reader.Next() {
		rec := res.reader.RecordBatch()
		if rec.NumCols() < 4 {
			continue
		}
		nameArr, ok := rec.Column(0).(*array.String)
		if !ok {
			continue
		}
		typeArr, _ := rec.Column(1).(*array.String)
		nullableArr, _ := rec.Column(2).(*array.String)

		// ordinal_position width depends on the server.
		ordinal := func(i int) int { return i }
		switch arr := rec.Column(3).(type) {
		case *array.Int32:
			ordinal = func(i int) int { return int(arr.Value(i)) - 1 }
		case *array.Int64:
			ordinal = func(i int) int { return int(arr.Value(i)) - 1 }
		}

		for i := 0; i < nameArr.Len(); i++ {
			if nameArr.IsNull(i) {
				continue
			}
			info := driver.ColumnInfo{
				Name:    nameArr.Value(i),
				Ordinal: ordinal(i),
			}
			if typeArr != nil && !typeArr.IsNull(i) {
				info.TypeName = typeArr.Value(i)
			}
			if nullableArr != nil && !nullableArr.IsNull(i) {
				info.Nullable = strings.EqualFold(nullableArr.Value(i), "YES")
			}
			columns = append(columns, info)
		}
	}
	if err := res.reader.Err(); err != nil {
		return nil, fmt.Errorf("flightsql: read columns: %w", err)
	}
	return columns, nil
}

func readStringColumn(reader array.RecordReader, col int) ([]string, error) {
	var out []string
	for reader.Next() {
		rec := reader.RecordBatch()
		if int(rec.NumCols()) <= col {
			continue
		}
		arr, ok := rec.Column(col).(*array.String)
		if !ok {
			continue
		}
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				out = append(out, arr.Value(i))
			}
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("flightsql: read result: %w", err)
	}
	return out, nil
}

// quoteLiteral quotes a SQL string literal, doubling embedded quotes.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
