package airport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hugr-lab/attach-go/driver"
	"github.com/hugr-lab/attach-go/types"
)

// ConnectorConfig tunes an Airport connector.
type ConnectorConfig struct {
	// Logger for connection diagnostics.
	// OPTIONAL: defaults to slog.Default().
	Logger *slog.Logger
}

// Connector implements the driver boundary over the Airport dialect.
// Goroutine-safe: sessions are dialed per Connect and per scan, never
// shared.
type Connector struct {
	logger *slog.Logger

	// dial is swappable for tests.
	dial func(ctx context.Context, opts driver.Options) (*Client, error)
}

// NewConnector creates an Airport connector.
func NewConnector(cfg ConnectorConfig) *Connector {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Connector{logger: logger, dial: Dial}
}

// Connect dials a session for metadata calls. The Conn owns the session
// and closes it.
func (c *Connector) Connect(ctx context.Context, opts driver.Options) (driver.Conn, error) {
	client, err := c.dial(ctx, opts)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("airport session opened", "uri", opts.URI)
	return &conn{client: client}, nil
}

// BindScan dials a dedicated session for one scan and fetches the table
// schema. The scan owns its session so a long row stream never blocks
// metadata traffic.
func (c *Connector) BindScan(ctx context.Context, opts driver.Options, schemaName, tableName string) (driver.Scan, error) {
	client, err := c.dial(ctx, opts)
	if err != nil {
		return nil, err
	}

	schema, err := client.TableSchema(ctx, schemaName, tableName)
	if err != nil {
		client.Close()
		return nil, err
	}
	if schema == nil {
		client.Close()
		return nil, fmt.Errorf("airport: table %s.%s not found", schemaName, tableName)
	}

	columns := make([]driver.ScanColumn, schema.NumFields())
	for i := 0; i < schema.NumFields(); i++ {
		field := schema.Field(i)
		columns[i] = driver.ScanColumn{
			Name:     field.Name,
			TypeName: types.ArrowTypeName(field.Type),
		}
	}

	c.logger.Debug("airport scan bound",
		"uri", opts.URI,
		"schema", schemaName,
		"table", tableName,
		"columns", len(columns),
	)
	return &scanStream{
		client:     client,
		ownsClient: true,
		schemaName: schemaName,
		tableName:  tableName,
		columns:    columns,
	}, nil
}

// conn adapts a session to the metadata interface. Airport endpoints have
// no catalog concept, so the catalog filter is ignored.
type conn struct {
	client *Client
}

func (c *conn) ListSchemas(ctx context.Context, catalogFilter string) ([]string, error) {
	return c.client.Schemas(ctx)
}

func (c *conn) ListTables(ctx context.Context, catalogFilter, schemaFilter string) ([]driver.TableInfo, error) {
	return c.client.Tables(ctx, schemaFilter)
}

func (c *conn) GetColumns(ctx context.Context, catalogFilter, schemaName, tableName string) ([]driver.ColumnInfo, error) {
	return c.client.Columns(ctx, schemaName, tableName)
}

func (c *conn) Close() error {
	return c.client.Close()
}
