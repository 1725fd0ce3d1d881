package flightsql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hugr-lab/attach-go/driver"
	"github.com/hugr-lab/attach-go/internal/sqlutil"
	"github.com/hugr-lab/attach-go/types"
)

// ConnectorConfig tunes a Flight SQL connector.
type ConnectorConfig struct {
	// Logger for connection diagnostics.
	// OPTIONAL: defaults to slog.Default().
	Logger *slog.Logger

	// MaxIdle is how long a pooled session may sit unused.
	// OPTIONAL: defaults to 5 minutes.
	MaxIdle time.Duration
}

// Connector implements the driver boundary over Arrow Flight SQL.
// Goroutine-safe: the pool serializes session checkout and every leased
// session serves one caller at a time.
type Connector struct {
	pool   *Pool
	logger *slog.Logger
}

// NewConnector creates a Flight SQL connector with its own session pool.
func NewConnector(cfg ConnectorConfig) *Connector {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pool := NewPool()
	if cfg.MaxIdle > 0 {
		pool.maxIdle = cfg.MaxIdle
	}
	return &Connector{pool: pool, logger: logger}
}

// Connect leases a session for metadata calls. The returned Conn is valid
// until Close, which returns the session to the pool.
func (c *Connector) Connect(ctx context.Context, opts driver.Options) (driver.Conn, error) {
	l, err := c.pool.Get(ctx, opts)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("flight sql session leased", "uri", opts.URI, "pooled", l.pooled)
	return &conn{client: l.client, lease: l, pool: c.pool}, nil
}

// BindScan opens a scan of one table. The table's column list comes from
// a zero-row probe query, so bind reports the exact result shape the scan
// will stream, including computed and aliased columns.
func (c *Connector) BindScan(ctx context.Context, opts driver.Options, schemaName, tableName string) (driver.Scan, error) {
	if err := sqlutil.ValidateIdentifier(tableName); err != nil {
		return nil, fmt.Errorf("flightsql: table name: %w", err)
	}
	if schemaName != "" {
		if err := sqlutil.ValidateIdentifier(schemaName); err != nil {
			return nil, fmt.Errorf("flightsql: schema name: %w", err)
		}
	}

	l, err := c.pool.Get(ctx, opts)
	if err != nil {
		return nil, err
	}

	probe, err := l.client.query(ctx, sqlutil.BuildSchemaQuery(schemaName, tableName))
	if err != nil {
		c.pool.Put(l)
		return nil, fmt.Errorf("flightsql: probe %s.%s: %w", schemaName, tableName, err)
	}
	schema := probe.reader.Schema()
	columns := make([]driver.ScanColumn, schema.NumFields())
	for i := 0; i < schema.NumFields(); i++ {
		field := schema.Field(i)
		columns[i] = driver.ScanColumn{
			Name:     field.Name,
			TypeName: types.ArrowTypeName(field.Type),
		}
	}
	probe.release()

	c.logger.Debug("flight sql scan bound",
		"uri", opts.URI,
		"schema", schemaName,
		"table", tableName,
		"columns", len(columns),
	)
	return &scanStream{
		pool:       c.pool,
		lease:      l,
		schemaName: schemaName,
		tableName:  tableName,
		columns:    columns,
	}, nil
}

// Close discards the connector's pooled sessions.
func (c *Connector) Close() {
	c.pool.Close()
}

// metadataClient is the slice of Client the conn adapter needs.
type metadataClient interface {
	Schemas(ctx context.Context, catalogFilter string) ([]string, error)
	Tables(ctx context.Context, catalogFilter, schemaFilter string) ([]driver.TableInfo, error)
	Columns(ctx context.Context, catalogFilter, schemaName, tableName string) ([]driver.ColumnInfo, error)
}

// conn adapts a leased session to the metadata interface. Callers race
// metadata lookups on one Conn, but the ADBC connection underneath does
// not allow concurrent use, so every call serializes on mu.
type conn struct {
	mu     sync.Mutex
	client metadataClient
	lease  *lease
	pool   *Pool
}

func (c *conn) ListSchemas(ctx context.Context, catalogFilter string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.Schemas(ctx, catalogFilter)
}

func (c *conn) ListTables(ctx context.Context, catalogFilter, schemaFilter string) ([]driver.TableInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.Tables(ctx, catalogFilter, schemaFilter)
}

func (c *conn) GetColumns(ctx context.Context, catalogFilter, schemaName, tableName string) ([]driver.ColumnInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.Columns(ctx, catalogFilter, schemaName, tableName)
}

func (c *conn) Close() error {
	c.pool.Put(c.lease)
	return nil
}
