// Package catalog implements the lazily-populated metadata cache for one
// attached remote endpoint.
//
// The cache has three levels - Catalog, Schema, Table - each keyed by name
// and each guarded by its own lock. Entries are constructed at most once,
// by querying the connector through the driver boundary, and are never
// evicted or refreshed: remote schema changes are not observed until the
// process restarts. Schema entries are cheap placeholders created without
// a remote round trip; table entries are materialized by a describe call
// and carry the full column list mapped to native types.
//
// The remote source is read-only by design. Every create/drop/alter entry
// point exists and deterministically fails with ErrReadOnly, without
// touching the remote endpoint or the cache.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hugr-lab/attach-go/driver"
)

// Sentinel errors for metadata operations.
var (
	// ErrNotConnected is returned by loud lookups when the catalog has no
	// remote connection (degraded attach).
	ErrNotConnected = errors.New("no remote connection")

	// ErrReadOnly is returned by every write-style catalog operation.
	ErrReadOnly = errors.New("unsupported operation: remote source is read-only")

	// ErrNotFound is returned by the loud lookup variants when an entry
	// does not exist at the remote endpoint.
	ErrNotFound = errors.New("not found")
)

// Config assembles a Catalog. The boundary is passed explicitly here, once,
// at construction; there is no ambient registration.
type Config struct {
	// Options identifies the remote endpoint and its credentials.
	// REQUIRED: Options.URI must be non-empty.
	Options driver.Options

	// Connector implements the remote protocol.
	// OPTIONAL: nil attaches in degraded, metadata-empty mode in which
	// every lookup reports not-found and scans cannot be bound.
	Connector driver.Connector

	// Conn is the established session metadata calls go through.
	// OPTIONAL: nil together with Connector == nil means degraded mode.
	Conn driver.Conn

	// Logger for discovery diagnostics.
	// OPTIONAL: defaults to slog.Default().
	Logger *slog.Logger
}

// Catalog is the top-level cache for one attached endpoint. All methods
// are goroutine-safe. The schema map is append-only for the catalog's
// lifetime.
type Catalog struct {
	opts      driver.Options
	connector driver.Connector
	conn      driver.Conn
	logger    *slog.Logger

	mu      sync.Mutex
	schemas map[string]*Schema
}

// New creates a catalog for one attached endpoint.
func New(cfg Config) *Catalog {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		opts:      cfg.Options,
		connector: cfg.Connector,
		conn:      cfg.Conn,
		logger:    logger,
		schemas:   make(map[string]*Schema),
	}
}

// URI returns the attached endpoint URI.
func (c *Catalog) URI() string {
	return c.opts.URI
}

// Connected reports whether the catalog holds a live remote session.
// Once false, metadata lookups report not-found instead of failing hard.
func (c *Catalog) Connected() bool {
	return c.session() != nil
}

// session returns the live metadata session, nil when detached.
func (c *Catalog) session() driver.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// scanConnector returns the connector scans bind through, nil when
// detached.
func (c *Catalog) scanConnector() driver.Connector {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connector
}

// Schema resolves a schema entry by name, constructing it on first use.
//
// Schema names are case-sensitive as received. No remote call is made:
// remote endpoints do not require schemas to be pre-registered, so the
// entry is a placeholder whose tables are discovered on demand. The whole
// check-then-insert runs under the catalog lock, so exactly one entry ever
// exists per name.
//
// Returns (nil, nil) when the catalog has no connection; use
// RequireSchema for the loud policy.
func (c *Catalog) Schema(ctx context.Context, name string) (*Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.schemas[name]; ok {
		return s, nil
	}

	if c.conn == nil {
		return nil, nil
	}

	s := newSchema(c, name)
	c.schemas[name] = s
	c.logger.Debug("schema entry created", "schema", name, "uri", c.opts.URI)
	return s, nil
}

// RequireSchema is Schema with the fail-loudly not-found policy.
func (c *Catalog) RequireSchema(ctx context.Context, name string) (*Schema, error) {
	s, err := c.Schema(ctx, name)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("schema %q: %w (%v)", name, ErrNotFound, ErrNotConnected)
	}
	return s, nil
}

// ScanSchemas lists the schema names visible at the remote endpoint.
//
// The result is returned to the caller and deliberately not folded into
// the cache: entries are still materialized individually on first lookup.
// Returns an empty list without error when the catalog is not connected.
func (c *Catalog) ScanSchemas(ctx context.Context) ([]string, error) {
	conn := c.session()
	if conn == nil {
		return nil, nil
	}

	names, err := conn.ListSchemas(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list schemas from %s: %w", c.opts.URI, err)
	}
	return names, nil
}

// options exposes the connection options to scan binding.
func (c *Catalog) options() driver.Options {
	return c.opts
}

// Close releases the remote session. The catalog degrades to the
// not-connected state: cached entries stay readable, new lookups report
// not-found, and scans can no longer be bound. Safe to call once only.
func (c *Catalog) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.connector = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	if err := conn.Close(); err != nil {
		return fmt.Errorf("close session to %s: %w", c.opts.URI, err)
	}
	c.logger.Debug("catalog detached", "uri", c.opts.URI)
	return nil
}
