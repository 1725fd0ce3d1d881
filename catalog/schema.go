package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hugr-lab/attach-go/driver"
	"github.com/hugr-lab/attach-go/types"
)

// Schema is one schema-level cache entry. Table lookup is case-insensitive;
// the table map is append-only and guarded by its own lock.
type Schema struct {
	name string
	cat  *Catalog

	mu     sync.Mutex
	tables map[string]*tableSlot
}

// tableSlot tracks one table key from first lookup onward. The slot is
// inserted under the schema lock before the describe call goes out, so
// concurrent lookups of the same missing key find the slot and wait
// instead of issuing a second describe. ready is closed when construction
// settles; table/err are immutable afterwards.
type tableSlot struct {
	ready chan struct{}
	table *Table
	err   error
}

func newSchema(cat *Catalog, name string) *Schema {
	return &Schema{
		name:   name,
		cat:    cat,
		tables: make(map[string]*tableSlot),
	}
}

// Name returns the schema name as received from the engine.
func (s *Schema) Name() string {
	return s.name
}

// Table resolves a table entry by name, describing it through the
// connector on first use.
//
// The describe call runs outside the schema lock, but at most one
// construction is ever in flight per key: the first looker-up inserts a
// pending slot under the lock and later arrivals wait on it. A failed or
// absent construction removes the slot again, so failures are not
// negatively cached and a later lookup retries the describe.
//
// Lookup is case-insensitive. Returns (nil, nil) when the table does not
// exist; use RequireTable for the loud policy.
func (s *Schema) Table(ctx context.Context, name string) (*Table, error) {
	key := strings.ToLower(name)

	s.mu.Lock()
	if slot, ok := s.tables[key]; ok {
		s.mu.Unlock()
		return slot.wait(ctx)
	}

	conn := s.cat.session()
	if conn == nil {
		s.mu.Unlock()
		return nil, nil
	}

	slot := &tableSlot{ready: make(chan struct{})}
	s.tables[key] = slot
	s.mu.Unlock()

	table, err := s.describe(ctx, conn, name)
	slot.table = table
	slot.err = err
	if err != nil || table == nil {
		// Leave the cache unchanged on failure or absence: the next
		// lookup issues a fresh describe.
		s.mu.Lock()
		delete(s.tables, key)
		s.mu.Unlock()
	}
	close(slot.ready)

	return table, err
}

// RequireTable is Table with the fail-loudly not-found policy.
func (s *Schema) RequireTable(ctx context.Context, name string) (*Table, error) {
	t, err := s.Table(ctx, name)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("table %s.%s: %w", s.name, name, ErrNotFound)
	}
	return t, nil
}

// wait blocks until the slot's construction settles or ctx is done.
func (slot *tableSlot) wait(ctx context.Context) (*Table, error) {
	select {
	case <-slot.ready:
		return slot.table, slot.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// describe materializes a table entry from the connector's column list.
func (s *Schema) describe(ctx context.Context, conn driver.Conn, name string) (*Table, error) {
	columns, err := conn.GetColumns(ctx, "", s.name, name)
	if err != nil {
		return nil, fmt.Errorf("describe %s.%s: %w", s.name, name, err)
	}
	if len(columns) == 0 {
		// No columns means the table does not exist at the endpoint.
		return nil, nil
	}

	table := newTable(s, name, columns)
	s.cat.logger.Debug("table entry created",
		"schema", s.name,
		"table", name,
		"columns", len(columns),
	)
	return table, nil
}

// ScanTables lists the tables of this schema at the remote endpoint.
// Like Catalog.ScanSchemas, the listing is not folded into the cache.
func (s *Schema) ScanTables(ctx context.Context) ([]driver.TableInfo, error) {
	conn := s.cat.session()
	if conn == nil {
		return nil, nil
	}

	tables, err := conn.ListTables(ctx, "", s.name)
	if err != nil {
		return nil, fmt.Errorf("list tables in %s: %w", s.name, err)
	}
	return tables, nil
}

// columnFromInfo maps one described column through the type mapper.
func columnFromInfo(info driver.ColumnInfo) Column {
	return Column{
		Name:     info.Name,
		Type:     types.FromRemoteName(info.TypeName),
		Ordinal:  info.Ordinal,
		Nullable: info.Nullable,
	}
}
