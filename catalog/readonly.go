package catalog

import (
	"context"
	"fmt"
)

// The remote source is read-only. Every write-style operation below is a
// rejected operation: it fails deterministically, never reaches the remote
// endpoint, and leaves the cache untouched. The entry points exist so a
// host engine can route its DDL surface here and get a uniform failure.

func rejectWrite(op string) error {
	return fmt.Errorf("%w: %s", ErrReadOnly, op)
}

// CreateSchema is a rejected operation.
func (c *Catalog) CreateSchema(ctx context.Context, name string) error {
	return rejectWrite("CREATE SCHEMA")
}

// DropSchema is a rejected operation.
func (c *Catalog) DropSchema(ctx context.Context, name string) error {
	return rejectWrite("DROP SCHEMA")
}

// AlterSchema is a rejected operation.
func (c *Catalog) AlterSchema(ctx context.Context, name string) error {
	return rejectWrite("ALTER SCHEMA")
}

// CreateTable is a rejected operation.
func (s *Schema) CreateTable(ctx context.Context, name string) error {
	return rejectWrite("CREATE TABLE")
}

// CreateView is a rejected operation.
func (s *Schema) CreateView(ctx context.Context, name string) error {
	return rejectWrite("CREATE VIEW")
}

// CreateIndex is a rejected operation.
func (s *Schema) CreateIndex(ctx context.Context, table, name string) error {
	return rejectWrite("CREATE INDEX")
}

// CreateFunction is a rejected operation.
func (s *Schema) CreateFunction(ctx context.Context, name string) error {
	return rejectWrite("CREATE FUNCTION")
}

// CreateSequence is a rejected operation.
func (s *Schema) CreateSequence(ctx context.Context, name string) error {
	return rejectWrite("CREATE SEQUENCE")
}

// CreateType is a rejected operation.
func (s *Schema) CreateType(ctx context.Context, name string) error {
	return rejectWrite("CREATE TYPE")
}

// DropTable is a rejected operation.
func (s *Schema) DropTable(ctx context.Context, name string) error {
	return rejectWrite("DROP TABLE")
}

// AlterTable is a rejected operation.
func (s *Schema) AlterTable(ctx context.Context, name string) error {
	return rejectWrite("ALTER TABLE")
}
