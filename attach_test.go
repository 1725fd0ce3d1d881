package attach

import (
	"context"
	"errors"
	"testing"

	"github.com/hugr-lab/attach-go/catalog"
	"github.com/hugr-lab/attach-go/driver"
)

// stubConn is a minimal metadata session for attach-level tests.
type stubConn struct {
	closed bool
}

func (s *stubConn) ListSchemas(ctx context.Context, catalogFilter string) ([]string, error) {
	return []string{"main"}, nil
}

func (s *stubConn) ListTables(ctx context.Context, catalogFilter, schemaFilter string) ([]driver.TableInfo, error) {
	return nil, nil
}

func (s *stubConn) GetColumns(ctx context.Context, catalogFilter, schemaName, tableName string) ([]driver.ColumnInfo, error) {
	return []driver.ColumnInfo{{Name: "id", TypeName: "BIGINT"}}, nil
}

func (s *stubConn) Close() error {
	s.closed = true
	return nil
}

type stubConnector struct {
	conn       *stubConn
	connectErr error
}

func (s *stubConnector) Connect(ctx context.Context, opts driver.Options) (driver.Conn, error) {
	if s.connectErr != nil {
		return nil, s.connectErr
	}
	return s.conn, nil
}

func (s *stubConnector) BindScan(ctx context.Context, opts driver.Options, schemaName, tableName string) (driver.Scan, error) {
	return nil, errors.New("not used")
}

func TestAttach(t *testing.T) {
	ctx := context.Background()
	connector := &stubConnector{conn: &stubConn{}}

	cat, err := Attach(ctx, driver.Options{URI: "grpc://remote:31337"}, Config{
		Connector: connector,
	})
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if !cat.Connected() {
		t.Fatal("attached catalog reports not connected")
	}
	if cat.URI() != "grpc://remote:31337" {
		t.Errorf("URI = %s", cat.URI())
	}

	table, err := cat.RequireSchema(ctx, "main")
	if err != nil {
		t.Fatalf("RequireSchema failed: %v", err)
	}
	if _, err := table.RequireTable(ctx, "events"); err != nil {
		t.Fatalf("RequireTable failed: %v", err)
	}
}

func TestAttachInvalidURI(t *testing.T) {
	_, err := Attach(context.Background(), driver.Options{URI: "http://nope"}, Config{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Attach with bad URI = %v, want ErrInvalidConfig", err)
	}
}

// A connect failure is an attach failure, not a deferred error.
func TestAttachConnectFailureIsFatal(t *testing.T) {
	connector := &stubConnector{connectErr: errors.New("endpoint unreachable")}
	_, err := Attach(context.Background(), driver.Options{URI: "grpc://remote:31337"}, Config{
		Connector: connector,
	})
	if err == nil {
		t.Fatal("Attach with failing connector succeeded")
	}
}

func TestAttachDegraded(t *testing.T) {
	ctx := context.Background()
	cat, err := Attach(ctx, driver.Options{URI: "grpc://remote:31337"}, Config{})
	if err != nil {
		t.Fatalf("degraded Attach failed: %v", err)
	}
	if cat.Connected() {
		t.Fatal("degraded catalog reports connected")
	}
	if _, err := cat.RequireSchema(ctx, "main"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("degraded RequireSchema = %v, want ErrNotFound", err)
	}
}

func TestDetach(t *testing.T) {
	ctx := context.Background()
	conn := &stubConn{}
	cat, err := Attach(ctx, driver.Options{URI: "grpc://remote:31337"}, Config{
		Connector: &stubConnector{conn: conn},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := cat.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !conn.closed {
		t.Fatal("session not closed on detach")
	}
	if cat.Connected() {
		t.Fatal("catalog still connected after detach")
	}
	// Idempotent.
	if err := cat.Close(); err != nil {
		t.Fatalf("second Close = %v", err)
	}
}
