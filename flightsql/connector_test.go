package flightsql

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hugr-lab/attach-go/driver"
	"github.com/hugr-lab/attach-go/internal/sqlutil"
)

// BindScan must reject unsafe identifiers before anything is dialed.
func TestBindScanRejectsBadIdentifiers(t *testing.T) {
	c := NewConnector(ConnectorConfig{})
	c.pool.dial = func(ctx context.Context, opts driver.Options) (*Client, error) {
		t.Fatal("dialed despite invalid identifier")
		return nil, nil
	}
	opts := driver.Options{URI: "grpc://h:1"}

	bad := []struct {
		schema, table string
	}{
		{"sales", ""},
		{"sales", "orders; DROP TABLE x"},
		{"sales", "orders--"},
		{"sch\nema", "orders"},
	}
	for _, tt := range bad {
		_, err := c.BindScan(context.Background(), opts, tt.schema, tt.table)
		if err == nil {
			t.Errorf("BindScan(%q, %q) succeeded, want error", tt.schema, tt.table)
			continue
		}
		if !errors.Is(err, sqlutil.ErrInvalidIdentifier) && !errors.Is(err, sqlutil.ErrEmptyIdentifier) {
			t.Errorf("BindScan(%q, %q) = %v, want identifier error", tt.schema, tt.table, err)
		}
	}
}

func TestDialRejectsBadURI(t *testing.T) {
	_, err := Dial(context.Background(), driver.Options{URI: "http://nope"})
	if !errors.Is(err, sqlutil.ErrInvalidURI) {
		t.Fatalf("Dial with http scheme = %v, want ErrInvalidURI", err)
	}
}

func TestConnectUsesPool(t *testing.T) {
	c := NewConnector(ConnectorConfig{})
	dials := 0
	c.pool.dial = func(ctx context.Context, opts driver.Options) (*Client, error) {
		dials++
		return &Client{}, nil
	}
	c.pool.healthy = func(*Client) bool { return true }
	opts := driver.Options{URI: "grpc://h:1"}

	conn1, err := c.Connect(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn1.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Connect(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	if dials != 1 {
		t.Errorf("dials = %d, want 1 (session reused)", dials)
	}
}

// countingMetadata flags any two metadata calls that overlap in time.
type countingMetadata struct {
	active  atomic.Int32
	overlap atomic.Bool
}

func (m *countingMetadata) enter() {
	if m.active.Add(1) > 1 {
		m.overlap.Store(true)
	}
	time.Sleep(time.Millisecond)
	m.active.Add(-1)
}

func (m *countingMetadata) Schemas(ctx context.Context, catalogFilter string) ([]string, error) {
	m.enter()
	return []string{"main"}, nil
}

func (m *countingMetadata) Tables(ctx context.Context, catalogFilter, schemaFilter string) ([]driver.TableInfo, error) {
	m.enter()
	return nil, nil
}

func (m *countingMetadata) Columns(ctx context.Context, catalogFilter, schemaName, tableName string) ([]driver.ColumnInfo, error) {
	m.enter()
	return nil, nil
}

// One Conn serves racing schema and table lookups, but the session
// underneath handles one call at a time.
func TestMetadataCallsSerialize(t *testing.T) {
	ctx := context.Background()
	meta := &countingMetadata{}
	c := &conn{client: meta}

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 3 {
			case 0:
				c.ListSchemas(ctx, "")
			case 1:
				c.ListTables(ctx, "", "sales")
			default:
				c.GetColumns(ctx, "", "sales", "orders")
			}
		}(i)
	}
	wg.Wait()

	if meta.overlap.Load() {
		t.Fatal("metadata calls overlapped on one session")
	}
}
