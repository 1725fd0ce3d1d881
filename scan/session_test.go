package scan

import (
	"context"
	"errors"
	"testing"

	"github.com/hugr-lab/attach-go/driver"
)

// fakeScan is an in-memory driver.Scan that serves a fixed sequence of
// batch sizes and records every boundary call.
type fakeScan struct {
	columns []driver.ScanColumn
	batches []int64 // row counts served by successive Next calls

	initCalls  int
	initIDs    []int
	initErr    error
	nextCalls  int
	nextErr    error
	nextErrAt  int // 1-based Next call index that fails; 0 = never
	nextPanic  bool
	closeCalls int
	closeErr   error
}

func (f *fakeScan) Columns() []driver.ScanColumn {
	return f.columns
}

func (f *fakeScan) Init(ctx context.Context, columnIDs []int) error {
	f.initCalls++
	f.initIDs = columnIDs
	return f.initErr
}

func (f *fakeScan) Next(ctx context.Context, out *driver.RowBatch) (int64, error) {
	f.nextCalls++
	if f.nextPanic {
		panic("connector bug")
	}
	if f.nextErrAt != 0 && f.nextCalls == f.nextErrAt {
		return -1, f.nextErr
	}
	if f.nextCalls > len(f.batches) {
		return 0, nil
	}
	n := f.batches[f.nextCalls-1]
	out.SetLen(int(n))
	return n, nil
}

func (f *fakeScan) Close() error {
	f.closeCalls++
	return f.closeErr
}

// fakeConnector hands out fakeScan handles, a fresh one per BindScan.
type fakeConnector struct {
	bindCalls int
	bindErr   error
	make      func() *fakeScan
	handles   []*fakeScan
}

func (f *fakeConnector) Connect(ctx context.Context, opts driver.Options) (driver.Conn, error) {
	return nil, errors.New("not used in scan tests")
}

func (f *fakeConnector) BindScan(ctx context.Context, opts driver.Options, schemaName, tableName string) (driver.Scan, error) {
	f.bindCalls++
	if f.bindErr != nil {
		return nil, f.bindErr
	}
	h := f.make()
	f.handles = append(f.handles, h)
	return h, nil
}

func ordersConnector(batches ...int64) *fakeConnector {
	return &fakeConnector{
		make: func() *fakeScan {
			return &fakeScan{
				columns: []driver.ScanColumn{
					{Name: "id", TypeName: "BIGINT"},
					{Name: "customer", TypeName: "VARCHAR"},
					{Name: "total", TypeName: "DECIMAL(12,2)"},
				},
				batches: batches,
			}
		},
	}
}

func bindOrders(t *testing.T, conn *fakeConnector) *Session {
	t.Helper()
	s, err := Bind(context.Background(), Config{
		Connector: conn,
		Options:   driver.Options{URI: "grpc://remote:31337"},
		Schema:    "sales",
		Table:     "orders",
	})
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	return s
}

func TestBindRequiresConnector(t *testing.T) {
	_, err := Bind(context.Background(), Config{Options: driver.Options{URI: "grpc://x"}, Table: "t"})
	if !errors.Is(err, ErrNoConnector) {
		t.Fatalf("Bind without connector = %v, want ErrNoConnector", err)
	}
}

func TestBindError(t *testing.T) {
	conn := ordersConnector()
	conn.bindErr = errors.New("table vanished")

	_, err := Bind(context.Background(), Config{
		Connector: conn, Options: driver.Options{URI: "grpc://x"}, Schema: "sales", Table: "orders",
	})
	if err == nil {
		t.Fatal("Bind succeeded, want error")
	}
}

// TestSessionLifecycle walks the full happy path: bind orders in sales,
// project columns 0 and 2, pull 3 then 2 then 0 rows, release once.
func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	conn := ordersConnector(3, 2)
	s := bindOrders(t, conn)

	if s.State() != Bound {
		t.Fatalf("state after bind = %v, want Bound", s.State())
	}
	if len(s.Columns()) != 3 {
		t.Fatalf("columns = %d, want 3", len(s.Columns()))
	}

	if err := s.Init(ctx, []int{0, 2}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if s.State() != Initialized {
		t.Fatalf("state after init = %v, want Initialized", s.State())
	}

	handle := conn.handles[0]
	if got := handle.initIDs; len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("projected ids = %v, want [0 2]", got)
	}

	out := driver.NewRowBatchSize(2, 16)
	for _, want := range []int64{3, 2} {
		n, err := s.Next(ctx, out)
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if n != want {
			t.Fatalf("Next = %d rows, want %d", n, want)
		}
		if s.State() != Initialized {
			t.Fatalf("state mid-stream = %v, want Initialized", s.State())
		}
	}

	n, err := s.Next(ctx, out)
	if err != nil || n != 0 {
		t.Fatalf("Next at end = (%d, %v), want (0, nil)", n, err)
	}
	if s.State() != Finished {
		t.Fatalf("state at end = %v, want Finished", s.State())
	}

	if err := s.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if handle.closeCalls != 1 {
		t.Fatalf("handle closed %d times, want 1", handle.closeCalls)
	}
	if s.State() != Released {
		t.Fatalf("state after release = %v, want Released", s.State())
	}
}

// TestEndOfStreamIdempotent: after the first zero-row pull, further pulls
// report zero without re-invoking the connector.
func TestEndOfStreamIdempotent(t *testing.T) {
	ctx := context.Background()
	conn := ordersConnector(1)
	s := bindOrders(t, conn)
	defer s.Release()

	if err := s.Init(ctx, nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	out := driver.NewRowBatchSize(3, 16)
	for i := 0; i < 2; i++ {
		if _, err := s.Next(ctx, out); err != nil {
			t.Fatalf("Next failed: %v", err)
		}
	}

	handle := conn.handles[0]
	callsAtEOF := handle.nextCalls
	for i := 0; i < 3; i++ {
		n, err := s.Next(ctx, out)
		if err != nil || n != 0 {
			t.Fatalf("Next after EOF = (%d, %v), want (0, nil)", n, err)
		}
	}
	if handle.nextCalls != callsAtEOF {
		t.Fatalf("connector re-invoked after EOF: %d calls, want %d", handle.nextCalls, callsAtEOF)
	}
}

func TestInitTwiceIsNoop(t *testing.T) {
	ctx := context.Background()
	conn := ordersConnector()
	s := bindOrders(t, conn)
	defer s.Release()

	if err := s.Init(ctx, []int{1}); err != nil {
		t.Fatalf("first Init failed: %v", err)
	}
	if err := s.Init(ctx, []int{0}); err != nil {
		t.Fatalf("second Init = %v, want no-op nil", err)
	}
	if conn.handles[0].initCalls != 1 {
		t.Fatalf("connector Init called %d times, want 1", conn.handles[0].initCalls)
	}
}

func TestPullBeforeInit(t *testing.T) {
	conn := ordersConnector(1)
	s := bindOrders(t, conn)
	defer s.Release()

	_, err := s.Next(context.Background(), driver.NewRowBatchSize(3, 4))
	if !errors.Is(err, ErrBadState) {
		t.Fatalf("Next before Init = %v, want ErrBadState", err)
	}
}

// TestInitFailureStillReleases: a session that fails before Initialized
// must still release its Bound-state handle, exactly once.
func TestInitFailureStillReleases(t *testing.T) {
	conn := ordersConnector()
	conn.make = func() *fakeScan {
		return &fakeScan{
			columns: []driver.ScanColumn{{Name: "id", TypeName: "BIGINT"}},
			initErr: errors.New("projection rejected"),
		}
	}
	s := bindOrders(t, conn)

	if err := s.Init(context.Background(), []int{0}); err == nil {
		t.Fatal("Init succeeded, want error")
	}
	if s.State() != Failed {
		t.Fatalf("state after failed init = %v, want Failed", s.State())
	}

	if err := s.Release(); err != nil {
		t.Fatalf("Release after failed init: %v", err)
	}
	if conn.handles[0].closeCalls != 1 {
		t.Fatalf("handle closed %d times, want 1", conn.handles[0].closeCalls)
	}
}

func TestNextErrorIsScanFailed(t *testing.T) {
	ctx := context.Background()
	conn := ordersConnector(3, 3)
	conn.make = func() *fakeScan {
		return &fakeScan{
			columns:   []driver.ScanColumn{{Name: "id", TypeName: "BIGINT"}},
			batches:   []int64{3, 3},
			nextErrAt: 2,
			nextErr:   errors.New("stream reset"),
		}
	}
	s := bindOrders(t, conn)
	defer s.Release()

	if err := s.Init(ctx, nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	out := driver.NewRowBatchSize(1, 8)
	if _, err := s.Next(ctx, out); err != nil {
		t.Fatalf("first Next failed: %v", err)
	}
	_, err := s.Next(ctx, out)
	if !errors.Is(err, ErrScanFailed) {
		t.Fatalf("failing Next = %v, want ErrScanFailed", err)
	}
	if s.State() != Failed {
		t.Fatalf("state after pull error = %v, want Failed", s.State())
	}
}

// TestNegativeRowCount: a bare negative count with no error detail still
// escalates to the generic scan failure.
func TestNegativeRowCount(t *testing.T) {
	ctx := context.Background()
	conn := &fakeConnector{
		make: func() *fakeScan {
			return &fakeScan{
				columns:   []driver.ScanColumn{{Name: "id", TypeName: "BIGINT"}},
				nextErrAt: 1, // returns -1 with nil error
			}
		},
	}
	s := bindOrders(t, conn)
	defer s.Release()

	if err := s.Init(ctx, nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	_, err := s.Next(ctx, driver.NewRowBatchSize(1, 8))
	if !errors.Is(err, ErrScanFailed) {
		t.Fatalf("negative row count = %v, want ErrScanFailed", err)
	}
}

func TestReleaseExactlyOnce(t *testing.T) {
	conn := ordersConnector()
	s := bindOrders(t, conn)

	for i := 0; i < 3; i++ {
		if err := s.Release(); err != nil {
			t.Fatalf("Release #%d failed: %v", i+1, err)
		}
	}
	if conn.handles[0].closeCalls != 1 {
		t.Fatalf("handle closed %d times, want 1", conn.handles[0].closeCalls)
	}
}

// TestCloneRebinds: a clone obtains its own handle; releasing the original
// must not invalidate the clone.
func TestCloneRebinds(t *testing.T) {
	ctx := context.Background()
	conn := ordersConnector(2)
	s := bindOrders(t, conn)

	clone, err := s.Clone(ctx)
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	if conn.bindCalls != 2 {
		t.Fatalf("bind calls = %d, want 2 (clone must re-bind)", conn.bindCalls)
	}
	if clone.State() != Bound {
		t.Fatalf("clone state = %v, want Bound", clone.State())
	}

	if err := s.Release(); err != nil {
		t.Fatalf("Release of original failed: %v", err)
	}

	// Clone still works after the original's handle is gone.
	if err := clone.Init(ctx, nil); err != nil {
		t.Fatalf("clone Init after original release: %v", err)
	}
	n, err := clone.Next(ctx, driver.NewRowBatchSize(3, 8))
	if err != nil || n != 2 {
		t.Fatalf("clone Next = (%d, %v), want (2, nil)", n, err)
	}
	if err := clone.Release(); err != nil {
		t.Fatalf("clone Release failed: %v", err)
	}

	if conn.handles[0].closeCalls != 1 || conn.handles[1].closeCalls != 1 {
		t.Fatalf("close calls = (%d, %d), want (1, 1)",
			conn.handles[0].closeCalls, conn.handles[1].closeCalls)
	}
}

// A panicking connector surfaces as ErrScanFailed, not a crash.
func TestPanickingConnectorIsScanFailed(t *testing.T) {
	ctx := context.Background()
	conn := ordersConnector(3)
	s := bindOrders(t, conn)
	defer s.Release()
	conn.handles[0].nextPanic = true

	if err := s.Init(ctx, nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	_, err := s.Next(ctx, driver.NewRowBatchSize(3, 8))
	if !errors.Is(err, ErrScanFailed) {
		t.Fatalf("Next with panicking connector = %v, want ErrScanFailed", err)
	}
	if s.State() != Failed {
		t.Fatalf("state = %s, want failed", s.State())
	}
}
