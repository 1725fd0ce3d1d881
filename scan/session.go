// Package scan implements the table-scan session: the state machine that
// drives one remote table read through bind, initialize, pull and release.
//
// A Session serves exactly one consumer. The engine's execution side calls
// Init once, then Next serially until it returns zero rows, then Release.
// Release is safe on every exit path - including a bind that was never
// initialized and a pull that failed mid-stream - and runs the underlying
// handle release exactly once.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hugr-lab/attach-go/driver"
	"github.com/hugr-lab/attach-go/internal/recovery"
)

// Sentinel errors for scan sessions.
var (
	// ErrNoConnector is returned by Bind when no connector is configured.
	ErrNoConnector = errors.New("scan connector not configured")

	// ErrScanFailed is the stable failure the session reports when the
	// connector's pull path fails. Connector detail, when available, is
	// attached to it.
	ErrScanFailed = errors.New("scan failed")

	// ErrBadState is returned when a call arrives out of order, e.g. a
	// pull before initialize.
	ErrBadState = errors.New("invalid scan session state")
)

// State is the lifecycle stage of a scan session.
type State uint8

const (
	// Unbound is never observable on a constructed Session; Bind returns
	// sessions already in Bound.
	Unbound State = iota

	// Bound holds a live scan handle and the table's column list.
	Bound

	// Initialized has fixed its projection and may pull rows.
	Initialized

	// Finished has seen the zero-row end-of-stream signal.
	Finished

	// Failed saw an initialize or pull error; only Release remains legal.
	Failed

	// Released has freed its handle.
	Released
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Bound:
		return "bound"
	case Initialized:
		return "initialized"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	case Released:
		return "released"
	default:
		return "unknown"
	}
}

// Config identifies the table a session binds to.
type Config struct {
	// Connector performs the remote scan.
	// REQUIRED.
	Connector driver.Connector

	// Options carries the endpoint URI and credentials.
	// REQUIRED: at least Options.URI must be set.
	Options driver.Options

	// Schema is the remote schema name.
	// OPTIONAL: empty for endpoints without schema namespaces.
	Schema string

	// Table is the remote table name.
	// REQUIRED.
	Table string

	// Logger for scan diagnostics.
	// OPTIONAL: defaults to slog.Default().
	Logger *slog.Logger
}

// Session is one scan of one remote table. Not goroutine-safe: calls must
// be issued serially by a single consumer. A session declares itself a
// single unit of work - one logical table scan is never split across
// concurrent readers.
type Session struct {
	cfg    Config
	logger *slog.Logger

	handle  driver.Scan
	columns []driver.ScanColumn
	state   State

	releaseOnce sync.Once
	releaseErr  error
}

// Bind opens a scan of cfg.Table and returns a session in the Bound state,
// holding a fresh handle and the table's (name, remote type name) column
// list. The caller owns the session and must call Release exactly once on
// every exit path.
func Bind(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Connector == nil {
		return nil, ErrNoConnector
	}
	if cfg.Options.URI == "" || cfg.Table == "" {
		return nil, fmt.Errorf("%w: uri and table are required", ErrBadState)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handle, err := recovery.ToValue(logger, "bind scan", func() (driver.Scan, error) {
		return cfg.Connector.BindScan(ctx, cfg.Options, cfg.Schema, cfg.Table)
	})
	if err != nil {
		return nil, fmt.Errorf("bind scan of %s.%s: %w", cfg.Schema, cfg.Table, err)
	}

	s := &Session{
		cfg:     cfg,
		logger:  logger,
		handle:  handle,
		columns: handle.Columns(),
		state:   Bound,
	}
	logger.Debug("scan bound",
		"schema", cfg.Schema,
		"table", cfg.Table,
		"columns", len(s.columns),
	)
	return s, nil
}

// State returns the session's current lifecycle stage.
func (s *Session) State() State {
	return s.state
}

// Columns returns the bound table's columns in ordinal order.
func (s *Session) Columns() []driver.ScanColumn {
	return s.columns
}

// Init fixes the projected column set and starts the remote read.
// columnIDs holds zero-based ordinals into Columns; nil means all columns.
// Calling Init on an already-initialized session is a no-op; any other
// out-of-order call is an error.
func (s *Session) Init(ctx context.Context, columnIDs []int) error {
	switch s.state {
	case Initialized:
		return nil
	case Bound:
	default:
		return fmt.Errorf("%w: init in state %s", ErrBadState, s.state)
	}

	// Copy: the engine may reuse its ordinal buffer after the call.
	ids := make([]int, len(columnIDs))
	copy(ids, columnIDs)

	err := recovery.ToError(s.logger, "initialize scan", func() error {
		return s.handle.Init(ctx, ids)
	})
	if err != nil {
		s.state = Failed
		return fmt.Errorf("initialize scan of %s.%s: %w", s.cfg.Schema, s.cfg.Table, err)
	}
	s.state = Initialized
	return nil
}

// Next fills out with the next rows and returns the row count. Zero is the
// authoritative end-of-stream signal: once seen, every further Next
// returns zero without re-invoking the connector. A connector failure
// moves the session to Failed and is reported as ErrScanFailed.
func (s *Session) Next(ctx context.Context, out *driver.RowBatch) (int64, error) {
	switch s.state {
	case Finished:
		out.SetLen(0)
		return 0, nil
	case Initialized:
	default:
		return 0, fmt.Errorf("%w: pull in state %s", ErrBadState, s.state)
	}

	n, err := recovery.ToValue(s.logger, "pull rows", func() (int64, error) {
		return s.handle.Next(ctx, out)
	})
	if err != nil || n < 0 {
		s.state = Failed
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrScanFailed, err)
		}
		return 0, ErrScanFailed
	}

	out.SetLen(int(n))
	if n == 0 {
		s.state = Finished
	}
	return n, nil
}

// Release frees the scan handle. Idempotent: only the first call reaches
// the connector, later calls return the first call's result. Legal in
// every post-bind state, including Failed.
func (s *Session) Release() error {
	s.releaseOnce.Do(func() {
		s.releaseErr = recovery.ToError(s.logger, "release scan", func() error {
			return s.handle.Close()
		})
		s.state = Released
		s.logger.Debug("scan released",
			"schema", s.cfg.Schema,
			"table", s.cfg.Table,
		)
	})
	return s.releaseErr
}

// Clone binds a fresh session for the same table. Handles are never shared
// between two logical sessions - releasing one must not invalidate the
// other - so cloning always re-binds from scratch. The clone starts in
// Bound regardless of the receiver's state.
func (s *Session) Clone(ctx context.Context) (*Session, error) {
	return Bind(ctx, s.cfg)
}
