// Package flightsql is the Arrow Flight SQL connector. It speaks to the
// remote endpoint through ADBC and implements the driver boundary: session
// metadata calls for the catalog cache and streaming scans for the scan
// sessions. Connections are pooled per (URI, credentials) key.
package flightsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apache/arrow-adbc/go/adbc"
	adbcflightsql "github.com/apache/arrow-adbc/go/adbc/driver/flightsql"
	"github.com/apache/arrow-go/v18/arrow/array"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/hugr-lab/attach-go/driver"
	"github.com/hugr-lab/attach-go/internal/sqlutil"
)

// ErrClosed is returned on use of a closed client.
var ErrClosed = errors.New("flightsql: client closed")

// maxGRPCMessageSize raises the default 16MB gRPC limit; wide result
// batches from analytical servers routinely exceed it.
const maxGRPCMessageSize = 256 * 1024 * 1024

// Client is one ADBC session to a Flight SQL endpoint.
type Client struct {
	db   adbc.Database
	conn adbc.Connection
}

// Dial establishes an ADBC Flight SQL session.
func Dial(ctx context.Context, opts driver.Options) (*Client, error) {
	if err := sqlutil.ValidateURI(opts.URI); err != nil {
		return nil, err
	}

	drv := adbcflightsql.NewDriver(nil)

	dbOpts := map[string]string{
		adbc.OptionKeyURI: opts.URI,
	}
	if opts.Token != "" {
		dbOpts[adbcflightsql.OptionAuthorizationHeader] = "Bearer " + opts.Token
	} else if opts.Username != "" {
		dbOpts[adbc.OptionKeyUsername] = opts.Username
		dbOpts[adbc.OptionKeyPassword] = opts.Password
	}
	if opts.SkipVerify {
		dbOpts[adbcflightsql.OptionSSLSkipVerify] = adbc.OptionValueEnabled
	}

	callOpts := grpc.WithDefaultCallOptions(
		grpc.MaxCallRecvMsgSize(maxGRPCMessageSize),
		grpc.MaxCallSendMsgSize(maxGRPCMessageSize),
	)
	// Conservative keepalive: ping only under active streams, so servers
	// with strict ping policies do not return ENHANCE_YOUR_CALM.
	kaOpts := grpc.WithKeepaliveParams(keepalive.ClientParameters{
		Time:                2 * time.Minute,
		Timeout:             20 * time.Second,
		PermitWithoutStream: false,
	})

	db, err := drv.NewDatabaseWithOptions(dbOpts, callOpts, kaOpts)
	if err != nil {
		return nil, fmt.Errorf("flightsql: create database: %w", err)
	}

	conn, err := db.Open(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("flightsql: open connection: %w", err)
	}
	return &Client{db: db, conn: conn}, nil
}

// Healthy reports whether the session still holds its handles.
func (c *Client) Healthy() bool {
	return c != nil && c.conn != nil && c.db != nil
}

// queryResult pairs a record reader with the statement that owns it.
// Both must be released, reader first.
type queryResult struct {
	reader array.RecordReader
	stmt   adbc.Statement
}

func (r *queryResult) release() {
	if r.reader != nil {
		r.reader.Release()
	}
	if r.stmt != nil {
		r.stmt.Close()
	}
}

// query executes sql and returns the result stream.
func (c *Client) query(ctx context.Context, sql string) (*queryResult, error) {
	if !c.Healthy() {
		return nil, ErrClosed
	}
	stmt, err := c.conn.NewStatement()
	if err != nil {
		return nil, fmt.Errorf("flightsql: create statement: %w", err)
	}
	if err := stmt.SetSqlQuery(sql); err != nil {
		stmt.Close()
		return nil, fmt.Errorf("flightsql: set query: %w", err)
	}
	reader, _, err := stmt.ExecuteQuery(ctx)
	if err != nil {
		stmt.Close()
		return nil, fmt.Errorf("flightsql: execute query: %w", err)
	}
	return &queryResult{reader: reader, stmt: stmt}, nil
}

// Close releases the connection and database handles.
func (c *Client) Close() error {
	var errs []error
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, err)
		}
		c.conn = nil
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, err)
		}
		c.db = nil
	}
	return errors.Join(errs...)
}
