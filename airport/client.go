// Package airport is the Airport-dialect Flight connector. Airport servers
// expose catalog listings through ListFlights as zstd-compressed Arrow IPC
// in the Flight SQL GetTables layout, table schemas through GetFlightInfo
// with PATH descriptors, row streams through DoGet with JSON tickets, and
// metadata actions through DoAction with msgpack bodies.
package airport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/klauspost/compress/zstd"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/hugr-lab/attach-go/driver"
	"github.com/hugr-lab/attach-go/internal/sqlutil"
)

// ErrNoEndpoint is returned when a FlightInfo carries no usable endpoint.
var ErrNoEndpoint = errors.New("airport: flight info has no endpoint")

// Client is one gRPC session to an Airport server.
type Client struct {
	conn    *grpc.ClientConn
	flight  flight.FlightServiceClient
	opts    driver.Options
	decoder *zstd.Decoder
	alloc   memory.Allocator
}

// Dial connects to an Airport endpoint.
func Dial(ctx context.Context, opts driver.Options) (*Client, error) {
	if err := sqlutil.ValidateURI(opts.URI); err != nil {
		return nil, err
	}
	target, useTLS := sqlutil.UseTLS(opts.URI)

	var creds grpc.DialOption
	if useTLS {
		creds = grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{
			InsecureSkipVerify: opts.SkipVerify,
		}))
	} else {
		creds = grpc.WithTransportCredentials(insecure.NewCredentials())
	}

	conn, err := grpc.NewClient(target, creds)
	if err != nil {
		return nil, fmt.Errorf("airport: dial %s: %w", opts.URI, err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("airport: create zstd decoder: %w", err)
	}

	return &Client{
		conn:    conn,
		flight:  flight.NewFlightServiceClient(conn),
		opts:    opts,
		decoder: decoder,
		alloc:   memory.DefaultAllocator,
	}, nil
}

// withAuth attaches the authorization header for the session's
// credentials. Bearer tokens win over basic credentials.
func (c *Client) withAuth(ctx context.Context) context.Context {
	switch {
	case c.opts.Token != "":
		return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.opts.Token)
	case c.opts.Username != "":
		cred := base64.StdEncoding.EncodeToString([]byte(c.opts.Username + ":" + c.opts.Password))
		return metadata.AppendToOutgoingContext(ctx, "authorization", "Basic "+cred)
	default:
		return ctx
	}
}

// catalogEntry is one row of the ListFlights catalog listing.
type catalogEntry struct {
	Schema string
	Table  string
	Kind   string
}

// listCatalog fetches and decodes the full catalog listing: one
// FlightInfo whose ticket holds the zstd-compressed Arrow IPC stream in
// GetTables layout (catalog_name, db_schema_name, table_name, table_type).
func (c *Client) listCatalog(ctx context.Context) ([]catalogEntry, error) {
	stream, err := c.flight.ListFlights(c.withAuth(ctx), &flight.Criteria{})
	if err != nil {
		return nil, fmt.Errorf("airport: list flights: %w", err)
	}

	info, err := stream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("airport: receive flight info: %w", err)
	}
	if len(info.Endpoint) == 0 || info.Endpoint[0].Ticket == nil {
		return nil, ErrNoEndpoint
	}

	return c.decodeCatalogPayload(info.Endpoint[0].Ticket.Ticket)
}

// decodeCatalogPayload decompresses and decodes one catalog listing.
func (c *Client) decodeCatalogPayload(compressed []byte) ([]catalogEntry, error) {
	raw, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("airport: decompress catalog: %w", err)
	}

	reader, err := ipc.NewReader(bytes.NewReader(raw), ipc.WithAllocator(c.alloc))
	if err != nil {
		return nil, fmt.Errorf("airport: open catalog stream: %w", err)
	}
	defer reader.Release()

	var entries []catalogEntry
	for reader.Next() {
		rec := reader.RecordBatch()
		entries = append(entries, decodeCatalogRecord(rec)...)
	}
	if err := reader.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("airport: read catalog stream: %w", err)
	}
	return entries, nil
}

// Close tears down the session.
func (c *Client) Close() error {
	if c.decoder != nil {
		c.decoder.Close()
		c.decoder = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
