package airport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"

	"github.com/hugr-lab/attach-go/driver"
	"github.com/hugr-lab/attach-go/internal/convert"
)

// ticketData is the JSON body of a DoGet ticket. Servers treat tickets as
// opaque bytes they themselves minted, so the shape must match the
// server's dialect exactly.
type ticketData struct {
	Schema  string   `json:"schema"`
	Table   string   `json:"table"`
	Columns []string `json:"columns,omitempty"`
}

// scanStream is one open DoGet scan. The flight client and record reader
// live from Init to Close; the table schema was fetched at bind.
type scanStream struct {
	client     *Client
	ownsClient bool

	schemaName string
	tableName  string
	columns    []driver.ScanColumn

	reader *flight.Reader
	rec    arrow.RecordBatch
	offset int64
	cancel context.CancelFunc
}

func (s *scanStream) Columns() []driver.ScanColumn {
	return s.columns
}

// Init starts the DoGet stream for the projected columns. The stream's
// context must outlive this call: Next keeps receiving on it, so it is
// detached from the Init context and cancelled at Close.
func (s *scanStream) Init(ctx context.Context, columnIDs []int) error {
	names := make([]string, 0, len(columnIDs))
	for _, id := range columnIDs {
		if id < 0 || id >= len(s.columns) {
			return fmt.Errorf("airport: column ordinal %d out of range [0,%d)", id, len(s.columns))
		}
		names = append(names, s.columns[id].Name)
	}

	ticket, err := json.Marshal(ticketData{
		Schema:  s.schemaName,
		Table:   s.tableName,
		Columns: names,
	})
	if err != nil {
		return fmt.Errorf("airport: encode ticket: %w", err)
	}

	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stream, err := s.client.flight.DoGet(s.client.withAuth(streamCtx), &flight.Ticket{Ticket: ticket})
	if err != nil {
		cancel()
		return fmt.Errorf("airport: do get %s.%s: %w", s.schemaName, s.tableName, err)
	}
	reader, err := flight.NewRecordReader(stream)
	if err != nil {
		cancel()
		return fmt.Errorf("airport: open record stream for %s.%s: %w", s.schemaName, s.tableName, err)
	}
	s.reader = reader
	s.cancel = cancel
	return nil
}

func (s *scanStream) Next(ctx context.Context, out *driver.RowBatch) (int64, error) {
	if s.reader == nil {
		return 0, fmt.Errorf("airport: scan of %s.%s not initialized", s.schemaName, s.tableName)
	}
	for {
		if s.rec != nil && s.offset < s.rec.NumRows() {
			n := convert.FillBatch(s.rec, s.offset, out)
			s.offset += int64(n)
			return int64(n), nil
		}
		if !s.reader.Next() {
			if err := s.reader.Err(); err != nil {
				return 0, fmt.Errorf("airport: read %s.%s: %w", s.schemaName, s.tableName, err)
			}
			s.rec = nil
			out.SetLen(0)
			return 0, nil
		}
		s.rec = s.reader.RecordBatch()
		s.offset = 0
	}
}

func (s *scanStream) Close() error {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.reader != nil {
		s.reader.Release()
		s.reader = nil
	}
	s.rec = nil
	if s.ownsClient {
		return s.client.Close()
	}
	return nil
}
