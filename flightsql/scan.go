package flightsql

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hugr-lab/attach-go/driver"
	"github.com/hugr-lab/attach-go/internal/convert"
	"github.com/hugr-lab/attach-go/internal/sqlutil"
)

// scanStream is one open table scan. It holds its session lease from bind
// to close; the projected query starts at Init and rows are chunked into
// the caller's batch across Next calls, since server record batches are
// usually larger than the engine's vector size.
type scanStream struct {
	pool  *Pool
	lease *lease

	schemaName string
	tableName  string
	columns    []driver.ScanColumn

	res    *queryResult
	rec    arrow.RecordBatch
	offset int64
}

func (s *scanStream) Columns() []driver.ScanColumn {
	return s.columns
}

// Init issues the projected SELECT. columnIDs are zero-based ordinals
// into Columns; nil selects every column.
func (s *scanStream) Init(ctx context.Context, columnIDs []int) error {
	names := make([]string, 0, len(columnIDs))
	for _, id := range columnIDs {
		if id < 0 || id >= len(s.columns) {
			return fmt.Errorf("flightsql: column ordinal %d out of range [0,%d)", id, len(s.columns))
		}
		names = append(names, s.columns[id].Name)
	}

	res, err := s.lease.client.query(ctx, sqlutil.BuildProjectedQuery(s.schemaName, s.tableName, names))
	if err != nil {
		return fmt.Errorf("flightsql: scan %s.%s: %w", s.schemaName, s.tableName, err)
	}
	s.res = res
	return nil
}

func (s *scanStream) Next(ctx context.Context, out *driver.RowBatch) (int64, error) {
	if s.res == nil {
		return 0, fmt.Errorf("flightsql: scan of %s.%s not initialized", s.schemaName, s.tableName)
	}
	for {
		if s.rec != nil && s.offset < s.rec.NumRows() {
			n := convert.FillBatch(s.rec, s.offset, out)
			s.offset += int64(n)
			return int64(n), nil
		}
		if !s.res.reader.Next() {
			if err := s.res.reader.Err(); err != nil {
				return 0, fmt.Errorf("flightsql: read %s.%s: %w", s.schemaName, s.tableName, err)
			}
			s.rec = nil
			out.SetLen(0)
			return 0, nil
		}
		s.rec = s.res.reader.RecordBatch()
		s.offset = 0
	}
}

func (s *scanStream) Close() error {
	if s.res != nil {
		s.res.release()
		s.res = nil
	}
	s.rec = nil
	s.pool.Put(s.lease)
	return nil
}
