package driver

// DefaultBatchCapacity is the engine vector size: the maximum number of
// rows a connector may write into one RowBatch per Next call.
const DefaultBatchCapacity = 2048

// RowBatch is the caller-supplied pull buffer that crosses the boundary on
// every Next call. The consumer allocates it once per scan and reuses it;
// the connector fills column vectors and sets the row count. A nil cell
// value represents SQL NULL.
//
// Only the projected columns are populated: after Init(columnIDs), the
// batch's column i corresponds to columnIDs[i].
type RowBatch struct {
	cols [][]any
	n    int
}

// NewRowBatch allocates a batch with numCols columns and
// DefaultBatchCapacity rows.
func NewRowBatch(numCols int) *RowBatch {
	return NewRowBatchSize(numCols, DefaultBatchCapacity)
}

// NewRowBatchSize allocates a batch with an explicit row capacity.
// Intended for tests; engines use the default vector size.
func NewRowBatchSize(numCols, capacity int) *RowBatch {
	if numCols < 0 {
		numCols = 0
	}
	if capacity <= 0 {
		capacity = DefaultBatchCapacity
	}
	cols := make([][]any, numCols)
	for i := range cols {
		cols[i] = make([]any, capacity)
	}
	return &RowBatch{cols: cols}
}

// NumCols returns the number of column vectors.
func (b *RowBatch) NumCols() int {
	return len(b.cols)
}

// Capacity returns the maximum row count per fill.
func (b *RowBatch) Capacity() int {
	if len(b.cols) == 0 {
		return DefaultBatchCapacity
	}
	return len(b.cols[0])
}

// Len returns the row count of the current fill.
func (b *RowBatch) Len() int {
	return b.n
}

// SetLen records the row count of the current fill. Connectors call this
// after writing cell values; values at rows >= n are stale and must not be
// read.
func (b *RowBatch) SetLen(n int) {
	if n < 0 {
		n = 0
	}
	if c := b.Capacity(); n > c {
		n = c
	}
	b.n = n
}

// Col returns the full column vector i, sized to Capacity.
func (b *RowBatch) Col(i int) []any {
	return b.cols[i]
}

// Set writes one cell. A nil value is SQL NULL.
func (b *RowBatch) Set(col, row int, v any) {
	b.cols[col][row] = v
}

// Value reads one cell of the current fill.
func (b *RowBatch) Value(col, row int) any {
	return b.cols[col][row]
}

// Reset clears the row count. Cell contents are left in place and
// overwritten by the next fill.
func (b *RowBatch) Reset() {
	b.n = 0
}
