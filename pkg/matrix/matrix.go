package matrix

import (
	"errors"
	"fmt"
	"strings"
)

// Matrix limits.
const (
	// MaxCols is the widest supported row (one bit per column in a Row).
	MaxCols = 32

	// MaxRows is the tallest supported matrix.
	MaxRows = 255
)

// Matrix errors.
var (
	ErrInvalidRows = errors.New("invalid row count")
	ErrInvalidCols = errors.New("invalid column count")
	ErrDimensions  = errors.New("matrix dimensions differ")
)

// Row holds the switch states of one matrix row, one bit per column.
type Row uint32

// Has reports whether the bit for col is set.
func (r Row) Has(col int) bool {
	return r&(1<<uint(col)) != 0
}

// ColMask returns the mask selecting a single column.
func ColMask(col int) Row {
	return 1 << uint(col)
}

// Matrix is a rows x cols grid of switch states.
type Matrix struct {
	rows []Row
	cols int
}

// New creates an all-open matrix with the given dimensions.
func New(rows, cols int) (*Matrix, error) {
	if rows < 1 || rows > MaxRows {
		return nil, fmt.Errorf("%w: %d (1-%d)", ErrInvalidRows, rows, MaxRows)
	}
	if cols < 1 || cols > MaxCols {
		return nil, fmt.Errorf("%w: %d (1-%d)", ErrInvalidCols, cols, MaxCols)
	}
	return &Matrix{
		rows: make([]Row, rows),
		cols: cols,
	}, nil
}

// MustNew is like New but panics on invalid dimensions.
// Intended for tests and fixed-size tables.
func MustNew(rows, cols int) *Matrix {
	m, err := New(rows, cols)
	if err != nil {
		panic(err)
	}
	return m
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int {
	return len(m.rows)
}

// Cols returns the number of columns.
func (m *Matrix) Cols() int {
	return m.cols
}

// RowMask returns the mask of valid column bits.
func (m *Matrix) RowMask() Row {
	if m.cols == MaxCols {
		return ^Row(0)
	}
	return (1 << uint(m.cols)) - 1
}

// Data exposes the underlying row slice. The debounce engine works on it
// directly; callers must not change its length.
func (m *Matrix) Data() []Row {
	return m.rows
}

// Row returns the bitmask of a row.
func (m *Matrix) Row(row int) Row {
	return m.rows[row]
}

// SetRow replaces a whole row. Bits beyond the column count are dropped.
func (m *Matrix) SetRow(row int, v Row) {
	m.rows[row] = v & m.RowMask()
}

// Get returns the state of a single switch.
func (m *Matrix) Get(row, col int) bool {
	return m.rows[row].Has(col)
}

// Set updates the state of a single switch.
func (m *Matrix) Set(row, col int, closed bool) {
	if closed {
		m.rows[row] |= ColMask(col)
	} else {
		m.rows[row] &^= ColMask(col)
	}
}

// Toggle flips a single switch.
func (m *Matrix) Toggle(row, col int) {
	m.rows[row] ^= ColMask(col)
}

// Clear opens every switch.
func (m *Matrix) Clear() {
	for i := range m.rows {
		m.rows[i] = 0
	}
}

// Equal reports whether both matrices hold the same states.
// Matrices of different dimensions are never equal.
func (m *Matrix) Equal(o *Matrix) bool {
	if len(m.rows) != len(o.rows) || m.cols != o.cols {
		return false
	}
	for i, r := range m.rows {
		if o.rows[i] != r {
			return false
		}
	}
	return true
}

// CopyFrom overwrites m with the states of src.
func (m *Matrix) CopyFrom(src *Matrix) error {
	if len(m.rows) != len(src.rows) || m.cols != src.cols {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensions,
			len(m.rows), m.cols, len(src.rows), src.cols)
	}
	copy(m.rows, src.rows)
	return nil
}

// Clone returns an independent copy.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{
		rows: make([]Row, len(m.rows)),
		cols: m.cols,
	}
	copy(c.rows, m.rows)
	return c
}

// Pressed returns the number of closed switches.
func (m *Matrix) Pressed() int {
	n := 0
	for _, r := range m.rows {
		for ; r != 0; r &= r - 1 {
			n++
		}
	}
	return n
}

// String renders the matrix one row per line, '#' for closed and '.' for open.
func (m *Matrix) String() string {
	var b strings.Builder
	for i, r := range m.rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for c := 0; c < m.cols; c++ {
			if r.Has(c) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}
