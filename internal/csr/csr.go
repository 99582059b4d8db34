// Package csr builds the slab-blocked compressed row layout.
//
// Columns are grouped into slabs of ColBlockWidth contiguous columns. An
// entry (row, col) is relocated to the virtual row row + Rows*(col/ColBlockWidth),
// so the matrix becomes (Rows*SlabCount) x Cols in compressed row form and
// a kernel can stream one slab of columns at a time.
package csr

import (
	"fmt"

	"github.com/born-ml/sparsednn/internal/dtype"
	"github.com/born-ml/sparsednn/internal/format"
	"github.com/born-ml/sparsednn/internal/tsv"
)

// Geometry is the fixed shape of a layer.
type Geometry struct {
	Rows          int `yaml:"rows"`
	Cols          int `yaml:"cols"`
	ColBlockWidth int `yaml:"col_block_width"`
	SlabCount     int `yaml:"slab_count"`
}

// VirtualRows returns the number of slab-relocated rows.
func (g Geometry) VirtualRows() int {
	return g.Rows * g.SlabCount
}

// OffsetsLen returns the length of the offsets array.
func (g Geometry) OffsetsLen() int {
	return g.VirtualRows() + 1
}

// Slab returns the slab a column belongs to.
func (g Geometry) Slab(col int) int {
	return col / g.ColBlockWidth
}

// VirtualRow returns the virtual row of entry (row, col).
func (g Geometry) VirtualRow(row, col int) int {
	return row + g.Rows*g.Slab(col)
}

// Validate checks that every dimension is positive and the slabs cover all columns.
func (g Geometry) Validate() error {
	switch {
	case g.Rows <= 0:
		return &format.BoundsError{What: "rows", Need: 1, Have: int64(g.Rows)}
	case g.Cols <= 0:
		return &format.BoundsError{What: "cols", Need: 1, Have: int64(g.Cols)}
	case g.ColBlockWidth <= 0:
		return &format.BoundsError{What: "column block width", Need: 1, Have: int64(g.ColBlockWidth)}
	case g.SlabCount <= 0:
		return &format.BoundsError{What: "slab count", Need: 1, Have: int64(g.SlabCount)}
	}
	return format.CheckBounds("slab count", g.Slab(g.Cols-1)+1, g.SlabCount)
}

// Matrix is a layer in slab-blocked compressed row form.
//
// Invariants: len(Offsets) == Rows*SlabCount+1, Offsets[0] == 0, Offsets is
// nondecreasing and Offsets[last] == NNZ. Columns[Offsets[v]:Offsets[v+1]]
// and the matching Values belong to virtual row v only.
type Matrix[T dtype.Float] struct {
	Geometry
	NNZ     int
	Offsets []int32
	Columns []int32
	Values  []T
}

// Build converts 0-based triples into a slab-blocked matrix with exactly nnz entries.
//
// Construction is a counting sort over virtual rows: one pass counts the
// entries of every virtual row, a prefix sum turns counts into offsets and a
// second pass scatters columns and values. Within a virtual row entries keep
// their input order.
func Build[T dtype.Float](triples []tsv.Triple[T], g Geometry, nnz int) (*Matrix[T], error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}
	if len(triples) != nnz {
		return nil, &format.BoundsError{What: "declared nnz", Need: int64(len(triples)), Have: int64(nnz)}
	}

	m := &Matrix[T]{
		Geometry: g,
		NNZ:      nnz,
		Offsets:  make([]int32, g.OffsetsLen()),
		Columns:  make([]int32, nnz),
		Values:   make([]T, nnz),
	}

	// Count pass. Offsets[v+1] holds the size of virtual row v.
	for i, t := range triples {
		if err := g.checkEntry(i, t.Row, t.Col); err != nil {
			return nil, err
		}
		m.Offsets[g.VirtualRow(t.Row, t.Col)+1]++
	}

	for v := 1; v < len(m.Offsets); v++ {
		m.Offsets[v] += m.Offsets[v-1]
	}

	// Scatter pass, same order as the count pass.
	cursor := make([]int32, g.VirtualRows())
	copy(cursor, m.Offsets[:g.VirtualRows()])
	for _, t := range triples {
		v := g.VirtualRow(t.Row, t.Col)
		pos := cursor[v]
		cursor[v]++
		m.Columns[pos] = int32(t.Col) //nolint:gosec // G115: col < Cols, checked above
		m.Values[pos] = t.Value
	}

	return m, nil
}

func (g Geometry) checkEntry(i, row, col int) error {
	if row < 0 || row >= g.Rows {
		return &format.BoundsError{What: fmt.Sprintf("triple %d row index", i), Need: int64(row) + 1, Have: int64(g.Rows)}
	}
	if col < 0 || col >= g.Cols {
		return &format.BoundsError{What: fmt.Sprintf("triple %d col index", i), Need: int64(col) + 1, Have: int64(g.Cols)}
	}
	if s := g.Slab(col); s >= g.SlabCount {
		return &format.BoundsError{What: fmt.Sprintf("triple %d slab", i), Need: int64(s) + 1, Have: int64(g.SlabCount)}
	}
	return nil
}

// Row returns the columns and values of virtual row v.
func (m *Matrix[T]) Row(v int) ([]int32, []T) {
	lo, hi := m.Offsets[v], m.Offsets[v+1]
	return m.Columns[lo:hi], m.Values[lo:hi]
}

// Validate checks the structural invariants of m.
func (m *Matrix[T]) Validate() error {
	if len(m.Offsets) != m.OffsetsLen() {
		return &format.FormatError{Field: "offsets", Reason: fmt.Sprintf("length %d, want %d", len(m.Offsets), m.OffsetsLen())}
	}
	if len(m.Columns) != m.NNZ || len(m.Values) != m.NNZ {
		return &format.FormatError{Field: "columns", Reason: fmt.Sprintf("columns %d, values %d, want %d", len(m.Columns), len(m.Values), m.NNZ)}
	}
	if m.Offsets[0] != 0 {
		return &format.FormatError{Field: "offsets", Reason: "first offset is not zero"}
	}
	for v := 1; v < len(m.Offsets); v++ {
		if m.Offsets[v] < m.Offsets[v-1] {
			return &format.FormatError{Field: "offsets", Reason: fmt.Sprintf("decreasing at virtual row %d", v-1)}
		}
	}
	if last := m.Offsets[len(m.Offsets)-1]; int(last) != m.NNZ {
		return &format.FormatError{Field: "offsets", Reason: fmt.Sprintf("last offset %d, want nnz %d", last, m.NNZ)}
	}
	for i, c := range m.Columns {
		if c < 0 || int(c) >= m.Cols {
			return &format.BoundsError{What: fmt.Sprintf("column %d", i), Need: int64(c) + 1, Have: int64(m.Cols)}
		}
	}
	return nil
}
