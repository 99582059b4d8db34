package csr

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparsednn/internal/format"
	"github.com/born-ml/sparsednn/internal/tsv"
)

func parse(t *testing.T, text string) []tsv.Triple[float32] {
	t.Helper()
	triples, err := tsv.Parse[float32]([]byte(text))
	require.NoError(t, err)
	return triples
}

func TestBuild_SingleSlab(t *testing.T) {
	triples := parse(t, "1\t1\t2.0\n2\t2\t3.0\n")
	m, err := Build(triples, Geometry{Rows: 2, Cols: 2, ColBlockWidth: 2, SlabCount: 1}, 2)
	require.NoError(t, err)

	assert.Equal(t, []int32{0, 1, 2}, m.Offsets)
	assert.Equal(t, []int32{0, 1}, m.Columns)
	assert.Equal(t, []float32{2, 3}, m.Values)
	assert.NoError(t, m.Validate())
}

func TestBuild_TwoSlabs(t *testing.T) {
	triples := parse(t, "1\t1\t2.0\n2\t2\t3.0\n")
	g := Geometry{Rows: 2, Cols: 2, ColBlockWidth: 1, SlabCount: 2}
	m, err := Build(triples, g, 2)
	require.NoError(t, err)

	assert.Equal(t, 0, g.VirtualRow(0, 0))
	assert.Equal(t, 3, g.VirtualRow(1, 1))
	assert.Len(t, m.Offsets, 5)
	assert.Equal(t, []int32{0, 1, 1, 1, 2}, m.Offsets)
	assert.Equal(t, []int32{0, 1}, m.Columns)
	assert.Equal(t, []float32{2, 3}, m.Values)
}

func TestBuild_Empty(t *testing.T) {
	m, err := Build[float64](nil, Geometry{Rows: 3, Cols: 4, ColBlockWidth: 2, SlabCount: 2}, 0)
	require.NoError(t, err)

	assert.Equal(t, make([]int32, 7), m.Offsets)
	assert.Empty(t, m.Columns)
	assert.Empty(t, m.Values)
	assert.NoError(t, m.Validate())
}

func TestBuild_InputOrderWithinRow(t *testing.T) {
	// Row 1 has its entries out of column order; they must stay that way
	// and stay paired with their values.
	triples := parse(t, "1\t3\t30\n2\t1\t1\n1\t1\t10\n1\t2\t20\n")
	m, err := Build(triples, Geometry{Rows: 2, Cols: 3, ColBlockWidth: 4, SlabCount: 1}, 4)
	require.NoError(t, err)

	assert.Equal(t, []int32{0, 3, 4}, m.Offsets)
	cols, vals := m.Row(0)
	assert.Equal(t, []int32{2, 0, 1}, cols)
	assert.Equal(t, []float32{30, 10, 20}, vals)
	cols, vals = m.Row(1)
	assert.Equal(t, []int32{0}, cols)
	assert.Equal(t, []float32{1}, vals)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		g    Geometry
		nnz  int
	}{
		{"row out of range", "3\t1\t1\n", Geometry{Rows: 2, Cols: 2, ColBlockWidth: 2, SlabCount: 1}, 1},
		{"col out of range", "1\t3\t1\n", Geometry{Rows: 2, Cols: 2, ColBlockWidth: 2, SlabCount: 1}, 1},
		{"nnz too small", "1\t1\t1\n2\t2\t1\n", Geometry{Rows: 2, Cols: 2, ColBlockWidth: 2, SlabCount: 1}, 1},
		{"nnz too large", "1\t1\t1\n", Geometry{Rows: 2, Cols: 2, ColBlockWidth: 2, SlabCount: 1}, 2},
		{"too few slabs", "1\t1\t1\n", Geometry{Rows: 2, Cols: 4, ColBlockWidth: 1, SlabCount: 2}, 1},
		{"zero block width", "1\t1\t1\n", Geometry{Rows: 2, Cols: 2, ColBlockWidth: 0, SlabCount: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(parse(t, tt.text), tt.g, tt.nnz)
			assert.ErrorIs(t, err, format.ErrBounds)
		})
	}
}

func TestBuild_RandomInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := Geometry{Rows: 64, Cols: 256, ColBlockWidth: 32, SlabCount: 8}

	for iter := 0; iter < 20; iter++ {
		nnz := rng.Intn(2000)
		triples := make([]tsv.Triple[float64], nnz)
		for i := range triples {
			triples[i] = tsv.Triple[float64]{Row: rng.Intn(g.Rows), Col: rng.Intn(g.Cols), Value: rng.Float64()}
		}

		m, err := Build(triples, g, nnz)
		require.NoError(t, err)
		require.NoError(t, m.Validate())

		// Every entry sits in the virtual row its column implies, in input order.
		seen := make([]int, g.VirtualRows())
		for _, tr := range triples {
			v := g.VirtualRow(tr.Row, tr.Col)
			pos := int(m.Offsets[v]) + seen[v]
			seen[v]++
			assert.Equal(t, int32(tr.Col), m.Columns[pos])
			assert.Equal(t, tr.Value, m.Values[pos])
		}
		for v := 0; v < g.VirtualRows(); v++ {
			assert.Equal(t, int(m.Offsets[v+1]-m.Offsets[v]), seen[v])
		}
	}
}

func TestValidate_DetectsCorruption(t *testing.T) {
	m, err := Build(parse(t, "1\t1\t1\n2\t2\t1\n"), Geometry{Rows: 2, Cols: 2, ColBlockWidth: 2, SlabCount: 1}, 2)
	require.NoError(t, err)

	m.Offsets[1] = 3
	assert.ErrorIs(t, m.Validate(), format.ErrFormat)

	m.Offsets[1] = 1
	m.Offsets[2] = 1
	assert.ErrorIs(t, m.Validate(), format.ErrFormat)

	m.Offsets[2] = 2
	m.Columns[0] = 5
	assert.ErrorIs(t, m.Validate(), format.ErrBounds)
}
