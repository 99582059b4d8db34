package serialization

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparsednn/internal/csr"
	"github.com/born-ml/sparsednn/internal/dtype"
	"github.com/born-ml/sparsednn/internal/format"
	"github.com/born-ml/sparsednn/internal/tsv"
)

func buildMatrix[T dtype.Float](t *testing.T, text string, g csr.Geometry) *csr.Matrix[T] {
	t.Helper()
	triples, err := tsv.Parse[T]([]byte(text))
	require.NoError(t, err)
	m, err := csr.Build(triples, g, len(triples))
	require.NoError(t, err)
	return m
}

func TestEncodeMatrix_Layout(t *testing.T) {
	m := buildMatrix[float32](t, "1\t1\t2.0\n2\t2\t3.0\n", csr.Geometry{Rows: 2, Cols: 2, ColBlockWidth: 2, SlabCount: 1})

	data, err := EncodeMatrix(m)
	require.NoError(t, err)

	want := new(bytes.Buffer)
	for _, x := range []int32{2, 2, 0, 1, 2, 0, 1} {
		want.Write(asBytes([]int32{x}))
	}
	want.Write(asBytes([]float32{2, 3}))
	assert.Equal(t, want.Bytes(), data)
	assert.Equal(t, MatrixSize(m), len(data))

	var buf bytes.Buffer
	require.NoError(t, WriteMatrix(&buf, m))
	assert.Equal(t, data, buf.Bytes())

	hdr, err := ReadMatrixHeader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, MatrixHeader{Rows: 2, NNZ: 2}, hdr)
}

func TestDecodeMatrix_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g := csr.Geometry{Rows: 16, Cols: 64, ColBlockWidth: 16, SlabCount: 4}
	triples := make([]tsv.Triple[float64], 300)
	for i := range triples {
		triples[i] = tsv.Triple[float64]{Row: rng.Intn(g.Rows), Col: rng.Intn(g.Cols), Value: rng.NormFloat64()}
	}
	m, err := csr.Build(triples, g, len(triples))
	require.NoError(t, err)

	data, err := EncodeMatrix(m)
	require.NoError(t, err)
	got, err := DecodeMatrix[float64](data, g)
	require.NoError(t, err)

	assert.Equal(t, m, got)
	again, err := EncodeMatrix(got)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestDecodeMatrix_Empty(t *testing.T) {
	g := csr.Geometry{Rows: 3, Cols: 4, ColBlockWidth: 2, SlabCount: 2}
	m := buildMatrix[float32](t, "", g)

	data, err := EncodeMatrix(m)
	require.NoError(t, err)
	assert.Len(t, data, MatrixHeaderLen+7*WordSize)

	got, err := DecodeMatrix[float32](data, g)
	require.NoError(t, err)
	assert.Equal(t, make([]int32, 7), got.Offsets)
	assert.Empty(t, got.Columns)
	assert.Empty(t, got.Values)
}

func TestDecodeMatrix_Errors(t *testing.T) {
	g := csr.Geometry{Rows: 2, Cols: 2, ColBlockWidth: 2, SlabCount: 1}
	m := buildMatrix[float32](t, "1\t1\t2.0\n2\t2\t3.0\n", g)
	data, err := EncodeMatrix(m)
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"short header", data[:6]},
		{"truncated payload", data[:len(data)-1]},
		{"trailing bytes", append(append([]byte{}, data...), 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMatrix[float32](tt.data, g)
			assert.ErrorIs(t, err, format.ErrFormat)
		})
	}

	t.Run("wrong rows", func(t *testing.T) {
		_, err := DecodeMatrix[float32](data, csr.Geometry{Rows: 3, Cols: 2, ColBlockWidth: 2, SlabCount: 1})
		assert.ErrorIs(t, err, format.ErrFormat)
	})

	t.Run("wrong kind", func(t *testing.T) {
		_, err := DecodeMatrix[float64](data, g)
		assert.ErrorIs(t, err, format.ErrFormat)
	})
}

func TestDecodeMatrixInto(t *testing.T) {
	g := csr.Geometry{Rows: 2, Cols: 2, ColBlockWidth: 1, SlabCount: 2}
	m := buildMatrix[float64](t, "1\t1\t2.0\n2\t2\t3.0\n", g)
	data, err := EncodeMatrix(m)
	require.NoError(t, err)

	l := Layout{Rows: 2, SlabCount: 2, MaxNNZ: 4, Pad: 1, Kind: dtype.Float64}
	assert.Equal(t, 5+4+1+8, l.Words())

	buf := bytes.Repeat([]byte{0xAA}, l.Size())
	dst, err := NewView(buf, 0, len(buf))
	require.NoError(t, err)

	hdr, err := DecodeMatrixInto(data, dst, l)
	require.NoError(t, err)
	assert.Equal(t, MatrixHeader{Rows: 2, NNZ: 2}, hdr)

	offsets, err := dst.Int32s(0, l.OffsetsLen())
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 1, 1, 2}, offsets)
	cols, err := dst.Int32s(l.ColumnsOffset(), 2)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1}, cols)
	vals, err := Floats[float64](dst, l.ValuesOffset(), 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, vals)

	// Unused capacity is not touched.
	assert.Equal(t, byte(0xAA), buf[l.ColumnsOffset()+2*WordSize])
	assert.Equal(t, byte(0xAA), buf[l.ValuesOffset()-1])
	assert.Equal(t, byte(0xAA), buf[len(buf)-1])
}

func TestDecodeMatrixInto_Errors(t *testing.T) {
	g := csr.Geometry{Rows: 2, Cols: 2, ColBlockWidth: 2, SlabCount: 1}
	m := buildMatrix[float32](t, "1\t1\t2.0\n2\t2\t3.0\n", g)
	data, err := EncodeMatrix(m)
	require.NoError(t, err)

	l := Layout{Rows: 2, SlabCount: 1, MaxNNZ: 2, Kind: dtype.Float32}

	t.Run("nnz above capacity", func(t *testing.T) {
		small := l
		small.MaxNNZ = 1
		dst, err := NewView(make([]byte, small.Size()), 0, small.Size())
		require.NoError(t, err)
		_, err = DecodeMatrixInto(data, dst, small)
		assert.ErrorIs(t, err, format.ErrBounds)
	})

	t.Run("region too small", func(t *testing.T) {
		buf := make([]byte, l.Size()-1)
		dst, err := NewView(buf, 0, len(buf))
		require.NoError(t, err)
		_, err = DecodeMatrixInto(data, dst, l)
		assert.ErrorIs(t, err, format.ErrBounds)
		assert.Equal(t, make([]byte, len(buf)), buf)
	})

	t.Run("rows mismatch", func(t *testing.T) {
		other := l
		other.Rows = 4
		dst, err := NewView(make([]byte, other.Size()), 0, other.Size())
		require.NoError(t, err)
		_, err = DecodeMatrixInto(data, dst, other)
		assert.ErrorIs(t, err, format.ErrFormat)
	})

	t.Run("interior offset past nnz", func(t *testing.T) {
		bad := append([]byte{}, data...)
		copy(bad[MatrixHeaderLen+WordSize:], asBytes([]int32{1000000}))
		buf := make([]byte, l.Size())
		dst, err := NewView(buf, 0, len(buf))
		require.NoError(t, err)
		_, err = DecodeMatrixInto(bad, dst, l)
		assert.ErrorIs(t, err, format.ErrFormat)
		assert.Equal(t, make([]byte, len(buf)), buf)

		_, err = DecodeMatrix[float32](bad, g)
		assert.ErrorIs(t, err, format.ErrFormat)
	})

	t.Run("column outside layout", func(t *testing.T) {
		narrow := l
		narrow.Cols = 1
		buf := make([]byte, narrow.Size())
		dst, err := NewView(buf, 0, len(buf))
		require.NoError(t, err)
		_, err = DecodeMatrixInto(data, dst, narrow)
		assert.ErrorIs(t, err, format.ErrFormat)
		assert.Equal(t, make([]byte, len(buf)), buf)
	})

	t.Run("corrupt last offset", func(t *testing.T) {
		bad := append([]byte{}, data...)
		copy(bad[MatrixHeaderLen+2*WordSize:], asBytes([]int32{1}))
		dst, err := NewView(make([]byte, l.Size()), 0, l.Size())
		require.NoError(t, err)
		_, err = DecodeMatrixInto(bad, dst, l)
		assert.ErrorIs(t, err, format.ErrFormat)
	})
}

func TestCheckOffsets(t *testing.T) {
	tests := []struct {
		name    string
		offsets []int32
		nnz     int
		ok      bool
	}{
		{"valid", []int32{0, 1, 1, 3}, 3, true},
		{"all empty", []int32{0, 0, 0}, 0, true},
		{"empty slice", nil, 0, false},
		{"nonzero start", []int32{1, 1, 3}, 3, false},
		{"decreasing", []int32{0, 5, 3}, 3, false},
		{"last below nnz", []int32{0, 1, 2}, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOffsets(tt.offsets, tt.nnz)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, format.ErrFormat)
			}
		})
	}
}
