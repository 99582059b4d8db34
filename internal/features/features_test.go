package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparsednn/internal/format"
	"github.com/born-ml/sparsednn/internal/parallel"
)

const sample = "1\t2\t0.5\n3\t1\t1\n3\t4\t2\n"

func TestParse(t *testing.T) {
	m, err := Parse[float32]([]byte(sample), 4, 4, parallel.Sequential())
	require.NoError(t, err)

	assert.Equal(t, []float32{
		0, 0.5, 0, 0,
		0, 0, 0, 0,
		1, 0, 0, 2,
		0, 0, 0, 0,
	}, m.Values)
	assert.Equal(t, []int32{1, 0, 2, 0}, m.RowNNZ)
	assert.Equal(t, []int32{0, 2}, m.ActiveRows)
	assert.Equal(t, []bool{true, false, true, false}, m.ActiveMask())
}

func TestParse_ExplicitZeroIsInactive(t *testing.T) {
	m, err := Parse[float64]([]byte("2\t1\t0\n"), 2, 2, parallel.Sequential())
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 0}, m.RowNNZ)
	assert.Empty(t, m.ActiveRows)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse[float32]([]byte("5\t1\t1\n"), 4, 4, parallel.Sequential())
	assert.ErrorIs(t, err, format.ErrBounds)

	_, err = Parse[float32]([]byte("1\t1\t1\n1\t5\t1\n"), 4, 4, parallel.Sequential())
	assert.ErrorIs(t, err, format.ErrBounds)

	_, err = Parse[float32]([]byte("1\t1\n"), 4, 4, parallel.Sequential())
	assert.ErrorIs(t, err, format.ErrFormat)
}

func TestBinaryRoundTrip(t *testing.T) {
	m, err := Parse[float32]([]byte(sample), 4, 4, parallel.Sequential())
	require.NoError(t, err)

	data, err := Encode(m)
	require.NoError(t, err)

	got, err := Decode[float32](data, 4, 4, parallel.Sequential())
	require.NoError(t, err)
	assert.Equal(t, m.Values, got.Values)
	assert.Equal(t, m.RowNNZ, got.RowNNZ)
	assert.Equal(t, m.ActiveRows, got.ActiveRows)
}

func TestDecode_HeaderMismatch(t *testing.T) {
	m, err := Parse[float32]([]byte(sample), 4, 4, parallel.Sequential())
	require.NoError(t, err)
	data, err := Encode(m)
	require.NoError(t, err)

	_, err = Decode[float32](data, 3, 4, parallel.Sequential())
	assert.ErrorIs(t, err, format.ErrFormat)
	_, err = Decode[float32](data, 4, 8, parallel.Sequential())
	assert.ErrorIs(t, err, format.ErrFormat)
}

func TestRecompute(t *testing.T) {
	m, err := New[float64](2, 3)
	require.NoError(t, err)
	m.Recompute(parallel.Sequential())
	assert.Empty(t, m.ActiveRows)

	m.Row(1)[2] = 4
	m.Recompute(parallel.Sequential())
	assert.Equal(t, []int32{0, 1}, m.RowNNZ)
	assert.Equal(t, []int32{1}, m.ActiveRows)
}

func TestRecompute_ManyRows(t *testing.T) {
	const rows = 3*rowsPerWorker + 17
	configs := map[string]parallel.Config{
		"sequential": parallel.Sequential(),
		"disabled":   {Enabled: false, NumWorkers: 8},
		"parallel":   {Enabled: true, NumWorkers: 4, MinChunkSize: 1},
	}
	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			m, err := New[float32](rows, 2)
			require.NoError(t, err)

			var want []int32
			for i := 0; i < rows; i += 7 {
				m.Row(i)[i%2] = 1
				want = append(want, int32(i))
			}
			m.Recompute(cfg)
			assert.Equal(t, want, m.ActiveRows)
			assert.Equal(t, int32(1), m.RowNNZ[7])
			assert.Equal(t, int32(0), m.RowNNZ[8])
		})
	}
}
