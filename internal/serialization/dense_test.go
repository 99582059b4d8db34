package serialization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparsednn/internal/format"
)

func TestDense_RoundTrip(t *testing.T) {
	values := []float32{0, 1, 0, 0.5, 0, 0}
	data, err := EncodeDense(2, 3, values)
	require.NoError(t, err)
	assert.Len(t, data, DenseHeaderLen+6*4)

	hdr, err := ParseDenseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, DenseHeader{Rows: 2, Cols: 3}, hdr)

	dst := make([]float32, 6)
	_, err = DecodeDenseInto(data, dst, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, values, dst)
}

func TestDense_Errors(t *testing.T) {
	_, err := EncodeDense(2, 3, []float64{1})
	assert.ErrorIs(t, err, format.ErrBounds)

	data, err := EncodeDense(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	// Header must match what the caller expects.
	_, err = DecodeDenseInto(data, make([]float64, 8), 4, 2)
	assert.ErrorIs(t, err, format.ErrFormat)
	_, err = DecodeDenseInto(data, make([]float64, 8), 2, 4)
	assert.ErrorIs(t, err, format.ErrFormat)

	// Destination too small.
	_, err = DecodeDenseInto(data, make([]float64, 3), 2, 2)
	assert.ErrorIs(t, err, format.ErrBounds)

	// Wrong precision shows up as a payload size mismatch.
	_, err = DecodeDenseInto(data, make([]float32, 4), 2, 2)
	assert.ErrorIs(t, err, format.ErrFormat)

	_, err = ParseDenseHeader(data[:5])
	assert.ErrorIs(t, err, format.ErrFormat)
}

func TestLabels_RoundTrip(t *testing.T) {
	data := EncodeLabels([]int32{0, 1, 0})
	assert.Len(t, data, LabelHeaderLen+3*WordSize)

	got, err := DecodeLabels(data)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 0}, got)

	empty, err := DecodeLabels(EncodeLabels(nil))
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = DecodeLabels(data[:len(data)-2])
	assert.ErrorIs(t, err, format.ErrFormat)
	_, err = DecodeLabels(data[:2])
	assert.ErrorIs(t, err, format.ErrFormat)
}
