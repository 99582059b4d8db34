// Package features loads dense input feature matrices together with the
// per-row activity metadata an inference engine uses to skip empty rows.
package features

import (
	"fmt"

	"github.com/born-ml/sparsednn/internal/dtype"
	"github.com/born-ml/sparsednn/internal/format"
	"github.com/born-ml/sparsednn/internal/parallel"
	"github.com/born-ml/sparsednn/internal/serialization"
	"github.com/born-ml/sparsednn/internal/tsv"
)

// Matrix is a dense row-major Inputs x Features matrix.
type Matrix[T dtype.Float] struct {
	Inputs   int
	Features int
	Values   []T

	// RowNNZ[i] is the number of nonzero values of row i.
	RowNNZ []int32
	// ActiveRows lists, ascending, the rows with at least one nonzero value.
	ActiveRows []int32
}

// New returns an all-zero matrix.
func New[T dtype.Float](numInputs, numFeatures int) (*Matrix[T], error) {
	if numInputs < 0 || numFeatures < 0 {
		return nil, &format.BoundsError{What: "feature matrix dims", Need: 0, Have: int64(min(numInputs, numFeatures))}
	}
	return &Matrix[T]{
		Inputs:   numInputs,
		Features: numFeatures,
		Values:   make([]T, numInputs*numFeatures),
		RowNNZ:   make([]int32, numInputs),
	}, nil
}

// Parse fills a numInputs x numFeatures matrix from coordinate text.
// Positions not named by the text stay zero; a later line for the same
// position overwrites an earlier one. cfg controls the row metadata pass.
func Parse[T dtype.Float](text []byte, numInputs, numFeatures int, cfg parallel.Config) (*Matrix[T], error) {
	m, err := New[T](numInputs, numFeatures)
	if err != nil {
		return nil, err
	}
	line := 0
	err = tsv.ParseFunc(text, func(t tsv.Triple[T]) error {
		line++
		if t.Row >= numInputs {
			return &format.BoundsError{What: fmt.Sprintf("line %d input index", line), Need: int64(t.Row) + 1, Have: int64(numInputs)}
		}
		if t.Col >= numFeatures {
			return &format.BoundsError{What: fmt.Sprintf("line %d feature index", line), Need: int64(t.Col) + 1, Have: int64(numFeatures)}
		}
		m.Values[t.Row*numFeatures+t.Col] = t.Value
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.Recompute(cfg)
	return m, nil
}

// rowsPerWorker is the smallest row count worth counting on its own goroutine.
const rowsPerWorker = 4096

// Recompute refreshes RowNNZ and ActiveRows from Values. Rows are counted
// on cfg's workers once there are enough of them.
func (m *Matrix[T]) Recompute(cfg parallel.Config) {
	if len(m.RowNNZ) != m.Inputs {
		m.RowNNZ = make([]int32, m.Inputs)
	}
	cfg.MinChunkSize = max(cfg.MinChunkSize, rowsPerWorker)
	parallel.For(m.Inputs, func(i int) {
		var n int32
		for _, v := range m.Row(i) {
			if v != 0 {
				n++
			}
		}
		m.RowNNZ[i] = n
	}, cfg)

	m.ActiveRows = m.ActiveRows[:0]
	for i, n := range m.RowNNZ {
		if n > 0 {
			m.ActiveRows = append(m.ActiveRows, int32(i)) //nolint:gosec // G115: row count fits in int32
		}
	}
}

// Row returns the values of row i.
func (m *Matrix[T]) Row(i int) []T {
	return m.Values[i*m.Features : (i+1)*m.Features]
}

// ActiveMask reports, per row, whether it holds any nonzero value.
func (m *Matrix[T]) ActiveMask() []bool {
	mask := make([]bool, m.Inputs)
	for _, r := range m.ActiveRows {
		mask[r] = true
	}
	return mask
}

// Encode returns the binary form: (inputs, features) header and raw values.
func Encode[T dtype.Float](m *Matrix[T]) ([]byte, error) {
	return serialization.EncodeDense(m.Inputs, m.Features, m.Values)
}

// Decode decodes a binary feature file that must hold numInputs x numFeatures values.
func Decode[T dtype.Float](data []byte, numInputs, numFeatures int, cfg parallel.Config) (*Matrix[T], error) {
	m, err := New[T](numInputs, numFeatures)
	if err != nil {
		return nil, err
	}
	if err := DecodeInto(data, m, cfg); err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeInto decodes a binary feature file into m, whose dims must match the header.
func DecodeInto[T dtype.Float](data []byte, m *Matrix[T], cfg parallel.Config) error {
	if _, err := serialization.DecodeDenseInto(data, m.Values, m.Inputs, m.Features); err != nil {
		return err
	}
	m.Recompute(cfg)
	return nil
}
