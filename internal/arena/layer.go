package arena

import (
	"context"
	"fmt"

	"github.com/born-ml/sparsednn/internal/csr"
	"github.com/born-ml/sparsednn/internal/dtype"
	"github.com/born-ml/sparsednn/internal/format"
	"github.com/born-ml/sparsednn/internal/parallel"
	"github.com/born-ml/sparsednn/internal/serialization"
)

// LayerView gives typed, zero-copy access to one packed layer.
// The slices alias the arena; they stay valid as long as the arena does.
type LayerView[T dtype.Float] struct {
	Index   int
	offsets []int32
	columns []int32
	values  []T
}

// Offsets returns the Rows*SlabCount+1 offsets of the layer.
func (v *LayerView[T]) Offsets() []int32 { return v.offsets }

// Columns returns the layer's nnz column indices.
func (v *LayerView[T]) Columns() []int32 { return v.columns }

// Values returns the layer's nnz values.
func (v *LayerView[T]) Values() []T { return v.values }

// NNZ returns the number of entries of the layer.
func (v *LayerView[T]) NNZ() int { return len(v.columns) }

// Layer returns a typed view of layer i. The layer's nnz is read from its
// last offset, so the layer must have been packed or loaded. Offsets that
// decrease or run past nnz are reported as a FormatError.
func Layer[T dtype.Float](a *Arena, i int) (*LayerView[T], error) {
	l := a.layout
	if kind := dtype.Of[T](); kind != l.Kind {
		return nil, fmt.Errorf("layer %d: requested %s, arena holds %s", i, kind, l.Kind)
	}
	region, err := a.Region(i)
	if err != nil {
		return nil, err
	}
	offsets, err := region.Int32s(0, l.OffsetsLen())
	if err != nil {
		return nil, err
	}
	nnz := int(offsets[len(offsets)-1])
	if nnz < 0 || nnz > l.MaxNNZ {
		return nil, &format.FormatError{Field: "offsets", Reason: fmt.Sprintf("layer %d: last offset %d outside [0, %d]", i, nnz, l.MaxNNZ)}
	}
	if err := serialization.CheckOffsets(offsets, nnz); err != nil {
		return nil, fmt.Errorf("layer %d: %w", i, err)
	}
	columns, err := region.Int32s(l.ColumnsOffset(), nnz)
	if err != nil {
		return nil, err
	}
	values, err := serialization.Floats[T](region, l.ValuesOffset(), nnz)
	if err != nil {
		return nil, err
	}
	return &LayerView[T]{Index: i, offsets: offsets, columns: columns, values: values}, nil
}

// Matrix copies layer i back out into a standalone matrix of geometry g.
func Matrix[T dtype.Float](a *Arena, i int, g csr.Geometry) (*csr.Matrix[T], error) {
	v, err := Layer[T](a, i)
	if err != nil {
		return nil, err
	}
	m := &csr.Matrix[T]{
		Geometry: g,
		NNZ:      v.NNZ(),
		Offsets:  append([]int32(nil), v.offsets...),
		Columns:  append(make([]int32, 0, v.NNZ()), v.columns...),
		Values:   append(make([]T, 0, v.NNZ()), v.values...),
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("layer %d: %w", i, err)
	}
	return m, nil
}

// PackLayers builds and packs n layers, fanning out over cfg.NumWorkers.
// Each call of build must return the matrix of its own layer.
func PackLayers[T dtype.Float](ctx context.Context, a *Arena, n int, build func(ctx context.Context, i int) (*csr.Matrix[T], error), cfg parallel.Config) error {
	if err := format.CheckBounds("arena layers", n, a.layers); err != nil {
		return err
	}
	return parallel.ForEach(ctx, n, func(ctx context.Context, i int) error {
		m, err := build(ctx, i)
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		return PackLayer(a, i, m)
	}, cfg)
}
