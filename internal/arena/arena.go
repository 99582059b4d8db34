// Package arena packs many layers of slab-blocked weights into one contiguous
// buffer. Layer i lives in the fixed-size region starting at i*stride, so a
// consumer addresses any layer from the layout alone, without per-layer
// pointers. Every layer shares the stride of the densest one; sparser layers
// leave the tail of their sections unused and unwritten.
package arena

import (
	"fmt"

	"github.com/born-ml/sparsednn/internal/csr"
	"github.com/born-ml/sparsednn/internal/dtype"
	"github.com/born-ml/sparsednn/internal/format"
	"github.com/born-ml/sparsednn/internal/serialization"
)

// Layout is the per-layer geometry shared by every region of an arena.
type Layout = serialization.Layout

// ComputeLayerStride returns the number of index words reserved per layer:
// offsets, columns, alignment pad and values.
func ComputeLayerStride(rows, slabCount, maxNNZPerLayer, pad, valueWidthRatio int) int {
	return rows*slabCount + 1 + maxNNZPerLayer + pad + valueWidthRatio*maxNNZPerLayer
}

// AlignedPad returns the smallest pad that puts the value section of a
// layer on a boundary suitable for kind.
func AlignedPad(rows, slabCount, maxNNZPerLayer int, kind dtype.DataType) int {
	words := kind.Size() / dtype.IndexSize
	if words <= 1 {
		return 0
	}
	used := rows*slabCount + 1 + maxNNZPerLayer
	return (words - used%words) % words
}

// Arena is a contiguous buffer divided into equal layer regions.
//
// PackLayer and LoadLayer calls for different layers may run concurrently:
// each writes only inside its own region. Calls for the same layer must not.
type Arena struct {
	buf    []byte
	layout Layout
	layers int
}

// New allocates an arena for the given number of layers.
func New(layout Layout, layers int) (*Arena, error) {
	if err := validateLayout(layout, layers); err != nil {
		return nil, err
	}
	return &Arena{
		buf:    make([]byte, layout.Size()*layers),
		layout: layout,
		layers: layers,
	}, nil
}

// Wrap adopts a caller-owned buffer as an arena.
func Wrap(buf []byte, layout Layout, layers int) (*Arena, error) {
	if err := validateLayout(layout, layers); err != nil {
		return nil, err
	}
	if err := format.CheckBounds("arena buffer", layout.Size()*layers, len(buf)); err != nil {
		return nil, err
	}
	return &Arena{buf: buf, layout: layout, layers: layers}, nil
}

func validateLayout(l Layout, layers int) error {
	switch {
	case l.Rows <= 0:
		return &format.BoundsError{What: "layout rows", Need: 1, Have: int64(l.Rows)}
	case l.SlabCount <= 0:
		return &format.BoundsError{What: "layout slab count", Need: 1, Have: int64(l.SlabCount)}
	case l.MaxNNZ < 0:
		return &format.BoundsError{What: "layout max nnz", Need: 0, Have: int64(l.MaxNNZ)}
	case l.Pad < 0:
		return &format.BoundsError{What: "layout pad", Need: 0, Have: int64(l.Pad)}
	case layers < 0:
		return &format.BoundsError{What: "layer count", Need: 0, Have: int64(layers)}
	case !l.Kind.Valid():
		return fmt.Errorf("unsupported value kind %d", int(l.Kind))
	}
	return nil
}

// Layout returns the per-layer geometry.
func (a *Arena) Layout() Layout { return a.layout }

// Layers returns the number of layer regions.
func (a *Arena) Layers() int { return a.layers }

// Stride returns the region size in index words.
func (a *Arena) Stride() int { return a.layout.Words() }

// Bytes returns the whole backing buffer.
func (a *Arena) Bytes() []byte { return a.buf }

// Region returns the view of layer i.
func (a *Arena) Region(i int) (serialization.View, error) {
	if i < 0 || i >= a.layers {
		return serialization.View{}, &format.BoundsError{What: "layer index", Need: int64(i) + 1, Have: int64(a.layers)}
	}
	size := a.layout.Size()
	return serialization.NewView(a.buf, i*size, size)
}

// LoadLayer decodes an encoded weight file straight into region i.
func (a *Arena) LoadLayer(i int, encoded []byte) (serialization.MatrixHeader, error) {
	region, err := a.Region(i)
	if err != nil {
		return serialization.MatrixHeader{}, err
	}
	hdr, err := serialization.DecodeMatrixInto(encoded, region, a.layout)
	if err != nil {
		return serialization.MatrixHeader{}, fmt.Errorf("layer %d: %w", i, err)
	}
	return hdr, nil
}

// PackLayer writes the offsets, columns and values of m into region i of a.
func PackLayer[T dtype.Float](a *Arena, i int, m *csr.Matrix[T]) error {
	if m == nil {
		return fmt.Errorf("layer %d: %w", i, &format.FormatError{Field: "matrix", Reason: "no matrix to pack"})
	}
	l := a.layout
	if kind := dtype.Of[T](); kind != l.Kind {
		return fmt.Errorf("layer %d: matrix holds %s, arena holds %s", i, kind, l.Kind)
	}
	if m.Rows != l.Rows || m.SlabCount != l.SlabCount || (l.Cols > 0 && m.Cols > l.Cols) {
		return fmt.Errorf("layer %d: %w", i, &format.FormatError{
			Field: "geometry",
			Reason: fmt.Sprintf("matrix is %d rows x %d cols x %d slabs, arena expects %d x %d x %d",
				m.Rows, m.Cols, m.SlabCount, l.Rows, l.Cols, l.SlabCount),
		})
	}
	if len(m.Offsets) != l.OffsetsLen() || len(m.Columns) != m.NNZ || len(m.Values) != m.NNZ {
		return fmt.Errorf("layer %d: %w", i, &format.FormatError{Field: "matrix", Reason: "section lengths do not match geometry"})
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("layer %d: %w", i, err)
	}
	if err := format.CheckBounds(fmt.Sprintf("layer %d nnz", i), m.NNZ, l.MaxNNZ); err != nil {
		return err
	}

	region, err := a.Region(i)
	if err != nil {
		return err
	}
	if err := region.PutInt32s(0, m.Offsets); err != nil {
		return fmt.Errorf("layer %d offsets: %w", i, err)
	}
	if err := region.PutInt32s(l.ColumnsOffset(), m.Columns); err != nil {
		return fmt.Errorf("layer %d columns: %w", i, err)
	}
	if err := serialization.PutFloats(region, l.ValuesOffset(), m.Values); err != nil {
		return fmt.Errorf("layer %d values: %w", i, err)
	}
	return nil
}
