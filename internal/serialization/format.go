package serialization

import (
	"encoding/binary"
	"unsafe"

	"github.com/born-ml/sparsednn/internal/dtype"
)

// Format constants.
const (
	WordSize        = dtype.IndexSize // Byte width of every header field, offset and column
	MatrixHeaderLen = 2 * WordSize    // rows, nnz
	DenseHeaderLen  = 2 * WordSize    // rows, cols
	LabelHeaderLen  = WordSize        // rows
)

// byteOrder is the machine order; files are not portable across byte orders.
var byteOrder = binary.NativeEndian

// MatrixHeader is the header of a weight file.
type MatrixHeader struct {
	Rows int // Original (not virtual) rows
	NNZ  int
}

// DenseHeader is the header of a dense input file.
type DenseHeader struct {
	Rows int
	Cols int
}

// Layout is the fixed geometry of one layer slot. Every slot is laid out as
//
//	[offsets: Rows*SlabCount+1 words][columns: MaxNNZ words][pad words][values: MaxNNZ*ratio words]
//
// where ratio is the value width in index words. Sections sit at fixed
// positions so a consumer finds them from the geometry alone.
//
// Cols, when positive, bounds the column indices a slot may hold.
type Layout struct {
	Rows      int            `yaml:"rows"`
	Cols      int            `yaml:"cols"`
	SlabCount int            `yaml:"slab_count"`
	MaxNNZ    int            `yaml:"max_nnz"`
	Pad       int            `yaml:"pad"`
	Kind      dtype.DataType `yaml:"kind"`
}

// OffsetsLen returns the number of offsets in a slot.
func (l Layout) OffsetsLen() int {
	return l.Rows*l.SlabCount + 1
}

// Words returns the slot size in index words (the layer stride).
func (l Layout) Words() int {
	return l.OffsetsLen() + l.MaxNNZ + l.Pad + l.Kind.WordRatio()*l.MaxNNZ
}

// Size returns the slot size in bytes.
func (l Layout) Size() int {
	return l.Words() * WordSize
}

// ColumnsOffset returns the byte offset of the columns section within a slot.
func (l Layout) ColumnsOffset() int {
	return l.OffsetsLen() * WordSize
}

// ValuesOffset returns the byte offset of the values section within a slot.
func (l Layout) ValuesOffset() int {
	return (l.OffsetsLen() + l.MaxNNZ + l.Pad) * WordSize
}

// element is any fixed-width type stored in a payload.
type element interface {
	~int32 | ~float32 | ~float64
}

// asBytes reinterprets a slice as its native in-memory bytes.
func asBytes[E element](s []E) []byte {
	if len(s) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy byte view, length derived from len(s)
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(s[0])))
}
